// Package serialport opens USB-serial samplers that stream one byte per
// sample, bit i of each byte carrying the level of input i.
package serialport

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tarm/serial"
)

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate. USB CDC samplers ignore it.
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns a configuration for a CDC sampler on device.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100,
	}
}

// Port is an open sampler port.
type Port struct {
	port *serial.Port
	cfg  *Config

	closeOnce sync.Once
	closeErr  error
}

// Open opens a native serial port
func Open(cfg *Config) (*Port, error) {
	if cfg == nil {
		return nil, fmt.Errorf("serialport: config cannot be nil")
	}
	if cfg.Device == "" {
		return nil, fmt.Errorf("serialport: no device given")
	}

	serialConfig := &serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Millisecond,
	}

	port, err := serial.OpenPort(serialConfig)
	if err != nil {
		return nil, fmt.Errorf("serialport: failed to open %s: %w", cfg.Device, err)
	}

	return &Port{port: port, cfg: cfg}, nil
}

// Read reads raw samples from the port.
func (p *Port) Read(b []byte) (int, error) {
	return p.port.Read(b)
}

// Close closes the port. It is safe to call more than once.
func (p *Port) Close() error {
	p.closeOnce.Do(func() {
		if p.port != nil {
			p.closeErr = p.port.Close()
		}
	})
	return p.closeErr
}

// Device returns the device path the port was opened on.
func (p *Port) Device() string {
	return p.cfg.Device
}

// CloseOnDone closes c once ctx is done, unblocking any pending Read. The
// returned function stops the watcher.
func CloseOnDone(ctx context.Context, c io.Closer) (stop func()) {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			c.Close()
		case <-done:
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}
