// Package probe finds USB logic analyzers that can capture a TM163x bus.
package probe

import (
	"context"
	"fmt"

	"github.com/google/gousb"
)

// Kind categorizes capture device families.
type Kind string

const (
	KindFX2LAFW Kind = "fx2lafw"
	KindSaleae  Kind = "saleae"
	KindFX2     Kind = "fx2"
	KindPico    Kind = "pico"
	KindSerial  Kind = "serial"
	KindFile    Kind = "file"
)

// Info describes a detected capture device.
type Info struct {
	Kind        Kind
	Description string
	VendorID    uint16
	ProductID   uint16
	Bus         int
	Address     int
}

// Label returns a user-friendly description for the device.
func (i Info) Label() string {
	if i.Description != "" {
		return i.Description
	}
	if i.Kind != "" {
		return fmt.Sprintf("%s (%04X:%04X)", string(i.Kind), i.VendorID, i.ProductID)
	}
	return fmt.Sprintf("Device %04X:%04X", i.VendorID, i.ProductID)
}

type knownDevice struct {
	VendorID    uint16
	ProductID   uint16
	Kind        Kind
	Description string
}

var knownDevices = []knownDevice{
	{VendorID: 0x1d50, ProductID: 0x608c, Kind: KindFX2LAFW, Description: "fx2lafw logic analyzer"},
	{VendorID: 0x0925, ProductID: 0x3881, Kind: KindSaleae, Description: "Saleae Logic"},
	{VendorID: 0x04b4, ProductID: 0x8613, Kind: KindFX2, Description: "Cypress FX2 (unprogrammed)"},
	{VendorID: 0x2e8a, ProductID: 0x000a, Kind: KindPico, Description: "Raspberry Pi Pico (CDC sampler)"},
}

// Classify matches a USB VID:PID against the known capture devices.
func Classify(vid, pid uint16) (Info, bool) {
	for _, known := range knownDevices {
		if vid == known.VendorID && pid == known.ProductID {
			return Info{
				Kind:        known.Kind,
				Description: known.Description,
				VendorID:    known.VendorID,
				ProductID:   known.ProductID,
			}, true
		}
	}
	return Info{}, false
}

// Discover enumerates connected USB capture devices. The serial port and file
// inputs are always listed since they need no discovery.
func Discover(ctx context.Context) ([]Info, error) {
	var results []Info
	usb := gousb.NewContext()
	defer usb.Close()

	_, err := usb.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}

		if info, ok := Classify(uint16(desc.Vendor), uint16(desc.Product)); ok {
			info.Bus = desc.Bus
			info.Address = desc.Address
			results = append(results, info)
		}
		return false
	})
	if err != nil && err != gousb.ErrorAccess {
		return results, fmt.Errorf("probe: enumerate usb: %w", err)
	}

	results = append(results,
		Info{Kind: KindSerial, Description: "Serial sampler (tmc capture)"},
		Info{Kind: KindFile, Description: "Trace file (.ott or raw bytes)"},
	)
	return results, nil
}
