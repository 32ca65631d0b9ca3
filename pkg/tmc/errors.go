package tmc

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSampleRate is returned when decoding is attempted without a samplerate.
var ErrSampleRate = errors.New("tmc: cannot decode without samplerate")

// ChannelError reports required channels that are not connected.
type ChannelError struct {
	Missing []string
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("tmc: both CLK and DIO pins required, missing %s", strings.Join(e.Missing, ", "))
}

// IsChannelError returns true if err is or wraps a ChannelError.
func IsChannelError(err error) bool {
	var ce *ChannelError
	return errors.As(err, &ce)
}
