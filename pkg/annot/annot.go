// Package annot renders decoded values into the short text variants shown by
// annotation viewers, longest first.
package annot

import (
	"fmt"
	"strings"
)

// Radix selects how byte values are printed.
type Radix uint8

const (
	Hex Radix = iota
	Dec
	Oct
	Bin
)

var radixNames = map[Radix]string{
	Hex: "Hex",
	Dec: "Dec",
	Oct: "Oct",
	Bin: "Bin",
}

func (r Radix) String() string {
	if name, ok := radixNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Radix(%d)", r)
}

// ParseRadix accepts the radix names case-insensitively.
func ParseRadix(s string) (Radix, error) {
	for r, name := range radixNames {
		if strings.EqualFold(s, name) {
			return r, nil
		}
	}
	return Hex, fmt.Errorf("annot: unknown radix %q (want hex, dec, oct or bin)", s)
}

// FormatByte prints v in the given radix.
func FormatByte(v uint8, r Radix) string {
	switch r {
	case Dec:
		return fmt.Sprintf("%d", v)
	case Oct:
		return fmt.Sprintf("0o%03o", v)
	case Bin:
		return fmt.Sprintf("0b%08b", v)
	default:
		return fmt.Sprintf("0x%02X", v)
	}
}

// Compose builds annotation variants from a label list and an optional value.
//
// Each label is paired with the value, and the last label is repeated on its
// own as the shortest form. Without labels the value alone is returned;
// without a value the labels are returned unchanged.
func Compose(labels []string, value string) []string {
	if value == "" {
		return append([]string(nil), labels...)
	}
	if len(labels) == 0 {
		return []string{value}
	}
	out := make([]string, 0, len(labels)+1)
	for _, l := range labels {
		out = append(out, l+": "+value)
	}
	return append(out, labels[len(labels)-1])
}
