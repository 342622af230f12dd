// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"fmt"
	"math/bits"

	"github.com/GermanBionicSystems/sevenseg/bus"
)

// PinMap assigns the HD44780 signal lines to bit positions on the
// expander's 8-bit output port. Each field is a single-bit mask. The map is
// fixed for the lifetime of a session.
type PinMap struct {
	EN byte `yaml:"en"`
	RS byte `yaml:"rs"`
	RW byte `yaml:"rw"`
	BL byte `yaml:"bl"`
	D4 byte `yaml:"d4"`
	D5 byte `yaml:"d5"`
	D6 byte `yaml:"d6"`
	D7 byte `yaml:"d7"`
}

// DefaultPinMap returns the wiring of the common backpack boards for the
// given expander variant. The PCF8574(A) and PCA9554(A) backpacks ship
// with the same layout; differing boards are handled through the
// per-variant pin overrides in the driver configuration.
func DefaultPinMap(v bus.Variant) PinMap {
	_ = v
	return PinMap{
		RS: 0x01,
		RW: 0x02,
		EN: 0x04,
		BL: 0x08,
		D4: 0x10,
		D5: 0x20,
		D6: 0x40,
		D7: 0x80,
	}
}

// validate rejects maps where a signal uses zero or several port bits, or
// where two signals share a bit.
func (m PinMap) validate() error {
	lines := []struct {
		name string
		mask byte
	}{
		{"en", m.EN}, {"rs", m.RS}, {"rw", m.RW}, {"bl", m.BL},
		{"d4", m.D4}, {"d5", m.D5}, {"d6", m.D6}, {"d7", m.D7},
	}
	var seen byte
	for _, l := range lines {
		if bits.OnesCount8(l.mask) != 1 {
			return fmt.Errorf("hd44780: pin %s must use exactly one port bit, got 0x%02x", l.name, l.mask)
		}
		if seen&l.mask != 0 {
			return fmt.Errorf("hd44780: pin %s overlaps another line at 0x%02x", l.name, l.mask)
		}
		seen |= l.mask
	}
	return nil
}
