// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sevenseg

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"

	"github.com/GermanBionicSystems/sevenseg/hd44780"
)

// DefaultSize is the grid used when the configured size is missing or
// malformed.
const DefaultSize = "20x4"

// The largest grid the driver accepts. The height is bounded by the four
// DDRAM row windows the controller can address.
const (
	maxWidth  = 80
	maxHeight = 4
)

// Opts carries the configuration of one display.
type Opts struct {
	// Connection selects the bus transport, "i2c" or "spi".
	Connection string `yaml:"connectiontype"`
	// Device is the bus registry name or device path. Empty picks the
	// first available bus.
	Device string `yaml:"device"`
	// Port combines the 7-bit slave address with the expander variant
	// selector in bit 7.
	Port uint8 `yaml:"port"`
	// Size is the character grid as "WIDTHxHEIGHT".
	Size string `yaml:"size"`
	// Backlight reports whether the display has a backlight pin.
	Backlight bool `yaml:"backlight"`
	// BacklightInvert flips the backlight drive polarity.
	BacklightInvert bool `yaml:"backlightinvert"`
	// DelayBus adds settle pauses for slow expander/bus combinations.
	DelayBus bool `yaml:"delaybus"`
	// Flip renders for a display mounted rotated by 180 degrees.
	Flip bool `yaml:"flip"`
	// SPIFreq is the SPI clock in Hertz. Zero selects the default.
	SPIFreq physic.Frequency `yaml:"spifreq"`
	// Pins overrides the expander variant's default pin map.
	Pins *hd44780.PinMap `yaml:"pins"`
}

// DefaultOpts matches the common PCF8574 backpack at its default address.
var DefaultOpts = Opts{
	Connection: "i2c",
	Port:       0x27,
	Size:       DefaultSize,
	Backlight:  true,
}

// parseSize parses a "WIDTHxHEIGHT" string.
func parseSize(s string) (int, int, error) {
	var w, h int
	if n, err := fmt.Sscanf(s, "%dx%d", &w, &h); n != 2 || err != nil {
		return 0, 0, fmt.Errorf("sevenseg: cannot parse size %q", s)
	}
	if w <= 0 || w > maxWidth || h <= 0 || h > maxHeight {
		return 0, 0, fmt.Errorf("sevenseg: size %q out of range", s)
	}
	return w, h, nil
}

// size resolves the configured grid, falling back to DefaultSize with a
// warning when the string does not parse.
func (o *Opts) size() (int, int) {
	s := o.Size
	if s == "" {
		s = DefaultSize
	}
	w, h, err := parseSize(s)
	if err != nil {
		log.WithField("size", s).Warnf("sevenseg: using default size %s", DefaultSize)
		w, h, _ = parseSize(DefaultSize)
	}
	return w, h
}

// LoadConfig reads an Opts document from r. Missing keys keep the
// DefaultOpts values; unknown keys are an error.
func LoadConfig(r io.Reader) (*Opts, error) {
	o := DefaultOpts
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&o); err != nil {
		return nil, fmt.Errorf("sevenseg: reading config: %w", err)
	}
	return &o, nil
}
