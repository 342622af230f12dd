// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sevenseg implements the host-facing driver for seven-segment
// character displays wired to an HD44780-class controller behind an I²C or
// SPI port expander.
//
// The driver keeps a character framebuffer the size of the display. Cell
// writes only touch the buffer; Flush encodes the changed cells through
// the segment7 table and sends them down the hd44780 line driver.
// Coordinates on the cell operations are 1-based with the origin at the
// top left; out-of-range coordinates are ignored, never an error.
//
// Implements periph.io/x/conn/v3/display.TextDisplay.
package sevenseg

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/spi"

	"github.com/GermanBionicSystems/sevenseg/bus"
	"github.com/GermanBionicSystems/sevenseg/hd44780"
	"github.com/GermanBionicSystems/sevenseg/segment7"
)

// Mirror receives a copy of every cell pattern sent to the hardware.
// Preview sinks (termseg, segview) implement it.
type Mirror interface {
	SetCell(x, y int, pattern byte)
}

// Driver is one display session. The host serializes all calls; the driver
// owns its transport exclusively until Halt.
type Driver struct {
	dev     *hd44780.Dev
	tr      bus.Transport
	variant bus.Variant

	width, height int
	flip          bool

	fb    []byte
	dirty []bool

	// 1-based cursor for the TextDisplay operations.
	row, col int

	on, cursor, blink bool

	mirrors []Mirror
}

// Open resolves the configured connection type, opens the bus and
// initializes the display. Configuration and transport-open failures are
// fatal; the display is left untouched.
func Open(o *Opts) (*Driver, error) {
	t, err := bus.Open(&bus.Opts{
		Connection: o.Connection,
		Device:     o.Device,
		Port:       o.Port,
		SPIFreq:    o.SPIFreq,
	})
	if err != nil {
		return nil, err
	}
	d, err := newDriver(t, bus.VariantFromPort(o.Port), o)
	if err != nil {
		_ = t.Close()
		return nil, err
	}
	return d, nil
}

// NewI2C initializes a display behind an expander on b. The caller keeps
// ownership of the bus.
func NewI2C(b i2c.Bus, o *Opts) (*Driver, error) {
	return newDriver(bus.NewI2C(b, o.Port), bus.VariantFromPort(o.Port), o)
}

// NewSPI initializes a display behind a shift register on p. The caller
// keeps ownership of the port.
func NewSPI(p spi.Port, o *Opts) (*Driver, error) {
	t, err := bus.NewSPI(p, o.SPIFreq)
	if err != nil {
		return nil, err
	}
	return newDriver(t, bus.PCF8574, o)
}

func newDriver(t bus.Transport, variant bus.Variant, o *Opts) (*Driver, error) {
	width, height := o.size()
	dev, err := hd44780.New(t, variant, &hd44780.Opts{
		PinMap:          o.Pins,
		DelayBus:        o.DelayBus,
		Backlight:       o.Backlight,
		BacklightInvert: o.BacklightInvert,
		Rows:            height,
		Cols:            width,
	})
	if err != nil {
		return nil, err
	}
	d := &Driver{
		dev:     dev,
		tr:      t,
		variant: variant,
		width:   width,
		height:  height,
		flip:    o.Flip,
		fb:      make([]byte, width*height),
		dirty:   make([]bool, width*height),
		row:     1,
		col:     1,
		on:      true,
	}
	for ix := range d.fb {
		d.fb[ix] = ' '
	}
	if err := d.SetBacklight(true); err != nil {
		log.WithError(err).Warn("sevenseg: initial backlight latch failed")
	}
	return d, nil
}

// AddMirror registers a preview sink fed on every Flush.
func (d *Driver) AddMirror(m Mirror) {
	d.mirrors = append(d.mirrors, m)
}

// Width returns the display width in characters.
func (d *Driver) Width() int {
	return d.width
}

// Height returns the display height in characters.
func (d *Driver) Height() int {
	return d.height
}

// setCell stores c at the 0-based cell index, tracking changed cells.
func (d *Driver) setCell(ix int, c byte) {
	if d.fb[ix] != c {
		d.fb[ix] = c
		d.dirty[ix] = true
	}
}

// Clear blanks the framebuffer. The display itself changes on the next
// Flush.
func (d *Driver) Clear() error {
	for ix := range d.fb {
		d.setCell(ix, ' ')
	}
	d.row, d.col = 1, 1
	return nil
}

// WriteCharAt places c at the 1-based cell (x,y). Out-of-range coordinates
// are ignored.
func (d *Driver) WriteCharAt(x, y int, c byte) {
	x--
	y--
	if x < 0 || y < 0 || x >= d.width || y >= d.height {
		return
	}
	d.setCell(y*d.width+x, c)
}

// WriteStringAt places s starting at the 1-based cell (x,y). The part of
// the string falling outside the grid is dropped; a start left of the
// first column only skips the characters left of it.
func (d *Driver) WriteStringAt(x, y int, s string) {
	x--
	y--
	if y < 0 || y >= d.height {
		return
	}
	for ix := 0; ix < len(s) && x < d.width; ix, x = ix+1, x+1 {
		if x >= 0 {
			d.setCell(y*d.width+x, s[ix])
		}
	}
}

// Flush sends every changed cell to the hardware, resolving characters
// through the segment table and the optional flip transform. Consecutive
// changed cells share one address set; the controller auto-increments.
func (d *Driver) Flush() error {
	for y := 0; y < d.height; y++ {
		addressed := false
		for x := 0; x < d.width; x++ {
			ix := y*d.width + x
			if !d.dirty[ix] {
				addressed = false
				continue
			}
			if !addressed {
				if err := d.dev.MoveTo(y+1, x+1); err != nil {
					return err
				}
				addressed = true
			}
			pattern := segment7.Encode(d.fb[ix])
			if d.flip {
				pattern = segment7.Flip(pattern)
			}
			if err := d.dev.WriteData(pattern); err != nil {
				return err
			}
			for _, m := range d.mirrors {
				m.SetCell(x+1, y+1, pattern)
			}
			d.dirty[ix] = false
		}
	}
	return nil
}

// SetBacklight turns the backlight on or off, honoring the configured
// polarity and the no-backlight-pin capability.
func (d *Driver) SetBacklight(on bool) error {
	return d.dev.SetBacklight(on)
}

// SetContrast accepts the host's contrast setting. The hardware has no
// contrast control, so this always succeeds.
func (d *Driver) SetContrast(promille int) error {
	log.WithField("promille", promille).Debug("sevenseg: contrast ignored")
	return nil
}

// Info describes the driver and its wiring.
func (d *Driver) Info() string {
	return fmt.Sprintf("sevenseg: %dx%d seven-segment display, %s via %s",
		d.width, d.height, d.variant, d.tr)
}

// Halt blanks the display, drops the backlight and closes the transport if
// this driver opened it.
func (d *Driver) Halt() error {
	err := d.dev.Halt()
	if closeErr := d.tr.Close(); err == nil {
		err = closeErr
	}
	return err
}
