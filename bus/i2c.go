// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bus

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
)

// I2C drives the expander port over an I²C bus. The expander has no
// register architecture; each transfer is the single byte that ends up on
// the output pins.
type I2C struct {
	d       *i2c.Dev
	variant Variant
	closer  io.Closer
	limiter faultLimiter
	entry   *log.Entry
}

// NewI2C returns a transport addressing the expander selected by the
// combined port value on b. The caller keeps ownership of b.
func NewI2C(b i2c.Bus, port uint8) *I2C {
	addr := uint16(port & AddrMask)
	variant := VariantFromPort(port)
	t := &I2C{
		d:       &i2c.Dev{Bus: b, Addr: addr},
		variant: variant,
		entry: log.WithFields(log.Fields{
			"bus":     b.String(),
			"addr":    fmt.Sprintf("0x%02x", addr),
			"variant": variant,
		}),
	}
	t.entry.Infof("sevenseg: using %s at 0x%02x", variant, addr)
	return t
}

// Variant reports the expander chip family encoded in the port value.
func (t *I2C) Variant() Variant {
	return t.variant
}

// WriteByte latches b onto the expander output port.
func (t *I2C) WriteByte(b byte) error {
	if err := t.d.Tx([]byte{b}, nil); err != nil {
		err = fmt.Errorf("bus: i2c write 0x%02x: %w", b, err)
		t.limiter.report(t.entry, err)
		return err
	}
	t.limiter.ok()
	return nil
}

// Close releases the bus if this transport opened it.
func (t *I2C) Close() error {
	return closeIfOwned(t.closer)
}

func (t *I2C) String() string {
	return fmt.Sprintf("i2c(%s)", t.d.String())
}

var _ Transport = &I2C{}
