// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bus

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// SPI drives the expander port through a serial-to-parallel shift register
// on an SPI bus. Every transfer shifts one byte out to the latch.
type SPI struct {
	c       spi.Conn
	closer  io.Closer
	limiter faultLimiter
	entry   *log.Entry
}

// NewSPI connects to p and returns the transport. The caller keeps
// ownership of p.
func NewSPI(p spi.Port, freq physic.Frequency) (*SPI, error) {
	if freq == 0 {
		freq = DefaultSPIFreq
	}
	c, err := p.Connect(freq, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("bus: spi connect: %w", err)
	}
	t := &SPI{
		c:     c,
		entry: log.WithField("bus", c.String()),
	}
	t.entry.Infof("sevenseg: using SPI shift register at %s", freq)
	return t, nil
}

// WriteByte shifts b out to the expander latch.
func (t *SPI) WriteByte(b byte) error {
	if err := t.c.Tx([]byte{b}, nil); err != nil {
		err = fmt.Errorf("bus: spi write 0x%02x: %w", b, err)
		t.limiter.report(t.entry, err)
		return err
	}
	t.limiter.ok()
	return nil
}

// Close releases the port if this transport opened it.
func (t *SPI) Close() error {
	return closeIfOwned(t.closer)
}

func (t *SPI) String() string {
	return fmt.Sprintf("spi(%s)", t.c.String())
}

var _ Transport = &SPI{}
