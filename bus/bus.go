// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package bus provides the byte transports used to reach the 8-bit output
// port of an LCD backpack expander over I²C or SPI.
//
// A transport is deliberately dumb: it opens a connection to one fixed
// device and writes one control byte at a time, synchronously. All protocol
// knowledge (nibble framing, enable pulses, timing) lives in package
// hd44780.
//
// The configured port value combines the 7-bit I²C slave address with the
// expander variant selector in bit 7. The variant only affects the pin
// map the line driver uses, never the transport itself.
package bus

import (
	"errors"
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
)

const (
	// AddrMask extracts the 7-bit slave address from the combined port value.
	AddrMask = 0x7f
	// PCAXMask is the port bit selecting the PCA9554(A) expander variant.
	PCAXMask = 0x80
)

// Variant identifies the expander chip family on the backpack.
type Variant string

const (
	PCF8574 Variant = "PCF8574(A)"
	PCA9554 Variant = "PCA9554(A)"
)

// VariantFromPort decodes the expander variant from the combined port value.
func VariantFromPort(port uint8) Variant {
	if port&PCAXMask != 0 {
		return PCA9554
	}
	return PCF8574
}

// Conn selects the bus transport. The connection type is resolved from the
// configuration exactly once; there is no runtime dispatch table.
type Conn int

const (
	ConnUnknown Conn = iota
	ConnI2C
	ConnSPI
)

func (c Conn) String() string {
	switch c {
	case ConnI2C:
		return "i2c"
	case ConnSPI:
		return "spi"
	default:
		return fmt.Sprint(int(c))
	}
}

// ConnFromString maps a configuration connection-type name to a Conn.
func ConnFromString(name string) (Conn, error) {
	switch strings.ToLower(name) {
	case "i2c":
		return ConnI2C, nil
	case "spi":
		return ConnSPI, nil
	}
	return ConnUnknown, fmt.Errorf("bus: unknown ConnectionType %q", name)
}

// Transport is a byte-oriented connection to the expander output port.
//
// WriteByte is synchronous and unbuffered. A failed write is reported to
// the log (rate limited) and returned; the caller decides whether to abort
// or continue degraded. Writes are never retried.
type Transport interface {
	// WriteByte latches b onto the expander's 8-bit output port.
	WriteByte(b byte) error
	// Close releases the connection. Only transports opened through Open
	// own the underlying bus handle; injected buses stay open.
	Close() error
	// String describes the transport for log and info output.
	String() string
}

// DefaultSPIFreq is used when the configuration does not set a bus speed.
const DefaultSPIFreq = 1 * physic.MegaHertz

// Opts configures Open.
type Opts struct {
	// Connection is the transport name from the configuration, "i2c" or
	// "spi".
	Connection string
	// Device is the registry name or path of the bus. Empty selects the
	// first available bus.
	Device string
	// Port combines the 7-bit slave address and the expander variant bit.
	// Ignored for SPI.
	Port uint8
	// SPIFreq is the SPI clock. Zero means DefaultSPIFreq.
	SPIFreq physic.Frequency
}

// Open resolves the configured connection type and opens the transport.
// An unknown connection type or an open failure is fatal to driver
// initialization; no writes are attempted after a failed Open.
func Open(o *Opts) (Transport, error) {
	conn, err := ConnFromString(o.Connection)
	if err != nil {
		return nil, err
	}
	switch conn {
	case ConnI2C:
		b, err := i2creg.Open(o.Device)
		if err != nil {
			return nil, fmt.Errorf("bus: connecting to i2c device %q slave 0x%02x: %w",
				o.Device, o.Port&AddrMask, err)
		}
		t := NewI2C(b, o.Port)
		t.closer = b
		return t, nil
	case ConnSPI:
		p, err := spireg.Open(o.Device)
		if err != nil {
			return nil, fmt.Errorf("bus: connecting to spi device %q: %w", o.Device, err)
		}
		t, err := NewSPI(p, o.SPIFreq)
		if err != nil {
			_ = p.Close()
			return nil, err
		}
		t.closer = p
		return t, nil
	}
	return nil, errors.New("bus: unreachable connection type")
}

// faultLimiter keeps repeated write failures from flooding the log. The
// first failure of a consecutive run is reported at error level and the
// rest at debug level. It is owned by one transport instance.
type faultLimiter struct {
	latched bool
}

func (f *faultLimiter) report(entry *log.Entry, err error) {
	if f.latched {
		entry.WithError(err).Debug("write failed")
		return
	}
	entry.WithError(err).Error("write failed")
	f.latched = true
}

func (f *faultLimiter) ok() {
	f.latched = false
}

// closeIfOwned closes c when non-nil, mapping a nil closer to success so
// injected buses are left alone.
func closeIfOwned(c io.Closer) error {
	if c == nil {
		return nil
	}
	return c.Close()
}
