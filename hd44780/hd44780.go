// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hd44780 drives the Hitachi HD44780 LCD controller in 4-bit mode
// through an 8-bit port expander reached over a bus.Transport.
//
// Every controller byte is transmitted as two port writes carrying the high
// and then the low nibble on the D4-D7 lines, each framed by a rising and
// falling edge on the enable line with the data lines held stable. The
// register-select and backlight bits ride along on every write.
//
// # Datasheet
//
// https://www.sparkfun.com/datasheets/LCD/HD44780.pdf
package hd44780

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3"

	"github.com/GermanBionicSystems/sevenseg/bus"
)

// Frame selects the controller register a byte is written to.
type Frame bool

const (
	// FrameInstruction writes to the instruction register.
	FrameInstruction Frame = false
	// FrameData writes to the data register.
	FrameData Frame = true
)

// Controller instructions.
const (
	cmdClearDisplay   = 0x01
	cmdReturnHome     = 0x02
	cmdEntryMode      = 0x04
	cmdDisplayControl = 0x08
	cmdFunctionSet    = 0x20
	cmdSetDDRAMAddr   = 0x80

	optIncrement = 0x02 // cmdEntryMode
	optDisplayOn = 0x04 // cmdDisplayControl
	optCursorOn  = 0x02 // cmdDisplayControl
	optBlinkOn   = 0x01 // cmdDisplayControl
	optTwoLine   = 0x08 // cmdFunctionSet
)

const (
	// settle is the pause after intermediate port writes on slow
	// expander/bus combinations. Only applied when Opts.DelayBus is set.
	settle = 1 * time.Microsecond
	// execute is the controller execution time of ordinary instructions
	// and data writes.
	execute = 40 * time.Microsecond
	// executeSlow covers clear and home, which take the controller much
	// longer.
	executeSlow = 2 * time.Millisecond
)

// Opts configures the line driver.
type Opts struct {
	// PinMap overrides the variant's default line assignment. Nil selects
	// DefaultPinMap for the transport's expander variant.
	PinMap *PinMap
	// DelayBus inserts a settle pause after every intermediate port write.
	// Fast expander/bus combinations don't need it and only lose
	// throughput to it.
	DelayBus bool
	// Backlight reports whether the display has a backlight pin at all.
	Backlight bool
	// BacklightInvert flips the backlight drive for boards switching the
	// backlight through an external transistor (active low).
	BacklightInvert bool
	// Rows and Cols describe the character grid, used for the function-set
	// instruction and DDRAM addressing.
	Rows, Cols int
}

// Dev is a session with one HD44780 controller behind a port expander. It
// assumes exclusive ownership of the transport; the caller serializes all
// access.
type Dev struct {
	t        bus.Transport
	pins     PinMap
	delayBus bool
	hasPin   bool
	invert   bool
	rows     int
	cols     int

	initialized  bool
	backlightBit byte

	sleep func(time.Duration)
}

// DDRAM start address of each row. Displays narrower than 20 columns use
// the second table.
var rowOffsets = [][]byte{
	{0x00, 0x40, 0x14, 0x54},
	{0x00, 0x40, 0x10, 0x50},
}

// New takes ownership of t for the session and runs the power-on reset
// sequence followed by the common controller configuration. A transport
// write failure on the very first reset write aborts initialization; the
// remaining sequence runs to completion regardless, since stopping halfway
// leaves the controller in an undefined bus mode.
func New(t bus.Transport, variant bus.Variant, opts *Opts) (*Dev, error) {
	pins := DefaultPinMap(variant)
	if opts.PinMap != nil {
		pins = *opts.PinMap
	}
	if err := pins.validate(); err != nil {
		return nil, err
	}
	rows, cols := opts.Rows, opts.Cols
	if rows <= 0 {
		rows = 1
	}
	if cols <= 0 {
		cols = 16
	}
	if rows > len(rowOffsets[0]) {
		return nil, fmt.Errorf("hd44780: %d rows exceeds the %d addressable DDRAM rows",
			rows, len(rowOffsets[0]))
	}
	d := &Dev{
		t:        t,
		pins:     pins,
		delayBus: opts.DelayBus,
		hasPin:   opts.Backlight,
		invert:   opts.BacklightInvert,
		rows:     rows,
		cols:     cols,
		sleep:    time.Sleep,
	}
	return d, d.init()
}

// init drives the documented power-on reset state machine exactly once:
// four FUNCSET|8BIT pulses with decreasing waits, then the nibble that
// switches the controller to 4-bit mode. The fourth reset pulse exceeds
// the documented minimum of three; the controller ignores redundant
// pulses, so it stays.
func (d *Dev) init() error {
	if d.initialized {
		return nil
	}
	p := d.pins
	// (FUNCSET | IF_8BIT) >> 4 on the data lines.
	reset := p.D4 | p.D5

	if err := d.t.WriteByte(reset); err != nil {
		return fmt.Errorf("hd44780: power-up reset: %w", err)
	}
	d.pause()
	for _, wait := range []time.Duration{
		15 * time.Millisecond,
		5 * time.Millisecond,
		100 * time.Microsecond,
		100 * time.Microsecond,
	} {
		_ = d.t.WriteByte(p.EN | reset)
		d.pause()
		_ = d.t.WriteByte(reset)
		d.sleep(wait)
	}

	// Now in 8-bit mode. (FUNCSET | IF_4BIT) >> 4 switches to 4-bit; all
	// later traffic uses two-nibble framing.
	_ = d.t.WriteByte(p.D5)
	d.pause()
	_ = d.t.WriteByte(p.EN | p.D5)
	d.pause()
	_ = d.t.WriteByte(p.D5)
	d.sleep(100 * time.Microsecond)

	d.initialized = true
	return d.configure()
}

// configure runs the common controller setup once the bus is confirmed in
// 4-bit mode: function set, display on with the cursor off, left-to-right
// entry, clear.
func (d *Dev) configure() error {
	funcSet := byte(cmdFunctionSet)
	if d.rows > 1 {
		funcSet |= optTwoLine
	}
	if err := d.SendByte(FrameInstruction, funcSet); err != nil {
		return fmt.Errorf("hd44780: function set: %w", err)
	}
	_ = d.Control(true, false, false)
	_ = d.SendByte(FrameInstruction, cmdEntryMode|optIncrement)
	return d.Clear()
}

// pause applies the optional inter-write settle delay.
func (d *Dev) pause() {
	if d.delayBus {
		d.sleep(settle)
	}
}

// SendByte transmits one byte to the selected controller register as two
// enable-framed nibble writes, high nibble first. Exactly six port writes
// are emitted. The current backlight bit is OR'd into every write.
func (d *Dev) SendByte(frame Frame, value byte) error {
	p := d.pins
	var h, l byte
	if value&0x80 != 0 {
		h |= p.D7
	}
	if value&0x40 != 0 {
		h |= p.D6
	}
	if value&0x20 != 0 {
		h |= p.D5
	}
	if value&0x10 != 0 {
		h |= p.D4
	}
	if value&0x08 != 0 {
		l |= p.D7
	}
	if value&0x04 != 0 {
		l |= p.D6
	}
	if value&0x02 != 0 {
		l |= p.D5
	}
	if value&0x01 != 0 {
		l |= p.D4
	}

	var portControl byte
	if frame == FrameData {
		portControl = p.RS
	}
	portControl |= d.backlightBit

	if err := d.strobe(portControl | h); err != nil {
		return err
	}
	if err := d.strobe(portControl | l); err != nil {
		return err
	}
	d.sleep(execute)
	return nil
}

// strobe writes the port byte with enable clear, set, then clear again,
// holding the data lines stable across the pulse.
func (d *Dev) strobe(b byte) error {
	if err := d.t.WriteByte(b); err != nil {
		return err
	}
	d.pause()
	if err := d.t.WriteByte(d.pins.EN | b); err != nil {
		return err
	}
	d.pause()
	return d.t.WriteByte(b)
}

// SetBacklight computes and latches the backlight bit. Displays without a
// backlight pin always keep the bit clear; inverted boards drive the line
// low to light the backlight. The bit is latched to the port immediately
// and rides along on every subsequent write.
func (d *Dev) SetBacklight(on bool) error {
	var bit byte
	if d.hasPin && on != d.invert {
		bit = d.pins.BL
	}
	d.backlightBit = bit
	return d.t.WriteByte(bit)
}

// Control sets the display-control flags.
func (d *Dev) Control(displayOn, cursor, blink bool) error {
	val := byte(cmdDisplayControl)
	if displayOn {
		val |= optDisplayOn
	}
	if cursor {
		val |= optCursorOn
	}
	if blink {
		val |= optBlinkOn
	}
	return d.SendByte(FrameInstruction, val)
}

// Clear erases the display and moves the address counter home.
func (d *Dev) Clear() error {
	err := d.SendByte(FrameInstruction, cmdClearDisplay)
	d.sleep(executeSlow)
	return err
}

// Home moves the address counter to the first cell.
func (d *Dev) Home() error {
	err := d.SendByte(FrameInstruction, cmdReturnHome)
	d.sleep(executeSlow)
	return err
}

// MoveTo sets the DDRAM address to the 1-based row and column.
func (d *Dev) MoveTo(row, col int) error {
	if row < 1 || row > d.rows || col < 1 || col > d.cols {
		return fmt.Errorf("hd44780: MoveTo(%d,%d) out of range", row, col)
	}
	offsets := rowOffsets[0]
	if d.cols < 20 {
		offsets = rowOffsets[1]
	}
	return d.SendByte(FrameInstruction, cmdSetDDRAMAddr|(offsets[row-1]+byte(col-1)))
}

// WriteData writes one byte to display memory at the current address.
func (d *Dev) WriteData(value byte) error {
	return d.SendByte(FrameData, value)
}

// Rows returns the number of character rows.
func (d *Dev) Rows() int {
	return d.rows
}

// Cols returns the number of character columns.
func (d *Dev) Cols() int {
	return d.cols
}

// Halt blanks the display and turns the backlight off. The transport stays
// open; closing it belongs to whoever created it.
func (d *Dev) Halt() error {
	err := d.Clear()
	if blErr := d.SetBacklight(false); err == nil {
		err = blErr
	}
	if ctlErr := d.Control(false, false, false); err == nil {
		err = ctlErr
	}
	return err
}

func (d *Dev) String() string {
	return fmt.Sprintf("hd44780(%s)", d.t)
}

var _ conn.Resource = &Dev{}
