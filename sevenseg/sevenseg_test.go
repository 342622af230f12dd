// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sevenseg

import (
	"errors"
	"strings"
	"testing"

	periphDisplay "periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/display/displaytest"
	"periph.io/x/conn/v3/i2c/i2ctest"

	"github.com/GermanBionicSystems/sevenseg/segment7"
)

func getDriver(t *testing.T, o *Opts) (*Driver, *i2ctest.Record) {
	t.Helper()
	if o == nil {
		opts := DefaultOpts
		o = &opts
	}
	record := &i2ctest.Record{}
	d, err := NewI2C(record, o)
	if err != nil {
		t.Fatal(err)
	}
	// Drop the init and backlight traffic so tests see only their own
	// writes.
	record.Ops = nil
	return d, record
}

// message is one decoded line-driver byte.
type message struct {
	data  bool
	value byte
}

// decode reassembles the port write stream into controller bytes. The
// stream must consist of whole six-write messages.
func decode(t *testing.T, record *i2ctest.Record) []message {
	t.Helper()
	w := make([]byte, 0, len(record.Ops))
	for _, op := range record.Ops {
		if len(op.W) == 1 {
			w = append(w, op.W[0])
		}
	}
	if len(w)%6 != 0 {
		t.Fatalf("write stream length %d is not a whole number of messages", len(w))
	}
	var msgs []message
	for ix := 0; ix < len(w); ix += 6 {
		msgs = append(msgs, message{
			data:  w[ix]&0x01 != 0,
			value: (w[ix] & 0xf0) | (w[ix+3]&0xf0)>>4,
		})
	}
	return msgs
}

func dataValues(msgs []message) []byte {
	var out []byte
	for _, m := range msgs {
		if m.data {
			out = append(out, m.value)
		}
	}
	return out
}

func TestNewDefaults(t *testing.T) {
	d, _ := getDriver(t, nil)
	if d.Width() != 20 || d.Height() != 4 {
		t.Errorf("default grid %dx%d, expected 20x4", d.Width(), d.Height())
	}
	if !strings.Contains(d.Info(), "20x4") {
		t.Errorf("Info() = %q", d.Info())
	}
	if err := d.Halt(); err != nil {
		t.Error(err)
	}
}

func TestWriteCharFlush(t *testing.T) {
	d, record := getDriver(t, nil)
	d.WriteCharAt(1, 1, 'A')
	if err := d.Flush(); err != nil {
		t.Fatal(err)
	}
	got := dataValues(decode(t, record))
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 data byte, found %d", len(got))
	}
	if want := segment7.Encode('A'); got[0] != want {
		t.Errorf("flushed 0x%02x, expected 0x%02x", got[0], want)
	}
}

func TestFlushOnlyChangedCells(t *testing.T) {
	d, record := getDriver(t, nil)
	d.WriteStringAt(1, 1, "12")
	if err := d.Flush(); err != nil {
		t.Fatal(err)
	}
	record.Ops = nil

	// Rewriting the same content sends nothing.
	d.WriteStringAt(1, 1, "12")
	if err := d.Flush(); err != nil {
		t.Fatal(err)
	}
	if len(record.Ops) != 0 {
		t.Errorf("expected no writes for an unchanged buffer, found %d", len(record.Ops))
	}

	d.WriteCharAt(2, 1, '3')
	if err := d.Flush(); err != nil {
		t.Fatal(err)
	}
	got := dataValues(decode(t, record))
	if len(got) != 1 || got[0] != segment7.Encode('3') {
		t.Errorf("expected a single data byte for the changed cell, found % x", got)
	}
}

func TestFlipTransform(t *testing.T) {
	opts := DefaultOpts
	opts.Flip = true
	d, record := getDriver(t, &opts)
	d.WriteCharAt(1, 1, '6')
	if err := d.Flush(); err != nil {
		t.Fatal(err)
	}
	got := dataValues(decode(t, record))
	if len(got) != 1 || got[0] != segment7.Flip(segment7.Encode('6')) {
		t.Errorf("expected the flipped pattern for '6', found % x", got)
	}
}

func TestOutOfRangeIgnored(t *testing.T) {
	d, record := getDriver(t, nil)
	d.WriteCharAt(0, 0, 'A')
	d.WriteCharAt(21, 1, 'A')
	d.WriteCharAt(1, 5, 'A')
	d.WriteStringAt(1, 5, "too low")
	d.WriteStringAt(19, 1, "ABCDEF") // clipped at the right edge
	if err := d.Flush(); err != nil {
		t.Fatal(err)
	}
	got := dataValues(decode(t, record))
	if len(got) != 2 {
		t.Fatalf("expected 2 data bytes from the clipped string, found %d", len(got))
	}
	if got[0] != segment7.Encode('A') || got[1] != segment7.Encode('B') {
		t.Errorf("clipped string flushed % x", got)
	}
}

func TestNegativeStartSkipsLeft(t *testing.T) {
	d, record := getDriver(t, nil)
	d.WriteStringAt(-1, 1, "ABC")
	if err := d.Flush(); err != nil {
		t.Fatal(err)
	}
	// Only 'C' lands on column 1.
	got := dataValues(decode(t, record))
	if len(got) != 1 || got[0] != segment7.Encode('C') {
		t.Errorf("expected only the visible tail, found % x", got)
	}
}

func TestClearFlush(t *testing.T) {
	d, record := getDriver(t, nil)
	d.WriteStringAt(1, 1, "88")
	if err := d.Flush(); err != nil {
		t.Fatal(err)
	}
	record.Ops = nil
	if err := d.Clear(); err != nil {
		t.Fatal(err)
	}
	if err := d.Flush(); err != nil {
		t.Fatal(err)
	}
	got := dataValues(decode(t, record))
	if len(got) != 2 {
		t.Fatalf("expected 2 blanked cells, found %d", len(got))
	}
	for ix, b := range got {
		if b != segment7.Blank {
			t.Errorf("cell %d flushed 0x%02x after Clear", ix, b)
		}
	}
}

func TestBacklightWithoutPin(t *testing.T) {
	opts := DefaultOpts
	opts.Backlight = false
	for _, invert := range []bool{false, true} {
		opts.BacklightInvert = invert
		d, record := getDriver(t, &opts)
		if err := d.SetBacklight(true); err != nil {
			t.Fatal(err)
		}
		if len(record.Ops) != 1 || len(record.Ops[0].W) != 1 || record.Ops[0].W[0] != 0x00 {
			t.Errorf("invert=%t: backlight latch wrote %#v, expected a cleared port",
				invert, record.Ops)
		}
	}
}

func TestSetContrastAlwaysSucceeds(t *testing.T) {
	d, _ := getDriver(t, nil)
	for _, promille := range []int{0, 500, 1000} {
		if err := d.SetContrast(promille); err != nil {
			t.Errorf("SetContrast(%d) = %v", promille, err)
		}
	}
}

func TestMirror(t *testing.T) {
	d, _ := getDriver(t, nil)
	mirror := &recordingMirror{}
	d.AddMirror(mirror)
	d.WriteCharAt(3, 2, '7')
	if err := d.Flush(); err != nil {
		t.Fatal(err)
	}
	if len(mirror.cells) != 1 {
		t.Fatalf("expected 1 mirrored cell, found %d", len(mirror.cells))
	}
	c := mirror.cells[0]
	if c.x != 3 || c.y != 2 || c.pattern != segment7.Encode('7') {
		t.Errorf("mirrored cell %+v", c)
	}
}

type mirroredCell struct {
	x, y    int
	pattern byte
}

type recordingMirror struct {
	cells []mirroredCell
}

func (m *recordingMirror) SetCell(x, y int, pattern byte) {
	m.cells = append(m.cells, mirroredCell{x, y, pattern})
}

func TestTextDisplay(t *testing.T) {
	d, _ := getDriver(t, nil)
	errs := displaytest.TestTextDisplay(d, false)
	for _, err := range errs {
		if !errors.Is(err, periphDisplay.ErrNotImplemented) {
			t.Error(err)
		}
	}
}

func TestMoveAndWrite(t *testing.T) {
	d, record := getDriver(t, nil)
	if err := d.MoveTo(2, 2); err != nil {
		t.Fatal(err)
	}
	record.Ops = nil
	n, err := d.WriteString("01")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("WriteString returned %d", n)
	}
	got := dataValues(decode(t, record))
	if len(got) != 2 || got[0] != segment7.Encode('0') || got[1] != segment7.Encode('1') {
		t.Errorf("wrote % x", got)
	}
	if err := d.MoveTo(9, 9); err == nil {
		t.Error("expected an error for an out-of-range MoveTo")
	}
}
