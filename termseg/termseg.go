// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package termseg mirrors a seven-segment display row to the terminal
// (stdout) using ANSI color codes. Each cell shows its segment pattern as
// two hex digits, lit cells bright and blank cells dim.
//
// Useful to watch what the driver sends while the real display is still in
// the mail, or on a headless box without I²C hardware.
package termseg

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
)

// Opts represents the options available for this sink.
type Opts struct {
	// Cols is the number of display columns to mirror.
	Cols int
	// Row selects the 1-based display row shown. Zero means the first.
	Row int
	// Palette is the ANSI palette. Nil selects the default.
	Palette *ansi256.Palette

	_ struct{}
}

var (
	litColor   = color.NRGBA{0, 255, 0, 255}
	blankColor = color.NRGBA{64, 64, 64, 255}
)

// Dev renders one display row at the console.
type Dev struct {
	w       io.Writer
	cols    int
	row     int
	palette ansi256.Palette

	cells []byte
	buf   bytes.Buffer
}

// New returns a Dev that mirrors a display row to the console.
func New(opts *Opts) *Dev {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	row := opts.Row
	if row < 1 {
		row = 1
	}
	return &Dev{
		w:       colorable.NewColorableStdout(),
		cols:    opts.Cols,
		row:     row,
		palette: *p,
		cells:   make([]byte, opts.Cols),
	}
}

func (d *Dev) String() string {
	return fmt.Sprintf("TermSeg(%d)", d.cols)
}

// SetCell updates the cell at the 1-based position (x,y) and redraws.
// Cells outside the mirrored row are ignored.
func (d *Dev) SetCell(x, y int, pattern byte) {
	if y != d.row || x < 1 || x > d.cols {
		return
	}
	if d.cells[x-1] == pattern {
		return
	}
	d.cells[x-1] = pattern
	_ = d.refresh()
}

// Halt implements conn.Resource. It resets the terminal attributes so the
// shell prompt is not corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

func (d *Dev) refresh() error {
	// Redraw in place; one allocation-free line per update.
	d.buf.Reset()
	_, _ = d.buf.WriteString("\r\033[0m")
	for _, p := range d.cells {
		c := blankColor
		if p != 0 {
			c = litColor
		}
		_, _ = io.WriteString(&d.buf, d.palette.Block(c))
		fmt.Fprintf(&d.buf, "\033[0m%02x ", p)
	}
	_, _ = d.buf.WriteString("\033[0m")
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ fmt.Stringer = &Dev{}
