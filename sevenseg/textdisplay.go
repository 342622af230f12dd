// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sevenseg

import (
	"fmt"

	"periph.io/x/conn/v3/display"
)

// The TextDisplay surface writes through the framebuffer and flushes
// immediately, so it behaves like the direct-drive displays the interface
// was modeled on.

// MinCol returns the minimum column position.
func (d *Driver) MinCol() int {
	return 1
}

// MinRow returns the minimum row position.
func (d *Driver) MinRow() int {
	return 1
}

// Cols returns the number of columns the display supports.
func (d *Driver) Cols() int {
	return d.width
}

// Rows returns the number of rows the display supports.
func (d *Driver) Rows() int {
	return d.height
}

// MoveTo moves the cursor to the 1-based row and column.
func (d *Driver) MoveTo(row, col int) error {
	if row < d.MinRow() || row > d.height || col < d.MinCol() || col > d.width {
		return fmt.Errorf("sevenseg: MoveTo(%d,%d) out of range", row, col)
	}
	d.row, d.col = row, col
	return d.dev.MoveTo(row, col)
}

// Home moves the cursor to (MinRow, MinCol).
func (d *Driver) Home() error {
	d.row, d.col = 1, 1
	return d.dev.Home()
}

// Move the cursor forward or backward. Vertical movement is not supported.
func (d *Driver) Move(dir display.CursorDirection) error {
	switch dir {
	case display.Forward:
		if d.col < d.width {
			d.col++
		}
	case display.Backward:
		if d.col > 1 {
			d.col--
		}
	default:
		return fmt.Errorf("sevenseg: %w", display.ErrNotImplemented)
	}
	return d.dev.MoveTo(d.row, d.col)
}

// Cursor sets the cursor mode. Seven-segment tubes have no underline, so
// anything but off maps onto the controller's blink.
func (d *Driver) Cursor(modes ...display.CursorMode) error {
	for _, mode := range modes {
		switch mode {
		case display.CursorOff:
			d.cursor = false
			d.blink = false
		case display.CursorBlink, display.CursorBlock, display.CursorUnderline:
			d.cursor = true
			d.blink = true
		default:
			return fmt.Errorf("sevenseg: unexpected cursor mode %d", mode)
		}
	}
	return d.dev.Control(d.on, d.cursor, d.blink)
}

// AutoScroll is not supported by this device.
func (d *Driver) AutoScroll(enabled bool) error {
	return display.ErrNotImplemented
}

// Display turns the display output on or off without losing its content.
func (d *Driver) Display(on bool) error {
	d.on = on
	return d.dev.Control(on, d.cursor, d.blink)
}

// Write places p at the cursor, advancing it, and flushes to the hardware.
func (d *Driver) Write(p []byte) (int, error) {
	for _, c := range p {
		d.WriteCharAt(d.col, d.row, c)
		if d.col < d.width {
			d.col++
		} else if d.row < d.height {
			d.row++
			d.col = 1
		}
	}
	if err := d.Flush(); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteString writes text at the cursor position.
func (d *Driver) WriteString(text string) (int, error) {
	return d.Write([]byte(text))
}

// String implements conn.Resource.
func (d *Driver) String() string {
	return d.Info()
}

var _ display.TextDisplay = &Driver{}
