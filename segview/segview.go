// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package segview renders the cells of a seven-segment display into an
// image buffer and serves it as an HTTP request handler. Clients get a PNG
// snapshot of the rendered tubes, or with "?stream=1" a multipart stream
// updated on every change.
//
// The primary use case is developing display output on a host machine
// without the hardware attached; devices with network connectivity can use
// it to expose a copy of their local display via a web interface.
package segview

import (
	"fmt"
	"image"
	"image/color"
	"net/http"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// Default cell raster size in pixels.
const (
	defaultCellWidth  = 48
	defaultCellHeight = 80
)

// captionHeight is the strip below the tubes holding the label.
const captionHeight = 20

// Options for segview displays.
type Options struct {
	// Cols and Rows of the mirrored character grid.
	Cols, Rows int

	// CellWidth and CellHeight are the raster size of one tube in
	// pixels. Zero selects the defaults.
	CellWidth, CellHeight int

	// On and Off are the colors of lit and dark segments. Nil selects
	// LED green on a near-black background.
	On, Off color.Color
}

// Display renders seven-segment tubes and implements http.Handler.
type Display struct {
	cols, rows int
	cw, ch     int
	on, off    color.Color

	mu       sync.Mutex
	cells    []byte
	buffer   *image.RGBA
	dc       *gg.Context
	snapshot []byte
	clients  map[*client]struct{}
}

// New creates a new segview display instance.
func New(opt *Options) *Display {
	d := &Display{
		cols:    opt.Cols,
		rows:    opt.Rows,
		cw:      opt.CellWidth,
		ch:      opt.CellHeight,
		on:      opt.On,
		off:     opt.Off,
		cells:   make([]byte, opt.Cols*opt.Rows),
		clients: map[*client]struct{}{},
	}
	if d.cw <= 0 {
		d.cw = defaultCellWidth
	}
	if d.ch <= 0 {
		d.ch = defaultCellHeight
	}
	if d.on == nil {
		d.on = color.NRGBA{0, 230, 80, 255}
	}
	if d.off == nil {
		d.off = color.NRGBA{22, 28, 22, 255}
	}
	d.buffer = image.NewRGBA(image.Rect(0, 0, d.cols*d.cw, d.rows*d.ch+captionHeight))
	d.dc = gg.NewContextForRGBA(d.buffer)
	d.dc.SetColor(color.Black)
	d.dc.Clear()
	d.drawCaption()
	for y := 1; y <= d.rows; y++ {
		for x := 1; x <= d.cols; x++ {
			d.drawCellLocked(x, y, 0)
		}
	}
	return d
}

// String returns the name of the device.
func (d *Display) String() string {
	return fmt.Sprintf("SegView(%dx%d)", d.cols, d.rows)
}

// Bounds returns the pixel size of the rendered image.
func (d *Display) Bounds() image.Rectangle {
	return d.buffer.Bounds()
}

// SetCell updates the tube at the 1-based cell (x,y) with a segment
// pattern and notifies streaming clients. Out-of-range cells are ignored.
func (d *Display) SetCell(x, y int, pattern byte) {
	if x < 1 || y < 1 || x > d.cols || y > d.rows {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	ix := (y-1)*d.cols + (x - 1)
	if d.cells[ix] == pattern {
		return
	}
	d.cells[ix] = pattern
	d.drawCellLocked(x, y, pattern)
	d.bufferChangedLocked()
}

// Halt implements conn.Resource and terminates all running client
// requests asynchronously.
func (d *Display) Halt() error {
	d.mu.Lock()
	d.terminateClientsLocked()
	d.mu.Unlock()
	return nil
}

func (d *Display) drawCaption() {
	d.dc.SetFontFace(basicfont.Face7x13)
	d.dc.SetColor(color.Gray{160})
	label := fmt.Sprintf("sevenseg %dx%d", d.cols, d.rows)
	d.dc.DrawString(label, 4, float64(d.rows*d.ch+captionHeight-6))
}

// drawCellLocked paints the seven segments of one tube. Dark segments stay
// faintly visible, the way a real LED digit looks.
func (d *Display) drawCellLocked(x, y int, pattern byte) {
	x0 := float64((x-1)*d.cw) + float64(d.cw)*0.22
	x1 := float64(x*d.cw) - float64(d.cw)*0.22
	y0 := float64((y-1)*d.ch) + float64(d.ch)*0.12
	y1 := float64(y*d.ch) - float64(d.ch)*0.12
	ym := (y0 + y1) / 2

	// Endpoints of segments A-G, bit 0 first.
	segments := [7][4]float64{
		{x0, y0, x1, y0}, // A
		{x1, y0, x1, ym}, // B
		{x1, ym, x1, y1}, // C
		{x0, y1, x1, y1}, // D
		{x0, ym, x0, y1}, // E
		{x0, y0, x0, ym}, // F
		{x0, ym, x1, ym}, // G
	}

	// Clear the cell background first so segment caps don't accumulate.
	d.dc.SetColor(color.Black)
	d.dc.DrawRectangle(float64((x-1)*d.cw), float64((y-1)*d.ch), float64(d.cw), float64(d.ch))
	d.dc.Fill()

	d.dc.SetLineCap(gg.LineCapRound)
	d.dc.SetLineWidth(float64(d.cw) / 9)
	for bit, seg := range segments {
		if pattern&(1<<bit) != 0 {
			d.dc.SetColor(d.on)
		} else {
			d.dc.SetColor(d.off)
		}
		d.dc.DrawLine(seg[0], seg[1], seg[2], seg[3])
		d.dc.Stroke()
	}
}

var _ http.Handler = (*Display)(nil)
