// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package termseg

import (
	"bytes"
	"strings"
	"testing"
)

func getDev(cols int) (*Dev, *bytes.Buffer) {
	d := New(&Opts{Cols: cols})
	buf := &bytes.Buffer{}
	d.w = buf
	return d, buf
}

func TestSetCell(t *testing.T) {
	d, buf := getDev(4)
	d.SetCell(1, 1, 0x3f)
	out := buf.String()
	if !strings.Contains(out, "3f") {
		t.Errorf("output %q does not contain the pattern", out)
	}
	if !strings.HasPrefix(out, "\r") {
		t.Error("refresh must redraw in place")
	}
	// All four cells are always drawn.
	if got := strings.Count(out, "00 "); got != 3 {
		t.Errorf("expected 3 blank cells, found %d", got)
	}
}

func TestSetCellIgnoresOtherRows(t *testing.T) {
	d, buf := getDev(4)
	d.SetCell(1, 2, 0x3f)
	d.SetCell(0, 1, 0x3f)
	d.SetCell(5, 1, 0x3f)
	if buf.Len() != 0 {
		t.Errorf("out-of-row cells must not redraw, wrote %q", buf.String())
	}
}

func TestUnchangedCellDoesNotRedraw(t *testing.T) {
	d, buf := getDev(2)
	d.SetCell(1, 1, 0x06)
	buf.Reset()
	d.SetCell(1, 1, 0x06)
	if buf.Len() != 0 {
		t.Errorf("unchanged cell redrew: %q", buf.String())
	}
}

func TestHalt(t *testing.T) {
	d, buf := getDev(2)
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(buf.String(), "\033[0m") {
		t.Error("Halt must reset terminal attributes")
	}
	if len(d.String()) == 0 {
		t.Error("String()")
	}
}
