// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package segment7

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeKnownGlyphs(t *testing.T) {
	// Digits are the patterns every datasheet agrees on.
	digits := []byte{0x3f, 0x06, 0x5b, 0x4f, 0x66, 0x6d, 0x7d, 0x07, 0x7f, 0x6f}
	for ix, want := range digits {
		assert.Equal(t, want, Encode(byte('0'+ix)), "digit %d", ix)
	}
	assert.Equal(t, byte(0x77), Encode('A'))
	assert.Equal(t, SegG, Encode('-'))
	assert.Equal(t, Blank, Encode(' '))
}

func TestEncodeTotal(t *testing.T) {
	// Every byte value must encode without panicking, and everything
	// outside ASCII is blank.
	for c := 0; c < 256; c++ {
		p := Encode(byte(c))
		if c > 0x7f {
			assert.Equal(t, Blank, p, "byte 0x%02x", c)
		}
		assert.Zero(t, p&segReserved, "byte 0x%02x set the reserved bit", c)
	}
}

func TestEncodeString(t *testing.T) {
	got := EncodeString("10")
	assert.Equal(t, []byte{0x06, 0x3f}, got)
}

func TestFlipInvolution(t *testing.T) {
	for p := 0; p < 256; p++ {
		assert.Equal(t, byte(p), Flip(Flip(byte(p))), "pattern 0x%02x", p)
	}
	// Also via the table, per character.
	for c := 0; c < 128; c++ {
		p := Encode(byte(c))
		assert.Equal(t, p, Flip(Flip(p)), "char %q", byte(c))
	}
}

func TestFlipPairs(t *testing.T) {
	pairs := [][2]byte{{SegA, SegD}, {SegB, SegE}, {SegC, SegF}}
	for _, pair := range pairs {
		assert.Equal(t, pair[1], Flip(pair[0]))
		assert.Equal(t, pair[0], Flip(pair[1]))
	}
	assert.Equal(t, SegG, Flip(SegG))
	assert.Equal(t, byte(0x00), Flip(0x00))
	assert.Equal(t, byte(0xff), Flip(0xff))

	// The center segment never moves, whatever else is lit.
	for p := 0; p < 256; p++ {
		assert.Equal(t, byte(p)&SegG, Flip(byte(p))&SegG, "pattern 0x%02x", p)
	}
}

func TestFlipDigits(t *testing.T) {
	// A flipped 2 reads as 2, a flipped 6 reads as 9.
	assert.Equal(t, Encode('2'), Flip(Encode('2')))
	assert.Equal(t, Encode('9'), Flip(Encode('6')))
	assert.Equal(t, Encode('6'), Flip(Encode('9')))
}
