// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package segment7 maps printable characters to seven-segment bit patterns.
//
// The segment assignment follows the usual datasheet convention:
//
//	 _a_
//	f|   |b
//	 |_g_|
//	e|   |c
//	 |_d_|
//
// Segment A is bit 0 through segment G at bit 6. Bit 7 is unused by real
// displays and passes through Flip untouched.
//
// The default character map is the de-facto standard ASCII map used by the
// Linux kernel's map_to_7segment.h.
package segment7

// Segment bit positions within a pattern byte.
const (
	SegA byte = 1 << iota
	SegB
	SegC
	SegD
	SegE
	SegF
	SegG
	segReserved
)

// Blank is the pattern for characters without a glyph. All segments dark.
const Blank byte = 0x00

// defaultMap covers ASCII 0-127. Characters outside the table and the
// non-printable range resolve to Blank.
var defaultMap = [128]byte{
	// 0x00-0x1f: non printable
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	//       !     "     #     $     %     &     '
	0x00, 0x30, 0x22, 0x36, 0x6d, 0x12, 0x7d, 0x20,
	// (     )     *     +     ,     -     .     /
	0x39, 0x0f, 0x76, 0x46, 0x10, 0x40, 0x10, 0x52,
	// 0     1     2     3     4     5     6     7
	0x3f, 0x06, 0x5b, 0x4f, 0x66, 0x6d, 0x7d, 0x07,
	// 8     9     :     ;     <     =     >     ?
	0x7f, 0x6f, 0x48, 0x48, 0x61, 0x48, 0x43, 0x27,
	// @     A     B     C     D     E     F     G
	0x7b, 0x77, 0x7f, 0x39, 0x3f, 0x79, 0x71, 0x3d,
	// H     I     J     K     L     M     N     O
	0x76, 0x06, 0x0e, 0x76, 0x38, 0x37, 0x37, 0x3f,
	// P     Q     R     S     T     U     V     W
	0x73, 0x3f, 0x77, 0x6d, 0x70, 0x3e, 0x3e, 0x7e,
	// X     Y     Z     [     \     ]     ^     _
	0x76, 0x6e, 0x5b, 0x39, 0x64, 0x0f, 0x23, 0x08,
	// `     a     b     c     d     e     f     g
	0x02, 0x5f, 0x7c, 0x58, 0x5e, 0x7b, 0x71, 0x6f,
	// h     i     j     k     l     m     n     o
	0x74, 0x04, 0x0c, 0x76, 0x18, 0x54, 0x54, 0x5c,
	// p     q     r     s     t     u     v     w
	0x73, 0x67, 0x50, 0x6d, 0x78, 0x1c, 0x1c, 0x3c,
	// x     y     z     {     |     }     ~
	0x76, 0x6e, 0x5b, 0x39, 0x30, 0x0f, 0x01, 0x00,
}

// Encode returns the segment pattern for c. Characters without a glyph,
// including all byte values above 0x7f, return Blank.
func Encode(c byte) byte {
	if c > 0x7f {
		return Blank
	}
	return defaultMap[c]
}

// EncodeString encodes every byte of s.
func EncodeString(s string) []byte {
	out := make([]byte, len(s))
	for ix := 0; ix < len(s); ix++ {
		out[ix] = Encode(s[ix])
	}
	return out
}

// Flip remaps a pattern for a display mounted rotated by 180 degrees. The
// three perimeter segment pairs swap (A/D, B/E, C/F) and the center segment
// G stays where it is. Flip is its own inverse.
func Flip(p byte) byte {
	var flipped byte

	if p&SegA != 0 {
		flipped |= SegD
	}
	if p&SegB != 0 {
		flipped |= SegE
	}
	if p&SegC != 0 {
		flipped |= SegF
	}
	if p&SegD != 0 {
		flipped |= SegA
	}
	if p&SegE != 0 {
		flipped |= SegB
	}
	if p&SegF != 0 {
		flipped |= SegC
	}
	flipped |= p & (SegG | segReserved)

	return flipped
}
