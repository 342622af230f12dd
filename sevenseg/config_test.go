// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sevenseg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	w, h, err := parseSize("20x4")
	require.NoError(t, err)
	assert.Equal(t, 20, w)
	assert.Equal(t, 4, h)

	for _, bad := range []string{"", "20", "x4", "0x4", "20x0", "99x4", "20x5", "20x99", "axb"} {
		_, _, err := parseSize(bad)
		assert.Error(t, err, "size %q", bad)
	}
}

func TestSizeFallback(t *testing.T) {
	o := Opts{Size: "bogus"}
	w, h := o.size()
	assert.Equal(t, 20, w)
	assert.Equal(t, 4, h)

	o = Opts{}
	w, h = o.size()
	assert.Equal(t, 20, w)
	assert.Equal(t, 4, h)

	// More rows than the controller can address falls back too.
	o = Opts{Size: "20x5"}
	w, h = o.size()
	assert.Equal(t, 20, w)
	assert.Equal(t, 4, h)

	o = Opts{Size: "16x2"}
	w, h = o.size()
	assert.Equal(t, 16, w)
	assert.Equal(t, 2, h)
}

func TestLoadConfig(t *testing.T) {
	doc := `
connectiontype: i2c
device: /dev/i2c-1
port: 0xa7
size: 16x2
backlight: true
backlightinvert: true
delaybus: true
flip: true
pins:
  rs: 0x01
  rw: 0x02
  en: 0x04
  bl: 0x08
  d4: 0x10
  d5: 0x20
  d6: 0x40
  d7: 0x80
`
	o, err := LoadConfig(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "i2c", o.Connection)
	assert.Equal(t, "/dev/i2c-1", o.Device)
	assert.Equal(t, uint8(0xa7), o.Port)
	assert.Equal(t, "16x2", o.Size)
	assert.True(t, o.Backlight)
	assert.True(t, o.BacklightInvert)
	assert.True(t, o.DelayBus)
	assert.True(t, o.Flip)
	require.NotNil(t, o.Pins)
	assert.Equal(t, byte(0x04), o.Pins.EN)
}

func TestLoadConfigDefaults(t *testing.T) {
	o, err := LoadConfig(strings.NewReader("device: /dev/i2c-2\n"))
	require.NoError(t, err)
	// Everything else keeps the defaults.
	assert.Equal(t, "i2c", o.Connection)
	assert.Equal(t, uint8(0x27), o.Port)
	assert.Equal(t, DefaultSize, o.Size)
	assert.True(t, o.Backlight)
	assert.Nil(t, o.Pins)
}

func TestLoadConfigUnknownKey(t *testing.T) {
	_, err := LoadConfig(strings.NewReader("colour: green\n"))
	assert.Error(t, err)
}
