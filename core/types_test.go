package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#ff0000", Color{1, 0, 0, 1}},
		{"00ff00", Color{0, 1, 0, 1}},
		{"#fff", Color{1, 1, 1, 1}},
		{" #000000 ", Color{0, 0, 0, 1}},
	}
	for _, tt := range tests {
		got, err := ParseHex(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	mid, err := ParseHex("#808080")
	require.NoError(t, err)
	assert.InDelta(t, 0.2159, mid.R, 1e-3, "sRGB mid grey is darker in linear light")
	assert.Equal(t, mid.R, mid.B)

	for _, bad := range []string{"", "#12345", "#gggggg", "#12345g"} {
		_, err := ParseHex(bad)
		assert.Error(t, err, bad)
	}
	assert.Panics(t, func() { MustHex("nope") })
}

func TestHexRoundTrips(t *testing.T) {
	for _, s := range []string{"#4ade80", "#a855f7", "#f59e0b", "#000000", "#ffffff"} {
		assert.Equal(t, s, MustHex(s).Hex())
	}
	assert.Equal(t, "#ffffff", Color{3, 2, 1.5, 1}.Hex(), "HDR clamps")
}

func TestScaleKeepsAlpha(t *testing.T) {
	c := Color{0.5, 0.25, 1, 0.5}.Scale(2)
	assert.Equal(t, Color{1, 0.5, 2, 0.5}, c)
	assert.True(t, ColorBlack.IsBlack())
	assert.False(t, c.IsBlack())
}
