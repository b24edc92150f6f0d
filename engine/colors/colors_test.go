package colors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#ff0000")
	require.NoError(t, err)
	assert.Equal(t, Red, c)

	c, err = ParseHex("00000080")
	require.NoError(t, err)
	assert.InDelta(t, 128.0/255, c[3], 1e-6)

	for _, bad := range []string{"", "#fff", "#gg0000", "#1234567"} {
		_, err := ParseHex(bad)
		assert.Error(t, err, bad)
	}
}

func TestHexRoundTrip(t *testing.T) {
	assert.Equal(t, "#ffffffff", White.Hex())
	assert.Equal(t, "#141a1fff", DarkGray.Hex())

	c, err := ParseHex(DarkGray.Hex())
	require.NoError(t, err)
	for i := range c {
		assert.InDelta(t, DarkGray[i], c[i], 1.0/255)
	}
}

func TestWithAlpha(t *testing.T) {
	c := Blue.WithAlpha(0.5)
	_, _, b, a := c.RGBA()
	assert.Equal(t, float32(1), b)
	assert.Equal(t, float32(0.5), a)
	assert.Equal(t, float32(1), Blue[3], "receiver is a copy")
}
