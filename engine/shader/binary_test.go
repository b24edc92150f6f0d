package shader

import (
	"testing"

	"github.com/gogpu/naga/spirv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubastard/forge/engine/errs"
)

func TestBinaryBytes(t *testing.T) {
	bin := Binary{spirv.MagicNumber, 0x00010300, 0, 8, 0}
	b := bin.Bytes()
	require.Len(t, b, 20)
	assert.Equal(t, 20, bin.Len())
	assert.Equal(t, []byte{0x03, 0x02, 0x23, 0x07}, b[:4], "little-endian magic")

	back, err := BinaryFromBytes(b)
	require.NoError(t, err)
	assert.Equal(t, bin, back)
}

func TestBinaryFromBytesOddLength(t *testing.T) {
	_, err := BinaryFromBytes([]byte{1, 2, 3})
	assert.Equal(t, errs.InvalidShaderModule, errs.CodeOf(err))
}

func TestBinaryCheckHeader(t *testing.T) {
	assert.NoError(t, Binary{spirv.MagicNumber, 0x00010300, 0, 1, 0}.CheckHeader())
	assert.Error(t, Binary{spirv.MagicNumber}.CheckHeader())
	assert.ErrorIs(t, Binary{0xdeadbeef, 0, 0, 0, 0}.CheckHeader(), errs.ErrInvalidShaderModule)
}

func TestBinaryVersion(t *testing.T) {
	major, minor := Binary{spirv.MagicNumber, 0x00010300}.Version()
	assert.Equal(t, uint8(1), major)
	assert.Equal(t, uint8(3), minor)

	major, minor = Binary{}.Version()
	assert.Zero(t, major)
	assert.Zero(t, minor)
}
