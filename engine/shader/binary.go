package shader

import (
	"encoding/binary"

	"github.com/gogpu/naga/spirv"
	"github.com/hubastard/forge/engine/errs"
)

// Binary is one compiled stage: a SPIR-V module as 32-bit words.
type Binary []uint32

// headerWords is the SPIR-V header: magic, version, generator, bound, schema.
const headerWords = 5

// Len is the size of the binary in bytes.
func (b Binary) Len() int { return len(b) * 4 }

// Bytes returns the words in little-endian order, the on-disk form.
func (b Binary) Bytes() []byte {
	out := make([]byte, len(b)*4)
	for i, w := range b {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

// BinaryFromBytes is the inverse of Bytes.
func BinaryFromBytes(p []byte) (Binary, error) {
	if len(p)%4 != 0 {
		return nil, errs.New(errs.InvalidShaderModule, "shader.BinaryFromBytes",
			"length %d is not a multiple of 4", len(p))
	}
	out := make(Binary, len(p)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(p[i*4:])
	}
	return out, nil
}

// CheckHeader verifies the magic number and the header length.
func (b Binary) CheckHeader() error {
	if len(b) < headerWords {
		return errs.New(errs.InvalidShaderModule, "shader.CheckHeader",
			"%d words, want at least %d", len(b), headerWords)
	}
	if b[0] != spirv.MagicNumber {
		return errs.New(errs.InvalidShaderModule, "shader.CheckHeader",
			"bad magic number %#08x", b[0])
	}
	return nil
}

// Version returns the SPIR-V major and minor version from the header.
func (b Binary) Version() (major, minor uint8) {
	if len(b) < 2 {
		return 0, 0
	}
	return uint8(b[1] >> 16), uint8(b[1] >> 8)
}
