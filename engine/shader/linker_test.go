package shader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubastard/forge/engine/errs"
)

func glslStages() []StageCode {
	return []StageCode{
		{Kind: StageVertex, Label: "Basic:Vertex", Source: "void main(){}\n"},
		{Kind: StageFragment, Label: "Basic:Fragment", Source: "void main(){}\n"},
	}
}

func TestLink(t *testing.T) {
	dev := newFakeDevice()
	prog, err := Link(dev, glslStages())
	require.NoError(t, err)
	require.NotZero(t, prog)

	assert.Len(t, dev.programs[prog], 2, "both stages attached")
	assert.Len(t, dev.detached, 2)
	assert.Empty(t, dev.stages, "stage objects are released after linking")
}

func TestLinkCompileFailureReleasesStages(t *testing.T) {
	dev := newFakeDevice()
	dev.failCompile = StageFragment

	prog, err := Link(dev, glslStages())
	require.Error(t, err)
	assert.Zero(t, prog)
	assert.Equal(t, errs.ShaderCompilationFailed, errs.CodeOf(err))
	assert.Contains(t, err.Error(), "0:1: error: syntax")
	assert.Empty(t, dev.stages)
	assert.Empty(t, dev.programs, "no program is created")
}

func TestLinkFailureReleasesEverything(t *testing.T) {
	dev := newFakeDevice()
	dev.failLink = true

	_, err := Link(dev, glslStages())
	require.Error(t, err)
	assert.Equal(t, errs.ShaderLinkFailed, errs.CodeOf(err))
	assert.Contains(t, err.Error(), "varying mismatch")
	assert.Empty(t, dev.stages)
	assert.Empty(t, dev.programs)
}

func TestLinkNoStages(t *testing.T) {
	_, err := Link(newFakeDevice(), nil)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestStageCodeIsBinary(t *testing.T) {
	assert.False(t, StageCode{Source: "x"}.IsBinary())
	assert.True(t, StageCode{Binary: testBinary()}.IsBinary())
	assert.False(t, StageCode{}.IsBinary())
}
