package shader

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubastard/forge/engine/errs"
	"github.com/hubastard/forge/engine/logx"
)

const triangleShader = "#name Triangle\n#type vertex\n" + wgslVertex + "#type fragment\n" + wgslFragment

func testPipeline(t *testing.T, mode Mode) (*Pipeline, *fakeDevice, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	log := logx.New(&logs, logx.LevelTrace)
	dev := newFakeDevice()
	c := testCompiler()
	return &Pipeline{
		Device:     dev,
		Compiler:   c,
		Cache:      NewCache(t.TempDir(), log),
		Translator: TranslatorFor(3, 3, c),
		Mode:       mode,
		Logger:     log,
	}, dev, &logs
}

func TestPipelineDirect(t *testing.T) {
	p, dev, _ := testPipeline(t, ModeDirect)
	prog, err := p.Build(basicSource, FromString)
	require.NoError(t, err)

	assert.Equal(t, Linked, prog.State())
	assert.Equal(t, "Basic", prog.Name())
	require.Len(t, dev.compiled, 2)
	assert.Equal(t, "void main(){}\n", dev.compiled[0].Source)
	assert.Equal(t, "Basic:Vertex", dev.compiled[0].Label)
	assert.Empty(t, prog.All(), "direct mode does not reflect")
}

func TestPipelineEmptyNameFailsBeforeCompiling(t *testing.T) {
	p, dev, _ := testPipeline(t, ModeTranslate)
	_, err := p.Build("#type vertex\n"+wgslVertex, FromString)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	assert.Empty(t, dev.compiled)

	entries, _ := os.ReadDir(p.Cache.Root)
	assert.Empty(t, entries, "nothing was compiled or cached")
}

func TestPipelineMissingFile(t *testing.T) {
	p, _, _ := testPipeline(t, ModeTranslate)
	_, err := p.Build(filepath.Join(t.TempDir(), "missing.shader"), FromFile)
	assert.Equal(t, errs.FileNotFound, errs.CodeOf(err))
}

func TestPipelineTranslate(t *testing.T) {
	p, dev, logs := testPipeline(t, ModeTranslate)
	prog, err := p.Build(triangleShader, FromString)
	require.NoError(t, err)
	assert.Equal(t, Linked, prog.State())

	require.Len(t, dev.compiled, 2)
	for _, code := range dev.compiled {
		assert.Contains(t, code.Source, "#version 330 core")
		assert.False(t, code.IsBinary())
	}
	assert.Empty(t, prog.StageInputs(), "the vertex stage only reads built-ins")

	assert.NotContains(t, logs.String(), "shader cache hit")
	_, ok, err := p.Cache.Load("Triangle", StageVertex, "")
	require.NoError(t, err)
	assert.True(t, ok, "the binary was cached")

	// The second build is served from the cache.
	again, err := p.Build(triangleShader, FromString)
	require.NoError(t, err)
	assert.Equal(t, Linked, again.State())
	assert.Contains(t, logs.String(), "shader cache hit")
	assert.Equal(t, dev.compiled[0].Source, dev.compiled[2].Source)
}

func TestPipelineBinaryMode(t *testing.T) {
	p, dev, _ := testPipeline(t, ModeBinary)
	_, err := p.Build(triangleShader, FromString)
	require.NoError(t, err)
	require.Len(t, dev.compiled, 2)
	for _, code := range dev.compiled {
		assert.True(t, code.IsBinary())
		assert.NoError(t, code.Binary.CheckHeader())
	}
	assert.Equal(t, "vs_main", dev.compiled[0].EntryPoint)
	assert.Equal(t, "fs_main", dev.compiled[1].EntryPoint)
}

func TestPipelineStageFailureIsReturned(t *testing.T) {
	p, dev, logs := testPipeline(t, ModeTranslate)
	src := "#name Half\n#type vertex\nfn broken( {\n#type fragment\n" + wgslFragment
	_, err := p.Build(src, FromString)
	require.Error(t, err)
	assert.Equal(t, errs.ShaderCompilationFailed, errs.CodeOf(err))
	assert.Empty(t, dev.compiled, "nothing is linked")

	_, ok, _ := p.Cache.Load("Half", StageFragment, "")
	assert.True(t, ok, "the healthy sibling was still compiled and cached")
	assert.Contains(t, logs.String(), "shader stage compilation failed")
}

func movingShader(input string) string {
	return "#name Moving\n#type vertex\n" + `
@vertex
fn vs_main(@location(0) ` + input + `: vec3<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(` + input + `, 1.0);
}
` + "#type fragment\n" + wgslFragment
}

func TestPipelineStaleCacheEntryStaysConsistent(t *testing.T) {
	p, dev, logs := testPipeline(t, ModeTranslate)
	first, err := p.Build(movingShader("position"), FromString)
	require.NoError(t, err)
	vertexGLSL := dev.compiled[0].Source

	stale, err := p.Build(movingShader("offset"), FromString)
	require.NoError(t, err)
	assert.Equal(t, vertexGLSL, dev.compiled[2].Source, "code comes from the cached source")
	require.Len(t, stale.StageInputs(), 1)
	assert.Equal(t, "position", stale.StageInputs()[0].Name, "reflection comes from the same entry")
	assert.Contains(t, logs.String(), "shader cache entry is stale")

	broken := "#name Moving\n#type vertex\nfn oops( {\n#type fragment\n" + wgslFragment
	_, err = p.Build(broken, FromString)
	require.NoError(t, err, "a warm entry is served without parsing the new source")
	assert.Equal(t, vertexGLSL, dev.compiled[4].Source)

	fresh, err := p.Reload(first, movingShader("offset"), FromString)
	require.NoError(t, err)
	require.Len(t, fresh.StageInputs(), 1)
	assert.Equal(t, "offset", fresh.StageInputs()[0].Name)
}

func TestPipelineEntryWithoutSourceIsRecompiled(t *testing.T) {
	p, _, logs := testPipeline(t, ModeTranslate)
	_, err := p.Build(triangleShader, FromString)
	require.NoError(t, err)
	require.NoError(t, os.Remove(p.Cache.SourcePath("Triangle", StageVertex, "")))

	prog, err := p.Build(triangleShader, FromString)
	require.NoError(t, err)
	assert.Equal(t, Linked, prog.State())
	assert.Contains(t, logs.String(), "shader cache entry has no source")
}

func TestPipelineCorruptCacheEntryIsRecompiled(t *testing.T) {
	p, _, logs := testPipeline(t, ModeTranslate)
	require.NoError(t, p.Cache.Store("Triangle", StageVertex, "", Binary{1, 2, 3, 4, 5}))

	prog, err := p.Build(triangleShader, FromString)
	require.NoError(t, err)
	assert.Equal(t, Linked, prog.State())
	assert.Contains(t, logs.String(), "corrupt")
}

func TestPipelineLinkFailure(t *testing.T) {
	p, dev, _ := testPipeline(t, ModeDirect)
	dev.failLink = true
	_, err := p.Build(basicSource, FromString)
	assert.Equal(t, errs.ShaderLinkFailed, errs.CodeOf(err))
	assert.Panics(t, func() { p.MustBuild(basicSource, FromString) })
}

func TestPipelineReload(t *testing.T) {
	p, dev, _ := testPipeline(t, ModeDirect)
	old, err := p.Build(basicSource, FromString)
	require.NoError(t, err)

	dev.failLink = true
	kept, err := p.Reload(old, basicSource, FromString)
	assert.Error(t, err)
	assert.Same(t, old, kept, "a failed reload keeps the old program")
	assert.Equal(t, Linked, old.State())

	dev.failLink = false
	fresh, err := p.Reload(old, basicSource, FromString)
	require.NoError(t, err)
	assert.NotSame(t, old, fresh)
	assert.Equal(t, Failed, old.State())
	assert.Equal(t, Linked, fresh.State())
}

func TestPipelineNoDevice(t *testing.T) {
	p := &Pipeline{Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))}
	_, err := p.Build(basicSource, FromString)
	assert.ErrorIs(t, err, errs.ErrInvalidOperation)
}

func TestPipelinePrepareWithoutDevice(t *testing.T) {
	p := &Pipeline{Compiler: testCompiler(), Mode: ModeTranslate}
	prep, err := p.Prepare(triangleShader, FromString)
	require.NoError(t, err)

	assert.Equal(t, "Triangle", prep.Name)
	require.Len(t, prep.Stages, 2)
	assert.Equal(t, StageVertex, prep.Stages[0].Kind)
	assert.Equal(t, StageFragment, prep.Stages[1].Kind)
	for _, code := range prep.Stages {
		assert.Contains(t, code.Source, "#version 330 core")
		assert.NoError(t, code.Binary.CheckHeader())
	}
	require.NotNil(t, prep.Reflection)

	p.Mode = ModeDirect
	prep, err = p.Prepare(basicSource, FromString)
	require.NoError(t, err)
	assert.Len(t, prep.Stages, 2)
	assert.Empty(t, prep.Reflection.All())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("Binary")
	require.NoError(t, err)
	assert.Equal(t, ModeBinary, m)
	assert.Equal(t, "direct", ModeDirect.String())

	_, err = ParseMode("jit")
	assert.ErrorIs(t, err, errs.ErrInvalidConfiguration)
}
