package shader_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/orrery/engine/core"
	"github.com/spaghettifunk/orrery/engine/renderer/metadata"
	"github.com/spaghettifunk/orrery/engine/renderer/shader"
)

const paramsVertex = `
struct Transform {
    m: mat4x4<f32>,
};
@group(0) @binding(0) var<uniform> transform: Transform;

// @vertex fn commented_out(@location(9) x: f32) {}
@vertex
fn vs_main(@builtin(vertex_index) idx: u32,
           @location(1) colour: vec4<f32>,
           @location(0) position: vec3<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(position, 1.0) * transform.m;
}
`

const structVertex = `
struct VertexInput {
    @location(0) position: vec3f,
    @location(1) uv: vec2f,
    @builtin(instance_index) instance: u32,
};

struct VertexOutput {
    @builtin(position) clip: vec4f,
    @location(0) uv: vec2f,
};

@vertex
fn main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip = vec4f(in.position, 1.0);
    out.uv = in.uv;
    return out;
}
`

func TestReflectVertexInputsFromParameters(t *testing.T) {
	inputs, err := shader.ReflectVertexInputs(paramsVertex)
	require.NoError(t, err)
	require.Len(t, inputs, 2)

	assert.Equal(t, shader.Input{Location: 0, Name: "position", Type: "vec3<f32>", Format: metadata.FormatR32G32B32Float}, inputs[0])
	assert.Equal(t, shader.Input{Location: 1, Name: "colour", Type: "vec4<f32>", Format: metadata.FormatR32G32B32A32Float}, inputs[1])
}

func TestReflectVertexInputsFromStruct(t *testing.T) {
	inputs, err := shader.ReflectVertexInputs(structVertex)
	require.NoError(t, err)
	require.Len(t, inputs, 2)

	assert.Equal(t, "position", inputs[0].Name)
	assert.Equal(t, metadata.FormatR32G32B32Float, inputs[0].Format)
	assert.Equal(t, "uv", inputs[1].Name)
	assert.Equal(t, metadata.FormatR32G32Float, inputs[1].Format)
}

func TestReflectVertexInputsErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"no entry", `@fragment fn fs() -> @location(0) vec4f { return vec4f(1.0); }`},
		{"duplicate location", `@vertex fn vs(@location(0) a: vec3f, @location(0) b: vec3f) -> @builtin(position) vec4f { return vec4f(a, 1.0); }`},
		{"unsupported type", `@vertex fn vs(@location(0) a: mat2x2<f32>) -> @builtin(position) vec4f { return vec4f(1.0); }`},
		{"unknown struct", `@vertex fn vs(in: Missing) -> @builtin(position) vec4f { return vec4f(1.0); }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := shader.ReflectVertexInputs(tt.source)
			assert.Error(t, err)
		})
	}
}

func TestEntryPoint(t *testing.T) {
	name, err := shader.EntryPoint(structVertex, metadata.StageVertex)
	require.NoError(t, err)
	assert.Equal(t, "main", name)

	_, err = shader.EntryPoint(structVertex, metadata.StagePixel)
	assert.Error(t, err)
}

func TestCompile(t *testing.T) {
	src := `
@vertex
fn vs_main(@location(0) position: vec3<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(position, 1.0);
}
`
	p, err := shader.Compile("plain", metadata.StageVertex, src)
	require.NoError(t, err)

	assert.Equal(t, "vs_main", p.Entry)
	require.Len(t, p.Inputs, 1)
	require.NotEmpty(t, p.SPIRV)
	assert.Equal(t, uint32(0x07230203), binary.LittleEndian.Uint32(p.SPIRV))

	words := p.Words()
	assert.Len(t, words, len(p.SPIRV)/4)
	assert.Equal(t, uint32(0x07230203), words[0])
}

func TestCompileRejectsMissingEntry(t *testing.T) {
	_, err := shader.Compile("broken", metadata.StagePixel, structVertex)
	assert.Error(t, err)
}

func TestLibraryCachesPrograms(t *testing.T) {
	src := shader.MapSource{
		shader.FileName("plain", metadata.StageVertex): `
@vertex
fn vs_main(@location(0) position: vec3<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(position, 1.0);
}
`,
	}
	lib := shader.NewLibrary(src)

	a, err := lib.Program("plain", metadata.StageVertex)
	require.NoError(t, err)
	b, err := lib.Program("plain", metadata.StageVertex)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, lib.Len())

	_, err = lib.Program("plain", metadata.StagePixel)
	assert.Error(t, err)
	assert.Equal(t, 1, lib.Len())
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "texture.vert.wgsl", shader.FileName("texture", metadata.StageVertex))
	assert.Equal(t, "texture.frag.wgsl", shader.FileName("texture", metadata.StagePixel))
}

func TestLibraryPreload(t *testing.T) {
	src := shader.MapSource{
		shader.FileName("plain", metadata.StageVertex): `
@vertex
fn vs_main(@location(0) position: vec3<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(position, 1.0);
}
`,
		shader.FileName("plain", metadata.StagePixel): `
@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}
`,
	}
	jobs, err := core.NewJobSystem(2, 4)
	require.NoError(t, err)
	defer jobs.Shutdown()

	lib := shader.NewLibrary(src)
	require.NoError(t, lib.Preload(jobs, []string{"plain"}))
	assert.Equal(t, 2, lib.Len())

	err = lib.Preload(jobs, []string{"plain", "missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.vert.wgsl")
	assert.Contains(t, err.Error(), "missing.frag.wgsl")
	assert.Equal(t, 2, lib.Len())
}
