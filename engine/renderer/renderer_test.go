package renderer_test

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/orrery/engine/core"
	"github.com/spaghettifunk/orrery/engine/math"
	"github.com/spaghettifunk/orrery/engine/renderer"
	"github.com/spaghettifunk/orrery/engine/renderer/diagnostics"
	"github.com/spaghettifunk/orrery/engine/renderer/headless"
	"github.com/spaghettifunk/orrery/engine/renderer/metadata"
	"github.com/spaghettifunk/orrery/engine/renderer/shader"
)

var _ renderer.RendererBackend = (*headless.Backend)(nil)

func newGraphics(t *testing.T) (*renderer.Graphics, *headless.Backend) {
	t.Helper()
	backend := headless.New(64)
	gfx, err := renderer.NewGraphics(backend, "test", 800, 600)
	require.NoError(t, err)
	return gfx, backend
}

func vertexProgram() *shader.Program {
	return &shader.Program{
		Name:  "vs",
		Stage: metadata.StageVertex,
		Entry: "main",
		SPIRV: []byte{0x03, 0x02, 0x23, 0x07},
		Inputs: []shader.Input{
			{Location: 0, Name: "position", Type: "vec3<f32>", Format: metadata.FormatR32G32B32Float},
			{Location: 1, Name: "uv", Type: "vec2<f32>", Format: metadata.FormatR32G32Float},
		},
	}
}

func deviceMessage(text string) diagnostics.Message {
	return diagnostics.Message{Severity: diagnostics.SeverityError, Source: "validation", Text: text}
}

func TestNewGraphicsReportsInitializeFailure(t *testing.T) {
	backend := headless.New(8)
	backend.FailNext(headless.OpInitialize, metadata.ResultUnsupported)
	backend.EmitOnNextCall(headless.OpInitialize, deviceMessage("no suitable adapter"))

	_, err := renderer.NewGraphics(backend, "test", 800, 600)

	var rce *renderer.ResourceCreationError
	require.ErrorAs(t, err, &rce)
	assert.Equal(t, "Initialize", rce.Op)
	assert.Equal(t, metadata.ResultUnsupported, rce.Code)
	require.Len(t, rce.Messages, 1)
	assert.Contains(t, rce.Messages[0], "no suitable adapter")
	assert.Contains(t, err.Error(), "ERROR_UNSUPPORTED")
}

func TestBeginFrameOccludedSkipsWithoutSideEffects(t *testing.T) {
	gfx, backend := newGraphics(t)
	backend.SetOccluded(true)

	ok, err := gfx.BeginFrame(1024, 768)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, renderer.StateOccluded, gfx.State())
	assert.Zero(t, backend.CallCount(headless.OpBeginFrame))
	assert.Zero(t, backend.CallCount(headless.OpResize))

	backend.SetOccluded(false)
	ok, err = gfx.BeginFrame(1024, 768)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, renderer.StateReady, gfx.State())
}

func TestBeginFrameResizesOncePerSizeChange(t *testing.T) {
	gfx, backend := newGraphics(t)

	for i := 0; i < 3; i++ {
		ok, err := gfx.BeginFrame(1024, 768)
		require.NoError(t, err)
		require.True(t, ok)
	}
	assert.Equal(t, 1, backend.CallCount(headless.OpResize))

	w, h := gfx.BackBufferSize()
	assert.Equal(t, uint32(1024), w)
	assert.Equal(t, uint32(768), h)

	ok, err := gfx.BeginFrame(0, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, backend.CallCount(headless.OpResize))
}

func TestEndFrameDistinguishesDeviceRemoval(t *testing.T) {
	gfx, backend := newGraphics(t)
	backend.RemoveDevice(metadata.ResultDeviceHung)

	err := gfx.EndFrame()
	var removed *renderer.DeviceRemovedError
	require.ErrorAs(t, err, &removed)
	assert.Equal(t, metadata.ResultDeviceRemoved, removed.Code)
	assert.Equal(t, metadata.ResultDeviceHung, removed.Reason)
	assert.True(t, renderer.IsDeviceRemoved(err))
	assert.True(t, renderer.IsFatal(err))
}

func TestEndFramePresentFailure(t *testing.T) {
	gfx, backend := newGraphics(t)
	backend.FailNext(headless.OpPresent, metadata.ResultInvalidCall)

	err := gfx.EndFrame()
	var dse *renderer.DrawSubmissionError
	require.ErrorAs(t, err, &dse)
	assert.Equal(t, "Present", dse.Op)
	assert.Equal(t, metadata.ResultInvalidCall, dse.Code)
	assert.False(t, renderer.IsDeviceRemoved(err))

	require.NoError(t, gfx.EndFrame())
}

func TestInfoOnlyCollectsMessagesOnce(t *testing.T) {
	gfx, backend := newGraphics(t)
	backend.EmitOnNextCall(headless.OpSetTopology, deviceMessage("first"), deviceMessage("second"))

	err := gfx.InfoOnly("SetTopology", func() {
		gfx.Context().SetTopology(metadata.TopologyTriangleList)
	})

	var warning *renderer.DiagnosticOnlyWarning
	require.ErrorAs(t, err, &warning)
	assert.Equal(t, metadata.ResultSuccess, warning.Code)
	assert.Len(t, warning.Messages, 2)
	assert.False(t, renderer.IsFatal(err))

	assert.Empty(t, gfx.DiagnosticLog().Messages())

	require.NoError(t, gfx.InfoOnly("SetTopology", func() {
		gfx.Context().SetTopology(metadata.TopologyTriangleList)
	}))
}

func TestDrawIndexedWithoutStateWarns(t *testing.T) {
	gfx, backend := newGraphics(t)

	err := gfx.DrawIndexed(36)

	var warning *renderer.DiagnosticOnlyWarning
	require.ErrorAs(t, err, &warning)
	assert.Equal(t, "DrawIndexed", warning.Op)
	assert.NotEmpty(t, warning.Messages)
	assert.Len(t, backend.Draws(), 1)
}

func TestCreateBufferFailureCarriesMessages(t *testing.T) {
	gfx, backend := newGraphics(t)
	backend.FailNext(headless.OpCreateBuffer, metadata.ResultOutOfMemory)
	backend.EmitOnNextCall(headless.OpCreateBuffer, deviceMessage("heap exhausted"))

	_, err := gfx.CreateBuffer(metadata.BufferDesc{Kind: metadata.BufferKindVertex, Size: 12, Stride: 12}, make([]byte, 12))

	var rce *renderer.ResourceCreationError
	require.ErrorAs(t, err, &rce)
	assert.Equal(t, metadata.ResultOutOfMemory, rce.Code)
	assert.Equal(t, []string{"ERROR [validation] #0: heap exhausted"}, rce.Messages)
}

func TestCreateFailureLogsDeviceTextVerbatim(t *testing.T) {
	var out bytes.Buffer
	core.SetLogOutput(&out)
	t.Cleanup(func() { core.SetLogOutput(os.Stderr) })

	gfx, backend := newGraphics(t)
	backend.FailNext(headless.OpCreateBuffer, metadata.ResultOutOfMemory)
	backend.EmitOnNextCall(headless.OpCreateBuffer, deviceMessage("heap 100% used, %d blocks"))

	_, err := gfx.CreateBuffer(metadata.BufferDesc{Kind: metadata.BufferKindVertex, Size: 12, Stride: 12}, make([]byte, 12))
	require.Error(t, err)

	assert.Contains(t, out.String(), "heap 100% used, %d blocks")
	assert.NotContains(t, out.String(), "%!")
}

func TestCreateBufferRejectsMismatchedData(t *testing.T) {
	gfx, backend := newGraphics(t)

	_, err := gfx.CreateBuffer(metadata.BufferDesc{Kind: metadata.BufferKindVertex, Size: 24, Stride: 12}, make([]byte, 12))

	var rce *renderer.ResourceCreationError
	require.ErrorAs(t, err, &rce)
	assert.Equal(t, metadata.ResultInvalidArgument, rce.Code)
	assert.Zero(t, backend.CallCount(headless.OpCreateBuffer))
}

func TestCreateInputLayoutValidatesAgainstProgram(t *testing.T) {
	gfx, _ := newGraphics(t)
	vs := vertexProgram()
	vsHandle, err := gfx.CreateShader(vs)
	require.NoError(t, err)

	good := []metadata.VertexElement{
		{SemanticName: "Position", Location: 0, Format: metadata.FormatR32G32B32Float, Offset: 0},
		{SemanticName: "TexCoord", Location: 1, Format: metadata.FormatR32G32Float, Offset: 12},
	}
	h, err := gfx.CreateInputLayout(good, vs, vsHandle)
	require.NoError(t, err)
	assert.NotEqual(t, metadata.InvalidHandle, h)

	bad := []metadata.VertexElement{
		{SemanticName: "Position", Location: 0, Format: metadata.FormatR32G32Float, Offset: 0},
	}
	_, err = gfx.CreateInputLayout(bad, vs, vsHandle)
	var rce *renderer.ResourceCreationError
	require.ErrorAs(t, err, &rce)
	assert.Equal(t, metadata.ResultInvalidArgument, rce.Code)
	assert.Len(t, rce.Messages, 2)
}

func TestCreateTextureRejectsInvalidSurface(t *testing.T) {
	gfx, _ := newGraphics(t)

	_, err := gfx.CreateTexture(&metadata.Surface{Width: 2, Height: 2})
	var rce *renderer.ResourceCreationError
	require.ErrorAs(t, err, &rce)

	h, err := gfx.CreateTexture(metadata.NewSurface(2, 2))
	require.NoError(t, err)
	assert.NotEqual(t, metadata.InvalidHandle, h)
}

func TestProjection(t *testing.T) {
	gfx, _ := newGraphics(t)
	assert.True(t, gfx.Projection().Compare(math.NewMat4Identity(), 0))

	proj := math.NewMat4PerspectiveLH(1.0, 0.75, 0.5, 40.0)
	gfx.SetProjection(proj)
	assert.True(t, gfx.Projection().Compare(proj, 0))
}

func TestShutdown(t *testing.T) {
	gfx, backend := newGraphics(t)

	require.NoError(t, gfx.Shutdown())
	require.NoError(t, gfx.Shutdown())
	assert.Equal(t, renderer.StateDestroyed, gfx.State())
	assert.Equal(t, 1, backend.CallCount(headless.OpShutdown))

	_, err := gfx.BeginFrame(800, 600)
	assert.True(t, errors.Is(err, core.ErrAlreadyShutdown))
	assert.True(t, errors.Is(gfx.DrawIndexed(3), core.ErrAlreadyShutdown))
}
