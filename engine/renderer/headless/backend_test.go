package headless_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/orrery/engine/renderer/diagnostics"
	"github.com/spaghettifunk/orrery/engine/renderer/headless"
	"github.com/spaghettifunk/orrery/engine/renderer/metadata"
	"github.com/spaghettifunk/orrery/engine/renderer/shader"
)

func newBackend(t *testing.T) *headless.Backend {
	t.Helper()
	b := headless.New(32)
	require.Equal(t, metadata.ResultSuccess, b.Initialize("test", 640, 480))
	return b
}

// created returns a check for the (handle, result) pair of a create call, so
// it can wrap the call directly: created(t)(b.CreateBuffer(...)).
func created(t *testing.T) func(metadata.Handle, metadata.Result) metadata.Handle {
	return func(h metadata.Handle, res metadata.Result) metadata.Handle {
		t.Helper()
		require.Equal(t, metadata.ResultSuccess, res)
		require.NotEqual(t, metadata.InvalidHandle, h)
		return h
	}
}

func bindTriangle(t *testing.T, b *headless.Backend) (cb metadata.Handle) {
	t.Helper()
	ctx := b.Context()

	vb := created(t)(b.CreateBuffer(metadata.BufferDesc{Kind: metadata.BufferKindVertex, Size: 36, Stride: 12}, make([]byte, 36)))
	ib := created(t)(b.CreateBuffer(metadata.BufferDesc{Kind: metadata.BufferKindIndex, Size: 6, Stride: 2}, []byte{0, 0, 1, 0, 2, 0}))
	vs := created(t)(b.CreateShader(&shader.Program{Name: "vs", Stage: metadata.StageVertex}))
	ps := created(t)(b.CreateShader(&shader.Program{Name: "ps", Stage: metadata.StagePixel}))
	layout := created(t)(b.CreateInputLayout([]metadata.VertexElement{{SemanticName: "Position", Format: metadata.FormatR32G32B32Float}}, vs))
	cb = created(t)(b.CreateBuffer(metadata.BufferDesc{Kind: metadata.BufferKindConstant, Size: 16, Dynamic: true}, nil))

	ctx.SetVertexBuffer(vb, 12)
	ctx.SetIndexBuffer(ib)
	ctx.SetShader(metadata.StageVertex, vs)
	ctx.SetShader(metadata.StagePixel, ps)
	ctx.SetInputLayout(layout)
	ctx.SetTopology(metadata.TopologyTriangleList)
	ctx.SetConstantBuffer(metadata.StageVertex, 0, cb)
	return cb
}

func TestDrawSnapshotsConstantBuffers(t *testing.T) {
	b := newBackend(t)
	cb := bindTriangle(t, b)
	ctx := b.Context()
	before := b.Messages().Total()

	require.Equal(t, metadata.ResultSuccess, b.UpdateBuffer(cb, []byte{1}))
	ctx.DrawIndexed(3)
	require.Equal(t, metadata.ResultSuccess, b.UpdateBuffer(cb, []byte{2}))
	ctx.DrawIndexed(3)

	draws := b.Draws()
	require.Len(t, draws, 2)
	assert.Equal(t, byte(1), draws[0].VertexConstants[0][0])
	assert.Equal(t, byte(2), draws[1].VertexConstants[0][0])
	assert.Equal(t, uint32(3), draws[1].IndexCount)
	assert.Equal(t, before, b.Messages().Total())
}

func TestDrawValidatesBoundState(t *testing.T) {
	b := newBackend(t)
	bindTriangle(t, b)

	b.Context().DrawIndexed(6)

	msgs := b.Messages().Since(0)
	require.Len(t, msgs, 1)
	assert.Equal(t, diagnostics.SeverityError, msgs[0].Severity)
	assert.Contains(t, msgs[0].Text, "past the end")

	fresh := newBackend(t)
	fresh.Context().DrawIndexed(3)
	assert.Len(t, fresh.Messages().Since(0), 5)
	assert.Len(t, fresh.Draws(), 1)
}

func TestFailNextAppliesOnce(t *testing.T) {
	b := newBackend(t)
	b.FailNext(headless.OpCreateSampler, metadata.ResultOutOfMemory)

	_, res := b.CreateSampler(metadata.SamplerDesc{})
	assert.Equal(t, metadata.ResultOutOfMemory, res)

	_, res = b.CreateSampler(metadata.SamplerDesc{})
	assert.Equal(t, metadata.ResultSuccess, res)
	assert.Equal(t, 2, b.CallCount(headless.OpCreateSampler))
}

func TestEmitOnNextCall(t *testing.T) {
	b := newBackend(t)
	b.EmitOnNextCall(headless.OpSetTopology,
		diagnostics.Message{Text: "one"},
		diagnostics.Message{Text: "two"},
	)
	assert.Zero(t, b.Messages().Total())

	b.Context().SetIndexBuffer(metadata.InvalidHandle)
	assert.Zero(t, b.Messages().Total())

	b.Context().SetTopology(metadata.TopologyTriangleList)
	assert.Equal(t, uint64(2), b.Messages().Total())

	b.Context().SetTopology(metadata.TopologyTriangleList)
	assert.Equal(t, uint64(2), b.Messages().Total())
}

func TestUpdateImmutableBufferFails(t *testing.T) {
	b := newBackend(t)
	vb := created(t)(b.CreateBuffer(metadata.BufferDesc{Kind: metadata.BufferKindVertex, Size: 12, Stride: 12}, nil))

	assert.Equal(t, metadata.ResultInvalidCall, b.UpdateBuffer(vb, []byte{1}))
	assert.Equal(t, uint64(1), b.Messages().Total())
}

func TestDeviceRemovalAndOcclusion(t *testing.T) {
	b := newBackend(t)

	b.SetOccluded(true)
	assert.True(t, b.Occluded())
	assert.Equal(t, metadata.ResultOccluded, b.Present())

	b.SetOccluded(false)
	b.RemoveDevice(metadata.ResultDriverInternalError)
	assert.Equal(t, metadata.ResultDeviceRemoved, b.BeginFrame())
	assert.Equal(t, metadata.ResultDeviceRemoved, b.Present())
	assert.Equal(t, metadata.ResultDriverInternalError, b.DeviceRemovedReason())
}

func TestReleaseAndShutdown(t *testing.T) {
	b := newBackend(t)
	h := created(t)(b.CreateSampler(metadata.SamplerDesc{}))
	assert.Equal(t, 1, b.LiveObjects())

	b.Release(h)
	assert.Zero(t, b.LiveObjects())
	b.Release(h)
	assert.Equal(t, uint64(1), b.Messages().Total())

	require.NoError(t, b.Shutdown())
	assert.False(t, b.Initialized())
	assert.Error(t, b.Shutdown())
}
