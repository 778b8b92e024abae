package metadata

// CommandContext is the immediate context draws are recorded through. Every
// setter touches exactly one pipeline slot and leaves every other slot as it
// was.
type CommandContext interface {
	SetVertexBuffer(h Handle, stride uint32)
	SetIndexBuffer(h Handle)
	SetShader(stage Stage, h Handle)
	SetInputLayout(h Handle)
	SetTopology(t Topology)
	SetConstantBuffer(stage Stage, slot uint32, h Handle)
	SetTexture(slot uint32, h Handle)
	SetSampler(slot uint32, h Handle)
	// DrawIndexed has no status code. Problems are reported through the
	// device message queue.
	DrawIndexed(indexCount uint32)
}
