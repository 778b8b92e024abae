package renderer

import (
	"github.com/spaghettifunk/orrery/engine/renderer/diagnostics"
	"github.com/spaghettifunk/orrery/engine/renderer/metadata"
	"github.com/spaghettifunk/orrery/engine/renderer/shader"
)

// RendererBackend is the device side of a graphics API. Draw state is set
// through the CommandContext returned by Context.
type RendererBackend interface {
	Initialize(appName string, width, height uint32) metadata.Result
	Shutdown() error

	// Occluded reports whether the presentation surface is hidden.
	Occluded() bool
	BackBufferSize() (width, height uint32)
	Resize(width, height uint32) metadata.Result

	BeginFrame() metadata.Result
	ClearBuffer(rgba [4]float32)
	Present() metadata.Result
	DeviceRemovedReason() metadata.Result

	CreateBuffer(desc metadata.BufferDesc, data []byte) (metadata.Handle, metadata.Result)
	UpdateBuffer(h metadata.Handle, data []byte) metadata.Result
	CreateShader(program *shader.Program) (metadata.Handle, metadata.Result)
	CreateInputLayout(elements []metadata.VertexElement, vs metadata.Handle) (metadata.Handle, metadata.Result)
	CreateTexture(surface *metadata.Surface) (metadata.Handle, metadata.Result)
	CreateSampler(desc metadata.SamplerDesc) (metadata.Handle, metadata.Result)
	Release(h metadata.Handle)

	Messages() *diagnostics.Queue
	Context() metadata.CommandContext
}
