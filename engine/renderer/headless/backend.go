// Package headless is a renderer backend without a GPU. It records every
// call, validates draws the way a debug layer would and lets tests inject
// failures, device messages, occlusion and device removal.
package headless

import (
	"fmt"

	"github.com/spaghettifunk/orrery/engine/core"
	"github.com/spaghettifunk/orrery/engine/renderer/diagnostics"
	"github.com/spaghettifunk/orrery/engine/renderer/metadata"
	"github.com/spaghettifunk/orrery/engine/renderer/shader"
)

const (
	OpInitialize        = "Initialize"
	OpShutdown          = "Shutdown"
	OpResize            = "Resize"
	OpBeginFrame        = "BeginFrame"
	OpClearBuffer       = "ClearBuffer"
	OpPresent           = "Present"
	OpCreateBuffer      = "CreateBuffer"
	OpUpdateBuffer      = "UpdateBuffer"
	OpCreateShader      = "CreateShader"
	OpCreateInputLayout = "CreateInputLayout"
	OpCreateTexture     = "CreateTexture"
	OpCreateSampler     = "CreateSampler"
	OpRelease           = "Release"
	OpSetVertexBuffer   = "SetVertexBuffer"
	OpSetIndexBuffer    = "SetIndexBuffer"
	OpSetShader         = "SetShader"
	OpSetInputLayout    = "SetInputLayout"
	OpSetTopology       = "SetTopology"
	OpSetConstantBuffer = "SetConstantBuffer"
	OpSetTexture        = "SetTexture"
	OpSetSampler        = "SetSampler"
	OpDrawIndexed       = "DrawIndexed"
)

const messageSource = "headless"

// Call is one recorded backend call. Value holds the op specific scalar:
// the index count of a draw, the stride of a vertex buffer or the topology.
type Call struct {
	Op     string
	Stage  metadata.Stage
	Slot   uint32
	Handle metadata.Handle
	Value  uint32
}

type objectKind uint8

const (
	kindBuffer objectKind = iota
	kindShader
	kindInputLayout
	kindTexture
	kindSampler
)

type object struct {
	kind     objectKind
	buffer   metadata.BufferDesc
	data     []byte
	program  *shader.Program
	elements []metadata.VertexElement
	surface  *metadata.Surface
	sampler  metadata.SamplerDesc
}

// Bound is the pipeline state at the time of a draw.
type Bound struct {
	VertexBuffer    metadata.Handle
	VertexStride    uint32
	IndexBuffer     metadata.Handle
	VertexShader    metadata.Handle
	PixelShader     metadata.Handle
	InputLayout     metadata.Handle
	Topology        metadata.Topology
	VertexConstants map[uint32]metadata.Handle
	PixelConstants  map[uint32]metadata.Handle
	Textures        map[uint32]metadata.Handle
	Samplers        map[uint32]metadata.Handle
}

func (b Bound) clone() Bound {
	b.VertexConstants = cloneSlots(b.VertexConstants)
	b.PixelConstants = cloneSlots(b.PixelConstants)
	b.Textures = cloneSlots(b.Textures)
	b.Samplers = cloneSlots(b.Samplers)
	return b
}

func cloneSlots(m map[uint32]metadata.Handle) map[uint32]metadata.Handle {
	out := make(map[uint32]metadata.Handle, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Draw is a recorded DrawIndexed with the constant buffer contents it saw.
type Draw struct {
	IndexCount uint32
	Bound      Bound
	// VertexConstants and PixelConstants hold copies of the bound constant
	// buffers by slot.
	VertexConstants map[uint32][]byte
	PixelConstants  map[uint32][]byte
}

type Backend struct {
	queue *diagnostics.Queue
	ctx   *commandContext

	appName       string
	width, height uint32
	initialized   bool
	occluded      bool
	removedReason metadata.Result
	clearColour   [4]float32
	frames        uint64

	next    metadata.Handle
	objects map[metadata.Handle]*object
	bound   Bound

	calls    []Call
	draws    []Draw
	failures map[string]metadata.Result
	pending  map[string][]diagnostics.Message
}

// New returns a backend whose message queue keeps up to queueSize messages.
func New(queueSize int) *Backend {
	b := &Backend{
		queue:    diagnostics.NewQueue(queueSize),
		objects:  make(map[metadata.Handle]*object),
		failures: make(map[string]metadata.Result),
		pending:  make(map[string][]diagnostics.Message),
	}
	b.ctx = &commandContext{b: b}
	b.resetBound()
	return b
}

func (b *Backend) Initialize(appName string, width, height uint32) metadata.Result {
	if res := b.call(Call{Op: OpInitialize}); res.Failed() {
		return res
	}
	b.appName = appName
	b.width, b.height = width, height
	b.initialized = true
	core.LogDebug("headless backend initialized for %s (%dx%d)", appName, width, height)
	return metadata.ResultSuccess
}

func (b *Backend) Shutdown() error {
	b.call(Call{Op: OpShutdown})
	if !b.initialized {
		return fmt.Errorf("headless backend shut down before initialization: %w", core.ErrNotInitialized)
	}
	b.initialized = false
	b.objects = make(map[metadata.Handle]*object)
	b.resetBound()
	return nil
}

func (b *Backend) Occluded() bool {
	return b.occluded
}

func (b *Backend) BackBufferSize() (uint32, uint32) {
	return b.width, b.height
}

func (b *Backend) Resize(width, height uint32) metadata.Result {
	if res := b.call(Call{Op: OpResize, Value: width}); res.Failed() {
		return res
	}
	if width == 0 || height == 0 {
		b.emit(diagnostics.SeverityError, "Resize: zero sized back buffer %dx%d", width, height)
		return metadata.ResultInvalidArgument
	}
	b.width, b.height = width, height
	return metadata.ResultSuccess
}

func (b *Backend) BeginFrame() metadata.Result {
	if b.removedReason != metadata.ResultSuccess {
		b.call(Call{Op: OpBeginFrame})
		return metadata.ResultDeviceRemoved
	}
	if res := b.call(Call{Op: OpBeginFrame}); res.Failed() {
		return res
	}
	if b.occluded {
		return metadata.ResultOccluded
	}
	return metadata.ResultSuccess
}

func (b *Backend) ClearBuffer(rgba [4]float32) {
	b.call(Call{Op: OpClearBuffer})
	b.clearColour = rgba
}

func (b *Backend) Present() metadata.Result {
	if b.removedReason != metadata.ResultSuccess {
		b.call(Call{Op: OpPresent})
		return metadata.ResultDeviceRemoved
	}
	if res := b.call(Call{Op: OpPresent}); res.Failed() {
		return res
	}
	b.frames++
	if b.occluded {
		return metadata.ResultOccluded
	}
	return metadata.ResultSuccess
}

func (b *Backend) DeviceRemovedReason() metadata.Result {
	return b.removedReason
}

func (b *Backend) CreateBuffer(desc metadata.BufferDesc, data []byte) (metadata.Handle, metadata.Result) {
	if res := b.call(Call{Op: OpCreateBuffer, Value: desc.Size}); res.Failed() {
		return metadata.InvalidHandle, res
	}
	if desc.Kind == metadata.BufferKindIndex && desc.Size%metadata.IndexSize != 0 {
		b.emit(diagnostics.SeverityError, "CreateBuffer: index buffer size %d is not a multiple of %d", desc.Size, metadata.IndexSize)
		return metadata.InvalidHandle, metadata.ResultInvalidArgument
	}
	if desc.Kind == metadata.BufferKindConstant && desc.Size%16 != 0 {
		b.emit(diagnostics.SeverityError, "CreateBuffer: constant buffer size %d is not a multiple of 16", desc.Size)
		return metadata.InvalidHandle, metadata.ResultInvalidArgument
	}
	contents := make([]byte, desc.Size)
	copy(contents, data)
	return b.add(&object{kind: kindBuffer, buffer: desc, data: contents}), metadata.ResultSuccess
}

func (b *Backend) UpdateBuffer(h metadata.Handle, data []byte) metadata.Result {
	if res := b.call(Call{Op: OpUpdateBuffer, Handle: h, Value: uint32(len(data))}); res.Failed() {
		return res
	}
	obj, ok := b.objects[h]
	if !ok || obj.kind != kindBuffer {
		b.emit(diagnostics.SeverityError, "UpdateBuffer: %d is not a live buffer", h)
		return metadata.ResultInvalidCall
	}
	if !obj.buffer.Dynamic {
		b.emit(diagnostics.SeverityError, "UpdateBuffer: %s buffer %d is immutable", obj.buffer.Kind, h)
		return metadata.ResultInvalidCall
	}
	if uint32(len(data)) > obj.buffer.Size {
		b.emit(diagnostics.SeverityError, "UpdateBuffer: %d bytes written to a %d byte buffer", len(data), obj.buffer.Size)
		return metadata.ResultInvalidArgument
	}
	copy(obj.data, data)
	return metadata.ResultSuccess
}

func (b *Backend) CreateShader(program *shader.Program) (metadata.Handle, metadata.Result) {
	if res := b.call(Call{Op: OpCreateShader, Stage: program.Stage}); res.Failed() {
		return metadata.InvalidHandle, res
	}
	return b.add(&object{kind: kindShader, program: program}), metadata.ResultSuccess
}

func (b *Backend) CreateInputLayout(elements []metadata.VertexElement, vs metadata.Handle) (metadata.Handle, metadata.Result) {
	if res := b.call(Call{Op: OpCreateInputLayout, Handle: vs}); res.Failed() {
		return metadata.InvalidHandle, res
	}
	obj, ok := b.objects[vs]
	if !ok || obj.kind != kindShader || obj.program.Stage != metadata.StageVertex {
		b.emit(diagnostics.SeverityError, "CreateInputLayout: %d is not a vertex shader", vs)
		return metadata.InvalidHandle, metadata.ResultInvalidArgument
	}
	if len(elements) == 0 {
		b.emit(diagnostics.SeverityError, "CreateInputLayout: no elements")
		return metadata.InvalidHandle, metadata.ResultInvalidArgument
	}
	return b.add(&object{kind: kindInputLayout, elements: append([]metadata.VertexElement(nil), elements...)}), metadata.ResultSuccess
}

func (b *Backend) CreateTexture(surface *metadata.Surface) (metadata.Handle, metadata.Result) {
	if res := b.call(Call{Op: OpCreateTexture}); res.Failed() {
		return metadata.InvalidHandle, res
	}
	return b.add(&object{kind: kindTexture, surface: surface}), metadata.ResultSuccess
}

func (b *Backend) CreateSampler(desc metadata.SamplerDesc) (metadata.Handle, metadata.Result) {
	if res := b.call(Call{Op: OpCreateSampler}); res.Failed() {
		return metadata.InvalidHandle, res
	}
	return b.add(&object{kind: kindSampler, sampler: desc}), metadata.ResultSuccess
}

func (b *Backend) Release(h metadata.Handle) {
	b.call(Call{Op: OpRelease, Handle: h})
	if _, ok := b.objects[h]; !ok {
		b.emit(diagnostics.SeverityWarning, "Release: %d is not a live object", h)
		return
	}
	delete(b.objects, h)
}

func (b *Backend) Messages() *diagnostics.Queue {
	return b.queue
}

func (b *Backend) Context() metadata.CommandContext {
	return b.ctx
}

// call records c, emits messages queued for its op and returns an injected
// failure.
func (b *Backend) call(c Call) metadata.Result {
	b.calls = append(b.calls, c)
	for _, m := range b.pending[c.Op] {
		b.queue.Push(m)
	}
	delete(b.pending, c.Op)
	if res, ok := b.failures[c.Op]; ok {
		delete(b.failures, c.Op)
		return res
	}
	return metadata.ResultSuccess
}

func (b *Backend) emit(severity diagnostics.Severity, format string, args ...interface{}) {
	b.queue.Push(diagnostics.Message{
		Severity: severity,
		Source:   messageSource,
		Text:     fmt.Sprintf(format, args...),
	})
}

func (b *Backend) add(obj *object) metadata.Handle {
	b.next++
	b.objects[b.next] = obj
	return b.next
}

func (b *Backend) resetBound() {
	b.bound = Bound{
		VertexConstants: make(map[uint32]metadata.Handle),
		PixelConstants:  make(map[uint32]metadata.Handle),
		Textures:        make(map[uint32]metadata.Handle),
		Samplers:        make(map[uint32]metadata.Handle),
	}
}
