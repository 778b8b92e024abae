package renderer

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/orrery/engine/core"
	"github.com/spaghettifunk/orrery/engine/math"
	"github.com/spaghettifunk/orrery/engine/renderer/diagnostics"
	"github.com/spaghettifunk/orrery/engine/renderer/metadata"
	"github.com/spaghettifunk/orrery/engine/renderer/shader"
)

type State uint8

const (
	StateUninitialized State = iota
	StateReady
	StateOccluded
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateOccluded:
		return "occluded"
	case StateDestroyed:
		return "destroyed"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// Graphics owns a backend and turns its status codes and queued messages
// into errors. It is used from the render thread only.
type Graphics struct {
	backend    RendererBackend
	log        *diagnostics.Log
	state      State
	projection math.Mat4
}

// NewGraphics initializes the backend and returns a ready device.
func NewGraphics(backend RendererBackend, appName string, width, height uint32) (*Graphics, error) {
	g := &Graphics{
		backend:    backend,
		log:        diagnostics.NewLog(backend.Messages()),
		projection: math.NewMat4Identity(),
	}

	g.log.Set()
	if res := backend.Initialize(appName, width, height); res.Failed() {
		err := &ResourceCreationError{Op: "Initialize", Code: res, Messages: g.log.Strings()}
		core.LogError("%s", err)
		return nil, err
	}
	g.drainWarnings("Initialize")

	g.state = StateReady
	core.LogDebug("graphics device ready (%dx%d)", width, height)
	return g, nil
}

func (g *Graphics) State() State {
	return g.state
}

// Context returns the immediate context draw state is set through.
func (g *Graphics) Context() metadata.CommandContext {
	return g.backend.Context()
}

// DiagnosticLog returns the checkpointed view of the device message queue.
func (g *Graphics) DiagnosticLog() *diagnostics.Log {
	return g.log
}

func (g *Graphics) SetProjection(proj math.Mat4) {
	g.projection = proj
}

func (g *Graphics) Projection() math.Mat4 {
	return g.projection
}

// BackBufferSize returns the current size of the presentation surface.
func (g *Graphics) BackBufferSize() (uint32, uint32) {
	return g.backend.BackBufferSize()
}

// BeginFrame prepares the next back buffer. It returns false, with no error,
// when the surface is occluded; the caller must then skip the frame body.
// A non-zero target size that differs from the back buffer resizes it first.
func (g *Graphics) BeginFrame(targetWidth, targetHeight uint32) (bool, error) {
	if err := g.ready("BeginFrame"); err != nil {
		return false, err
	}

	if g.backend.Occluded() {
		g.state = StateOccluded
		return false, nil
	}
	g.state = StateReady

	if targetWidth != 0 && targetHeight != 0 {
		w, h := g.backend.BackBufferSize()
		if w != targetWidth || h != targetHeight {
			core.LogDebug("resizing back buffer %dx%d -> %dx%d", w, h, targetWidth, targetHeight)
			g.log.Set()
			if res := g.backend.Resize(targetWidth, targetHeight); res.Failed() {
				return false, g.frameError("Resize", res)
			}
		}
	}

	g.log.Set()
	res := g.backend.BeginFrame()
	if res == metadata.ResultOccluded {
		g.state = StateOccluded
		return false, nil
	}
	if res.Failed() {
		return false, g.frameError("BeginFrame", res)
	}
	return true, nil
}

// ClearBuffer clears the back buffer and the depth buffer.
func (g *Graphics) ClearBuffer(r, gr, b float32) error {
	if err := g.ready("ClearBuffer"); err != nil {
		return err
	}
	return g.InfoOnly("ClearBuffer", func() {
		g.backend.ClearBuffer([4]float32{r, gr, b, 1.0})
	})
}

// EndFrame presents the back buffer. Device removal is reported as a
// DeviceRemovedError, any other failure as a DrawSubmissionError.
func (g *Graphics) EndFrame() error {
	if err := g.ready("EndFrame"); err != nil {
		return err
	}

	g.log.Set()
	res := g.backend.Present()
	if res == metadata.ResultOccluded {
		g.state = StateOccluded
		return nil
	}
	if res.Failed() {
		return g.frameError("Present", res)
	}
	return nil
}

// DrawIndexed issues an indexed draw with the currently bound state. The
// call has no status code, so messages queued during it are returned as a
// DiagnosticOnlyWarning.
func (g *Graphics) DrawIndexed(count uint32) error {
	if err := g.ready("DrawIndexed"); err != nil {
		return err
	}
	return g.InfoOnly("DrawIndexed", func() {
		g.backend.Context().DrawIndexed(count)
	})
}

// InfoOnly runs fn between a checkpoint and a query of the message queue.
func (g *Graphics) InfoOnly(op string, fn func()) error {
	g.log.Set()
	fn()
	if msgs := g.log.Strings(); len(msgs) > 0 {
		return &DiagnosticOnlyWarning{Op: op, Messages: msgs}
	}
	return nil
}

func (g *Graphics) CreateBuffer(desc metadata.BufferDesc, data []byte) (metadata.Handle, error) {
	if err := g.ready("CreateBuffer"); err != nil {
		return metadata.InvalidHandle, err
	}
	if desc.Size == 0 || (data != nil && uint32(len(data)) != desc.Size) {
		return metadata.InvalidHandle, &ResourceCreationError{
			Op:       "CreateBuffer",
			Code:     metadata.ResultInvalidArgument,
			Messages: []string{fmt.Sprintf("%s buffer of %d bytes with %d bytes of initial data", desc.Kind, desc.Size, len(data))},
		}
	}
	return g.create("CreateBuffer", func() (metadata.Handle, metadata.Result) {
		return g.backend.CreateBuffer(desc, data)
	})
}

// UpdateBuffer rewrites the contents of a dynamic buffer.
func (g *Graphics) UpdateBuffer(h metadata.Handle, data []byte) error {
	if err := g.ready("UpdateBuffer"); err != nil {
		return err
	}
	g.log.Set()
	if res := g.backend.UpdateBuffer(h, data); res.Failed() {
		return g.frameError("UpdateBuffer", res)
	}
	g.drainWarnings("UpdateBuffer")
	return nil
}

func (g *Graphics) CreateShader(program *shader.Program) (metadata.Handle, error) {
	if err := g.ready("CreateShader"); err != nil {
		return metadata.InvalidHandle, err
	}
	if program == nil || len(program.SPIRV) == 0 {
		return metadata.InvalidHandle, &ResourceCreationError{Op: "CreateShader", Code: metadata.ResultInvalidArgument}
	}
	return g.create("CreateShader", func() (metadata.Handle, metadata.Result) {
		return g.backend.CreateShader(program)
	})
}

// CreateInputLayout checks elements against the inputs reflected from the
// vertex program before creating the layout.
func (g *Graphics) CreateInputLayout(elements []metadata.VertexElement, vs *shader.Program, vsHandle metadata.Handle) (metadata.Handle, error) {
	if err := g.ready("CreateInputLayout"); err != nil {
		return metadata.InvalidHandle, err
	}
	if msgs := validateLayout(elements, vs); len(msgs) > 0 {
		err := &ResourceCreationError{Op: "CreateInputLayout", Code: metadata.ResultInvalidArgument, Messages: msgs}
		core.LogError("%s", err)
		return metadata.InvalidHandle, err
	}
	return g.create("CreateInputLayout", func() (metadata.Handle, metadata.Result) {
		return g.backend.CreateInputLayout(elements, vsHandle)
	})
}

func (g *Graphics) CreateTexture(surface *metadata.Surface) (metadata.Handle, error) {
	if err := g.ready("CreateTexture"); err != nil {
		return metadata.InvalidHandle, err
	}
	if err := surface.Validate(); err != nil {
		return metadata.InvalidHandle, &ResourceCreationError{
			Op:       "CreateTexture",
			Code:     metadata.ResultInvalidArgument,
			Messages: []string{err.Error()},
		}
	}
	return g.create("CreateTexture", func() (metadata.Handle, metadata.Result) {
		return g.backend.CreateTexture(surface)
	})
}

func (g *Graphics) CreateSampler(desc metadata.SamplerDesc) (metadata.Handle, error) {
	if err := g.ready("CreateSampler"); err != nil {
		return metadata.InvalidHandle, err
	}
	return g.create("CreateSampler", func() (metadata.Handle, metadata.Result) {
		return g.backend.CreateSampler(desc)
	})
}

// Release frees a backend object. Releasing after shutdown is a no-op.
func (g *Graphics) Release(h metadata.Handle) {
	if g.state == StateDestroyed || h == metadata.InvalidHandle {
		return
	}
	g.backend.Release(h)
}

// Shutdown destroys the device. It is safe to call more than once.
func (g *Graphics) Shutdown() error {
	if g.state == StateDestroyed {
		return nil
	}
	g.state = StateDestroyed
	if err := g.backend.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown the renderer backend: %w", err)
	}
	core.LogDebug("graphics device destroyed")
	return nil
}

func (g *Graphics) ready(op string) error {
	switch g.state {
	case StateUninitialized:
		return fmt.Errorf("%s: %w", op, core.ErrNotInitialized)
	case StateDestroyed:
		return fmt.Errorf("%s: %w", op, core.ErrAlreadyShutdown)
	}
	return nil
}

func (g *Graphics) create(op string, fn func() (metadata.Handle, metadata.Result)) (metadata.Handle, error) {
	g.log.Set()
	h, res := fn()
	if res.Failed() {
		if res == metadata.ResultDeviceRemoved {
			return metadata.InvalidHandle, g.deviceRemoved(op, res)
		}
		err := &ResourceCreationError{Op: op, Code: res, Messages: g.log.Strings()}
		core.LogError("%s", err)
		return metadata.InvalidHandle, err
	}
	g.drainWarnings(op)
	return h, nil
}

// frameError builds the error for a failed per-frame call.
func (g *Graphics) frameError(op string, res metadata.Result) error {
	if res == metadata.ResultDeviceRemoved {
		return g.deviceRemoved(op, res)
	}
	return &DrawSubmissionError{Op: op, Code: res, Messages: g.log.Strings()}
}

func (g *Graphics) deviceRemoved(op string, res metadata.Result) error {
	err := &DeviceRemovedError{
		Op:       op,
		Code:     res,
		Reason:   g.backend.DeviceRemovedReason(),
		Messages: g.log.Strings(),
	}
	core.LogError("%s", err)
	return err
}

// drainWarnings logs messages left by a call that succeeded.
func (g *Graphics) drainWarnings(op string) {
	for _, m := range g.log.Strings() {
		core.LogWarn("%s: %s", op, m)
	}
}

func validateLayout(elements []metadata.VertexElement, vs *shader.Program) []string {
	if vs == nil {
		return []string{"no vertex program to validate the layout against"}
	}
	if vs.Stage != metadata.StageVertex {
		return []string{fmt.Sprintf("program %s is a %s program", vs.Name, vs.Stage)}
	}

	var msgs []string
	byLocation := make(map[uint32]metadata.VertexElement, len(elements))
	for _, e := range elements {
		if _, dup := byLocation[e.Location]; dup {
			msgs = append(msgs, fmt.Sprintf("element %s: location %d declared twice", e.SemanticName, e.Location))
			continue
		}
		byLocation[e.Location] = e
	}
	for _, in := range vs.Inputs {
		e, ok := byLocation[in.Location]
		if !ok {
			msgs = append(msgs, fmt.Sprintf("%s input %s at location %d has no layout element", vs.Name, in.Name, in.Location))
			continue
		}
		if e.Format != in.Format {
			msgs = append(msgs, fmt.Sprintf("element %s at location %d does not match %s input %s (%s)", e.SemanticName, e.Location, vs.Name, in.Name, in.Type))
		}
	}
	return msgs
}

// IsDeviceRemoved reports whether err carries a DeviceRemovedError.
func IsDeviceRemoved(err error) bool {
	var removed *DeviceRemovedError
	return errors.As(err, &removed)
}
