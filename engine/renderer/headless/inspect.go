package headless

import (
	"github.com/spaghettifunk/orrery/engine/renderer/diagnostics"
	"github.com/spaghettifunk/orrery/engine/renderer/metadata"
)

// FailNext makes the next call of op return res.
func (b *Backend) FailNext(op string, res metadata.Result) {
	b.failures[op] = res
}

// EmitOnNextCall queues messages that are pushed to the device queue during
// the next call of op.
func (b *Backend) EmitOnNextCall(op string, msgs ...diagnostics.Message) {
	b.pending[op] = append(b.pending[op], msgs...)
}

func (b *Backend) SetOccluded(occluded bool) {
	b.occluded = occluded
}

// RemoveDevice makes every following frame call fail with DeviceRemoved.
func (b *Backend) RemoveDevice(reason metadata.Result) {
	b.removedReason = reason
}

func (b *Backend) Calls() []Call {
	return b.calls
}

// CallCount returns how many times op was called.
func (b *Backend) CallCount(op string) int {
	n := 0
	for _, c := range b.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

func (b *Backend) Draws() []Draw {
	return b.draws
}

// ResetCalls forgets recorded calls and draws. Objects stay alive.
func (b *Backend) ResetCalls() {
	b.calls = nil
	b.draws = nil
}

// BufferData returns a copy of a buffer's contents.
func (b *Backend) BufferData(h metadata.Handle) ([]byte, bool) {
	obj, ok := b.live(h, kindBuffer)
	if !ok {
		return nil, false
	}
	return append([]byte(nil), obj.data...), true
}

// BufferDesc returns the description a buffer was created with.
func (b *Backend) BufferDesc(h metadata.Handle) (metadata.BufferDesc, bool) {
	obj, ok := b.live(h, kindBuffer)
	if !ok {
		return metadata.BufferDesc{}, false
	}
	return obj.buffer, true
}

// InputLayout returns the elements of a layout.
func (b *Backend) InputLayout(h metadata.Handle) ([]metadata.VertexElement, bool) {
	obj, ok := b.live(h, kindInputLayout)
	if !ok {
		return nil, false
	}
	return obj.elements, true
}

// LiveObjects returns the number of objects not yet released.
func (b *Backend) LiveObjects() int {
	return len(b.objects)
}

func (b *Backend) Frames() uint64 {
	return b.frames
}

func (b *Backend) ClearColour() [4]float32 {
	return b.clearColour
}

func (b *Backend) Initialized() bool {
	return b.initialized
}
