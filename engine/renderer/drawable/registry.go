package drawable

import (
	"fmt"

	"github.com/spaghettifunk/orrery/engine/core"
	"github.com/spaghettifunk/orrery/engine/renderer"
	"github.com/spaghettifunk/orrery/engine/renderer/bindable"
)

// GeometryClass identifies every drawable that shares one static resource set.
type GeometryClass string

const (
	ClassBox        GeometryClass = "box"
	ClassPyramid    GeometryClass = "pyramid"
	ClassMelon      GeometryClass = "melon"
	ClassSheet      GeometryClass = "sheet"
	ClassSkinnedBox GeometryClass = "skinned-box"
	ClassCylinder   GeometryClass = "cylinder"
)

// Classes lists every geometry class in factory order.
var Classes = []GeometryClass{ClassBox, ClassPyramid, ClassMelon, ClassSheet, ClassSkinnedBox, ClassCylinder}

func ParseClass(name string) (GeometryClass, error) {
	for _, c := range Classes {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown geometry class %q", name)
}

type sharedSet struct {
	binds       []bindable.Bindable
	initialized bool
	// indexBuffer caches the result of the first resolve.
	indexBuffer *bindable.IndexBuffer
	resolved    bool
}

// Registry holds one static resource set per geometry class, plus the
// transform buffer every drawable shares. Sets are built by the first
// drawable of a class and live until Release.
type Registry struct {
	sets      map[GeometryClass]*sharedSet
	builds    map[GeometryClass]int
	transform *bindable.SharedTransform
}

func NewRegistry() *Registry {
	return &Registry{
		sets:      make(map[GeometryClass]*sharedSet),
		builds:    make(map[GeometryClass]int),
		transform: bindable.NewSharedTransform(),
	}
}

func (r *Registry) set(class GeometryClass) *sharedSet {
	s, ok := r.sets[class]
	if !ok {
		s = &sharedSet{}
		r.sets[class] = s
	}
	return s
}

func (r *Registry) IsInitialized(class GeometryClass) bool {
	s, ok := r.sets[class]
	return ok && s.initialized
}

// AddSharedResource appends b to the static set of class. Index buffers must
// go through AddSharedIndexBuffer.
func (r *Registry) AddSharedResource(class GeometryClass, b bindable.Bindable) error {
	if b.Kind() == bindable.KindIndexBuffer {
		return fmt.Errorf("%w: index buffer added to %s through AddSharedResource", core.ErrPreconditionViolation, class)
	}
	s := r.set(class)
	if s.initialized {
		return fmt.Errorf("%w: static set of %s is already built", core.ErrPreconditionViolation, class)
	}
	s.binds = append(s.binds, b)
	return nil
}

// AddSharedIndexBuffer appends the one index buffer of the static set.
func (r *Registry) AddSharedIndexBuffer(class GeometryClass, ib *bindable.IndexBuffer) error {
	s := r.set(class)
	if s.initialized {
		return fmt.Errorf("%w: static set of %s is already built", core.ErrPreconditionViolation, class)
	}
	for _, b := range s.binds {
		if b.Kind() == bindable.KindIndexBuffer {
			return fmt.Errorf("%w: static set of %s already has an index buffer", core.ErrPreconditionViolation, class)
		}
	}
	s.binds = append(s.binds, ib)
	return nil
}

// ResolveIndexBufferFromShared finds the index buffer of the static set. The
// scan runs once per class; later calls return the cached result. A set
// without an index buffer resolves to nil.
func (r *Registry) ResolveIndexBufferFromShared(class GeometryClass) (*bindable.IndexBuffer, error) {
	s, ok := r.sets[class]
	if !ok || !s.initialized {
		return nil, fmt.Errorf("%w: static set of %s is not built", core.ErrPreconditionViolation, class)
	}
	if !s.resolved {
		for _, b := range s.binds {
			if ib, ok := bindable.AsIndexBuffer(b); ok {
				s.indexBuffer = ib
				break
			}
		}
		s.resolved = true
	}
	return s.indexBuffer, nil
}

// Acquire builds the static set of class with build unless it already
// exists. A failed build releases what it created and leaves the class
// uninitialized.
func (r *Registry) Acquire(gfx *renderer.Graphics, class GeometryClass, build func() error) error {
	if r.IsInitialized(class) {
		return nil
	}

	if err := build(); err != nil {
		r.discard(gfx, class)
		core.LogError("failed to build static resources of %s: %s", class, err.Error())
		return err
	}

	s := r.set(class)
	s.initialized = true
	r.builds[class]++
	core.LogDebug("built static resources of %s (%d binds)", class, len(s.binds))
	return nil
}

// Binds returns the static set of class in registration order.
func (r *Registry) Binds(class GeometryClass) []bindable.Bindable {
	s, ok := r.sets[class]
	if !ok {
		return nil
	}
	return s.binds
}

// Builds returns how many times the static set of class was built.
func (r *Registry) Builds(class GeometryClass) int {
	return r.builds[class]
}

// Transform returns the transform buffer shared by every drawable.
func (r *Registry) Transform() *bindable.SharedTransform {
	return r.transform
}

// Release frees every static set and the shared transform buffer.
func (r *Registry) Release(gfx *renderer.Graphics) {
	for class := range r.sets {
		r.discard(gfx, class)
	}
	r.transform.Release(gfx)
}

func (r *Registry) discard(gfx *renderer.Graphics, class GeometryClass) {
	s, ok := r.sets[class]
	if !ok {
		return
	}
	for _, b := range s.binds {
		b.Release(gfx)
	}
	delete(r.sets, class)
}
