// Package drawable assembles scene objects from shared static resources and
// per-instance binds, and animates them around the scene centre.
package drawable

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/orrery/engine/core"
	"github.com/spaghettifunk/orrery/engine/math"
	"github.com/spaghettifunk/orrery/engine/renderer"
	"github.com/spaghettifunk/orrery/engine/renderer/bindable"
)

// Renderable is one scene object.
type Renderable interface {
	ID() uuid.UUID
	Class() GeometryClass
	Update(dt float32)
	Transform() math.Mat4
	Draw(gfx *renderer.Graphics) error
	Release(gfx *renderer.Graphics)
}

// Drawable composes the instance binds of one object with the static set
// of its class.
type Drawable struct {
	id          uuid.UUID
	class       GeometryClass
	registry    *Registry
	binds       []bindable.Bindable
	indexBuffer *bindable.IndexBuffer
}

func newDrawable(class GeometryClass, registry *Registry) Drawable {
	return Drawable{
		id:       uuid.New(),
		class:    class,
		registry: registry,
	}
}

func (d *Drawable) ID() uuid.UUID { return d.id }

func (d *Drawable) Class() GeometryClass { return d.class }

// IndexCount returns the draw count, or zero before the index buffer is
// resolved.
func (d *Drawable) IndexCount() uint32 {
	if d.indexBuffer == nil {
		return 0
	}
	return d.indexBuffer.Count()
}

// AddInstanceBind appends b to the instance binds. Index buffers must go
// through AddInstanceIndexBuffer.
func (d *Drawable) AddInstanceBind(b bindable.Bindable) error {
	if b.Kind() == bindable.KindIndexBuffer {
		return fmt.Errorf("%w: index buffer added to %s %s through AddInstanceBind", core.ErrPreconditionViolation, d.class, d.id)
	}
	d.binds = append(d.binds, b)
	return nil
}

// AddInstanceIndexBuffer gives the drawable its own index buffer.
func (d *Drawable) AddInstanceIndexBuffer(ib *bindable.IndexBuffer) error {
	if d.indexBuffer != nil {
		return fmt.Errorf("%w: %s %s already has an index buffer", core.ErrPreconditionViolation, d.class, d.id)
	}
	d.indexBuffer = ib
	d.binds = append(d.binds, ib)
	return nil
}

// attach builds or reuses the static set of the class and resolves the index
// buffer. Exactly one of the instance binds and the static set must carry
// one.
func (d *Drawable) attach(gfx *renderer.Graphics, build func() error) error {
	if err := d.registry.Acquire(gfx, d.class, build); err != nil {
		return err
	}
	shared, err := d.registry.ResolveIndexBufferFromShared(d.class)
	if err != nil {
		return err
	}
	switch {
	case d.indexBuffer != nil && shared != nil:
		return fmt.Errorf("%w: %s %s resolves two index buffers", core.ErrPreconditionViolation, d.class, d.id)
	case d.indexBuffer == nil && shared == nil:
		return fmt.Errorf("%w: %s %s has no index buffer", core.ErrPreconditionViolation, d.class, d.id)
	case d.indexBuffer == nil:
		d.indexBuffer = shared
	}
	return nil
}

// addTransform attaches the per-draw transform of owner.
func (d *Drawable) addTransform(gfx *renderer.Graphics, owner bindable.Transformable) error {
	tc, err := bindable.NewTransformCbuf(gfx, owner, d.registry.Transform())
	if err != nil {
		return err
	}
	return d.AddInstanceBind(tc)
}

// Draw binds the instance resources, then the static set in registration
// order, then issues the indexed draw. Diagnostic-only warnings do not stop
// the draw; the first one is returned once the draw is issued.
func (d *Drawable) Draw(gfx *renderer.Graphics) error {
	if d.indexBuffer == nil {
		return fmt.Errorf("%w: %s %s drawn without an index buffer", core.ErrPreconditionViolation, d.class, d.id)
	}

	var warning error
	bind := func(b bindable.Bindable) error {
		err := b.Bind(gfx)
		if err == nil {
			return nil
		}
		if renderer.IsFatal(err) {
			return fmt.Errorf("failed to bind %s of %s %s: %w", b.Kind(), d.class, d.id, err)
		}
		if warning == nil {
			warning = err
		}
		return nil
	}

	for _, b := range d.binds {
		if err := bind(b); err != nil {
			return err
		}
	}
	for _, b := range d.registry.Binds(d.class) {
		if err := bind(b); err != nil {
			return err
		}
	}

	if err := gfx.DrawIndexed(d.indexBuffer.Count()); err != nil {
		return err
	}
	return warning
}

// Release frees the instance resources. The static set and the shared
// transform buffer stay with the registry.
func (d *Drawable) Release(gfx *renderer.Graphics) {
	for _, b := range d.binds {
		b.Release(gfx)
	}
	d.binds = nil
	d.indexBuffer = nil
}

// Orbit is the animation state every class shares: the object spins about
// its own centre (roll, pitch, yaw) and circles the scene centre at radius R
// (theta, phi, chi).
type Orbit struct {
	R float32

	Roll, Pitch, Yaw    float32
	Theta, Phi, Chi     float32
	DRoll, DPitch, DYaw float32
	DTheta, DPhi, DChi  float32
}

// Update advances every angle by its speed over dt seconds.
func (o *Orbit) Update(dt float32) {
	o.Roll = math.WrapAngle(o.Roll + o.DRoll*dt)
	o.Pitch = math.WrapAngle(o.Pitch + o.DPitch*dt)
	o.Yaw = math.WrapAngle(o.Yaw + o.DYaw*dt)
	o.Theta = math.WrapAngle(o.Theta + o.DTheta*dt)
	o.Phi = math.WrapAngle(o.Phi + o.DPhi*dt)
	o.Chi = math.WrapAngle(o.Chi + o.DChi*dt)
}

// Transform spins the object, moves it out to the orbit radius, rotates it
// about the scene centre and pushes the scene away from the camera.
func (o *Orbit) Transform() math.Mat4 {
	return math.NewMat4RollPitchYaw(o.Pitch, o.Yaw, o.Roll).
		Mul(math.NewMat4Translation(math.NewVec3(o.R, 0, 0))).
		Mul(math.NewMat4RollPitchYaw(o.Theta, o.Phi, o.Chi)).
		Mul(math.NewMat4Translation(math.NewVec3(0, 0, 20)))
}
