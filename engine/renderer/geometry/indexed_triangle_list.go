// Package geometry builds parametric meshes as indexed triangle lists. The
// generators are pure: they allocate a fresh list on every call and keep no
// state between calls.
package geometry

import (
	"fmt"

	"github.com/spaghettifunk/orrery/engine/core"
	"github.com/spaghettifunk/orrery/engine/math"
)

// Vertex is a vertex layout the generators can place in space. WithPosition
// returns a copy of the vertex moved to p, which lets the generators build any
// layout starting from its zero value.
type Vertex[V any] interface {
	Position() math.Vec3
	WithPosition(p math.Vec3) V
}

// TexturedVertex is a Vertex that also carries texture coordinates.
type TexturedVertex[V any] interface {
	Vertex[V]
	WithTexcoord(uv math.Vec2) V
}

// MaxVertices is the largest vertex count a 16-bit index can address.
const MaxVertices = 1 << 16

// IndexedTriangleList is a vertex array plus a triangle index array.
type IndexedTriangleList[V Vertex[V]] struct {
	Vertices []V
	Indices  []uint16
}

// Validate checks the list invariants: more than two vertices, no more than
// MaxVertices, whole triangles only and every index inside the vertex array.
func (l *IndexedTriangleList[V]) Validate() error {
	if len(l.Vertices) <= 2 {
		return fmt.Errorf("%w: triangle list needs more than 2 vertices, got %d", core.ErrPreconditionViolation, len(l.Vertices))
	}
	if len(l.Vertices) > MaxVertices {
		return fmt.Errorf("%w: %d vertices cannot be addressed by 16-bit indices", core.ErrPreconditionViolation, len(l.Vertices))
	}
	if len(l.Indices)%3 != 0 {
		return fmt.Errorf("%w: index count %d is not a multiple of 3", core.ErrPreconditionViolation, len(l.Indices))
	}
	for i, idx := range l.Indices {
		if int(idx) >= len(l.Vertices) {
			return fmt.Errorf("%w: index %d at position %d out of range (vertices=%d)", core.ErrPreconditionViolation, idx, i, len(l.Vertices))
		}
	}
	return nil
}

// TriangleCount returns the number of triangles described by the index array.
func (l *IndexedTriangleList[V]) TriangleCount() int {
	return len(l.Indices) / 3
}

// Transform moves every vertex through m.
func (l *IndexedTriangleList[V]) Transform(m math.Mat4) {
	for i, v := range l.Vertices {
		l.Vertices[i] = v.WithPosition(v.Position().Transform(m))
	}
}

func newList[V Vertex[V]](positions []math.Vec3, indices []uint16) IndexedTriangleList[V] {
	var zero V
	vertices := make([]V, len(positions))
	for i, p := range positions {
		vertices[i] = zero.WithPosition(p)
	}
	return IndexedTriangleList[V]{
		Vertices: vertices,
		Indices:  indices,
	}
}

func checkDivisions(name string, got, min int) error {
	if got < min {
		return fmt.Errorf("%w: %s needs at least %d divisions, got %d", core.ErrPreconditionViolation, name, min, got)
	}
	if got > MaxVertices {
		return fmt.Errorf("%w: %s has %d divisions, at most %d are addressable", core.ErrPreconditionViolation, name, got, MaxVertices)
	}
	return nil
}

// checkVertexCount rejects meshes whose indices would wrap around uint16.
func checkVertexCount(name string, count int) error {
	if count > MaxVertices {
		return fmt.Errorf("%w: %s needs %d vertices, 16-bit indices address at most %d", core.ErrPreconditionViolation, name, count, MaxVertices)
	}
	return nil
}
