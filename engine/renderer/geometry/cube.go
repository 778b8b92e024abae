package geometry

import "github.com/spaghettifunk/orrery/engine/math"

const cubeSide = 0.5

// Cube returns a unit cube with 8 shared corners.
func Cube[V Vertex[V]]() IndexedTriangleList[V] {
	const s = cubeSide
	positions := []math.Vec3{
		{X: -s, Y: -s, Z: -s},
		{X: s, Y: -s, Z: -s},
		{X: -s, Y: s, Z: -s},
		{X: s, Y: s, Z: -s},
		{X: -s, Y: -s, Z: s},
		{X: s, Y: -s, Z: s},
		{X: -s, Y: s, Z: s},
		{X: s, Y: s, Z: s},
	}
	return newList[V](positions, []uint16{
		0, 2, 1, 2, 3, 1,
		1, 3, 5, 3, 7, 5,
		2, 6, 3, 3, 6, 7,
		4, 5, 7, 4, 7, 6,
		0, 4, 2, 2, 4, 6,
		0, 1, 4, 1, 5, 4,
	})
}

// CubeIndependentFaces returns a unit cube where every face owns its four
// corners, so vertices [4*f, 4*f+4) belong to face f. Face order is near, far,
// left, right, bottom, top.
func CubeIndependentFaces[V Vertex[V]]() IndexedTriangleList[V] {
	const s = cubeSide
	positions := []math.Vec3{
		// near
		{X: -s, Y: -s, Z: -s}, {X: s, Y: -s, Z: -s}, {X: -s, Y: s, Z: -s}, {X: s, Y: s, Z: -s},
		// far
		{X: -s, Y: -s, Z: s}, {X: s, Y: -s, Z: s}, {X: -s, Y: s, Z: s}, {X: s, Y: s, Z: s},
		// left
		{X: -s, Y: -s, Z: -s}, {X: -s, Y: -s, Z: s}, {X: -s, Y: s, Z: -s}, {X: -s, Y: s, Z: s},
		// right
		{X: s, Y: -s, Z: -s}, {X: s, Y: -s, Z: s}, {X: s, Y: s, Z: -s}, {X: s, Y: s, Z: s},
		// bottom
		{X: -s, Y: -s, Z: -s}, {X: s, Y: -s, Z: -s}, {X: -s, Y: -s, Z: s}, {X: s, Y: -s, Z: s},
		// top
		{X: -s, Y: s, Z: -s}, {X: s, Y: s, Z: -s}, {X: -s, Y: s, Z: s}, {X: s, Y: s, Z: s},
	}
	return newList[V](positions, []uint16{
		0, 2, 1, 2, 3, 1,
		4, 5, 7, 4, 7, 6,
		8, 10, 9, 10, 11, 9,
		12, 13, 15, 12, 15, 14,
		16, 17, 18, 18, 17, 19,
		20, 23, 21, 20, 22, 23,
	})
}

// SkinnedCube returns a unit cube whose texture coordinates unfold a 3x4
// cross-shaped skin onto the six faces. Seam corners are duplicated, which
// gives 14 vertices.
func SkinnedCube[V TexturedVertex[V]]() IndexedTriangleList[V] {
	const s = cubeSide
	type corner struct {
		pos math.Vec3
		uv  math.Vec2
	}
	corners := []corner{
		{math.Vec3{X: -s, Y: -s, Z: -s}, math.Vec2{X: 2.0 / 3.0, Y: 0.0 / 4.0}},
		{math.Vec3{X: s, Y: -s, Z: -s}, math.Vec2{X: 1.0 / 3.0, Y: 0.0 / 4.0}},
		{math.Vec3{X: -s, Y: s, Z: -s}, math.Vec2{X: 2.0 / 3.0, Y: 1.0 / 4.0}},
		{math.Vec3{X: s, Y: s, Z: -s}, math.Vec2{X: 1.0 / 3.0, Y: 1.0 / 4.0}},
		{math.Vec3{X: -s, Y: -s, Z: s}, math.Vec2{X: 2.0 / 3.0, Y: 3.0 / 4.0}},
		{math.Vec3{X: s, Y: -s, Z: s}, math.Vec2{X: 1.0 / 3.0, Y: 3.0 / 4.0}},
		{math.Vec3{X: -s, Y: s, Z: s}, math.Vec2{X: 2.0 / 3.0, Y: 2.0 / 4.0}},
		{math.Vec3{X: s, Y: s, Z: s}, math.Vec2{X: 1.0 / 3.0, Y: 2.0 / 4.0}},
		{math.Vec3{X: -s, Y: -s, Z: -s}, math.Vec2{X: 2.0 / 3.0, Y: 4.0 / 4.0}},
		{math.Vec3{X: s, Y: -s, Z: -s}, math.Vec2{X: 1.0 / 3.0, Y: 4.0 / 4.0}},
		{math.Vec3{X: -s, Y: -s, Z: -s}, math.Vec2{X: 3.0 / 3.0, Y: 1.0 / 4.0}},
		{math.Vec3{X: -s, Y: -s, Z: s}, math.Vec2{X: 3.0 / 3.0, Y: 2.0 / 4.0}},
		{math.Vec3{X: s, Y: -s, Z: -s}, math.Vec2{X: 0.0 / 3.0, Y: 1.0 / 4.0}},
		{math.Vec3{X: s, Y: -s, Z: s}, math.Vec2{X: 0.0 / 3.0, Y: 2.0 / 4.0}},
	}

	var zero V
	vertices := make([]V, len(corners))
	for i, c := range corners {
		vertices[i] = zero.WithPosition(c.pos).WithTexcoord(c.uv)
	}
	return IndexedTriangleList[V]{
		Vertices: vertices,
		Indices: []uint16{
			0, 2, 1, 2, 3, 1,
			4, 8, 5, 5, 8, 9,
			2, 6, 3, 3, 6, 7,
			4, 5, 7, 4, 7, 6,
			2, 10, 11, 2, 11, 6,
			12, 3, 7, 12, 7, 13,
		},
	}
}
