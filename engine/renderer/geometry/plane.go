package geometry

import "github.com/spaghettifunk/orrery/engine/math"

// Plane returns a 2x2 grid in the z=0 plane centred on the origin, split into
// divX by divY cells. Vertices are laid out row by row from (-1,-1). Both
// divisions must be at least 1.
func Plane[V Vertex[V]](divX, divY int) (IndexedTriangleList[V], error) {
	if err := checkDivisions("plane x", divX, 1); err != nil {
		return IndexedTriangleList[V]{}, err
	}
	if err := checkDivisions("plane y", divY, 1); err != nil {
		return IndexedTriangleList[V]{}, err
	}
	if err := checkVertexCount("plane", (divX+1)*(divY+1)); err != nil {
		return IndexedTriangleList[V]{}, err
	}

	const width, height = 2.0, 2.0
	nx, ny := divX+1, divY+1
	stepX := float32(width) / float32(divX)
	stepY := float32(height) / float32(divY)

	positions := make([]math.Vec3, 0, nx*ny)
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			positions = append(positions, math.NewVec3(-width/2+float32(x)*stepX, -height/2+float32(y)*stepY, 0))
		}
	}

	at := func(x, y int) uint16 { return uint16(y*nx + x) }

	indices := make([]uint16, 0, divX*divY*6)
	for y := 0; y < divY; y++ {
		for x := 0; x < divX; x++ {
			indices = append(indices,
				at(x, y), at(x, y+1), at(x+1, y),
				at(x+1, y), at(x, y+1), at(x+1, y+1),
			)
		}
	}

	return newList[V](positions, indices), nil
}

// TexturedPlane is Plane with texture coordinates spanning [0,1] across the
// grid, v growing downwards.
func TexturedPlane[V TexturedVertex[V]](divX, divY int) (IndexedTriangleList[V], error) {
	list, err := Plane[V](divX, divY)
	if err != nil {
		return list, err
	}
	nx := divX + 1
	for i, v := range list.Vertices {
		x, y := i%nx, i/nx
		list.Vertices[i] = v.WithTexcoord(math.NewVec2(float32(x)/float32(divX), 1-float32(y)/float32(divY)))
	}
	return list, nil
}
