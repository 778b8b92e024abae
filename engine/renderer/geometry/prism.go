package geometry

import "github.com/spaghettifunk/orrery/engine/math"

// Prism returns a longDiv-sided prism between z=-1 and z=1. Vertex 0 and 1 are
// the near and far cap centres; ring vertices follow as near/far pairs.
// longDiv must be at least 3.
func Prism[V Vertex[V]](longDiv int) (IndexedTriangleList[V], error) {
	if err := checkDivisions("prism", longDiv, 3); err != nil {
		return IndexedTriangleList[V]{}, err
	}
	if err := checkVertexCount("prism", 2*longDiv+2); err != nil {
		return IndexedTriangleList[V]{}, err
	}

	base := math.NewVec3(1, 0, -1)
	offset := math.NewVec3(0, 0, 2)
	longAngle := math.K_PI_2 / float32(longDiv)

	positions := make([]math.Vec3, 0, 2*longDiv+2)
	positions = append(positions, math.NewVec3(0, 0, -1), math.NewVec3(0, 0, 1))
	for iLong := 0; iLong < longDiv; iLong++ {
		near := base.Transform(math.NewMat4EulerZ(longAngle * float32(iLong)))
		positions = append(positions, near, near.Add(offset))
	}

	near := func(i int) uint16 { return uint16(2 + (i%longDiv)*2) }
	far := func(i int) uint16 { return uint16(3 + (i%longDiv)*2) }

	indices := make([]uint16, 0, 12*longDiv)
	for iLong := 0; iLong < longDiv; iLong++ {
		// caps
		indices = append(indices, 0, near(iLong+1), near(iLong))
		indices = append(indices, 1, far(iLong), far(iLong+1))
		// side
		indices = append(indices,
			near(iLong), near(iLong+1), far(iLong),
			near(iLong+1), far(iLong+1), far(iLong),
		)
	}

	return newList[V](positions, indices), nil
}
