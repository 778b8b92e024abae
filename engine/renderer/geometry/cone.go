package geometry

import "github.com/spaghettifunk/orrery/engine/math"

// Cone returns a cone with its tip at z=1 and a longDiv-sided base at z=-1.
// The base ring comes first, then the base centre, then the tip. longDiv must
// be at least 3.
func Cone[V Vertex[V]](longDiv int) (IndexedTriangleList[V], error) {
	if err := checkDivisions("cone", longDiv, 3); err != nil {
		return IndexedTriangleList[V]{}, err
	}
	if err := checkVertexCount("cone", longDiv+2); err != nil {
		return IndexedTriangleList[V]{}, err
	}

	base := math.NewVec3(1, 0, -1)
	longAngle := math.K_PI_2 / float32(longDiv)

	positions := make([]math.Vec3, 0, longDiv+2)
	for iLong := 0; iLong < longDiv; iLong++ {
		positions = append(positions, base.Transform(math.NewMat4EulerZ(longAngle*float32(iLong))))
	}
	center := uint16(len(positions))
	positions = append(positions, math.NewVec3(0, 0, -1))
	tip := uint16(len(positions))
	positions = append(positions, math.NewVec3(0, 0, 1))

	indices := make([]uint16, 0, 6*longDiv)
	for iLong := 0; iLong < longDiv; iLong++ {
		cur := uint16(iLong)
		next := uint16((iLong + 1) % longDiv)
		indices = append(indices, center, next, cur)
		indices = append(indices, cur, next, tip)
	}

	return newList[V](positions, indices), nil
}
