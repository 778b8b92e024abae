package geometry

import "github.com/spaghettifunk/orrery/engine/math"

// Sphere returns a unit sphere cut into latDiv latitude bands and longDiv
// longitude slices. It emits latDiv-1 rings of longDiv vertices plus the two
// poles, which gives 2*longDiv*(latDiv-2) band triangles and 2*longDiv cap
// triangles. Both divisions must be at least 3.
func Sphere[V Vertex[V]](latDiv, longDiv int) (IndexedTriangleList[V], error) {
	if err := checkDivisions("sphere latitude", latDiv, 3); err != nil {
		return IndexedTriangleList[V]{}, err
	}
	if err := checkDivisions("sphere longitude", longDiv, 3); err != nil {
		return IndexedTriangleList[V]{}, err
	}
	if err := checkVertexCount("sphere", (latDiv-1)*longDiv+2); err != nil {
		return IndexedTriangleList[V]{}, err
	}

	const radius = 1.0
	base := math.NewVec3(0, 0, radius)
	latAngle := math.K_PI / float32(latDiv)
	longAngle := math.K_PI_2 / float32(longDiv)

	rings := latDiv - 1
	positions := make([]math.Vec3, 0, rings*longDiv+2)
	for iLat := 1; iLat < latDiv; iLat++ {
		latBase := base.Transform(math.NewMat4EulerX(latAngle * float32(iLat)))
		for iLong := 0; iLong < longDiv; iLong++ {
			positions = append(positions, latBase.Transform(math.NewMat4EulerZ(longAngle*float32(iLong))))
		}
	}

	northPole := uint16(len(positions))
	positions = append(positions, base)
	southPole := uint16(len(positions))
	positions = append(positions, base.MulScalar(-1))

	ringIndex := func(iLat, iLong int) uint16 {
		return uint16(iLat*longDiv + iLong%longDiv)
	}

	indices := make([]uint16, 0, 6*longDiv*(latDiv-2)+6*longDiv)
	for iLat := 0; iLat < rings-1; iLat++ {
		for iLong := 0; iLong < longDiv; iLong++ {
			indices = append(indices,
				ringIndex(iLat, iLong), ringIndex(iLat+1, iLong), ringIndex(iLat, iLong+1),
				ringIndex(iLat, iLong+1), ringIndex(iLat+1, iLong), ringIndex(iLat+1, iLong+1),
			)
		}
	}

	last := rings - 1
	for iLong := 0; iLong < longDiv; iLong++ {
		// north cap
		indices = append(indices, northPole, ringIndex(0, iLong), ringIndex(0, iLong+1))
		// south cap
		indices = append(indices, ringIndex(last, iLong+1), ringIndex(last, iLong), southPole)
	}

	return newList[V](positions, indices), nil
}
