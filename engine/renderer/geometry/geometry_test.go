package geometry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/orrery/engine/core"
	"github.com/spaghettifunk/orrery/engine/math"
	"github.com/spaghettifunk/orrery/engine/renderer/geometry"
)

type posVertex struct {
	Pos math.Vec3
}

func (v posVertex) Position() math.Vec3                { return v.Pos }
func (v posVertex) WithPosition(p math.Vec3) posVertex { v.Pos = p; return v }

type texVertex struct {
	Pos math.Vec3
	UV  math.Vec2
}

func (v texVertex) Position() math.Vec3                 { return v.Pos }
func (v texVertex) WithPosition(p math.Vec3) texVertex  { v.Pos = p; return v }
func (v texVertex) WithTexcoord(uv math.Vec2) texVertex { v.UV = uv; return v }

func TestSphereCounts(t *testing.T) {
	list, err := geometry.Sphere[posVertex](3, 3)
	require.NoError(t, err)
	require.NoError(t, list.Validate())

	// two rings of three plus both poles
	assert.Len(t, list.Vertices, 8)
	assert.Equal(t, 2*3*(3-2)+2*3, list.TriangleCount())

	assert.Equal(t, math.NewVec3(0, 0, 1), list.Vertices[6].Pos)
	assert.Equal(t, math.NewVec3(0, 0, -1), list.Vertices[7].Pos)
	for _, v := range list.Vertices {
		assert.InDelta(t, 1.0, v.Pos.Length(), 1e-5)
	}
}

func TestGeneratorsRespectInvariants(t *testing.T) {
	for lat := 3; lat <= 12; lat++ {
		for long := 3; long <= 12; long++ {
			list, err := geometry.Sphere[posVertex](lat, long)
			require.NoError(t, err)
			assert.NoError(t, list.Validate(), "sphere %dx%d", lat, long)
			assert.Equal(t, 2*long*(lat-2)+2*long, list.TriangleCount())
			assert.Len(t, list.Vertices, (lat-1)*long+2)
		}
	}
	for div := 3; div <= 32; div++ {
		cone, err := geometry.Cone[posVertex](div)
		require.NoError(t, err)
		assert.NoError(t, cone.Validate(), "cone %d", div)
		assert.Len(t, cone.Vertices, div+2)
		assert.Equal(t, 2*div, cone.TriangleCount())

		prism, err := geometry.Prism[posVertex](div)
		require.NoError(t, err)
		assert.NoError(t, prism.Validate(), "prism %d", div)
		assert.Len(t, prism.Vertices, 2*div+2)
		assert.Equal(t, 4*div, prism.TriangleCount())
	}
	for x := 1; x <= 6; x++ {
		for y := 1; y <= 6; y++ {
			plane, err := geometry.Plane[posVertex](x, y)
			require.NoError(t, err)
			assert.NoError(t, plane.Validate(), "plane %dx%d", x, y)
			assert.Len(t, plane.Vertices, (x+1)*(y+1))
			assert.Equal(t, 2*x*y, plane.TriangleCount())
		}
	}

	cube := geometry.Cube[posVertex]()
	assert.NoError(t, cube.Validate())
	assert.Len(t, cube.Vertices, 8)
	assert.Equal(t, 12, cube.TriangleCount())

	faces := geometry.CubeIndependentFaces[posVertex]()
	assert.NoError(t, faces.Validate())
	assert.Len(t, faces.Vertices, 24)
	assert.Equal(t, 12, faces.TriangleCount())
	// each triangle stays inside one face
	for i := 0; i < len(faces.Indices); i += 3 {
		f := faces.Indices[i] / 4
		assert.Equal(t, f, faces.Indices[i+1]/4)
		assert.Equal(t, f, faces.Indices[i+2]/4)
	}

	skinned := geometry.SkinnedCube[texVertex]()
	assert.NoError(t, skinned.Validate())
	assert.Len(t, skinned.Vertices, 14)
	for _, v := range skinned.Vertices {
		assert.True(t, v.UV.X >= 0 && v.UV.X <= 1 && v.UV.Y >= 0 && v.UV.Y <= 1)
	}
}

func TestSeamWrapsToFirstDivision(t *testing.T) {
	cone, err := geometry.Cone[posVertex](5)
	require.NoError(t, err)
	// last side triangle connects the last base vertex back to vertex 0
	last := cone.Indices[len(cone.Indices)-3:]
	assert.Equal(t, []uint16{4, 0, 6}, last)
}

func TestGeneratorsRejectTooFewDivisions(t *testing.T) {
	_, err := geometry.Sphere[posVertex](2, 8)
	assert.ErrorIs(t, err, core.ErrPreconditionViolation)
	_, err = geometry.Sphere[posVertex](8, 2)
	assert.ErrorIs(t, err, core.ErrPreconditionViolation)
	_, err = geometry.Cone[posVertex](2)
	assert.ErrorIs(t, err, core.ErrPreconditionViolation)
	_, err = geometry.Prism[posVertex](0)
	assert.ErrorIs(t, err, core.ErrPreconditionViolation)
	_, err = geometry.Plane[posVertex](0, 1)
	assert.ErrorIs(t, err, core.ErrPreconditionViolation)
}

func TestGeneratorsStayWithinSixteenBitIndices(t *testing.T) {
	// 256x256 grid points is exactly the addressable maximum.
	plane, err := geometry.Plane[posVertex](255, 255)
	require.NoError(t, err)
	require.NoError(t, plane.Validate())
	assert.Len(t, plane.Vertices, geometry.MaxVertices)
	assert.Contains(t, plane.Indices, uint16(geometry.MaxVertices-1))

	_, err = geometry.Plane[posVertex](256, 255)
	assert.ErrorIs(t, err, core.ErrPreconditionViolation)

	sphere, err := geometry.Sphere[posVertex](3, 32767)
	require.NoError(t, err)
	assert.Len(t, sphere.Vertices, geometry.MaxVertices)
	assert.NoError(t, sphere.Validate())

	for _, dims := range [][2]int{{3, 32768}, {300, 300}} {
		_, err = geometry.Sphere[posVertex](dims[0], dims[1])
		assert.ErrorIs(t, err, core.ErrPreconditionViolation, "sphere %dx%d", dims[0], dims[1])
	}

	_, err = geometry.Prism[posVertex](32767)
	assert.NoError(t, err)
	_, err = geometry.Prism[posVertex](32768)
	assert.ErrorIs(t, err, core.ErrPreconditionViolation)

	_, err = geometry.Cone[posVertex](geometry.MaxVertices - 2)
	assert.NoError(t, err)
	_, err = geometry.Cone[posVertex](geometry.MaxVertices - 1)
	assert.ErrorIs(t, err, core.ErrPreconditionViolation)

	oversized := geometry.IndexedTriangleList[posVertex]{
		Vertices: make([]posVertex, geometry.MaxVertices+1),
		Indices:  []uint16{0, 1, 2},
	}
	assert.ErrorIs(t, oversized.Validate(), core.ErrPreconditionViolation)
}

func TestValidateRejectsBrokenLists(t *testing.T) {
	list := geometry.IndexedTriangleList[posVertex]{
		Vertices: make([]posVertex, 3),
		Indices:  []uint16{0, 1, 3},
	}
	assert.ErrorIs(t, list.Validate(), core.ErrPreconditionViolation)

	list.Indices = []uint16{0, 1}
	assert.ErrorIs(t, list.Validate(), core.ErrPreconditionViolation)

	list.Vertices = list.Vertices[:2]
	list.Indices = nil
	assert.ErrorIs(t, list.Validate(), core.ErrPreconditionViolation)
}

func TestTexturedPlaneAndTransform(t *testing.T) {
	plane, err := geometry.TexturedPlane[texVertex](1, 1)
	require.NoError(t, err)
	assert.Equal(t, math.NewVec2(0, 1), plane.Vertices[0].UV)
	assert.Equal(t, math.NewVec2(1, 0), plane.Vertices[3].UV)

	plane.Transform(math.NewMat4Scale(math.NewVec3(3, 3, 3)))
	assert.Equal(t, math.NewVec3(-3, -3, 0), plane.Vertices[0].Pos)
	assert.Equal(t, math.NewVec2(0, 1), plane.Vertices[0].UV)
}
