package math_test

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/orrery/engine/math"
)

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{0.5, 0.5},
		{gomath.Pi, gomath.Pi},
		{-gomath.Pi, gomath.Pi},
		{gomath.Pi + 0.25, -gomath.Pi + 0.25},
		{-3*gomath.Pi - 0.1, gomath.Pi - 0.1},
		{10, 10 - 4*gomath.Pi},
		{-7.5, -7.5 + 2*gomath.Pi},
	}
	for _, tt := range tests {
		got := math.WrapAngle(tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, "WrapAngle(%v)", tt.in)
	}
}

func TestWrapAngleIdempotentAndInRange(t *testing.T) {
	for theta := -50.0; theta <= 50.0; theta += 0.0137 {
		w := math.WrapAngle(theta)
		assert.Greater(t, w, -gomath.Pi)
		assert.LessOrEqual(t, w, gomath.Pi)
		assert.Equal(t, w, math.WrapAngle(w))

		w32 := math.WrapAngle(float32(theta))
		assert.Greater(t, w32, -math.K_PI)
		assert.LessOrEqual(t, w32, math.K_PI)
		assert.Equal(t, w32, math.WrapAngle(w32))
	}
}

func TestMat4MulAppliesLeftFirst(t *testing.T) {
	p := math.NewVec3(1, 0, 0)
	rot := math.NewMat4EulerZ(math.K_HALF_PI)
	move := math.NewMat4Translation(math.NewVec3(2, 0, 0))

	got := p.Transform(rot.Mul(move))
	assert.True(t, got.Compare(math.NewVec3(2, 1, 0), 1e-5), "got %v", got)

	got = p.Transform(move.Mul(rot))
	assert.True(t, got.Compare(math.NewVec3(0, 3, 0), 1e-5), "got %v", got)
}

func TestRollPitchYawOrder(t *testing.T) {
	rpy := math.NewMat4RollPitchYaw(0.3, -1.1, 0.7)
	want := math.NewMat4EulerZ(0.7).Mul(math.NewMat4EulerX(0.3)).Mul(math.NewMat4EulerY(-1.1))
	assert.True(t, rpy.Compare(want, 1e-6))

	assert.True(t, math.NewMat4RollPitchYaw(0, 0, 0).Compare(math.NewMat4Identity(), 0))
}

func TestTransposed(t *testing.T) {
	mt := math.NewMat4Translation(math.NewVec3(1, 2, 3))
	tr := mt.Transposed()
	assert.Equal(t, float32(1), tr.Data[3])
	assert.Equal(t, float32(2), tr.Data[7])
	assert.Equal(t, float32(3), tr.Data[11])
	assert.Equal(t, mt, tr.Transposed())
}

func TestPerspectiveLHDepthRange(t *testing.T) {
	proj := math.NewMat4PerspectiveLH(1, 0.75, 0.5, 40)

	clipZ := func(z float32) float32 {
		// row vector (0,0,z,1) times proj, then divide by w
		zc := z*proj.Data[10] + proj.Data[14]
		wc := z*proj.Data[11] + proj.Data[15]
		return zc / wc
	}
	assert.InDelta(t, 0, clipZ(0.5), 1e-6)
	assert.InDelta(t, 1, clipZ(40), 1e-6)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 3, math.Clamp(7, 0, 3))
	assert.Equal(t, float32(-1), math.Clamp(float32(-4), -1, 1))
	assert.Equal(t, 0.5, math.Clamp(0.5, 0, 1))
}
