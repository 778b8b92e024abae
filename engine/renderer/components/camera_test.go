package components_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/orrery/engine/math"
	"github.com/spaghettifunk/orrery/engine/renderer/components"
)

func assertVec3(t *testing.T, want, got math.Vec3) {
	t.Helper()
	assert.True(t, want.Compare(got, 1e-5), "want %v, got %v", want, got)
}

func TestNewCameraViewIsIdentity(t *testing.T) {
	c := components.NewCamera()
	assert.True(t, c.View().Compare(math.NewMat4Identity(), 0))
}

func TestViewMovesTheWorldAgainstTheCamera(t *testing.T) {
	c := components.NewCamera()
	c.SetPosition(math.NewVec3(0, 0, -5))

	assertVec3(t, math.NewVec3(0, 0, 5), math.NewVec3Zero().Transform(c.View()))
}

func TestYawTurnsTheView(t *testing.T) {
	c := components.NewCamera()
	c.Yaw(math.K_HALF_PI)

	assertVec3(t, math.NewVec3(1, 0, 0), c.Forward())
	// A point on the forward axis ends up straight ahead in view space.
	assertVec3(t, math.NewVec3(0, 0, 1), math.NewVec3(1, 0, 0).Transform(c.View()))

	c.MoveForward(2)
	assertVec3(t, math.NewVec3(2, 0, 0), c.Position())
	c.MoveBackward(2)
	assertVec3(t, math.NewVec3Zero(), c.Position())
}

func TestPitchIsClamped(t *testing.T) {
	c := components.NewCamera()
	c.Pitch(10)
	assert.InDelta(t, 1.55334306, c.Rotation().X, 1e-6)
	c.Pitch(-20)
	assert.InDelta(t, -1.55334306, c.Rotation().X, 1e-6)
}

func TestViewProjectionAppliesViewFirst(t *testing.T) {
	c := components.NewCamera()
	c.SetPosition(math.NewVec3(1, 2, 3))
	proj := math.NewMat4Scale(math.NewVec3(2, 2, 2))

	got := math.NewVec3(1, 2, 4).Transform(c.ViewProjection(proj))
	assertVec3(t, math.NewVec3(0, 0, 2), got)
}
