package components

import (
	"github.com/spaghettifunk/orrery/engine/math"
)

// pitchLimit is 89 degrees; pitching past it flips the view.
const pitchLimit float32 = 1.55334306

/**
 * @brief A free look camera. Position and rotation are changed through the
 * methods so the view matrix is only rebuilt when needed.
 */
type Camera struct {
	position math.Vec3
	// Pitch (x) and yaw (y) in radians.
	rotation math.Vec3
	isDirty  bool
	view     math.Mat4
}

func NewCamera() *Camera {
	camera := &Camera{}
	camera.Reset()
	return camera
}

func (c *Camera) Reset() {
	c.rotation = math.NewVec3Zero()
	c.position = math.NewVec3Zero()
	c.isDirty = false
	c.view = math.NewMat4Identity()
}

func (c *Camera) Position() math.Vec3 {
	return c.position
}

func (c *Camera) SetPosition(position math.Vec3) {
	c.position = position
	c.isDirty = true
}

func (c *Camera) Rotation() math.Vec3 {
	return c.rotation
}

// View returns the world to camera transform for row vectors.
func (c *Camera) View() math.Mat4 {
	if c.isDirty {
		// The inverse of rotate-then-translate.
		c.view = math.NewMat4Translation(c.position.MulScalar(-1)).
			Mul(math.NewMat4EulerY(-c.rotation.Y)).
			Mul(math.NewMat4EulerX(-c.rotation.X))
		c.isDirty = false
	}
	return c.view
}

// ViewProjection returns View followed by proj.
func (c *Camera) ViewProjection(proj math.Mat4) math.Mat4 {
	return c.View().Mul(proj)
}

// Forward is the direction the camera looks along, +z when unrotated.
func (c *Camera) Forward() math.Vec3 {
	rotation := math.NewMat4RollPitchYaw(c.rotation.X, c.rotation.Y, 0)
	return math.NewVec3(0, 0, 1).Transform(rotation)
}

func (c *Camera) MoveForward(amount float32) {
	c.position = c.position.Add(c.Forward().MulScalar(amount))
	c.isDirty = true
}

func (c *Camera) MoveBackward(amount float32) {
	c.MoveForward(-amount)
}

func (c *Camera) Yaw(amount float32) {
	c.rotation.Y = math.WrapAngle(c.rotation.Y + amount)
	c.isDirty = true
}

func (c *Camera) Pitch(amount float32) {
	// Clamp to avoid Gimbal lock.
	c.rotation.X = math.Clamp(c.rotation.X+amount, -pitchLimit, pitchLimit)
	c.isDirty = true
}
