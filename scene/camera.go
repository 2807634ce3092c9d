package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a first-person perspective camera driven by yaw and pitch.
// Yaw 0 looks down -Z.
type Camera struct {
	Position    mgl32.Vec3
	Yaw         float32
	Pitch       float32
	FOV         float32 // vertical, radians
	AspectRatio float32
	NearPlane   float32
	FarPlane    float32

	// Cached matrices
	viewMatrix       mgl32.Mat4
	projectionMatrix mgl32.Mat4
	viewProjMatrix   mgl32.Mat4
	dirty            bool
}

const maxPitch = math.Pi/2 - 0.01

func NewCamera(fov, aspectRatio, nearPlane, farPlane float32) *Camera {
	return &Camera{
		FOV:         fov,
		AspectRatio: aspectRatio,
		NearPlane:   nearPlane,
		FarPlane:    farPlane,
		dirty:       true,
	}
}

func (c *Camera) UpdateAspectRatio(width, height float32) {
	if height > 0 {
		c.AspectRatio = width / height
		c.dirty = true
	}
}

func (c *Camera) SetPosition(pos mgl32.Vec3) {
	c.Position = pos
	c.dirty = true
}

func (c *Camera) Translate(delta mgl32.Vec3) {
	c.Position = c.Position.Add(delta)
	c.dirty = true
}

// Look adds yaw/pitch deltas; pitch is clamped short of straight up/down.
func (c *Camera) Look(dYaw, dPitch float32) {
	c.Yaw += dYaw
	c.Pitch = mgl32.Clamp(c.Pitch+dPitch, -maxPitch, maxPitch)
	c.dirty = true
}

func (c *Camera) SetYawPitch(yaw, pitch float32) {
	c.Yaw = yaw
	c.Pitch = mgl32.Clamp(pitch, -maxPitch, maxPitch)
	c.dirty = true
}

func (c *Camera) Rotation() mgl32.Quat {
	return mgl32.QuatRotate(c.Yaw, mgl32.Vec3{0, 1, 0}).Mul(mgl32.QuatRotate(c.Pitch, mgl32.Vec3{1, 0, 0}))
}

func (c *Camera) GetForward() mgl32.Vec3 {
	return c.Rotation().Rotate(mgl32.Vec3{0, 0, -1})
}

func (c *Camera) GetRight() mgl32.Vec3 {
	return c.Rotation().Rotate(mgl32.Vec3{1, 0, 0})
}

func (c *Camera) GetUp() mgl32.Vec3 {
	return c.Rotation().Rotate(mgl32.Vec3{0, 1, 0})
}

// FlatForward is the forward direction projected on the ground plane.
func (c *Camera) FlatForward() mgl32.Vec3 {
	s, co := math.Sincos(float64(c.Yaw))
	return mgl32.Vec3{-float32(s), 0, -float32(co)}
}

// FlatRight is the right direction projected on the ground plane.
func (c *Camera) FlatRight() mgl32.Vec3 {
	s, co := math.Sincos(float64(c.Yaw))
	return mgl32.Vec3{float32(co), 0, -float32(s)}
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.viewMatrix
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.projectionMatrix
}

func (c *Camera) GetViewProjectionMatrix() mgl32.Mat4 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.viewProjMatrix
}

func (c *Camera) updateMatrices() {
	target := c.Position.Add(c.GetForward())
	c.viewMatrix = mgl32.LookAtV(c.Position, target, mgl32.Vec3{0, 1, 0})
	c.projectionMatrix = mgl32.Perspective(c.FOV, c.AspectRatio, c.NearPlane, c.FarPlane)
	c.viewProjMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
	c.dirty = false
}
