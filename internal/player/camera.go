package player

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const maxPitch = math.Pi / 2

// Rotate adds to pitch and yaw (radians). Pitch is clamped to ±π/2.
func (p *Player) Rotate(deltaPitch, deltaYaw float64) {
	p.Rotation[0] += float32(deltaPitch)
	p.Rotation[1] += float32(deltaYaw)
	p.Rotation[0] = mgl32.Clamp(p.Rotation.X(), -maxPitch, maxPitch)
}

// HandleMouseMovement turns cursor deltas (pixels) into rotation.
func (p *Player) HandleMouseMovement(dx, dy float64) {
	const sensitivity = 0.0025
	p.Rotate(-dy*sensitivity, dx*sensitivity)
}

// Eye returns the camera position.
func (p *Player) Eye() mgl32.Vec3 {
	return p.Position.Add(mgl32.Vec3{0, PlayerEyeHeight, 0})
}

// Front returns the unit view direction.
func (p *Player) Front() mgl32.Vec3 {
	pitch := float64(p.Rotation.X())
	yaw := float64(p.Rotation.Y())
	return mgl32.Vec3{
		float32(math.Cos(pitch) * math.Sin(yaw)),
		float32(math.Sin(pitch)),
		float32(-math.Cos(pitch) * math.Cos(yaw)),
	}.Normalize()
}

// ViewMatrix returns the camera view matrix.
func (p *Player) ViewMatrix() mgl32.Mat4 {
	eye := p.Eye()
	return mgl32.LookAtV(eye, eye.Add(p.Front()), mgl32.Vec3{0, 1, 0})
}
