package player

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"voxelstream/internal/profiling"
)

const (
	Gravity          = -20.0 // blocks/s²
	JumpVelocity     = 8.0   // blocks/s
	TerminalVelocity = -50.0 // blocks/s

	WalkSpeed = 4.3  // blocks/s
	FlySpeed  = 10.0 // blocks/s

	groundProbe = 0.1
)

// Move displaces the player by delta, resolving each axis separately so the
// player slides along walls. Positions are clamped to the player's bounds.
func (p *Player) Move(delta mgl32.Vec3) {
	next := p.Position
	next[0] += delta.X()
	if !p.collidesAt(next) {
		p.Position[0] = mgl32.Clamp(next.X(), p.bounds.Min.X(), p.bounds.Max.X())
	}

	next = p.Position
	next[1] += delta.Y()
	if !p.collidesAt(next) {
		p.Position[1] = mgl32.Clamp(next.Y(), p.bounds.Min.Y(), p.bounds.Max.Y())
	} else {
		if delta.Y() < 0 {
			// Land flush on the block the feet ran into.
			if top := float32(math.Floor(float64(next.Y()))) + 1; top <= p.Position.Y() {
				p.Position[1] = top
			}
			p.IsOnGround = true
		}
		p.Velocity[1] = 0
	}

	next = p.Position
	next[2] += delta.Z()
	if !p.collidesAt(next) {
		p.Position[2] = mgl32.Clamp(next.Z(), p.bounds.Min.Z(), p.bounds.Max.Z())
	}
}

// Walk moves the player relative to its yaw. forward and strafe are in [-1, 1];
// rise is only honoured while flying.
func (p *Player) Walk(forward, strafe, rise float32, dt float32) {
	if forward == 0 && strafe == 0 && rise == 0 {
		return
	}
	speed := float32(WalkSpeed)
	if p.IsFlying {
		speed = FlySpeed
	}

	yaw := float64(p.Rotation.Y())
	front := mgl32.Vec3{float32(math.Sin(yaw)), 0, -float32(math.Cos(yaw))}
	right := mgl32.Vec3{float32(math.Cos(yaw)), 0, float32(math.Sin(yaw))}

	dir := front.Mul(forward).Add(right.Mul(strafe))
	if dir.Len() > 0 {
		dir = dir.Normalize()
	}
	delta := dir.Mul(speed * dt)
	if p.IsFlying {
		delta[1] = rise * speed * dt
	}
	p.Move(delta)
}

// Update advances gravity and ground detection by dt seconds.
func (p *Player) Update(dt float32) {
	defer profiling.Track("player.Update")()
	if p.IsFlying {
		return
	}

	p.Velocity[1] += Gravity * dt
	if p.Velocity.Y() < TerminalVelocity {
		p.Velocity[1] = TerminalVelocity
	}

	if p.Velocity.Y() != 0 {
		p.IsOnGround = false
		p.Move(mgl32.Vec3{0, p.Velocity.Y() * dt, 0})
	}

	probe := p.Position
	probe[1] -= groundProbe
	if p.collidesAt(probe) {
		p.IsOnGround = true
		p.Velocity[1] = 0
	}
}
