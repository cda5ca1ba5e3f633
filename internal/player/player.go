package player

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxelstream/internal/physics"
)

const (
	PlayerWidth     = 0.6
	PlayerHeight    = 1.8
	PlayerDepth     = 0.6
	PlayerEyeHeight = 1.62
)

// Bounds limits where the player's feet may go.
type Bounds struct {
	Min, Max mgl32.Vec3
}

// Player is the single controllable entity. It reads blocks for collision but
// never writes them.
type Player struct {
	Position mgl32.Vec3
	// Rotation holds pitch (X) and yaw (Y) in radians.
	Rotation mgl32.Vec2
	Velocity mgl32.Vec3

	Width  float32
	Height float32
	Depth  float32

	IsFlying   bool
	IsOnGround bool

	world  physics.BlockSource
	bounds Bounds
}

// New creates a player at (0, 100, 0).
func New(world physics.BlockSource, bounds Bounds) *Player {
	return &Player{
		Position: mgl32.Vec3{0, 100, 0},
		Width:    PlayerWidth,
		Height:   PlayerHeight,
		Depth:    PlayerDepth,
		world:    world,
		bounds:   bounds,
	}
}

// Box returns the player's current bounding box.
func (p *Player) Box() physics.AABB {
	return physics.BoxAt(p.Position, p.Width, p.Height, p.Depth)
}

func (p *Player) collidesAt(pos mgl32.Vec3) bool {
	return physics.Collides(physics.BoxAt(pos, p.Width, p.Height, p.Depth), p.world)
}

// ToggleFlight switches flight mode; entering flight cancels vertical motion.
func (p *Player) ToggleFlight() {
	p.IsFlying = !p.IsFlying
	if p.IsFlying {
		p.Velocity[1] = 0
		p.IsOnGround = false
	}
}

// Jump only works when standing on the ground and not flying.
func (p *Player) Jump() {
	if p.IsOnGround && !p.IsFlying {
		p.Velocity[1] = JumpVelocity
		p.IsOnGround = false
	}
}
