package player

import (
	"voxelstream/internal/physics"
)

// Target returns the solid block under the crosshair within reach, and the
// empty cell in front of it where a block would be placed.
func (p *Player) Target() physics.RaycastResult {
	return physics.Raycast(p.Eye(), p.Front(), physics.MinReachDistance, physics.MaxReachDistance, p.world)
}

// CanPlaceAt reports whether a block at (x, y, z) would leave the player free.
// Placing directly under the feet is allowed so the player can pillar up.
func (p *Player) CanPlaceAt(x, y, z int) bool {
	if float32(y)+1 <= p.Position.Y()+0.001 {
		return true
	}
	box := p.Box()
	return box.Max.X() <= float32(x) || box.Min.X() >= float32(x+1) ||
		box.Max.Y() <= float32(y) || box.Min.Y() >= float32(y+1) ||
		box.Max.Z() <= float32(z) || box.Min.Z() >= float32(z+1)
}
