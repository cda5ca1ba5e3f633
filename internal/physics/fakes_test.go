package physics

import "voxelstream/internal/block"

// blockMap is a sparse, fully loaded world.
type blockMap map[[3]int]block.Type

func (m blockMap) GetBlock(x, y, z int) (block.Type, bool) {
	return m[[3]int{x, y, z}], true
}

// unloaded reports every block as missing.
type unloaded struct{}

func (unloaded) GetBlock(int, int, int) (block.Type, bool) {
	return block.Stone, false
}

func wall(z int, t block.Type) blockMap {
	m := blockMap{}
	for x := range 16 {
		for y := range 16 {
			m[[3]int{x, y, z}] = t
		}
	}
	return m
}
