package world

import (
	"fmt"
	"sync"

	"voxelstream/internal/block"
)

// Blocks is a dense copy of a chunk's block storage, indexed by blockIndex.
type Blocks [ChunkVolume]block.Type

// At returns the block at local coordinates, or air outside the chunk.
func (b *Blocks) At(x, y, z int) block.Type {
	if !inChunk(x, y, z) {
		return block.Air
	}
	return b[blockIndex(x, y, z)]
}

// Chunk is a 16x256x16 column of blocks. Once inserted into a World it is
// owned by the World's chunk table.
type Chunk struct {
	pos ChunkPosition

	mu                  sync.RWMutex
	blocks              Blocks
	nonAir              int
	terrainGenerated    bool
	dirty               bool
	modified            bool
	suppressDirtyEvents bool
	mesh                Geometry

	// onDirty is fired after a write that left the chunk dirty, outside the lock.
	onDirty func(*Chunk)
}

// NewChunk creates an empty, ungenerated chunk that is not attached to a World.
func NewChunk(pos ChunkPosition) *Chunk {
	return &Chunk{pos: pos}
}

// blockIndex converts local coordinates into a flat index, Y-major.
func blockIndex(x, y, z int) int {
	return y*ChunkSizeX*ChunkSizeZ + z*ChunkSizeX + x
}

func inChunk(x, y, z int) bool {
	return x >= 0 && x < ChunkSizeX && y >= 0 && y < ChunkSizeY && z >= 0 && z < ChunkSizeZ
}

// Position returns the chunk's grid position.
func (c *Chunk) Position() ChunkPosition {
	return c.pos
}

// Block returns the block type at the specified local coordinates
func (c *Chunk) Block(x, y, z int) block.Type {
	if !inChunk(x, y, z) {
		return block.Air
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.blocks[blockIndex(x, y, z)]
}

// SetBlock sets the block type at the specified local coordinates and reports
// whether the stored value changed. A change marks the chunk dirty.
func (c *Chunk) SetBlock(x, y, z int, t block.Type) bool {
	if !inChunk(x, y, z) {
		return false
	}

	c.mu.Lock()
	idx := blockIndex(x, y, z)
	old := c.blocks[idx]
	if old == t {
		c.mu.Unlock()
		return false
	}
	c.blocks[idx] = t
	switch {
	case old == block.Air:
		c.nonAir++
	case t == block.Air:
		c.nonAir--
	}
	c.dirty = true
	notify := !c.suppressDirtyEvents && c.onDirty != nil
	c.mu.Unlock()

	if notify {
		c.onDirty(c)
	}
	return true
}

// Snapshot copies the current block storage.
func (c *Chunk) Snapshot() *Blocks {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := c.blocks
	return &out
}

// IsEmpty reports whether the chunk holds only air.
func (c *Chunk) IsEmpty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nonAir == 0
}

// IsDirty returns whether the chunk has changed since its last mesh build started.
func (c *Chunk) IsDirty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dirty
}

// TerrainGenerated reports whether the terrain generator has completed for this chunk.
func (c *Chunk) TerrainGenerated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.terrainGenerated
}

// IsModified reports whether blocks were edited after terrain generation.
// Only modified chunks are persisted.
func (c *Chunk) IsModified() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.modified
}

func (c *Chunk) markModified() {
	c.mu.Lock()
	c.modified = true
	c.mu.Unlock()
}

// Mesh returns the published geometry, or nil before the first publish.
func (c *Chunk) Mesh() Geometry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mesh
}

// MarshalBlocks encodes the block storage as one byte per block.
func (c *Chunk) MarshalBlocks() []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]byte, ChunkVolume)
	for i, b := range c.blocks {
		out[i] = byte(b)
	}
	return out
}

// UnmarshalBlocks replaces the block storage with data produced by
// MarshalBlocks. The chunk is marked dirty and a single dirty event fires.
func (c *Chunk) UnmarshalBlocks(data []byte) error {
	if len(data) != ChunkVolume {
		return fmt.Errorf("chunk %v: expected %d bytes, got %d", c.pos, ChunkVolume, len(data))
	}
	var decoded Blocks
	nonAir := 0
	for i, raw := range data {
		t, err := block.FromID(raw)
		if err != nil {
			return fmt.Errorf("chunk %v: %w", c.pos, err)
		}
		decoded[i] = t
		if t != block.Air {
			nonAir++
		}
	}

	c.mu.Lock()
	c.blocks = decoded
	c.nonAir = nonAir
	c.dirty = true
	notify := !c.suppressDirtyEvents && c.onDirty != nil
	c.mu.Unlock()

	if notify {
		c.onDirty(c)
	}
	return nil
}

func (c *Chunk) setSuppressDirtyEvents(v bool) {
	c.mu.Lock()
	c.suppressDirtyEvents = v
	c.mu.Unlock()
}

func (c *Chunk) markGenerated() {
	c.mu.Lock()
	c.terrainGenerated = true
	c.mu.Unlock()
}

// beginMesh clears the dirty flag before the mesher reads the chunk.
// Writes landing after this call dirty the chunk again.
func (c *Chunk) beginMesh() {
	c.mu.Lock()
	c.dirty = false
	c.mu.Unlock()
}

// markDirty flags the chunk for a remesh and fires the dirty event.
func (c *Chunk) markDirty() {
	c.mu.Lock()
	c.dirty = true
	notify := !c.suppressDirtyEvents && c.onDirty != nil
	c.mu.Unlock()

	if notify {
		c.onDirty(c)
	}
}

// restoreDirty marks the chunk dirty without firing an event.
func (c *Chunk) restoreDirty() {
	c.mu.Lock()
	c.dirty = true
	c.mu.Unlock()
}

// swapMesh installs g and returns the previously published geometry.
func (c *Chunk) swapMesh(g Geometry) Geometry {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.mesh
	c.mesh = g
	return old
}
