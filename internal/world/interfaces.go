package world

// TerrainGenerator fills a chunk's block storage deterministically from the
// world seed and the chunk position. Implementations must be safe for
// concurrent use on distinct chunks and may only write to the given chunk.
type TerrainGenerator interface {
	Generate(c *Chunk) error
}

// ChunkMeshGenerator converts a generated chunk into renderable geometry.
// It is invoked concurrently on independent chunks.
type ChunkMeshGenerator interface {
	Generate(c *Chunk) (Geometry, error)
}

// Geometry is an opaque renderable produced by a ChunkMeshGenerator.
type Geometry interface {
	VertexCount() int
}

// Scene receives published chunk geometry. It is only called from the
// goroutine that drives World.Update and World.Dispose.
type Scene interface {
	Add(g Geometry)
	Remove(g Geometry)
}

// ProgressFunc is called after each chunk of the initial generation pass.
type ProgressFunc func(done, total int)
