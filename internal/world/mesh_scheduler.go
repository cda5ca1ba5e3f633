package world

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"voxelstream/internal/profiling"
)

// meshConcurrency is the number of mesh builds allowed to run at once.
const meshConcurrency = 4

// meshResult is handed from a mesh task back to the goroutine that owns the scene.
type meshResult struct {
	chunk    *Chunk
	geometry Geometry
	err      error
}

// meshQueue tracks dirty chunks waiting for a mesh build. A position is in at
// most one of queued or pending at any time.
type meshQueue struct {
	mu      sync.Mutex
	queue   []*Chunk
	queued  map[ChunkPosition]struct{}
	pending map[ChunkPosition]struct{}

	sem      *semaphore.Weighted
	results  chan meshResult
	building atomic.Int32
}

func newMeshQueue(resultBuffer int) meshQueue {
	return meshQueue{
		queued:  make(map[ChunkPosition]struct{}),
		pending: make(map[ChunkPosition]struct{}),
		sem:     semaphore.NewWeighted(meshConcurrency),
		results: make(chan meshResult, resultBuffer),
	}
}

func (m *meshQueue) reset() {
	m.mu.Lock()
	m.queue = nil
	m.queued = make(map[ChunkPosition]struct{})
	m.pending = make(map[ChunkPosition]struct{})
	m.mu.Unlock()

	for {
		select {
		case <-m.results:
		default:
			return
		}
	}
}

func (m *meshQueue) clearPending(pos ChunkPosition) {
	m.mu.Lock()
	delete(m.pending, pos)
	m.mu.Unlock()
}

// onDirty queues a generated, dirty chunk for meshing unless it is already
// queued or being meshed.
func (w *World) onDirty(c *Chunk) {
	if w.ctx.Err() != nil {
		return
	}
	if !c.TerrainGenerated() || !c.IsDirty() {
		return
	}

	pos := c.Position()
	m := &w.meshes
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pending[pos]; ok {
		return
	}
	if _, ok := m.queued[pos]; ok {
		return
	}
	m.queued[pos] = struct{}{}
	m.queue = append(m.queue, c)
	if len(m.queue)%10 == 0 {
		w.log.Debug("dirty queue grew", "size", len(m.queue))
	}
}

// pumpDirtyChunks starts up to maxPerFrame mesh builds. It never blocks: if
// the dirty queue is busy the work is deferred to the next frame.
func (w *World) pumpDirtyChunks(maxPerFrame int) int {
	defer profiling.Track("world.pumpDirtyChunks")()

	m := &w.meshes
	if !m.mu.TryLock() {
		return 0
	}
	defer m.mu.Unlock()

	processed := 0
	for processed < maxPerFrame && len(m.queue) > 0 {
		chunk := m.queue[0]
		m.queue[0] = nil
		m.queue = m.queue[1:]
		pos := chunk.Position()
		delete(m.queued, pos)

		if _, busy := m.pending[pos]; busy || !chunk.IsDirty() {
			w.log.Debug("skipping mesh", "chunk", pos, "pending", busy)
			continue
		}

		m.pending[pos] = struct{}{}
		started := w.spawn(func(ctx context.Context) {
			w.buildMesh(ctx, chunk)
		})
		if !started {
			delete(m.pending, pos)
			break
		}
		processed++
	}

	if processed > 0 {
		w.log.Debug("mesh builds started", "count", processed, "queued", len(m.queue), "pending", len(m.pending))
	}
	return processed
}

// buildMesh runs on a task goroutine and hands its result to the owning goroutine.
func (w *World) buildMesh(ctx context.Context, chunk *Chunk) {
	m := &w.meshes
	if err := m.sem.Acquire(ctx, 1); err != nil {
		return
	}

	m.building.Add(1)
	chunk.beginMesh()
	var geometry Geometry
	err := safeCall(func() error {
		var err error
		geometry, err = w.mesher.Generate(chunk)
		return err
	})
	m.building.Add(-1)
	m.sem.Release(1)

	select {
	case m.results <- meshResult{chunk: chunk, geometry: geometry, err: err}:
	case <-ctx.Done():
	}
}

// applyMeshResults publishes every finished mesh. It must run on the goroutine
// that owns the scene.
func (w *World) applyMeshResults() int {
	defer profiling.Track("world.applyMeshResults")()

	applied := 0
	for {
		select {
		case res := <-w.meshes.results:
			w.applyMeshResult(res)
			applied++
		default:
			return applied
		}
	}
}

func (w *World) applyMeshResult(res meshResult) {
	chunk := res.chunk
	pos := chunk.Position()

	if res.err != nil {
		chunk.restoreDirty()
		w.meshes.clearPending(pos)
		w.logTaskError("mesh build failed", pos, res.err)
		return
	}

	old := chunk.swapMesh(res.geometry)
	if old != nil {
		w.scene.Remove(old)
	}
	if res.geometry != nil {
		w.scene.Add(res.geometry)
	}
	w.meshedCount.Add(1)
	w.meshes.clearPending(pos)

	if chunk.IsDirty() {
		w.onDirty(chunk)
	}
}
