package world

import (
	"context"
	"fmt"
	"sync"

	"voxelstream/internal/profiling"
)

// generationQueue feeds background terrain generation and guarantees each
// chunk is generated at most once.
type generationQueue struct {
	mu     sync.Mutex
	queue  []ChunkPosition
	queued map[ChunkPosition]struct{}
	active map[ChunkPosition]struct{}

	// Per-chunk single-flight locks; only chunks currently generating have an entry.
	locksMu sync.Mutex
	locks   map[ChunkPosition]chan struct{}
}

func newGenerationQueue() generationQueue {
	return generationQueue{
		queued: make(map[ChunkPosition]struct{}),
		active: make(map[ChunkPosition]struct{}),
		locks:  make(map[ChunkPosition]chan struct{}),
	}
}

func (g *generationQueue) lockFor(pos ChunkPosition) chan struct{} {
	g.locksMu.Lock()
	defer g.locksMu.Unlock()
	l, ok := g.locks[pos]
	if !ok {
		l = make(chan struct{}, 1)
		g.locks[pos] = l
	}
	return l
}

func (g *generationQueue) dropLock(pos ChunkPosition, l chan struct{}) {
	g.locksMu.Lock()
	defer g.locksMu.Unlock()
	if g.locks[pos] == l {
		delete(g.locks, pos)
	}
}

func (g *generationQueue) reset() {
	g.mu.Lock()
	g.queue = nil
	g.queued = make(map[ChunkPosition]struct{})
	g.active = make(map[ChunkPosition]struct{})
	g.mu.Unlock()

	g.locksMu.Lock()
	g.locks = make(map[ChunkPosition]chan struct{})
	g.locksMu.Unlock()
}

// EnsureGenerated returns the chunk at pos, running the terrain generator for
// it if no caller has done so yet. Concurrent callers for the same position
// wait for the one in flight instead of generating again.
func (w *World) EnsureGenerated(ctx context.Context, pos ChunkPosition) (*Chunk, error) {
	if !w.enter() {
		return nil, ErrDisposed
	}
	defer w.leave()
	ctx, cancel := w.scoped(ctx)
	defer cancel()
	return w.ensureGenerated(ctx, pos)
}

func (w *World) ensureGenerated(ctx context.Context, pos ChunkPosition) (*Chunk, error) {
	if !pos.InBounds() {
		return nil, fmt.Errorf("%w: %v", ErrOutOfBounds, pos)
	}
	chunk := w.chunks.getOrCreate(pos)
	if chunk.TerrainGenerated() {
		return chunk, nil
	}

	lock := w.generation.lockFor(pos)
	select {
	case lock <- struct{}{}:
	case <-ctx.Done():
		return chunk, ctx.Err()
	}
	err := w.generateLocked(chunk)
	<-lock

	if chunk.TerrainGenerated() {
		w.generation.dropLock(pos, lock)
	}
	return chunk, err
}

// generateLocked runs the generator while holding the chunk's single-flight lock.
func (w *World) generateLocked(chunk *Chunk) error {
	if chunk.TerrainGenerated() {
		return nil
	}
	defer profiling.Track("world.generateChunk")()

	chunk.setSuppressDirtyEvents(true)
	err := safeCall(func() error { return w.terrain.Generate(chunk) })
	chunk.setSuppressDirtyEvents(false)
	if err != nil {
		return fmt.Errorf("generating chunk %v: %w", chunk.Position(), err)
	}

	chunk.markGenerated()
	w.generatedCount.Add(1)
	if chunk.IsDirty() {
		w.onDirty(chunk)
	}
	return nil
}

// enqueueAround queues every in-bounds position around center that is not
// generated, queued or in flight. It returns the number of positions added.
func (w *World) enqueueAround(center ChunkPosition, radius int) int {
	positions := SpiralAround(center, radius)

	g := &w.generation
	g.mu.Lock()
	defer g.mu.Unlock()

	added := 0
	for _, pos := range positions {
		if !pos.InBounds() {
			continue
		}
		if c := w.chunks.get(pos); c != nil && c.TerrainGenerated() {
			continue
		}
		if _, ok := g.active[pos]; ok {
			continue
		}
		if _, ok := g.queued[pos]; ok {
			continue
		}
		g.queue = append(g.queue, pos)
		g.queued[pos] = struct{}{}
		added++
	}
	return added
}

// pumpGenerationQueue launches up to maxPerFrame generation tasks.
func (w *World) pumpGenerationQueue(maxPerFrame int) int {
	defer profiling.Track("world.pumpGenerationQueue")()

	g := &w.generation
	g.mu.Lock()
	defer g.mu.Unlock()

	launched := 0
	for launched < maxPerFrame && len(g.queue) > 0 {
		pos := g.queue[0]
		g.queue = g.queue[1:]
		delete(g.queued, pos)

		chunk := w.chunks.getOrCreate(pos)
		if chunk.TerrainGenerated() {
			continue
		}
		if _, ok := g.active[pos]; ok {
			continue
		}

		g.active[pos] = struct{}{}
		started := w.spawn(func(ctx context.Context) {
			defer w.finishGeneration(pos)
			if _, err := w.ensureGenerated(ctx, pos); err != nil {
				w.logTaskError("terrain generation failed", pos, err)
			}
		})
		if !started {
			delete(g.active, pos)
			break
		}
		launched++
	}
	return launched
}

func (w *World) finishGeneration(pos ChunkPosition) {
	w.generation.mu.Lock()
	delete(w.generation.active, pos)
	w.generation.mu.Unlock()
}
