package world

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"voxelstream/internal/block"
	"voxelstream/internal/player"
	"voxelstream/internal/profiling"
)

// yieldEvery is how many chunks the initial generation pass processes between
// cooperative yields.
const yieldEvery = 2

// Options tune the streaming and meshing pipeline.
type Options struct {
	Seed                  int64
	InitialRadius         int
	StreamRadius          int
	MaxGenerationPerFrame int
	MaxMeshesPerFrame     int
	MeshResultBuffer      int
}

// DefaultOptions returns the stock pipeline settings.
func DefaultOptions() Options {
	return Options{
		Seed:                  12345,
		InitialRadius:         4,
		StreamRadius:          6,
		MaxGenerationPerFrame: 8,
		MaxMeshesPerFrame:     32,
		MeshResultBuffer:      64,
	}
}

// withDefaults fills unset fields. Negative radii select the defaults; a zero
// radius is valid and means the single centre chunk, so callers wanting the
// stock radii should start from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.InitialRadius < 0 {
		o.InitialRadius = d.InitialRadius
	}
	if o.StreamRadius < 0 {
		o.StreamRadius = d.StreamRadius
	}
	if o.MaxGenerationPerFrame <= 0 {
		o.MaxGenerationPerFrame = d.MaxGenerationPerFrame
	}
	if o.MaxMeshesPerFrame <= 0 {
		o.MaxMeshesPerFrame = d.MaxMeshesPerFrame
	}
	if o.MeshResultBuffer <= 0 {
		o.MeshResultBuffer = d.MeshResultBuffer
	}
	return o
}

// Stats is a point-in-time view of the pipeline, for HUDs and logs.
type Stats struct {
	Chunks           int
	Generated        int64
	MeshesPublished  int64
	GenerationQueued int
	GenerationActive int
	MeshQueued       int
	MeshPending      int
	MeshBuilding     int
}

// World owns the chunk table, the player and the generation and meshing
// schedulers. Update and Dispose must be called from the goroutine that owns
// the Scene; every other exported method is safe for concurrent use.
type World struct {
	opts    Options
	log     *slog.Logger
	terrain TerrainGenerator
	mesher  ChunkMeshGenerator
	scene   Scene
	player  *player.Player

	chunks     *chunkStore
	generation generationQueue
	meshes     meshQueue
	streamer   chunkStreamer

	// Task scope: cancelling ctx cancels every task; tasks counts live ones.
	ctx    context.Context
	cancel context.CancelFunc
	lifeMu sync.Mutex
	closed bool
	tasks  sync.WaitGroup

	disposeOnce sync.Once

	streamingInitialized atomic.Bool
	isGenerated          atomic.Bool
	isGeneratingTerrain  atomic.Bool

	generatedCount atomic.Int64
	meshedCount    atomic.Int64
}

// New creates a world. The generator and mesher are injected so each target
// can supply its own implementation.
func New(opts Options, terrain TerrainGenerator, mesher ChunkMeshGenerator, scene Scene, logger *slog.Logger) *World {
	opts = opts.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &World{
		opts:       opts,
		log:        logger.With("component", "world"),
		terrain:    terrain,
		mesher:     mesher,
		scene:      scene,
		generation: newGenerationQueue(),
		meshes:     newMeshQueue(opts.MeshResultBuffer),
		ctx:        ctx,
		cancel:     cancel,
	}
	w.chunks = newChunkStore(w.newChunk)
	w.player = player.New(w, player.Bounds{
		Min: mgl32.Vec3{MinX, MinY, MinZ},
		Max: mgl32.Vec3{MaxX, MaxY, MaxZ},
	})
	return w
}

func (w *World) newChunk(pos ChunkPosition) *Chunk {
	c := NewChunk(pos)
	c.onDirty = w.onDirty
	return c
}

// enter registers a task with the World's scope. It fails once Dispose has started.
func (w *World) enter() bool {
	w.lifeMu.Lock()
	defer w.lifeMu.Unlock()
	if w.closed {
		return false
	}
	w.tasks.Add(1)
	return true
}

func (w *World) leave() {
	w.tasks.Done()
}

// spawn launches fn as a fire-and-forget task in the World's scope. Failures
// inside fn are contained; cancellation arrives through ctx.
func (w *World) spawn(fn func(ctx context.Context)) bool {
	if !w.enter() {
		return false
	}
	go func() {
		defer w.leave()
		defer func() {
			if r := recover(); r != nil {
				w.log.Error("task panicked", "panic", r)
			}
		}()
		fn(w.ctx)
	}()
	return true
}

// scoped derives a context from ctx that is also cancelled by Dispose.
func (w *World) scoped(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(w.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (w *World) logTaskError(msg string, pos ChunkPosition, err error) {
	if isCancellation(err) {
		w.log.Debug(msg+": cancelled", "chunk", pos)
		return
	}
	w.log.Error(msg, "chunk", pos, "error", err)
}

// Seed returns the seed the world was created with.
func (w *World) Seed() int64 {
	return w.opts.Seed
}

// Options returns the effective options.
func (w *World) Options() Options {
	return w.opts
}

// Player returns the world's player.
func (w *World) Player() *player.Player {
	return w.player
}

// Chunk returns the chunk at pos, or nil if it has never been referenced.
func (w *World) Chunk(pos ChunkPosition) *Chunk {
	return w.chunks.get(pos)
}

// Chunks returns every chunk currently in the table.
func (w *World) Chunks() []*Chunk {
	return w.chunks.all()
}

// ChunkCount returns the number of chunks in the table.
func (w *World) ChunkCount() int {
	return w.chunks.count()
}

// IsGenerated reports whether the initial generation pass has completed.
func (w *World) IsGenerated() bool {
	return w.isGenerated.Load()
}

// IsGeneratingTerrain reports whether the initial generation pass is running.
func (w *World) IsGeneratingTerrain() bool {
	return w.isGeneratingTerrain.Load()
}

// GenerateTerrain generates the square of InitialRadius chunks around the
// origin, reporting progress after each chunk, then starts streaming. It
// returns early if ctx is cancelled or the world is disposed.
func (w *World) GenerateTerrain(ctx context.Context, onProgress ProgressFunc) error {
	if !w.enter() {
		return ErrDisposed
	}
	defer w.leave()
	defer profiling.Track("world.GenerateTerrain")()

	ctx, cancel := w.scoped(ctx)
	defer cancel()

	w.isGeneratingTerrain.Store(true)
	center := ChunkPosition{}
	var positions []ChunkPosition
	for _, pos := range SpiralAround(center, w.opts.InitialRadius) {
		if pos.InBounds() {
			positions = append(positions, pos)
		}
	}
	total := len(positions)
	w.log.Info("generating terrain", "chunks", total, "seed", w.opts.Seed)

	for i, pos := range positions {
		if err := ctx.Err(); err != nil {
			w.isGeneratingTerrain.Store(false)
			return fmt.Errorf("generating terrain: %w", err)
		}
		if _, err := w.ensureGenerated(ctx, pos); err != nil {
			if ctx.Err() != nil {
				w.isGeneratingTerrain.Store(false)
				return fmt.Errorf("generating terrain: %w", ctx.Err())
			}
			w.logTaskError("terrain generation failed", pos, err)
		}

		processed := i + 1
		if onProgress != nil {
			onProgress(processed, total)
		}
		if processed%yieldEvery == 0 {
			runtime.Gosched()
		}
	}

	w.streamer.setCenter(center)
	queued := w.enqueueAround(center, w.opts.StreamRadius)
	w.streamingInitialized.Store(true)
	w.isGenerated.Store(true)
	w.isGeneratingTerrain.Store(false)

	w.log.Info("terrain generation complete", "chunks", total, "streamQueued", queued, "meshQueued", w.Stats().MeshQueued)
	return nil
}

// Update runs one frame of the pipeline: streaming and generation admission,
// mesh publishing and admission, then player physics once the initial
// terrain is ready.
func (w *World) Update(deltaTime float32) {
	if w.ctx.Err() != nil {
		return
	}
	defer profiling.Track("world.Update")()

	if w.streamingInitialized.Load() {
		w.updateStreaming()
		w.pumpGenerationQueue(w.opts.MaxGenerationPerFrame)
	}

	// Meshing runs even while terrain is still generating so progress is visible.
	w.applyMeshResults()
	w.pumpDirtyChunks(w.opts.MaxMeshesPerFrame)

	if w.isGenerated.Load() && !w.isGeneratingTerrain.Load() {
		w.player.Update(deltaTime)
	}
}

// loadedChunk returns the generated chunk containing world column (x, z).
func (w *World) loadedChunk(x, z int) (*Chunk, ChunkPosition) {
	pos := ChunkPositionFromWorld(x, z)
	c := w.chunks.get(pos)
	if c == nil || !c.TerrainGenerated() {
		return nil, pos
	}
	return c, pos
}

// GetBlock returns the block at world coordinates. The second result is false
// outside the world or when the chunk is not loaded yet.
func (w *World) GetBlock(x, y, z int) (block.Type, bool) {
	if !InWorld(x, y, z) {
		return block.Air, false
	}
	c, pos := w.loadedChunk(x, z)
	if c == nil {
		return block.Air, false
	}
	lx, lz := pos.Local(x, z)
	return c.Block(lx, y, lz), true
}

// SetBlock writes a block at world coordinates. It returns false outside the
// world or when the chunk is not loaded yet.
func (w *World) SetBlock(x, y, z int, t block.Type) bool {
	if !InWorld(x, y, z) {
		return false
	}
	c, pos := w.loadedChunk(x, z)
	if c == nil {
		return false
	}
	lx, lz := pos.Local(x, z)
	if c.SetBlock(lx, y, lz, t) {
		c.markModified()
		w.dirtyNeighbors(pos, lx, lz)
	}
	return true
}

// dirtyNeighbors remeshes the loaded chunks across the border from an edit at
// local column (lx, lz), whose faces toward the edited block may have changed.
func (w *World) dirtyNeighbors(pos ChunkPosition, lx, lz int) {
	var adjacent []ChunkPosition
	switch lx {
	case 0:
		adjacent = append(adjacent, ChunkPosition{X: pos.X - 1, Z: pos.Z})
	case ChunkSizeX - 1:
		adjacent = append(adjacent, ChunkPosition{X: pos.X + 1, Z: pos.Z})
	}
	switch lz {
	case 0:
		adjacent = append(adjacent, ChunkPosition{X: pos.X, Z: pos.Z - 1})
	case ChunkSizeZ - 1:
		adjacent = append(adjacent, ChunkPosition{X: pos.X, Z: pos.Z + 1})
	}
	for _, p := range adjacent {
		if n := w.chunks.get(p); n != nil && n.TerrainGenerated() {
			n.markDirty()
		}
	}
}

// ModifiedChunks returns the loaded chunks edited since generation.
func (w *World) ModifiedChunks() []*Chunk {
	var out []*Chunk
	for _, c := range w.chunks.all() {
		if c.TerrainGenerated() && c.IsModified() {
			out = append(out, c)
		}
	}
	return out
}

// RestoreChunk generates the chunk at pos if needed and then replaces its
// blocks with data from MarshalBlocks. The chunk is remeshed and stays
// marked as modified.
func (w *World) RestoreChunk(ctx context.Context, pos ChunkPosition, data []byte) error {
	if !w.enter() {
		return ErrDisposed
	}
	defer w.leave()
	ctx, cancel := w.scoped(ctx)
	defer cancel()

	c, err := w.ensureGenerated(ctx, pos)
	if err != nil {
		return fmt.Errorf("restoring chunk %v: %w", pos, err)
	}
	if err := c.UnmarshalBlocks(data); err != nil {
		return fmt.Errorf("restoring chunk %v: %w", pos, err)
	}
	c.markModified()
	return nil
}

// SurfaceHeightAt returns the Y of the first non-solid cell above the highest
// solid block in column (x, z).
func (w *World) SurfaceHeightAt(x, z int) (int, bool) {
	if !InWorld(x, MinY, z) {
		return 0, false
	}
	c, pos := w.loadedChunk(x, z)
	if c == nil {
		return 0, false
	}
	lx, lz := pos.Local(x, z)
	for y := MaxY; y >= MinY; y-- {
		if c.Block(lx, y, lz).IsSolid() {
			return y + 1, true
		}
	}
	return MinY, true
}

// TopBlockAt returns the highest non-air block in column (x, z) and its Y.
// An all-air column reports air at MinY.
func (w *World) TopBlockAt(x, z int) (block.Type, int, bool) {
	if !InWorld(x, MinY, z) {
		return block.Air, 0, false
	}
	c, pos := w.loadedChunk(x, z)
	if c == nil {
		return block.Air, 0, false
	}
	lx, lz := pos.Local(x, z)
	for y := MaxY; y >= MinY; y-- {
		if t := c.Block(lx, y, lz); t != block.Air {
			return t, y, true
		}
	}
	return block.Air, MinY, true
}

// Stats returns a snapshot of queue sizes and counters.
func (w *World) Stats() Stats {
	s := Stats{
		Chunks:          w.chunks.count(),
		Generated:       w.generatedCount.Load(),
		MeshesPublished: w.meshedCount.Load(),
		MeshBuilding:    int(w.meshes.building.Load()),
	}

	w.generation.mu.Lock()
	s.GenerationQueued = len(w.generation.queue)
	s.GenerationActive = len(w.generation.active)
	w.generation.mu.Unlock()

	w.meshes.mu.Lock()
	s.MeshQueued = len(w.meshes.queue)
	s.MeshPending = len(w.meshes.pending)
	w.meshes.mu.Unlock()
	return s
}

// Dispose cancels every outstanding task, waits for them to stop, detaches
// all meshes from the scene and clears every table. It is idempotent.
func (w *World) Dispose() {
	w.disposeOnce.Do(func() {
		w.lifeMu.Lock()
		w.closed = true
		w.lifeMu.Unlock()

		w.cancel()
		w.tasks.Wait()

		// Results that raced the cancellation are dropped unpublished.
		w.meshes.reset()
		w.generation.reset()

		for _, c := range w.chunks.all() {
			if m := c.swapMesh(nil); m != nil {
				w.scene.Remove(m)
			}
		}
		w.chunks.clear()

		w.streamingInitialized.Store(false)
		w.isGenerated.Store(false)
		w.isGeneratingTerrain.Store(false)
		w.log.Info("world disposed")
	})
}
