package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"voxelstream/internal/block"
	"voxelstream/internal/config"
	"voxelstream/internal/meshing"
	"voxelstream/internal/profiling"
	"voxelstream/internal/storage"
	"voxelstream/internal/terrain"
	"voxelstream/internal/world"
)

// slowFrame is the frame time above which the top profiling entries are logged.
const slowFrame = 16 * time.Millisecond

// Session owns one world from terrain generation to disposal.
type Session struct {
	cfg   config.Config
	World *world.World

	terrain *terrain.Generator
	mesher  *meshing.Mesher
	store   *storage.Store
	saveID  uuid.UUID
	saved   *storage.WorldState
	started time.Time

	log *slog.Logger
}

// NewSession builds the world for cfg. When store is non-nil and holds a save
// named cfg.Save.Name, the world is rebuilt from that save's seed and Start
// restores its chunks and player.
func NewSession(cfg config.Config, scene world.Scene, store *storage.Store, logger *slog.Logger) (*Session, error) {
	s := &Session{
		cfg:   cfg,
		store: store,
		log:   logger.With("component", "session"),
	}

	opts := cfg.WorldOptions()
	if store != nil {
		state, err := store.LoadByName(cfg.Save.Name)
		switch {
		case err == nil:
			s.saved = state
			s.saveID = state.ID
			opts.Seed = state.Seed
			s.log.Info("resuming save", "id", state.ID, "seed", state.Seed, "chunks", len(state.Chunks))
		case errors.Is(err, storage.ErrNotFound):
		default:
			return nil, fmt.Errorf("loading save %q: %w", cfg.Save.Name, err)
		}
	}

	s.terrain = terrain.NewGenerator(opts.Seed)
	s.mesher = meshing.NewMesher()
	s.World = world.New(opts, s.terrain, s.mesher, scene, logger)
	s.mesher.SetNeighbors(s.World)
	return s, nil
}

// Start prepares the world and places the player. It returns early with an
// error when ctx is cancelled.
func (s *Session) Start(ctx context.Context, onProgress world.ProgressFunc) error {
	if err := s.Prepare(ctx, onProgress); err != nil {
		return err
	}
	s.Enter()
	return nil
}

// Prepare generates the initial area and applies any saved chunks. It may run
// off the goroutine that owns the world while that goroutine keeps updating.
func (s *Session) Prepare(ctx context.Context, onProgress world.ProgressFunc) error {
	s.started = time.Now()
	if err := s.World.GenerateTerrain(ctx, onProgress); err != nil {
		return err
	}
	if s.saved == nil {
		return nil
	}
	for pos, data := range s.saved.Chunks {
		if err := s.World.RestoreChunk(ctx, pos, data); err != nil {
			if ctx.Err() != nil {
				return err
			}
			s.log.Warn("skipping saved chunk", "chunk", pos, "error", err)
		}
	}
	return nil
}

// Enter places the player at the saved position, or on the surface at the
// origin for a new world. Call it from the goroutine that owns the world once
// Prepare has returned.
func (s *Session) Enter() {
	if s.saved != nil {
		p := s.World.Player()
		p.Position = s.saved.Player.Position
		p.Rotation = s.saved.Player.Rotation
		p.IsFlying = s.saved.Player.IsFlying
		p.Velocity = mgl32.Vec3{}
		s.saved = nil
	} else {
		s.spawn()
	}

	stats := s.World.Stats()
	s.log.Info("world ready",
		"seed", s.World.Seed(),
		"chunks", stats.Generated,
		"elapsed", time.Since(s.started).Round(time.Millisecond))
}

// spawn stands the player on the surface at the world origin.
func (s *Session) spawn() {
	p := s.World.Player()
	y, ok := s.World.SurfaceHeightAt(0, 0)
	if !ok {
		y = s.terrain.HeightAt(0, 0) + 1
	}
	p.Position = mgl32.Vec3{0.5, float32(y), 0.5}
	p.Velocity = mgl32.Vec3{}
}

// Tick advances the world by dt seconds.
func (s *Session) Tick(dt float32) {
	s.World.Update(dt)
}

// EndFrame logs the heaviest tracked sections when the frame started at
// start ran long.
func (s *Session) EndFrame(start time.Time) {
	if d := time.Since(start); d > slowFrame {
		s.log.Debug("slow frame", "duration", d, "top", profiling.TopN(5))
	}
}

// Walk applies movement input. It is ignored until the initial terrain is ready.
func (s *Session) Walk(forward, strafe, rise, dt float32) {
	if !s.World.IsGenerated() {
		return
	}
	s.World.Player().Walk(forward, strafe, rise, dt)
}

// BreakTarget removes the block under the crosshair and reports whether one was removed.
func (s *Session) BreakTarget() bool {
	r := s.World.Player().Target()
	if !r.Hit {
		return false
	}
	x, y, z := r.HitPosition[0], r.HitPosition[1], r.HitPosition[2]
	return s.World.SetBlock(x, y, z, block.Air)
}

// PlaceTarget puts t in the empty cell in front of the targeted block.
func (s *Session) PlaceTarget(t block.Type) bool {
	p := s.World.Player()
	r := p.Target()
	if !r.Hit {
		return false
	}
	x, y, z := r.AdjacentPosition[0], r.AdjacentPosition[1], r.AdjacentPosition[2]
	if cur, ok := s.World.GetBlock(x, y, z); !ok || cur.IsSolid() || !p.CanPlaceAt(x, y, z) {
		return false
	}
	return s.World.SetBlock(x, y, z, t)
}

// Save writes the player and every edited chunk. It is a no-op without a store.
func (s *Session) Save() error {
	if s.store == nil {
		return nil
	}
	defer profiling.Track("session.Save")()

	p := s.World.Player()
	state := &storage.WorldState{
		ID:   s.saveID,
		Name: s.cfg.Save.Name,
		Seed: s.World.Seed(),
		Player: storage.PlayerState{
			Position: p.Position,
			Rotation: p.Rotation,
			IsFlying: p.IsFlying,
		},
		Chunks: make(map[world.ChunkPosition][]byte),
	}
	for _, c := range s.World.ModifiedChunks() {
		state.Chunks[c.Position()] = c.MarshalBlocks()
	}
	if err := s.store.Save(state); err != nil {
		return err
	}
	s.saveID = state.ID
	return nil
}

// Close disposes the world. The store belongs to the caller.
func (s *Session) Close() {
	s.World.Dispose()
}
