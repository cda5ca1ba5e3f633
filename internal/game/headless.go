package game

import (
	"context"
	"time"

	"voxelstream/internal/profiling"
	"voxelstream/internal/world"
)

// FixedStep is the simulated frame time used without a window.
const FixedStep = float32(1.0 / 60)

// RunHeadless advances the session for frames fixed steps. With walk set the
// player walks forward, which drives chunk streaming.
func RunHeadless(ctx context.Context, s *Session, frames int, walk bool) error {
	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		profiling.ResetFrame()
		start := time.Now()
		if walk {
			s.Walk(1, 0, 0, FixedStep)
		}
		s.Tick(FixedStep)
		s.EndFrame(start)
	}
	return nil
}

// Drain keeps updating until no generation or mesh work is outstanding.
func Drain(ctx context.Context, s *Session) error {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for !idle(s.World.Stats()) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		s.Tick(FixedStep)
	}
	return nil
}

func idle(st world.Stats) bool {
	return st.GenerationQueued == 0 && st.GenerationActive == 0 &&
		st.MeshQueued == 0 && st.MeshPending == 0 && st.MeshBuilding == 0
}
