package world

import (
	"math"
	"sync"

	"voxelstream/internal/profiling"
)

// chunkStreamer follows the player and keeps the ring around them queued for generation.
type chunkStreamer struct {
	mu         sync.Mutex
	lastCenter ChunkPosition
}

func (s *chunkStreamer) setCenter(center ChunkPosition) {
	s.mu.Lock()
	s.lastCenter = center
	s.mu.Unlock()
}

// moveTo records center and reports whether it differs from the previous one.
func (s *chunkStreamer) moveTo(center ChunkPosition) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if center == s.lastCenter {
		return false
	}
	s.lastCenter = center
	return true
}

// updateStreaming re-centres the wanted ring when the player crosses a chunk
// border. Resident chunks are never unloaded.
func (w *World) updateStreaming() {
	defer profiling.Track("world.updateStreaming")()

	pos := w.player.Position
	center := ChunkPositionFromWorld(int(math.Floor(float64(pos.X()))), int(math.Floor(float64(pos.Z()))))
	if !w.streamer.moveTo(center) {
		return
	}

	added := w.enqueueAround(center, w.opts.StreamRadius)
	if added > 0 {
		w.log.Debug("streaming ring moved", "center", center, "queued", added)
	}
}
