package world

import (
	"sync"
)

// chunkStore is the World's chunk table.
type chunkStore struct {
	chunks map[ChunkPosition]*Chunk
	mu     sync.RWMutex

	// newChunk wires a freshly created chunk to its owner.
	newChunk func(ChunkPosition) *Chunk
}

func newChunkStore(newChunk func(ChunkPosition) *Chunk) *chunkStore {
	return &chunkStore{
		chunks:   make(map[ChunkPosition]*Chunk),
		newChunk: newChunk,
	}
}

// get returns the chunk at pos, or nil when it has never been referenced.
func (cs *chunkStore) get(pos ChunkPosition) *Chunk {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.chunks[pos]
}

// getOrCreate returns the chunk at pos, inserting an empty one if absent.
func (cs *chunkStore) getOrCreate(pos ChunkPosition) *Chunk {
	cs.mu.RLock()
	chunk, exists := cs.chunks[pos]
	cs.mu.RUnlock()
	if exists {
		return chunk
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	// Double-check locking: another goroutine might have created it while we were waiting for the lock
	if existing, ok := cs.chunks[pos]; ok {
		return existing
	}
	chunk = cs.newChunk(pos)
	cs.chunks[pos] = chunk
	return chunk
}

// all returns a snapshot of every chunk in the table.
func (cs *chunkStore) all() []*Chunk {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	out := make([]*Chunk, 0, len(cs.chunks))
	for _, c := range cs.chunks {
		out = append(out, c)
	}
	return out
}

func (cs *chunkStore) count() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.chunks)
}

func (cs *chunkStore) clear() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.chunks = make(map[ChunkPosition]*Chunk)
}
