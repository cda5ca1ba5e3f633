package world

import (
	"sync"
	"testing"

	"github.com/pixil98/go-testutil"

	"voxelstream/internal/block"
)

func TestChunkSetBlock(t *testing.T) {
	c := NewChunk(ChunkPosition{X: 1, Z: 2})
	testutil.AssertEqual(t, "empty", c.IsEmpty(), true)
	testutil.AssertEqual(t, "dirty", c.IsDirty(), false)

	testutil.AssertEqual(t, "changed", c.SetBlock(1, 2, 3, block.Stone), true)
	testutil.AssertEqual(t, "block", c.Block(1, 2, 3), block.Stone)
	testutil.AssertEqual(t, "dirty", c.IsDirty(), true)
	testutil.AssertEqual(t, "empty", c.IsEmpty(), false)

	testutil.AssertEqual(t, "same value", c.SetBlock(1, 2, 3, block.Stone), false)
	testutil.AssertEqual(t, "outside", c.SetBlock(16, 0, 0, block.Stone), false)
	testutil.AssertEqual(t, "outside read", c.Block(-1, 0, 0), block.Air)

	c.SetBlock(1, 2, 3, block.Air)
	testutil.AssertEqual(t, "empty after clear", c.IsEmpty(), true)
}

func TestChunkDirtyEvents(t *testing.T) {
	c := NewChunk(ChunkPosition{})
	var events int
	c.onDirty = func(got *Chunk) {
		// Fired outside the lock: reading back must not deadlock.
		_ = got.IsDirty()
		events++
	}

	c.SetBlock(0, 0, 0, block.Dirt)
	c.SetBlock(0, 0, 0, block.Dirt)
	testutil.AssertEqual(t, "events", events, 1)

	c.setSuppressDirtyEvents(true)
	c.SetBlock(1, 0, 0, block.Dirt)
	c.setSuppressDirtyEvents(false)
	testutil.AssertEqual(t, "suppressed events", events, 1)
	testutil.AssertEqual(t, "dirty while suppressed", c.IsDirty(), true)

	c.beginMesh()
	testutil.AssertEqual(t, "dirty after begin", c.IsDirty(), false)
	c.restoreDirty()
	testutil.AssertEqual(t, "dirty after restore", c.IsDirty(), true)
	testutil.AssertEqual(t, "restore is silent", events, 1)
}

func TestChunkSnapshotIsCopy(t *testing.T) {
	c := NewChunk(ChunkPosition{})
	c.SetBlock(4, 5, 6, block.Wood)

	snap := c.Snapshot()
	c.SetBlock(4, 5, 6, block.Leaves)

	testutil.AssertEqual(t, "snapshot", snap.At(4, 5, 6), block.Wood)
	testutil.AssertEqual(t, "live", c.Block(4, 5, 6), block.Leaves)
	testutil.AssertEqual(t, "snapshot outside", snap.At(0, 256, 0), block.Air)
}

func TestChunkMarshalBlocks(t *testing.T) {
	src := NewChunk(ChunkPosition{X: -3, Z: 7})
	src.SetBlock(0, 0, 0, block.Stone)
	src.SetBlock(15, 255, 15, block.Water)
	src.SetBlock(7, 64, 9, block.Sand)

	dst := NewChunk(ChunkPosition{X: -3, Z: 7})
	var events int
	dst.onDirty = func(*Chunk) { events++ }
	if err := dst.UnmarshalBlocks(src.MarshalBlocks()); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	testutil.AssertEqual(t, "snapshot", *dst.Snapshot(), *src.Snapshot())
	testutil.AssertEqual(t, "events", events, 1)
	testutil.AssertEqual(t, "dirty", dst.IsDirty(), true)
	testutil.AssertEqual(t, "empty", dst.IsEmpty(), false)
}

func TestChunkUnmarshalBlocksErrors(t *testing.T) {
	tests := map[string]struct {
		data   []byte
		expErr string
	}{
		"short": {
			data:   make([]byte, 10),
			expErr: "expected 65536 bytes",
		},
		"unknown id": {
			data: func() []byte {
				b := make([]byte, ChunkVolume)
				b[100] = 200
				return b
			}(),
			expErr: "unknown block id 200",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c := NewChunk(ChunkPosition{})
			err := c.UnmarshalBlocks(tt.data)
			testutil.AssertErrorContains(t, err, tt.expErr)
			testutil.AssertEqual(t, "dirty", c.IsDirty(), false)
		})
	}
}

func TestChunkSwapMesh(t *testing.T) {
	c := NewChunk(ChunkPosition{})
	a := &fakeGeometry{build: 1}
	b := &fakeGeometry{build: 2}

	if old := c.swapMesh(a); old != nil {
		t.Errorf("expected no previous mesh, got %v", old)
	}
	if old := c.swapMesh(b); old != a {
		t.Errorf("expected first mesh back, got %v", old)
	}
	testutil.AssertEqual(t, "mesh", c.Mesh(), Geometry(b))
}

func BenchmarkChunkSetBlock(b *testing.B) {
	c := NewChunk(ChunkPosition{})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.SetBlock(i%ChunkSizeX, (i/ChunkSizeX)%ChunkSizeY, (i/ChunkVolume)%ChunkSizeZ, block.Type(i%2+1))
	}
}

func TestChunkStoreGetOrCreate(t *testing.T) {
	created := 0
	var mu sync.Mutex
	cs := newChunkStore(func(pos ChunkPosition) *Chunk {
		mu.Lock()
		created++
		mu.Unlock()
		return NewChunk(pos)
	})
	pos := ChunkPosition{X: -4, Z: 7}
	testutil.AssertEqual(t, "missing", cs.get(pos) == nil, true)

	const callers = 16
	got := make([]*Chunk, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = cs.getOrCreate(pos)
		}()
	}
	wg.Wait()

	for i, c := range got {
		if c != got[0] {
			t.Errorf("caller %d got a different chunk instance", i)
		}
	}
	testutil.AssertEqual(t, "created", created, 1)
	testutil.AssertEqual(t, "count", cs.count(), 1)
	testutil.AssertEqual(t, "get", cs.get(pos), got[0])

	cs.clear()
	testutil.AssertEqual(t, "count after clear", cs.count(), 0)
	testutil.AssertEqual(t, "all after clear", len(cs.all()), 0)
}
