package world

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"voxelstream/internal/block"
)

var errBoom = errors.New("boom")

// floorTerrain fills every column with stone up to height.
type floorTerrain struct {
	height int
	delay  time.Duration
	gate   chan struct{}
	fail   func(pos ChunkPosition, attempt int) error

	mu    sync.Mutex
	calls map[ChunkPosition]int
}

func newFloorTerrain(height int) *floorTerrain {
	return &floorTerrain{height: height, calls: make(map[ChunkPosition]int)}
}

func (f *floorTerrain) Generate(c *Chunk) error {
	pos := c.Position()
	f.mu.Lock()
	f.calls[pos]++
	attempt := f.calls[pos]
	f.mu.Unlock()

	if f.gate != nil {
		<-f.gate
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.fail != nil {
		if err := f.fail(pos, attempt); err != nil {
			return err
		}
	}
	for x := range ChunkSizeX {
		for z := range ChunkSizeZ {
			for y := 0; y <= f.height; y++ {
				c.SetBlock(x, y, z, block.Stone)
			}
		}
	}
	return nil
}

func (f *floorTerrain) callsFor(pos ChunkPosition) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[pos]
}

func (f *floorTerrain) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

type fakeGeometry struct {
	pos   ChunkPosition
	build int
}

func (g *fakeGeometry) VertexCount() int { return 36 }

// fakeMesher records calls and the peak number of concurrent builds.
type fakeMesher struct {
	delay   time.Duration
	gate    chan struct{}
	started chan ChunkPosition
	fail    func(pos ChunkPosition, attempt int) error

	active    atomic.Int32
	maxActive atomic.Int32

	mu    sync.Mutex
	calls map[ChunkPosition]int
}

func newFakeMesher() *fakeMesher {
	return &fakeMesher{calls: make(map[ChunkPosition]int)}
}

func (m *fakeMesher) Generate(c *Chunk) (Geometry, error) {
	n := m.active.Add(1)
	defer m.active.Add(-1)
	for {
		peak := m.maxActive.Load()
		if n <= peak || m.maxActive.CompareAndSwap(peak, n) {
			break
		}
	}

	pos := c.Position()
	m.mu.Lock()
	m.calls[pos]++
	attempt := m.calls[pos]
	m.mu.Unlock()

	if m.started != nil {
		select {
		case m.started <- pos:
		default:
		}
	}
	if m.gate != nil {
		<-m.gate
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.fail != nil {
		if err := m.fail(pos, attempt); err != nil {
			return nil, err
		}
	}
	return &fakeGeometry{pos: pos, build: attempt}, nil
}

func (m *fakeMesher) callsFor(pos ChunkPosition) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[pos]
}

func (m *fakeMesher) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

// recordingScene tracks live geometry and fails the test on mutation once frozen.
type recordingScene struct {
	t *testing.T

	mu      sync.Mutex
	live    map[Geometry]struct{}
	adds    int
	removes int
	frozen  bool
}

func newRecordingScene(t *testing.T) *recordingScene {
	return &recordingScene{t: t, live: make(map[Geometry]struct{})}
}

func (s *recordingScene) Add(g Geometry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		s.t.Errorf("scene mutated after dispose: add %v", g)
	}
	if _, ok := s.live[g]; ok {
		s.t.Errorf("geometry added twice: %v", g)
	}
	s.live[g] = struct{}{}
	s.adds++
}

func (s *recordingScene) Remove(g Geometry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		s.t.Errorf("scene mutated after dispose: remove %v", g)
	}
	if _, ok := s.live[g]; !ok {
		s.t.Errorf("removing geometry that is not attached: %v", g)
	}
	delete(s.live, g)
	s.removes++
}

func (s *recordingScene) freeze() {
	s.mu.Lock()
	s.frozen = true
	s.mu.Unlock()
}

func (s *recordingScene) counts() (live, adds, removes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live), s.adds, s.removes
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testOptions(initial, stream int) Options {
	opts := DefaultOptions()
	opts.InitialRadius = initial
	opts.StreamRadius = stream
	return opts
}

func newTestWorld(t *testing.T, opts Options, terrain TerrainGenerator, mesher ChunkMeshGenerator) (*World, *recordingScene) {
	t.Helper()
	scene := newRecordingScene(t)
	w := New(opts, terrain, mesher, scene, testLogger())
	t.Cleanup(w.Dispose)
	return w, scene
}

// pump drives frames until cond holds or the deadline passes.
func pump(t *testing.T, w *World, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not reached, stats %+v", w.Stats())
		}
		w.Update(1.0 / 60)
		time.Sleep(time.Millisecond)
	}
}
