// Package scene holds a Scene that keeps published chunk geometry in memory,
// used when running without a window.
package scene

import (
	"sync"

	"voxelstream/internal/world"
)

// Memory tracks attached geometry and vertex totals.
type Memory struct {
	mu       sync.Mutex
	live     map[world.Geometry]struct{}
	vertices int
	adds     int
	removes  int
}

func NewMemory() *Memory {
	return &Memory{live: make(map[world.Geometry]struct{})}
}

// Add implements world.Scene. Adding the same geometry twice is a no-op.
func (m *Memory) Add(g world.Geometry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.live[g]; ok {
		return
	}
	m.live[g] = struct{}{}
	m.vertices += g.VertexCount()
	m.adds++
}

// Remove implements world.Scene.
func (m *Memory) Remove(g world.Geometry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.live[g]; !ok {
		return
	}
	delete(m.live, g)
	m.vertices -= g.VertexCount()
	m.removes++
}

// Stats summarises the scene.
type Stats struct {
	Meshes   int
	Vertices int
	Adds     int
	Removes  int
}

func (m *Memory) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{Meshes: len(m.live), Vertices: m.vertices, Adds: m.adds, Removes: m.removes}
}
