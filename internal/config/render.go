package config

import "sync"

const maxFPSLimit = 240

// RenderSettings holds render configuration that can change while running.
type RenderSettings struct {
	mu        sync.RWMutex
	fpsLimit  int // 0 means unlimited
	wireframe bool
}

var globalRenderSettings = &RenderSettings{
	fpsLimit: 60,
}

// GetFPSLimit returns the frame rate cap, 0 meaning unlimited
func GetFPSLimit() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.fpsLimit
}

// SetFPSLimit sets the frame rate cap
func SetFPSLimit(limit int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()

	// Clamp to reasonable values
	if limit < 0 {
		limit = 0
	}
	if limit > maxFPSLimit {
		limit = maxFPSLimit
	}

	globalRenderSettings.fpsLimit = limit
}

// IsWireframeMode reports whether chunks are drawn as wireframes
func IsWireframeMode() bool {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.wireframe
}

// ToggleWireframeMode flips wireframe rendering and returns the new state
func ToggleWireframeMode() bool {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.wireframe = !globalRenderSettings.wireframe
	return globalRenderSettings.wireframe
}

// Apply copies the runtime-tunable parts of cfg into the render settings.
func Apply(cfg Config) {
	SetFPSLimit(cfg.Window.FPSLimit)
}
