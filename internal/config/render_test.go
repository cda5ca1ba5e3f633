package config

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestFPSLimitClamped(t *testing.T) {
	prev := GetFPSLimit()
	t.Cleanup(func() { SetFPSLimit(prev) })

	tests := map[string]struct {
		in  int
		exp int
	}{
		"unlimited": {in: 0, exp: 0},
		"negative":  {in: -10, exp: 0},
		"normal":    {in: 144, exp: 144},
		"too high":  {in: 1000, exp: maxFPSLimit},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			SetFPSLimit(tt.in)
			testutil.AssertEqual(t, "limit", GetFPSLimit(), tt.exp)
		})
	}

	cfg := Default()
	cfg.Window.FPSLimit = 30
	Apply(cfg)
	testutil.AssertEqual(t, "applied", GetFPSLimit(), 30)
}

func TestToggleWireframeMode(t *testing.T) {
	start := IsWireframeMode()
	testutil.AssertEqual(t, "toggled", ToggleWireframeMode(), !start)
	testutil.AssertEqual(t, "read back", IsWireframeMode(), !start)
	testutil.AssertEqual(t, "toggled back", ToggleWireframeMode(), start)
}
