package profiling

import (
	"strings"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

func record(name string, d time.Duration) {
	mu.Lock()
	frameTotals[name] += d
	mu.Unlock()
}

func TestTopN(t *testing.T) {
	ResetFrame()
	record("world.Update", 4200*time.Microsecond)
	record("meshing.Build", 2100*time.Microsecond)
	record("player.Update", 100*time.Microsecond)

	testutil.AssertEqual(t, "top 2", TopN(2), "world.Update:4.2ms, meshing.Build:2.1ms")
	testutil.AssertEqual(t, "all", strings.Count(TopN(10), ","), 2)
	testutil.AssertEqual(t, "none", TopN(0), "")
}

func TestTrackAccumulates(t *testing.T) {
	ResetFrame()
	for range 3 {
		stop := Track("test.op")
		time.Sleep(time.Millisecond)
		stop()
	}
	if got := Total("test.op"); got < 3*time.Millisecond {
		t.Errorf("expected at least 3ms, got %v", got)
	}

	ResetFrame()
	testutil.AssertEqual(t, "after reset", len(Snapshot()), 0)
}
