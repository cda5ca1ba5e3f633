package player

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pixil98/go-testutil"

	"voxelstream/internal/block"
)

// flatWorld is solid at and below floor, with optional extra blocks.
type flatWorld struct {
	floor  int
	extra  map[[3]int]block.Type
	loaded bool
}

func (w *flatWorld) GetBlock(x, y, z int) (block.Type, bool) {
	if !w.loaded {
		return block.Air, false
	}
	if t, ok := w.extra[[3]int{x, y, z}]; ok {
		return t, true
	}
	if y <= w.floor {
		return block.Stone, true
	}
	return block.Air, true
}

var testBounds = Bounds{Min: mgl32.Vec3{-256, 0, -256}, Max: mgl32.Vec3{256, 255, 256}}

func newTestPlayer(w *flatWorld, pos mgl32.Vec3) *Player {
	p := New(w, testBounds)
	p.Position = pos
	return p
}

func settle(p *Player, frames int) {
	for range frames {
		p.Update(1.0 / 60)
	}
}

func TestFallAndLand(t *testing.T) {
	w := &flatWorld{floor: 9, loaded: true}
	p := newTestPlayer(w, mgl32.Vec3{0.5, 20, 0.5})

	settle(p, 240)
	testutil.AssertEqual(t, "on ground", p.IsOnGround, true)
	testutil.AssertEqual(t, "feet on floor", p.Position.Y(), float32(10))
	testutil.AssertEqual(t, "vertical velocity", p.Velocity.Y(), float32(0))
}

func TestTerminalVelocity(t *testing.T) {
	w := &flatWorld{floor: -100, loaded: true}
	p := newTestPlayer(w, mgl32.Vec3{0.5, 250, 0.5})
	settle(p, 300)
	testutil.AssertEqual(t, "capped", p.Velocity.Y(), float32(TerminalVelocity))
}

func TestJump(t *testing.T) {
	w := &flatWorld{floor: 9, loaded: true}
	p := newTestPlayer(w, mgl32.Vec3{0.5, 10, 0.5})
	settle(p, 2)
	testutil.AssertEqual(t, "grounded", p.IsOnGround, true)

	p.Jump()
	testutil.AssertEqual(t, "velocity", p.Velocity.Y(), float32(JumpVelocity))
	testutil.AssertEqual(t, "airborne", p.IsOnGround, false)

	// Jumping mid-air does nothing.
	p.Update(0.1)
	v := p.Velocity.Y()
	p.Jump()
	testutil.AssertEqual(t, "mid-air jump", p.Velocity.Y(), v)

	settle(p, 120)
	testutil.AssertEqual(t, "landed", p.Position.Y(), float32(10))
}

func TestFlight(t *testing.T) {
	w := &flatWorld{floor: 9, loaded: true}
	p := newTestPlayer(w, mgl32.Vec3{0.5, 30, 0.5})
	p.Velocity[1] = -10

	p.ToggleFlight()
	testutil.AssertEqual(t, "flying", p.IsFlying, true)
	testutil.AssertEqual(t, "velocity cleared", p.Velocity.Y(), float32(0))

	settle(p, 60)
	testutil.AssertEqual(t, "hovering", p.Position.Y(), float32(30))

	p.Walk(0, 0, 1, 1)
	testutil.AssertEqual(t, "rise", p.Position.Y(), float32(30+FlySpeed))

	p.Jump()
	testutil.AssertEqual(t, "no jump while flying", p.Velocity.Y(), float32(0))
}

func TestWallSliding(t *testing.T) {
	w := &flatWorld{floor: 9, loaded: true, extra: map[[3]int]block.Type{}}
	for x := -5; x <= 5; x++ {
		for y := 10; y < 13; y++ {
			w.extra[[3]int{x, y, -2}] = block.Stone
		}
	}
	p := newTestPlayer(w, mgl32.Vec3{0.5, 10, 0.5})

	// Diagonal move into the wall keeps the x component.
	p.Move(mgl32.Vec3{1, 0, -2})
	testutil.AssertEqual(t, "x slid", p.Position.X(), float32(1.5))
	testutil.AssertEqual(t, "z blocked", p.Position.Z(), float32(0.5))
}

func TestMoveClampedToBounds(t *testing.T) {
	w := &flatWorld{floor: -1, loaded: true}
	p := newTestPlayer(w, mgl32.Vec3{255, 10, 0})
	p.Move(mgl32.Vec3{10, 0, 0})
	testutil.AssertEqual(t, "clamped", p.Position.X(), float32(256))
}

func TestUnloadedTerrainIsOpen(t *testing.T) {
	w := &flatWorld{floor: 9}
	p := newTestPlayer(w, mgl32.Vec3{0.5, 10, 0.5})
	p.Move(mgl32.Vec3{0, -1, 0})
	testutil.AssertEqual(t, "falls through", p.Position.Y(), float32(9))
}

func TestRotate(t *testing.T) {
	p := New(&flatWorld{}, testBounds)
	p.Rotate(10, 0.5)
	testutil.AssertEqual(t, "pitch clamped", p.Rotation.X(), float32(math.Pi/2))
	testutil.AssertEqual(t, "yaw", p.Rotation.Y(), float32(0.5))

	p.Rotate(-20, 0)
	testutil.AssertEqual(t, "pitch clamped low", p.Rotation.X(), float32(-math.Pi/2))
}

func TestFrontAndView(t *testing.T) {
	p := New(&flatWorld{}, testBounds)
	front := p.Front()
	if !front.ApproxEqual(mgl32.Vec3{0, 0, -1}) {
		t.Errorf("default front %v, want -Z", front)
	}

	p.Rotate(0, math.Pi/2)
	if !p.Front().ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, 1e-5) {
		t.Errorf("front after quarter turn %v, want +X", p.Front())
	}

	eye := p.ViewMatrix().Mul4x1(p.Eye().Vec4(1))
	if !eye.Vec3().ApproxEqualThreshold(mgl32.Vec3{}, 1e-4) {
		t.Errorf("eye in view space %v, want origin", eye)
	}
}

func TestTarget(t *testing.T) {
	w := &flatWorld{floor: 9, loaded: true}
	p := newTestPlayer(w, mgl32.Vec3{0.5, 10, 0.5})
	p.Rotation[0] = -math.Pi / 2

	r := p.Target()
	testutil.AssertEqual(t, "hit", r.Hit, true)
	testutil.AssertEqual(t, "block below", r.HitPosition, [3]int{0, 9, 0})
	testutil.AssertEqual(t, "adjacent", r.AdjacentPosition, [3]int{0, 10, 0})

	p.Rotation[0] = math.Pi / 2
	testutil.AssertEqual(t, "sky", p.Target().Hit, false)
}

func TestCanPlaceAt(t *testing.T) {
	p := newTestPlayer(&flatWorld{floor: 9, loaded: true}, mgl32.Vec3{0.5, 10, 0.5})
	testutil.AssertEqual(t, "inside body", p.CanPlaceAt(0, 11, 0), false)
	testutil.AssertEqual(t, "under feet", p.CanPlaceAt(0, 9, 0), true)
	testutil.AssertEqual(t, "beside", p.CanPlaceAt(1, 10, 0), true)
}
