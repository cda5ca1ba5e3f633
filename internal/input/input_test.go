package input

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pixil98/go-testutil"
)

func TestEdgeDetection(t *testing.T) {
	im := NewInputManager()

	im.HandleKeyEvent(glfw.KeySpace, glfw.Press)
	testutil.AssertEqual(t, "active", im.IsActive(ActionJump), true)
	testutil.AssertEqual(t, "just pressed", im.JustPressed(ActionJump), true)

	// Key repeat is not a new press.
	im.PostUpdate()
	im.HandleKeyEvent(glfw.KeySpace, glfw.Repeat)
	testutil.AssertEqual(t, "still active", im.IsActive(ActionJump), true)
	testutil.AssertEqual(t, "repeat", im.JustPressed(ActionJump), false)

	im.HandleKeyEvent(glfw.KeySpace, glfw.Release)
	testutil.AssertEqual(t, "released", im.IsActive(ActionJump), false)
	testutil.AssertEqual(t, "just released", im.JustReleased(ActionJump), true)

	im.PostUpdate()
	testutil.AssertEqual(t, "flags cleared", im.JustReleased(ActionJump), false)
}

func TestAxis(t *testing.T) {
	im := NewInputManager()
	testutil.AssertEqual(t, "idle", im.Axis(ActionMoveForward, ActionMoveBackward), float32(0))

	im.HandleKeyEvent(glfw.KeyW, glfw.Press)
	testutil.AssertEqual(t, "forward", im.Axis(ActionMoveForward, ActionMoveBackward), float32(1))

	im.HandleKeyEvent(glfw.KeyDown, glfw.Press)
	testutil.AssertEqual(t, "both cancel", im.Axis(ActionMoveForward, ActionMoveBackward), float32(0))

	im.HandleKeyEvent(glfw.KeyW, glfw.Release)
	testutil.AssertEqual(t, "backward", im.Axis(ActionMoveForward, ActionMoveBackward), float32(-1))
}

func TestRebinding(t *testing.T) {
	im := NewInputManager()
	im.UnbindKey(glfw.KeyG)
	im.BindKey(glfw.KeyTab, ActionToggleFlight)
	im.BindKey(glfw.KeyTab, ActionCount) // ignored

	im.HandleKeyEvent(glfw.KeyG, glfw.Press)
	testutil.AssertEqual(t, "old key", im.IsActive(ActionToggleFlight), false)
	im.HandleKeyEvent(glfw.KeyTab, glfw.Press)
	testutil.AssertEqual(t, "new key", im.JustPressed(ActionToggleFlight), true)

	im.HandleMouseButtonEvent(glfw.MouseButtonLeft, glfw.Press)
	testutil.AssertEqual(t, "mouse", im.IsActive(ActionMouseLeft), true)
	im.UnbindMouseButton(glfw.MouseButtonLeft)
	im.HandleMouseButtonEvent(glfw.MouseButtonLeft, glfw.Release)
	testutil.AssertEqual(t, "unbound mouse keeps state", im.IsActive(ActionMouseLeft), true)

	testutil.AssertEqual(t, "out of range", im.IsActive(Action(-1)), false)
}
