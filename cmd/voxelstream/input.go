package main

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"voxelstream/internal/input"
)

func setupInputHandlers(window *glfw.Window, loop *GameLoop, im *input.InputManager) {
	// Mouse position callback
	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		loop.handleCursor(xpos, ypos)
	})

	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		im.HandleMouseButtonEvent(button, action)
	})

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		im.HandleKeyEvent(key, action)
	})

	// Framebuffer size callback
	window.SetFramebufferSizeCallback(func(w *glfw.Window, fbWidth, fbHeight int) {
		loop.renderer.Resize(fbWidth, fbHeight)
	})

	window.SetFocusCallback(func(w *glfw.Window, focused bool) {
		if !focused {
			loop.setPaused(true)
		}
	})
}
