package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/faiface/mainthread"
	"github.com/go-gl/glfw/v3.3/glfw"

	"voxelstream/internal/block"
	"voxelstream/internal/config"
	"voxelstream/internal/game"
	"voxelstream/internal/graphics"
	"voxelstream/internal/input"
	"voxelstream/internal/profiling"
)

// placeBlock is the block put down with the right mouse button.
const placeBlock = block.Stone

// maxFrameTime bounds dt after a hitch so the player cannot tunnel.
const maxFrameTime = 0.1

// GameLoop manages the main game loop state. Every method except Run executes
// on the main thread.
type GameLoop struct {
	window       *glfw.Window
	renderer     *graphics.Renderer
	session      *game.Session
	inputManager *input.InputManager
	fpsLimiter   *game.FPSLimiter
	log          *slog.Logger

	// prepared delivers the result of Session.Prepare. The player is only
	// touched once it has arrived and Session.Enter has run.
	prepared <-chan error
	ready    bool
	err      error

	paused bool

	// Cursor tracking for mouse look
	firstMouse             bool
	lastMouseX, lastMouseY float64

	// Timing
	frames           int
	lastFPSCheckTime time.Time
	lastTime         time.Time
}

// NewGameLoop creates a new game loop with all components
func NewGameLoop(window *glfw.Window, r *graphics.Renderer, s *game.Session, im *input.InputManager, prepared <-chan error, logger *slog.Logger) *GameLoop {
	return &GameLoop{
		window:           window,
		renderer:         r,
		session:          s,
		inputManager:     im,
		prepared:         prepared,
		fpsLimiter:       game.NewFPSLimiter(),
		log:              logger,
		firstMouse:       true,
		lastFPSCheckTime: time.Now(),
		lastTime:         time.Now(),
	}
}

// Run drives frames on the main thread until the window closes, ctx ends or
// preparing the world fails. Frame pacing happens off the main thread.
func (g *GameLoop) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		var done, paused bool
		mainthread.Call(func() {
			done = g.window.ShouldClose()
			if !done {
				g.tick()
			}
			done = done || g.err != nil
			paused = g.paused
		})
		if done {
			return g.err
		}
		g.fpsLimiter.Wait(paused)
	}
	return nil
}

// checkPrepared enters the world once preparation has finished.
func (g *GameLoop) checkPrepared() {
	if g.ready {
		return
	}
	select {
	case err := <-g.prepared:
		if err != nil {
			g.err = err
			return
		}
		g.session.Enter()
		g.ready = true
	default:
	}
}

func (g *GameLoop) tick() {
	profiling.ResetFrame()
	now := time.Now()
	dt := float32(min(now.Sub(g.lastTime).Seconds(), maxFrameTime))
	g.lastTime = now

	// Poll events at start
	func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()

	g.checkPrepared()
	if g.err != nil {
		return
	}
	if g.ready {
		g.handleActions(dt)
	}
	g.session.Tick(dt)

	if g.ready {
		g.renderer.Render(g.session.World.Player())
	} else {
		g.renderer.Clear()
	}

	// Present
	func() { defer profiling.Track("glfw.SwapBuffers")(); g.window.SwapBuffers() }()

	// Clear edge flags at end of frame
	g.inputManager.PostUpdate()

	g.session.EndFrame(now)
	g.frames++
	if time.Since(g.lastFPSCheckTime) >= time.Second {
		st := g.session.World.Stats()
		g.log.Debug("fps",
			"fps", g.frames,
			"drawn", g.renderer.DrawnChunks,
			"chunks", st.Chunks,
			"meshes", st.MeshesPublished)
		g.frames = 0
		g.lastFPSCheckTime = time.Now()
	}
}

func (g *GameLoop) handleActions(dt float32) {
	im := g.inputManager

	if im.JustPressed(input.ActionPause) {
		g.setPaused(!g.paused)
	}
	if im.JustPressed(input.ActionToggleWireframe) {
		config.ToggleWireframeMode()
	}
	if im.JustPressed(input.ActionSave) {
		if err := g.session.Save(); err != nil {
			g.log.Error("save failed", "error", err)
		}
	}
	if g.paused {
		return
	}

	p := g.session.World.Player()
	if im.JustPressed(input.ActionToggleFlight) {
		p.ToggleFlight()
	}

	forward := im.Axis(input.ActionMoveForward, input.ActionMoveBackward)
	strafe := im.Axis(input.ActionMoveRight, input.ActionMoveLeft)
	var rise float32
	if p.IsFlying {
		rise = im.Axis(input.ActionJump, input.ActionDescend)
	} else if im.IsActive(input.ActionJump) {
		p.Jump()
	}
	func() {
		defer profiling.Track("player.Walk")()
		g.session.Walk(forward, strafe, rise, dt)
	}()

	if im.JustPressed(input.ActionMouseLeft) {
		g.session.BreakTarget()
	}
	if im.JustPressed(input.ActionMouseRight) {
		g.session.PlaceTarget(placeBlock)
	}
}

func (g *GameLoop) setPaused(paused bool) {
	if g.paused == paused {
		return
	}
	g.paused = paused
	if paused {
		g.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	} else {
		g.window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
		g.firstMouse = true
	}
}

func (g *GameLoop) handleCursor(x, y float64) {
	if g.firstMouse {
		g.lastMouseX, g.lastMouseY = x, y
		g.firstMouse = false
		return
	}
	dx, dy := x-g.lastMouseX, y-g.lastMouseY
	g.lastMouseX, g.lastMouseY = x, y
	if g.ready && !g.paused {
		g.session.World.Player().HandleMouseMovement(dx, dy)
	}
}
