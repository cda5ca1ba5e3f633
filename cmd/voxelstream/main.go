package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/faiface/mainthread"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/xlab/closer"

	"voxelstream/internal/config"
	"voxelstream/internal/game"
	"voxelstream/internal/graphics"
	"voxelstream/internal/input"
	"voxelstream/internal/minimap"
	"voxelstream/internal/scene"
	"voxelstream/internal/storage"
	"voxelstream/internal/terrain"
	"voxelstream/internal/world"
)

// shutdownTimeout bounds how long a signal waits for the run to wind down.
const shutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	headless := flag.Bool("headless", false, "run without a window")
	frames := flag.Int("frames", 0, "frames to simulate in headless mode")
	minimapPath := flag.String("minimap", "", "write a minimap image after a headless run")
	walk := flag.Bool("walk", false, "walk forward during a headless run")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	// Flags given explicitly override the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "headless":
			cfg.Headless.Enabled = *headless
		case "frames":
			cfg.Headless.Frames = *frames
		case "minimap":
			cfg.Headless.Minimap = *minimapPath
		case "walk":
			cfg.Headless.Walk = *walk
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	level, _ := config.ParseLevel(cfg.Log.Level)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	config.Apply(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	a := &app{cfg: cfg, log: logger, stopped: make(chan struct{})}
	closer.Bind(func() {
		cancel()
		a.shutdown()
	})

	var runErr error
	if cfg.Headless.Enabled {
		runErr = a.runHeadless(ctx)
	} else {
		mainthread.Run(func() { runErr = a.runWindowed(ctx) })
	}
	a.stop()

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Error("exiting", "error", runErr)
		closer.Exit(1)
	}
	closer.Close()
}

// app holds what outlives a single run and must be released on exit.
type app struct {
	cfg   config.Config
	log   *slog.Logger
	store *storage.Store

	stopped  chan struct{}
	stopOnce sync.Once
}

func (a *app) stop() {
	a.stopOnce.Do(func() { close(a.stopped) })
}

// shutdown waits for the run to finish and closes the store.
func (a *app) shutdown() {
	select {
	case <-a.stopped:
	case <-time.After(shutdownTimeout):
		a.log.Warn("run did not stop in time")
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Error("closing store", "error", err)
		}
	}
}

func (a *app) openStore() error {
	if a.cfg.Save.Path == "" {
		return nil
	}
	s, err := storage.Open(a.cfg.Save.Path, a.log)
	if err != nil {
		return err
	}
	a.store = s
	return nil
}

// progress logs the initial generation about every tenth of the way.
func (a *app) progress() world.ProgressFunc {
	return func(done, total int) {
		step := max(total/10, 1)
		if done%step == 0 || done == total {
			a.log.Info("generating", "done", done, "total", total)
		}
	}
}

func (a *app) runHeadless(ctx context.Context) error {
	if err := a.openStore(); err != nil {
		return err
	}
	sc := scene.NewMemory()
	s, err := game.NewSession(a.cfg, sc, a.store, a.log)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Start(ctx, a.progress()); err != nil {
		return err
	}
	h := a.cfg.Headless
	if err := game.RunHeadless(ctx, s, h.Frames, h.Walk); err != nil {
		return err
	}
	if err := game.Drain(ctx, s); err != nil {
		return err
	}

	st := s.World.Stats()
	ss := sc.Stats()
	p := s.World.Player()
	a.log.Info("headless run finished",
		"frames", h.Frames,
		"chunks", st.Chunks,
		"generated", st.Generated,
		"meshes", ss.Meshes,
		"vertices", ss.Vertices,
		"player", p.Position)

	if h.Minimap != "" {
		opts := minimap.Options{
			CenterX:  int(p.Position.X()),
			CenterZ:  int(p.Position.Z()),
			Radius:   (a.cfg.World.StreamRadius + 1) * world.ChunkSizeX,
			Scale:    2,
			SeaLevel: terrain.SeaLevel,
			Marker:   true,
		}
		if err := minimap.Save(s.World, opts, h.Minimap); err != nil {
			return err
		}
		a.log.Info("minimap written", "path", h.Minimap)
	}
	return s.Save()
}

// runWindowed runs inside mainthread.Run. GL, glfw and World.Update calls go
// through mainthread.Call.
func (a *app) runWindowed(ctx context.Context) error {
	if err := a.openStore(); err != nil {
		return err
	}

	var (
		window *glfw.Window
		sc     *graphics.Scene
		r      *graphics.Renderer
		err    error
	)
	mainthread.Call(func() {
		window, sc, r, err = a.setupGraphics()
	})
	if err != nil {
		return err
	}
	defer mainthread.Call(func() {
		r.Dispose()
		sc.Dispose()
		window.Destroy()
		glfw.Terminate()
	})

	s, err := game.NewSession(a.cfg, sc, a.store, a.log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	prepared := make(chan error, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		prepared <- s.Prepare(ctx, a.progress())
	}()

	im := input.NewInputManager()
	loop := NewGameLoop(window, r, s, im, prepared, a.log)
	mainthread.Call(func() { setupInputHandlers(window, loop, im) })

	runErr := loop.Run(ctx)
	cancel()
	wg.Wait()

	if loop.ready {
		if err := s.Save(); err != nil {
			a.log.Error("save failed", "error", err)
		}
	}
	mainthread.Call(s.Close)
	return runErr
}

func (a *app) setupGraphics() (*glfw.Window, *graphics.Scene, *graphics.Renderer, error) {
	if err := glfw.Init(); err != nil {
		return nil, nil, nil, fmt.Errorf("initializing glfw: %w", err)
	}
	window, err := setupWindow(a.cfg.Window)
	if err != nil {
		glfw.Terminate()
		return nil, nil, nil, fmt.Errorf("creating window: %w", err)
	}
	sc := graphics.NewScene(a.log)
	fbWidth, fbHeight := window.GetFramebufferSize()
	r, err := graphics.NewRenderer(sc, fbWidth, fbHeight)
	if err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, nil, nil, err
	}
	r.SetViewRadius(a.cfg.World.StreamRadius)
	return window, sc, r, nil
}
