package config

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pixil98/go-errors"
	"gopkg.in/yaml.v3"

	"voxelstream/internal/world"
)

// Config is the on-disk configuration. Unset fields keep their defaults.
type Config struct {
	Seed     int64          `yaml:"seed"`
	World    WorldConfig    `yaml:"world"`
	Log      LogConfig      `yaml:"log"`
	Save     SaveConfig     `yaml:"save"`
	Window   WindowConfig   `yaml:"window"`
	Headless HeadlessConfig `yaml:"headless"`
}

type WorldConfig struct {
	InitialRadius         int `yaml:"initial_radius"`
	StreamRadius          int `yaml:"stream_radius"`
	MaxGenerationPerFrame int `yaml:"max_generation_per_frame"`
	MaxMeshesPerFrame     int `yaml:"max_meshes_per_frame"`
	MeshResultBuffer      int `yaml:"mesh_result_buffer"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// SaveConfig locates the save database. An empty path disables saving.
type SaveConfig struct {
	Path string `yaml:"path"`
	Name string `yaml:"name"`
}

type WindowConfig struct {
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	Title    string `yaml:"title"`
	FPSLimit int    `yaml:"fps_limit"`
	VSync    bool   `yaml:"vsync"`
}

// HeadlessConfig drives runs without a window.
type HeadlessConfig struct {
	Enabled bool `yaml:"enabled"`
	Frames  int  `yaml:"frames"`

	// Walk moves the player forward every frame so streaming is exercised.
	Walk    bool   `yaml:"walk"`
	Minimap string `yaml:"minimap"`
}

// Default returns the built-in configuration.
func Default() Config {
	opts := world.DefaultOptions()
	return Config{
		Seed: opts.Seed,
		World: WorldConfig{
			InitialRadius:         opts.InitialRadius,
			StreamRadius:          opts.StreamRadius,
			MaxGenerationPerFrame: opts.MaxGenerationPerFrame,
			MaxMeshesPerFrame:     opts.MaxMeshesPerFrame,
			MeshResultBuffer:      opts.MeshResultBuffer,
		},
		Log: LogConfig{Level: "info"},
		Save: SaveConfig{
			Path: "voxelstream.db",
			Name: "world",
		},
		Window: WindowConfig{
			Width:    1280,
			Height:   720,
			Title:    "voxelstream",
			FPSLimit: 60,
			VSync:    true,
		},
		Headless: HeadlessConfig{Frames: 600},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses YAML from r over the defaults and validates the result.
// Unknown keys are rejected.
func Decode(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	el := errors.NewErrorList()

	w := c.World
	if w.InitialRadius < 0 {
		el.Add(fmt.Errorf("world.initial_radius must not be negative"))
	}
	if w.StreamRadius < 0 {
		el.Add(fmt.Errorf("world.stream_radius must not be negative"))
	}
	if w.MaxGenerationPerFrame <= 0 {
		el.Add(fmt.Errorf("world.max_generation_per_frame must be positive"))
	}
	if w.MaxMeshesPerFrame <= 0 {
		el.Add(fmt.Errorf("world.max_meshes_per_frame must be positive"))
	}
	if w.MeshResultBuffer <= 0 {
		el.Add(fmt.Errorf("world.mesh_result_buffer must be positive"))
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		el.Add(err)
	}
	if c.Save.Path != "" && c.Save.Name == "" {
		el.Add(fmt.Errorf("save.name is required when save.path is set"))
	}

	if !c.Headless.Enabled {
		if c.Window.Width <= 0 || c.Window.Height <= 0 {
			el.Add(fmt.Errorf("window size %dx%d is invalid", c.Window.Width, c.Window.Height))
		}
	}
	if c.Window.FPSLimit < 0 {
		el.Add(fmt.Errorf("window.fps_limit must not be negative"))
	}
	if c.Headless.Frames < 0 {
		el.Add(fmt.Errorf("headless.frames must not be negative"))
	}

	return el.Err()
}

// WorldOptions converts the world section into world.Options.
func (c Config) WorldOptions() world.Options {
	return world.Options{
		Seed:                  c.Seed,
		InitialRadius:         c.World.InitialRadius,
		StreamRadius:          c.World.StreamRadius,
		MaxGenerationPerFrame: c.World.MaxGenerationPerFrame,
		MaxMeshesPerFrame:     c.World.MaxMeshesPerFrame,
		MeshResultBuffer:      c.World.MeshResultBuffer,
	}
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
