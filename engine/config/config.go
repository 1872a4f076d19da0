package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable holding the configuration file path.
const EnvPath = "OXYVR_CONFIG"

// Config is the complete runtime configuration.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Window   WindowConfig   `yaml:"window"`
	Render   RenderConfig   `yaml:"render"`
	HMD      HMDConfig      `yaml:"hmd"`
	Scene    SceneConfig    `yaml:"scene"`
	Profiler ProfilerConfig `yaml:"profiler"`
}

// LogConfig controls the root logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json, logfmt
}

// WindowConfig controls the desktop mirror window. Its size always follows the mirror texture.
type WindowConfig struct {
	Title string `yaml:"title"`
}

// RenderConfig controls projection, render density and presentation.
type RenderConfig struct {
	Near            float32   `yaml:"near"`
	Far             float32   `yaml:"far"`
	PixelDensity    float32   `yaml:"pixel_density"`  // pixels per display pixel at the view center
	MirrorDivisor   int       `yaml:"mirror_divisor"` // mirror = render target / divisor
	ClearColor      []float64 `yaml:"clear_color"`    // r, g, b, a
	PresentMode     string    `yaml:"present_mode"`   // immediate, vsync
	OpenGLClipRange bool      `yaml:"opengl_clip_range"`
	ForceSoftware   bool      `yaml:"force_software"`
}

// HMDConfig controls the simulated headset runtime.
type HMDConfig struct {
	SwapChainLength  int     `yaml:"swap_chain_length"` // 0 lets the runtime choose
	ResolutionWidth  int     `yaml:"resolution_width"`
	ResolutionHeight int     `yaml:"resolution_height"`
	RefreshRate      float32 `yaml:"refresh_rate"`
	IPD              float32 `yaml:"ipd"`
	PixelsPerTan     float32 `yaml:"pixels_per_tan"`
	LookSpeed        float32 `yaml:"look_speed"` // radians per second
	MoveSpeed        float32 `yaml:"move_speed"` // meters per second
	DisconnectAfter  int64   `yaml:"disconnect_after"`
	DisconnectFor    int64   `yaml:"disconnect_for"`
}

// SceneConfig controls the particle scene.
type SceneConfig struct {
	InitialParticles int       `yaml:"initial_particles"`
	MaxParticles     int       `yaml:"max_particles"`
	SpawnIntervalS   float64   `yaml:"spawn_interval_s"`
	Speed            float32   `yaml:"speed"`         // distance per step
	SpinPerStep      float32   `yaml:"spin_per_step"` // radians per step
	HalfExtentX      float32   `yaml:"half_extent_x"`
	HalfExtentY      float32   `yaml:"half_extent_y"`
	NearZ            float32   `yaml:"near_z"`
	FarZ             float32   `yaml:"far_z"`
	Emitter          []float32 `yaml:"emitter"` // x, y, z where new particles appear
	Workers          int       `yaml:"workers"`
	Seed             int64     `yaml:"seed"` // 0 seeds from the clock
}

// ProfilerConfig controls periodic frame statistics.
type ProfilerConfig struct {
	Enabled   bool    `yaml:"enabled"`
	IntervalS float64 `yaml:"interval_s"`
}

// Default returns the configuration used when no file is present.
//
// Returns:
//   - *Config: a fully populated default configuration
func Default() *Config {
	return &Config{
		Log:    LogConfig{Level: "info", Format: "text"},
		Window: WindowConfig{Title: "Oxy VR Mirror"},
		Render: RenderConfig{
			Near:          0.01,
			Far:           1000,
			PixelDensity:  1,
			MirrorDivisor: 4,
			ClearColor:    []float64{0, 0, 0.4, 0},
			PresentMode:   "immediate",
		},
		HMD: HMDConfig{
			ResolutionWidth:  2160,
			ResolutionHeight: 1200,
			RefreshRate:      90,
			IPD:              0.064,
			PixelsPerTan:     549,
			LookSpeed:        1.5,
			MoveSpeed:        1.2,
		},
		Scene: SceneConfig{
			InitialParticles: 5,
			MaxParticles:     256,
			SpawnIntervalS:   1,
			Speed:            0.01,
			SpinPerStep:      0.05,
			HalfExtentX:      10,
			HalfExtentY:      10,
			NearZ:            -5,
			FarZ:             -25,
			Emitter:          []float32{0, -1, -15},
			Workers:          4,
		},
		Profiler: ProfilerConfig{IntervalS: 1},
	}
}

// Load reads a YAML configuration file and fills unset fields from Default.
// An empty path or a missing file yields the defaults.
//
// Parameters:
//   - path: the configuration file path
//
// Returns:
//   - *Config: the loaded configuration
//   - error: an error if the file cannot be read, parsed or validated
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// LoadFromEnv loads the file named by the OXYVR_CONFIG environment variable.
func LoadFromEnv() (*Config, error) {
	return Load(os.Getenv(EnvPath))
}

// Parse decodes YAML configuration bytes, fills unset fields from Default and validates the result.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - *Config: the parsed configuration
//   - error: an error if the document is malformed or invalid
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults(Default())

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults(d *Config) {
	c.Log.Level = common.Coalesce(c.Log.Level, d.Log.Level)
	c.Log.Format = common.Coalesce(c.Log.Format, d.Log.Format)
	c.Window.Title = common.Coalesce(c.Window.Title, d.Window.Title)

	c.Render.Near = common.Coalesce(c.Render.Near, d.Render.Near)
	c.Render.Far = common.Coalesce(c.Render.Far, d.Render.Far)
	c.Render.PixelDensity = common.Coalesce(c.Render.PixelDensity, d.Render.PixelDensity)
	c.Render.MirrorDivisor = common.Coalesce(c.Render.MirrorDivisor, d.Render.MirrorDivisor)
	c.Render.PresentMode = common.Coalesce(c.Render.PresentMode, d.Render.PresentMode)
	if c.Render.ClearColor == nil {
		c.Render.ClearColor = d.Render.ClearColor
	}

	c.HMD.ResolutionWidth = common.Coalesce(c.HMD.ResolutionWidth, d.HMD.ResolutionWidth)
	c.HMD.ResolutionHeight = common.Coalesce(c.HMD.ResolutionHeight, d.HMD.ResolutionHeight)
	c.HMD.RefreshRate = common.Coalesce(c.HMD.RefreshRate, d.HMD.RefreshRate)
	c.HMD.IPD = common.Coalesce(c.HMD.IPD, d.HMD.IPD)
	c.HMD.PixelsPerTan = common.Coalesce(c.HMD.PixelsPerTan, d.HMD.PixelsPerTan)
	c.HMD.LookSpeed = common.Coalesce(c.HMD.LookSpeed, d.HMD.LookSpeed)
	c.HMD.MoveSpeed = common.Coalesce(c.HMD.MoveSpeed, d.HMD.MoveSpeed)

	c.Scene.InitialParticles = common.Coalesce(c.Scene.InitialParticles, d.Scene.InitialParticles)
	c.Scene.MaxParticles = common.Coalesce(c.Scene.MaxParticles, d.Scene.MaxParticles)
	c.Scene.SpawnIntervalS = common.Coalesce(c.Scene.SpawnIntervalS, d.Scene.SpawnIntervalS)
	c.Scene.Speed = common.Coalesce(c.Scene.Speed, d.Scene.Speed)
	c.Scene.SpinPerStep = common.Coalesce(c.Scene.SpinPerStep, d.Scene.SpinPerStep)
	c.Scene.HalfExtentX = common.Coalesce(c.Scene.HalfExtentX, d.Scene.HalfExtentX)
	c.Scene.HalfExtentY = common.Coalesce(c.Scene.HalfExtentY, d.Scene.HalfExtentY)
	c.Scene.NearZ = common.Coalesce(c.Scene.NearZ, d.Scene.NearZ)
	c.Scene.FarZ = common.Coalesce(c.Scene.FarZ, d.Scene.FarZ)
	c.Scene.Workers = common.Coalesce(c.Scene.Workers, d.Scene.Workers)
	if c.Scene.Emitter == nil {
		c.Scene.Emitter = d.Scene.Emitter
	}

	c.Profiler.IntervalS = common.Coalesce(c.Profiler.IntervalS, d.Profiler.IntervalS)
}

// Validate reports the first inconsistency in the configuration.
//
// Returns:
//   - error: nil if the configuration is usable
func (c *Config) Validate() error {
	switch {
	case c.Render.Near <= 0:
		return fmt.Errorf("render.near must be positive, got %v", c.Render.Near)
	case c.Render.Far <= c.Render.Near:
		return fmt.Errorf("render.far (%v) must be greater than render.near (%v)", c.Render.Far, c.Render.Near)
	case c.Render.PixelDensity <= 0:
		return fmt.Errorf("render.pixel_density must be positive, got %v", c.Render.PixelDensity)
	case c.Render.MirrorDivisor < 1:
		return fmt.Errorf("render.mirror_divisor must be at least 1, got %d", c.Render.MirrorDivisor)
	case len(c.Render.ClearColor) != 4:
		return fmt.Errorf("render.clear_color needs 4 components, got %d", len(c.Render.ClearColor))
	case c.Render.PresentMode != "immediate" && c.Render.PresentMode != "vsync":
		return fmt.Errorf("render.present_mode must be immediate or vsync, got %q", c.Render.PresentMode)
	case c.HMD.SwapChainLength < 0:
		return fmt.Errorf("hmd.swap_chain_length must not be negative, got %d", c.HMD.SwapChainLength)
	case c.HMD.RefreshRate <= 0:
		return fmt.Errorf("hmd.refresh_rate must be positive, got %v", c.HMD.RefreshRate)
	case c.Scene.MaxParticles < c.Scene.InitialParticles:
		return fmt.Errorf("scene.max_particles (%d) is below scene.initial_particles (%d)", c.Scene.MaxParticles, c.Scene.InitialParticles)
	case c.Scene.FarZ >= c.Scene.NearZ:
		return fmt.Errorf("scene.far_z (%v) must be behind scene.near_z (%v)", c.Scene.FarZ, c.Scene.NearZ)
	case len(c.Scene.Emitter) != 3:
		return fmt.Errorf("scene.emitter needs 3 components, got %d", len(c.Scene.Emitter))
	case c.Scene.Workers < 1:
		return fmt.Errorf("scene.workers must be at least 1, got %d", c.Scene.Workers)
	}
	return nil
}
