package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/noisefield/internal/noise"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFPS             = 30
	DefaultCacheCapacity   = 2000
	DefaultPrecision       = 1
	DefaultRefreshInterval = 30
	DefaultSensitivity     = 0.001
	DefaultWheelStep       = 0.01
	DefaultCellScaleX      = 0.1
	DefaultCellScaleY      = 0.2
	DefaultSampler         = "perlin"
	DefaultOctaves         = 3
	DefaultPersistence     = 0.5
	DefaultAlpha           = 2.0
	DefaultBeta            = 2.0
	DefaultReadChunk       = 1024
	DefaultPacingWindow    = 60

	MaxPrecision = noise.MaxPrecision
	// MinReadChunk is the smallest input chunk that holds a burst of mouse reports.
	MinReadChunk = 64
)

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	FPS             int     `yaml:"fps"`
	CacheCapacity   int     `yaml:"cache_capacity"`
	Precision       int     `yaml:"precision"`
	RefreshInterval int     `yaml:"refresh_interval"`
	Origin          Vec3    `yaml:"origin"`
	Velocity        Vec3    `yaml:"velocity"`
	Sensitivity     float64 `yaml:"sensitivity"`
	WheelStep       float64 `yaml:"wheel_step"`
	CellScale       Vec2    `yaml:"cell_scale"`
	Sampler         string  `yaml:"sampler"`
	Seed            int64   `yaml:"seed"`
	Octaves         int     `yaml:"octaves"`
	Persistence     float64 `yaml:"persistence"`
	Alpha           float64 `yaml:"alpha"`
	Beta            float64 `yaml:"beta"`
	ReadChunk       int     `yaml:"read_chunk"`
	PacingWindow    int     `yaml:"pacing_window"`
	ShowHeader      bool    `yaml:"show_header"`
}

type Vec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

type Vec2 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func DefaultConfig() *Config {
	return &Config{
		FPS:             DefaultFPS,
		CacheCapacity:   DefaultCacheCapacity,
		Precision:       DefaultPrecision,
		RefreshInterval: DefaultRefreshInterval,
		Sensitivity:     DefaultSensitivity,
		WheelStep:       DefaultWheelStep,
		CellScale:       Vec2{X: DefaultCellScaleX, Y: DefaultCellScaleY},
		Sampler:         DefaultSampler,
		Octaves:         DefaultOctaves,
		Persistence:     DefaultPersistence,
		Alpha:           DefaultAlpha,
		Beta:            DefaultBeta,
		ReadChunk:       DefaultReadChunk,
		PacingWindow:    DefaultPacingWindow,
	}
}

// Load overlays the yaml file at path on the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto overlays the yaml file at path on cfg. Keys absent from the file
// keep their current values.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every violation at once. Each joined error wraps
// ErrInvalidConfig. The sampler name is checked by the noise registry.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.FPS <= 0 {
		bad("fps must be positive, got %d", c.FPS)
	}
	if c.CacheCapacity < 1 {
		bad("cache_capacity must be at least 1, got %d", c.CacheCapacity)
	}
	if c.Precision < 0 || c.Precision > MaxPrecision {
		bad("precision must be in 0..%d, got %d", MaxPrecision, c.Precision)
	}
	if c.RefreshInterval <= 0 {
		bad("refresh_interval must be positive, got %d", c.RefreshInterval)
	}
	if c.CellScale.X <= 0 || c.CellScale.Y <= 0 {
		bad("cell_scale must be positive, got %v,%v", c.CellScale.X, c.CellScale.Y)
	}
	if c.Sampler == "" {
		bad("sampler must be set")
	}
	if c.Octaves < 1 {
		bad("octaves must be at least 1, got %d", c.Octaves)
	}
	if c.ReadChunk < MinReadChunk {
		bad("read_chunk must be at least %d, got %d", MinReadChunk, c.ReadChunk)
	}
	if c.PacingWindow <= 0 {
		bad("pacing_window must be positive, got %d", c.PacingWindow)
	}

	return errors.Join(errs...)
}
