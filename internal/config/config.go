package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gravsim/internal/clock"
	"github.com/san-kum/gravsim/internal/geom"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
)

const (
	DefaultRadius = 10.0
	DefaultTicks  = 600
	DefaultDt     = 1.0
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Name     string         `yaml:"name,omitempty"`
	Seed     int64          `yaml:"seed"`
	FPS      int            `yaml:"fps"`
	Ticks    int            `yaml:"ticks"`
	Dt       float64        `yaml:"dt"`
	Radius   float64        `yaml:"radius"`
	Params   ParamsConfig   `yaml:"params"`
	Settings SettingsConfig `yaml:"settings"`
	Bodies   []BodyConfig   `yaml:"bodies,omitempty"`
}

type ParamsConfig struct {
	G             float64 `yaml:"g"`
	MinDistance   float64 `yaml:"min_distance"`
	BodyLimit     int     `yaml:"body_limit"`
	VelocityScale float64 `yaml:"velocity_scale"`
	MaxRadius     float64 `yaml:"max_radius"`
}

type SettingsConfig struct {
	Trace         bool `yaml:"trace"`
	Interpolate   bool `yaml:"interpolate"`
	Taper         bool `yaml:"taper"`
	TaperedLength int  `yaml:"tapered_length"`
	ColorPaths    bool `yaml:"color_paths"`
	ShowForces    bool `yaml:"show_forces"`
	Paused        bool `yaml:"paused"`
}

// BodyConfig places one body in screen coordinates. Velocity is given in
// vector orientation (positive vy points up the screen).
type BodyConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	VX     float64 `yaml:"vx"`
	VY     float64 `yaml:"vy"`
	Radius float64 `yaml:"radius"`
}

func DefaultConfig() *Config {
	p := sim.DefaultParams()
	s := sim.DefaultSettings()
	return &Config{
		Seed:   1,
		FPS:    clock.DefaultFPS,
		Ticks:  DefaultTicks,
		Dt:     DefaultDt,
		Radius: DefaultRadius,
		Params: ParamsConfig{
			G:             p.Physics.G,
			MinDistance:   p.Physics.MinDistance,
			BodyLimit:     p.BodyLimit,
			VelocityScale: p.VelocityScale,
			MaxRadius:     p.MaxRadius,
		},
		Settings: SettingsConfig{
			Trace:         true,
			TaperedLength: s.TaperedLength,
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Write encodes cfg as YAML to w.
func Write(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalidConfig, c.FPS)
	}
	if c.Ticks < 0 {
		return fmt.Errorf("%w: ticks must not be negative, got %d", ErrInvalidConfig, c.Ticks)
	}
	if !finite(c.Dt) || c.Dt < 0 {
		return fmt.Errorf("%w: dt must be finite and non-negative, got %v", ErrInvalidConfig, c.Dt)
	}
	if !finite(c.Params.G) {
		return fmt.Errorf("%w: g must be finite", ErrInvalidConfig)
	}
	if !finite(c.Params.MinDistance) || c.Params.MinDistance < 0 {
		return fmt.Errorf("%w: min_distance must be non-negative, got %v", ErrInvalidConfig, c.Params.MinDistance)
	}
	if c.Params.BodyLimit < 0 {
		return fmt.Errorf("%w: body_limit must not be negative", ErrInvalidConfig)
	}
	if c.Params.MaxRadius <= 0 {
		return fmt.Errorf("%w: max_radius must be positive", ErrInvalidConfig)
	}
	if c.Radius < 0 || c.Radius > c.Params.MaxRadius {
		return fmt.Errorf("%w: radius %v outside [0, %v]", ErrInvalidConfig, c.Radius, c.Params.MaxRadius)
	}
	if c.Params.BodyLimit > 0 && len(c.Bodies) > c.Params.BodyLimit {
		return fmt.Errorf("%w: %d bodies exceed body_limit %d", ErrInvalidConfig, len(c.Bodies), c.Params.BodyLimit)
	}
	for i, b := range c.Bodies {
		if b.Radius < 0 || b.Radius > c.Params.MaxRadius {
			return fmt.Errorf("%w: body %d radius %v outside [0, %v]", ErrInvalidConfig, i, b.Radius, c.Params.MaxRadius)
		}
		if !finite(b.X) || !finite(b.Y) || !finite(b.VX) || !finite(b.VY) {
			return fmt.Errorf("%w: body %d has a non-finite coordinate", ErrInvalidConfig, i)
		}
	}
	return nil
}

func (c *Config) SimParams() sim.Params {
	return sim.Params{
		Physics: physics.Params{
			G:           c.Params.G,
			MinDistance: c.Params.MinDistance,
		},
		BodyLimit:     c.Params.BodyLimit,
		VelocityScale: c.Params.VelocityScale,
		MaxRadius:     c.Params.MaxRadius,
	}
}

func (c *Config) SimSettings() sim.Settings {
	return sim.Settings{
		Trace:         c.Settings.Trace,
		Interpolate:   c.Settings.Interpolate,
		Taper:         c.Settings.Taper,
		TaperedLength: sim.ClampTaperedLength(c.Settings.TaperedLength),
		ColorPaths:    c.Settings.ColorPaths,
		ShowForces:    c.Settings.ShowForces,
		Paused:        c.Settings.Paused,
	}
}

// Populate adds the scenario bodies to s in file order.
func (c *Config) Populate(s *sim.Simulation) error {
	for i, b := range c.Bodies {
		pos := geom.Position{X: b.X, Y: b.Y}
		if _, err := s.AddBody(b.Radius, pos, geom.FromComponents(b.VX, b.VY)); err != nil {
			return fmt.Errorf("config: body %d: %w", i, err)
		}
	}
	return nil
}

// NewSimulation builds a populated simulation from the config.
func (c *Config) NewSimulation(opts ...sim.Option) (*sim.Simulation, error) {
	opts = append([]sim.Option{sim.WithSeed(c.Seed)}, opts...)
	s := sim.New(c.SimParams(), c.SimSettings(), opts...)
	if err := c.Populate(s); err != nil {
		return nil, err
	}
	return s, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
