package config

import (
	"math"
	"sort"
)

// Presets are ready-made scenarios in screen coordinates around (500, 400).
var Presets = map[string]func() *Config{
	"triangle": triangle,
	"binary":   binary,
	"orbit":    orbit,
	"cluster":  cluster,
}

// triangle is three equal bodies at rest on an equilateral triangle.
func triangle() *Config {
	cfg := DefaultConfig()
	cfg.Name = "triangle"
	h := 200 * math.Sqrt(3) / 2
	cfg.Bodies = []BodyConfig{
		{X: 400, Y: 400, Radius: 10},
		{X: 600, Y: 400, Radius: 10},
		{X: 500, Y: 400 - h, Radius: 10},
	}
	return cfg
}

// binary is a pair of equal bodies on a circular orbit about their centre.
func binary() *Config {
	cfg := DefaultConfig()
	cfg.Name = "binary"
	const r, d = 15.0, 100.0
	v := math.Sqrt(cfg.Params.G * r * r / (2 * d))
	cfg.Bodies = []BodyConfig{
		{X: 500 - d/2, Y: 400, VY: v, Radius: r},
		{X: 500 + d/2, Y: 400, VY: -v, Radius: r},
	}
	cfg.Settings.Taper = true
	return cfg
}

// orbit is a light planet circling a heavy star with zero total momentum.
func orbit() *Config {
	cfg := DefaultConfig()
	cfg.Name = "orbit"
	const star, planet, d = 40.0, 5.0, 150.0
	v := math.Sqrt(cfg.Params.G * star * star / d)
	cfg.Bodies = []BodyConfig{
		{X: 500, Y: 400, VX: -v * planet * planet / (star * star), Radius: star},
		{X: 500, Y: 400 - d, VX: v, Radius: planet},
	}
	cfg.Settings.Interpolate = true
	return cfg
}

// cluster is a ring of small bodies with a slight spin.
func cluster() *Config {
	cfg := DefaultConfig()
	cfg.Name = "cluster"
	const n, ring, r = 12, 200.0, 6.0
	cfg.Bodies = make([]BodyConfig, 0, n)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / n
		sin, cos := math.Sincos(theta)
		cfg.Bodies = append(cfg.Bodies, BodyConfig{
			X:      500 + ring*cos,
			Y:      400 - ring*sin,
			VX:     -0.3 * sin,
			VY:     0.3 * cos,
			Radius: r,
		})
	}
	cfg.Settings.Taper = true
	cfg.Settings.TaperedLength = 30
	return cfg
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
