package sim

import "github.com/san-kum/gravsim/internal/physics"

const (
	DefaultBodyLimit     = 25
	DefaultVelocityScale = 0.01
	DefaultMaxRadius     = 400
	MaxTaperedLength     = 100
)

type Params struct {
	Physics physics.Params
	// BodyLimit caps the number of bodies; 0 means unlimited.
	BodyLimit int
	// VelocityScale converts a launch drag distance into an initial speed.
	VelocityScale float64
	MaxRadius     float64
}

func DefaultParams() Params {
	return Params{
		Physics:       physics.DefaultParams(),
		BodyLimit:     DefaultBodyLimit,
		VelocityScale: DefaultVelocityScale,
		MaxRadius:     DefaultMaxRadius,
	}
}

// Settings are the user-facing toggles shared by every body.
type Settings struct {
	Trace         bool
	Interpolate   bool
	Taper         bool
	TaperedLength int
	ColorPaths    bool
	ShowForces    bool
	Paused        bool
}

func DefaultSettings() Settings {
	return Settings{TaperedLength: physics.DefaultTaperedLength}
}

func (s Settings) PathOptions() physics.PathOptions {
	return physics.PathOptions{
		Interpolated:  s.Interpolate,
		Tapered:       s.Taper,
		TaperedLength: s.TaperedLength,
	}
}

func ClampTaperedLength(n int) int {
	return min(max(n, 0), MaxTaperedLength)
}
