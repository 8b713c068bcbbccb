package sim

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/go-logr/logr"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/gravsim/internal/geom"
	"github.com/san-kum/gravsim/internal/physics"
)

type Option func(*Simulation)

func WithLogger(l logr.Logger) Option {
	return func(s *Simulation) { s.log = l }
}

// WithSeed fixes the RNG used to colour new bodies.
func WithSeed(seed int64) Option {
	return func(s *Simulation) { s.rng = rand.New(rand.NewSource(seed)) }
}

// Observer is notified with a snapshot after every tick of Run.
type Observer interface {
	OnTick(snap Snapshot)
}

// Simulation owns the bodies and advances them one tick at a time.
//
// Step holds the body set for the whole tick. Insertion and removal requested
// during a tick are rejected with ErrTickInProgress; at any other time they
// wait for in-flight snapshots to finish.
type Simulation struct {
	mu       sync.RWMutex
	updating atomic.Bool

	params   Params
	settings Settings

	bodies []*physics.Body
	index  map[physics.BodyID]*physics.Body
	nextID physics.BodyID

	tick    uint64
	elapsed float64

	rng *rand.Rand
	log logr.Logger
}

func New(params Params, settings Settings, opts ...Option) *Simulation {
	settings.TaperedLength = ClampTaperedLength(settings.TaperedLength)
	s := &Simulation{
		params:   params,
		settings: settings,
		index:    make(map[physics.BodyID]*physics.Body),
		nextID:   1,
		rng:      rand.New(rand.NewSource(1)),
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddBody inserts a body with the given radius, screen position and initial
// velocity.
func (s *Simulation) AddBody(radius float64, pos geom.Position, v0 geom.Vector) (physics.BodyID, error) {
	if radius < 0 || math.IsNaN(radius) || math.IsInf(radius, 0) || !pos.IsValid() || !v0.IsValid() {
		return 0, ErrInvalidBody
	}
	if s.updating.Load() {
		s.log.V(1).Info("dropped body insertion during tick", "radius", radius, "position", pos.String())
		return 0, ErrTickInProgress
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.params.BodyLimit > 0 && len(s.bodies) >= s.params.BodyLimit {
		return 0, ErrBodyLimit
	}

	id := s.nextID
	s.nextID++
	b := physics.NewBody(id, radius, pos, v0, s.randomColor())
	s.bodies = append(s.bodies, b)
	s.index[id] = b
	s.log.V(1).Info("added body", "id", id, "radius", radius, "position", pos.String(), "velocity", v0.String())
	return id, nil
}

// Launch adds a body whose initial velocity follows the drag from press to
// release.
func (s *Simulation) Launch(radius float64, press, release geom.Position) (physics.BodyID, error) {
	return s.AddBody(radius, press, LaunchVelocity(press, release, s.params.VelocityScale))
}

// LaunchVelocity scales the press→release vector. A click without a drag
// launches nothing.
func LaunchVelocity(press, release geom.Position, scale float64) geom.Vector {
	if press.Equal(release) {
		return geom.Vector{}
	}
	return geom.Between(press, release).Scale(scale)
}

func (s *Simulation) RemoveBody(id physics.BodyID) error {
	if s.updating.Load() {
		return ErrTickInProgress
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; !ok {
		return ErrUnknownBody
	}
	delete(s.index, id)
	for i, b := range s.bodies {
		if b.ID() == id {
			s.bodies = append(s.bodies[:i], s.bodies[i+1:]...)
			break
		}
	}
	return nil
}

// Reset removes every body. Tick and elapsed counters restart; IDs do not.
func (s *Simulation) Reset() error {
	if s.updating.Load() {
		return ErrTickInProgress
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bodies = nil
	s.index = make(map[physics.BodyID]*physics.Body)
	s.tick = 0
	s.elapsed = 0
	s.log.V(1).Info("simulation reset")
	return nil
}

// Step advances every body by dt target frames. For each body in insertion
// order the current position is traced, then forces, acceleration, velocity
// and position are updated. Paused simulations keep tracing but skip physics.
//
// A body whose update produces a non-finite value is rolled back; its error
// is returned joined with any others while the remaining bodies advance.
func (s *Simulation) Step(dt float64) error {
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return ErrInvalidDelta
	}

	s.mu.Lock()
	s.updating.Store(true)
	defer func() {
		s.updating.Store(false)
		s.mu.Unlock()
	}()

	s.tick++
	opts := s.settings.PathOptions()

	var errs []error
	for _, b := range s.bodies {
		path := b.Path()
		if s.settings.Trace {
			path.Configure(opts)
			path.Add(b.Position())
		} else if path.Len() > 0 {
			path.Clear()
		}

		if s.settings.Paused {
			continue
		}
		if err := s.advance(b, dt); err != nil {
			s.log.V(1).Info("body update failed", "id", b.ID(), "tick", s.tick, "error", err.Error())
			errs = append(errs, err)
		}
	}

	if !s.settings.Paused {
		s.elapsed += dt
	}
	return errors.Join(errs...)
}

func (s *Simulation) advance(b *physics.Body, dt float64) error {
	saved := b.Kinematics()

	b.UpdateForces(s.bodies, s.params.Physics)
	b.UpdateAcceleration(dt)
	b.UpdateVelocity(dt)
	b.UpdatePosition(dt, s.lookup)

	if !b.IsValid() {
		b.Restore(saved)
		return &BodyError{ID: b.ID(), Tick: s.tick, Wrapped: ErrInvalidState}
	}
	return nil
}

func (s *Simulation) lookup(id physics.BodyID) (*physics.Body, bool) {
	b, ok := s.index[id]
	return b, ok
}

// Run steps the simulation ticks times with a fixed dt, notifying observers
// after each tick. Body errors are collected, not fatal.
func (s *Simulation) Run(ctx context.Context, ticks int, dt float64, observers ...Observer) error {
	var errs []error
	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := s.Step(dt); err != nil {
			if errors.Is(err, ErrInvalidDelta) {
				return err
			}
			errs = append(errs, err)
		}

		if len(observers) == 0 {
			continue
		}
		snap := s.Snapshot()
		for _, o := range observers {
			o.OnTick(snap)
		}
	}
	return errors.Join(errs...)
}

func (s *Simulation) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bodies)
}

func (s *Simulation) Params() Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

func (s *Simulation) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *Simulation) update(fn func(*Settings)) {
	s.mu.Lock()
	fn(&s.settings)
	s.mu.Unlock()
}

// SetTrace toggles path recording. Disabling it clears every path on the
// next tick.
func (s *Simulation) SetTrace(on bool)       { s.update(func(st *Settings) { st.Trace = on }) }
func (s *Simulation) SetInterpolate(on bool) { s.update(func(st *Settings) { st.Interpolate = on }) }
func (s *Simulation) SetTaper(on bool)       { s.update(func(st *Settings) { st.Taper = on }) }
func (s *Simulation) SetColorPaths(on bool)  { s.update(func(st *Settings) { st.ColorPaths = on }) }
func (s *Simulation) SetShowForces(on bool)  { s.update(func(st *Settings) { st.ShowForces = on }) }
func (s *Simulation) SetPaused(on bool)      { s.update(func(st *Settings) { st.Paused = on }) }

// SetTaperedLength sets the shared trace length, clamped to [0, MaxTaperedLength].
func (s *Simulation) SetTaperedLength(n int) int {
	n = ClampTaperedLength(n)
	s.update(func(st *Settings) { st.TaperedLength = n })
	return n
}

func (s *Simulation) TogglePause() bool {
	var paused bool
	s.update(func(st *Settings) {
		st.Paused = !st.Paused
		paused = st.Paused
	})
	return paused
}

func (s *Simulation) randomColor() colorful.Color {
	return colorful.Hsv(s.rng.Float64()*360, 0.55+s.rng.Float64()*0.4, 0.75+s.rng.Float64()*0.25)
}
