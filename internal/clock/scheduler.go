// Package clock drives the simulation at a fixed frame rate.
//
// The scheduler measures how long each frame really took and hands the
// update callback the ratio of that to the target interval. Callers must
// scale every stateful change by this ratio so that a slow machine advances
// the simulation by the same amount per wall-clock second as a fast one.
package clock

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
)

const DefaultFPS = 60

var (
	ErrInvalidRate = errors.New("clock: frame rate must be positive")
	ErrNoUpdate    = errors.New("clock: update callback is required")
	ErrRunning     = errors.New("clock: scheduler already running")
)

// UpdateFunc advances the simulation by dt target frames.
type UpdateFunc func(dt float64)

type RenderFunc func()

// TimeSource abstracts the wall clock so tests can run frames instantly.
type TimeSource interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemTime struct{}

func (systemTime) Now() time.Time                         { return time.Now() }
func (systemTime) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemTime is the monotonic wall clock.
var SystemTime TimeSource = systemTime{}

type Option func(*Scheduler)

func WithTimeSource(ts TimeSource) Option {
	return func(s *Scheduler) { s.clock = ts }
}

func WithLogger(l logr.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

type Scheduler struct {
	interval time.Duration
	update   UpdateFunc
	render   RenderFunc
	clock    TimeSource
	log      logr.Logger

	running atomic.Bool
	ticks   atomic.Uint64
	fps     atomic.Int64
}

// New creates a scheduler targeting fps frames per second. render may be nil.
func New(fps int, update UpdateFunc, render RenderFunc, opts ...Option) (*Scheduler, error) {
	if fps <= 0 {
		return nil, ErrInvalidRate
	}
	if update == nil {
		return nil, ErrNoUpdate
	}
	s := &Scheduler{
		interval: time.Second / time.Duration(fps),
		update:   update,
		render:   render,
		clock:    SystemTime,
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DeltaTime is the ratio of elapsed to the target frame interval.
func DeltaTime(elapsed, interval time.Duration) float64 {
	return float64(elapsed) / float64(interval)
}

func (s *Scheduler) Interval() time.Duration { return s.interval }

// Ticks counts completed frames since the scheduler was created.
func (s *Scheduler) Ticks() uint64 { return s.ticks.Load() }

// FPS reports the frames completed during the last full second.
func (s *Scheduler) FPS() int { return int(s.fps.Load()) }

func (s *Scheduler) Running() bool { return s.running.Load() }

// Run calls update then render once per frame until ctx is done, returning
// the context's error. A frame that overruns its interval starts the next one
// immediately; the overrun shows up in the next delta time.
func (s *Scheduler) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer s.running.Store(false)

	last := s.clock.Now()
	windowStart := last
	var windowFrames int64

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		frameStart := s.clock.Now()
		elapsed := frameStart.Sub(last)
		last = frameStart

		s.update(DeltaTime(elapsed, s.interval))
		if s.render != nil {
			s.render()
		}
		s.ticks.Add(1)

		windowFrames++
		if frameStart.Sub(windowStart) >= time.Second {
			s.fps.Store(windowFrames)
			windowFrames = 0
			windowStart = frameStart
		}

		remaining := s.interval - s.clock.Now().Sub(frameStart)
		if remaining <= 0 {
			s.log.V(1).Info("frame overran interval", "interval", s.interval, "overrun", -remaining)
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.clock.After(remaining):
		}
	}
}
