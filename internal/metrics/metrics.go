// Package metrics observes simulation snapshots and reduces them to scalar
// diagnostics such as total energy and momentum.
package metrics

import (
	"sync"

	"github.com/san-kum/gravsim/internal/sim"
)

type Metric interface {
	Name() string
	Observe(snap sim.Snapshot)
	Value() float64
	Reset()
}

// Set fans every tick out to its metrics and keeps a bounded history of
// each value. It is safe to read while a simulation goroutine observes.
type Set struct {
	mu      sync.Mutex
	metrics []Metric
	history map[string][]float64
	limit   int
}

// NewSet keeps up to limit historical values per metric; 0 keeps none.
func NewSet(limit int, metrics ...Metric) *Set {
	return &Set{
		metrics: metrics,
		history: make(map[string][]float64, len(metrics)),
		limit:   limit,
	}
}

// Standard returns the diagnostics reported by the CLI.
func Standard() []Metric {
	return []Metric{
		NewKineticEnergy(),
		NewPotentialEnergy(),
		NewEnergyDrift(),
		NewMomentum(),
		NewCentroidDrift(),
		NewBounded(2000),
	}
}

func (s *Set) OnTick(snap sim.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.metrics {
		m.Observe(snap)
		if s.limit == 0 {
			continue
		}
		h := append(s.history[m.Name()], m.Value())
		if len(h) > s.limit {
			h = h[len(h)-s.limit:]
		}
		s.history[m.Name()] = h
	}
}

// Values returns the current value of every metric by name.
func (s *Set) Values() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// Names lists metrics in registration order.
func (s *Set) Names() []string {
	names := make([]string, len(s.metrics))
	for i, m := range s.metrics {
		names[i] = m.Name()
	}
	return names
}

// History returns a copy of the recorded values for name, oldest first.
func (s *Set) History(name string) []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]float64(nil), s.history[name]...)
}

func (s *Set) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.metrics {
		m.Reset()
	}
	clear(s.history)
}

var _ sim.Observer = (*Set)(nil)
