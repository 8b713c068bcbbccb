package metrics

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/gravsim/internal/geom"
	"github.com/san-kum/gravsim/internal/sim"
)

func pair(t *testing.T, v geom.Vector) *sim.Simulation {
	t.Helper()
	s := sim.New(sim.DefaultParams(), sim.DefaultSettings())
	if _, err := s.AddBody(10, geom.Position{X: 0, Y: 0}, v); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddBody(10, geom.Position{X: 100, Y: 0}, v.Inverse()); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestKineticAndPotential(t *testing.T) {
	snap := pair(t, geom.FromPolar(2, math.Pi/2)).Snapshot()

	if ke := Kinetic(snap); math.Abs(ke-400) > 1e-9 {
		t.Errorf("expected kinetic energy 400, got %v", ke)
	}
	if pe := Potential(snap); math.Abs(pe+100) > 1e-9 {
		t.Errorf("expected potential energy -100, got %v", pe)
	}
}

func TestPotentialFloorsDistance(t *testing.T) {
	s := sim.New(sim.DefaultParams(), sim.DefaultSettings())
	for i := 0; i < 2; i++ {
		if _, err := s.AddBody(1, geom.Position{X: 5, Y: 5}, geom.Vector{}); err != nil {
			t.Fatal(err)
		}
	}
	if pe := Potential(s.Snapshot()); pe != -1 {
		t.Errorf("expected potential -1 for coincident unit bodies, got %v", pe)
	}
}

func TestMomentumCancels(t *testing.T) {
	snap := pair(t, geom.FromPolar(3, 0.7)).Snapshot()
	if p := TotalMomentum(snap).Magnitude(); p > 1e-9 {
		t.Errorf("expected zero momentum, got %v", p)
	}
}

func TestEnergyDrift(t *testing.T) {
	s := pair(t, geom.Vector{})
	drift := NewEnergyDrift()

	drift.Observe(s.Snapshot())
	if drift.Value() != 0 {
		t.Errorf("expected zero drift after one sample, got %v", drift.Value())
	}
	if drift.Current() != -100 {
		t.Errorf("expected total energy -100, got %v", drift.Current())
	}

	drift.Reset()
	if drift.Value() != 0 || drift.Current() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestCentroidDrift(t *testing.T) {
	s := sim.New(sim.DefaultParams(), sim.DefaultSettings())
	if _, err := s.AddBody(10, geom.Position{}, geom.FromPolar(1, 0)); err != nil {
		t.Fatal(err)
	}
	c := NewCentroidDrift()
	c.Observe(s.Snapshot())
	for i := 0; i < 4; i++ {
		if err := s.Step(1); err != nil {
			t.Fatal(err)
		}
	}
	c.Observe(s.Snapshot())
	if math.Abs(c.Value()-4) > 1e-9 {
		t.Errorf("expected drift 4, got %v", c.Value())
	}
}

func TestBounded(t *testing.T) {
	b := NewBounded(10)
	if b.Value() != 1 {
		t.Errorf("expected 1 with no samples, got %v", b.Value())
	}

	b.Observe(pair(t, geom.Vector{}).Snapshot())
	if b.Value() != 0 {
		t.Errorf("expected 0 for bodies 50 from centroid, got %v", b.Value())
	}
}

func TestSetHistory(t *testing.T) {
	s := pair(t, geom.Vector{})
	set := NewSet(3, Standard()...)
	if err := s.Run(context.Background(), 5, 1, set); err != nil {
		t.Fatal(err)
	}

	for _, name := range set.Names() {
		if h := set.History(name); len(h) != 3 {
			t.Errorf("%s: expected 3 history values, got %d", name, len(h))
		}
	}
	if _, ok := set.Values()["kinetic_energy"]; !ok {
		t.Error("missing kinetic_energy value")
	}

	set.Reset()
	if h := set.History("kinetic_energy"); len(h) != 0 {
		t.Errorf("expected empty history after reset, got %d", len(h))
	}
}
