package metrics

import (
	"math"

	"github.com/san-kum/gravsim/internal/sim"
)

// Kinetic is Σ ½·m·|v|² over all bodies.
func Kinetic(snap sim.Snapshot) float64 {
	var ke float64
	for _, b := range snap.Bodies {
		v := b.Velocity.Magnitude()
		ke += 0.5 * b.Mass * v * v
	}
	return ke
}

// Potential is the pairwise gravitational energy, using the same distance
// floor as the force law.
func Potential(snap sim.Snapshot) float64 {
	p := snap.Params.Physics
	var pe float64
	for i := 0; i < len(snap.Bodies); i++ {
		for j := i + 1; j < len(snap.Bodies); j++ {
			a, b := snap.Bodies[i], snap.Bodies[j]
			d := math.Hypot(a.Position.X-b.Position.X, a.Position.Y-b.Position.Y)
			d = math.Max(d, p.MinDistance)
			if d == 0 {
				continue
			}
			pe -= p.G * a.Mass * b.Mass / d
		}
	}
	return pe
}

type KineticEnergy struct {
	name  string
	value float64
}

func NewKineticEnergy() *KineticEnergy { return &KineticEnergy{name: "kinetic_energy"} }

func (k *KineticEnergy) Name() string              { return k.name }
func (k *KineticEnergy) Observe(snap sim.Snapshot) { k.value = Kinetic(snap) }
func (k *KineticEnergy) Value() float64            { return k.value }
func (k *KineticEnergy) Reset()                    { k.value = 0 }

type PotentialEnergy struct {
	name  string
	value float64
}

func NewPotentialEnergy() *PotentialEnergy { return &PotentialEnergy{name: "potential_energy"} }

func (p *PotentialEnergy) Name() string              { return p.name }
func (p *PotentialEnergy) Observe(snap sim.Snapshot) { p.value = Potential(snap) }
func (p *PotentialEnergy) Value() float64            { return p.value }
func (p *PotentialEnergy) Reset()                    { p.value = 0 }

// EnergyDrift tracks the largest relative change of total energy since the
// first observation.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(snap sim.Snapshot) {
	energy := Kinetic(snap) + Potential(snap)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

// Current is the total energy at the last observation.
func (e *EnergyDrift) Current() float64 {
	return e.currentEnergy
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
