package sim

import (
	"math"
	"testing"

	"github.com/san-kum/gravsim/internal/geom"
)

func benchSimulation(b *testing.B, n int, trace bool) *Simulation {
	b.Helper()
	params := DefaultParams()
	params.BodyLimit = 0
	settings := DefaultSettings()
	settings.Trace = trace
	settings.Interpolate = trace
	settings.Taper = trace

	s := New(params, settings)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		pos := geom.Position{X: 500 + 300*math.Cos(theta), Y: 500 + 300*math.Sin(theta)}
		if _, err := s.AddBody(5, pos, geom.FromPolar(1, theta+math.Pi/2)); err != nil {
			b.Fatal(err)
		}
	}
	return s
}

func BenchmarkStep25(b *testing.B) {
	s := benchSimulation(b, 25, false)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Step(1)
	}
}

func BenchmarkStep100(b *testing.B) {
	s := benchSimulation(b, 100, false)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Step(1)
	}
}

func BenchmarkStepTraced(b *testing.B) {
	s := benchSimulation(b, 25, true)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Step(1)
	}
}
