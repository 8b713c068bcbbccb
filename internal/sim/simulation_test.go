package sim

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gravsim/internal/geom"
	"github.com/san-kum/gravsim/internal/physics"
)

func at(x, y float64) geom.Position { return geom.Position{X: x, Y: y} }

var _ = Describe("Simulation", func() {
	var s *Simulation

	BeforeEach(func() {
		s = New(DefaultParams(), DefaultSettings(), WithSeed(7))
	})

	Describe("adding bodies", func() {
		It("assigns increasing IDs", func() {
			a, err := s.AddBody(10, at(0, 0), geom.Vector{})
			Expect(err).NotTo(HaveOccurred())
			b, err := s.AddBody(10, at(50, 0), geom.Vector{})
			Expect(err).NotTo(HaveOccurred())
			Expect(b).To(BeNumerically(">", a))
			Expect(s.Len()).To(Equal(2))
		})

		It("rejects invalid bodies", func() {
			_, err := s.AddBody(-1, at(0, 0), geom.Vector{})
			Expect(err).To(MatchError(ErrInvalidBody))
			_, err = s.AddBody(5, at(math.NaN(), 0), geom.Vector{})
			Expect(err).To(MatchError(ErrInvalidBody))
			_, err = s.AddBody(5, at(0, 0), geom.FromPolar(math.Inf(1), 0))
			Expect(err).To(MatchError(ErrInvalidBody))
		})

		It("enforces the body limit", func() {
			params := DefaultParams()
			params.BodyLimit = 2
			s = New(params, DefaultSettings())
			for i := 0; i < 2; i++ {
				_, err := s.AddBody(1, at(float64(i*10), 0), geom.Vector{})
				Expect(err).NotTo(HaveOccurred())
			}
			_, err := s.AddBody(1, at(100, 0), geom.Vector{})
			Expect(err).To(MatchError(ErrBodyLimit))
		})

		It("drops insertions while a tick holds the body set", func() {
			s.updating.Store(true)
			_, err := s.AddBody(10, at(0, 0), geom.Vector{})
			Expect(err).To(MatchError(ErrTickInProgress))
			Expect(s.Reset()).To(MatchError(ErrTickInProgress))
			Expect(s.RemoveBody(1)).To(MatchError(ErrTickInProgress))
			s.updating.Store(false)

			Expect(s.Len()).To(BeZero())
		})
	})

	Describe("launching", func() {
		It("gives a click without drag zero velocity", func() {
			id, err := s.Launch(20, at(300, 300), at(300, 300))
			Expect(err).NotTo(HaveOccurred())

			b, ok := s.Snapshot().Body(id)
			Expect(ok).To(BeTrue())
			Expect(b.Velocity.IsZero()).To(BeTrue())
		})

		It("scales the drag into an initial velocity", func() {
			v := LaunchVelocity(at(0, 0), at(300, -400), DefaultVelocityScale)
			Expect(v.Magnitude()).To(BeNumerically("~", 5, 1e-9))
			Expect(v.Theta()).To(BeNumerically("~", math.Atan2(400, 300), 1e-9))
		})
	})

	Describe("stepping", func() {
		It("moves a free body by velocity times delta time", func() {
			id, _ := s.AddBody(10, at(100, 100), geom.FromPolar(2, math.Pi/2))
			Expect(s.Step(2.5)).To(Succeed())

			b, _ := s.Snapshot().Body(id)
			Expect(b.Position.X).To(BeNumerically("~", 100, 1e-12))
			Expect(b.Position.Y).To(BeNumerically("~", 95, 1e-12))
		})

		It("does not move anything with a zero delta", func() {
			a, _ := s.AddBody(10, at(0, 0), geom.FromPolar(3, 1))
			_, _ = s.AddBody(10, at(100, 0), geom.Vector{})
			Expect(s.Step(0)).To(Succeed())

			b, _ := s.Snapshot().Body(a)
			Expect(b.Position).To(Equal(at(0, 0)))
		})

		It("rejects a negative or non-finite delta", func() {
			Expect(s.Step(-1)).To(MatchError(ErrInvalidDelta))
			Expect(s.Step(math.NaN())).To(MatchError(ErrInvalidDelta))
		})

		It("pulls three equal bodies towards the others' centroid", func() {
			h := 200 * math.Sqrt(3) / 2
			for _, p := range []geom.Position{at(400, 400), at(600, 400), at(500, 400-h)} {
				_, err := s.AddBody(10, p, geom.Vector{})
				Expect(err).NotTo(HaveOccurred())
			}

			Expect(s.Run(context.Background(), 100, 1)).To(Succeed())

			snap := s.Snapshot()
			for _, b := range snap.Bodies {
				var cx, cy float64
				for _, o := range snap.Bodies {
					if o.ID != b.ID {
						cx += o.Position.X / 2
						cy += o.Position.Y / 2
					}
				}
				toward := geom.Between(b.Position, at(cx, cy))
				Expect(math.Cos(b.NetForce.Theta() - toward.Theta())).To(BeNumerically(">", 0.99),
					"body %d net force %v vs centroid direction %v", b.ID, b.NetForce, toward)
				Expect(b.Velocity.Magnitude()).To(BeNumerically(">", 0))
			}
		})

		It("keeps contacting bodies from moving into each other", func() {
			a, _ := s.AddBody(40, at(100, 100), geom.FromPolar(4, 0))
			b, _ := s.AddBody(40, at(130, 100), geom.FromPolar(4, math.Pi))

			for i := 0; i < 5; i++ {
				before := s.Snapshot()
				Expect(s.Step(1)).To(Succeed())
				after := s.Snapshot()

				ba, _ := before.Body(a)
				aa, _ := after.Body(a)
				bb, _ := before.Body(b)
				ab, _ := after.Body(b)
				Expect(aa.Position.X).To(BeNumerically("<=", ba.Position.X))
				Expect(ab.Position.X).To(BeNumerically(">=", bb.Position.X))
			}
		})

		It("leaves bodies added at the same point in place", func() {
			a, _ := s.AddBody(10, at(100, 100), geom.Vector{})
			b, _ := s.AddBody(10, at(100, 100), geom.Vector{})

			for i := 0; i < 60; i++ {
				Expect(s.Step(1)).To(Succeed())
			}

			snap := s.Snapshot()
			for _, id := range []physics.BodyID{a, b} {
				body, ok := snap.Body(id)
				Expect(ok).To(BeTrue())
				Expect(body.Position).To(Equal(at(100, 100)))
				Expect(body.Velocity.IsZero()).To(BeTrue())
			}
		})

		It("rolls back a body whose update overflows and keeps the rest", func() {
			bad, _ := s.AddBody(1, at(math.MaxFloat64, 0), geom.FromPolar(math.MaxFloat64, 0))
			good, _ := s.AddBody(1, at(0, 0), geom.FromPolar(1, 0))

			err := s.Step(1)
			Expect(err).To(MatchError(ErrInvalidState))

			var bodyErr *BodyError
			Expect(errors.As(err, &bodyErr)).To(BeTrue())
			Expect(bodyErr.ID).To(Equal(bad))
			Expect(bodyErr.Tick).To(Equal(uint64(1)))

			snap := s.Snapshot()
			b, _ := snap.Body(bad)
			Expect(b.Position.X).To(Equal(math.MaxFloat64))
			g, _ := snap.Body(good)
			Expect(g.Position.X).To(BeNumerically("~", 1, 1e-9))
		})
	})

	Describe("tracing", func() {
		var id physics.BodyID

		BeforeEach(func() {
			id, _ = s.AddBody(5, at(0, 0), geom.FromPolar(3, 0))
			s.SetTrace(true)
		})

		It("records the position before each update", func() {
			for i := 0; i < 3; i++ {
				Expect(s.Step(1)).To(Succeed())
			}
			b, _ := s.Snapshot().Body(id)
			Expect(b.Path).To(Equal([]geom.Position{at(0, 0), at(3, 0), at(6, 0)}))
		})

		It("clears paths when tracing is switched off", func() {
			Expect(s.Step(1)).To(Succeed())
			s.SetTrace(false)
			Expect(s.Step(1)).To(Succeed())

			b, _ := s.Snapshot().Body(id)
			Expect(b.Path).To(BeEmpty())
		})

		It("tapers every path to the shared length", func() {
			s.SetTaper(true)
			Expect(s.SetTaperedLength(4)).To(Equal(4))
			for i := 0; i < 10; i++ {
				Expect(s.Step(1)).To(Succeed())
			}
			b, _ := s.Snapshot().Body(id)
			Expect(b.Path).To(HaveLen(4))
			Expect(b.Path[3]).To(Equal(at(27, 0)))
		})

		It("keeps tracing while paused without moving bodies", func() {
			s.SetPaused(true)
			for i := 0; i < 3; i++ {
				Expect(s.Step(1)).To(Succeed())
			}
			snap := s.Snapshot()
			b, _ := snap.Body(id)
			Expect(b.Position).To(Equal(at(0, 0)))
			Expect(b.Path).To(HaveLen(3))
			Expect(snap.Elapsed).To(BeZero())
			Expect(s.TogglePause()).To(BeFalse())
		})
	})

	Describe("settings", func() {
		It("clamps the tapered length", func() {
			Expect(s.SetTaperedLength(-3)).To(Equal(0))
			Expect(s.SetTaperedLength(500)).To(Equal(MaxTaperedLength))
			Expect(s.Settings().TaperedLength).To(Equal(MaxTaperedLength))
		})
	})

	Describe("removal", func() {
		It("forgets removed bodies on the next tick", func() {
			a, _ := s.AddBody(10, at(0, 0), geom.Vector{})
			b, _ := s.AddBody(10, at(100, 0), geom.Vector{})
			Expect(s.Step(1)).To(Succeed())

			Expect(s.RemoveBody(b)).To(Succeed())
			Expect(s.RemoveBody(b)).To(MatchError(ErrUnknownBody))
			Expect(s.Step(1)).To(Succeed())

			snap := s.Snapshot()
			Expect(snap.Bodies).To(HaveLen(1))
			ba, _ := snap.Body(a)
			Expect(ba.NetForce.IsZero()).To(BeTrue())
		})

		It("empties the simulation on reset", func() {
			_, _ = s.AddBody(10, at(0, 0), geom.Vector{})
			Expect(s.Step(1)).To(Succeed())
			Expect(s.Reset()).To(Succeed())

			snap := s.Snapshot()
			Expect(snap.Bodies).To(BeEmpty())
			Expect(snap.Tick).To(BeZero())
		})
	})

	Describe("snapshots", func() {
		It("are detached from the live bodies", func() {
			s.SetTrace(true)
			id, _ := s.AddBody(10, at(0, 0), geom.FromPolar(1, 0))
			Expect(s.Step(1)).To(Succeed())

			snap := s.Snapshot()
			snap.Bodies[0].Path[0] = at(999, 999)

			b, _ := s.Snapshot().Body(id)
			Expect(b.Path[0]).To(Equal(at(0, 0)))
		})

		It("computes a mass-weighted centroid", func() {
			_, _ = s.AddBody(1, at(0, 0), geom.Vector{})
			_, _ = s.AddBody(3, at(100, 0), geom.Vector{})
			c := s.Snapshot().Centroid()
			Expect(c.X).To(BeNumerically("~", 90, 1e-9))
			Expect(c.Y).To(BeNumerically("~", 0, 1e-9))
		})
	})
})

var _ = Describe("Ensemble", func() {
	It("runs independent members and returns one snapshot each", func() {
		e := NewEnsemble(DefaultParams(), DefaultSettings(), 3, 100)
		snaps, err := e.Run(context.Background(), 20, 1, func(s *Simulation) error {
			if _, err := s.AddBody(10, at(0, 0), geom.Vector{}); err != nil {
				return err
			}
			_, err := s.AddBody(10, at(200, 0), geom.Vector{})
			return err
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(snaps).To(HaveLen(3))

		for _, snap := range snaps {
			Expect(snap.Tick).To(Equal(uint64(20)))
			Expect(snap.Bodies[0].Position).To(Equal(snaps[0].Bodies[0].Position))
		}
		Expect(snaps[0].Bodies[0].Color).NotTo(Equal(snaps[1].Bodies[0].Color))
	})

	It("keeps members whose body updates were rolled back", func() {
		e := NewEnsemble(DefaultParams(), DefaultSettings(), 3, 0)
		snaps, err := e.Run(context.Background(), 5, 1, func(s *Simulation) error {
			if _, err := s.AddBody(1, at(math.MaxFloat64, 0), geom.FromPolar(math.MaxFloat64, 0)); err != nil {
				return err
			}
			_, err := s.AddBody(1, at(0, 0), geom.FromPolar(1, 0))
			return err
		})

		var bodyErr *BodyError
		Expect(errors.As(err, &bodyErr)).To(BeTrue())
		Expect(err).To(MatchError(ErrInvalidState))
		Expect(snaps).To(HaveLen(3))
		for _, snap := range snaps {
			Expect(snap.Tick).To(Equal(uint64(5)))
			Expect(snap.Bodies[1].Position.X).To(BeNumerically("~", 5, 1e-9))
		}
	})

	It("stops on the first populate error", func() {
		boom := errors.New("boom")
		e := NewEnsemble(DefaultParams(), DefaultSettings(), 4, 0)
		_, err := e.Run(context.Background(), 5, 1, func(*Simulation) error { return boom })
		Expect(err).To(MatchError(boom))
	})
})
