package viz

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-logr/logr"

	"github.com/san-kum/gravsim/internal/clock"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/sim"
)

// Run opens the interactive front end. The scheduler steps s at fps in its
// own goroutine and posts every frame to the program; Run returns when the
// user quits or ctx is cancelled.
func Run(ctx context.Context, s *sim.Simulation, set *metrics.Set, fps int, log logr.Logger, opts ...Option) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts = append([]Option{WithLogger(log)}, opts...)
	m := NewModel(s, set, opts...)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	var sched *clock.Scheduler
	sched, err := clock.New(fps,
		func(dt float64) {
			if err := s.Step(dt); err != nil {
				log.V(1).Info("tick completed with errors", "error", err.Error())
			}
		},
		func() {
			snap := s.Snapshot()
			if set != nil {
				set.OnTick(snap)
			}
			for _, o := range m.observers {
				o.OnTick(snap)
			}
			p.Send(FrameMsg{Snapshot: snap, FPS: sched.FPS()})
		},
		clock.WithLogger(log.WithName("clock")),
	)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()

	_, err = p.Run()
	cancel()
	<-done
	return err
}
