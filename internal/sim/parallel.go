package sim

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// Populate fills a fresh simulation with its starting bodies.
type Populate func(s *Simulation) error

// Ensemble runs independent copies of a scenario concurrently, each with its
// own seed. Bodies are never shared between members.
type Ensemble struct {
	params    Params
	settings  Settings
	numRuns   int
	seedStart int64
	opts      []Option
}

func NewEnsemble(params Params, settings Settings, numRuns int, seedStart int64, opts ...Option) *Ensemble {
	return &Ensemble{
		params:    params,
		settings:  settings,
		numRuns:   numRuns,
		seedStart: seedStart,
		opts:      opts,
	}
}

// Run steps every member ticks times and returns their final snapshots in
// seed order. Rolled-back body updates do not stop a member; they are
// returned joined alongside the snapshots. Any other failure cancels the
// rest and no snapshots are returned.
func (e *Ensemble) Run(ctx context.Context, ticks int, dt float64, populate Populate) ([]Snapshot, error) {
	results := make([]Snapshot, e.numRuns)
	bodyErrs := make([]error, e.numRuns)
	g, ctx := errgroup.WithContext(ctx)

	for i := 0; i < e.numRuns; i++ {
		g.Go(func() error {
			opts := append(append([]Option(nil), e.opts...), WithSeed(e.seedStart+int64(i)))
			s := New(e.params, e.settings, opts...)
			if err := populate(s); err != nil {
				return err
			}
			if err := s.Run(ctx, ticks, dt); err != nil {
				var bodyErr *BodyError
				if !errors.As(err, &bodyErr) {
					return err
				}
				bodyErrs[i] = err
			}
			results[i] = s.Snapshot()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, errors.Join(bodyErrs...)
}
