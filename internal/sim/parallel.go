package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/san-kum/turb2d/internal/dynamo"
)

// Ensemble runs independent realisations of the same configuration that
// differ only in their seed. Each member owns its own forcing generator.
type Ensemble struct {
	base    Config
	numRuns int
	seed    int64
	sinkFor func(member int, seed int64) (dynamo.Sink, error)
}

// NewEnsemble prepares numRuns members seeded seedStart, seedStart+1, ...
// sinkFor may be nil, in which case samples are discarded.
func NewEnsemble(cfg Config, numRuns int, seedStart int64, sinkFor func(member int, seed int64) (dynamo.Sink, error)) *Ensemble {
	return &Ensemble{base: cfg, numRuns: numRuns, seed: seedStart, sinkFor: sinkFor}
}

// Member is the outcome of one ensemble realisation. Err is nil when the
// member ran to its stop condition.
type Member struct {
	Seed   int64
	Result *dynamo.Result
	Err    error
}

// Run executes every member concurrently and returns their outcomes in
// member order. The returned error joins the failures of all members that
// did not complete; it is nil only when every member succeeded.
func (e *Ensemble) Run(ctx context.Context) ([]Member, error) {
	members := make([]Member, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			m := &members[idx]
			m.Seed = e.seed + int64(idx)
			cfg := e.base
			cfg.Forcing.Seed = m.Seed
			cfg.Initial.Seed = m.Seed
			cfg.LogCadence = 0

			var sink dynamo.Sink
			if e.sinkFor != nil {
				var err error
				if sink, err = e.sinkFor(idx, m.Seed); err != nil {
					m.Err = err
					return
				}
			}

			s, err := New(cfg, sink)
			if err != nil {
				m.Err = err
				return
			}
			m.Result, m.Err = s.Run(ctx)
		}(i)
	}

	wg.Wait()

	var errs []error
	for i, m := range members {
		if m.Err != nil {
			errs = append(errs, fmt.Errorf("member %d (seed %d): %w", i, m.Seed, m.Err))
		}
	}
	return members, errors.Join(errs...)
}
