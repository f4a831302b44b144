package validate

import (
	"context"
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/rewritecheck/compare"
	"github.com/cockroachdb/rewritecheck/gateway"
	"github.com/cockroachdb/rewritecheck/report"
	"github.com/cockroachdb/rewritecheck/validate/inconsistency"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const DefaultConcurrency = 4

type BatchOpt func(*batchOpts)

type batchOpts struct {
	concurrency         int
	candidatesPerSecond float64
}

func (o batchOpts) rateLimit() rate.Limit {
	if o.candidatesPerSecond <= 0 {
		return rate.Inf
	}
	return rate.Limit(o.candidatesPerSecond)
}

// WithConcurrency sets the number of candidates validated at a time.
func WithConcurrency(c int) BatchOpt {
	return func(o *batchOpts) {
		o.concurrency = c
	}
}

// WithCandidatesPerSecond limits how fast validations start. Zero is
// unlimited.
func WithCandidatesPerSecond(c float64) BatchOpt {
	return func(o *batchOpts) {
		o.candidatesPerSecond = c
	}
}

// Batch validates candidates concurrently, returning an outcome for each
// candidate in the same order.
//
// If ctx is done before every candidate is validated, Batch stops waiting and
// returns ctx's error. Candidates still outstanding then get a failed verdict.
func Batch(
	ctx context.Context, v *Validator, candidates []Candidate, inOpts ...BatchOpt,
) ([]Outcome, error) {
	opts := batchOpts{concurrency: DefaultConcurrency}
	for _, applyOpt := range inOpts {
		applyOpt(&opts)
	}
	if err := v.opts.policy.Validate(); err != nil {
		return nil, err
	}
	numWorkers := opts.concurrency
	if numWorkers <= 0 {
		numWorkers = DefaultConcurrency
	}
	if numWorkers > len(candidates) {
		numWorkers = len(candidates)
	}
	limiter := rate.NewLimiter(opts.rateLimit(), 1)

	var mu sync.Mutex
	outcomes := make([]Outcome, len(candidates))
	finished := make([]bool, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	workQueue := make(chan int)
	for workerIdx := 0; workerIdx < numWorkers; workerIdx++ {
		g.Go(func() error {
			wv, cleanup, err := v.forWorker(gctx)
			if err != nil {
				return err
			}
			defer cleanup()

			for idx := range workQueue {
				if err := limiter.Wait(gctx); err != nil {
					return err
				}
				c := candidates[idx]
				v.reporter.Report(inconsistency.StatusReport{
					Info: fmt.Sprintf("validating %s (%d/%d)", c.Name, idx+1, len(candidates)),
				})
				out, err := wv.Validate(gctx, c)
				if err != nil {
					return err
				}
				mu.Lock()
				outcomes[idx] = out
				finished[idx] = true
				mu.Unlock()
			}
			return nil
		})
	}
	g.Go(func() error {
		defer close(workQueue)
		for idx := range candidates {
			select {
			case workQueue <- idx:
			case <-gctx.Done():
				return nil
			}
		}
		return nil
	})

	waitErr := make(chan error, 1)
	go func() { waitErr <- g.Wait() }()
	var err error
	select {
	case err = <-waitErr:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err == nil {
		err = ctx.Err()
	}

	mu.Lock()
	defer mu.Unlock()
	ret := make([]Outcome, len(candidates))
	for i, c := range candidates {
		if finished[i] {
			ret[i] = outcomes[i]
			continue
		}
		msg := "validation abandoned"
		if err != nil {
			msg += ": " + err.Error()
		}
		verdict := compare.FailedVerdict(compare.Failure{
			Kind:    compare.ExecutionError,
			Stage:   "batch",
			Message: msg,
		})
		ret[i] = Outcome{
			Candidate: c,
			Verdict:   verdict,
			Report:    report.Render(verdict, emptyResult, emptyResult, 0),
		}
	}
	return ret, err
}

// forWorker returns a Validator for use by a single goroutine, with its own
// gateway connection when the gateway requires one.
func (v *Validator) forWorker(ctx context.Context) (*Validator, func(), error) {
	c, ok := v.gw.(gateway.Cloner)
	if !ok {
		return v, func() {}, nil
	}
	gw, err := c.Clone(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "error establishing connection to validate")
	}
	return v.withGateway(gw), func() {
		if closer, ok := gw.(gateway.Cloner); ok {
			_ = closer.Close(ctx)
		}
	}, nil
}
