package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/rewritecheck/resultset"
)

// FakeResponse is what a Fake answers for one query text.
type FakeResponse struct {
	ResultSet resultset.ResultSet
	// DryRunErr fails dry runs. Err fails executions.
	DryRunErr error
	Err       error
	// Delay is slept before answering, and counts towards the timeout.
	Delay   time.Duration
	Elapsed time.Duration
}

// Fake is an in-memory Gateway keyed by query text. It is safe for
// concurrent use.
type Fake struct {
	mu        sync.Mutex
	responses map[string]FakeResponse
	calls     []Request
}

var _ Gateway = (*Fake)(nil)

func NewFake() *Fake {
	return &Fake{responses: map[string]FakeResponse{}}
}

// Set answers query with rs.
func (f *Fake) Set(query string, rs resultset.ResultSet) *Fake {
	return f.SetResponse(query, FakeResponse{ResultSet: rs})
}

func (f *Fake) SetResponse(query string, resp FakeResponse) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[query] = resp
	return f
}

// Calls returns the requests received so far, in order.
func (f *Fake) Calls() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.calls...)
}

func (f *Fake) Execute(ctx context.Context, req Request) (Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	resp, ok := f.responses[req.Query]
	f.mu.Unlock()

	if !ok {
		return Result{}, &Error{
			Kind:  KindExecution,
			Query: req.Query,
			Cause: errors.Newf("no response registered for query %q", req.Query),
		}
	}

	ctx, cancel := context.WithTimeout(ctx, timeoutOrDefault(req.Timeout))
	defer cancel()
	if resp.Delay > 0 {
		t := time.NewTimer(resp.Delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return Result{}, classify(ctx, KindExecution, req.Query, ctx.Err())
		case <-t.C:
		}
	}

	if req.DryRun {
		if resp.DryRunErr != nil {
			return Result{}, classify(ctx, KindExecution, req.Query, resp.DryRunErr)
		}
		return Result{}, nil
	}
	if resp.Err != nil {
		return Result{}, classify(ctx, KindExecution, req.Query, resp.Err)
	}

	rs := resp.ResultSet
	truncated := false
	if req.RowLimit > 0 && rs.NumRows() > req.RowLimit {
		rows := rs.Rows()[:req.RowLimit]
		var err error
		if rs, err = resultset.New(rs.Columns(), rows); err != nil {
			return Result{}, errors.NewAssertionErrorWithWrappedErrf(err, "truncating result set")
		}
		truncated = true
	}
	return Result{
		ResultSet: rs,
		RowCount:  rs.NumRows(),
		Truncated: truncated,
		Stats:     Stats{Elapsed: resp.Elapsed + resp.Delay},
	}, nil
}
