// Package gateway executes queries against a warehouse on behalf of the
// validator. Implementations only move rows; they never judge them.
package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/rewritecheck/resultset"
)

// DefaultTimeout bounds a single Execute call when the request sets none.
const DefaultTimeout = 300 * time.Second

type Request struct {
	Query string
	// DryRun validates the query without reading any rows.
	DryRun  bool
	Timeout time.Duration
	// RowLimit caps the rows read. Zero reads every row.
	RowLimit int
}

type Stats struct {
	Elapsed time.Duration
}

type Result struct {
	ResultSet resultset.ResultSet
	RowCount  int
	// Truncated is set when more than RowLimit rows were available.
	Truncated bool
	Stats     Stats
}

type Gateway interface {
	Execute(ctx context.Context, req Request) (Result, error)
}

// Cloner is implemented by gateways whose underlying connection cannot be
// shared between goroutines.
type Cloner interface {
	Clone(ctx context.Context) (Gateway, error)
	Close(ctx context.Context) error
}

type ErrorKind int

const (
	KindSyntax ErrorKind = iota + 1
	KindExecution
	KindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindExecution:
		return "execution"
	case KindTimeout:
		return "timeout"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is returned by Execute for every failure of the query itself.
type Error struct {
	Kind  ErrorKind
	Query string
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %s", e.Kind, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// AsError extracts the *Error in err's chain, wrapping any other error as an
// execution error.
func AsError(err error, query string) *Error {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr
	}
	return &Error{Kind: KindExecution, Query: query, Cause: err}
}

// classify turns err into an *Error, reporting a timeout when ctx's deadline
// passed.
func classify(ctx context.Context, kind ErrorKind, query string, err error) error {
	if err == nil {
		return nil
	}
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Query: query, Cause: err}
	}
	return &Error{Kind: kind, Query: query, Cause: err}
}

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultTimeout
	}
	return d
}
