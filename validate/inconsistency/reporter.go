package inconsistency

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/cockroachdb/rewritecheck/report"
	"github.com/cockroachdb/rewritecheck/reportstore"
	"github.com/rs/zerolog"
)

// Reporter receives ReportableObjects. Implementations must be safe for
// concurrent use, as batches report from several goroutines, and Close may be
// called more than once.
type Reporter interface {
	Report(obj ReportableObject)
	Close()
}

type CombinedReporter struct {
	Reporters []Reporter
}

func (c CombinedReporter) Report(obj ReportableObject) {
	for _, r := range c.Reporters {
		r.Report(obj)
	}
}

func (c CombinedReporter) Close() {
	for _, r := range c.Reporters {
		r.Close()
	}
}

// LogReporter reports to `zerolog`.
type LogReporter struct {
	zerolog.Logger
}

func (l LogReporter) Report(obj ReportableObject) {
	switch obj := obj.(type) {
	case StatusReport:
		l.Info().Msg(obj.Info)
	case MismatchingResult:
		evt := l.Warn().
			Str("candidate", obj.Candidate).
			Str("kind", obj.Kind.String()).
			Str("detail", obj.Detail)
		if obj.Column != "" {
			evt = evt.Str("column", obj.Column)
		}
		if len(obj.Cells) > 0 {
			cells := zerolog.Arr()
			for _, c := range obj.Cells {
				cells = cells.Dict(zerolog.Dict().
					Int("row", c.Row).
					Str("original", c.Original.String()).
					Str("optimized", c.Optimized.String()))
			}
			evt = evt.Array("cells", cells)
		}
		evt.Msgf("mismatching result")
	case FailedValidation:
		l.Error().
			Str("candidate", obj.Candidate).
			Str("kind", obj.Kind.String()).
			Str("stage", obj.Stage).
			Str("query", obj.Query).
			Bool("timeout", obj.Timeout).
			Msg(obj.Message)
	case CompletedValidation:
		v := obj.Report.Verdict
		evt := l.Info().
			Str("candidate", obj.Candidate).
			Str("status", string(obj.Report.Status)).
			Int("original_rows", v.OriginalRowCount).
			Int("optimized_rows", v.OptimizedRowCount).
			Int("differences", len(v.Differences))
		if v.VariancePercentage != nil {
			evt = evt.Float64("variance_percentage", *v.VariancePercentage)
		}
		if p := obj.Report.Performance; p != nil && p.Error == "" {
			evt = evt.Dur("original_avg", p.OriginalAvg).
				Dur("optimized_avg", p.OptimizedAvg).
				Float64("improvement", p.Improvement)
		}
		evt.Msg(v.Summary)
	default:
		l.Error().
			Str("type", fmt.Sprintf("%T", obj)).
			Msgf("unknown object type")
	}
}

func (l LogReporter) Close() {
}

// TextReporter writes the text report of every completed validation to an
// io.Writer, one after another. Reports arriving after Close are dropped.
type TextReporter struct {
	mu     sync.Mutex
	w      io.Writer
	logger zerolog.Logger
	closed bool
}

func NewTextReporter(w io.Writer, logger zerolog.Logger) *TextReporter {
	return &TextReporter{w: w, logger: logger}
}

func (t *TextReporter) Report(obj ReportableObject) {
	c, ok := obj.(CompletedValidation)
	if !ok {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if c.Candidate != "" {
		if _, err := fmt.Fprintf(t.w, "== %s ==\n", c.Candidate); err != nil {
			t.logger.Err(err).Msgf("error writing report")
			return
		}
	}
	if err := c.Report.WriteText(t.w); err != nil {
		t.logger.Err(err).Msgf("error writing report")
	}
}

func (t *TextReporter) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
}

// StoreReporter persists every completed validation as a JSON artifact.
type StoreReporter struct {
	Store  reportstore.Store
	Logger zerolog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

func (s StoreReporter) Report(obj ReportableObject) {
	c, ok := obj.(CompletedValidation)
	if !ok {
		return
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	a := report.NewArtifact(now(), c.Candidate, c.OriginalQuery, c.OptimizedQuery, c.Report)
	res, err := s.Store.Put(context.Background(), c.Candidate, a)
	if err != nil {
		s.Logger.Err(err).Str("candidate", c.Candidate).Msgf("error persisting report")
		return
	}
	s.Logger.Info().Str("candidate", c.Candidate).Str("url", res.URL()).Msgf("persisted report")
}

func (s StoreReporter) Close() {
}
