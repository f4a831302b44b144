package validate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	comparisonsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rewritecheck",
		Subsystem: "validate",
		Name:      "comparisons_total",
		Help:      "Candidates validated, by result.",
	}, []string{"result"})
	comparisonDurationMetric = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "rewritecheck",
		Subsystem: "validate",
		Name:      "comparison_duration_seconds",
		Help:      "Time taken to validate a candidate, including query execution.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
	})
	runningMetric = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "rewritecheck",
		Subsystem: "validate",
		Name:      "running",
		Help:      "Number of validations in progress.",
	})
)

const (
	resultPass  = "pass"
	resultFail  = "fail"
	resultError = "error"
)

func init() {
	// Initialise each metric by default.
	for _, s := range []string{resultPass, resultFail, resultError} {
		comparisonsMetric.WithLabelValues(s)
	}
}
