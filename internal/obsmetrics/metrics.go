// Package obsmetrics exposes Prometheus diagnostics for the labeling and
// enumeration hot loop, the same promauto pattern
// samirrijal-bilbopass/internal/pkg/metrics uses for its HTTP and transit
// metrics, repurposed here for per-request pathfinding counters. These
// are an optional, best-effort diagnostic: the core updates them but
// never reads them back, so there is no cyclic dependency on metrics
// state (spec §5's "no global mutable state the core depends on").
package obsmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LabelPops counts priority-queue pops across all requests, a proxy
	// for labeling work done.
	LabelPops = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fasttrips",
		Subsystem: "labeler",
		Name:      "queue_pops_total",
		Help:      "Total priority-queue pops across all label searches.",
	})

	// StopProcessCount is a histogram of the final per-stop process count
	// reached per request, useful for tuning stochastic_max_stop_process_count.
	StopProcessCount = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fasttrips",
		Subsystem: "labeler",
		Name:      "stop_process_count",
		Help:      "Per-stop process count distribution at request completion.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})

	// LabelingDuration times one request's labeling phase.
	LabelingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fasttrips",
		Subsystem: "labeler",
		Name:      "duration_seconds",
		Help:      "Wall-clock time spent labeling one request.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16),
	})

	// EnumerationAttempts counts dead-end restarts during path sampling.
	EnumerationAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fasttrips",
		Subsystem: "enumerator",
		Name:      "attempts_total",
		Help:      "Total path-sampling attempts abandoned at a dead end.",
	})

	// NoPathFound counts requests that failed to find any path.
	NoPathFound = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fasttrips",
		Subsystem: "dispatch",
		Name:      "no_path_found_total",
		Help:      "Total requests that completed with no feasible path.",
	})
)
