// Package dispatch implements CoreDispatcher, the core's public entry
// point: find_paths(request, network, weights, capacity_state, rng,
// config), orchestrating Labeler -> Enumerator -> Finalizer for one
// request and normalizing their errors to the kinds spec §7 enumerates
// (spec §4.6).
package dispatch

import (
	"log/slog"
	"time"

	"github.com/fast-trips/fast-trips-core/internal/config"
	"github.com/fast-trips/fast-trips-core/internal/cost"
	"github.com/fast-trips/fast-trips-core/internal/enumerator"
	"github.com/fast-trips/fast-trips-core/internal/finalizer"
	"github.com/fast-trips/fast-trips-core/internal/ftpath"
	"github.com/fast-trips/fast-trips-core/internal/labeler"
	"github.com/fast-trips/fast-trips-core/internal/netmodel"
	"github.com/fast-trips/fast-trips-core/internal/obsmetrics"
	"github.com/fast-trips/fast-trips-core/internal/rng"
)

// Dispatcher wires a read-only NetworkModel and CostEngine plus one
// assignment iteration's capacity-feedback snapshot into the pathfinding
// pipeline. It holds no per-request state; FindPaths is safe to call
// concurrently for distinct requests (spec §3's NetworkModel/WeightBook
// ownership note: "constructed once, read-only for the duration of all
// pathfinding").
type Dispatcher struct {
	NM       *netmodel.NetworkModel
	Engine   *cost.Engine
	Cfg      config.Config
	Capacity labeler.CapacityState
}

// New constructs a Dispatcher. capacity may be nil, meaning no trip/stop
// is currently flagged as bumped.
func New(nm *netmodel.NetworkModel, eng *cost.Engine, cfg config.Config, capacity labeler.CapacityState) *Dispatcher {
	return &Dispatcher{NM: nm, Engine: eng, Cfg: cfg, Capacity: capacity}
}

// Diagnostics reports bookkeeping for logging and metrics across the
// whole pipeline: label iterations, process counts, elapsed time, and
// whether the search was cut short by a labeling budget (spec §4.6).
type Diagnostics struct {
	Labeler    labeler.Diagnostics
	Incomplete bool
	Elapsed    time.Duration
}

// FindPaths runs Labeler -> Enumerator -> Finalizer for one request and
// returns the scored, pruned Pathset with its chosen index already set.
//
// Errors are normalized to *NoPathFound (labeling reached no egress label,
// or enumeration/finalization found no feasible path), or passed through
// unchanged for the fatal kinds spec §7 calls out:
// *netmodel.InvariantViolation, *cost.WeightLookupMissing,
// *cost.NegativeUtilityDetected. A *labeler.BudgetExceeded accompanied by
// a non-nil partial Result is not fatal: the Enumerator still attempts
// path sampling on the partial hyperpath and Diagnostics.Incomplete is set,
// per the cancellation clause in spec §4.6.
func (disp *Dispatcher) FindPaths(req labeler.Request, stream *rng.Stream) (*ftpath.Pathset, Diagnostics, error) {
	start := time.Now()

	lb := labeler.New(disp.NM, disp.Engine, disp.Capacity, disp.Cfg)
	res, err := lb.Run(req)
	labelingElapsed := time.Since(start)

	var incomplete bool
	if err != nil {
		if _, isBudget := err.(*labeler.BudgetExceeded); !isBudget || res == nil {
			return nil, Diagnostics{Elapsed: time.Since(start)}, translate(err)
		}
		incomplete = true
	}

	obsmetrics.LabelPops.Add(float64(res.Diagnostics.QueuePops))
	obsmetrics.StopProcessCount.Observe(float64(maxStopProcessCount(res.Diagnostics)))

	en := enumerator.New(disp.NM, disp.Engine, disp.Cfg)
	pathset, err := en.Sample(res, req, stream)
	if err != nil {
		obsmetrics.NoPathFound.Inc()
		return nil, disp.diagnostics(res, incomplete, start), translate(err)
	}

	fin := finalizer.New(disp.NM, disp.Engine, disp.Cfg)
	if err := fin.Finalize(pathset, req, stream); err != nil {
		obsmetrics.NoPathFound.Inc()
		return nil, disp.diagnostics(res, incomplete, start), translate(err)
	}

	diags := disp.diagnostics(res, incomplete, start)
	obsmetrics.LabelingDuration.Observe(labelingElapsed.Seconds())
	slog.Debug("find_paths completed",
		"person_id", req.PersonID,
		"person_trip_id", req.PersonTripID,
		"num_paths", len(pathset.Paths),
		"incomplete", incomplete,
	)
	return pathset, diags, nil
}

func (disp *Dispatcher) diagnostics(res *labeler.Result, incomplete bool, start time.Time) Diagnostics {
	d := Diagnostics{Incomplete: incomplete, Elapsed: time.Since(start)}
	if res != nil {
		d.Labeler = res.Diagnostics
	}
	return d
}

func maxStopProcessCount(d labeler.Diagnostics) int {
	max := 0
	for _, n := range d.StopProcessCounts {
		if n > max {
			max = n
		}
	}
	return max
}

// translate maps a lower-layer error to the kind spec §7 names. Anything
// it doesn't recognize (notably *netmodel.InvariantViolation,
// *cost.WeightLookupMissing, *cost.NegativeUtilityDetected,
// *labeler.BudgetExceeded with no usable partial result) is returned
// unchanged since those are fatal, not "no path" outcomes.
func translate(err error) error {
	switch err.(type) {
	case *labeler.NoEgressReached, *enumerator.NoPathFound, *finalizer.NoPathFound:
		return &NoPathFound{Cause: err}
	default:
		return err
	}
}
