// Package enumerator samples concrete Paths from a Labeler's hyperpath by
// probabilistic forward traversal, applying a live fare update link by
// link as it walks (spec §4.4).
package enumerator

import (
	"math"

	"github.com/fast-trips/fast-trips-core/internal/config"
	"github.com/fast-trips/fast-trips-core/internal/cost"
	"github.com/fast-trips/fast-trips-core/internal/ftpath"
	"github.com/fast-trips/fast-trips-core/internal/labeler"
	"github.com/fast-trips/fast-trips-core/internal/netmodel"
	"github.com/fast-trips/fast-trips-core/internal/obsmetrics"
	"github.com/fast-trips/fast-trips-core/internal/rng"
)

// Enumerator draws Paths from a completed labeler.Result.
type Enumerator struct {
	NM     *netmodel.NetworkModel
	Engine *cost.Engine
	Cfg    config.Config
}

// New constructs an Enumerator over the same NetworkModel and CostEngine
// the Labeler used to produce the Result it will be asked to sample.
func New(nm *netmodel.NetworkModel, eng *cost.Engine, cfg config.Config) *Enumerator {
	return &Enumerator{NM: nm, Engine: eng, Cfg: cfg}
}

// Sample draws a Pathset: exactly one path for deterministic search (the
// hyperpath has only one label per stop, so repeated draws are
// redundant), or up to stochastic_pathset_size for stochastic search.
// Dead-end draws are abandoned and a new draw is started; the total number
// of draws across the whole call, successful ones included, is capped at
// max_hyperpath_assign_attempts. If none succeed, returns NoPathFound.
func (en *Enumerator) Sample(result *labeler.Result, req labeler.Request, stream *rng.Stream) (*ftpath.Pathset, error) {
	target := 1
	if en.Cfg.PathfindingType == config.Stochastic {
		target = en.Cfg.StochasticPathsetSize
	}
	if target <= 0 {
		target = 1
	}
	maxAttempts := en.Cfg.MaxHyperpathAssignAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	theta := en.Cfg.StochasticDispersion

	var paths []ftpath.Path
	for attempts := 0; len(paths) < target && attempts < maxAttempts; attempts++ {
		p, ok := en.sampleOne(result, req, theta, stream)
		if !ok {
			obsmetrics.EnumerationAttempts.Inc()
			continue
		}
		en.applyLiveFare(&p, req)
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		return nil, &NoPathFound{}
	}
	return &ftpath.Pathset{Paths: paths}, nil
}

// sampleOne draws one path: choose a label at result.StartHyperlink with
// probability proportional to exp(-theta*label_cost), then repeatedly
// follow the chosen label's SuccPredStop into the next stop's hyperlink
// and choose again, until a terminal access or egress label (the search's
// original seed) is drawn. Each followed label was only ever created
// against a time-feasible predecessor, so no separate feasibility check
// is needed here — the chain itself is self-consistent by construction
// (spec §4.4 steps 1-2).
func (en *Enumerator) sampleOne(result *labeler.Result, req labeler.Request, theta float64, stream *rng.Stream) (ftpath.Path, bool) {
	if result.StartHyperlink == nil || len(result.StartHyperlink.Labels) == 0 {
		return ftpath.Path{}, false
	}
	startIdx := chooseLabel(result.StartHyperlink.Labels, theta, stream)
	if startIdx < 0 {
		return ftpath.Path{}, false
	}

	hops := make([]labeler.StopLabel, 0, 8)
	hops = append(hops, result.StartHyperlink.Labels[startIdx])
	cur := hops[0]

	// hops[0] is the StartHyperlink's own seed label: for an outbound
	// search it carries ModeAccess (the origin zone's access link), for
	// an inbound search ModeEgress (the destination zone's egress link).
	// The walk must continue through that hop and stop only once it
	// reaches the *opposite* terminal mode — the search's original seed
	// at the other end — or it would break after a single hop every time.
	terminalMode := netmodel.ModeEgress
	if !result.Outbound {
		terminalMode = netmodel.ModeAccess
	}

	maxHops := en.NM.NumStops() + 4
	for {
		if cur.DeparrMode == terminalMode {
			break
		}
		if len(hops) > maxHops {
			return ftpath.Path{}, false
		}
		hl, ok := result.StopHyperlinks[cur.SuccPredStop]
		if !ok || len(hl.Labels) == 0 {
			return ftpath.Path{}, false
		}
		idx := chooseLabel(hl.Labels, theta, stream)
		if idx < 0 {
			return ftpath.Path{}, false
		}
		cur = hl.Labels[idx]
		hops = append(hops, cur)
	}

	links := buildLinks(result.Outbound, req, hops)
	path := ftpath.Path{Links: links, Frequency: 1}
	for _, l := range links {
		path.PreOverlapCost += l.Cost
	}
	return path, true
}

// chooseLabel draws an index among labels with probability proportional
// to exp(-theta*label_cost). With exactly one label (deterministic
// search, or a stochastic hyperlink with no real fork) it always returns
// 0 regardless of theta.
func chooseLabel(labels []labeler.StopLabel, theta float64, stream *rng.Stream) int {
	weights := make([]float64, len(labels))
	for i, l := range labels {
		weights[i] = math.Exp(-theta * l.LabelCost)
	}
	return stream.Choose(weights)
}

// applyLiveFare recomputes each transit link's fare in actual sampled
// sequence (rather than the Labeler's necessarily-approximate predecessor
// assumption) and rolls the adjustment into the path's PreOverlapCost
// (spec §4.4 step 3's update_fare). The Finalizer repeats this same
// computation deterministically for PostOverlapCost, giving the fare
// determinism property (spec §8.3).
func (en *Enumerator) applyLiveFare(path *ftpath.Path, req labeler.Request) {
	if en.Cfg.TransferFareIgnorePathenum {
		return
	}
	prior := netmodel.NoFarePeriod
	var priorBoardTime netmodel.Seconds
	for i := range path.Links {
		l := &path.Links[i]
		if l.Kind != ftpath.LinkTransit {
			continue
		}
		backToBack := prior != netmodel.NoFarePeriod
		withinAllowance := false
		if curFP, ok := en.NM.FarePeriod(l.FarePeriod); ok && prior == l.FarePeriod && curFP.FreeTransferAllowance > 0 {
			elapsed := l.DepTime - priorBoardTime
			withinAllowance = elapsed >= 0 && elapsed <= curFP.FreeTransferAllowance
		}
		liveFare, err := cost.FareWithTransfer(en.NM, prior, l.FarePeriod, backToBack, withinAllowance)
		if err == nil && liveFare != l.Fare {
			delta := en.Engine.FareCostInTimeUnits(liveFare, req.ValueOfTime) - en.Engine.FareCostInTimeUnits(l.Fare, req.ValueOfTime)
			adjustedCost := l.Cost + en.Engine.ToUtilsSpace(delta)
			path.PreOverlapCost += adjustedCost - l.Cost
			l.Cost = adjustedCost
			l.Fare = liveFare
		}
		prior = l.FarePeriod
		priorBoardTime = l.DepTime
	}
}
