// Package labeler implements the core time-dependent labeling algorithm:
// a Dijkstra-like relaxation over the time-expanded transit hypergraph
// that produces, per stop, either a single best label (deterministic) or
// a chronologically ordered hyperpath of labels (stochastic). See spec
// §4.3.
package labeler

import (
	"math"

	"github.com/fast-trips/fast-trips-core/internal/netmodel"
)

// StopLabel is a candidate sub-path from a stop to the search anchor
// (spec §3).
type StopLabel struct {
	LabelCost    float64
	DeparrTime   netmodel.Seconds
	DeparrMode   netmodel.LinkMode
	SuccPredStop netmodel.StopID // successor (outbound search) or predecessor (inbound search)
	LinkTime     netmodel.Seconds
	LinkCost     float64
	Iteration    int
	ArrdepTime   netmodel.Seconds

	// Transit-only bookkeeping carried so the Enumerator can reconstruct
	// a PathLink without re-querying the NetworkModel.
	TripID     netmodel.TripID
	BoardSeq   int
	AlightSeq  int
	WaitTime   netmodel.Seconds
	Fare       float64
	FarePeriod netmodel.FarePeriodID
}

// IsWalk reports whether the label's mode is a walk-class mode (access,
// egress or transfer) as opposed to transit.
func (l StopLabel) IsWalk() bool {
	return l.DeparrMode != netmodel.ModeTransit
}

// Hyperlink is the collection of labels at one non-anchor stop for one
// search (spec §3). For deterministic search it holds exactly one label;
// for stochastic search it accumulates many, in the order the relaxation
// inserted them (not sorted by time), and Cost tracks the running log-sum
// combination.
type Hyperlink struct {
	Labels []StopLabel
	Cost   float64 // combined hyperlink cost; for a single label this equals that label's cost
}

// BestLabelCost returns the lowest individual label cost, or +Inf if
// empty.
func (h *Hyperlink) BestLabelCost() float64 {
	best := math.Inf(1)
	for _, l := range h.Labels {
		if l.LabelCost < best {
			best = l.LabelCost
		}
	}
	return best
}

// NonWalkLabelCost computes the logsum over only the stop's transit-mode
// labels (spec §4.3 step 3: "the nonwalk-label rule prevents chained
// walks"). ok is false when no transit label exists yet at this stop.
func (h *Hyperlink) NonWalkLabelCost(theta float64) (cost float64, ok bool) {
	var sumExp float64
	found := false
	for _, l := range h.Labels {
		if l.DeparrMode != netmodel.ModeTransit {
			continue
		}
		sumExp += math.Exp(-theta * l.LabelCost)
		found = true
	}
	if !found || sumExp <= 0 {
		return 0, false
	}
	return -(1.0 / theta) * math.Log(sumExp), true
}

// logsumCombine folds a new candidate cost into an existing combined
// cost, per spec §4.3's update rule:
//
//	new_hyperlink_cost = -(1/theta) * ln(exp(-theta*old) + exp(-theta*new))
func logsumCombine(theta, old, candidate float64) float64 {
	return -(1.0 / theta) * math.Log(math.Exp(-theta*old)+math.Exp(-theta*candidate))
}

// AddDeterministic replaces the hyperlink's single label iff the
// candidate is strictly better (spec §4.3: deterministic update rule).
// Returns true if the label list changed.
func (h *Hyperlink) AddDeterministic(candidate StopLabel) bool {
	if len(h.Labels) == 0 || candidate.LabelCost < h.Labels[0].LabelCost {
		h.Labels = []StopLabel{candidate}
		h.Cost = candidate.LabelCost
		return true
	}
	return false
}

// AddStochastic appends the candidate label unconditionally (labels are
// never deleted, spec §4.3) and recombines the hyperlink cost via logsum.
// maxCost bounds the accepted hyperlink cost (0, maxCost); returns the new
// combined cost and whether it should be (re-)enqueued.
func (h *Hyperlink) AddStochastic(candidate StopLabel, theta, maxCost float64) (newCost float64, enqueue bool) {
	if len(h.Labels) == 0 {
		h.Labels = append(h.Labels, candidate)
		h.Cost = candidate.LabelCost
		return h.Cost, h.Cost > 0 && h.Cost < maxCost
	}
	combined := logsumCombine(theta, h.Cost, candidate.LabelCost)
	h.Labels = append(h.Labels, candidate)
	h.Cost = combined
	return combined, combined > 0 && combined < maxCost
}
