// Package finalizer recomputes exact per-path cost from the Enumerator's
// sampled pathset, dedupes, scores with path-size overlap and a
// multinomial logit, prunes, and draws the chosen path (spec §4.5).
package finalizer

import (
	"math"
	"sort"

	"github.com/fast-trips/fast-trips-core/internal/config"
	"github.com/fast-trips/fast-trips-core/internal/cost"
	"github.com/fast-trips/fast-trips-core/internal/ftpath"
	"github.com/fast-trips/fast-trips-core/internal/labeler"
	"github.com/fast-trips/fast-trips-core/internal/netmodel"
	"github.com/fast-trips/fast-trips-core/internal/rng"
)

// Finalizer scores and prunes a Pathset produced by the Enumerator.
type Finalizer struct {
	NM     *netmodel.NetworkModel
	Engine *cost.Engine
	Cfg    config.Config
}

// New constructs a Finalizer over the same NetworkModel and CostEngine the
// Labeler and Enumerator used.
func New(nm *netmodel.NetworkModel, eng *cost.Engine, cfg config.Config) *Finalizer {
	return &Finalizer{NM: nm, Engine: eng, Cfg: cfg}
}

// Finalize mutates pathset in place: recomputes exact cost per path,
// dedupes by signature, scores with path-size overlap and a multinomial
// logit over the resulting utilities, prunes per max_num_paths /
// min_path_probability, and draws pathset.ChosenIndex by a second random
// draw over the final probabilities.
func (f *Finalizer) Finalize(pathset *ftpath.Pathset, req labeler.Request, stream *rng.Stream) error {
	if pathset == nil || len(pathset.Paths) == 0 {
		return &NoPathFound{}
	}

	for i := range pathset.Paths {
		f.recomputeCost(&pathset.Paths[i], req)
	}

	unique := dedupe(pathset.Paths)

	variable := cost.OverlapVariable(f.Cfg.OverlapVariable)
	ps := cost.PathSizeOverlap(f.NM, unique, variable, f.Cfg.OverlapScaleParameter, f.Cfg.OverlapSplitTransit)
	for i := range unique {
		unique[i].PathSize = ps[i]
	}

	utils := make([]float64, len(unique))
	for i, p := range unique {
		utils[i] = -p.PostOverlapCost + math.Log(p.PathSize)
	}
	assignProbabilities(unique, utils, f.Cfg.StochasticDispersion)

	unique = f.prune(unique)

	chosen := chooseIndex(unique, stream)
	for i := range unique {
		unique[i].Chosen = i == chosen
	}

	pathset.Paths = unique
	pathset.ChosenIndex = chosen
	return nil
}

// recomputeCost walks a path's links in chronological order and replaces
// each transit link's approximate (Enumerator-time) fare with the exact
// one: the full FareTransferRule chain plus the in-period free-transfer
// allowance, which depends on elapsed time since the prior leg's board
// time and so can only be known once the whole sequence is fixed (spec
// §4.5 step 1).
func (f *Finalizer) recomputeCost(p *ftpath.Path, req labeler.Request) {
	prior := netmodel.NoFarePeriod
	var priorBoardTime netmodel.Seconds
	var total float64
	for i := range p.Links {
		l := &p.Links[i]
		if l.Kind != ftpath.LinkTransit {
			total += l.Cost
			continue
		}
		backToBack := prior != netmodel.NoFarePeriod
		withinAllowance := false
		if curFP, ok := f.NM.FarePeriod(l.FarePeriod); ok && prior == l.FarePeriod && curFP.FreeTransferAllowance > 0 {
			elapsed := l.DepTime - priorBoardTime
			withinAllowance = elapsed >= 0 && elapsed <= curFP.FreeTransferAllowance
		}
		fare, err := cost.FareWithTransfer(f.NM, prior, l.FarePeriod, backToBack, withinAllowance)
		if err == nil && fare != l.Fare {
			delta := f.Engine.FareCostInTimeUnits(fare, req.ValueOfTime) - f.Engine.FareCostInTimeUnits(l.Fare, req.ValueOfTime)
			l.Cost += f.Engine.ToUtilsSpace(delta)
			l.Fare = fare
		}
		total += l.Cost
		prior = l.FarePeriod
		priorBoardTime = l.DepTime
	}
	p.PostOverlapCost = total
}

// dedupe groups paths by Signature, keeping the first occurrence and
// recording how many times it was sampled (spec §4.5 step 2).
func dedupe(paths []ftpath.Path) []ftpath.Path {
	order := make([]ftpath.Signature, 0, len(paths))
	byKey := make(map[ftpath.Signature]*ftpath.Path, len(paths))
	for _, p := range paths {
		sig := p.Signature()
		if existing, ok := byKey[sig]; ok {
			existing.Frequency++
			continue
		}
		cp := p
		cp.Frequency = 1
		order = append(order, sig)
		byKey[sig] = &cp
	}
	out := make([]ftpath.Path, 0, len(order))
	for _, sig := range order {
		out = append(out, *byKey[sig])
	}
	return out
}

// assignProbabilities computes Pi = exp(theta*Ui) / sum_j exp(theta*Uj),
// subtracting the max utility first for numerical stability (spec §4.5
// step 4).
func assignProbabilities(paths []ftpath.Path, utils []float64, theta float64) {
	if len(utils) == 0 {
		return
	}
	maxU := utils[0]
	for _, u := range utils[1:] {
		if u > maxU {
			maxU = u
		}
	}
	exps := make([]float64, len(utils))
	var sum float64
	for i, u := range utils {
		exps[i] = math.Exp(theta * (u - maxU))
		sum += exps[i]
	}
	for i := range paths {
		if sum > 0 {
			paths[i].Probability = exps[i] / sum
		} else {
			paths[i].Probability = 1.0 / float64(len(paths))
		}
	}
}

// prune drops paths with probability below min_path_probability, lowest
// probability first, only when the pathset exceeds max_num_paths, then
// renormalizes (spec §4.5 step 5). A negative max_num_paths disables
// pruning entirely. Monotonic in both knobs: raising max_num_paths can
// only shrink the removal target, and lowering min_path_probability can
// only shrink the set of paths eligible for removal, so neither knob's
// relaxation ever removes a path that previously survived (spec §8.5).
func (f *Finalizer) prune(paths []ftpath.Path) []ftpath.Path {
	if f.Cfg.MaxNumPaths < 0 || len(paths) <= f.Cfg.MaxNumPaths {
		return paths
	}

	sorted := append([]ftpath.Path(nil), paths...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Probability < sorted[j].Probability })

	target := len(sorted) - f.Cfg.MaxNumPaths
	drop := make(map[int]bool, target)
	removed := 0
	for i := range sorted {
		if removed >= target {
			break
		}
		if sorted[i].Probability < f.Cfg.MinPathProbability {
			drop[i] = true
			removed++
		}
	}

	kept := make([]ftpath.Path, 0, len(sorted)-removed)
	var sum float64
	for i, p := range sorted {
		if drop[i] {
			continue
		}
		kept = append(kept, p)
		sum += p.Probability
	}
	if sum > 0 {
		for i := range kept {
			kept[i].Probability /= sum
		}
	}
	return kept
}

// chooseIndex draws the chosen path index by a second random draw over
// final probabilities (spec §4.5 step 6).
func chooseIndex(paths []ftpath.Path, stream *rng.Stream) int {
	weights := make([]float64, len(paths))
	for i, p := range paths {
		weights[i] = p.Probability
	}
	idx := stream.Choose(weights)
	if idx < 0 {
		idx = 0
	}
	return idx
}
