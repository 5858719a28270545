package cost

import (
	"math"

	"github.com/fast-trips/fast-trips-core/internal/ftpath"
	"github.com/fast-trips/fast-trips-core/internal/netmodel"
)

// OverlapVariable selects which per-leg attribute measures leg "length"
// for the path-size overlap computation (spec §4.2).
type OverlapVariable string

const (
	OverlapCount    OverlapVariable = "count"
	OverlapDistance OverlapVariable = "distance"
	OverlapTime     OverlapVariable = "time"
)

// overlapLeg is one atomic leg used for overlap comparison: a stop-pair
// identity (the physical network segment it occupies) and its length
// under the configured OverlapVariable.
type overlapLeg struct {
	fromStop netmodel.StopID
	toStop   netmodel.StopID
	length   float64
}

// PathSizeOverlap computes PSi for every path in the set, per the formula
// in spec §4.2:
//
//	PSi = sum_a (l_a/Li) * 1/sum_{j in Ci} (Li/Lj)^gamma * delta_aj
//
// where a ranges over i's legs, Li is i's total length, and delta_aj is 1
// iff leg a also appears in path j. When splitTransit is true, a transit
// leg spanning stops A...E is expanded into consecutive stop-pair legs
// (A-B, B-C, ...) before comparison; the leg's length is apportioned to
// each sub-leg and its identity becomes the stop pair (network link
// sharing, not trip sharing).
func PathSizeOverlap(nm *netmodel.NetworkModel, paths []ftpath.Path, variable OverlapVariable, gamma float64, splitTransit bool) []float64 {
	legsByPath := make([][]overlapLeg, len(paths))
	for i, p := range paths {
		legsByPath[i] = pathOverlapLegs(nm, p, variable, splitTransit)
	}

	ps := make([]float64, len(paths))
	for i := range paths {
		legs := legsByPath[i]
		Li := totalLength(legs)
		if Li <= 0 {
			ps[i] = 1
			continue
		}
		var sum float64
		for _, a := range legs {
			// denominator: sum over j (including i) sharing leg a of (Li/Lj)^gamma
			var denom float64
			for j := range paths {
				Lj := totalLength(legsByPath[j])
				if Lj <= 0 {
					continue
				}
				if legSetContains(legsByPath[j], a) {
					denom += math.Pow(Li/Lj, gamma)
				}
			}
			if denom <= 0 {
				continue
			}
			sum += (a.length / Li) * (1.0 / denom)
		}
		if sum <= 0 {
			sum = 1
		}
		if sum > 1 {
			sum = 1 // numerical guard: PSi must be in (0,1]
		}
		ps[i] = sum
	}
	return ps
}

func totalLength(legs []overlapLeg) float64 {
	var total float64
	for _, l := range legs {
		total += l.length
	}
	return total
}

func legSetContains(legs []overlapLeg, target overlapLeg) bool {
	for _, l := range legs {
		if l.fromStop == target.fromStop && l.toStop == target.toStop {
			return true
		}
	}
	return false
}

func pathOverlapLegs(nm *netmodel.NetworkModel, p ftpath.Path, variable OverlapVariable, splitTransit bool) []overlapLeg {
	var out []overlapLeg
	for _, link := range p.Links {
		if link.Kind == ftpath.LinkTransit && splitTransit {
			out = append(out, splitTransitLeg(nm, link, variable)...)
			continue
		}
		out = append(out, overlapLeg{
			fromStop: link.FromStop,
			toStop:   link.ToStop,
			length:   legLength(link, variable),
		})
	}
	return out
}

func legLength(link ftpath.PathLink, variable OverlapVariable) float64 {
	switch variable {
	case OverlapDistance:
		return link.Distance
	case OverlapTime:
		switch link.Kind {
		case ftpath.LinkTransit:
			return float64(link.InVehicle + link.WaitTime)
		default:
			return float64(link.WalkTime)
		}
	default: // OverlapCount
		return 1
	}
}

// splitTransitLeg expands a transit PathLink spanning board...alight into
// consecutive single-stop-pair sub-legs, apportioning the leg's length by
// the fraction of scheduled travel time each sub-pair represents. Under the
// count variable, or when the scheduled span is zero, each sub-leg gets an
// equal share instead.
func splitTransitLeg(nm *netmodel.NetworkModel, link ftpath.PathLink, variable OverlapVariable) []overlapLeg {
	trip, ok := nm.Trip(link.TripID)
	if !ok || link.BoardSeq <= 0 || link.AlightSeq <= 0 || link.AlightSeq <= link.BoardSeq {
		return []overlapLeg{{fromStop: link.FromStop, toStop: link.ToStop, length: legLength(link, variable)}}
	}
	total := legLength(link, variable)
	var subs []overlapLeg
	totalTime := trip.StopTimes[link.AlightSeq-1].Arrival - trip.StopTimes[link.BoardSeq-1].Departure
	for seq := link.BoardSeq; seq < link.AlightSeq; seq++ {
		from := trip.StopTimes[seq-1]
		to := trip.StopTimes[seq]
		frac := 1.0 / float64(link.AlightSeq-link.BoardSeq)
		if variable != OverlapCount && totalTime > 0 {
			frac = float64(to.Arrival-from.Departure) / float64(totalTime)
		}
		subs = append(subs, overlapLeg{
			fromStop: from.StopID,
			toStop:   to.StopID,
			length:   total * frac,
		})
	}
	return subs
}
