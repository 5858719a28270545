// Package ftpath defines the Path/PathLink/Pathset value types produced by
// the Enumerator and scored by the Finalizer (spec §3).
package ftpath

import "github.com/fast-trips/fast-trips-core/internal/netmodel"

// LinkKind distinguishes the four kinds of PathLink a Path is built from.
type LinkKind uint8

const (
	LinkAccess LinkKind = iota
	LinkTransit
	LinkTransfer
	LinkEgress
)

func (k LinkKind) String() string {
	switch k {
	case LinkAccess:
		return "access"
	case LinkTransit:
		return "transit"
	case LinkTransfer:
		return "transfer"
	case LinkEgress:
		return "egress"
	default:
		return "unknown"
	}
}

// PathLink is one leg of an enumerated Path.
type PathLink struct {
	Kind LinkKind

	// Transit-only fields.
	TripID     netmodel.TripID
	BoardStop  netmodel.StopID
	AlightStop netmodel.StopID
	BoardSeq   int
	AlightSeq  int
	BoardCount int // number of passengers already boarded ahead of this one, when known

	// Common attributes.
	FromStop  netmodel.StopID
	ToStop    netmodel.StopID
	FromZone  netmodel.ZoneID // valid for access links
	ToZone    netmodel.ZoneID // valid for egress links
	DepTime   netmodel.Seconds
	ArrTime   netmodel.Seconds
	InVehicle netmodel.Seconds
	WaitTime  netmodel.Seconds
	WalkTime  netmodel.Seconds
	Distance  float64
	Elevation float64

	Fare       float64
	FarePeriod netmodel.FarePeriodID

	Cost float64 // per-link generalized cost, in cost units
}

// Path is an ordered sequence of PathLinks: access, zero or more
// transit/transfer legs, egress.
type Path struct {
	Links []PathLink

	PreOverlapCost  float64 // as computed during enumeration (approximate fare state)
	PostOverlapCost float64 // Finalizer's exact recomputation
	PathSize        float64
	Probability     float64
	Frequency       int // number of times this unique path was sampled
	Chosen          bool
}

// Pathset is the multiset of candidate Paths for one request, as produced
// by the Enumerator and then scored/pruned by the Finalizer.
type Pathset struct {
	Paths       []Path
	ChosenIndex int
}

// Signature is a dedupe key: the ordered sequence of (kind, trip, board,
// alight, from stop, to stop, from zone, to zone) tuples, per spec §4.5
// step 2.
type Signature string

// Signature computes the dedupe signature of a path. Transit links are
// identified by (trip, board, alight); access/transfer/egress links carry
// no trip so they're identified by the stop/zone pair they traverse
// instead, which keeps two genuinely different walk-only paths from
// colliding onto the same signature.
func (p Path) Signature() Signature {
	buf := make([]byte, 0, len(p.Links)*20)
	for _, l := range p.Links {
		buf = appendInt(buf, int64(l.Kind))
		buf = appendInt(buf, int64(l.TripID))
		buf = appendInt(buf, int64(l.BoardStop))
		buf = appendInt(buf, int64(l.AlightStop))
		buf = appendInt(buf, int64(l.FromStop))
		buf = appendInt(buf, int64(l.ToStop))
		buf = appendInt(buf, int64(l.FromZone))
		buf = appendInt(buf, int64(l.ToZone))
		buf = append(buf, '|')
	}
	return Signature(buf)
}

func appendInt(buf []byte, v int64) []byte {
	neg := v < 0
	if neg {
		v = -v
		buf = append(buf, '-')
	}
	if v == 0 {
		return append(buf, '0', ',')
	}
	start := len(buf)
	for v > 0 {
		buf = append(buf, byte('0'+v%10))
		v /= 10
	}
	// reverse digits just appended
	for i, j := start, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return append(buf, ',')
}

// TotalInVehicleTime sums in-vehicle time across transit links.
func (p Path) TotalInVehicleTime() netmodel.Seconds {
	var total netmodel.Seconds
	for _, l := range p.Links {
		if l.Kind == LinkTransit {
			total += l.InVehicle
		}
	}
	return total
}

// NumBoardings counts transit legs (boarding count) in the path.
func (p Path) NumBoardings() int {
	n := 0
	for _, l := range p.Links {
		if l.Kind == LinkTransit {
			n++
		}
	}
	return n
}
