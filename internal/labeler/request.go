package labeler

import "github.com/fast-trips/fast-trips-core/internal/netmodel"

// TimeTarget selects whether Request.PreferredTime anchors an arrival or a
// departure, which in turn determines PathDirection (spec §3/§4.3).
type TimeTarget string

const (
	TargetArrival   TimeTarget = "arrival"
	TargetDeparture TimeTarget = "departure"
)

// Request is one person-trip's pathfinding ask (spec §3's Request type).
type Request struct {
	PersonID     string
	PersonTripID string
	Iteration    int

	OriginZone      netmodel.ZoneID
	DestinationZone netmodel.ZoneID
	PreferredTime   netmodel.Seconds
	TimeTarget      TimeTarget

	UserClass   string
	Purpose     string
	ValueOfTime float64

	PermittedAccessModes  []netmodel.SupplyMode
	PermittedEgressModes  []netmodel.SupplyMode
	PermittedTransitModes []netmodel.SupplyMode

	// MaxQueuePops caps the number of priority-queue pops the main
	// relaxation loop performs before cutting the search short and
	// finalizing whatever hyperlinks exist so far. Zero means unlimited
	// (spec §4.6's label-iteration budget).
	MaxQueuePops int
}

// Outbound reports the search direction this request implies: an
// arrival-anchored request is searched backward from the destination
// (outbound); a departure-anchored request is searched forward from the
// origin (inbound) (spec §4.3's PathDirection derivation).
func (r Request) Outbound() bool {
	return r.TimeTarget == TargetArrival
}
