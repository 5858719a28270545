// Package netmodel holds the immutable, time-indexed view of the transit
// network that the labeling and enumeration stages search over: stops,
// trips, transfers, access/egress links and fare structure. A NetworkModel
// is built once and never mutated afterwards; all query methods are safe
// for concurrent use by many per-request workers.
package netmodel

// Seconds is an absolute time offset in seconds from the assignment-day
// epoch. Using a signed 32-bit offset instead of calendar time keeps the
// inner labeling loop free of time-zone and DST arithmetic.
type Seconds int32

// StopID, RouteID, TripID, ZoneID and FarePeriodID index into the
// NetworkModel's arenas rather than holding pointers, so Stop/Trip/Route
// can reference each other without cyclic pointer graphs.
type (
	StopID       int32
	RouteID      int32
	TripID       int32
	ZoneID       int32
	FarePeriodID int32
)

// NoFarePeriod marks the absence of a fare period assignment.
const NoFarePeriod FarePeriodID = -1

// SupplyMode is the physical mode used on a link: a transit mode matching a
// route definition, or one of the access/egress/walk/wait/transfer-penalty
// conventions enumerated in spec §6.
type SupplyMode string

const (
	SupplyWalkAccess      SupplyMode = "walk_access"
	SupplyWalkEgress      SupplyMode = "walk_egress"
	SupplyBikeAccess      SupplyMode = "bike_access"
	SupplyBikeEgress      SupplyMode = "bike_egress"
	SupplyPNRAccess       SupplyMode = "pnr_access"
	SupplyPNREgress       SupplyMode = "pnr_egress"
	SupplyKNRAccess       SupplyMode = "knr_access"
	SupplyKNREgress       SupplyMode = "knr_egress"
	SupplyWalk            SupplyMode = "walk"
	SupplyWait            SupplyMode = "wait"
	SupplyTransferPenalty SupplyMode = "transfer_penalty"
)

// DemandModeType classifies a weight row or request leg by its role in the
// journey, independent of the physical SupplyMode used to realize it.
type DemandModeType string

const (
	DemandAccess   DemandModeType = "access"
	DemandEgress   DemandModeType = "egress"
	DemandTransit  DemandModeType = "transit"
	DemandTransfer DemandModeType = "transfer"
)

// LinkMode distinguishes the four link kinds a StopLabel or PathLink can
// represent.
type LinkMode uint8

const (
	ModeAccess LinkMode = iota
	ModeEgress
	ModeTransit
	ModeTransfer
)

func (m LinkMode) String() string {
	switch m {
	case ModeAccess:
		return "access"
	case ModeEgress:
		return "egress"
	case ModeTransit:
		return "transit"
	case ModeTransfer:
		return "transfer"
	default:
		return "unknown"
	}
}

// Route carries the demand/supply mode classification a transit trip's
// weight lookups and fare cascade key off of. The rest of a route's
// descriptive attributes (name, color, geometry) belong to the
// input-parsing collaborator, not the core.
type Route struct {
	ID         RouteID
	DemandMode string // e.g. "local_bus", "commuter_rail" — matches a WeightBook demand_mode
	SupplyMode SupplyMode
}

// Transfer is a walk (or other non-transit) connection between two stops.
type Transfer struct {
	ToStop   StopID
	Distance float64 // meters
	Time     Seconds
}

// AccessLink connects a TAZ to a stop for a given supply mode. By symmetry
// it is also used to represent egress (destination zone -> stop).
type AccessLink struct {
	StopID     StopID
	Distance   float64
	Time       Seconds
	SupplyMode SupplyMode
}

// Zone is a traffic analysis zone (TAZ): an origin/destination area with
// access links fanning out to nearby stops.
type Zone struct {
	ID          ZoneID
	AccessLinks map[SupplyMode][]AccessLink
}

// TripStopTime is one scheduled stop visit within a Trip's ordered
// stop-time list. Seq is 1-indexed per spec §3's Trip invariant.
type TripStopTime struct {
	StopID    StopID
	Seq       int
	Arrival   Seconds
	Departure Seconds
}

// Trip is a single scheduled vehicle run.
type Trip struct {
	ID          TripID
	RouteID     RouteID
	ServiceType string
	Capacity    int
	Direction   int
	StopTimes   []TripStopTime
}

// Stop is a boarding/alighting location. stopTimesByArrival and
// stopTimesByDeparture are built once at construction time, sorted by
// time, to give the windowed trip queries O(log n + k) behavior.
type Stop struct {
	ID        StopID
	ZoneID    ZoneID
	RouteIDs  []RouteID
	Transfers []Transfer

	stopTimesByArrival   []stopTimeRef
	stopTimesByDeparture []stopTimeRef
}

type stopTimeRef struct {
	Trip      TripID
	Seq       int
	Arrival   Seconds
	Departure Seconds
}

// TripArrival and TripDeparture are the results of the windowed trip
// queries NetworkModel exposes to the Labeler.
type TripArrival struct {
	Trip    TripID
	Seq     int
	ArrTime Seconds
}

type TripDeparture struct {
	Trip    TripID
	Seq     int
	DepTime Seconds
}

// FareTransferRuleType selects how a fare-transfer rule adjusts a leg's
// base fare.
type FareTransferRuleType string

const (
	FareRuleDiscount FareTransferRuleType = "discount"
	FareRuleFree     FareTransferRuleType = "free"
	FareRuleFixed    FareTransferRuleType = "fixed"
)

// FarePeriod buckets a (route, time, zone-pair) into a base fare and
// in-period free-transfer allowance.
type FarePeriod struct {
	ID                    FarePeriodID
	WindowStart           Seconds
	WindowEnd             Seconds
	BaseFare              float64
	FreeTransferAllowance Seconds // 0 means none
}

// FareTransferRule adjusts the fare of a leg in ToFarePeriod given the
// passenger's previous leg was in FromFarePeriod.
type FareTransferRule struct {
	FromFarePeriod FarePeriodID
	ToFarePeriod   FarePeriodID
	RuleType       FareTransferRuleType
	Amount         float64
}

// FareRuleInput is a row of the base-fare assignment cascade: which
// FarePeriod applies for a (route, orig zone, dest zone) combination. A
// nil pointer field means "wildcard" at that level of the cascade.
type FareRuleInput struct {
	RouteID    *RouteID
	OrigZone   *ZoneID
	DestZone   *ZoneID
	FarePeriod FarePeriodID
}
