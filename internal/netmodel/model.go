package netmodel

import (
	"fmt"
	"sort"
)

// NetworkModel is the read-only, time-indexed view of the scheduled
// network. It is constructed once (by Build or by a collaborator such as
// pgload) and shared read-only across every per-request Labeler.
type NetworkModel struct {
	stops     []Stop
	stopIndex map[StopID]int
	trips     []Trip
	tripIndex map[TripID]int
	routes    map[RouteID]Route
	zones     map[ZoneID]*Zone

	farePeriods       map[FarePeriodID]FarePeriod
	fareTransferRules map[fareRuleKey]FareTransferRule

	fareExact     map[fareCascadeExactKey]FarePeriodID
	fareRouteOnly map[RouteID]FarePeriodID
	fareZonePair  map[fareCascadeZoneKey]FarePeriodID
	fareDefault   FarePeriodID
	zoneSymmetric bool
}

type fareRuleKey struct {
	From FarePeriodID
	To   FarePeriodID
}

type fareCascadeExactKey struct {
	Route RouteID
	Orig  ZoneID
	Dest  ZoneID
}

type fareCascadeZoneKey struct {
	Orig ZoneID
	Dest ZoneID
}

// BuildInput collects every table the input-parsing collaborator produces
// (spec §6), format-agnostic.
type BuildInput struct {
	Stops             []StopInput
	Trips             []TripInput
	Routes            []Route
	Zones             []ZoneInput
	FarePeriods       []FarePeriod
	FareTransferRules []FareTransferRule
	FareRules         []FareRuleInput
	FareZoneSymmetry  bool
}

// StopInput is the construction-time shape of a Stop; Transfers and
// RouteIDs are supplied directly since the input collaborator already
// knows them.
type StopInput struct {
	ID        StopID
	ZoneID    ZoneID
	RouteIDs  []RouteID
	Transfers []Transfer
}

// TripInput is the construction-time shape of a Trip.
type TripInput struct {
	ID          TripID
	RouteID     RouteID
	ServiceType string
	Capacity    int
	Direction   int
	StopTimes   []TripStopTime
}

// ZoneInput is the construction-time shape of a Zone.
type ZoneInput struct {
	ID          ZoneID
	AccessLinks map[SupplyMode][]AccessLink
}

// Build validates the input tables and constructs an immutable
// NetworkModel, returning *InvariantViolation on any corrupt input.
func Build(in BuildInput) (*NetworkModel, error) {
	nm := &NetworkModel{
		zones:             make(map[ZoneID]*Zone, len(in.Zones)),
		farePeriods:       make(map[FarePeriodID]FarePeriod, len(in.FarePeriods)),
		fareTransferRules: make(map[fareRuleKey]FareTransferRule, len(in.FareTransferRules)),
		fareExact:         make(map[fareCascadeExactKey]FarePeriodID),
		fareRouteOnly:     make(map[RouteID]FarePeriodID),
		fareZonePair:      make(map[fareCascadeZoneKey]FarePeriodID),
		fareDefault:       NoFarePeriod,
		zoneSymmetric:     in.FareZoneSymmetry,
		routes:            make(map[RouteID]Route, len(in.Routes)),
	}

	for _, r := range in.Routes {
		if _, dup := nm.routes[r.ID]; dup {
			return nil, invariantf(fmt.Sprintf("route %d", r.ID), "duplicate route id")
		}
		nm.routes[r.ID] = r
	}

	knownZones := make(map[ZoneID]bool, len(in.Zones))
	for _, zi := range in.Zones {
		if _, dup := nm.zones[zi.ID]; dup {
			return nil, invariantf(fmt.Sprintf("zone %d", zi.ID), "duplicate zone id")
		}
		z := &Zone{ID: zi.ID, AccessLinks: zi.AccessLinks}
		nm.zones[zi.ID] = z
		knownZones[zi.ID] = true
	}

	stopIndex := make(map[StopID]int, len(in.Stops))
	nm.stopIndex = stopIndex
	nm.stops = make([]Stop, 0, len(in.Stops))
	for _, si := range in.Stops {
		if _, dup := stopIndex[si.ID]; dup {
			return nil, invariantf(fmt.Sprintf("stop %d", si.ID), "duplicate stop id")
		}
		if !knownZones[si.ZoneID] {
			return nil, invariantf(fmt.Sprintf("stop %d", si.ID), "references unknown zone %d", si.ZoneID)
		}
		stopIndex[si.ID] = len(nm.stops)
		nm.stops = append(nm.stops, Stop{
			ID:        si.ID,
			ZoneID:    si.ZoneID,
			RouteIDs:  si.RouteIDs,
			Transfers: si.Transfers,
		})
	}
	for i := range nm.stops {
		for _, tr := range nm.stops[i].Transfers {
			if _, ok := stopIndex[tr.ToStop]; !ok {
				return nil, invariantf(fmt.Sprintf("stop %d", nm.stops[i].ID), "transfer references unknown stop %d", tr.ToStop)
			}
			if tr.Time < 0 {
				return nil, invariantf(fmt.Sprintf("stop %d", nm.stops[i].ID), "negative transfer time to stop %d", tr.ToStop)
			}
		}
	}

	tripIndex := make(map[TripID]int, len(in.Trips))
	nm.tripIndex = tripIndex
	nm.trips = make([]Trip, 0, len(in.Trips))
	for _, ti := range in.Trips {
		if _, dup := tripIndex[ti.ID]; dup {
			return nil, invariantf(fmt.Sprintf("trip %d", ti.ID), "duplicate trip id")
		}
		if err := validateTripStopTimes(ti.ID, ti.StopTimes); err != nil {
			return nil, err
		}
		if _, ok := nm.routes[ti.RouteID]; !ok {
			return nil, invariantf(fmt.Sprintf("trip %d", ti.ID), "references unknown route %d", ti.RouteID)
		}
		for _, st := range ti.StopTimes {
			idx, ok := stopIndex[st.StopID]
			if !ok {
				return nil, invariantf(fmt.Sprintf("trip %d", ti.ID), "references unknown stop %d", st.StopID)
			}
			ref := stopTimeRef{Trip: ti.ID, Seq: st.Seq, Arrival: st.Arrival, Departure: st.Departure}
			nm.stops[idx].stopTimesByArrival = append(nm.stops[idx].stopTimesByArrival, ref)
			nm.stops[idx].stopTimesByDeparture = append(nm.stops[idx].stopTimesByDeparture, ref)
		}
		tripIndex[ti.ID] = len(nm.trips)
		nm.trips = append(nm.trips, Trip{
			ID:          ti.ID,
			RouteID:     ti.RouteID,
			ServiceType: ti.ServiceType,
			Capacity:    ti.Capacity,
			Direction:   ti.Direction,
			StopTimes:   ti.StopTimes,
		})
	}
	for i := range nm.stops {
		sort.Slice(nm.stops[i].stopTimesByArrival, func(a, b int) bool {
			return nm.stops[i].stopTimesByArrival[a].Arrival < nm.stops[i].stopTimesByArrival[b].Arrival
		})
		sort.Slice(nm.stops[i].stopTimesByDeparture, func(a, b int) bool {
			return nm.stops[i].stopTimesByDeparture[a].Departure < nm.stops[i].stopTimesByDeparture[b].Departure
		})
	}

	for _, fp := range in.FarePeriods {
		nm.farePeriods[fp.ID] = fp
	}
	for _, rule := range in.FareTransferRules {
		if _, ok := nm.farePeriods[rule.FromFarePeriod]; !ok {
			return nil, invariantf("fare transfer rule", "references unknown from-period %d", rule.FromFarePeriod)
		}
		if _, ok := nm.farePeriods[rule.ToFarePeriod]; !ok {
			return nil, invariantf("fare transfer rule", "references unknown to-period %d", rule.ToFarePeriod)
		}
		nm.fareTransferRules[fareRuleKey{From: rule.FromFarePeriod, To: rule.ToFarePeriod}] = rule
	}

	for _, fr := range in.FareRules {
		if _, ok := nm.farePeriods[fr.FarePeriod]; !ok {
			return nil, invariantf("fare rule", "references unknown fare period %d", fr.FarePeriod)
		}
		switch {
		case fr.RouteID != nil && fr.OrigZone != nil && fr.DestZone != nil:
			nm.fareExact[fareCascadeExactKey{Route: *fr.RouteID, Orig: *fr.OrigZone, Dest: *fr.DestZone}] = fr.FarePeriod
		case fr.RouteID != nil && fr.OrigZone == nil && fr.DestZone == nil:
			nm.fareRouteOnly[*fr.RouteID] = fr.FarePeriod
		case fr.RouteID == nil && fr.OrigZone != nil && fr.DestZone != nil:
			nm.fareZonePair[fareCascadeZoneKey{Orig: *fr.OrigZone, Dest: *fr.DestZone}] = fr.FarePeriod
		case fr.RouteID == nil && fr.OrigZone == nil && fr.DestZone == nil:
			nm.fareDefault = fr.FarePeriod
		default:
			return nil, invariantf("fare rule", "unsupported cascade level combination")
		}
	}

	return nm, nil
}

func validateTripStopTimes(tripID TripID, sts []TripStopTime) error {
	if len(sts) == 0 {
		return invariantf(fmt.Sprintf("trip %d", tripID), "has no stop-times")
	}
	for i, st := range sts {
		wantSeq := i + 1
		if st.Seq != wantSeq {
			return invariantf(fmt.Sprintf("trip %d", tripID), "stop-time sequence not 1-indexed/contiguous: got seq %d at position %d", st.Seq, i)
		}
		if st.Departure < st.Arrival {
			return invariantf(fmt.Sprintf("trip %d", tripID), "departure before arrival at seq %d", st.Seq)
		}
		if i > 0 && st.Arrival < sts[i-1].Departure {
			return invariantf(fmt.Sprintf("trip %d", tripID), "arrival at seq %d precedes departure at seq %d", st.Seq, sts[i-1].Seq)
		}
	}
	return nil
}

// NumStops and NumTrips expose arena sizes for pre-sizing label vectors.
func (nm *NetworkModel) NumStops() int { return len(nm.stops) }
func (nm *NetworkModel) NumTrips() int { return len(nm.trips) }

func (nm *NetworkModel) stopAt(id StopID) (*Stop, bool) {
	i, ok := nm.stopIndex[id]
	if !ok {
		return nil, false
	}
	return &nm.stops[i], true
}

// Trip returns the Trip with the given id.
func (nm *NetworkModel) Trip(id TripID) (Trip, bool) {
	i, ok := nm.tripIndex[id]
	if !ok {
		return Trip{}, false
	}
	return nm.trips[i], true
}

// Zone returns the Zone with the given id.
func (nm *NetworkModel) Zone(id ZoneID) (*Zone, bool) {
	z, ok := nm.zones[id]
	return z, ok
}

// Route returns the Route with the given id.
func (nm *NetworkModel) Route(id RouteID) (Route, bool) {
	r, ok := nm.routes[id]
	return r, ok
}
