package netmodel

import "sort"

// StopsReachableByTransfer returns every stop directly reachable by a
// transfer (walk) link from stop, with its distance and time.
func (nm *NetworkModel) StopsReachableByTransfer(stop StopID) []Transfer {
	s, ok := nm.stopAt(stop)
	if !ok {
		return nil
	}
	return s.Transfers
}

// TripsArrivingWithin returns trips arriving at stop within the half-open
// window (latestArrival-window, latestArrival], sorted by arrival time.
// Binary search against the per-stop arrival-sorted index keeps this
// O(log n + k).
func (nm *NetworkModel) TripsArrivingWithin(stop StopID, latestArrival, window Seconds) []TripArrival {
	s, ok := nm.stopAt(stop)
	if !ok {
		return nil
	}
	lo := latestArrival - window
	refs := s.stopTimesByArrival
	start := sort.Search(len(refs), func(i int) bool { return refs[i].Arrival > lo })
	end := sort.Search(len(refs), func(i int) bool { return refs[i].Arrival > latestArrival })
	if start >= end {
		return nil
	}
	out := make([]TripArrival, 0, end-start)
	for _, r := range refs[start:end] {
		out = append(out, TripArrival{Trip: r.Trip, Seq: r.Seq, ArrTime: r.Arrival})
	}
	return out
}

// TripsDepartingWithin returns trips departing stop within
// [earliestDeparture, earliestDeparture+window), sorted by departure time.
// Mirror of TripsArrivingWithin for inbound (forward-time) search.
func (nm *NetworkModel) TripsDepartingWithin(stop StopID, earliestDeparture, window Seconds) []TripDeparture {
	s, ok := nm.stopAt(stop)
	if !ok {
		return nil
	}
	hi := earliestDeparture + window
	refs := s.stopTimesByDeparture
	start := sort.Search(len(refs), func(i int) bool { return refs[i].Departure >= earliestDeparture })
	end := sort.Search(len(refs), func(i int) bool { return refs[i].Departure >= hi })
	if start >= end {
		return nil
	}
	out := make([]TripDeparture, 0, end-start)
	for _, r := range refs[start:end] {
		out = append(out, TripDeparture{Trip: r.Trip, Seq: r.Seq, DepTime: r.Departure})
	}
	return out
}

// TripStopsBefore returns the stop-times at sequence positions < seq,
// candidates for boarding in an outbound (backward) search.
func (nm *NetworkModel) TripStopsBefore(trip TripID, seq int) []TripStopTime {
	t, ok := nm.Trip(trip)
	if !ok || seq <= 1 {
		return nil
	}
	limit := seq - 1
	if limit > len(t.StopTimes) {
		limit = len(t.StopTimes)
	}
	return t.StopTimes[:limit]
}

// TripStopsAfter returns the stop-times at sequence positions > seq,
// candidates for alighting in an inbound (forward) search.
func (nm *NetworkModel) TripStopsAfter(trip TripID, seq int) []TripStopTime {
	t, ok := nm.Trip(trip)
	if !ok || seq >= len(t.StopTimes) {
		return nil
	}
	return t.StopTimes[seq:]
}

// AccessLinks returns the zone's access links for the given supply mode.
// By the symmetry convention in spec §3, the same links serve as egress
// links for a zone used as a destination.
func (nm *NetworkModel) AccessLinks(zone ZoneID, mode SupplyMode) []AccessLink {
	z, ok := nm.zones[zone]
	if !ok {
		return nil
	}
	return z.AccessLinks[mode]
}

// EgressLinks is an alias of AccessLinks, named for the direction in which
// the caller is using the zone (spec §3's "by symmetry" note).
func (nm *NetworkModel) EgressLinks(zone ZoneID, mode SupplyMode) []AccessLink {
	return nm.AccessLinks(zone, mode)
}

// FarePeriodFor resolves the fare-period cascade for a trip's leg between
// the given origin and destination zones: exact (route, orig, dest) match,
// route-only, zone-pair-only, then the default. It takes no time argument;
// the cascade is time-independent in this model and FarePeriod.WindowStart
// /WindowEnd are not consulted.
func (nm *NetworkModel) FarePeriodFor(trip TripID, origZone, destZone ZoneID) (FarePeriodID, bool) {
	t, ok := nm.Trip(trip)
	if !ok {
		return NoFarePeriod, false
	}
	if fp, ok := nm.fareExact[fareCascadeExactKey{Route: t.RouteID, Orig: origZone, Dest: destZone}]; ok {
		return fp, true
	}
	if nm.zoneSymmetric {
		if fp, ok := nm.fareExact[fareCascadeExactKey{Route: t.RouteID, Orig: destZone, Dest: origZone}]; ok {
			return fp, true
		}
	}
	if fp, ok := nm.fareRouteOnly[t.RouteID]; ok {
		return fp, true
	}
	if fp, ok := nm.fareZonePair[fareCascadeZoneKey{Orig: origZone, Dest: destZone}]; ok {
		return fp, true
	}
	if nm.zoneSymmetric {
		if fp, ok := nm.fareZonePair[fareCascadeZoneKey{Orig: destZone, Dest: origZone}]; ok {
			return fp, true
		}
	}
	if nm.fareDefault != NoFarePeriod {
		return nm.fareDefault, true
	}
	return NoFarePeriod, false
}

// FarePeriod looks up a fare period definition by id.
func (nm *NetworkModel) FarePeriod(id FarePeriodID) (FarePeriod, bool) {
	fp, ok := nm.farePeriods[id]
	return fp, ok
}

// FareTransferRule looks up the transfer rule applying when moving from
// FromFarePeriod to ToFarePeriod, if any is defined.
func (nm *NetworkModel) FareTransferRule(from, to FarePeriodID) (FareTransferRule, bool) {
	r, ok := nm.fareTransferRules[fareRuleKey{From: from, To: to}]
	return r, ok
}

// StopZone returns the zone a stop belongs to (for fare lookups keyed on
// the alighting or boarding stop's zone rather than the TAZ endpoints).
func (nm *NetworkModel) StopZone(stop StopID) (ZoneID, bool) {
	s, ok := nm.stopAt(stop)
	if !ok {
		return 0, false
	}
	return s.ZoneID, true
}

// StopRoutes returns the routes serving a stop.
func (nm *NetworkModel) StopRoutes(stop StopID) []RouteID {
	s, ok := nm.stopAt(stop)
	if !ok {
		return nil
	}
	return s.RouteIDs
}
