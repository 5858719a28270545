package labeler

import "github.com/fast-trips/fast-trips-core/internal/netmodel"

// CapacityKey identifies a (trip, stop) pair the outer assignment loop has
// flagged as over capacity. The Mode field lets the map hold mode-keyed
// entries per spec §6's "(trip_id | mode, stop_id)" contract, but Blocked
// looks up trip-keyed entries only, so a mode-keyed entry never blocks a
// boarding.
type CapacityKey struct {
	TripID netmodel.TripID
	Mode   string // set by an outer loop that flags an access/egress mode instead of a trip; not consulted by Blocked
	Stop   netmodel.StopID
}

// CapacityState is the opaque, read-only snapshot the outer assignment
// loop hands to find_paths: (trip|mode, stop) -> earliest bumped wait
// time. The core snapshots it at request start and never mutates it
// (spec §5).
type CapacityState map[CapacityKey]netmodel.Seconds

// Blocked reports whether boarding tripID at stop with the given
// candidate board time is forbidden because a previous iteration bumped a
// passenger there: boarding earlier than (bumped wait time + bumpBuffer)
// is not allowed (spec §4.3 step 4, tested by scenario S4).
func (c CapacityState) Blocked(tripID netmodel.TripID, stop netmodel.StopID, candidateBoardTime, bumpBuffer netmodel.Seconds) bool {
	if c == nil {
		return false
	}
	wait, ok := c[CapacityKey{TripID: tripID, Stop: stop}]
	if !ok {
		return false
	}
	return candidateBoardTime < wait+bumpBuffer
}
