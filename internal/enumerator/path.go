package enumerator

import (
	"github.com/fast-trips/fast-trips-core/internal/ftpath"
	"github.com/fast-trips/fast-trips-core/internal/labeler"
	"github.com/fast-trips/fast-trips-core/internal/netmodel"
)

// buildLinks turns a walked chain of StopLabels into forward-chronological
// PathLinks. The chain is always attached-stop-first: hops[0] is the
// anchor-zone hop the Labeler built in its finalize step, hops[i] for
// i>0 lives in the hyperlink keyed by hops[i-1].SuccPredStop, and
// hops[len-1] is the terminal access/egress seed hop.
//
// For outbound search the walk already runs origin->destination in real
// time, so hop order is link order. For inbound search the walk runs
// destination->origin (labels there carry predecessor pointers), so hop
// order is reverse-chronological: each hop's fields are interpreted with
// from/to and dep/arr swapped relative to outbound, and the assembled
// links are reversed at the end.
func buildLinks(outbound bool, req labeler.Request, hops []labeler.StopLabel) []ftpath.PathLink {
	links := make([]ftpath.PathLink, 0, len(hops))
	for i, h := range hops {
		var attached netmodel.StopID
		if i > 0 {
			attached = hops[i-1].SuccPredStop
		}
		links = append(links, buildLink(outbound, req, attached, h))
	}
	if !outbound {
		reverseLinks(links)
	}
	return links
}

func buildLink(outbound bool, req labeler.Request, attached netmodel.StopID, h labeler.StopLabel) ftpath.PathLink {
	link := ftpath.PathLink{Cost: h.LinkCost, Fare: h.Fare, FarePeriod: h.FarePeriod}

	switch h.DeparrMode {
	case netmodel.ModeAccess:
		link.Kind = ftpath.LinkAccess
		link.WalkTime = h.LinkTime
		link.FromZone = req.OriginZone
		if outbound {
			// finalize-hop: origin zone -> h.SuccPredStop, zone time
			// DeparrTime, stop time ArrdepTime.
			link.ToStop = h.SuccPredStop
			link.DepTime = h.DeparrTime
			link.ArrTime = h.ArrdepTime
		} else {
			// seed-hop: origin zone -> attached stop, stop time
			// DeparrTime (later), zone time ArrdepTime (earlier).
			link.ToStop = attached
			link.DepTime = h.ArrdepTime
			link.ArrTime = h.DeparrTime
		}
	case netmodel.ModeEgress:
		link.Kind = ftpath.LinkEgress
		link.WalkTime = h.LinkTime
		link.ToZone = req.DestinationZone
		if outbound {
			// seed-hop: attached stop -> destination zone, stop time
			// DeparrTime (earlier), zone time ArrdepTime (later).
			link.FromStop = attached
			link.DepTime = h.DeparrTime
			link.ArrTime = h.ArrdepTime
		} else {
			// finalize-hop: h.SuccPredStop -> destination zone, zone
			// time DeparrTime, stop time ArrdepTime.
			link.FromStop = h.SuccPredStop
			link.DepTime = h.ArrdepTime
			link.ArrTime = h.DeparrTime
		}
	case netmodel.ModeTransfer:
		link.Kind = ftpath.LinkTransfer
		link.WalkTime = h.LinkTime
		if outbound {
			link.FromStop = attached
			link.ToStop = h.SuccPredStop
			link.DepTime = h.DeparrTime
			link.ArrTime = h.ArrdepTime
		} else {
			link.FromStop = h.SuccPredStop
			link.ToStop = attached
			link.DepTime = h.ArrdepTime
			link.ArrTime = h.DeparrTime
		}
	case netmodel.ModeTransit:
		link.Kind = ftpath.LinkTransit
		link.TripID = h.TripID
		link.BoardSeq = h.BoardSeq
		link.AlightSeq = h.AlightSeq
		link.InVehicle = h.LinkTime
		link.WaitTime = h.WaitTime
		if outbound {
			link.BoardStop, link.FromStop = attached, attached
			link.AlightStop, link.ToStop = h.SuccPredStop, h.SuccPredStop
			link.DepTime = h.DeparrTime
			link.ArrTime = h.ArrdepTime
		} else {
			link.BoardStop, link.FromStop = h.SuccPredStop, h.SuccPredStop
			link.AlightStop, link.ToStop = attached, attached
			link.DepTime = h.ArrdepTime
			link.ArrTime = h.DeparrTime
		}
	}
	return link
}

func reverseLinks(links []ftpath.PathLink) {
	for i, j := 0, len(links)-1; i < j; i, j = i+1, j-1 {
		links[i], links[j] = links[j], links[i]
	}
}
