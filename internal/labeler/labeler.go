package labeler

import (
	"math"

	"github.com/fast-trips/fast-trips-core/internal/config"
	"github.com/fast-trips/fast-trips-core/internal/cost"
	"github.com/fast-trips/fast-trips-core/internal/netmodel"
	"github.com/fast-trips/fast-trips-core/internal/weights"
)

// Labeler runs the time-dependent label relaxation described in spec §4.3.
// It holds no per-request state of its own; Run is safe to call
// concurrently from many goroutines sharing the same Labeler as long as
// each call supplies its own Request.
type Labeler struct {
	NM       *netmodel.NetworkModel
	Engine   *cost.Engine
	Capacity CapacityState
	Cfg      config.Config
}

// New constructs a Labeler over a shared, read-only NetworkModel and
// CostEngine plus the capacity snapshot for this assignment iteration.
func New(nm *netmodel.NetworkModel, eng *cost.Engine, capacity CapacityState, cfg config.Config) *Labeler {
	return &Labeler{NM: nm, Engine: eng, Capacity: capacity, Cfg: cfg}
}

// Diagnostics reports bookkeeping about a Run for logging and metrics; it
// carries no information the Enumerator depends on.
type Diagnostics struct {
	QueuePops         int
	StopProcessCounts map[netmodel.StopID]int
}

// Result is everything the Enumerator needs to sample paths: the
// per-stop hyperlinks built during the main loop, and the StartHyperlink
// joining the request's origin/destination zone to those stops via
// access or egress links (spec §4.3's "label the anchor zone" final
// step, mirrored for PathDirection).
type Result struct {
	StopHyperlinks map[netmodel.StopID]*Hyperlink
	StartHyperlink *Hyperlink
	Outbound       bool
	Diagnostics    Diagnostics
}

// Run performs the full labeling search for one request: seed the
// egress (outbound) or access (inbound) stops, relax the priority queue
// until it drains, then label the opposite zone via its own links.
func (lb *Labeler) Run(req Request) (*Result, error) {
	stochastic := lb.Cfg.PathfindingType == config.Stochastic
	theta := lb.Cfg.StochasticDispersion
	outbound := req.Outbound()
	window := netmodel.Seconds(lb.Cfg.TimeWindowSeconds())
	bumpBuffer := netmodel.Seconds(lb.Cfg.BumpBufferSeconds())
	maxCost := math.Inf(1)

	hyperlinks := make(map[netmodel.StopID]*Hyperlink)
	q := newLabelQueue()

	var seedZone netmodel.ZoneID
	var seedModes []netmodel.SupplyMode
	var seedDemandType netmodel.DemandModeType
	if outbound {
		seedZone, seedModes, seedDemandType = req.DestinationZone, req.PermittedEgressModes, netmodel.DemandEgress
	} else {
		seedZone, seedModes, seedDemandType = req.OriginZone, req.PermittedAccessModes, netmodel.DemandAccess
	}

	zone, ok := lb.NM.Zone(seedZone)
	if !ok {
		return nil, &NoEgressReached{}
	}
	for supplyMode, links := range zone.AccessLinks {
		if len(seedModes) > 0 && !containsMode(seedModes, supplyMode) {
			continue
		}
		for _, link := range links {
			raw, err := lb.accessEgressLinkCost(req, seedDemandType, link)
			if err != nil {
				return nil, err
			}
			util := lb.Engine.ToUtilsSpace(raw)
			if util <= 0 {
				return nil, &cost.NegativeUtilityDetected{Stop: int32(link.StopID), Cost: util}
			}
			var deparr netmodel.Seconds
			if outbound {
				deparr = req.PreferredTime - link.Time
			} else {
				deparr = req.PreferredTime + link.Time
			}
			label := StopLabel{
				LabelCost:  util,
				DeparrTime: deparr,
				DeparrMode: demandTypeToLinkMode(seedDemandType),
				LinkTime:   link.Time,
				LinkCost:   util,
				Iteration:  req.Iteration,
				ArrdepTime: req.PreferredTime,
				FarePeriod: netmodel.NoFarePeriod,
			}
			lb.relax(hyperlinks, q, stochastic, theta, maxCost, link.StopID, label)
		}
	}
	if q.empty() {
		return nil, &NoEgressReached{}
	}

	finalized := map[netmodel.StopID]bool{}
	processCount := map[netmodel.StopID]int{}
	diag := Diagnostics{StopProcessCounts: map[netmodel.StopID]int{}}

	for !q.empty() {
		_, stop := q.pop()
		hl := hyperlinks[stop]
		if hl == nil || len(hl.Labels) == 0 {
			continue
		}
		if stochastic {
			processCount[stop]++
			diag.StopProcessCounts[stop] = processCount[stop]
			if lb.Cfg.StochasticMaxStopProcessCount >= 0 && processCount[stop] > lb.Cfg.StochasticMaxStopProcessCount {
				continue
			}
		} else {
			if finalized[stop] {
				continue
			}
			finalized[stop] = true
		}
		diag.QueuePops++

		if req.MaxQueuePops > 0 && diag.QueuePops >= req.MaxQueuePops {
			start, ferr := lb.finalize(outbound, req, hyperlinks, theta, stochastic)
			if ferr != nil {
				return nil, ferr
			}
			return &Result{StopHyperlinks: hyperlinks, StartHyperlink: start, Outbound: outbound, Diagnostics: diag},
				&BudgetExceeded{Reason: "max_queue_pops exceeded before egress reached"}
		}

		best := bestLabel(hl)
		anchor := best.DeparrTime

		if best.DeparrMode != netmodel.ModeTransfer {
			for _, tr := range lb.NM.StopsReachableByTransfer(stop) {
				var candDeparr netmodel.Seconds
				if outbound {
					candDeparr = anchor - tr.Time
				} else {
					candDeparr = anchor + tr.Time
				}
				raw, err := lb.transferLinkCost(req, tr)
				if err != nil {
					return nil, err
				}
				util := lb.Engine.ToUtilsSpace(raw)
				newCost := best.LabelCost + util
				if newCost <= 0 {
					return nil, &cost.NegativeUtilityDetected{Stop: int32(tr.ToStop), Cost: newCost}
				}
				label := StopLabel{
					LabelCost:    newCost,
					DeparrTime:   candDeparr,
					DeparrMode:   netmodel.ModeTransfer,
					SuccPredStop: stop,
					LinkTime:     tr.Time,
					LinkCost:     util,
					Iteration:    req.Iteration,
					ArrdepTime:   anchor,
					Fare:         best.Fare,
					FarePeriod:   best.FarePeriod,
				}
				lb.relax(hyperlinks, q, stochastic, theta, maxCost, tr.ToStop, label)
			}
		}

		if outbound {
			for _, a := range lb.NM.TripsArrivingWithin(stop, anchor, window) {
				if err := lb.expandBoardOutbound(req, hyperlinks, q, stochastic, theta, maxCost, bumpBuffer, stop, best, a); err != nil {
					return nil, err
				}
			}
		} else {
			for _, d := range lb.NM.TripsDepartingWithin(stop, anchor, window) {
				if err := lb.expandAlightInbound(req, hyperlinks, q, stochastic, theta, maxCost, bumpBuffer, stop, best, d); err != nil {
					return nil, err
				}
			}
		}
	}

	start, err := lb.finalize(outbound, req, hyperlinks, theta, stochastic)
	if err != nil {
		return nil, err
	}

	return &Result{StopHyperlinks: hyperlinks, StartHyperlink: start, Outbound: outbound, Diagnostics: diag}, nil
}

// expandBoardOutbound extends the search backward across one trip arriving
// at alightStop, generating a candidate label at each boarding-candidate
// stop b (seq' < alight seq) along that trip.
func (lb *Labeler) expandBoardOutbound(req Request, hyperlinks map[netmodel.StopID]*Hyperlink, q *labelQueue, stochastic bool, theta, maxCost float64, bumpBuffer netmodel.Seconds, alightStop netmodel.StopID, best StopLabel, a netmodel.TripArrival) error {
	trip, ok := lb.NM.Trip(a.Trip)
	if !ok {
		return nil
	}
	route, ok := lb.NM.Route(trip.RouteID)
	if !ok {
		return nil
	}
	if !permittedTransit(req.PermittedTransitModes, route.SupplyMode) {
		return nil
	}
	applyPenalty := best.DeparrMode != netmodel.ModeAccess && best.DeparrMode != netmodel.ModeEgress

	for _, b := range lb.NM.TripStopsBefore(a.Trip, a.Seq) {
		if lb.Capacity.Blocked(a.Trip, b.StopID, b.Departure, bumpBuffer) {
			continue
		}
		inVeh := a.ArrTime - b.Departure
		wait := best.DeparrTime - a.ArrTime
		if inVeh < 0 || wait < 0 {
			continue
		}
		raw, err := lb.transitLegCost(req, route, inVeh, wait)
		if err != nil {
			return err
		}
		if applyPenalty {
			p, err := lb.transferPenaltyCost(req)
			if err != nil {
				return err
			}
			raw += p
		}
		boardZone, _ := lb.NM.StopZone(b.StopID)
		alightZone, _ := lb.NM.StopZone(alightStop)
		var fare float64
		curFP := netmodel.NoFarePeriod
		if fp, ok := lb.NM.FarePeriodFor(a.Trip, boardZone, alightZone); ok {
			curFP = fp
			var err error
			fare, err = cost.FareWithTransfer(lb.NM, best.FarePeriod, curFP, applyPenalty && !lb.Cfg.TransferFareIgnorePathfinding, false)
			if err != nil {
				return err
			}
		}
		raw += lb.Engine.FareCostInTimeUnits(fare, req.ValueOfTime)

		util := lb.Engine.ToUtilsSpace(raw)
		newCost := best.LabelCost + util
		if newCost <= 0 {
			return &cost.NegativeUtilityDetected{Stop: int32(b.StopID), Cost: newCost}
		}
		label := StopLabel{
			LabelCost:    newCost,
			DeparrTime:   b.Departure,
			DeparrMode:   netmodel.ModeTransit,
			SuccPredStop: alightStop,
			LinkTime:     inVeh,
			LinkCost:     util,
			Iteration:    req.Iteration,
			ArrdepTime:   best.DeparrTime,
			TripID:       a.Trip,
			BoardSeq:     b.Seq,
			AlightSeq:    a.Seq,
			WaitTime:     wait,
			Fare:         fare,
			FarePeriod:   curFP,
		}
		lb.relax(hyperlinks, q, stochastic, theta, maxCost, b.StopID, label)
	}
	return nil
}

// expandAlightInbound is the mirror of expandBoardOutbound for a forward
// (departure-anchored) search: it extends across one trip departing
// boardStop, generating a candidate label at each alighting-candidate stop.
func (lb *Labeler) expandAlightInbound(req Request, hyperlinks map[netmodel.StopID]*Hyperlink, q *labelQueue, stochastic bool, theta, maxCost float64, bumpBuffer netmodel.Seconds, boardStop netmodel.StopID, best StopLabel, d netmodel.TripDeparture) error {
	trip, ok := lb.NM.Trip(d.Trip)
	if !ok {
		return nil
	}
	route, ok := lb.NM.Route(trip.RouteID)
	if !ok {
		return nil
	}
	if !permittedTransit(req.PermittedTransitModes, route.SupplyMode) {
		return nil
	}
	if lb.Capacity.Blocked(d.Trip, boardStop, d.DepTime, bumpBuffer) {
		return nil
	}
	applyPenalty := best.DeparrMode != netmodel.ModeAccess && best.DeparrMode != netmodel.ModeEgress

	for _, al := range lb.NM.TripStopsAfter(d.Trip, d.Seq) {
		inVeh := al.Arrival - d.DepTime
		wait := d.DepTime - best.DeparrTime
		if inVeh < 0 || wait < 0 {
			continue
		}
		raw, err := lb.transitLegCost(req, route, inVeh, wait)
		if err != nil {
			return err
		}
		if applyPenalty {
			p, err := lb.transferPenaltyCost(req)
			if err != nil {
				return err
			}
			raw += p
		}
		boardZone, _ := lb.NM.StopZone(boardStop)
		alightZone, _ := lb.NM.StopZone(al.StopID)
		var fare float64
		curFP := netmodel.NoFarePeriod
		if fp, ok := lb.NM.FarePeriodFor(d.Trip, boardZone, alightZone); ok {
			curFP = fp
			var err error
			fare, err = cost.FareWithTransfer(lb.NM, best.FarePeriod, curFP, applyPenalty && !lb.Cfg.TransferFareIgnorePathfinding, false)
			if err != nil {
				return err
			}
		}
		raw += lb.Engine.FareCostInTimeUnits(fare, req.ValueOfTime)

		util := lb.Engine.ToUtilsSpace(raw)
		newCost := best.LabelCost + util
		if newCost <= 0 {
			return &cost.NegativeUtilityDetected{Stop: int32(al.StopID), Cost: newCost}
		}
		label := StopLabel{
			LabelCost:    newCost,
			DeparrTime:   al.Arrival,
			DeparrMode:   netmodel.ModeTransit,
			SuccPredStop: boardStop,
			LinkTime:     inVeh,
			LinkCost:     util,
			Iteration:    req.Iteration,
			ArrdepTime:   best.DeparrTime,
			TripID:       d.Trip,
			BoardSeq:     d.Seq,
			AlightSeq:    al.Seq,
			WaitTime:     wait,
			Fare:         fare,
			FarePeriod:   curFP,
		}
		lb.relax(hyperlinks, q, stochastic, theta, maxCost, al.StopID, label)
	}
	return nil
}

// finalize labels the request's other zone (origin for outbound,
// destination for inbound) by combining each of its access/egress links
// with the nonwalk label of the stop it reaches — the mirror of the
// seeding step, and the boundary the Enumerator's first draw samples
// over (spec §4.3's final step, §4.4 step 1).
func (lb *Labeler) finalize(outbound bool, req Request, hyperlinks map[netmodel.StopID]*Hyperlink, theta float64, stochastic bool) (*Hyperlink, error) {
	var zoneID netmodel.ZoneID
	var modes []netmodel.SupplyMode
	var demandType netmodel.DemandModeType
	if outbound {
		zoneID, modes, demandType = req.OriginZone, req.PermittedAccessModes, netmodel.DemandAccess
	} else {
		zoneID, modes, demandType = req.DestinationZone, req.PermittedEgressModes, netmodel.DemandEgress
	}

	zone, ok := lb.NM.Zone(zoneID)
	if !ok {
		return nil, &NoEgressReached{}
	}

	start := &Hyperlink{}
	reached := false
	for supplyMode, links := range zone.AccessLinks {
		if len(modes) > 0 && !containsMode(modes, supplyMode) {
			continue
		}
		for _, link := range links {
			hl := hyperlinks[link.StopID]
			if hl == nil || len(hl.Labels) == 0 {
				continue
			}
			var baseCost float64
			if stochastic {
				c, ok := hl.NonWalkLabelCost(theta)
				if !ok {
					continue
				}
				baseCost = c
			} else {
				best := bestLabel(hl)
				if best.DeparrMode != netmodel.ModeTransit {
					continue
				}
				baseCost = best.LabelCost
			}
			anchor := bestLabel(hl).DeparrTime

			raw, err := lb.accessEgressLinkCost(req, demandType, link)
			if err != nil {
				return nil, err
			}
			util := lb.Engine.ToUtilsSpace(raw)
			newCost := baseCost + util
			if newCost <= 0 {
				return nil, &cost.NegativeUtilityDetected{Stop: int32(link.StopID), Cost: newCost}
			}
			var deparr netmodel.Seconds
			if outbound {
				deparr = anchor - link.Time
			} else {
				deparr = anchor + link.Time
			}
			label := StopLabel{
				LabelCost:    newCost,
				DeparrTime:   deparr,
				DeparrMode:   demandTypeToLinkMode(demandType),
				SuccPredStop: link.StopID,
				LinkTime:     link.Time,
				LinkCost:     util,
				Iteration:    req.Iteration,
				ArrdepTime:   anchor,
			}
			if stochastic {
				start.AddStochastic(label, theta, math.Inf(1))
			} else {
				start.AddDeterministic(label)
			}
			reached = true
		}
	}
	if !reached {
		return nil, &NoEgressReached{}
	}
	return start, nil
}

func (lb *Labeler) relax(hyperlinks map[netmodel.StopID]*Hyperlink, q *labelQueue, stochastic bool, theta, maxCost float64, stop netmodel.StopID, label StopLabel) {
	hl := hyperlinks[stop]
	if hl == nil {
		hl = &Hyperlink{}
		hyperlinks[stop] = hl
	}
	if stochastic {
		newCost, enqueue := hl.AddStochastic(label, theta, maxCost)
		if enqueue {
			q.push(newCost, stop)
		}
	} else if hl.AddDeterministic(label) {
		q.push(hl.Cost, stop)
	}
}

func bestLabel(hl *Hyperlink) StopLabel {
	best := hl.Labels[0]
	for _, l := range hl.Labels[1:] {
		if l.LabelCost < best.LabelCost {
			best = l
		}
	}
	return best
}

func demandTypeToLinkMode(d netmodel.DemandModeType) netmodel.LinkMode {
	if d == netmodel.DemandEgress {
		return netmodel.ModeEgress
	}
	return netmodel.ModeAccess
}

func containsMode(modes []netmodel.SupplyMode, m netmodel.SupplyMode) bool {
	for _, x := range modes {
		if x == m {
			return true
		}
	}
	return false
}

func permittedTransit(modes []netmodel.SupplyMode, m netmodel.SupplyMode) bool {
	if len(modes) == 0 {
		return true
	}
	return containsMode(modes, m)
}

func (lb *Labeler) accessEgressLinkCost(req Request, demandType netmodel.DemandModeType, link netmodel.AccessLink) (float64, error) {
	k := weights.Key{UserClass: req.UserClass, Purpose: req.Purpose, DemandModeType: demandType, DemandMode: string(link.SupplyMode), SupplyMode: link.SupplyMode}
	return lb.Engine.LinkCost(k, map[string]float64{"time_min": float64(link.Time) / 60.0})
}

func (lb *Labeler) transferLinkCost(req Request, tr netmodel.Transfer) (float64, error) {
	k := weights.Key{UserClass: req.UserClass, Purpose: req.Purpose, DemandModeType: netmodel.DemandTransfer, DemandMode: "walk", SupplyMode: netmodel.SupplyWalk}
	return lb.Engine.LinkCost(k, map[string]float64{"time_min": float64(tr.Time) / 60.0})
}

func (lb *Labeler) transferPenaltyCost(req Request) (float64, error) {
	k := weights.Key{UserClass: req.UserClass, Purpose: req.Purpose, DemandModeType: netmodel.DemandTransfer, DemandMode: "transfer_penalty", SupplyMode: netmodel.SupplyTransferPenalty}
	return lb.Engine.LinkCost(k, map[string]float64{"transfer_penalty": 1})
}

func (lb *Labeler) transitLegCost(req Request, route netmodel.Route, inVeh, wait netmodel.Seconds) (float64, error) {
	k := weights.Key{UserClass: req.UserClass, Purpose: req.Purpose, DemandModeType: netmodel.DemandTransit, DemandMode: route.DemandMode, SupplyMode: route.SupplyMode}
	return lb.Engine.LinkCost(k, map[string]float64{
		"in_vehicle_time_min": float64(inVeh) / 60.0,
		"wait_time_min":       float64(wait) / 60.0,
	})
}
