package main

import (
	"github.com/fast-trips/fast-trips-core/internal/cost"
	"github.com/fast-trips/fast-trips-core/internal/netmodel"
	"github.com/fast-trips/fast-trips-core/internal/weights"
)

// demoNetwork builds a small in-memory network for running the daemon
// without a database: two zones a short walk from two stops, one bus
// route connecting them every 10 minutes through the morning peak. It
// exists purely so /api/v1/pathset has something to answer against when
// FASTTRIPS_DATABASE_URL isn't set; integration deployments load their
// NetworkModel from pgload instead (see main.go).
func demoNetwork() (*netmodel.NetworkModel, *cost.Engine, error) {
	in := netmodel.BuildInput{
		Routes: []netmodel.Route{
			{ID: 1, DemandMode: "local_bus", SupplyMode: "local_bus"},
		},
		Zones: []netmodel.ZoneInput{
			{ID: 1, AccessLinks: map[netmodel.SupplyMode][]netmodel.AccessLink{
				netmodel.SupplyWalkAccess: {{StopID: 10, Distance: 200, Time: 180, SupplyMode: netmodel.SupplyWalkAccess}},
			}},
			{ID: 2, AccessLinks: map[netmodel.SupplyMode][]netmodel.AccessLink{
				netmodel.SupplyWalkEgress: {{StopID: 20, Distance: 150, Time: 140, SupplyMode: netmodel.SupplyWalkEgress}},
			}},
		},
		Stops: []netmodel.StopInput{
			{ID: 10, ZoneID: 1},
			{ID: 20, ZoneID: 2},
		},
	}

	// One bus every 10 minutes from 07:00 to 09:00.
	tripID := netmodel.TripID(100)
	for depart := netmodel.Seconds(7 * 3600); depart <= 9*3600; depart += 600 {
		in.Trips = append(in.Trips, netmodel.TripInput{
			ID:      tripID,
			RouteID: 1,
			StopTimes: []netmodel.TripStopTime{
				{StopID: 10, Seq: 1, Arrival: depart, Departure: depart},
				{StopID: 20, Seq: 2, Arrival: depart + 600, Departure: depart + 600},
			},
		})
		tripID++
	}

	nm, err := netmodel.Build(in)
	if err != nil {
		return nil, nil, err
	}

	wb := weights.Load([]weights.WeightRow{
		{UserClass: "all", Purpose: "work", DemandModeType: netmodel.DemandAccess, DemandMode: "walk_access", SupplyMode: netmodel.SupplyWalkAccess, WeightName: "time_min", WeightValue: 2},
		{UserClass: "all", Purpose: "work", DemandModeType: netmodel.DemandEgress, DemandMode: "walk_egress", SupplyMode: netmodel.SupplyWalkEgress, WeightName: "time_min", WeightValue: 2},
		{UserClass: "all", Purpose: "work", DemandModeType: netmodel.DemandTransit, DemandMode: "local_bus", SupplyMode: "local_bus", WeightName: "wait_time_min", WeightValue: 2},
		{UserClass: "all", Purpose: "work", DemandModeType: netmodel.DemandTransit, DemandMode: "local_bus", SupplyMode: "local_bus", WeightName: "in_vehicle_time_min", WeightValue: 1},
	})

	return nm, cost.NewEngine(wb, 1.0, 2.0), nil
}
