package dispatch

import (
	"testing"

	"github.com/fast-trips/fast-trips-core/internal/config"
	"github.com/fast-trips/fast-trips-core/internal/cost"
	"github.com/fast-trips/fast-trips-core/internal/labeler"
	"github.com/fast-trips/fast-trips-core/internal/netmodel"
	"github.com/fast-trips/fast-trips-core/internal/rng"
	"github.com/fast-trips/fast-trips-core/internal/weights"
)

// s1Fixture mirrors the S1 scenario used across the labeler/enumerator
// packages: a single access-transit-egress path.
func s1Fixture(t *testing.T) (*netmodel.NetworkModel, *cost.Engine) {
	t.Helper()
	nm, err := netmodel.Build(netmodel.BuildInput{
		Routes: []netmodel.Route{{ID: 1, DemandMode: "local_bus", SupplyMode: "local_bus"}},
		Zones: []netmodel.ZoneInput{
			{ID: 1, AccessLinks: map[netmodel.SupplyMode][]netmodel.AccessLink{
				netmodel.SupplyWalkAccess: {{StopID: 10, Distance: 100, Time: 120, SupplyMode: netmodel.SupplyWalkAccess}},
			}},
			{ID: 2, AccessLinks: map[netmodel.SupplyMode][]netmodel.AccessLink{
				netmodel.SupplyWalkEgress: {{StopID: 20, Distance: 100, Time: 120, SupplyMode: netmodel.SupplyWalkEgress}},
			}},
		},
		Stops: []netmodel.StopInput{{ID: 10, ZoneID: 1}, {ID: 20, ZoneID: 2}},
		Trips: []netmodel.TripInput{{ID: 100, RouteID: 1, StopTimes: []netmodel.TripStopTime{
			{StopID: 10, Seq: 1, Arrival: 28800, Departure: 28800},
			{StopID: 20, Seq: 2, Arrival: 29400, Departure: 29400},
		}}},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	wb := weights.Load([]weights.WeightRow{
		{UserClass: "all", Purpose: "work", DemandModeType: netmodel.DemandAccess, DemandMode: "walk_access", SupplyMode: netmodel.SupplyWalkAccess, WeightName: "time_min", WeightValue: 2},
		{UserClass: "all", Purpose: "work", DemandModeType: netmodel.DemandEgress, DemandMode: "walk_egress", SupplyMode: netmodel.SupplyWalkEgress, WeightName: "time_min", WeightValue: 2},
		{UserClass: "all", Purpose: "work", DemandModeType: netmodel.DemandTransit, DemandMode: "local_bus", SupplyMode: "local_bus", WeightName: "wait_time_min", WeightValue: 2},
		{UserClass: "all", Purpose: "work", DemandModeType: netmodel.DemandTransit, DemandMode: "local_bus", SupplyMode: "local_bus", WeightName: "in_vehicle_time_min", WeightValue: 1},
	})
	return nm, cost.NewEngine(wb, 1.0, 0)
}

func s1Request() labeler.Request {
	return labeler.Request{
		PersonID:              "p1",
		PersonTripID:          "t1",
		OriginZone:            1,
		DestinationZone:       2,
		PreferredTime:         29520,
		TimeTarget:            labeler.TargetArrival,
		UserClass:             "all",
		Purpose:               "work",
		ValueOfTime:           10,
		PermittedAccessModes:  []netmodel.SupplyMode{netmodel.SupplyWalkAccess},
		PermittedEgressModes:  []netmodel.SupplyMode{netmodel.SupplyWalkEgress},
		PermittedTransitModes: []netmodel.SupplyMode{"local_bus"},
	}
}

func TestFindPathsEndToEndDeterministic(t *testing.T) {
	nm, eng := s1Fixture(t)
	cfg := config.Default()
	cfg.PathfindingType = config.Deterministic
	cfg.TimeWindowMinutes = 30

	req := s1Request()
	disp := New(nm, eng, cfg, nil)
	stream := rng.New(rng.SeedFromRequest(req.PersonID, req.PersonTripID, req.Iteration))

	pathset, diags, err := disp.FindPaths(req, stream)
	if err != nil {
		t.Fatalf("FindPaths: %v", err)
	}
	if diags.Incomplete {
		t.Fatal("expected a complete result")
	}
	if len(pathset.Paths) != 1 {
		t.Fatalf("expected exactly one path, got %d", len(pathset.Paths))
	}
	if pathset.ChosenIndex != 0 {
		t.Fatalf("expected the sole path chosen, got index %d", pathset.ChosenIndex)
	}
	if pathset.Paths[0].Probability != 1.0 {
		t.Fatalf("expected probability 1.0 for the sole path, got %v", pathset.Paths[0].Probability)
	}
}

func TestFindPathsDeterministic(t *testing.T) {
	nm, eng := s1Fixture(t)
	cfg := config.Default()
	cfg.PathfindingType = config.Deterministic
	cfg.TimeWindowMinutes = 30
	req := s1Request()
	disp := New(nm, eng, cfg, nil)

	var costs []float64
	for i := 0; i < 3; i++ {
		stream := rng.New(rng.SeedFromRequest(req.PersonID, req.PersonTripID, req.Iteration))
		pathset, _, err := disp.FindPaths(req, stream)
		if err != nil {
			t.Fatalf("FindPaths run %d: %v", i, err)
		}
		costs = append(costs, pathset.Paths[0].PostOverlapCost)
	}
	for i := 1; i < len(costs); i++ {
		if costs[i] != costs[0] {
			t.Fatalf("expected deterministic repeat cost, got %v vs %v", costs[0], costs[i])
		}
	}
}

func TestFindPathsReturnsNoPathFoundWhenModeUnavailable(t *testing.T) {
	nm, eng := s1Fixture(t)
	cfg := config.Default()
	cfg.PathfindingType = config.Deterministic
	cfg.TimeWindowMinutes = 30

	req := s1Request()
	req.PermittedTransitModes = []netmodel.SupplyMode{"commuter_rail"}
	disp := New(nm, eng, cfg, nil)
	stream := rng.New(rng.SeedFromRequest(req.PersonID, req.PersonTripID, req.Iteration))

	_, _, err := disp.FindPaths(req, stream)
	if _, ok := err.(*NoPathFound); !ok {
		t.Fatalf("expected *NoPathFound, got %T: %v", err, err)
	}
}

func TestFindPathsRespectsCapacityBumping(t *testing.T) {
	nm, eng := s1Fixture(t)
	cfg := config.Default()
	cfg.PathfindingType = config.Deterministic
	cfg.TimeWindowMinutes = 30

	req := s1Request()
	// S4: trip 100 at stop 10 is bumped, with no bumped passenger allowed
	// to board earlier than 29000 (+ the configured bump buffer).
	capacity := labeler.CapacityState{
		{TripID: 100, Stop: 10}: 29000,
	}
	cfg.BumpBufferMinutes = 5
	disp := New(nm, eng, cfg, capacity)
	stream := rng.New(rng.SeedFromRequest(req.PersonID, req.PersonTripID, req.Iteration))

	_, _, err := disp.FindPaths(req, stream)
	if _, ok := err.(*NoPathFound); !ok {
		t.Fatalf("expected capacity bumping to block the only trip and yield NoPathFound, got %T: %v", err, err)
	}
}

func TestFindPathsPartialResultOnBudget(t *testing.T) {
	nm, eng := s1Fixture(t)
	cfg := config.Default()
	cfg.PathfindingType = config.Deterministic
	cfg.TimeWindowMinutes = 30

	req := s1Request()
	req.MaxQueuePops = 2 // cuts the search short right after the boarding label reaches stop 10
	disp := New(nm, eng, cfg, nil)
	stream := rng.New(rng.SeedFromRequest(req.PersonID, req.PersonTripID, req.Iteration))

	pathset, diags, err := disp.FindPaths(req, stream)
	if err != nil {
		t.Fatalf("expected a usable partial result, got error: %v", err)
	}
	if !diags.Incomplete {
		t.Fatal("expected Diagnostics.Incomplete to be set")
	}
	if len(pathset.Paths) == 0 {
		t.Fatal("expected the partial hyperpath to still yield a sampled path")
	}
}
