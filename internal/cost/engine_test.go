package cost

import (
	"testing"

	"github.com/fast-trips/fast-trips-core/internal/netmodel"
	"github.com/fast-trips/fast-trips-core/internal/weights"
)

func s1Engine(t *testing.T) *Engine {
	t.Helper()
	rows := []weights.WeightRow{
		{UserClass: "all", Purpose: "work", DemandModeType: netmodel.DemandAccess, DemandMode: "walk_access", SupplyMode: netmodel.SupplyWalkAccess, WeightName: "time_min", WeightValue: 2},
		{UserClass: "all", Purpose: "work", DemandModeType: netmodel.DemandEgress, DemandMode: "walk_egress", SupplyMode: netmodel.SupplyWalkEgress, WeightName: "time_min", WeightValue: 2},
		{UserClass: "all", Purpose: "work", DemandModeType: netmodel.DemandTransit, DemandMode: "local_bus", SupplyMode: "local_bus", WeightName: "wait_time_min", WeightValue: 2},
		{UserClass: "all", Purpose: "work", DemandModeType: netmodel.DemandTransit, DemandMode: "local_bus", SupplyMode: "local_bus", WeightName: "in_vehicle_time_min", WeightValue: 1},
	}
	return NewEngine(weights.Load(rows), 1.0, 0)
}

// S1: direct walk-local_bus-walk path, access=2min, wait=0, in_vehicle=10min,
// egress=2min -> expected cost 2*2 + 2*0 + 1*10 + 2*2 = 18.0
func TestS1DeterministicCost(t *testing.T) {
	e := s1Engine(t)
	accessKey := weights.Key{UserClass: "all", Purpose: "work", DemandModeType: netmodel.DemandAccess, DemandMode: "walk_access", SupplyMode: netmodel.SupplyWalkAccess}
	egressKey := weights.Key{UserClass: "all", Purpose: "work", DemandModeType: netmodel.DemandEgress, DemandMode: "walk_egress", SupplyMode: netmodel.SupplyWalkEgress}
	transitKey := weights.Key{UserClass: "all", Purpose: "work", DemandModeType: netmodel.DemandTransit, DemandMode: "local_bus", SupplyMode: "local_bus"}

	access, err := e.LinkCost(accessKey, map[string]float64{"time_min": 2})
	if err != nil {
		t.Fatal(err)
	}
	egress, err := e.LinkCost(egressKey, map[string]float64{"time_min": 2})
	if err != nil {
		t.Fatal(err)
	}
	transit, err := e.LinkCost(transitKey, map[string]float64{"wait_time_min": 0, "in_vehicle_time_min": 10})
	if err != nil {
		t.Fatal(err)
	}

	total := access + transit + egress
	if total != 18.0 {
		t.Fatalf("expected S1 cost 18.0, got %v", total)
	}
}

func TestLinkCostReportsMissingWeight(t *testing.T) {
	e := s1Engine(t)
	k := weights.Key{UserClass: "nope", Purpose: "nope", DemandModeType: netmodel.DemandTransit, DemandMode: "nope", SupplyMode: "nope"}
	_, err := e.LinkCost(k, map[string]float64{"in_vehicle_time_min": 1})
	if err == nil {
		t.Fatal("expected WeightLookupMissing")
	}
	var missing *WeightLookupMissing
	if !asMissing(err, &missing) {
		t.Fatalf("expected *WeightLookupMissing, got %T: %v", err, err)
	}
}

func asMissing(err error, target **WeightLookupMissing) bool {
	m, ok := err.(*WeightLookupMissing)
	if ok {
		*target = m
	}
	return ok
}

func TestFareWithTransferS5(t *testing.T) {
	nm, err := netmodel.Build(netmodel.BuildInput{
		Zones: []netmodel.ZoneInput{{ID: 1}, {ID: 2}},
		Stops: []netmodel.StopInput{{ID: 1, ZoneID: 1}, {ID: 2, ZoneID: 2}},
		FarePeriods: []netmodel.FarePeriod{
			{ID: 1, BaseFare: 2.0, FreeTransferAllowance: 1800},
			{ID: 2, BaseFare: 3.0},
		},
		FareTransferRules: []netmodel.FareTransferRule{
			{FromFarePeriod: 1, ToFarePeriod: 2, RuleType: netmodel.FareRuleDiscount, Amount: 0.50},
		},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	legA1, err := FareWithTransfer(nm, netmodel.NoFarePeriod, 1, false, false)
	if err != nil || legA1 != 2.0 {
		t.Fatalf("first A leg: want 2.0, got %v err=%v", legA1, err)
	}
	legA2, err := FareWithTransfer(nm, 1, 1, true, true)
	if err != nil || legA2 != 0 {
		t.Fatalf("second A leg (free within period): want 0, got %v err=%v", legA2, err)
	}
	legB, err := FareWithTransfer(nm, 1, 2, true, false)
	if err != nil || legB != 2.5 {
		t.Fatalf("B leg with discount: want 2.5, got %v err=%v", legB, err)
	}

	total := legA1 + legA2 + legB
	if total != 4.5 {
		t.Fatalf("S5 total fare: want 4.5, got %v", total)
	}
}
