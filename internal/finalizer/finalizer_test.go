package finalizer

import (
	"testing"

	"github.com/fast-trips/fast-trips-core/internal/config"
	"github.com/fast-trips/fast-trips-core/internal/cost"
	"github.com/fast-trips/fast-trips-core/internal/ftpath"
	"github.com/fast-trips/fast-trips-core/internal/labeler"
	"github.com/fast-trips/fast-trips-core/internal/netmodel"
	"github.com/fast-trips/fast-trips-core/internal/rng"
)

// s5Fixture mirrors cost's S5 scenario: two fare periods, a discounted
// transfer from period 1 to 2, and a free-transfer allowance within period 1.
func s5Fixture(t *testing.T) *netmodel.NetworkModel {
	t.Helper()
	nm, err := netmodel.Build(netmodel.BuildInput{
		Routes: []netmodel.Route{{ID: 1}, {ID: 2}},
		Zones:  []netmodel.ZoneInput{{ID: 1}, {ID: 2}},
		Stops:  []netmodel.StopInput{{ID: 1, ZoneID: 1}, {ID: 2, ZoneID: 1}, {ID: 3, ZoneID: 2}},
		Trips: []netmodel.TripInput{
			{ID: 10, RouteID: 1, StopTimes: []netmodel.TripStopTime{
				{StopID: 1, Seq: 1, Arrival: 1000, Departure: 1000},
				{StopID: 2, Seq: 2, Arrival: 1200, Departure: 1200},
			}},
			{ID: 20, RouteID: 2, StopTimes: []netmodel.TripStopTime{
				{StopID: 2, Seq: 1, Arrival: 1900, Departure: 1900},
				{StopID: 3, Seq: 2, Arrival: 2100, Departure: 2100},
			}},
		},
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
	return nm
}

func s5Request() labeler.Request {
	return labeler.Request{
		PersonID:        "p1",
		PersonTripID:    "t1",
		OriginZone:      1,
		DestinationZone: 2,
		PreferredTime:   2100,
		TimeTarget:      labeler.TargetArrival,
		UserClass:       "all",
		Purpose:         "work",
		ValueOfTime:     10,
	}
}

// twoLegPath builds a path with two transit legs both in fare period 1,
// the second boarding 900s after the first (within the 1800s allowance),
// each carrying an approximate Fare/Cost the Enumerator would have assigned
// (full base fare, no transfer adjustment).
func twoLegPath() ftpath.Path {
	return ftpath.Path{Links: []ftpath.PathLink{
		{Kind: ftpath.LinkAccess, ToStop: 1, WalkTime: 60, Cost: 1.0},
		{Kind: ftpath.LinkTransit, TripID: 10, FromStop: 1, ToStop: 2, BoardSeq: 1, AlightSeq: 2,
			DepTime: 1000, ArrTime: 1200, InVehicle: 200, Fare: 2.0, FarePeriod: 1, Cost: 5.0},
		{Kind: ftpath.LinkTransfer, FromStop: 2, ToStop: 2, WalkTime: 0, Cost: 0},
		{Kind: ftpath.LinkTransit, TripID: 20, FromStop: 2, ToStop: 3, BoardSeq: 1, AlightSeq: 2,
			DepTime: 1900, ArrTime: 2100, InVehicle: 200, Fare: 2.0, FarePeriod: 1, Cost: 5.0},
		{Kind: ftpath.LinkEgress, FromStop: 3, WalkTime: 60, Cost: 1.0},
	}}
}

func TestRecomputeCostAppliesFreeTransferAllowance(t *testing.T) {
	nm := s5Fixture(t)
	f := New(nm, cost.NewEngine(nil, 1.0, 0), config.Default())
	req := s5Request()

	p := twoLegPath()
	f.recomputeCost(&p, req)

	secondLeg := p.Links[3]
	if secondLeg.Fare != 0 {
		t.Fatalf("second leg within allowance should be free, got fare %v", secondLeg.Fare)
	}
	firstLeg := p.Links[1]
	if firstLeg.Fare != 2.0 {
		t.Fatalf("first leg should keep the base fare, got %v", firstLeg.Fare)
	}
}

func TestRecomputeCostIsDeterministic(t *testing.T) {
	nm := s5Fixture(t)
	f := New(nm, cost.NewEngine(nil, 1.0, 0), config.Default())
	req := s5Request()

	a := twoLegPath()
	b := twoLegPath()
	f.recomputeCost(&a, req)
	f.recomputeCost(&b, req)

	if a.PostOverlapCost != b.PostOverlapCost {
		t.Fatalf("expected deterministic recomputation, got %v vs %v", a.PostOverlapCost, b.PostOverlapCost)
	}
	for i := range a.Links {
		if a.Links[i].Fare != b.Links[i].Fare || a.Links[i].Cost != b.Links[i].Cost {
			t.Fatalf("link %d diverged between runs: %+v vs %+v", i, a.Links[i], b.Links[i])
		}
	}
}

func TestRecomputeCostCrossPeriodGetsDiscountNotFree(t *testing.T) {
	nm := s5Fixture(t)
	f := New(nm, cost.NewEngine(nil, 1.0, 0), config.Default())
	req := s5Request()

	p := twoLegPath()
	p.Links[3].FarePeriod = 2 // transfer crosses into fare period 2, so the free allowance never applies
	p.Links[3].Fare = 3.0
	f.recomputeCost(&p, req)

	if p.Links[3].Fare != 2.5 {
		t.Fatalf("expected discounted transfer fare 2.5, got %v", p.Links[3].Fare)
	}
}

func TestFinalizePathSizeBounds(t *testing.T) {
	nm := s5Fixture(t)
	cfg := config.Default()
	cfg.OverlapVariable = "time"
	cfg.OverlapScaleParameter = 1.0
	cfg.OverlapSplitTransit = true
	f := New(nm, cost.NewEngine(nil, 1.0, 0), cfg)
	req := s5Request()

	pathset := &ftpath.Pathset{Paths: []ftpath.Path{twoLegPath(), overlappingSingleLegPath()}}
	stream := rng.New(rng.SeedFromRequest(req.PersonID, req.PersonTripID, req.Iteration))
	if err := f.Finalize(pathset, req, stream); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	for i, p := range pathset.Paths {
		if p.PathSize <= 0 || p.PathSize > 1 {
			t.Fatalf("path %d: expected 0 < PathSize <= 1, got %v", i, p.PathSize)
		}
	}
}

// overlappingSingleLegPath shares the first transit leg (stop 1 -> 2) with
// twoLegPath, so neither path should get a PathSize of exactly 1.
func overlappingSingleLegPath() ftpath.Path {
	return ftpath.Path{Links: []ftpath.PathLink{
		{Kind: ftpath.LinkAccess, ToStop: 1, WalkTime: 60, Cost: 1.0},
		{Kind: ftpath.LinkTransit, TripID: 10, FromStop: 1, ToStop: 2, BoardSeq: 1, AlightSeq: 2,
			DepTime: 1000, ArrTime: 1200, InVehicle: 200, Fare: 2.0, FarePeriod: 1, Cost: 5.0},
		{Kind: ftpath.LinkEgress, FromStop: 2, WalkTime: 60, Cost: 1.0},
	}}
}

func TestFinalizeDedupesRepeatedSamples(t *testing.T) {
	nm := s5Fixture(t)
	f := New(nm, cost.NewEngine(nil, 1.0, 0), config.Default())
	req := s5Request()

	pathset := &ftpath.Pathset{Paths: []ftpath.Path{twoLegPath(), twoLegPath(), twoLegPath()}}
	stream := rng.New(rng.SeedFromRequest(req.PersonID, req.PersonTripID, req.Iteration))
	if err := f.Finalize(pathset, req, stream); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(pathset.Paths) != 1 {
		t.Fatalf("expected 3 identical samples to dedupe to 1, got %d", len(pathset.Paths))
	}
	if pathset.Paths[0].Frequency != 3 {
		t.Fatalf("expected frequency 3, got %d", pathset.Paths[0].Frequency)
	}
	if pathset.Paths[0].Probability != 1.0 {
		t.Fatalf("expected the sole surviving path to carry probability 1.0, got %v", pathset.Paths[0].Probability)
	}
}

// syntheticPathset builds n distinct single-link access paths (disjoint, so
// path-size is always 1) with strictly decreasing utility, so Finalize's
// logit assigns strictly decreasing probability down the list.
func syntheticPathset(n int) []ftpath.Path {
	paths := make([]ftpath.Path, n)
	for i := 0; i < n; i++ {
		paths[i] = ftpath.Path{Links: []ftpath.PathLink{
			{Kind: ftpath.LinkAccess, ToStop: netmodel.StopID(i + 1), WalkTime: netmodel.Seconds(60 * (i + 1)), Cost: float64(i + 1)},
		}}
	}
	return paths
}

func TestPruneIsMonotonicInMaxNumPaths(t *testing.T) {
	nm := s5Fixture(t)
	req := s5Request()
	stream := rng.New(rng.SeedFromRequest(req.PersonID, req.PersonTripID, req.Iteration))

	permissive := config.Default()
	permissive.MaxNumPaths = 4
	permissive.MinPathProbability = 0.1
	restrictive := config.Default()
	restrictive.MaxNumPaths = 2
	restrictive.MinPathProbability = 0.1

	fPermissive := New(nm, cost.NewEngine(nil, 1.0, 0), permissive)
	fRestrictive := New(nm, cost.NewEngine(nil, 1.0, 0), restrictive)

	psA := &ftpath.Pathset{Paths: syntheticPathset(5)}
	psB := &ftpath.Pathset{Paths: syntheticPathset(5)}
	if err := fPermissive.Finalize(psA, req, stream); err != nil {
		t.Fatalf("Finalize permissive: %v", err)
	}
	if err := fRestrictive.Finalize(psB, req, stream); err != nil {
		t.Fatalf("Finalize restrictive: %v", err)
	}

	survivors := make(map[ftpath.Signature]bool, len(psA.Paths))
	for _, p := range psA.Paths {
		survivors[p.Signature()] = true
	}
	for _, p := range psB.Paths {
		if !survivors[p.Signature()] {
			t.Fatalf("path %v survived the tighter max_num_paths but not the looser one", p.Signature())
		}
	}
}

func TestPruneIsMonotonicInMinPathProbability(t *testing.T) {
	nm := s5Fixture(t)
	req := s5Request()
	stream := rng.New(rng.SeedFromRequest(req.PersonID, req.PersonTripID, req.Iteration))

	lenient := config.Default()
	lenient.MaxNumPaths = 2
	lenient.MinPathProbability = 0.05
	strict := config.Default()
	strict.MaxNumPaths = 2
	strict.MinPathProbability = 0.4

	fLenient := New(nm, cost.NewEngine(nil, 1.0, 0), lenient)
	fStrict := New(nm, cost.NewEngine(nil, 1.0, 0), strict)

	psA := &ftpath.Pathset{Paths: syntheticPathset(5)}
	psB := &ftpath.Pathset{Paths: syntheticPathset(5)}
	if err := fLenient.Finalize(psA, req, stream); err != nil {
		t.Fatalf("Finalize lenient: %v", err)
	}
	if err := fStrict.Finalize(psB, req, stream); err != nil {
		t.Fatalf("Finalize strict: %v", err)
	}

	survivors := make(map[ftpath.Signature]bool, len(psA.Paths))
	for _, p := range psA.Paths {
		survivors[p.Signature()] = true
	}
	for _, p := range psB.Paths {
		if !survivors[p.Signature()] {
			t.Fatalf("path %v survived the stricter min_path_probability but not the lenient one", p.Signature())
		}
	}
}

func TestFinalizeReturnsNoPathFoundOnEmptyPathset(t *testing.T) {
	nm := s5Fixture(t)
	f := New(nm, cost.NewEngine(nil, 1.0, 0), config.Default())
	req := s5Request()
	stream := rng.New(rng.SeedFromRequest(req.PersonID, req.PersonTripID, req.Iteration))

	err := f.Finalize(&ftpath.Pathset{}, req, stream)
	if _, ok := err.(*NoPathFound); !ok {
		t.Fatalf("expected *NoPathFound for an empty pathset, got %v", err)
	}
}
