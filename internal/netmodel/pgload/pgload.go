// Package pgload builds a netmodel.NetworkModel from the same
// stops/lines/line_stops/schedules/transfers-by-distance relational
// schema the RAPTOR planner's loader this package was adapted from queried,
// adapted to the core's arena-indexed BuildInput shape instead of
// RaptorData. It is the construction-time producer side of the
// NetworkModel/WeightBook "consumed from input-parsing collaborator"
// contract (spec §6) — pathfinding itself never depends on Postgres;
// tests build NetworkModels in-memory.
package pgload

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fast-trips/fast-trips-core/internal/netmodel"
)

// dayTypes are the service calendars the schedules table partitions by,
// mirroring the three the teacher's loader queried.
var dayTypes = []string{"weekday", "saturday", "sunday"}

// secondsPerHop is the fixed inter-stop running time used when the
// schedules table gives only a first-stop departure time per trip, not a
// full per-stop timetable — the same simplification the RAPTOR loader
// this package was adapted from made (3 minutes per stop).
const secondsPerHop = 180

// Loader builds a NetworkModel from a Postgres connection pool.
type Loader struct {
	db *pgxpool.Pool
}

// New constructs a Loader over an already-connected pool.
func New(db *pgxpool.Pool) *Loader {
	return &Loader{db: db}
}

// Load queries stops, lines/line_stops/schedules and PostGIS
// ST_DWithin-based stop proximity, and constructs a NetworkModel.
//
// The source schema carries no TAZ (traffic analysis zone) table, so each
// stop is assigned its own single-stop zone with a zero-cost access link
// — a deliberate simplification recorded in DESIGN.md, not a guess about
// schema this package never saw.
func (l *Loader) Load(ctx context.Context) (*netmodel.NetworkModel, error) {
	in := netmodel.BuildInput{}

	dbToStop, err := l.loadStops(ctx, &in)
	if err != nil {
		return nil, err
	}
	if err := l.loadRoutesAndTrips(ctx, &in, dbToStop); err != nil {
		return nil, err
	}
	if err := l.loadTransfers(ctx, &in, dbToStop); err != nil {
		return nil, err
	}

	return netmodel.Build(in)
}

func (l *Loader) loadStops(ctx context.Context, in *netmodel.BuildInput) (map[int]netmodel.StopID, error) {
	rows, err := l.db.Query(ctx, "SELECT id FROM stops ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("pgload: querying stops: %w", err)
	}
	defer rows.Close()

	dbToStop := make(map[int]netmodel.StopID)
	for rows.Next() {
		var dbID int
		if err := rows.Scan(&dbID); err != nil {
			return nil, fmt.Errorf("pgload: scanning stop: %w", err)
		}
		sid := netmodel.StopID(len(dbToStop))
		dbToStop[dbID] = sid
		zoneID := netmodel.ZoneID(sid)
		in.Stops = append(in.Stops, netmodel.StopInput{ID: sid, ZoneID: zoneID})
		in.Zones = append(in.Zones, netmodel.ZoneInput{
			ID: zoneID,
			AccessLinks: map[netmodel.SupplyMode][]netmodel.AccessLink{
				netmodel.SupplyWalkAccess: {{StopID: sid, SupplyMode: netmodel.SupplyWalkAccess}},
				netmodel.SupplyWalkEgress: {{StopID: sid, SupplyMode: netmodel.SupplyWalkEgress}},
			},
		})
	}
	return dbToStop, nil
}

func (l *Loader) loadRoutesAndTrips(ctx context.Context, in *netmodel.BuildInput, dbToStop map[int]netmodel.StopID) error {
	patternRows, err := l.db.Query(ctx, "SELECT DISTINCT line_id, direction FROM line_stops")
	if err != nil {
		return fmt.Errorf("pgload: querying line patterns: %w", err)
	}
	type pattern struct{ lineID, direction int }
	var patterns []pattern
	for patternRows.Next() {
		var p pattern
		if err := patternRows.Scan(&p.lineID, &p.direction); err != nil {
			patternRows.Close()
			return fmt.Errorf("pgload: scanning line pattern: %w", err)
		}
		patterns = append(patterns, p)
	}
	patternRows.Close()

	stopRoutes := make(map[netmodel.StopID][]netmodel.RouteID)
	var nextTripID int
	for _, p := range patterns {
		var lineType string
		if err := l.db.QueryRow(ctx, "SELECT line_type FROM lines WHERE id=$1", p.lineID).Scan(&lineType); err != nil {
			continue // a line referenced by line_stops but since deleted; skip rather than fail the whole load
		}

		stopRows, err := l.db.Query(ctx,
			"SELECT stop_id FROM line_stops WHERE line_id=$1 AND direction=$2 ORDER BY stop_sequence", p.lineID, p.direction)
		if err != nil {
			return fmt.Errorf("pgload: querying line_stops for line %d: %w", p.lineID, err)
		}
		var dbStopIDs []int
		var stopIDs []netmodel.StopID
		for stopRows.Next() {
			var sid int
			if err := stopRows.Scan(&sid); err != nil {
				stopRows.Close()
				return fmt.Errorf("pgload: scanning line_stops row: %w", err)
			}
			if rid, ok := dbToStop[sid]; ok {
				dbStopIDs = append(dbStopIDs, sid)
				stopIDs = append(stopIDs, rid)
			}
		}
		stopRows.Close()
		if len(stopIDs) < 2 {
			continue
		}

		routeID := netmodel.RouteID(len(in.Routes))
		in.Routes = append(in.Routes, netmodel.Route{
			ID:         routeID,
			DemandMode: lineType,
			SupplyMode: netmodel.SupplyMode(lineType),
		})
		for _, sid := range stopIDs {
			stopRoutes[sid] = append(stopRoutes[sid], routeID)
		}

		trips, err := l.loadTripsForPattern(ctx, p.lineID, p.direction, dbStopIDs[0], routeID, stopIDs, &nextTripID)
		if err != nil {
			return err
		}
		in.Trips = append(in.Trips, trips...)
	}

	for i, s := range in.Stops {
		in.Stops[i].RouteIDs = stopRoutes[s.ID]
	}
	return nil
}

// loadTripsForPattern fetches the departure times recorded for a
// pattern's first stop under each service calendar and builds one Trip
// per departure, extrapolating downstream stop times at secondsPerHop
// per hop since the schedules table records only the first stop's time.
func (l *Loader) loadTripsForPattern(ctx context.Context, lineID, direction, firstStopDBID int, routeID netmodel.RouteID, stopIDs []netmodel.StopID, nextTripID *int) ([]netmodel.TripInput, error) {
	var trips []netmodel.TripInput
	for _, dayType := range dayTypes {
		rows, err := l.db.Query(ctx, `
			SELECT departure_time FROM schedules
			WHERE line_id=$1 AND direction=$2 AND stop_id=$3 AND day_type=$4
			ORDER BY departure_time
		`, lineID, direction, firstStopDBID, dayType)
		if err != nil {
			continue // a failed schedules query skips this day_type rather than failing the load
		}

		var starts []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				rows.Close()
				return nil, fmt.Errorf("pgload: scanning schedule row: %w", err)
			}
			starts = append(starts, t)
		}
		rows.Close()

		for _, st := range starts {
			startTime, err := time.Parse("15:04:05", st)
			if err != nil {
				return nil, fmt.Errorf("pgload: parsing departure_time %q: %w", st, err)
			}
			startSecs := netmodel.Seconds(startTime.Hour()*3600 + startTime.Minute()*60 + startTime.Second())

			stopTimes := make([]netmodel.TripStopTime, len(stopIDs))
			cur := startSecs
			for i, sid := range stopIDs {
				stopTimes[i] = netmodel.TripStopTime{StopID: sid, Seq: i + 1, Arrival: cur, Departure: cur}
				cur += secondsPerHop
			}

			trips = append(trips, netmodel.TripInput{
				ID:          netmodel.TripID(*nextTripID),
				RouteID:     routeID,
				ServiceType: dayType,
				StopTimes:   stopTimes,
			})
			*nextTripID++
		}
	}
	return trips, nil
}

// loadTransfers finds nearby stop pairs via PostGIS ST_DWithin and records
// them as Transfer entries at an assumed 1 m/s walking speed, the same
// query and speed assumption the RAPTOR loader this package was adapted
// from used.
func (l *Loader) loadTransfers(ctx context.Context, in *netmodel.BuildInput, dbToStop map[int]netmodel.StopID) error {
	rows, err := l.db.Query(ctx, `
		SELECT s1.id, s2.id, ST_Distance(s1.location::geography, s2.location::geography)
		FROM stops s1
		JOIN stops s2 ON ST_DWithin(s1.location::geography, s2.location::geography, 300)
		WHERE s1.id != s2.id
	`)
	if err != nil {
		return fmt.Errorf("pgload: querying transfers: %w", err)
	}
	defer rows.Close()

	transfers := make(map[netmodel.StopID][]netmodel.Transfer)
	for rows.Next() {
		var dbID1, dbID2 int
		var dist float64
		if err := rows.Scan(&dbID1, &dbID2, &dist); err != nil {
			return fmt.Errorf("pgload: scanning transfer row: %w", err)
		}
		from, ok1 := dbToStop[dbID1]
		to, ok2 := dbToStop[dbID2]
		if !ok1 || !ok2 {
			continue
		}
		transfers[from] = append(transfers[from], netmodel.Transfer{ToStop: to, Distance: dist, Time: netmodel.Seconds(dist)})
	}

	for i, s := range in.Stops {
		in.Stops[i].Transfers = transfers[s.ID]
	}
	return nil
}
