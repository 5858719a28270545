// Package api exposes CoreDispatcher.FindPaths over HTTP: a thin JSON
// request/response wrapper around find_paths, adapted from the teacher's
// internal/handler/transport_handler.go pattern (one Handler struct
// closing over its collaborators, one method per route, errors mapped to
// status codes rather than panics).
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fast-trips/fast-trips-core/internal/dispatch"
	"github.com/fast-trips/fast-trips-core/internal/ftpath"
	"github.com/fast-trips/fast-trips-core/internal/labeler"
	"github.com/fast-trips/fast-trips-core/internal/netmodel"
	"github.com/fast-trips/fast-trips-core/internal/rng"
)

// Handler wires a Dispatcher into the HTTP surface.
type Handler struct {
	Disp *dispatch.Dispatcher
}

// NewHandler constructs a Handler over an already-built Dispatcher.
func NewHandler(disp *dispatch.Dispatcher) *Handler {
	return &Handler{Disp: disp}
}

// pathsetRequest is the wire shape of a find_paths call. It mirrors
// labeler.Request field-for-field rather than inventing a parallel
// vocabulary, since the demo server's only job is to expose that
// contract over JSON.
type pathsetRequest struct {
	PersonID     string `json:"person_id"`
	PersonTripID string `json:"person_trip_id"`
	Iteration    int    `json:"iteration"`

	OriginZone      netmodel.ZoneID  `json:"origin_zone"`
	DestinationZone netmodel.ZoneID  `json:"destination_zone"`
	PreferredTime   netmodel.Seconds `json:"preferred_time"`
	TimeTarget      string           `json:"time_target"`

	UserClass   string  `json:"user_class"`
	Purpose     string  `json:"purpose"`
	ValueOfTime float64 `json:"value_of_time"`

	PermittedAccessModes  []netmodel.SupplyMode `json:"permitted_access_modes"`
	PermittedEgressModes  []netmodel.SupplyMode `json:"permitted_egress_modes"`
	PermittedTransitModes []netmodel.SupplyMode `json:"permitted_transit_modes"`

	MaxQueuePops int `json:"max_queue_pops"`
}

func (pr pathsetRequest) toRequest() labeler.Request {
	target := labeler.TargetArrival
	if pr.TimeTarget == string(labeler.TargetDeparture) {
		target = labeler.TargetDeparture
	}
	return labeler.Request{
		PersonID:              pr.PersonID,
		PersonTripID:          pr.PersonTripID,
		Iteration:             pr.Iteration,
		OriginZone:            pr.OriginZone,
		DestinationZone:       pr.DestinationZone,
		PreferredTime:         pr.PreferredTime,
		TimeTarget:            target,
		UserClass:             pr.UserClass,
		Purpose:               pr.Purpose,
		ValueOfTime:           pr.ValueOfTime,
		PermittedAccessModes:  pr.PermittedAccessModes,
		PermittedEgressModes:  pr.PermittedEgressModes,
		PermittedTransitModes: pr.PermittedTransitModes,
		MaxQueuePops:          pr.MaxQueuePops,
	}
}

type pathsetResponse struct {
	Paths       []ftpath.Path        `json:"paths"`
	ChosenIndex int                  `json:"chosen_index"`
	Incomplete  bool                 `json:"incomplete"`
	Diagnostics dispatch.Diagnostics `json:"diagnostics"`
}

// PostPathset handles POST /api/v1/pathset: decodes a pathsetRequest,
// runs find_paths, and returns the resulting Pathset plus diagnostics.
func (h *Handler) PostPathset(w http.ResponseWriter, r *http.Request) {
	var pr pathsetRequest
	if err := json.NewDecoder(r.Body).Decode(&pr); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	req := pr.toRequest()
	stream := rng.New(rng.SeedFromRequest(req.PersonID, req.PersonTripID, req.Iteration))

	pathset, diags, err := h.Disp.FindPaths(req, stream)
	if err != nil {
		if _, ok := err.(*dispatch.NoPathFound); ok {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		slog.Error("find_paths failed", "person_id", req.PersonID, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pathsetResponse{
		Paths:       pathset.Paths,
		ChosenIndex: pathset.ChosenIndex,
		Incomplete:  diags.Incomplete,
		Diagnostics: diags,
	})
}
