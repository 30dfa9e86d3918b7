package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/packzen/internal/model"
	"github.com/erazemk/packzen/internal/store"
)

// TripsHandler handles trip endpoints. Trips are private to their owner.
type TripsHandler struct {
	DB *sql.DB
}

type tripRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Destination string `json:"destination" validate:"max=120"`
	StartDate   string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate     string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// ownedTrip loads the trip named by the {id} path value. Trips of other
// users are reported as missing.
func ownedTrip(w http.ResponseWriter, r *http.Request, db *sql.DB) (*model.Trip, bool) {
	trip, err := store.GetTrip(r.Context(), db, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, "get trip")
		return nil, false
	}
	if trip == nil || trip.UserID != GetClaims(r.Context()).UserID {
		jsonError(w, http.StatusNotFound, "trip not found")
		return nil, false
	}
	return trip, true
}

// List handles GET /api/trips.
func (h *TripsHandler) List(w http.ResponseWriter, r *http.Request) {
	trips, err := store.ListTrips(r.Context(), h.DB, GetClaims(r.Context()).UserID)
	if err != nil {
		writeError(w, r, err, "list trips")
		return
	}
	if trips == nil {
		trips = []model.Trip{}
	}
	jsonResponse(w, http.StatusOK, trips)
}

// Create handles POST /api/trips.
func (h *TripsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req tripRequest
	if !decodeValid(w, r, &req) {
		return
	}

	claims := GetClaims(r.Context())
	trip, err := store.CreateTrip(r.Context(), h.DB, claims.UserID, req.Name, req.Destination, req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, r, err, "create trip")
		return
	}

	slog.Info("trip created", "user", claims.Username, "trip", trip.ID, "name", trip.Name)
	jsonResponse(w, http.StatusCreated, trip)
}

// Get handles GET /api/trips/{id}.
func (h *TripsHandler) Get(w http.ResponseWriter, r *http.Request) {
	trip, ok := ownedTrip(w, r, h.DB)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, trip)
}

// Update handles PUT /api/trips/{id}.
func (h *TripsHandler) Update(w http.ResponseWriter, r *http.Request) {
	trip, ok := ownedTrip(w, r, h.DB)
	if !ok {
		return
	}

	var req tripRequest
	if !decodeValid(w, r, &req) {
		return
	}

	updated, err := store.UpdateTrip(r.Context(), h.DB, trip.ID, req.Name, req.Destination, req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, r, err, "update trip")
		return
	}
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/trips/{id}.
func (h *TripsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	trip, ok := ownedTrip(w, r, h.DB)
	if !ok {
		return
	}

	if err := store.DeleteTrip(r.Context(), h.DB, trip.ID); err != nil {
		writeError(w, r, err, "delete trip")
		return
	}

	slog.Info("trip deleted", "user", GetClaims(r.Context()).Username, "trip", trip.ID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "trip deleted"})
}

// Snapshot handles GET /api/trips/{id}/snapshot.
func (h *TripsHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	trip, ok := ownedTrip(w, r, h.DB)
	if !ok {
		return
	}

	snap, err := store.GetSnapshot(r.Context(), h.DB, trip.ID)
	if err != nil {
		writeError(w, r, err, "load trip")
		return
	}
	jsonResponse(w, http.StatusOK, snap)
}
