package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/packzen/internal/model"
	"github.com/erazemk/packzen/internal/store"
)

// BagsHandler handles the bags of a trip.
type BagsHandler struct {
	DB *sql.DB
}

type bagRequest struct {
	Name      string `json:"name" validate:"required,max=80"`
	Type      string `json:"type" validate:"omitempty,oneof=carry_on checked personal custom"`
	Color     string `json:"color" validate:"bag_color"`
	SortOrder *int   `json:"sort_order"`
}

func (h *BagsHandler) tripBag(w http.ResponseWriter, r *http.Request) (*model.Bag, bool) {
	trip, ok := ownedTrip(w, r, h.DB)
	if !ok {
		return nil, false
	}
	bag, err := store.GetBag(r.Context(), h.DB, r.PathValue("bagID"))
	if err != nil {
		writeError(w, r, err, "get bag")
		return nil, false
	}
	if bag == nil || bag.TripID != trip.ID {
		jsonError(w, http.StatusNotFound, "bag not found")
		return nil, false
	}
	return bag, true
}

// List handles GET /api/trips/{id}/bags.
func (h *BagsHandler) List(w http.ResponseWriter, r *http.Request) {
	trip, ok := ownedTrip(w, r, h.DB)
	if !ok {
		return
	}

	bags, err := store.ListBags(r.Context(), h.DB, trip.ID)
	if err != nil {
		writeError(w, r, err, "list bags")
		return
	}
	if bags == nil {
		bags = []model.Bag{}
	}
	jsonResponse(w, http.StatusOK, bags)
}

// Create handles POST /api/trips/{id}/bags.
func (h *BagsHandler) Create(w http.ResponseWriter, r *http.Request) {
	trip, ok := ownedTrip(w, r, h.DB)
	if !ok {
		return
	}

	var req bagRequest
	if !decodeValid(w, r, &req) {
		return
	}

	bag, err := store.CreateBag(r.Context(), h.DB, trip.ID, req.Name, req.Type, req.Color)
	if err != nil {
		writeError(w, r, err, "create bag")
		return
	}

	slog.Info("bag created", "user", GetClaims(r.Context()).Username, "trip", trip.ID, "bag", bag.ID)
	jsonResponse(w, http.StatusCreated, bag)
}

// Update handles PUT /api/trips/{id}/bags/{bagID}.
func (h *BagsHandler) Update(w http.ResponseWriter, r *http.Request) {
	bag, ok := h.tripBag(w, r)
	if !ok {
		return
	}

	var req bagRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if req.Type == "" {
		req.Type = bag.Type
	}
	sortOrder := bag.SortOrder
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	}

	updated, err := store.UpdateBag(r.Context(), h.DB, bag.ID, req.Name, req.Type, req.Color, sortOrder)
	if err != nil {
		writeError(w, r, err, "update bag")
		return
	}
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/trips/{id}/bags/{bagID}.
func (h *BagsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	bag, ok := h.tripBag(w, r)
	if !ok {
		return
	}

	if err := store.DeleteBag(r.Context(), h.DB, bag.ID); err != nil {
		writeError(w, r, err, "delete bag")
		return
	}

	slog.Info("bag deleted", "user", GetClaims(r.Context()).Username, "bag", bag.ID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "bag deleted"})
}
