package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/packzen/internal/catalog"
	"github.com/erazemk/packzen/internal/model"
	"github.com/erazemk/packzen/internal/store"
)

// TripItemsHandler handles the items of a trip and their locations.
type TripItemsHandler struct {
	DB      *sql.DB
	Catalog *catalog.Catalog
}

type tripItemRequest struct {
	Name            string  `json:"name" validate:"required,max=120"`
	Notes           string  `json:"notes" validate:"max=2000"`
	Quantity        int     `json:"quantity" validate:"gte=0,lte=999"`
	Packed          bool    `json:"packed"`
	Skipped         bool    `json:"skipped"`
	IsContainer     bool    `json:"is_container"`
	CategoryID      *string `json:"category_id"`
	BagID           *string `json:"bag_id"`
	ContainerItemID *string `json:"container_item_id"`
}

// MoveRequest is the body of a move. A container wins over a bag; both
// empty means "no bag".
type MoveRequest struct {
	BagID       *string `json:"bag_id"`
	ContainerID *string `json:"container_id"`
}

// MoveResponse reports the moved item and the recorded move. Move is
// omitted when the item was already at the destination.
type MoveResponse struct {
	Item *model.TripItem `json:"item"`
	Move *model.Move     `json:"move,omitempty"`
}

// AddFromMasterRequest adds a master item to a trip.
type AddFromMasterRequest struct {
	MasterItemID string  `json:"master_item_id" validate:"required"`
	BagID        *string `json:"bag_id"`
	ContainerID  *string `json:"container_id"`
}

// AddFromCatalogRequest adds a built-in template to a trip.
type AddFromCatalogRequest struct {
	TemplateID  string  `json:"template_id" validate:"required"`
	BagID       *string `json:"bag_id"`
	ContainerID *string `json:"container_id"`
}

func (h *TripItemsHandler) tripItem(w http.ResponseWriter, r *http.Request) (*model.TripItem, bool) {
	trip, ok := ownedTrip(w, r, h.DB)
	if !ok {
		return nil, false
	}
	item, err := store.GetTripItem(r.Context(), h.DB, r.PathValue("itemID"))
	if err != nil {
		writeError(w, r, err, "get item")
		return nil, false
	}
	if item == nil || item.TripID != trip.ID {
		jsonError(w, http.StatusNotFound, "item not found")
		return nil, false
	}
	return item, true
}

// List handles GET /api/trips/{id}/items. Supported filters: bag_id (or
// "none"), container_id, packed and q.
func (h *TripItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	trip, ok := ownedTrip(w, r, h.DB)
	if !ok {
		return
	}

	q := r.URL.Query()
	var f store.TripItemFilter
	switch bag := q.Get("bag_id"); bag {
	case "":
	case "none":
		f.NoBag = true
	default:
		f.BagID = &bag
	}
	if c := q.Get("container_id"); c != "" {
		f.ContainerID = &c
	}
	if p := q.Get("packed"); p != "" {
		packed, err := strconv.ParseBool(p)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid packed filter")
			return
		}
		f.Packed = &packed
	}
	f.Search = q.Get("q")

	items, err := store.ListTripItems(r.Context(), h.DB, trip.ID, f)
	if err != nil {
		writeError(w, r, err, "list items")
		return
	}
	if items == nil {
		items = []model.TripItem{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/trips/{id}/items.
func (h *TripItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	trip, ok := ownedTrip(w, r, h.DB)
	if !ok {
		return
	}

	var req tripItemRequest
	if !decodeValid(w, r, &req) {
		return
	}

	item, err := store.CreateTripItem(r.Context(), h.DB, store.NewTripItem{
		TripID:          trip.ID,
		Name:            req.Name,
		Notes:           req.Notes,
		Quantity:        req.Quantity,
		Packed:          req.Packed,
		Skipped:         req.Skipped,
		IsContainer:     req.IsContainer,
		CategoryID:      req.CategoryID,
		BagID:           req.BagID,
		ContainerItemID: req.ContainerItemID,
	})
	if err != nil {
		writeError(w, r, err, "create item")
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// Update handles PUT /api/trips/{id}/items/{itemID}. Location fields in the
// body are ignored; use the move endpoint.
func (h *TripItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	item, ok := h.tripItem(w, r)
	if !ok {
		return
	}

	var req tripItemRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = item.Quantity
	}

	updated, err := store.UpdateTripItem(r.Context(), h.DB, item.ID, store.TripItemUpdate{
		Name:        req.Name,
		Notes:       req.Notes,
		Quantity:    req.Quantity,
		Packed:      req.Packed,
		Skipped:     req.Skipped,
		IsContainer: req.IsContainer,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		writeError(w, r, err, "update item")
		return
	}
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/trips/{id}/items/{itemID}.
func (h *TripItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	item, ok := h.tripItem(w, r)
	if !ok {
		return
	}

	if err := store.DeleteTripItem(r.Context(), h.DB, item.ID); err != nil {
		writeError(w, r, err, "remove item")
		return
	}

	slog.Info("item removed", "user", GetClaims(r.Context()).Username, "trip", item.TripID, "item", item.ID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item removed"})
}

// Move handles POST /api/trips/{id}/items/{itemID}/move.
func (h *TripItemsHandler) Move(w http.ResponseWriter, r *http.Request) {
	item, ok := h.tripItem(w, r)
	if !ok {
		return
	}

	var req MoveRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	moved, move, err := store.MoveItem(r.Context(), h.DB, item.ID, req.BagID, req.ContainerID, &claims.UserID)
	if err != nil {
		writeError(w, r, err, "move item")
		return
	}

	if move != nil {
		slog.Info("item moved",
			"user", claims.Username,
			"item", item.ID,
			"bag", model.StrVal(moved.BagID),
			"container", model.StrVal(moved.ContainerItemID),
		)
	}
	jsonResponse(w, http.StatusOK, MoveResponse{Item: moved, Move: move})
}

// FromMaster handles POST /api/trips/{id}/items/from-master.
func (h *TripItemsHandler) FromMaster(w http.ResponseWriter, r *http.Request) {
	trip, ok := ownedTrip(w, r, h.DB)
	if !ok {
		return
	}

	var req AddFromMasterRequest
	if !decodeValid(w, r, &req) {
		return
	}

	item, err := store.AddMasterItemToTrip(r.Context(), h.DB, trip.ID, req.MasterItemID, req.BagID, req.ContainerID)
	if err != nil {
		writeError(w, r, err, "add item")
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// FromCatalog handles POST /api/trips/{id}/items/from-catalog.
func (h *TripItemsHandler) FromCatalog(w http.ResponseWriter, r *http.Request) {
	trip, ok := ownedTrip(w, r, h.DB)
	if !ok {
		return
	}

	var req AddFromCatalogRequest
	if !decodeValid(w, r, &req) {
		return
	}

	tmpl, found := h.Catalog.Get(req.TemplateID)
	if !found {
		jsonError(w, http.StatusNotFound, "catalog template not found")
		return
	}

	item, err := store.AddCatalogTemplateToTrip(r.Context(), h.DB, trip.ID, tmpl, req.BagID, req.ContainerID)
	if err != nil {
		writeError(w, r, err, "add item")
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}
