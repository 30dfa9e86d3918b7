package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/packzen/internal/imaging"
	"github.com/erazemk/packzen/internal/model"
	"github.com/erazemk/packzen/internal/store"
)

// MasterItemsHandler handles the current user's master item list.
type MasterItemsHandler struct {
	DB *sql.DB
}

type masterItemRequest struct {
	Name            string  `json:"name" validate:"required,max=120"`
	Notes           string  `json:"notes" validate:"max=2000"`
	CategoryID      *string `json:"category_id"`
	DefaultQuantity int     `json:"default_quantity" validate:"gte=0,lte=999"`
	IsContainer     bool    `json:"is_container"`
}

func (req masterItemRequest) input() store.MasterItemInput {
	return store.MasterItemInput{
		Name:            req.Name,
		Notes:           req.Notes,
		CategoryID:      req.CategoryID,
		DefaultQuantity: req.DefaultQuantity,
		IsContainer:     req.IsContainer,
	}
}

func (h *MasterItemsHandler) owned(w http.ResponseWriter, r *http.Request) (*model.MasterItem, bool) {
	m, err := store.GetMasterItem(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, "get master item")
		return nil, false
	}
	if m == nil || m.UserID != GetClaims(r.Context()).UserID {
		jsonError(w, http.StatusNotFound, "master item not found")
		return nil, false
	}
	return m, true
}

// List handles GET /api/master-items.
func (h *MasterItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListMasterItems(r.Context(), h.DB, GetClaims(r.Context()).UserID)
	if err != nil {
		writeError(w, r, err, "list master items")
		return
	}
	if items == nil {
		items = []model.MasterItem{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/master-items.
func (h *MasterItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req masterItemRequest
	if !decodeValid(w, r, &req) {
		return
	}

	m, err := store.CreateMasterItem(r.Context(), h.DB, GetClaims(r.Context()).UserID, req.input())
	if err != nil {
		writeError(w, r, err, "create master item")
		return
	}
	jsonResponse(w, http.StatusCreated, m)
}

// Get handles GET /api/master-items/{id}.
func (h *MasterItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, ok := h.owned(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, m)
}

// Update handles PUT /api/master-items/{id}.
func (h *MasterItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	m, ok := h.owned(w, r)
	if !ok {
		return
	}

	var req masterItemRequest
	if !decodeValid(w, r, &req) {
		return
	}

	updated, err := store.UpdateMasterItem(r.Context(), h.DB, m.ID, req.input())
	if err != nil {
		writeError(w, r, err, "update master item")
		return
	}
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/master-items/{id}.
func (h *MasterItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	m, ok := h.owned(w, r)
	if !ok {
		return
	}

	if err := store.DeleteMasterItem(r.Context(), h.DB, m.ID); err != nil {
		writeError(w, r, err, "delete master item")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "master item deleted"})
}

// UploadImage handles PUT /api/master-items/{id}/image. The body is the raw
// image; it is stored as a square JPEG thumbnail.
func (h *MasterItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	m, ok := h.owned(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes)
	defer r.Body.Close()

	thumb, err := imaging.Thumb(r.Body)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetMasterItemImage(r.Context(), h.DB, m.ID, thumb.Data, thumb.MIME); err != nil {
		writeError(w, r, err, "save image")
		return
	}

	slog.Info("master item image uploaded", "user", GetClaims(r.Context()).Username, "master_item", m.ID, "bytes", len(thumb.Data))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "image uploaded"})
}

// GetImage handles GET /api/master-items/{id}/image.
func (h *MasterItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	m, ok := h.owned(w, r)
	if !ok {
		return
	}

	data, mime, err := store.GetMasterItemImage(r.Context(), h.DB, m.ID)
	if err != nil {
		writeError(w, r, err, "get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}
