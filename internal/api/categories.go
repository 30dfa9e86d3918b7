package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/packzen/internal/model"
	"github.com/erazemk/packzen/internal/store"
)

// CategoriesHandler handles the current user's categories.
type CategoriesHandler struct {
	DB *sql.DB
}

type categoryRequest struct {
	Name      string `json:"name" validate:"required,max=60"`
	Icon      string `json:"icon" validate:"max=16"`
	SortOrder *int   `json:"sort_order"`
}

func (h *CategoriesHandler) owned(w http.ResponseWriter, r *http.Request) (*model.Category, bool) {
	cat, err := store.GetCategory(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, "get category")
		return nil, false
	}
	if cat == nil || cat.UserID != GetClaims(r.Context()).UserID {
		jsonError(w, http.StatusNotFound, "category not found")
		return nil, false
	}
	return cat, true
}

// List handles GET /api/categories.
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	cats, err := store.ListCategories(r.Context(), h.DB, GetClaims(r.Context()).UserID)
	if err != nil {
		writeError(w, r, err, "list categories")
		return
	}
	if cats == nil {
		cats = []model.Category{}
	}
	jsonResponse(w, http.StatusOK, cats)
}

// Create handles POST /api/categories.
func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeValid(w, r, &req) {
		return
	}

	cat, err := store.CreateCategory(r.Context(), h.DB, GetClaims(r.Context()).UserID, req.Name, req.Icon)
	if err != nil {
		writeError(w, r, err, "create category")
		return
	}
	jsonResponse(w, http.StatusCreated, cat)
}

// Update handles PUT /api/categories/{id}.
func (h *CategoriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	cat, ok := h.owned(w, r)
	if !ok {
		return
	}

	var req categoryRequest
	if !decodeValid(w, r, &req) {
		return
	}
	sortOrder := cat.SortOrder
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	}

	updated, err := store.UpdateCategory(r.Context(), h.DB, cat.ID, req.Name, req.Icon, sortOrder)
	if err != nil {
		writeError(w, r, err, "update category")
		return
	}
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/categories/{id}.
func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	cat, ok := h.owned(w, r)
	if !ok {
		return
	}

	if err := store.DeleteCategory(r.Context(), h.DB, cat.ID); err != nil {
		writeError(w, r, err, "delete category")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "category deleted"})
}
