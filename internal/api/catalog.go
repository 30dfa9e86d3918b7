package api

import (
	"net/http"

	"github.com/erazemk/packzen/internal/catalog"
)

// CatalogHandler serves the built-in templates.
type CatalogHandler struct {
	Catalog *catalog.Catalog
}

// List handles GET /api/catalog, optionally filtered by ?q=.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, h.Catalog.Search(r.URL.Query().Get("q")))
}
