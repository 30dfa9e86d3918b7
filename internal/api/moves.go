package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/packzen/internal/model"
	"github.com/erazemk/packzen/internal/store"
)

// MovesHandler exposes a trip's move history and undo.
type MovesHandler struct {
	DB *sql.DB
}

// List handles GET /api/trips/{id}/moves?item_id=&all=&limit=.
func (h *MovesHandler) List(w http.ResponseWriter, r *http.Request) {
	trip, ok := ownedTrip(w, r, h.DB)
	if !ok {
		return
	}

	q := r.URL.Query()
	f := store.MoveFilter{ItemID: q.Get("item_id")}
	f.IncludeUndone, _ = strconv.ParseBool(q.Get("all"))
	if l := q.Get("limit"); l != "" {
		limit, err := strconv.ParseUint(l, 10, 64)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		f.Limit = limit
	}

	moves, err := store.ListMoves(r.Context(), h.DB, trip.ID, f)
	if err != nil {
		writeError(w, r, err, "list moves")
		return
	}
	if moves == nil {
		moves = []model.Move{}
	}
	jsonResponse(w, http.StatusOK, moves)
}

// Undo handles POST /api/trips/{id}/moves/{moveID}/undo.
func (h *MovesHandler) Undo(w http.ResponseWriter, r *http.Request) {
	trip, ok := ownedTrip(w, r, h.DB)
	if !ok {
		return
	}

	move, err := store.GetMove(r.Context(), h.DB, r.PathValue("moveID"))
	if err != nil {
		writeError(w, r, err, "get move")
		return
	}
	if move == nil || move.TripID != trip.ID {
		jsonError(w, http.StatusNotFound, "move not found")
		return
	}

	item, err := store.UndoMove(r.Context(), h.DB, move.ID)
	if err != nil {
		writeError(w, r, err, "undo move")
		return
	}

	slog.Info("move undone", "user", GetClaims(r.Context()).Username, "move", move.ID, "item", item.ID)
	jsonResponse(w, http.StatusOK, item)
}
