package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/packzen/internal/catalog"
	"github.com/erazemk/packzen/internal/model"
	"github.com/erazemk/packzen/internal/store"
)

// UsersHandler lets admins manage travelers. New accounts start with the
// catalog's categories.
type UsersHandler struct {
	DB      *sql.DB
	Catalog *catalog.Catalog
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,min=2,max=64"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=admin user"`
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		writeError(w, r, err, "list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, users)
}

// Create handles POST /api/users. Role defaults to a regular traveler.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Role == "" {
		req.Role = model.RoleUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	ctx := r.Context()
	user, err := store.CreateUser(ctx, h.DB, req.Username, string(hash), req.Role)
	if err != nil {
		writeError(w, r, err, "create user")
		return
	}

	seeded := 0
	if h.Catalog != nil {
		for _, c := range h.Catalog.Categories() {
			if _, err := store.EnsureCategory(ctx, h.DB, user.ID, c.Name, c.Icon); err != nil {
				slog.Warn("seeding category failed", "user_id", user.ID, "category", c.Name, "error", err)
				continue
			}
			seeded++
		}
	}

	claims := GetClaims(ctx)
	slog.Info("user created", "by", claims.Username, "username", user.Username, "role", user.Role, "categories", seeded)
	jsonResponse(w, http.StatusCreated, user)
}

// Delete handles DELETE /api/users/{id}. The account is soft-deleted and
// its trips stay in place.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	claims := GetClaims(r.Context())
	if claims.UserID == id {
		jsonError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	if err := store.DeleteUser(r.Context(), h.DB, id); err != nil {
		writeError(w, r, err, "delete user")
		return
	}

	slog.Info("user deleted", "by", claims.Username, "user_id", id)
	w.WriteHeader(http.StatusNoContent)
}
