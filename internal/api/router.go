package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/cors"

	"github.com/erazemk/packzen/internal/auth"
	"github.com/erazemk/packzen/internal/catalog"
	"github.com/erazemk/packzen/internal/model"
	"github.com/erazemk/packzen/internal/ratelimit"
)

// Options configures the router.
type Options struct {
	Issuer       *auth.Issuer
	Catalog      *catalog.Catalog
	LoginLimiter *ratelimit.KeyedRateLimiter
	CORSOrigins  []string
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, opts Options) http.Handler {
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}

	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, Issuer: opts.Issuer}
	usersHandler := &UsersHandler{DB: db, Catalog: opts.Catalog}
	tripsHandler := &TripsHandler{DB: db}
	bagsHandler := &BagsHandler{DB: db}
	categoriesHandler := &CategoriesHandler{DB: db}
	masterHandler := &MasterItemsHandler{DB: db}
	catalogHandler := &CatalogHandler{Catalog: opts.Catalog}
	itemsHandler := &TripItemsHandler{DB: db, Catalog: opts.Catalog}
	movesHandler := &MovesHandler{DB: db}

	authMW := AuthMiddleware(opts.Issuer, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	authed := func(h http.HandlerFunc) http.Handler { return authMW(h) }

	// Public: login.
	var login http.Handler = http.HandlerFunc(authHandler.Login)
	if opts.LoginLimiter != nil {
		login = RateLimit(opts.LoginLimiter)(login)
	}
	mux.Handle("POST /api/auth/login", login)

	mux.Handle("POST /api/auth/logout", authed(authHandler.Logout))
	mux.Handle("PUT /api/auth/password", authed(authHandler.ChangePassword))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Trips.
	mux.Handle("GET /api/trips", authed(tripsHandler.List))
	mux.Handle("POST /api/trips", authed(tripsHandler.Create))
	mux.Handle("GET /api/trips/{id}", authed(tripsHandler.Get))
	mux.Handle("PUT /api/trips/{id}", authed(tripsHandler.Update))
	mux.Handle("DELETE /api/trips/{id}", authed(tripsHandler.Delete))
	mux.Handle("GET /api/trips/{id}/snapshot", authed(tripsHandler.Snapshot))

	// Bags.
	mux.Handle("GET /api/trips/{id}/bags", authed(bagsHandler.List))
	mux.Handle("POST /api/trips/{id}/bags", authed(bagsHandler.Create))
	mux.Handle("PUT /api/trips/{id}/bags/{bagID}", authed(bagsHandler.Update))
	mux.Handle("DELETE /api/trips/{id}/bags/{bagID}", authed(bagsHandler.Delete))

	// Categories.
	mux.Handle("GET /api/categories", authed(categoriesHandler.List))
	mux.Handle("POST /api/categories", authed(categoriesHandler.Create))
	mux.Handle("PUT /api/categories/{id}", authed(categoriesHandler.Update))
	mux.Handle("DELETE /api/categories/{id}", authed(categoriesHandler.Delete))

	// Master items and the built-in catalog.
	mux.Handle("GET /api/master-items", authed(masterHandler.List))
	mux.Handle("POST /api/master-items", authed(masterHandler.Create))
	mux.Handle("GET /api/master-items/{id}", authed(masterHandler.Get))
	mux.Handle("PUT /api/master-items/{id}", authed(masterHandler.Update))
	mux.Handle("DELETE /api/master-items/{id}", authed(masterHandler.Delete))
	mux.Handle("GET /api/master-items/{id}/image", authed(masterHandler.GetImage))
	mux.Handle("PUT /api/master-items/{id}/image", authed(masterHandler.UploadImage))
	mux.Handle("GET /api/catalog", authed(catalogHandler.List))

	// Trip items and moves.
	mux.Handle("GET /api/trips/{id}/items", authed(itemsHandler.List))
	mux.Handle("POST /api/trips/{id}/items", authed(itemsHandler.Create))
	mux.Handle("POST /api/trips/{id}/items/from-master", authed(itemsHandler.FromMaster))
	mux.Handle("POST /api/trips/{id}/items/from-catalog", authed(itemsHandler.FromCatalog))
	mux.Handle("PUT /api/trips/{id}/items/{itemID}", authed(itemsHandler.Update))
	mux.Handle("DELETE /api/trips/{id}/items/{itemID}", authed(itemsHandler.Delete))
	mux.Handle("POST /api/trips/{id}/items/{itemID}/move", authed(itemsHandler.Move))
	mux.Handle("GET /api/trips/{id}/moves", authed(movesHandler.List))
	mux.Handle("POST /api/trips/{id}/moves/{moveID}/undo", authed(movesHandler.Undo))

	var handler http.Handler = mux
	if len(opts.CORSOrigins) > 0 {
		handler = cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Retry-After"},
			AllowCredentials: false,
			MaxAge:           300,
		})(handler)
	}
	return LoggingMiddleware(handler)
}
