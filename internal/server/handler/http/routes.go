package http

import (
	"net/http"

	"github.com/atinyakov/fitcompare/internal/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handlers groups the route handlers mounted by NewRouter.
type Handlers struct {
	Auth      *AuthHandler
	Catalog   *CatalogHandler
	Favorites *FavoriteHandler
}

// NewRouter constructs the HTTP handler serving the API under /api and
// Prometheus metrics under /metrics.
//
// Routes:
//
//	POST   /api/auth/signup            → Auth.Signup
//	POST   /api/auth/login             → Auth.Login (form body)
//	GET    /api/auth/me                → Auth.Me (bearer)
//	GET    /api/products               → Catalog.ListProducts
//	GET    /api/products/search        → Catalog.SearchProducts
//	GET    /api/products/{id}          → Catalog.GetProduct
//	GET    /api/favorites              → Favorites.List (bearer)
//	POST   /api/favorites/{id}         → Favorites.Add (bearer)
//	DELETE /api/favorites/{id}         → Favorites.Remove (bearer)
//	GET    /api/gyms, /api/gyms/{id}
//	GET    /api/programs, /api/programs/{id}
//	GET    /api/programs/coaches, /api/programs/coaches/{id}
//
// Product reads are optionally authenticated so that signed-in users get
// is_favorite populated.
func NewRouter(h Handlers, auth middleware.Authenticator, metrics *middleware.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.StripSlashes)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(metrics.Handler)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(chiMiddleware.AllowContentType("application/json")).Post("/signup", h.Auth.Signup)
			r.With(chiMiddleware.AllowContentType("application/x-www-form-urlencoded")).Post("/login", h.Auth.Login)
			r.With(middleware.RequireAuth(auth)).Get("/me", h.Auth.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(auth))
			r.Get("/products", h.Catalog.ListProducts)
			r.Get("/products/search", h.Catalog.SearchProducts)
			r.Get("/products/{id}", h.Catalog.GetProduct)
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Use(middleware.RequireAuth(auth))
			r.Get("/", h.Favorites.List)
			r.Post("/{id}", h.Favorites.Add)
			r.Delete("/{id}", h.Favorites.Remove)
		})

		r.Get("/gyms", h.Catalog.ListGyms)
		r.Get("/gyms/{id}", h.Catalog.GetGym)
		r.Get("/programs", h.Catalog.ListPrograms)
		r.Get("/programs/coaches", h.Catalog.ListCoaches)
		r.Get("/programs/coaches/{id}", h.Catalog.GetCoach)
		r.Get("/programs/{id}", h.Catalog.GetProgram)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	return r
}
