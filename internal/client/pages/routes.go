package pages

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts every screen.
//
// Routes:
//
//	GET /                 → Home
//	GET /products         → Products (filters from the query string)
//	GET /products/{id}    → Product
//	GET /gyms             → Gyms
//	GET /gyms/{id}        → Gym
//	GET /programs         → Programs
//	GET /programs/{id}    → Program
//	GET /coaches/{id}     → Coach
//	GET /compare          → Compare
//	GET /login            → Login
//	GET /signup           → Signup (also /register)
//	GET /favorites        → Favorites (guarded by RequireAuth)
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.StripSlashes)

	r.Get("/", h.Home)
	r.Get("/products", h.Products)
	r.Get("/products/{id}", h.Product)
	r.Get("/gyms", h.Gyms)
	r.Get("/gyms/{id}", h.Gym)
	r.Get("/programs", h.Programs)
	r.Get("/programs/{id}", h.Program)
	r.Get("/coaches/{id}", h.Coach)
	r.Get("/compare", h.Compare)
	r.Get("/login", h.Login)
	r.Get("/signup", h.Signup)
	r.Get("/register", h.Signup)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(h.Session))
		r.Get("/favorites", h.Favorites)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, "No page at %s. Type `help` for the list of pages.\n", r.URL.Path)
	})
	return r
}
