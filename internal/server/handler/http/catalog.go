package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/atinyakov/fitcompare/internal/middleware"
	"github.com/atinyakov/fitcompare/internal/models"
	"github.com/atinyakov/fitcompare/internal/service"
	"go.uber.org/zap"
)

// CatalogService defines the catalog reads required by the handlers.
type CatalogService interface {
	ListProducts(ctx context.Context, userID string, q models.ProductQuery) (models.Page[models.Product], error)
	GetProduct(ctx context.Context, userID string, id int64) (*models.Product, error)
	ListGyms(ctx context.Context, q models.GymQuery) (models.Page[models.Gym], error)
	GetGym(ctx context.Context, id int64) (*models.Gym, error)
	ListPrograms(ctx context.Context, q models.ProgramQuery) (models.Page[models.Program], error)
	GetProgram(ctx context.Context, id int64) (*models.Program, error)
	ListCoaches(ctx context.Context) ([]models.Coach, error)
	GetCoach(ctx context.Context, id int64) (*models.Coach, error)
}

// CatalogHandler serves products, gyms, programs and coaches.
type CatalogHandler struct {
	CatalogService CatalogService
	Log            *zap.Logger
}

var productSorts = map[string]bool{"": true, "newest": true, "price_asc": true, "price_desc": true, "rating_desc": true}

func productQuery(p *queryParams) models.ProductQuery {
	q := models.ProductQuery{
		Search:    p.str("q"),
		Category:  p.str("category"),
		Brand:     p.str("brand"),
		MinPrice:  p.float("min_price"),
		MaxPrice:  p.float("max_price"),
		MinRating: p.float("min_rating"),
		Sort:      p.str("sort"),
	}
	q.Page, q.PageSize = p.paging()
	if q.MinRating > 5 {
		p.fail("min_rating", "Input should be less than or equal to 5")
	}
	if !productSorts[q.Sort] {
		p.fail("sort", "Input should be 'newest', 'price_asc', 'price_desc' or 'rating_desc'")
	}
	return q
}

// ListProducts handles GET /api/products.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	p := newQueryParams(r)
	q := productQuery(p)
	if !p.valid(w) {
		return
	}
	h.listProducts(w, r, q)
}

// SearchProducts handles GET /api/products/search. The q parameter is required.
func (h *CatalogHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	p := newQueryParams(r)
	q := productQuery(p)
	if q.Search == "" {
		p.fail("q", "Field required")
	}
	if !p.valid(w) {
		return
	}
	h.listProducts(w, r, q)
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request, q models.ProductQuery) {
	page, err := h.CatalogService.ListProducts(r.Context(), middleware.GetUserIDFromContext(r.Context()), q)
	if err != nil {
		h.internalError(w, "list products", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetProduct handles GET /api/products/{id}.
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	p, err := h.CatalogService.GetProduct(r.Context(), middleware.GetUserIDFromContext(r.Context()), id)
	h.writeOne(w, p, err, "Product not found")
}

// ListGyms handles GET /api/gyms.
func (h *CatalogHandler) ListGyms(w http.ResponseWriter, r *http.Request) {
	p := newQueryParams(r)
	q := models.GymQuery{
		Search:  p.str("q"),
		City:    p.str("city"),
		Brand:   p.str("brand"),
		Open247: p.boolean("open_24_7"),
	}
	q.Page, q.PageSize = p.paging()
	if !p.valid(w) {
		return
	}
	page, err := h.CatalogService.ListGyms(r.Context(), q)
	if err != nil {
		h.internalError(w, "list gyms", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetGym handles GET /api/gyms/{id}.
func (h *CatalogHandler) GetGym(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	g, err := h.CatalogService.GetGym(r.Context(), id)
	h.writeOne(w, g, err, "Gym not found")
}

// ListPrograms handles GET /api/programs.
func (h *CatalogHandler) ListPrograms(w http.ResponseWriter, r *http.Request) {
	p := newQueryParams(r)
	q := models.ProgramQuery{Search: p.str("q"), Level: p.str("level")}
	q.Page, q.PageSize = p.paging()
	if !p.valid(w) {
		return
	}
	page, err := h.CatalogService.ListPrograms(r.Context(), q)
	if err != nil {
		h.internalError(w, "list programs", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetProgram handles GET /api/programs/{id}.
func (h *CatalogHandler) GetProgram(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	p, err := h.CatalogService.GetProgram(r.Context(), id)
	h.writeOne(w, p, err, "Program not found")
}

// ListCoaches handles GET /api/programs/coaches.
func (h *CatalogHandler) ListCoaches(w http.ResponseWriter, r *http.Request) {
	coaches, err := h.CatalogService.ListCoaches(r.Context())
	if err != nil {
		h.internalError(w, "list coaches", err)
		return
	}
	writeJSON(w, http.StatusOK, coaches)
}

// GetCoach handles GET /api/programs/coaches/{id}.
func (h *CatalogHandler) GetCoach(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	c, err := h.CatalogService.GetCoach(r.Context(), id)
	h.writeOne(w, c, err, "Coach not found")
}

func (h *CatalogHandler) writeOne(w http.ResponseWriter, v any, err error, notFound string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeDetail(w, http.StatusNotFound, notFound)
	case err != nil:
		h.internalError(w, "load record", err)
	default:
		writeJSON(w, http.StatusOK, v)
	}
}

func (h *CatalogHandler) internalError(w http.ResponseWriter, op string, err error) {
	h.Log.Error(op+" failed", zap.Error(err))
	writeDetail(w, http.StatusInternalServerError, "Internal server error")
}
