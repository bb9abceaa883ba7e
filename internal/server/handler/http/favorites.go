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

// FavoriteService defines the favorite operations required by the handlers.
type FavoriteService interface {
	Add(ctx context.Context, userID string, productID int64) error
	Remove(ctx context.Context, userID string, productID int64) error
	List(ctx context.Context, userID string) ([]models.Product, error)
}

// FavoriteHandler serves the signed-in user's favorites. Every route sits
// behind middleware.RequireAuth.
type FavoriteHandler struct {
	FavoriteService FavoriteService
	Log             *zap.Logger
}

// List handles GET /api/favorites.
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.FavoriteService.List(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		h.Log.Error("list favorites failed", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// Add handles POST /api/favorites/{id}. Adding twice answers 201 again.
func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	err := h.FavoriteService.Add(r.Context(), middleware.GetUserIDFromContext(r.Context()), id)
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		writeDetail(w, http.StatusNotFound, "Product not found")
	case err != nil:
		h.Log.Error("add favorite failed", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
	default:
		writeJSON(w, http.StatusCreated, map[string]any{"product_id": id, "is_favorite": true})
	}
}

// Remove handles DELETE /api/favorites/{id} and answers 204.
func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	err := h.FavoriteService.Remove(r.Context(), middleware.GetUserIDFromContext(r.Context()), id)
	switch {
	case errors.Is(err, service.ErrFavoriteNotFound):
		writeDetail(w, http.StatusNotFound, "Favorite not found")
	case err != nil:
		h.Log.Error("remove favorite failed", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
