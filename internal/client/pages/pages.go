// Package pages renders the client's screens as plain text and routes paths to them.
//
// Each screen is an http.HandlerFunc mounted on a chi router, so the same path
// surface as the web client (including the /favorites guard) can be driven
// in-process by a Navigator.
package pages

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/atinyakov/fitcompare/internal/client/api"
	"github.com/atinyakov/fitcompare/internal/client/compare"
	"github.com/atinyakov/fitcompare/internal/client/querycache"
	"github.com/atinyakov/fitcompare/internal/client/session"
	"github.com/atinyakov/fitcompare/internal/logger"
	"github.com/atinyakov/fitcompare/internal/models"
	"go.uber.org/zap"
)

// CatalogAPI is the read side of the backend used by the screens.
type CatalogAPI interface {
	ListProducts(ctx context.Context, query url.Values) (models.Page[models.Product], error)
	SearchProducts(ctx context.Context, query url.Values) (models.Page[models.Product], error)
	GetProduct(ctx context.Context, id int64) (models.Product, error)
	ListFavorites(ctx context.Context) ([]models.Product, error)
	ListGyms(ctx context.Context, query url.Values) (models.Page[models.Gym], error)
	GetGym(ctx context.Context, id int64) (models.Gym, error)
	ListPrograms(ctx context.Context, query url.Values) (models.Page[models.Program], error)
	GetProgram(ctx context.Context, id int64) (models.Program, error)
	ListCoaches(ctx context.Context) ([]models.Coach, error)
	GetCoach(ctx context.Context, id int64) (models.Coach, error)
}

// Handler holds the collaborators shared by every screen.
type Handler struct {
	API       CatalogAPI
	Session   *session.Store
	Cache     *querycache.Cache
	Selection *compare.Selection
	Log       *zap.Logger
}

// NewHandler returns a Handler. A nil logger disables logging.
func NewHandler(catalog CatalogAPI, sess *session.Store, cache *querycache.Cache, sel *compare.Selection, log *zap.Logger) *Handler {
	return &Handler{
		API:       catalog,
		Session:   sess,
		Cache:     cache,
		Selection: sel,
		Log:       logger.OrNop(log),
	}
}

// Cache keys. Everything product-shaped lives under favorites.ProductsKey so a
// favorite toggle reaches it.
func productListKey(kind string, q url.Values) querycache.Key {
	return querycache.Key{"products", kind, q.Encode()}
}

// ProductKey is the cache key of a product detail.
func ProductKey(id int64) querycache.Key {
	return querycache.Key{"products", "detail", fmt.Sprint(id)}
}

var (
	favoritesKey = querycache.Key{"favorites"}
	coachesKey   = querycache.Key{"coaches", "list"}
)

func gymListKey(q url.Values) querycache.Key     { return querycache.Key{"gyms", "list", q.Encode()} }
func gymKey(id int64) querycache.Key             { return querycache.Key{"gyms", "detail", fmt.Sprint(id)} }
func programListKey(q url.Values) querycache.Key { return querycache.Key{"programs", "list", q.Encode()} }
func programKey(id int64) querycache.Key         { return querycache.Key{"programs", "detail", fmt.Sprint(id)} }
func coachKey(id int64) querycache.Key           { return querycache.Key{"coaches", "detail", fmt.Sprint(id)} }

// RetryHint ends every error screen.
const RetryHint = "Type `retry` to try again."

// renderError writes the error screen for a failed fetch. Backend 404s become
// a not-found screen; everything else gets the retry affordance.
func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var apiErr *api.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintln(w, api.UserMessage(err, "Not found."))
		return
	case errors.Is(err, context.Canceled), errors.Is(err, querycache.ErrCanceled):
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintln(w, "Request was cancelled.")
	default:
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprintln(w, "Error:", api.UserMessage(err, fallback))
	}
	fmt.Fprintln(w, RetryHint)
	h.Log.Debug("page fetch failed", zap.String("path", r.URL.Path), zap.Error(err))
}

func renderEmpty(w io.Writer, msg string) {
	fmt.Fprintln(w, msg)
}

// idParam parses the {id} path segment or writes a 404.
func idParam(w http.ResponseWriter, raw string) (int64, bool) {
	id, err := api.ParseID(raw)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintln(w, "Not found.")
		return 0, false
	}
	return id, true
}
