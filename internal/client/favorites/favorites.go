// Package favorites toggles product favorites optimistically over the query cache.
//
// A toggle cancels in-flight reads of the affected keys, snapshots them, applies
// the expected outcome to the cache, then issues exactly one of add or remove.
// A failed request restores the snapshot. Success or failure, the affected keys
// are invalidated afterwards so the next read reconciles with the backend.
package favorites

import (
	"context"
	"fmt"

	"github.com/atinyakov/fitcompare/internal/client/querycache"
	"github.com/atinyakov/fitcompare/internal/logger"
	"github.com/atinyakov/fitcompare/internal/models"
	"go.uber.org/zap"
)

// Cache key prefixes touched by a toggle. Product lists, searches and details
// live under ProductsKey; the favorites list lives at FavoritesKey.
var (
	ProductsKey  = querycache.Key{"products"}
	FavoritesKey = querycache.Key{"favorites"}
)

// API is the subset of the backend client used for favorite mutations.
type API interface {
	AddFavorite(ctx context.Context, productID int64) error
	RemoveFavorite(ctx context.Context, productID int64) error
}

// Toggler applies favorite mutations one at a time, across all products.
// A toggle's snapshot covers every cached product list, so a rollback could
// otherwise erase the optimistic write of a toggle still in flight.
type Toggler struct {
	api   API
	cache *querycache.Cache
	mu    toggleLock
	log   *zap.Logger
}

// NewToggler returns a Toggler writing through cache.
func NewToggler(api API, cache *querycache.Cache, log *zap.Logger) *Toggler {
	return &Toggler{
		api:   api,
		cache: cache,
		mu:    newToggleLock(),
		log:   logger.OrNop(log),
	}
}

// Toggle flips the favorite flag of productID. isFavorite is the flag the caller
// currently shows; it picks between add and remove. Toggle returns the new flag,
// or the unchanged flag and the error when the backend rejected the change.
func (t *Toggler) Toggle(ctx context.Context, productID int64, isFavorite bool) (bool, error) {
	unlock, err := t.mu.lock(ctx)
	if err != nil {
		return isFavorite, err
	}
	defer unlock()

	affected := []querycache.Key{ProductsKey, FavoritesKey}
	next := !isFavorite

	t.cache.Cancel(affected...)
	snap := t.cache.Snapshot(affected...)
	n := t.apply(productID, next)
	t.log.Debug("optimistic favorite applied",
		zap.Int64("product_id", productID), zap.Bool("favorite", next), zap.Int("entries", n))

	if next {
		err = t.api.AddFavorite(ctx, productID)
	} else {
		err = t.api.RemoveFavorite(ctx, productID)
	}

	if err != nil {
		t.cache.Restore(snap)
		t.log.Warn("favorite toggle rolled back", zap.Int64("product_id", productID), zap.Error(err))
	}
	t.cache.Invalidate(affected...)

	if err != nil {
		return isFavorite, fmt.Errorf("toggle favorite %d: %w", productID, err)
	}
	return next, nil
}

// apply writes the expected outcome into every cached value that mentions productID.
func (t *Toggler) apply(productID int64, fav bool) int {
	n := t.cache.Update(ProductsKey, func(_ querycache.Key, v any) (any, bool) {
		switch x := v.(type) {
		case models.Page[models.Product]:
			if !containsProduct(x.Items, productID) {
				return v, false
			}
			return models.ProductPageWithFavorite(x, productID, fav), true
		case models.Product:
			if x.ID != productID {
				return v, false
			}
			return x.WithFavorite(fav), true
		case []models.Product:
			if !containsProduct(x, productID) {
				return v, false
			}
			return models.SetFavorite(x, productID, fav), true
		}
		return v, false
	})

	n += t.cache.Update(FavoritesKey, func(_ querycache.Key, v any) (any, bool) {
		list, ok := v.([]models.Product)
		if !ok || !containsProduct(list, productID) {
			return v, false
		}
		if fav {
			return models.SetFavorite(list, productID, true), true
		}
		return models.RemoveProduct(list, productID), true
	})
	return n
}

func containsProduct(products []models.Product, id int64) bool {
	for _, p := range products {
		if p.ID == id {
			return true
		}
	}
	return false
}
