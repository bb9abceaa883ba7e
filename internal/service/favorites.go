package service

import (
	"context"
	"errors"

	"github.com/atinyakov/fitcompare/internal/logger"
	"github.com/atinyakov/fitcompare/internal/models"
	"github.com/atinyakov/fitcompare/internal/repository"
	"go.uber.org/zap"
)

var (
	// ErrProductNotFound is returned when favoriting an unknown product.
	ErrProductNotFound = errors.New("product not found")
	// ErrFavoriteNotFound is returned when removing a product that is not a favorite.
	ErrFavoriteNotFound = errors.New("favorite not found")
)

// FavoriteRepository defines the persistence operations for favorites.
type FavoriteRepository interface {
	AddFavorite(ctx context.Context, userID string, productID int64) error
	RemoveFavorite(ctx context.Context, userID string, productID int64) error
	ListFavoriteProducts(ctx context.Context, userID string) ([]models.Product, error)
}

// FavoriteService manages a user's favorite products.
type FavoriteService struct {
	repo FavoriteRepository
	log  *zap.Logger
}

// NewFavoriteService constructs a FavoriteService.
func NewFavoriteService(repo FavoriteRepository, log *zap.Logger) *FavoriteService {
	return &FavoriteService{repo: repo, log: logger.OrNop(log)}
}

// Add marks productID as a favorite. Adding twice is not an error.
func (s *FavoriteService) Add(ctx context.Context, userID string, productID int64) error {
	err := s.repo.AddFavorite(ctx, userID, productID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrProductNotFound
	}
	if err == nil {
		s.log.Debug("favorite added", zap.String("user_id", userID), zap.Int64("product_id", productID))
	}
	return err
}

// Remove unmarks productID.
func (s *FavoriteService) Remove(ctx context.Context, userID string, productID int64) error {
	err := s.repo.RemoveFavorite(ctx, userID, productID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrFavoriteNotFound
	}
	if err == nil {
		s.log.Debug("favorite removed", zap.String("user_id", userID), zap.Int64("product_id", productID))
	}
	return err
}

// List returns the user's favorite products.
func (s *FavoriteService) List(ctx context.Context, userID string) ([]models.Product, error) {
	return s.repo.ListFavoriteProducts(ctx, userID)
}
