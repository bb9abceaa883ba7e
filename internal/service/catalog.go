package service

import (
	"context"
	"errors"

	"github.com/atinyakov/fitcompare/internal/logger"
	"github.com/atinyakov/fitcompare/internal/models"
	"github.com/atinyakov/fitcompare/internal/repository"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a catalog record does not exist.
var ErrNotFound = errors.New("not found")

// CatalogRepository defines the read operations over the catalog.
type CatalogRepository interface {
	ListProducts(ctx context.Context, q models.ProductQuery) (models.Page[models.Product], error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	ListGyms(ctx context.Context, q models.GymQuery) (models.Page[models.Gym], error)
	GetGym(ctx context.Context, id int64) (*models.Gym, error)
	ListPrograms(ctx context.Context, q models.ProgramQuery) (models.Page[models.Program], error)
	GetProgram(ctx context.Context, id int64) (*models.Program, error)
	ListCoaches(ctx context.Context) ([]models.Coach, error)
	GetCoach(ctx context.Context, id int64) (*models.Coach, error)
}

// FavoriteLookup reports which products a user has marked.
type FavoriteLookup interface {
	FavoriteIDs(ctx context.Context, userID string, productIDs []int64) (map[int64]bool, error)
}

// CatalogService serves catalog reads. Products read on behalf of a signed-in
// user carry that user's favorite flag.
type CatalogService struct {
	repo      CatalogRepository
	favorites FavoriteLookup
	log       *zap.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(repo CatalogRepository, favorites FavoriteLookup, log *zap.Logger) *CatalogService {
	return &CatalogService{repo: repo, favorites: favorites, log: logger.OrNop(log)}
}

// ListProducts returns a page of products. userID may be empty for anonymous reads.
func (s *CatalogService) ListProducts(ctx context.Context, userID string, q models.ProductQuery) (models.Page[models.Product], error) {
	page, err := s.repo.ListProducts(ctx, q)
	if err != nil {
		return page, err
	}
	page.Items, err = s.decorate(ctx, userID, page.Items)
	return page, err
}

// GetProduct returns a single product. userID may be empty.
func (s *CatalogService) GetProduct(ctx context.Context, userID string, id int64) (*models.Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	items, err := s.decorate(ctx, userID, []models.Product{*p})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (s *CatalogService) decorate(ctx context.Context, userID string, products []models.Product) ([]models.Product, error) {
	if userID == "" || len(products) == 0 {
		return products, nil
	}
	ids := make([]int64, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	favs, err := s.favorites.FavoriteIDs(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i].IsFavorite = favs[products[i].ID]
	}
	return products, nil
}

// ListGyms returns a page of gyms.
func (s *CatalogService) ListGyms(ctx context.Context, q models.GymQuery) (models.Page[models.Gym], error) {
	return s.repo.ListGyms(ctx, q)
}

// GetGym returns a single gym.
func (s *CatalogService) GetGym(ctx context.Context, id int64) (*models.Gym, error) {
	g, err := s.repo.GetGym(ctx, id)
	return g, notFound(err)
}

// ListPrograms returns a page of programs.
func (s *CatalogService) ListPrograms(ctx context.Context, q models.ProgramQuery) (models.Page[models.Program], error) {
	return s.repo.ListPrograms(ctx, q)
}

// GetProgram returns a single program.
func (s *CatalogService) GetProgram(ctx context.Context, id int64) (*models.Program, error) {
	p, err := s.repo.GetProgram(ctx, id)
	return p, notFound(err)
}

// ListCoaches returns every coach.
func (s *CatalogService) ListCoaches(ctx context.Context) ([]models.Coach, error) {
	return s.repo.ListCoaches(ctx)
}

// GetCoach returns a single coach.
func (s *CatalogService) GetCoach(ctx context.Context, id int64) (*models.Coach, error) {
	c, err := s.repo.GetCoach(ctx, id)
	return c, notFound(err)
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
