package service

import (
	"context"
	"errors"
	"testing"

	"github.com/atinyakov/fitcompare/internal/models"
	"github.com/atinyakov/fitcompare/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCatalogRepo struct {
	CatalogRepository
	ListProductsFunc func(ctx context.Context, q models.ProductQuery) (models.Page[models.Product], error)
	GetProductFunc   func(ctx context.Context, id int64) (*models.Product, error)
	GetGymFunc       func(ctx context.Context, id int64) (*models.Gym, error)
}

func (m *mockCatalogRepo) ListProducts(ctx context.Context, q models.ProductQuery) (models.Page[models.Product], error) {
	return m.ListProductsFunc(ctx, q)
}
func (m *mockCatalogRepo) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return m.GetProductFunc(ctx, id)
}
func (m *mockCatalogRepo) GetGym(ctx context.Context, id int64) (*models.Gym, error) {
	return m.GetGymFunc(ctx, id)
}

type mockFavoriteLookup struct {
	calls int
	ids   map[int64]bool
	err   error
}

func (m *mockFavoriteLookup) FavoriteIDs(_ context.Context, _ string, _ []int64) (map[int64]bool, error) {
	m.calls++
	return m.ids, m.err
}

func threeProducts(context.Context, models.ProductQuery) (models.Page[models.Product], error) {
	return models.Page[models.Product]{Items: []models.Product{{ID: 1}, {ID: 2}, {ID: 3}}, Total: 3}, nil
}

func TestListProducts_DecoratesForUser(t *testing.T) {
	favs := &mockFavoriteLookup{ids: map[int64]bool{2: true}}
	svc := NewCatalogService(&mockCatalogRepo{ListProductsFunc: threeProducts}, favs, nil)

	page, err := svc.ListProducts(context.Background(), "u1", models.ProductQuery{})
	require.NoError(t, err)
	assert.False(t, page.Items[0].IsFavorite)
	assert.True(t, page.Items[1].IsFavorite)
	assert.Equal(t, 1, favs.calls)
}

func TestListProducts_AnonymousSkipsLookup(t *testing.T) {
	favs := &mockFavoriteLookup{}
	svc := NewCatalogService(&mockCatalogRepo{ListProductsFunc: threeProducts}, favs, nil)

	_, err := svc.ListProducts(context.Background(), "", models.ProductQuery{})
	require.NoError(t, err)
	assert.Zero(t, favs.calls)
}

func TestListProducts_LookupError(t *testing.T) {
	favs := &mockFavoriteLookup{err: errors.New("db down")}
	svc := NewCatalogService(&mockCatalogRepo{ListProductsFunc: threeProducts}, favs, nil)

	_, err := svc.ListProducts(context.Background(), "u1", models.ProductQuery{})
	assert.Error(t, err)
}

func TestGetProduct_MapsNotFound(t *testing.T) {
	svc := NewCatalogService(&mockCatalogRepo{
		GetProductFunc: func(context.Context, int64) (*models.Product, error) { return nil, repository.ErrNotFound },
	}, &mockFavoriteLookup{}, nil)

	_, err := svc.GetProduct(context.Background(), "u1", 7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetProduct_Decorated(t *testing.T) {
	svc := NewCatalogService(&mockCatalogRepo{
		GetProductFunc: func(_ context.Context, id int64) (*models.Product, error) { return &models.Product{ID: id}, nil },
	}, &mockFavoriteLookup{ids: map[int64]bool{7: true}}, nil)

	p, err := svc.GetProduct(context.Background(), "u1", 7)
	require.NoError(t, err)
	assert.True(t, p.IsFavorite)
}

func TestGetGym_MapsNotFound(t *testing.T) {
	svc := NewCatalogService(&mockCatalogRepo{
		GetGymFunc: func(context.Context, int64) (*models.Gym, error) { return nil, repository.ErrNotFound },
	}, nil, nil)

	_, err := svc.GetGym(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}
