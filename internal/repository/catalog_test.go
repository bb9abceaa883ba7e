package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/atinyakov/fitcompare/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCatalogMock(t *testing.T) (*PostgresCatalogRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	return NewPostgresCatalogRepository(db), mock, func() { db.Close() }
}

var productRowColumns = []string{"id", "name", "description", "brand", "category", "price", "rating", "reviews_count", "images", "url", "source", "created_at"}

func TestListProducts_FiltersAndPaging(t *testing.T) {
	repo, mock, cleanup := setupCatalogMock(t)
	defer cleanup()

	where := ` WHERE (name ILIKE $1 OR brand ILIKE $1 OR description ILIKE $1) AND category = $2 AND price <= $3`
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM products` + where)).
		WithArgs("%mat%", "yoga", 50.0).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(21))

	created := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + productColumns + ` FROM products` + where + ` ORDER BY price ASC, id ASC LIMIT $4 OFFSET $5`)).
		WithArgs("%mat%", "yoga", 50.0, 10, 10).
		WillReturnRows(sqlmock.NewRows(productRowColumns).
			AddRow(3, "Cork Mat", "", "Acme", "yoga", 39.5, 4.5, 12, "{a.jpg,b.jpg}", "", "seed", created))

	page, err := repo.ListProducts(context.Background(), models.ProductQuery{
		Search: "mat", Category: "yoga", MaxPrice: 50, Sort: "price_asc", Page: 2, PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 21, page.Total)
	assert.Equal(t, 2, page.Page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Cork Mat", page.Items[0].Name)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, page.Items[0].Images)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListProducts_UnknownSortFallsBackToNewest(t *testing.T) {
	repo, mock, cleanup := setupCatalogMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM products`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`)).
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows(productRowColumns))

	page, err := repo.ListProducts(context.Background(), models.ProductQuery{Sort: "bogus", Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListProducts_EscapesLikePattern(t *testing.T) {
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
}

func TestListProducts_CountError(t *testing.T) {
	repo, mock, cleanup := setupCatalogMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM products`)).
		WillReturnError(errors.New("db down"))

	_, err := repo.ListProducts(context.Background(), models.ProductQuery{Page: 1, PageSize: 20})
	assert.ErrorContains(t, err, "count products")
}

func TestGetProduct_NotFound(t *testing.T) {
	repo, mock, cleanup := setupCatalogMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM products WHERE id = $1`)).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetProduct(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListGyms_Open247(t *testing.T) {
	repo, mock, cleanup := setupCatalogMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM gyms WHERE city = $1 AND opened_24_7 = $2`)).
		WithArgs("Berlin", true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM gyms WHERE city = $1 AND opened_24_7 = $2 ORDER BY name, id LIMIT $3 OFFSET $4`)).
		WithArgs("Berlin", true, 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "brand", "address", "city", "country", "latitude", "longitude", "url", "image_url", "logo_url", "opened_24_7"}).
			AddRow(1, "Iron House", "Iron", "Main 1", "Berlin", "DE", 52.5, 13.4, "", "", "", true))

	page, err := repo.ListGyms(context.Background(), models.GymQuery{City: "Berlin", Open247: true, Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.True(t, page.Items[0].Opened247)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProgram_NullCoach(t *testing.T) {
	repo, mock, cleanup := setupCatalogMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + programColumns + ` FROM programs WHERE id = $1`)).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "level", "duration_weeks", "coach_id"}).
			AddRow(2, "Mobility", "", "beginner", 4, 0))

	p, err := repo.GetProgram(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Mobility", p.Title)
	assert.Zero(t, p.CoachID)
}

func TestListCoaches(t *testing.T) {
	repo, mock, cleanup := setupCatalogMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + coachColumns + ` FROM coaches ORDER BY name, id`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "specialty", "bio", "rating"}).
			AddRow(1, "Ana", "strength", "", 4.9).
			AddRow(2, "Ben", "yoga", "", 4.7))

	coaches, err := repo.ListCoaches(context.Background())
	require.NoError(t, err)
	assert.Len(t, coaches, 2)
	assert.Equal(t, "Ben", coaches[1].Name)
}

func TestGetCoach_NotFound(t *testing.T) {
	repo, mock, cleanup := setupCatalogMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM coaches WHERE id = $1`)).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetCoach(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNotFound)
}
