package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/fitcompare/internal/models"
	"github.com/lib/pq"
)

// PostgresFavoriteRepository stores per-user favorite products.
//
// Removal is a soft delete: the row keeps a deleted_at timestamp until the
// background cleaner purges it, and re-adding a product clears the mark.
type PostgresFavoriteRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresFavoriteRepository creates a PostgresFavoriteRepository over db.
func NewPostgresFavoriteRepository(db *sql.DB) *PostgresFavoriteRepository {
	return &PostgresFavoriteRepository{DB: db}
}

// AddFavorite marks productID as a favorite of userID. Adding an existing
// favorite is a no-op; re-adding a removed one dates it from now.
// ErrNotFound is returned for an unknown product.
func (r *PostgresFavoriteRepository) AddFavorite(ctx context.Context, userID string, productID int64) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO favorites (user_id, product_id) VALUES ($1, $2)
		ON CONFLICT (user_id, product_id) DO UPDATE SET
			created_at = CASE WHEN favorites.deleted_at IS NULL THEN favorites.created_at ELSE now() END,
			deleted_at = NULL
	`, userID, productID)
	if pqCode(err) == codeForeignKeyViolation {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

// RemoveFavorite unmarks productID. Removing a product that is not a favorite
// returns ErrNotFound.
func (r *PostgresFavoriteRepository) RemoveFavorite(ctx context.Context, userID string, productID int64) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE favorites SET deleted_at = now()
		WHERE user_id = $1 AND product_id = $2 AND deleted_at IS NULL
	`, userID, productID)
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListFavoriteProducts returns the favorite products of userID, most recently added first.
func (r *PostgresFavoriteRepository) ListFavoriteProducts(ctx context.Context, userID string) ([]models.Product, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT p.id, p.name, p.description, p.brand, p.category, p.price, p.rating, p.reviews_count, p.images, p.url, p.source, p.created_at
		FROM favorites f JOIN products p ON p.id = f.product_id
		WHERE f.user_id = $1 AND f.deleted_at IS NULL
		ORDER BY f.created_at DESC, p.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i].IsFavorite = true
	}
	return products, nil
}

// FavoriteIDs reports which of productIDs are favorites of userID.
func (r *PostgresFavoriteRepository) FavoriteIDs(ctx context.Context, userID string, productIDs []int64) (map[int64]bool, error) {
	out := make(map[int64]bool, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT product_id FROM favorites
		WHERE user_id = $1 AND product_id = ANY($2) AND deleted_at IS NULL
	`, userID, pq.Array(productIDs))
	if err != nil {
		return nil, fmt.Errorf("favorite ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan favorite id: %w", err)
		}
		out[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorite ids: %w", err)
	}
	return out, nil
}

// IsFavorite reports whether productID is a favorite of userID.
func (r *PostgresFavoriteRepository) IsFavorite(ctx context.Context, userID string, productID int64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, `
		SELECT 1 FROM favorites WHERE user_id = $1 AND product_id = $2 AND deleted_at IS NULL
	`, userID, productID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("is favorite: %w", err)
	}
	return true, nil
}
