package service

import (
	"context"
	"errors"
	"testing"

	"github.com/atinyakov/fitcompare/internal/models"
	"github.com/atinyakov/fitcompare/internal/repository"
)

type mockFavoriteRepo struct {
	AddFunc    func(ctx context.Context, userID string, productID int64) error
	RemoveFunc func(ctx context.Context, userID string, productID int64) error
	ListFunc   func(ctx context.Context, userID string) ([]models.Product, error)
}

func (m *mockFavoriteRepo) AddFavorite(ctx context.Context, userID string, productID int64) error {
	return m.AddFunc(ctx, userID, productID)
}
func (m *mockFavoriteRepo) RemoveFavorite(ctx context.Context, userID string, productID int64) error {
	return m.RemoveFunc(ctx, userID, productID)
}
func (m *mockFavoriteRepo) ListFavoriteProducts(ctx context.Context, userID string) ([]models.Product, error) {
	return m.ListFunc(ctx, userID)
}

func TestFavoriteAdd_UnknownProduct(t *testing.T) {
	svc := NewFavoriteService(&mockFavoriteRepo{
		AddFunc: func(context.Context, string, int64) error { return repository.ErrNotFound },
	}, nil)

	if err := svc.Add(context.Background(), "u1", 9); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("error = %v; want ErrProductNotFound", err)
	}
}

func TestFavoriteRemove_NotFavorite(t *testing.T) {
	svc := NewFavoriteService(&mockFavoriteRepo{
		RemoveFunc: func(context.Context, string, int64) error { return repository.ErrNotFound },
	}, nil)

	if err := svc.Remove(context.Background(), "u1", 9); !errors.Is(err, ErrFavoriteNotFound) {
		t.Fatalf("error = %v; want ErrFavoriteNotFound", err)
	}
}

func TestFavoriteAddRemove_PassThrough(t *testing.T) {
	var added, removed int64
	svc := NewFavoriteService(&mockFavoriteRepo{
		AddFunc: func(_ context.Context, userID string, id int64) error {
			if userID != "u1" {
				t.Errorf("userID = %q", userID)
			}
			added = id
			return nil
		},
		RemoveFunc: func(_ context.Context, _ string, id int64) error {
			removed = id
			return nil
		},
	}, nil)

	if err := svc.Add(context.Background(), "u1", 3); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := svc.Remove(context.Background(), "u1", 4); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if added != 3 || removed != 4 {
		t.Errorf("added=%d removed=%d", added, removed)
	}
}
