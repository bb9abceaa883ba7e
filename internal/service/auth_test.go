package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atinyakov/fitcompare/internal/models"
	"github.com/atinyakov/fitcompare/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type mockAuthRepo struct {
	CreateUserFunc     func(ctx context.Context, u models.User) error
	GetUserByEmailFunc func(ctx context.Context, email string) (*models.User, error)
	GetUserByIDFunc    func(ctx context.Context, id string) (*models.User, error)
}

func (m *mockAuthRepo) CreateUser(ctx context.Context, u models.User) error {
	return m.CreateUserFunc(ctx, u)
}
func (m *mockAuthRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.GetUserByEmailFunc(ctx, email)
}
func (m *mockAuthRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return m.GetUserByIDFunc(ctx, id)
}

func newTestAuth(repo AuthRepository) *AuthService {
	return NewAuthService(repo, NewTokenMaker("test-secret", time.Hour), nil)
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return string(h)
}

func TestSignup_HashesAndNormalizes(t *testing.T) {
	var stored models.User
	svc := newTestAuth(&mockAuthRepo{
		CreateUserFunc: func(_ context.Context, u models.User) error {
			stored = u
			return nil
		},
	})

	u, err := svc.Signup(context.Background(), models.SignupRequest{Email: " Ada@Example.com ", Password: "secret1", FullName: "Ada"})
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if u.ID == "" || u.ID != stored.ID {
		t.Errorf("user id = %q; stored %q", u.ID, stored.ID)
	}
	if stored.Email != "ada@example.com" {
		t.Errorf("email = %q; want normalized", stored.Email)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")) != nil {
		t.Error("stored hash does not match the password")
	}
}

func TestSignup_EmailTaken(t *testing.T) {
	svc := newTestAuth(&mockAuthRepo{
		CreateUserFunc: func(context.Context, models.User) error { return repository.ErrConflict },
	})

	_, err := svc.Signup(context.Background(), models.SignupRequest{Email: "a@b.c", Password: "secret1"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("error = %v; want ErrEmailTaken", err)
	}
}

func TestLogin_IssuesToken(t *testing.T) {
	hash := hashOf(t, "secret1")
	svc := newTestAuth(&mockAuthRepo{
		GetUserByEmailFunc: func(_ context.Context, email string) (*models.User, error) {
			if email != "ada@example.com" {
				t.Errorf("lookup email = %q", email)
			}
			return &models.User{ID: "u1", Email: email, PasswordHash: hash}, nil
		},
	})

	resp, err := svc.Login(context.Background(), models.Credentials{Email: "ADA@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if resp.TokenType != "bearer" || resp.AccessToken == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	userID, err := svc.Authenticate(resp.AccessToken)
	if err != nil || userID != "u1" {
		t.Fatalf("Authenticate = %q, %v; want u1", userID, err)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	hash := hashOf(t, "secret1")
	tests := []struct {
		name string
		repo *mockAuthRepo
	}{
		{"unknown email", &mockAuthRepo{
			GetUserByEmailFunc: func(context.Context, string) (*models.User, error) { return nil, repository.ErrNotFound },
		}},
		{"wrong password", &mockAuthRepo{
			GetUserByEmailFunc: func(context.Context, string) (*models.User, error) {
				return &models.User{ID: "u1", PasswordHash: hash}, nil
			},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestAuth(tt.repo).Login(context.Background(), models.Credentials{Email: "a@b.c", Password: "wrong"})
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("error = %v; want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestAuthenticate_RejectsForeignAndExpiredTokens(t *testing.T) {
	svc := newTestAuth(&mockAuthRepo{})

	other, _ := NewTokenMaker("other-secret", time.Hour).Generate("u1", "a@b.c")
	if _, err := svc.Authenticate(other); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("foreign token: error = %v", err)
	}

	expired := NewTokenMaker("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, _ := expired.Generate("u1", "a@b.c")
	if _, err := svc.Authenticate(tok); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expired token: error = %v", err)
	}

	if _, err := svc.Authenticate("garbage"); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("garbage token: error = %v", err)
	}
}

func TestMe_DeletedUser(t *testing.T) {
	svc := newTestAuth(&mockAuthRepo{
		GetUserByIDFunc: func(context.Context, string) (*models.User, error) { return nil, repository.ErrNotFound },
	})
	if _, err := svc.Me(context.Background(), "u1"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("error = %v; want ErrUnauthenticated", err)
	}
}
