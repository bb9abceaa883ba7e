// Package service holds the business logic of the reference backend: accounts
// and tokens, catalog reads decorated per user, and favorites. Persistence is
// delegated to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/fitcompare/internal/logger"
	"github.com/atinyakov/fitcompare/internal/models"
	"github.com/atinyakov/fitcompare/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrEmailTaken is returned by Signup when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned by Login for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	// ErrUnauthenticated is returned when a token does not resolve to a user.
	ErrUnauthenticated = errors.New("could not validate credentials")
)

// AuthRepository defines the persistence operations
// required by the authentication service.
type AuthRepository interface {
	CreateUser(ctx context.Context, u models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// AuthService registers users, checks passwords and issues tokens.
type AuthService struct {
	repo   AuthRepository
	tokens *TokenMaker
	log    *zap.Logger
	now    func() time.Time
}

// NewAuthService constructs an AuthService. A nil logger disables logging.
func NewAuthService(repo AuthRepository, tokens *TokenMaker, log *zap.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, log: logger.OrNop(log), now: time.Now}
}

// Signup creates an account. The response carries the profile only; the
// caller signs in separately.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := models.User{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(req.Email),
		FullName:     strings.TrimSpace(req.FullName),
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.log.Info("user registered", zap.String("user_id", u.ID))
	return &u, nil
}

// Login checks the credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error) {
	u, err := s.repo.GetUserByEmail(ctx, normalizeEmail(creds.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &models.AuthResponse{AccessToken: token, TokenType: "bearer"}, nil
}

// Authenticate resolves an access token to its user id.
func (s *AuthService) Authenticate(token string) (string, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		s.log.Debug("rejected token", zap.Error(err))
		return "", ErrUnauthenticated
	}
	return claims.Subject, nil
}

// Me returns the profile of userID. A user deleted after the token was issued
// is reported as ErrUnauthenticated.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	return u, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
