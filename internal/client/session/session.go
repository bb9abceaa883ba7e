// Package session manages the client's authentication lifecycle: the access
// token, the user profile and the idle/loading/authenticated state machine.
//
// The current state is an immutable snapshot behind an atomic pointer. Every
// transition installs a new snapshot, and transitions computed from an older
// snapshot (a late rehydration response) are dropped with a compare-and-swap.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/atinyakov/fitcompare/internal/client/api"
	"github.com/atinyakov/fitcompare/internal/client/storage"
	"github.com/atinyakov/fitcompare/internal/logger"
	"github.com/atinyakov/fitcompare/internal/models"
	"github.com/go-playground/validator"
	"go.uber.org/zap"
)

// Status is the session lifecycle state.
type Status string

const (
	StatusIdle          Status = "idle"
	StatusLoading       Status = "loading"
	StatusAuthenticated Status = "authenticated"
)

var (
	// ErrInvalidInput is returned when credentials or a signup profile fail validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoToken is returned when the backend accepted the request but issued no token.
	ErrNoToken = errors.New("backend returned no access token")
	// ErrSuperseded is returned when a rehydration result was discarded because
	// the session changed while the request was in flight.
	ErrSuperseded = errors.New("session changed during rehydration")
)

// State is an immutable snapshot of the session.
type State struct {
	Token  string
	User   *models.User
	Status Status
}

// AuthAPI is the subset of the backend client the session needs.
type AuthAPI interface {
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error)
	Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error)
	Me(ctx context.Context) (*models.User, error)
}

// Store is the session store. It is safe for concurrent use.
type Store struct {
	state    atomic.Pointer[State]
	store    storage.Store
	api      AuthAPI
	validate *validator.Validate
	log      *zap.Logger

	// persistMu orders writes to durable storage; it never guards the state itself.
	persistMu sync.Mutex
}

var idle = &State{Status: StatusIdle}

// New creates a Store from the token persisted in store. A persisted token puts the
// session in StatusLoading until Rehydrate resolves the profile.
func New(store storage.Store, authAPI AuthAPI, log *zap.Logger) *Store {
	s := &Store{
		store:    store,
		api:      authAPI,
		validate: validator.New(),
		log:      logger.OrNop(log),
	}
	if tok, ok := store.Get(storage.TokenKey); ok && tok != "" {
		s.state.Store(&State{Token: tok, Status: StatusLoading})
	} else {
		s.state.Store(idle)
	}
	return s
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	return *s.state.Load()
}

// Status returns the current lifecycle state.
func (s *Store) Status() Status {
	return s.state.Load().Status
}

// Token returns the current access token, or "".
func (s *Store) Token() string {
	return s.state.Load().Token
}

// User returns the loaded profile, or nil.
func (s *Store) User() *models.User {
	return s.state.Load().User
}

// IsAuthenticated reports whether a profile is loaded for a token.
func (s *Store) IsAuthenticated() bool {
	return s.state.Load().Status == StatusAuthenticated
}

// Login authenticates with the backend. On failure the session is left untouched
// and the error is returned as is; no retry is attempted.
func (s *Store) Login(ctx context.Context, creds models.Credentials) (*models.User, error) {
	if err := s.validate.Struct(creds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	resp, err := s.api.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, resp)
}

// Signup creates an account and signs in with it. A backend that answers signup
// with a bare profile (no token) is followed by a regular login.
func (s *Store) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	resp, err := s.api.Signup(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		resp, err = s.api.Login(ctx, models.Credentials{Email: req.Email, Password: req.Password})
		if err != nil {
			return nil, err
		}
	}
	return s.establish(ctx, resp)
}

// establish installs an authenticated state from a login/signup response.
// The profile is fetched first when the response does not carry one.
func (s *Store) establish(ctx context.Context, resp *models.AuthResponse) (*models.User, error) {
	if resp.AccessToken == "" {
		return nil, ErrNoToken
	}
	user := resp.User
	if user == nil {
		u, err := s.api.Me(api.WithToken(ctx, resp.AccessToken))
		if err != nil {
			return nil, fmt.Errorf("load profile: %w", err)
		}
		user = u
	}

	s.state.Store(&State{Token: resp.AccessToken, User: user, Status: StatusAuthenticated})
	s.persist()
	s.log.Info("signed in", zap.String("email", user.Email))
	return user, nil
}

// Logout clears the session locally. No request is made.
func (s *Store) Logout() {
	s.state.Store(idle)
	s.persist()
	s.log.Info("signed out")
}

// Rehydrate resolves the profile for a persisted token.
//
// Success moves the session to StatusAuthenticated. A failed lookup is treated as
// an implicit logout. When ctx is cancelled before the lookup completes, or the
// session changed meanwhile, the result is discarded and the state is left as is.
func (s *Store) Rehydrate(ctx context.Context) error {
	cur := s.state.Load()
	if cur.Token == "" || cur.User != nil {
		return nil
	}
	if cur.Status != StatusLoading {
		next := &State{Token: cur.Token, Status: StatusLoading}
		if !s.state.CompareAndSwap(cur, next) {
			return ErrSuperseded
		}
		cur = next
	}

	user, err := s.api.Me(api.WithToken(ctx, cur.Token))
	if ctx.Err() != nil {
		s.log.Debug("rehydration discarded", zap.Error(ctx.Err()))
		return ctx.Err()
	}

	if err != nil {
		if !s.state.CompareAndSwap(cur, idle) {
			return ErrSuperseded
		}
		s.persist()
		s.log.Warn("unable to refresh session", zap.Error(err))
		return fmt.Errorf("refresh session: %w", err)
	}

	next := &State{Token: cur.Token, User: user, Status: StatusAuthenticated}
	if !s.state.CompareAndSwap(cur, next) {
		return ErrSuperseded
	}
	s.log.Debug("session restored", zap.String("email", user.Email))
	return nil
}

// persist mirrors the latest token to durable storage: written when present,
// removed when absent.
func (s *Store) persist() {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	var err error
	if tok := s.state.Load().Token; tok != "" {
		err = s.store.Set(storage.TokenKey, tok)
	} else {
		err = s.store.Remove(storage.TokenKey)
	}
	if err != nil {
		s.log.Error("failed to persist session token", zap.Error(err))
	}
}
