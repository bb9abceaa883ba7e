// Package http provides the HTTP handlers and routing of the reference backend.
// Errors are JSON bodies of the form {"detail": ...}.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/fitcompare/internal/middleware"
	"github.com/atinyakov/fitcompare/internal/models"
	"github.com/atinyakov/fitcompare/internal/service"
	"github.com/go-playground/validator"
	"go.uber.org/zap"
)

// AuthService defines the account operations required by the handlers.
type AuthService interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.User, error)
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error)
	Me(ctx context.Context, userID string) (*models.User, error)
}

// AuthHandler handles signup, login and profile requests.
type AuthHandler struct {
	AuthService AuthService
	Validate    *validator.Validate
	Log         *zap.Logger
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(svc AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{AuthService: svc, Validate: validator.New(), Log: log}
}

// loginForm is the OAuth2 password grant body.
type loginForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// Signup handles POST /api/auth/signup with a JSON SignupRequest and answers
// 201 with the new profile.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidation(w, "body", []validationIssue{{Msg: "JSON decode error"}})
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeValidation(w, "body", validationIssues(err))
		return
	}

	user, err := h.AuthService.Signup(r.Context(), req)
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	case err != nil:
		h.Log.Error("signup failed", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles POST /api/auth/login with an application/x-www-form-urlencoded
// body carrying username (the email) and password.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeValidation(w, "body", []validationIssue{{Msg: "invalid form body"}})
		return
	}
	form := loginForm{Username: r.PostForm.Get("username"), Password: r.PostForm.Get("password")}
	if err := h.Validate.Struct(form); err != nil {
		writeValidation(w, "body", validationIssues(err))
		return
	}

	resp, err := h.AuthService.Login(r.Context(), models.Credentials{Email: form.Username, Password: form.Password})
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	case err != nil:
		h.Log.Error("login failed", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Me handles GET /api/auth/me and returns the profile of the token owner.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.AuthService.Me(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	case err != nil:
		h.Log.Error("load profile failed", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
