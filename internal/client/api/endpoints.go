package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/atinyakov/fitcompare/internal/models"
)

// Login posts the credentials as an OAuth2 password form
// (username/password, application/x-www-form-urlencoded).
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error) {
	form := url.Values{}
	form.Set("username", creds.Email)
	form.Set("password", creds.Password)

	var out models.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", nil,
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup creates an account.
func (c *Client) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/auth/signup", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the profile bound to the current token.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.getJSON(ctx, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProducts returns a page of the catalog filtered by query.
func (c *Client) ListProducts(ctx context.Context, query url.Values) (models.Page[models.Product], error) {
	var out models.Page[models.Product]
	err := c.getJSON(ctx, "/products", query, &out)
	return out, err
}

// SearchProducts runs a free-text search ("q") with optional filters.
func (c *Client) SearchProducts(ctx context.Context, query url.Values) (models.Page[models.Product], error) {
	var out models.Page[models.Product]
	err := c.getJSON(ctx, "/products/search", query, &out)
	return out, err
}

// GetProduct returns a single product.
func (c *Client) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	var out models.Product
	err := c.getJSON(ctx, "/products/"+itoa(id), nil, &out)
	return out, err
}

// ListFavorites returns the current user's favorite products.
func (c *Client) ListFavorites(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	err := c.getJSON(ctx, "/favorites", nil, &out)
	return out, err
}

// AddFavorite marks a product as favorite.
func (c *Client) AddFavorite(ctx context.Context, productID int64) error {
	return c.sendJSON(ctx, http.MethodPost, "/favorites/"+itoa(productID), nil, nil)
}

// RemoveFavorite unmarks a product.
func (c *Client) RemoveFavorite(ctx context.Context, productID int64) error {
	return c.sendJSON(ctx, http.MethodDelete, "/favorites/"+itoa(productID), nil, nil)
}

// ListGyms returns a page of gyms.
func (c *Client) ListGyms(ctx context.Context, query url.Values) (models.Page[models.Gym], error) {
	var out models.Page[models.Gym]
	err := c.getJSON(ctx, "/gyms", query, &out)
	return out, err
}

// GetGym returns a single gym.
func (c *Client) GetGym(ctx context.Context, id int64) (models.Gym, error) {
	var out models.Gym
	err := c.getJSON(ctx, "/gyms/"+itoa(id), nil, &out)
	return out, err
}

// ListPrograms returns a page of training programs.
func (c *Client) ListPrograms(ctx context.Context, query url.Values) (models.Page[models.Program], error) {
	var out models.Page[models.Program]
	err := c.getJSON(ctx, "/programs", query, &out)
	return out, err
}

// GetProgram returns a single program.
func (c *Client) GetProgram(ctx context.Context, id int64) (models.Program, error) {
	var out models.Program
	err := c.getJSON(ctx, "/programs/"+itoa(id), nil, &out)
	return out, err
}

// ListCoaches returns every coach.
func (c *Client) ListCoaches(ctx context.Context) ([]models.Coach, error) {
	var out []models.Coach
	err := c.getJSON(ctx, "/programs/coaches", nil, &out)
	return out, err
}

// GetCoach returns a single coach.
func (c *Client) GetCoach(ctx context.Context, id int64) (models.Coach, error) {
	var out models.Coach
	err := c.getJSON(ctx, "/programs/coaches/"+itoa(id), nil, &out)
	return out, err
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

// ParseID parses a positive decimal record identifier.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
