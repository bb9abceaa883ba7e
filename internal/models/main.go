// Package models defines the core data structures shared by the client and the backend:
// accounts, catalog records, favorites and comparison entries.
package models

import "time"

// User represents an account holder.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`
	// Email is the login identifier chosen by the user.
	Email string `json:"email"`
	// FullName is an optional display name.
	FullName string `json:"full_name,omitempty"`
	// PasswordHash is the bcrypt hash of the password. Never serialized.
	PasswordHash string `json:"-"`
	// CreatedAt is the account creation time.
	CreatedAt time.Time `json:"created_at"`
}

// Credentials holds the identifier and secret used to log in.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest holds the profile used to create an account.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name,omitempty" validate:"max=120"`
}

// AuthResponse is returned by the login and signup endpoints.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        *User  `json:"user,omitempty"`
}

// Product is a catalog record. IsFavorite is computed per user by the backend.
type Product struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Brand        string    `json:"brand,omitempty"`
	Category     string    `json:"category,omitempty"`
	Price        float64   `json:"price"`
	Rating       float64   `json:"rating,omitempty"`
	ReviewsCount int       `json:"reviews_count,omitempty"`
	Images       []string  `json:"images,omitempty"`
	URL          string    `json:"url,omitempty"`
	Source       string    `json:"source,omitempty"`
	IsFavorite   bool      `json:"is_favorite"`
	CreatedAt    time.Time `json:"created_at"`
}

// WithFavorite returns a copy of p with the favorite flag set to fav.
func (p Product) WithFavorite(fav bool) Product {
	p.IsFavorite = fav
	return p
}

// Gym is a fitness club record.
type Gym struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Brand     string  `json:"brand,omitempty"`
	Address   string  `json:"address,omitempty"`
	City      string  `json:"city,omitempty"`
	Country   string  `json:"country,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	URL       string  `json:"url,omitempty"`
	ImageURL  string  `json:"image_url,omitempty"`
	LogoURL   string  `json:"logo_url,omitempty"`
	Opened247 bool    `json:"opened_24_7"`
}

// Program is a training program, optionally led by a coach.
type Program struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Level         string `json:"level"`
	DurationWeeks int    `json:"duration_weeks"`
	CoachID       int64  `json:"coach_id,omitempty"`
}

// Coach is a trainer attached to programs.
type Coach struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Specialty string  `json:"specialty,omitempty"`
	Bio       string  `json:"bio,omitempty"`
	Rating    float64 `json:"rating,omitempty"`
}

// Page is a paginated list envelope.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// CompareEntry is the compact product reference kept in the comparison selection.
type CompareEntry struct {
	ID     int64    `json:"id"`
	Name   string   `json:"name"`
	Images []string `json:"images,omitempty"`
}

// SetFavorite returns a copy of products where the product with the given id carries fav.
// The input slice is never modified.
func SetFavorite(products []Product, id int64, fav bool) []Product {
	out := make([]Product, len(products))
	for i, p := range products {
		if p.ID == id {
			p = p.WithFavorite(fav)
		}
		out[i] = p
	}
	return out
}

// RemoveProduct returns a copy of products without the product with the given id.
func RemoveProduct(products []Product, id int64) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

func (p Page[T]) withItems(items []T) Page[T] {
	p.Items = items
	return p
}

// ProductPageWithFavorite returns a copy of page with the favorite flag of product id set to fav.
func ProductPageWithFavorite(page Page[Product], id int64, fav bool) Page[Product] {
	return page.withItems(SetFavorite(page.Items, id, fav))
}
