package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/atinyakov/fitcompare/internal/models"
	"github.com/lib/pq"
)

// PostgresCatalogRepository reads products, gyms, programs and coaches.
type PostgresCatalogRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresCatalogRepository creates a PostgresCatalogRepository over db.
func NewPostgresCatalogRepository(db *sql.DB) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{DB: db}
}

const productColumns = `id, name, description, brand, category, price, rating, reviews_count, images, url, source, created_at`

var productOrder = map[string]string{
	"newest":      "created_at DESC, id DESC",
	"price_asc":   "price ASC, id ASC",
	"price_desc":  "price DESC, id ASC",
	"rating_desc": "rating DESC, reviews_count DESC, id ASC",
}

// conditions accumulates a WHERE clause with numbered placeholders.
type conditions struct {
	clauses []string
	args    []any
}

// add appends clause, where every %[1]d is replaced by the placeholder number of v.
func (c *conditions) add(clause string, v any) {
	c.args = append(c.args, v)
	c.clauses = append(c.clauses, fmt.Sprintf(clause, len(c.args)))
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// page appends LIMIT and OFFSET placeholders and returns the clause with its args.
func (c *conditions) page(page, pageSize int) (string, []any) {
	args := append(append([]any(nil), c.args...), pageSize, models.Offset(page, pageSize))
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// ListProducts returns a page of products matching q.
func (r *PostgresCatalogRepository) ListProducts(ctx context.Context, q models.ProductQuery) (models.Page[models.Product], error) {
	var c conditions
	if q.Search != "" {
		c.add(`(name ILIKE $%[1]d OR brand ILIKE $%[1]d OR description ILIKE $%[1]d)`, likePattern(q.Search))
	}
	if q.Category != "" {
		c.add(`category = $%d`, q.Category)
	}
	if q.Brand != "" {
		c.add(`brand = $%d`, q.Brand)
	}
	if q.MinPrice > 0 {
		c.add(`price >= $%d`, q.MinPrice)
	}
	if q.MaxPrice > 0 {
		c.add(`price <= $%d`, q.MaxPrice)
	}
	if q.MinRating > 0 {
		c.add(`rating >= $%d`, q.MinRating)
	}
	order, ok := productOrder[q.Sort]
	if !ok {
		order = productOrder["newest"]
	}

	out := models.Page[models.Product]{Page: q.Page, PageSize: q.PageSize, Items: []models.Product{}}
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`+c.where(), c.args...).Scan(&out.Total); err != nil {
		return out, fmt.Errorf("count products: %w", err)
	}

	limit, args := c.page(q.Page, q.PageSize)
	rows, err := r.DB.QueryContext(ctx, `SELECT `+productColumns+` FROM products`+c.where()+` ORDER BY `+order+limit, args...)
	if err != nil {
		return out, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out.Items, err = scanProducts(rows)
	return out, err
}

// GetProduct returns the product with the given id.
func (r *PostgresCatalogRepository) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (models.Product, error) {
	var p models.Product
	err := s.Scan(&p.ID, &p.Name, &p.Description, &p.Brand, &p.Category, &p.Price, &p.Rating,
		&p.ReviewsCount, pq.Array(&p.Images), &p.URL, &p.Source, &p.CreatedAt)
	return p, err
}

func scanProducts(rows *sql.Rows) ([]models.Product, error) {
	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

const gymColumns = `id, name, brand, address, city, country, latitude, longitude, url, image_url, logo_url, opened_24_7`

// ListGyms returns a page of gyms matching q.
func (r *PostgresCatalogRepository) ListGyms(ctx context.Context, q models.GymQuery) (models.Page[models.Gym], error) {
	var c conditions
	if q.Search != "" {
		c.add(`(name ILIKE $%[1]d OR address ILIKE $%[1]d)`, likePattern(q.Search))
	}
	if q.City != "" {
		c.add(`city = $%d`, q.City)
	}
	if q.Brand != "" {
		c.add(`brand = $%d`, q.Brand)
	}
	if q.Open247 {
		c.add(`opened_24_7 = $%d`, true)
	}

	out := models.Page[models.Gym]{Page: q.Page, PageSize: q.PageSize, Items: []models.Gym{}}
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM gyms`+c.where(), c.args...).Scan(&out.Total); err != nil {
		return out, fmt.Errorf("count gyms: %w", err)
	}

	limit, args := c.page(q.Page, q.PageSize)
	rows, err := r.DB.QueryContext(ctx, `SELECT `+gymColumns+` FROM gyms`+c.where()+` ORDER BY name, id`+limit, args...)
	if err != nil {
		return out, fmt.Errorf("list gyms: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		g, err := scanGym(rows)
		if err != nil {
			return out, fmt.Errorf("scan gym: %w", err)
		}
		out.Items = append(out.Items, g)
	}
	return out, rows.Err()
}

// GetGym returns the gym with the given id.
func (r *PostgresCatalogRepository) GetGym(ctx context.Context, id int64) (*models.Gym, error) {
	g, err := scanGym(r.DB.QueryRowContext(ctx, `SELECT `+gymColumns+` FROM gyms WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get gym: %w", err)
	}
	return &g, nil
}

func scanGym(s scanner) (models.Gym, error) {
	var g models.Gym
	err := s.Scan(&g.ID, &g.Name, &g.Brand, &g.Address, &g.City, &g.Country, &g.Latitude, &g.Longitude,
		&g.URL, &g.ImageURL, &g.LogoURL, &g.Opened247)
	return g, err
}

const programColumns = `id, title, description, level, duration_weeks, COALESCE(coach_id, 0)`

// ListPrograms returns a page of programs matching q.
func (r *PostgresCatalogRepository) ListPrograms(ctx context.Context, q models.ProgramQuery) (models.Page[models.Program], error) {
	var c conditions
	if q.Search != "" {
		c.add(`(title ILIKE $%[1]d OR description ILIKE $%[1]d)`, likePattern(q.Search))
	}
	if q.Level != "" {
		c.add(`level = $%d`, q.Level)
	}

	out := models.Page[models.Program]{Page: q.Page, PageSize: q.PageSize, Items: []models.Program{}}
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM programs`+c.where(), c.args...).Scan(&out.Total); err != nil {
		return out, fmt.Errorf("count programs: %w", err)
	}

	limit, args := c.page(q.Page, q.PageSize)
	rows, err := r.DB.QueryContext(ctx, `SELECT `+programColumns+` FROM programs`+c.where()+` ORDER BY id`+limit, args...)
	if err != nil {
		return out, fmt.Errorf("list programs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return out, fmt.Errorf("scan program: %w", err)
		}
		out.Items = append(out.Items, p)
	}
	return out, rows.Err()
}

// GetProgram returns the program with the given id.
func (r *PostgresCatalogRepository) GetProgram(ctx context.Context, id int64) (*models.Program, error) {
	p, err := scanProgram(r.DB.QueryRowContext(ctx, `SELECT `+programColumns+` FROM programs WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get program: %w", err)
	}
	return &p, nil
}

func scanProgram(s scanner) (models.Program, error) {
	var p models.Program
	err := s.Scan(&p.ID, &p.Title, &p.Description, &p.Level, &p.DurationWeeks, &p.CoachID)
	return p, err
}

const coachColumns = `id, name, specialty, bio, rating`

// ListCoaches returns every coach ordered by name.
func (r *PostgresCatalogRepository) ListCoaches(ctx context.Context) ([]models.Coach, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+coachColumns+` FROM coaches ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list coaches: %w", err)
	}
	defer rows.Close()

	coaches := []models.Coach{}
	for rows.Next() {
		c, err := scanCoach(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coach: %w", err)
		}
		coaches = append(coaches, c)
	}
	return coaches, rows.Err()
}

// GetCoach returns the coach with the given id.
func (r *PostgresCatalogRepository) GetCoach(ctx context.Context, id int64) (*models.Coach, error) {
	c, err := scanCoach(r.DB.QueryRowContext(ctx, `SELECT `+coachColumns+` FROM coaches WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get coach: %w", err)
	}
	return &c, nil
}

func scanCoach(s scanner) (models.Coach, error) {
	var c models.Coach
	err := s.Scan(&c.ID, &c.Name, &c.Specialty, &c.Bio, &c.Rating)
	return c, err
}
