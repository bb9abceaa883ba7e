package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atinyakov/fitcompare/internal/models"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

var seedProducts = []models.Product{
	{Name: "Gold Standard 100% Whey", Brand: "Optimum Nutrition", Category: "protein", Price: 59.99, Rating: 4.8, ReviewsCount: 1520,
		Description: "24 g of whey protein per serving.", Images: []string{"https://img.example.com/on-whey.jpg"}, Source: "seed"},
	{Name: "Impact Whey Isolate", Brand: "MyProtein", Category: "protein", Price: 44.50, Rating: 4.5, ReviewsCount: 860,
		Description: "Isolate with over 90% protein.", Images: []string{"https://img.example.com/mp-isolate.jpg"}, Source: "seed"},
	{Name: "Creatine Monohydrate", Brand: "MyProtein", Category: "creatine", Price: 19.99, Rating: 4.7, ReviewsCount: 2210,
		Description: "Micronised creatine, unflavoured.", Source: "seed"},
	{Name: "C4 Original Pre-Workout", Brand: "Cellucor", Category: "pre-workout", Price: 29.99, Rating: 4.3, ReviewsCount: 640,
		Description: "Explosive energy blend.", Source: "seed"},
	{Name: "Casein Protein", Brand: "Optimum Nutrition", Category: "protein", Price: 54.00, Rating: 4.6, ReviewsCount: 410,
		Description: "Slow-release micellar casein.", Source: "seed"},
	{Name: "Resistance Band Set", Brand: "Decathlon", Category: "equipment", Price: 24.99, Rating: 4.1, ReviewsCount: 95,
		Description: "Five bands from 5 to 40 kg.", Source: "seed"},
}

var seedGyms = []models.Gym{
	{Name: "Basic-Fit Paris Bastille", Brand: "Basic-Fit", Address: "12 Rue de la Roquette", City: "Paris", Country: "France", Opened247: true},
	{Name: "Fitness Park Lyon", Brand: "Fitness Park", Address: "3 Cours Lafayette", City: "Lyon", Country: "France"},
	{Name: "McFIT Berlin Mitte", Brand: "McFIT", Address: "Alexanderplatz 1", City: "Berlin", Country: "Germany", Opened247: true},
}

var seedCoaches = []models.Coach{
	{Name: "Dana Reyes", Specialty: "endurance", Bio: "Marathoner and running coach.", Rating: 4.9},
	{Name: "Marc Dubois", Specialty: "strength", Bio: "Powerlifting coach for ten years.", Rating: 4.7},
}

// seedPrograms reference seedCoaches by index.
var seedPrograms = []struct {
	models.Program
	coach int
}{
	{models.Program{Title: "Couch to 5k", Description: "Run 5 km in nine weeks.", Level: "beginner", DurationWeeks: 9}, 0},
	{models.Program{Title: "Half Marathon Build", Description: "Twelve weeks to 21 km.", Level: "intermediate", DurationWeeks: 12}, 0},
	{models.Program{Title: "5x5 Strength", Description: "Compound lifts, three days a week.", Level: "beginner", DurationWeeks: 8}, 1},
}

// Seed fills an empty catalog with demo records. A catalog that already has
// products is left alone.
func Seed(ctx context.Context, db *sql.DB, log *zap.Logger) error {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if n > 0 {
		log.Debug("catalog already seeded", zap.Int("products", n))
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, p := range seedProducts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO products (name, description, brand, category, price, rating, reviews_count, images, url, source)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, p.Name, p.Description, p.Brand, p.Category, p.Price, p.Rating, p.ReviewsCount, pq.Array(p.Images), p.URL, p.Source)
		if err != nil {
			return fmt.Errorf("seed product %q: %w", p.Name, err)
		}
	}

	for _, g := range seedGyms {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO gyms (name, brand, address, city, country, opened_24_7)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, g.Name, g.Brand, g.Address, g.City, g.Country, g.Opened247)
		if err != nil {
			return fmt.Errorf("seed gym %q: %w", g.Name, err)
		}
	}

	coachIDs := make([]int64, len(seedCoaches))
	for i, c := range seedCoaches {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO coaches (name, specialty, bio, rating) VALUES ($1, $2, $3, $4) RETURNING id
		`, c.Name, c.Specialty, c.Bio, c.Rating).Scan(&coachIDs[i])
		if err != nil {
			return fmt.Errorf("seed coach %q: %w", c.Name, err)
		}
	}

	for _, p := range seedPrograms {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO programs (title, description, level, duration_weeks, coach_id)
			VALUES ($1, $2, $3, $4, $5)
		`, p.Title, p.Description, p.Level, p.DurationWeeks, coachIDs[p.coach])
		if err != nil {
			return fmt.Errorf("seed program %q: %w", p.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	log.Info("seeded demo catalog",
		zap.Int("products", len(seedProducts)),
		zap.Int("gyms", len(seedGyms)),
		zap.Int("programs", len(seedPrograms)),
	)
	return nil
}
