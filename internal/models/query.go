package models

// ProductQuery selects a page of the catalog.
type ProductQuery struct {
	Search    string
	Category  string
	Brand     string
	MinPrice  float64
	MaxPrice  float64
	MinRating float64
	// Sort is one of newest, price_asc, price_desc, rating_desc.
	Sort     string
	Page     int
	PageSize int
}

// GymQuery selects a page of gyms.
type GymQuery struct {
	Search   string
	City     string
	Brand    string
	Open247  bool
	Page     int
	PageSize int
}

// ProgramQuery selects a page of programs.
type ProgramQuery struct {
	Search   string
	Level    string
	Page     int
	PageSize int
}

// Offset returns the row offset of a 1-based page.
func Offset(page, pageSize int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * pageSize
}
