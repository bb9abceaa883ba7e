package filter

import (
	"fmt"
	"net/url"
	"strings"
)

// Catalog is the product listing filter.
type Catalog struct {
	Search    string
	Category  string
	Brand     string
	MinPrice  float64
	MaxPrice  float64
	MinRating float64
	Sort      Sort
	Paging
}

// NewCatalog returns the default catalog filter.
func NewCatalog() Catalog {
	return Catalog{Sort: SortNewest, Paging: defaultPaging()}
}

// DecodeCatalog reads a catalog filter from URL parameters. Malformed values
// fall back to their defaults.
func DecodeCatalog(v url.Values) Catalog {
	c := NewCatalog()
	c.Search = strings.TrimSpace(v.Get(ParamQuery))
	c.Category = strings.TrimSpace(v.Get(ParamCategory))
	c.Brand = strings.TrimSpace(v.Get(ParamBrand))
	if f, ok := parseAmount(v.Get(ParamMinPrice)); ok {
		c.MinPrice = f
	}
	if f, ok := parseAmount(v.Get(ParamMaxPrice)); ok {
		c.MaxPrice = f
	}
	if f, ok := parseAmount(v.Get(ParamMinRating)); ok && f <= 5 {
		c.MinRating = f
	}
	if s := Sort(v.Get(ParamSort)); s.Valid() {
		c.Sort = s
	}
	c.Paging = decodePaging(v)
	return c
}

// Encode returns the non-default fields as URL parameters.
func (c Catalog) Encode() url.Values {
	v := url.Values{}
	c.encodeFilters(v)
	if c.Sort != SortNewest && c.Sort != "" {
		v.Set(ParamSort, string(c.Sort))
	}
	c.Paging.encode(v)
	return v
}

// Query returns the backend request parameters.
func (c Catalog) Query() url.Values {
	v := url.Values{}
	c.encodeFilters(v)
	sort := c.Sort
	if sort == "" {
		sort = SortNewest
	}
	v.Set(ParamSort, string(sort))
	c.Paging.query(v)
	return v
}

// Path returns the shareable listing path for c.
func (c Catalog) Path() string {
	return withPath("/products", c.Encode())
}

func (c Catalog) encodeFilters(v url.Values) {
	setString(v, ParamQuery, c.Search)
	setString(v, ParamCategory, c.Category)
	setString(v, ParamBrand, c.Brand)
	if c.MinPrice > 0 {
		v.Set(ParamMinPrice, formatAmount(c.MinPrice))
	}
	if c.MaxPrice > 0 {
		v.Set(ParamMaxPrice, formatAmount(c.MaxPrice))
	}
	if c.MinRating > 0 {
		v.Set(ParamMinRating, formatAmount(c.MinRating))
	}
}

// IsSearch reports whether the filter carries a free-text query.
func (c Catalog) IsSearch() bool {
	return c.Search != ""
}

func (c Catalog) WithSearch(q string) Catalog {
	c.Search = strings.TrimSpace(q)
	c.Page = DefaultPage
	return c
}

func (c Catalog) WithCategory(category string) Catalog {
	c.Category = strings.TrimSpace(category)
	c.Page = DefaultPage
	return c
}

func (c Catalog) WithBrand(brand string) Catalog {
	c.Brand = strings.TrimSpace(brand)
	c.Page = DefaultPage
	return c
}

// WithPriceRange sets both bounds. Zero leaves a bound open.
func (c Catalog) WithPriceRange(min, max float64) Catalog {
	c.MinPrice, c.MaxPrice = min, max
	c.Page = DefaultPage
	return c
}

func (c Catalog) WithMinRating(r float64) Catalog {
	c.MinRating = r
	c.Page = DefaultPage
	return c
}

func (c Catalog) WithSort(s Sort) Catalog {
	c.Sort = s
	c.Page = DefaultPage
	return c
}

// WithPage moves to page n and keeps every other field.
func (c Catalog) WithPage(n int) Catalog {
	if n < 1 {
		n = DefaultPage
	}
	c.Page = n
	return c
}

// Set assigns one field by its URL parameter name, as typed by a user.
func (c Catalog) Set(name, value string) (Catalog, error) {
	if ok, err := c.Paging.set(name, value); ok {
		return c, err
	}
	switch name {
	case ParamQuery:
		return c.WithSearch(value), nil
	case ParamCategory:
		return c.WithCategory(value), nil
	case ParamBrand:
		return c.WithBrand(value), nil
	case ParamMinPrice, ParamMaxPrice, ParamMinRating:
		f, ok := parseAmount(value)
		if !ok || (name == ParamMinRating && f > 5) {
			return c, fmt.Errorf("invalid %s %q", name, value)
		}
		switch name {
		case ParamMinPrice:
			return c.WithPriceRange(f, c.MaxPrice), nil
		case ParamMaxPrice:
			return c.WithPriceRange(c.MinPrice, f), nil
		default:
			return c.WithMinRating(f), nil
		}
	case ParamSort:
		s := Sort(value)
		if value == "" {
			s = SortNewest
		}
		if !s.Valid() {
			return c, fmt.Errorf("invalid sort %q", value)
		}
		return c.WithSort(s), nil
	}
	return c, fmt.Errorf("%w: %s", ErrUnknownField, name)
}
