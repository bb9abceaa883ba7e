// Package filter translates listing filter state to and from URL query parameters.
//
// A filter value is the source of truth for a listing. Encode serializes only the
// fields that differ from their defaults, so the shareable path stays minimal;
// Decode is its inverse. Query is the canonical backend request and always carries
// the page and page size. Every setter except WithPage returns to page 1.
package filter

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Defaults shared by every listing.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// URL parameter names.
const (
	ParamQuery     = "q"
	ParamCategory  = "category"
	ParamBrand     = "brand"
	ParamMinPrice  = "min_price"
	ParamMaxPrice  = "max_price"
	ParamMinRating = "min_rating"
	ParamSort      = "sort"
	ParamCity      = "city"
	ParamOpen247   = "open_24_7"
	ParamLevel     = "level"
	ParamPage      = "page"
	ParamPageSize  = "page_size"
)

// ErrUnknownField is returned by Set for a parameter the listing does not have.
var ErrUnknownField = errors.New("unknown filter field")

// Sort orders for the catalog.
type Sort string

const (
	SortNewest     Sort = "newest"
	SortPriceAsc   Sort = "price_asc"
	SortPriceDesc  Sort = "price_desc"
	SortRatingDesc Sort = "rating_desc"
)

// Valid reports whether s is a known sort order.
func (s Sort) Valid() bool {
	switch s {
	case SortNewest, SortPriceAsc, SortPriceDesc, SortRatingDesc:
		return true
	}
	return false
}

// Paging is embedded by every listing filter.
type Paging struct {
	Page     int
	PageSize int
}

func defaultPaging() Paging {
	return Paging{Page: DefaultPage, PageSize: DefaultPageSize}
}

func (p Paging) encode(v url.Values) {
	if p.Page != DefaultPage {
		v.Set(ParamPage, strconv.Itoa(p.Page))
	}
	if p.PageSize != DefaultPageSize {
		v.Set(ParamPageSize, strconv.Itoa(p.PageSize))
	}
}

func (p Paging) query(v url.Values) {
	v.Set(ParamPage, strconv.Itoa(p.Page))
	v.Set(ParamPageSize, strconv.Itoa(p.PageSize))
}

func decodePaging(v url.Values) Paging {
	p := defaultPaging()
	if n, ok := parsePositive(v.Get(ParamPage)); ok {
		p.Page = n
	}
	if n, ok := parsePositive(v.Get(ParamPageSize)); ok && n <= MaxPageSize {
		p.PageSize = n
	}
	return p
}

// set applies a page or page_size assignment. handled is false for other names.
func (p *Paging) set(name, value string) (handled bool, err error) {
	switch name {
	case ParamPage:
		n, ok := parsePositive(value)
		if !ok {
			return true, fmt.Errorf("invalid page %q", value)
		}
		p.Page = n
	case ParamPageSize:
		n, ok := parsePositive(value)
		if !ok || n > MaxPageSize {
			return true, fmt.Errorf("invalid page size %q", value)
		}
		p.PageSize = n
		p.Page = DefaultPage
	default:
		return false, nil
	}
	return true, nil
}

func parsePositive(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// parseAmount parses a non-negative decimal. Empty means unset (zero).
func parseAmount(s string) (float64, bool) {
	if s == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return f, true
}

func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func setString(v url.Values, name, value string) {
	if value = strings.TrimSpace(value); value != "" {
		v.Set(name, value)
	}
}

func withPath(path string, v url.Values) string {
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}
