package pages

import (
	"errors"
	"fmt"

	"github.com/atinyakov/fitcompare/internal/client/filter"
)

// ErrNotListing is returned when a filter change targets a page that is not a listing.
var ErrNotListing = errors.New("current page has no filters")

// Refine applies name=value to the filter of the listing at current and
// returns the path of the refined listing.
func Refine(current, name, value string) (string, error) {
	path, q := pathOf(current)
	switch path {
	case "/products":
		f, err := filter.DecodeCatalog(q).Set(name, value)
		if err != nil {
			return "", err
		}
		return f.Path(), nil
	case "/gyms":
		f, err := filter.DecodeGyms(q).Set(name, value)
		if err != nil {
			return "", err
		}
		return f.Path(), nil
	case "/programs":
		f, err := filter.DecodePrograms(q).Set(name, value)
		if err != nil {
			return "", err
		}
		return f.Path(), nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotListing, path)
}

// Paginate returns the path of page n of the listing at current.
func Paginate(current string, n int) (string, error) {
	path, q := pathOf(current)
	switch path {
	case "/products":
		return filter.DecodeCatalog(q).WithPage(n).Path(), nil
	case "/gyms":
		return filter.DecodeGyms(q).WithPage(n).Path(), nil
	case "/programs":
		return filter.DecodePrograms(q).WithPage(n).Path(), nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotListing, path)
}

// Search runs a free-text query on the listing at current, or on the product
// catalog when current is not a listing.
func Search(current, q string) string {
	if p, err := Refine(current, filter.ParamQuery, q); err == nil {
		return p
	}
	return filter.NewCatalog().WithSearch(q).Path()
}
