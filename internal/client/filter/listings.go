package filter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Gyms is the gym listing filter.
type Gyms struct {
	Search  string
	City    string
	Brand   string
	Open247 bool
	Paging
}

// NewGyms returns the default gym filter.
func NewGyms() Gyms {
	return Gyms{Paging: defaultPaging()}
}

// DecodeGyms reads a gym filter from URL parameters.
func DecodeGyms(v url.Values) Gyms {
	g := NewGyms()
	g.Search = strings.TrimSpace(v.Get(ParamQuery))
	g.City = strings.TrimSpace(v.Get(ParamCity))
	g.Brand = strings.TrimSpace(v.Get(ParamBrand))
	g.Open247, _ = strconv.ParseBool(v.Get(ParamOpen247))
	g.Paging = decodePaging(v)
	return g
}

func (g Gyms) encodeFilters(v url.Values) {
	setString(v, ParamQuery, g.Search)
	setString(v, ParamCity, g.City)
	setString(v, ParamBrand, g.Brand)
	if g.Open247 {
		v.Set(ParamOpen247, "true")
	}
}

// Encode returns the non-default fields as URL parameters.
func (g Gyms) Encode() url.Values {
	v := url.Values{}
	g.encodeFilters(v)
	g.Paging.encode(v)
	return v
}

// Query returns the backend request parameters.
func (g Gyms) Query() url.Values {
	v := url.Values{}
	g.encodeFilters(v)
	g.Paging.query(v)
	return v
}

// Path returns the shareable listing path for g.
func (g Gyms) Path() string {
	return withPath("/gyms", g.Encode())
}

func (g Gyms) WithPage(n int) Gyms {
	if n < 1 {
		n = DefaultPage
	}
	g.Page = n
	return g
}

// Set assigns one field by its URL parameter name.
func (g Gyms) Set(name, value string) (Gyms, error) {
	if ok, err := g.Paging.set(name, value); ok {
		return g, err
	}
	switch name {
	case ParamQuery:
		g.Search = strings.TrimSpace(value)
	case ParamCity:
		g.City = strings.TrimSpace(value)
	case ParamBrand:
		g.Brand = strings.TrimSpace(value)
	case ParamOpen247:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return g, fmt.Errorf("invalid %s %q", name, value)
		}
		g.Open247 = b
	default:
		return g, fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	g.Page = DefaultPage
	return g, nil
}

// Programs is the training program listing filter.
type Programs struct {
	Search string
	Level string
	Paging
}

// NewPrograms returns the default program filter.
func NewPrograms() Programs {
	return Programs{Paging: defaultPaging()}
}

// DecodePrograms reads a program filter from URL parameters.
func DecodePrograms(v url.Values) Programs {
	p := NewPrograms()
	p.Search = strings.TrimSpace(v.Get(ParamQuery))
	p.Level = strings.TrimSpace(v.Get(ParamLevel))
	p.Paging = decodePaging(v)
	return p
}

func (p Programs) encodeFilters(v url.Values) {
	setString(v, ParamQuery, p.Search)
	setString(v, ParamLevel, p.Level)
}

// Encode returns the non-default fields as URL parameters.
func (p Programs) Encode() url.Values {
	v := url.Values{}
	p.encodeFilters(v)
	p.Paging.encode(v)
	return v
}

// Query returns the backend request parameters.
func (p Programs) Query() url.Values {
	v := url.Values{}
	p.encodeFilters(v)
	p.Paging.query(v)
	return v
}

// Path returns the shareable listing path for p.
func (p Programs) Path() string {
	return withPath("/programs", p.Encode())
}

func (p Programs) WithPage(n int) Programs {
	if n < 1 {
		n = DefaultPage
	}
	p.Page = n
	return p
}

// Set assigns one field by its URL parameter name.
func (p Programs) Set(name, value string) (Programs, error) {
	if ok, err := p.Paging.set(name, value); ok {
		return p, err
	}
	switch name {
	case ParamQuery:
		p.Search = strings.TrimSpace(value)
	case ParamLevel:
		p.Level = strings.TrimSpace(value)
	default:
		return p, fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	p.Page = DefaultPage
	return p, nil
}
