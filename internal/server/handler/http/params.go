package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// queryParams reads typed query parameters and collects every malformed one,
// so a single 422 can report them all.
type queryParams struct {
	v      url.Values
	issues []validationIssue
}

func newQueryParams(r *http.Request) *queryParams {
	return &queryParams{v: r.URL.Query()}
}

func (p *queryParams) fail(name, msg string) {
	p.issues = append(p.issues, validationIssue{Loc: []string{name}, Msg: msg})
}

func (p *queryParams) str(name string) string {
	return strings.TrimSpace(p.v.Get(name))
}

func (p *queryParams) float(name string) float64 {
	raw := p.str(name)
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 {
		p.fail(name, "Input should be a valid non-negative number")
		return 0
	}
	return f
}

func (p *queryParams) boolean(name string) bool {
	raw := p.str(name)
	if raw == "" {
		return false
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(name, "Input should be a valid boolean")
	}
	return b
}

func (p *queryParams) intIn(name string, def, lo, hi int) int {
	raw := p.str(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		p.fail(name, "Input should be an integer between "+strconv.Itoa(lo)+" and "+strconv.Itoa(hi))
		return def
	}
	return n
}

// paging returns page and page_size with their defaults.
func (p *queryParams) paging() (int, int) {
	const maxInt = int(^uint(0) >> 1)
	return p.intIn("page", 1, 1, maxInt), p.intIn("page_size", defaultPageSize, 1, maxPageSize)
}

// valid writes a 422 and returns false when any parameter was malformed.
func (p *queryParams) valid(w http.ResponseWriter) bool {
	if len(p.issues) == 0 {
		return true
	}
	writeValidation(w, "query", p.issues)
	return false
}

// idParam parses the {name} path segment. Non-numeric ids answer 422.
func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeValidation(w, "path", []validationIssue{{Loc: []string{name}, Msg: "Input should be a valid integer"}})
		return 0, false
	}
	return id, true
}
