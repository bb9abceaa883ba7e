package pages

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/atinyakov/fitcompare/internal/logger"
	"go.uber.org/zap"
)

const maxRedirects = 5

var (
	// ErrNoHistory is returned by Back on the first page.
	ErrNoHistory = errors.New("no previous page")
	// ErrTooManyRedirects is returned when a path keeps redirecting.
	ErrTooManyRedirects = errors.New("too many redirects")
)

// View is a rendered screen.
type View struct {
	// Path is the path that produced Body, after redirects.
	Path   string
	Status int
	Body   string
}

// OK reports whether the screen rendered without an error state.
func (v View) OK() bool {
	return v.Status < http.StatusBadRequest
}

// Navigator opens paths against a router in-process and keeps the history,
// much like a browser tab.
type Navigator struct {
	handler http.Handler
	log     *zap.Logger

	mu      sync.Mutex
	history []string
}

// NewNavigator returns a Navigator with an empty history.
func NewNavigator(handler http.Handler, log *zap.Logger) *Navigator {
	return &Navigator{handler: handler, log: logger.OrNop(log)}
}

// Open renders path and pushes it onto the history. Redirects are followed and
// only the final path is recorded.
func (n *Navigator) Open(ctx context.Context, path string) (View, error) {
	v, err := n.dispatch(ctx, path)
	if err != nil {
		return View{}, err
	}
	n.mu.Lock()
	if len(n.history) == 0 || n.history[len(n.history)-1] != v.Path {
		n.history = append(n.history, v.Path)
	}
	n.mu.Unlock()
	return v, nil
}

// Back returns to the previous page and renders it again.
func (n *Navigator) Back(ctx context.Context) (View, error) {
	n.mu.Lock()
	if len(n.history) < 2 {
		n.mu.Unlock()
		return View{}, ErrNoHistory
	}
	n.history = n.history[:len(n.history)-1]
	prev := n.history[len(n.history)-1]
	n.mu.Unlock()

	v, err := n.dispatch(ctx, prev)
	if err != nil {
		return View{}, err
	}
	n.replace(v.Path)
	return v, nil
}

// Reload renders the current page again, or the home page when nothing was opened yet.
func (n *Navigator) Reload(ctx context.Context) (View, error) {
	cur := n.Current()
	if cur == "" {
		return n.Open(ctx, "/")
	}
	v, err := n.dispatch(ctx, cur)
	if err != nil {
		return View{}, err
	}
	n.replace(v.Path)
	return v, nil
}

// Current returns the path of the page on screen, or "".
func (n *Navigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.history) == 0 {
		return ""
	}
	return n.history[len(n.history)-1]
}

func (n *Navigator) replace(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.history) == 0 {
		n.history = append(n.history, path)
		return
	}
	n.history[len(n.history)-1] = path
}

func (n *Navigator) dispatch(ctx context.Context, path string) (View, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for i := 0; i <= maxRedirects; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
		if err != nil {
			return View{}, fmt.Errorf("open %s: %w", path, err)
		}
		rec := newRecorder()
		n.handler.ServeHTTP(rec, req)

		loc := rec.header.Get("Location")
		if rec.status >= 300 && rec.status < 400 && loc != "" {
			next, err := req.URL.Parse(loc)
			if err != nil {
				return View{}, fmt.Errorf("bad redirect from %s: %w", path, err)
			}
			n.log.Debug("redirect", zap.String("from", path), zap.String("to", next.RequestURI()))
			path = next.RequestURI()
			continue
		}
		return View{Path: path, Status: rec.status, Body: rec.body.String()}, nil
	}
	return View{}, fmt.Errorf("open %s: %w", path, ErrTooManyRedirects)
}

// recorder is the in-memory ResponseWriter screens render into.
type recorder struct {
	header      http.Header
	body        bytes.Buffer
	status      int
	wroteHeader bool
}

func newRecorder() *recorder {
	return &recorder{header: make(http.Header), status: http.StatusOK}
}

func (r *recorder) Header() http.Header { return r.header }

func (r *recorder) WriteHeader(code int) {
	if r.wroteHeader {
		return
	}
	r.status, r.wroteHeader = code, true
}

func (r *recorder) Write(p []byte) (int, error) {
	r.wroteHeader = true
	return r.body.Write(p)
}

// pathOf splits a navigator path into its path and query.
func pathOf(p string) (string, url.Values) {
	u, err := url.Parse(p)
	if err != nil {
		return p, url.Values{}
	}
	return u.Path, u.Query()
}
