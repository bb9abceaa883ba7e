package shell

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/atinyakov/fitcompare/internal/client/api"
	"github.com/atinyakov/fitcompare/internal/client/compare"
	"github.com/atinyakov/fitcompare/internal/client/favorites"
	"github.com/atinyakov/fitcompare/internal/client/pages"
	"github.com/atinyakov/fitcompare/internal/client/querycache"
	"github.com/atinyakov/fitcompare/internal/client/session"
	"github.com/atinyakov/fitcompare/internal/client/storage"
	"github.com/atinyakov/fitcompare/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend serves a two-product catalog and records favorite changes.
type fakeBackend struct {
	favs      map[int64]bool
	failFav   bool
	lastQuery url.Values
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{favs: map[int64]bool{}}
}

var catalog = []models.Product{
	{ID: 1, Name: "Whey", Brand: "ON", Price: 40},
	{ID: 2, Name: "Creatine", Brand: "MyProtein", Price: 20},
}

func (b *fakeBackend) decorate(p models.Product) models.Product {
	return p.WithFavorite(b.favs[p.ID])
}

func (b *fakeBackend) Login(_ context.Context, c models.Credentials) (*models.AuthResponse, error) {
	if c.Password != "secret" {
		return nil, &api.APIError{Status: 401, Detail: "Incorrect email or password"}
	}
	return &models.AuthResponse{AccessToken: "abc123", User: &models.User{Email: c.Email}}, nil
}

func (b *fakeBackend) Signup(_ context.Context, r models.SignupRequest) (*models.AuthResponse, error) {
	return &models.AuthResponse{AccessToken: "new", User: &models.User{Email: r.Email, FullName: r.FullName}}, nil
}

func (b *fakeBackend) Me(context.Context) (*models.User, error) {
	return nil, errors.New("unused")
}

func (b *fakeBackend) ListProducts(_ context.Context, q url.Values) (models.Page[models.Product], error) {
	b.lastQuery = q
	items := make([]models.Product, len(catalog))
	for i, p := range catalog {
		items[i] = b.decorate(p)
	}
	return models.Page[models.Product]{Items: items, Total: len(items), Page: 1, PageSize: 20}, nil
}

func (b *fakeBackend) SearchProducts(ctx context.Context, q url.Values) (models.Page[models.Product], error) {
	return b.ListProducts(ctx, q)
}

func (b *fakeBackend) GetProduct(_ context.Context, id int64) (models.Product, error) {
	for _, p := range catalog {
		if p.ID == id {
			return b.decorate(p), nil
		}
	}
	return models.Product{}, &api.APIError{Status: 404, Detail: "Product not found"}
}

func (b *fakeBackend) ListFavorites(context.Context) ([]models.Product, error) {
	var out []models.Product
	for _, p := range catalog {
		if b.favs[p.ID] {
			out = append(out, b.decorate(p))
		}
	}
	return out, nil
}

func (b *fakeBackend) AddFavorite(_ context.Context, id int64) error {
	if b.failFav {
		return &api.APIError{Status: 500, Detail: "Try again later"}
	}
	b.favs[id] = true
	return nil
}

func (b *fakeBackend) RemoveFavorite(_ context.Context, id int64) error {
	delete(b.favs, id)
	return nil
}

func (b *fakeBackend) ListGyms(context.Context, url.Values) (models.Page[models.Gym], error) {
	return models.Page[models.Gym]{}, nil
}

func (b *fakeBackend) GetGym(context.Context, int64) (models.Gym, error) { return models.Gym{}, nil }

func (b *fakeBackend) ListPrograms(context.Context, url.Values) (models.Page[models.Program], error) {
	return models.Page[models.Program]{}, nil
}

func (b *fakeBackend) GetProgram(context.Context, int64) (models.Program, error) {
	return models.Program{}, nil
}

func (b *fakeBackend) ListCoaches(context.Context) ([]models.Coach, error) { return nil, nil }

func (b *fakeBackend) GetCoach(context.Context, int64) (models.Coach, error) {
	return models.Coach{}, nil
}

type harness struct {
	backend *fakeBackend
	store   *storage.MemoryStore
	sess    *session.Store
	out     *bytes.Buffer
	deps    Deps
}

func newHarness() *harness {
	b := newFakeBackend()
	store := storage.NewMemoryStore()
	sess := session.New(store, b, nil)
	cache := querycache.New()
	sel := compare.Load(store, nil)
	nav := pages.NewNavigator(pages.NewRouter(pages.NewHandler(b, sess, cache, sel, nil)), nil)
	return &harness{
		backend: b,
		store:   store,
		sess:    sess,
		out:     &bytes.Buffer{},
		deps: Deps{
			Navigator: nav,
			Session:   sess,
			Favorites: favorites.NewToggler(b, cache, nil),
			Selection: sel,
			Cache:     cache,
			Products:  b,
		},
	}
}

// run executes the commands in script; lines after a command are its prompt answers.
func (h *harness) run(script string) string {
	h.out.Reset()
	sh := New(strings.NewReader(script), h.out, h.deps)
	sh.Run(context.Background())
	return h.out.String()
}

func TestShell_LoginReturnsToFavorites(t *testing.T) {
	h := newHarness()
	out := h.run("open /favorites\nlogin\nuser@example.com\nsecret\nwhoami\nexit\n")

	assert.Contains(t, out, "[/login?next=%2Ffavorites]")
	assert.Contains(t, out, "Signed in as user@example.com.")
	assert.Contains(t, out, "[/favorites]")
	assert.Contains(t, out, "You have no favorites yet")
	assert.Contains(t, out, "user@example.com (authenticated)")
	assert.Contains(t, out, "Bye")

	tok, _ := h.store.Get(storage.TokenKey)
	assert.Equal(t, "abc123", tok)
}

func TestShell_LoginFailureShowsDetail(t *testing.T) {
	h := newHarness()
	out := h.run("login\nuser@example.com\nwrong\nlogin\nnot-an-email\nx\n")

	assert.Contains(t, out, "Incorrect email or password")
	assert.Contains(t, out, "Please enter a valid email and password.")
	assert.False(t, h.sess.IsAuthenticated())
}

func TestShell_FavToggle(t *testing.T) {
	h := newHarness()
	out := h.run("fav 1\n")
	assert.Contains(t, out, "Sign in to manage favorites")

	require.NoError(t, loginDirect(h))
	out = h.run("open /products\nfav 1\nopen /favorites\nfav 1\nexit\n")
	assert.Contains(t, out, "Added Whey to favorites.")
	assert.Contains(t, out, "Removed Whey from favorites.")
	assert.False(t, h.backend.favs[1])

	h.backend.failFav = true
	out = h.run("fav 2\nexit\n")
	assert.Contains(t, out, "Try again later")
	assert.False(t, h.backend.favs[2])
}

func TestShell_Compare(t *testing.T) {
	h := newHarness()
	out := h.run("compare add 1\ncompare add 2\ncompare add 2\ncompare remove 1\ncompare add 99\ncompare\nexit\n")

	assert.Contains(t, out, "Comparing (2/3): #1 Whey, #2 Creatine.")
	assert.Contains(t, out, "Comparing (1/3): #2 Creatine.")
	assert.Contains(t, out, "Product not found")

	raw, ok := h.store.Get(storage.CompareKey)
	require.True(t, ok)
	assert.Contains(t, raw, `"id":2`)
}

func TestShell_FilterPageSearch(t *testing.T) {
	h := newHarness()
	out := h.run("open /products\nfilter brand=ON sort=price_desc\npage 2\nsearch whey isolate\nfilter colour=red\npage x\nexit\n")

	assert.Contains(t, out, "[/products?brand=ON&sort=price_desc]")
	assert.Contains(t, out, "[/products?brand=ON&page=2&sort=price_desc]")
	assert.Contains(t, out, "[/products?brand=ON&q=whey+isolate&sort=price_desc]")
	assert.Contains(t, out, "unknown filter field")
	assert.Contains(t, out, "Page must be a positive number.")
	assert.Equal(t, "whey isolate", h.backend.lastQuery.Get("q"))
}

func TestShell_NavigationCommands(t *testing.T) {
	h := newHarness()
	out := h.run("back\nopen /gyms\nback\nfrobnicate\nopen\nexit\n")

	assert.Contains(t, out, "[/gyms]")
	assert.Contains(t, out, "Unknown command")
	assert.Contains(t, out, "Usage: open <path>")
	assert.Equal(t, 2, strings.Count(out, "[/]\n"), "home on start and after back")
}

func TestShell_SignupAndLogout(t *testing.T) {
	h := newHarness()
	out := h.run("signup\nnew@example.com\nsecret1\nNew Person\nlogout\nwhoami\nexit\n")

	assert.Contains(t, out, "Signed in as new@example.com.")
	assert.Contains(t, out, "Signed out.")
	assert.Contains(t, out, "Not signed in (idle)")
	_, ok := h.store.Get(storage.TokenKey)
	assert.False(t, ok)
}

func loginDirect(h *harness) error {
	_, err := h.sess.Login(context.Background(), models.Credentials{Email: "user@example.com", Password: "secret"})
	return err
}
