package pages

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/atinyakov/fitcompare/internal/client/filter"
	"github.com/atinyakov/fitcompare/internal/client/querycache"
	"github.com/atinyakov/fitcompare/internal/client/session"
	"github.com/atinyakov/fitcompare/internal/models"
)

// NextParam carries the page to return to after signing in.
const NextParam = "next"

// RequireAuth redirects to /login unless the session is authenticated. While a
// persisted session is still being restored the request is answered with 202.
func RequireAuth(sess *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch sess.Status() {
			case session.StatusAuthenticated:
				next.ServeHTTP(w, r)
			case session.StatusLoading:
				w.WriteHeader(http.StatusAccepted)
				fmt.Fprintln(w, "Restoring your session...")
				fmt.Fprintln(w, RetryHint)
			default:
				target := "/login?" + url.Values{NextParam: {r.URL.RequestURI()}}.Encode()
				http.Redirect(w, r, target, http.StatusFound)
			}
		})
	}
}

// Home renders the landing screen with the newest products.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	if u := h.Session.User(); u != nil {
		fmt.Fprintf(w, "Welcome back, %s.\n", displayName(u))
	} else {
		fmt.Fprintln(w, "Welcome to FitCompare. Type `login` to sign in.")
	}
	fmt.Fprintln(w)

	latest := filter.NewCatalog()
	latest.PageSize = 4
	q := latest.Query()
	page, err := querycache.Fetch(r.Context(), h.Cache, productListKey("list", q),
		func(ctx context.Context) (models.Page[models.Product], error) {
			return h.API.ListProducts(ctx, q)
		})
	if err != nil {
		h.renderError(w, r, err, "Could not load new arrivals.")
		return
	}
	fmt.Fprintln(w, "New arrivals")
	if len(page.Items) == 0 {
		renderEmpty(w, "The catalog is empty.")
	} else {
		h.productTable(w, page.Items)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Browse: /products /gyms /programs /favorites /compare")
	if n := len(h.Selection.IDs()); n > 0 {
		fmt.Fprintf(w, "%d product(s) selected for comparison.\n", n)
	}
}

// Favorites renders the signed-in user's favorite products.
func (h *Handler) Favorites(w http.ResponseWriter, r *http.Request) {
	list, err := querycache.Fetch(r.Context(), h.Cache, favoritesKey, h.API.ListFavorites)
	if err != nil {
		h.renderError(w, r, err, "Could not load favorites.")
		return
	}
	fmt.Fprintln(w, "Favorites")
	if len(list) == 0 {
		renderEmpty(w, "You have no favorites yet. Type `fav <id>` on a product to add one.")
		return
	}
	h.productTable(w, list)
}

// Login renders the sign-in screen. Credentials are entered with the login command.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if u := h.Session.User(); u != nil {
		fmt.Fprintf(w, "Signed in as %s. Type `logout` to sign out.\n", u.Email)
		return
	}
	if next := r.URL.Query().Get(NextParam); next != "" {
		fmt.Fprintf(w, "Sign in to view %s.\n", next)
	}
	fmt.Fprintln(w, "Type `login` and enter your email and password.")
	fmt.Fprintln(w, "No account yet? Type `signup`.")
}

// Signup renders the registration screen.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	if u := h.Session.User(); u != nil {
		fmt.Fprintf(w, "Signed in as %s.\n", u.Email)
		return
	}
	fmt.Fprintln(w, "Type `signup` and enter your email, password and name.")
	fmt.Fprintln(w, "Already registered? Type `login`.")
}

// NextAfterLogin returns the page a sign-in screen at path asked to return to,
// or "" when path is not such a screen.
func NextAfterLogin(path string) string {
	u, err := url.Parse(path)
	if err != nil || (u.Path != "/login" && u.Path != "/signup" && u.Path != "/register") {
		return ""
	}
	next := u.Query().Get(NextParam)
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}
	return next
}

func displayName(u *models.User) string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}
