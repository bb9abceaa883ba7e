// Package shell is the interactive front end of the client: it reads commands,
// drives the navigator and the session, and prints the rendered screens.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atinyakov/fitcompare/internal/client/api"
	"github.com/atinyakov/fitcompare/internal/client/compare"
	"github.com/atinyakov/fitcompare/internal/client/favorites"
	"github.com/atinyakov/fitcompare/internal/client/pages"
	"github.com/atinyakov/fitcompare/internal/client/querycache"
	"github.com/atinyakov/fitcompare/internal/client/session"
	"github.com/atinyakov/fitcompare/internal/logger"
	"github.com/atinyakov/fitcompare/internal/models"
	"go.uber.org/zap"
)

const helpText = `Pages:    / /products /products/<id> /gyms /gyms/<id> /programs /programs/<id>
          /coaches/<id> /favorites /compare /login /signup
Commands: help, open <path>, back, retry, login, signup, logout, whoami,
          search <text>, filter <field>=<value>..., page <n>, fav <id>,
          compare add <id> | remove <id> | list | clear, exit`

// ProductAPI loads a product for commands that act on one.
type ProductAPI interface {
	GetProduct(ctx context.Context, id int64) (models.Product, error)
}

// Shell runs the command loop.
type Shell struct {
	in  *bufio.Scanner
	out io.Writer

	nav       *pages.Navigator
	session   *session.Store
	favorites *favorites.Toggler
	selection *compare.Selection
	cache     *querycache.Cache
	products  ProductAPI
	log       *zap.Logger
}

// Deps lists the collaborators of a Shell.
type Deps struct {
	Navigator *pages.Navigator
	Session   *session.Store
	Favorites *favorites.Toggler
	Selection *compare.Selection
	Cache     *querycache.Cache
	Products  ProductAPI
	Log       *zap.Logger
}

// New returns a Shell reading commands from in and printing to out.
func New(in io.Reader, out io.Writer, d Deps) *Shell {
	return &Shell{
		in:        bufio.NewScanner(in),
		out:       out,
		nav:       d.Navigator,
		session:   d.Session,
		favorites: d.Favorites,
		selection: d.Selection,
		cache:     d.Cache,
		products:  d.Products,
		log:       logger.OrNop(d.Log),
	}
}

// Run opens the home page and processes commands until exit, end of input or ctx is done.
func (s *Shell) Run(ctx context.Context) {
	s.open(ctx, "/")
	for ctx.Err() == nil {
		fmt.Fprint(s.out, "fitcompare> ")
		if !s.in.Scan() {
			break
		}
		if quit := s.Exec(ctx, s.in.Text()); quit {
			return
		}
	}
}

// Exec runs one command line. It reports whether the shell should stop.
func (s *Shell) Exec(ctx context.Context, line string) bool {
	args := strings.Fields(strings.TrimSpace(line))
	if len(args) == 0 {
		return false
	}
	s.log.Debug("command", zap.String("name", args[0]))
	switch args[0] {
	case "help":
		fmt.Fprintln(s.out, helpText)
	case "open":
		if len(args) < 2 {
			fmt.Fprintln(s.out, "Usage: open <path>")
			return false
		}
		s.open(ctx, args[1])
	case "back":
		s.show(s.nav.Back(ctx))
	case "retry":
		s.show(s.nav.Reload(ctx))
	case "login":
		s.login(ctx)
	case "signup", "register":
		s.signup(ctx)
	case "logout":
		s.session.Logout()
		s.cache.Clear()
		fmt.Fprintln(s.out, "Signed out.")
		s.refresh(ctx)
	case "whoami":
		s.whoami()
	case "search":
		s.open(ctx, pages.Search(s.nav.Current(), strings.Join(args[1:], " ")))
	case "filter":
		s.filter(ctx, args[1:])
	case "page":
		s.page(ctx, args[1:])
	case "fav":
		s.fav(ctx, args[1:])
	case "compare":
		s.compare(ctx, args[1:])
	case "exit", "quit":
		fmt.Fprintln(s.out, "Bye")
		return true
	default:
		fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
	}
	return false
}

func (s *Shell) open(ctx context.Context, path string) {
	s.show(s.nav.Open(ctx, path))
}

func (s *Shell) show(v pages.View, err error) {
	switch {
	case errors.Is(err, pages.ErrNoHistory):
		fmt.Fprintln(s.out, "Nothing to go back to.")
	case err != nil:
		fmt.Fprintln(s.out, "Error:", err)
	default:
		fmt.Fprintf(s.out, "[%s]\n%s", v.Path, v.Body)
	}
}

// refresh re-renders the current page, if any.
func (s *Shell) refresh(ctx context.Context) {
	if s.nav.Current() != "" {
		s.show(s.nav.Reload(ctx))
	}
}

func (s *Shell) login(ctx context.Context) {
	creds, ok := PromptCredentials(s.in, s.out)
	if !ok {
		return
	}
	user, err := s.session.Login(ctx, creds)
	if err != nil {
		s.authFailed(err, "Login failed.")
		return
	}
	s.signedIn(ctx, user)
}

func (s *Shell) signup(ctx context.Context) {
	req, ok := PromptSignup(s.in, s.out)
	if !ok {
		return
	}
	user, err := s.session.Signup(ctx, req)
	if err != nil {
		s.authFailed(err, "Sign up failed.")
		return
	}
	s.signedIn(ctx, user)
}

func (s *Shell) authFailed(err error, fallback string) {
	if errors.Is(err, session.ErrInvalidInput) {
		fmt.Fprintln(s.out, "Please enter a valid email and password.")
		return
	}
	fmt.Fprintln(s.out, api.UserMessage(err, fallback))
}

// signedIn drops per-user cache entries and returns to the page that asked
// for a sign-in, if any.
func (s *Shell) signedIn(ctx context.Context, user *models.User) {
	s.cache.Invalidate(favorites.ProductsKey, favorites.FavoritesKey)
	fmt.Fprintf(s.out, "Signed in as %s.\n", user.Email)
	if next := pages.NextAfterLogin(s.nav.Current()); next != "" {
		s.open(ctx, next)
		return
	}
	s.refresh(ctx)
}

func (s *Shell) whoami() {
	st := s.session.Snapshot()
	switch st.Status {
	case session.StatusAuthenticated:
		fmt.Fprintf(s.out, "%s (%s)\n", st.User.Email, st.Status)
	default:
		fmt.Fprintf(s.out, "Not signed in (%s)\n", st.Status)
	}
}

func (s *Shell) filter(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(s.out, "Usage: filter <field>=<value>...")
		return
	}
	path := s.nav.Current()
	for _, arg := range args {
		name, value, _ := strings.Cut(arg, "=")
		next, err := pages.Refine(path, name, value)
		if err != nil {
			fmt.Fprintln(s.out, "Error:", err)
			return
		}
		path = next
	}
	s.open(ctx, path)
}

func (s *Shell) page(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: page <n>")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		fmt.Fprintln(s.out, "Page must be a positive number.")
		return
	}
	path, err := pages.Paginate(s.nav.Current(), n)
	if err != nil {
		fmt.Fprintln(s.out, "Error:", err)
		return
	}
	s.open(ctx, path)
}

func (s *Shell) product(ctx context.Context, raw string) (models.Product, bool) {
	id, err := api.ParseID(raw)
	if err != nil {
		fmt.Fprintln(s.out, "Error:", err)
		return models.Product{}, false
	}
	p, err := querycache.Fetch(ctx, s.cache, pages.ProductKey(id), func(ctx context.Context) (models.Product, error) {
		return s.products.GetProduct(ctx, id)
	})
	if err != nil {
		fmt.Fprintln(s.out, api.UserMessage(err, "Could not load product."))
		return models.Product{}, false
	}
	return p, true
}

func (s *Shell) fav(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: fav <id>")
		return
	}
	if !s.session.IsAuthenticated() {
		fmt.Fprintln(s.out, "Sign in to manage favorites. Type `login`.")
		return
	}
	p, ok := s.product(ctx, args[0])
	if !ok {
		return
	}
	fav, err := s.favorites.Toggle(ctx, p.ID, p.IsFavorite)
	if err != nil {
		fmt.Fprintln(s.out, api.UserMessage(err, "Could not update favorites."))
		s.refresh(ctx)
		return
	}
	if fav {
		fmt.Fprintf(s.out, "Added %s to favorites.\n", p.Name)
	} else {
		fmt.Fprintf(s.out, "Removed %s from favorites.\n", p.Name)
	}
	s.refresh(ctx)
}

func (s *Shell) compare(ctx context.Context, args []string) {
	if len(args) == 0 {
		args = []string{"list"}
	}
	switch args[0] {
	case "add":
		if len(args) != 2 {
			fmt.Fprintln(s.out, "Usage: compare add <id>")
			return
		}
		p, ok := s.product(ctx, args[1])
		if !ok {
			return
		}
		s.printSelection(s.selection.Add(p))
	case "remove":
		if len(args) != 2 {
			fmt.Fprintln(s.out, "Usage: compare remove <id>")
			return
		}
		id, err := api.ParseID(args[1])
		if err != nil {
			fmt.Fprintln(s.out, "Error:", err)
			return
		}
		s.printSelection(s.selection.Remove(id))
	case "list":
		s.printSelection(s.selection.Items())
	case "clear":
		s.selection.Clear()
		s.printSelection(nil)
	default:
		fmt.Fprintln(s.out, "Usage: compare add <id> | remove <id> | list | clear")
	}
}

func (s *Shell) printSelection(items []models.CompareEntry) {
	if len(items) == 0 {
		fmt.Fprintln(s.out, "Comparison list is empty.")
		return
	}
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = fmt.Sprintf("#%d %s", it.ID, it.Name)
	}
	fmt.Fprintf(s.out, "Comparing (%d/%d): %s. Type `open /compare` to view.\n",
		len(items), compare.Capacity, strings.Join(names, ", "))
}
