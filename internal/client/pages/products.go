package pages

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/atinyakov/fitcompare/internal/client/filter"
	"github.com/atinyakov/fitcompare/internal/client/querycache"
	"github.com/atinyakov/fitcompare/internal/models"
	"github.com/go-chi/chi/v5"
)

// Products renders the catalog listing. The filter is read from the URL; a
// free-text query switches to the search endpoint.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	f := filter.DecodeCatalog(r.URL.Query())
	q := f.Query()

	kind, load := "list", h.API.ListProducts
	if f.IsSearch() {
		kind, load = "search", h.API.SearchProducts
	}
	page, err := querycache.Fetch(r.Context(), h.Cache, productListKey(kind, q),
		func(ctx context.Context) (models.Page[models.Product], error) {
			return load(ctx, q)
		})
	if err != nil {
		h.renderError(w, r, err, "Could not load products.")
		return
	}

	fmt.Fprintln(w, "Products")
	if d := describe(f.Encode()); d != "" {
		fmt.Fprintln(w, d)
	}
	if len(page.Items) == 0 {
		renderEmpty(w, "No products match these filters.")
		return
	}
	h.productTable(w, page.Items)
	footer(w, page.Page, page.PageSize, page.Total)
}

func (h *Handler) productTable(w io.Writer, products []models.Product) {
	tw := newTable(w)
	row(tw, "ID", "NAME", "BRAND", "PRICE", "RATING", "FAV", "CMP")
	for _, p := range products {
		row(tw, p.ID, truncate(p.Name, 40), orDash(p.Brand), price(p.Price), rating(p.Rating),
			mark(p.IsFavorite, "*"), mark(h.Selection.Contains(p.ID), "+"))
	}
	tw.Flush()
}

// Product renders a single product.
func (h *Handler) Product(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	p, err := querycache.Fetch(r.Context(), h.Cache, ProductKey(id), func(ctx context.Context) (models.Product, error) {
		return h.API.GetProduct(ctx, id)
	})
	if err != nil {
		h.renderError(w, r, err, "Could not load product.")
		return
	}

	fmt.Fprintf(w, "%s (#%d)\n", p.Name, p.ID)
	tw := newTable(w)
	row(tw, "Brand", orDash(p.Brand))
	row(tw, "Category", orDash(p.Category))
	row(tw, "Price", price(p.Price))
	row(tw, "Rating", fmt.Sprintf("%s (%d reviews)", rating(p.Rating), p.ReviewsCount))
	if h.Session.IsAuthenticated() {
		row(tw, "Favorite", yesNo(p.IsFavorite))
	}
	row(tw, "Comparing", yesNo(h.Selection.Contains(p.ID)))
	if p.URL != "" {
		row(tw, "Shop", p.URL)
	}
	tw.Flush()
	if p.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, p.Description)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Type `fav %d` to toggle favorite, `compare add %d` to compare.\n", p.ID, p.ID)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
