package pages

import (
	"context"
	"fmt"
	"net/http"

	"github.com/atinyakov/fitcompare/internal/client/querycache"
	"github.com/atinyakov/fitcompare/internal/models"
)

// Compare renders the selected products side by side.
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	ids := h.Selection.IDs()
	fmt.Fprintln(w, "Compare")
	if len(ids) == 0 {
		renderEmpty(w, "No products selected. Type `compare add <id>` to add one.")
		return
	}

	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		p, err := querycache.Fetch(r.Context(), h.Cache, ProductKey(id), func(ctx context.Context) (models.Product, error) {
			return h.API.GetProduct(ctx, id)
		})
		if err != nil {
			h.renderError(w, r, err, fmt.Sprintf("Could not load product #%d.", id))
			return
		}
		products = append(products, p)
	}

	tw := newTable(w)
	line := func(label string, cell func(models.Product) string) {
		cells := []any{label}
		for _, p := range products {
			cells = append(cells, cell(p))
		}
		row(tw, cells...)
	}
	line("", func(p models.Product) string { return fmt.Sprintf("#%d", p.ID) })
	line("Name", func(p models.Product) string { return truncate(p.Name, 30) })
	line("Brand", func(p models.Product) string { return orDash(p.Brand) })
	line("Category", func(p models.Product) string { return orDash(p.Category) })
	line("Price", func(p models.Product) string { return price(p.Price) })
	line("Rating", func(p models.Product) string { return rating(p.Rating) })
	line("Reviews", func(p models.Product) string { return fmt.Sprint(p.ReviewsCount) })
	line("About", func(p models.Product) string { return orDash(truncate(p.Description, 30)) })
	tw.Flush()

	if len(products) > 1 {
		cheapest, best := products[0], products[0]
		for _, p := range products[1:] {
			if p.Price < cheapest.Price {
				cheapest = p
			}
			if p.Rating > best.Rating {
				best = p
			}
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Lowest price: %s (%s)\n", cheapest.Name, price(cheapest.Price))
		fmt.Fprintf(w, "Best rated: %s (%s)\n", best.Name, rating(best.Rating))
	}
}
