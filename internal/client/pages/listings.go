package pages

import (
	"context"
	"fmt"
	"net/http"

	"github.com/atinyakov/fitcompare/internal/client/filter"
	"github.com/atinyakov/fitcompare/internal/client/querycache"
	"github.com/atinyakov/fitcompare/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Gyms renders the gym listing.
func (h *Handler) Gyms(w http.ResponseWriter, r *http.Request) {
	f := filter.DecodeGyms(r.URL.Query())
	q := f.Query()
	page, err := querycache.Fetch(r.Context(), h.Cache, gymListKey(q), func(ctx context.Context) (models.Page[models.Gym], error) {
		return h.API.ListGyms(ctx, q)
	})
	if err != nil {
		h.renderError(w, r, err, "Could not load gyms.")
		return
	}

	fmt.Fprintln(w, "Gyms")
	if d := describe(f.Encode()); d != "" {
		fmt.Fprintln(w, d)
	}
	if len(page.Items) == 0 {
		renderEmpty(w, "No gyms match these filters.")
		return
	}
	tw := newTable(w)
	row(tw, "ID", "NAME", "BRAND", "CITY", "24/7")
	for _, g := range page.Items {
		row(tw, g.ID, truncate(g.Name, 40), orDash(g.Brand), orDash(g.City), yesNo(g.Opened247))
	}
	tw.Flush()
	footer(w, page.Page, page.PageSize, page.Total)
}

// Gym renders a single gym.
func (h *Handler) Gym(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	g, err := querycache.Fetch(r.Context(), h.Cache, gymKey(id), func(ctx context.Context) (models.Gym, error) {
		return h.API.GetGym(ctx, id)
	})
	if err != nil {
		h.renderError(w, r, err, "Could not load gym.")
		return
	}

	fmt.Fprintf(w, "%s (#%d)\n", g.Name, g.ID)
	tw := newTable(w)
	row(tw, "Brand", orDash(g.Brand))
	row(tw, "Address", orDash(g.Address))
	row(tw, "City", orDash(g.City))
	row(tw, "Country", orDash(g.Country))
	row(tw, "Open 24/7", yesNo(g.Opened247))
	if g.URL != "" {
		row(tw, "Website", g.URL)
	}
	tw.Flush()
}

// Programs renders the program listing followed by the coaches.
func (h *Handler) Programs(w http.ResponseWriter, r *http.Request) {
	f := filter.DecodePrograms(r.URL.Query())
	q := f.Query()
	page, err := querycache.Fetch(r.Context(), h.Cache, programListKey(q), func(ctx context.Context) (models.Page[models.Program], error) {
		return h.API.ListPrograms(ctx, q)
	})
	if err != nil {
		h.renderError(w, r, err, "Could not load programs.")
		return
	}

	coaches, err := h.coaches(r.Context())
	if err != nil {
		// the listing is still usable without coach names
		h.Log.Debug("coaches unavailable", zap.Error(err))
	}
	names := make(map[int64]string, len(coaches))
	for _, c := range coaches {
		names[c.ID] = c.Name
	}

	fmt.Fprintln(w, "Programs")
	if d := describe(f.Encode()); d != "" {
		fmt.Fprintln(w, d)
	}
	if len(page.Items) == 0 {
		renderEmpty(w, "No programs match these filters.")
	} else {
		tw := newTable(w)
		row(tw, "ID", "TITLE", "LEVEL", "WEEKS", "COACH")
		for _, p := range page.Items {
			row(tw, p.ID, truncate(p.Title, 40), orDash(p.Level), p.DurationWeeks, orDash(names[p.CoachID]))
		}
		tw.Flush()
		footer(w, page.Page, page.PageSize, page.Total)
	}

	if len(coaches) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Coaches")
		tw := newTable(w)
		row(tw, "ID", "NAME", "SPECIALTY", "RATING")
		for _, c := range coaches {
			row(tw, c.ID, c.Name, orDash(c.Specialty), rating(c.Rating))
		}
		tw.Flush()
	}
}

func (h *Handler) coaches(ctx context.Context) ([]models.Coach, error) {
	return querycache.Fetch(ctx, h.Cache, coachesKey, h.API.ListCoaches)
}

// Program renders a single program with its coach.
func (h *Handler) Program(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	p, err := querycache.Fetch(r.Context(), h.Cache, programKey(id), func(ctx context.Context) (models.Program, error) {
		return h.API.GetProgram(ctx, id)
	})
	if err != nil {
		h.renderError(w, r, err, "Could not load program.")
		return
	}

	fmt.Fprintf(w, "%s (#%d)\n", p.Title, p.ID)
	tw := newTable(w)
	row(tw, "Level", orDash(p.Level))
	row(tw, "Duration", fmt.Sprintf("%d weeks", p.DurationWeeks))
	if p.CoachID != 0 {
		coach, err := h.coach(r.Context(), p.CoachID)
		if err != nil {
			row(tw, "Coach", fmt.Sprintf("#%d", p.CoachID))
		} else {
			row(tw, "Coach", fmt.Sprintf("%s (/coaches/%d)", coach.Name, coach.ID))
		}
	}
	tw.Flush()
	if p.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, p.Description)
	}
}

func (h *Handler) coach(ctx context.Context, id int64) (models.Coach, error) {
	return querycache.Fetch(ctx, h.Cache, coachKey(id), func(ctx context.Context) (models.Coach, error) {
		return h.API.GetCoach(ctx, id)
	})
}

// Coach renders a single coach.
func (h *Handler) Coach(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	c, err := h.coach(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err, "Could not load coach.")
		return
	}

	fmt.Fprintf(w, "%s (#%d)\n", c.Name, c.ID)
	tw := newTable(w)
	row(tw, "Specialty", orDash(c.Specialty))
	row(tw, "Rating", rating(c.Rating))
	tw.Flush()
	if c.Bio != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, c.Bio)
	}
}
