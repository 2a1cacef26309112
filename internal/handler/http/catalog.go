package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/EVCatalog/internal/domain"
	"github.com/utafrali/EVCatalog/internal/service"
	"github.com/utafrali/EVCatalog/internal/view"
	apperrors "github.com/utafrali/EVCatalog/pkg/errors"
	"github.com/utafrali/EVCatalog/pkg/httputil"
	"github.com/utafrali/EVCatalog/pkg/pagination"
)

const noResultsMessage = "No results found matching your criteria."

// CatalogHandler serves the catalog pages and EV forms.
type CatalogHandler struct {
	pages
	catalog *service.CatalogService
	reviews *service.ReviewService
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(catalog *service.CatalogService, reviews *service.ReviewService, views view.Renderer, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		pages:   pages{views: views, logger: logger},
		catalog: catalog,
		reviews: reviews,
	}
}

// Home handles GET /. A store failure still renders the page, annotated.
func (h *CatalogHandler) Home(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	data := h.data(r)
	data["Attributes"] = domain.Attributes()

	evs, err := h.catalog.List(r.Context(), params.Page, params.PerPage)
	if err != nil {
		httputil.LogError(r, err, h.logger)
		data["Error"] = httputil.Message(err)
	} else {
		data["EVs"] = evs
	}

	h.render(w, r, http.StatusOK, view.Main, data)
}

// Query handles GET /query-result: an exact match when value is given, an
// inclusive range otherwise.
func (h *CatalogHandler) Query(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	attribute := q.Get("attribute")
	value := strings.TrimSpace(q.Get("value"))
	lower, upper := q.Get("lower_limit"), q.Get("upper_limit")

	var (
		results []domain.EV
		err     error
	)
	switch {
	case value != "":
		results, err = h.catalog.Filter(r.Context(), attribute, value)
	case lower != "" || upper != "":
		results, err = h.catalog.Range(r.Context(), attribute, lower, upper)
	default:
		err = apperrors.InvalidInput("Enter a value or a numerical range.")
	}

	data := h.data(r)
	switch {
	case err != nil:
		httputil.LogError(r, err, h.logger)
		data["Results"] = []domain.EV{}
		data["Error"] = httputil.Message(err)
	case len(results) == 0:
		data["Results"] = results
		data["Notice"] = noResultsMessage
	default:
		data["Results"] = results
	}

	h.render(w, r, http.StatusOK, view.QueryResults, data)
}

// AddEVForm handles GET /add-ev.
func (h *CatalogHandler) AddEVForm(w http.ResponseWriter, r *http.Request) {
	data := h.data(r)
	data["Form"] = domain.EVInput{}
	h.render(w, r, http.StatusOK, view.AddEV, data)
}

// CreateEV handles POST /add-ev.
func (h *CatalogHandler) CreateEV(w http.ResponseWriter, r *http.Request) {
	input, err := parseEVForm(r)
	if err != nil {
		httputil.RedirectWithError(w, r, "/add-ev", httputil.Message(err))
		return
	}

	if _, err := h.catalog.CreateEV(r.Context(), input); err != nil {
		httputil.LogError(r, err, h.logger)
		httputil.RedirectWithError(w, r, "/add-ev", formMessage(err))
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// ShowEV handles GET /ev/{id}: the record, its reviews and average score.
func (h *CatalogHandler) ShowEV(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !httputil.ValidID(id) {
		h.notFound(w, r)
		return
	}

	ev, err := h.catalog.GetEV(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	data := h.data(r)
	data["EV"] = ev

	params := pagination.FromRequest(r)
	reviews, err := h.reviews.ListReviews(r.Context(), id, params.Page, params.PerPage)
	if err != nil {
		httputil.LogError(r, err, h.logger)
		data["Error"] = httputil.Message(err)
	}
	data["Reviews"] = reviews

	score, err := h.reviews.AverageScore(r.Context(), id)
	if err != nil {
		httputil.LogError(r, err, h.logger)
		data["Error"] = httputil.Message(err)
	}
	data["Score"] = score

	h.render(w, r, http.StatusOK, view.EVInfo, data)
}

// EditEVForm handles GET /edit-ev/{id}.
func (h *CatalogHandler) EditEVForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !httputil.ValidID(id) {
		h.notFound(w, r)
		return
	}

	ev, err := h.catalog.GetEV(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	data := h.data(r)
	data["EV"] = ev
	data["Form"] = domain.InputFrom(*ev)
	h.render(w, r, http.StatusOK, view.EditEV, data)
}

// UpdateEV handles POST /edit-ev/{id}, replacing every attribute.
func (h *CatalogHandler) UpdateEV(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !httputil.ValidID(id) {
		h.notFound(w, r)
		return
	}
	back := "/edit-ev/" + id

	input, err := parseEVForm(r)
	if err != nil {
		httputil.RedirectWithError(w, r, back, httputil.Message(err))
		return
	}

	if _, err := h.catalog.UpdateEV(r.Context(), id, input); err != nil {
		if apperrors.HTTPStatus(err) == http.StatusNotFound {
			h.fail(w, r, err)
			return
		}
		httputil.LogError(r, err, h.logger)
		httputil.RedirectWithError(w, r, back, formMessage(err))
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// DeleteEV handles POST /delete-ev/{id}. Unknown ids are ignored.
func (h *CatalogHandler) DeleteEV(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if httputil.ValidID(id) {
		if err := h.catalog.DeleteEV(r.Context(), id); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
