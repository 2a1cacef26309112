package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/EVCatalog/internal/domain"
	"github.com/utafrali/EVCatalog/internal/service"
	"github.com/utafrali/EVCatalog/internal/view"
	apperrors "github.com/utafrali/EVCatalog/pkg/errors"
	"github.com/utafrali/EVCatalog/pkg/httputil"
)

// CompareHandler renders side-by-side comparisons of two EVs.
type CompareHandler struct {
	pages
	catalog *service.CatalogService
	reviews *service.ReviewService
}

// NewCompareHandler creates a new compare HTTP handler.
func NewCompareHandler(catalog *service.CatalogService, reviews *service.ReviewService, views view.Renderer, logger *slog.Logger) *CompareHandler {
	return &CompareHandler{
		pages:   pages{views: views, logger: logger},
		catalog: catalog,
		reviews: reviews,
	}
}

// Compare handles POST /compare-evs. Missing or unknown ids render the
// compare page with an error instead of a comparison.
func (h *CompareHandler) Compare(w http.ResponseWriter, r *http.Request) {
	data := h.data(r)

	if err := r.ParseForm(); err != nil {
		data["Error"] = "could not read the submitted form"
		h.render(w, r, http.StatusOK, view.CompareEVs, data)
		return
	}
	id1, id2 := r.PostForm.Get("ev1_id"), r.PostForm.Get("ev2_id")
	if id1 == "" || id2 == "" {
		data["Error"] = "Select two EVs to compare."
		h.render(w, r, http.StatusOK, view.CompareEVs, data)
		return
	}

	ev1, err := h.lookup(r, id1)
	if err != nil {
		h.annotate(w, r, data, err)
		return
	}
	ev2, err := h.lookup(r, id2)
	if err != nil {
		h.annotate(w, r, data, err)
		return
	}

	cmp := domain.Compare(*ev1, *ev2, h.score(r, ev1.ID), h.score(r, ev2.ID))
	data["Comparison"] = &cmp
	h.render(w, r, http.StatusOK, view.CompareEVs, data)
}

func (h *CompareHandler) lookup(r *http.Request, id string) (*domain.EV, error) {
	if !httputil.ValidID(id) {
		return nil, apperrors.NotFound("ev", id)
	}
	return h.catalog.GetEV(r.Context(), id)
}

// score returns the EV's average score. A failed lookup counts as no
// reviews, which excludes Average_Score from the comparison.
func (h *CompareHandler) score(r *http.Request, evID string) domain.AverageScore {
	score, err := h.reviews.AverageScore(r.Context(), evID)
	if err != nil {
		httputil.LogError(r, err, h.logger)
		return domain.AverageScore{}
	}
	return score
}

func (h *CompareHandler) annotate(w http.ResponseWriter, r *http.Request, data map[string]any, err error) {
	httputil.LogError(r, err, h.logger)

	status := http.StatusOK
	if code := apperrors.HTTPStatus(err); code >= http.StatusInternalServerError {
		status = code
	}
	if apperrors.HTTPStatus(err) == http.StatusNotFound {
		data["Error"] = "EV not found."
	} else {
		data["Error"] = httputil.Message(err)
	}
	h.render(w, r, status, view.CompareEVs, data)
}
