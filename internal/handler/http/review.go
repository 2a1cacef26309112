package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/EVCatalog/internal/domain"
	"github.com/utafrali/EVCatalog/internal/service"
	"github.com/utafrali/EVCatalog/internal/view"
	apperrors "github.com/utafrali/EVCatalog/pkg/errors"
	"github.com/utafrali/EVCatalog/pkg/httputil"
)

// ReviewHandler handles review submissions.
type ReviewHandler struct {
	pages
	reviews *service.ReviewService
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(reviews *service.ReviewService, views view.Renderer, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		pages:   pages{views: views, logger: logger},
		reviews: reviews,
	}
}

// AddReview handles POST /add-review/{id}. Anonymous requests are sent home
// without writing anything.
func (h *ReviewHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	evID := chi.URLParam(r, "id")
	if !httputil.ValidID(evID) {
		h.notFound(w, r)
		return
	}
	back := "/ev/" + evID

	if err := r.ParseForm(); err != nil {
		httputil.RedirectWithError(w, r, back, "could not read the submitted form")
		return
	}
	rating, err := strconv.Atoi(strings.TrimSpace(r.PostForm.Get("rating")))
	if err != nil {
		httputil.RedirectWithError(w, r, back, "rating must be a whole number between 1 and 5")
		return
	}

	input := domain.ReviewInput{
		EVID:    evID,
		UserID:  identity.Subject,
		Content: r.PostForm.Get("content"),
		Rating:  rating,
	}
	if _, err := h.reviews.CreateReview(r.Context(), input); err != nil {
		if apperrors.HTTPStatus(err) == http.StatusNotFound {
			h.fail(w, r, err)
			return
		}
		httputil.LogError(r, err, h.logger)
		httputil.RedirectWithError(w, r, back, httputil.Message(err))
		return
	}

	http.Redirect(w, r, back, http.StatusFound)
}
