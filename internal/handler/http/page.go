package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/utafrali/EVCatalog/internal/domain"
	"github.com/utafrali/EVCatalog/internal/view"
	apperrors "github.com/utafrali/EVCatalog/pkg/errors"
	"github.com/utafrali/EVCatalog/pkg/httputil"
)

// pages renders views with the viewer attached.
type pages struct {
	views  view.Renderer
	logger *slog.Logger
}

// data starts a view model with the viewer and any ?error= message.
func (p pages) data(r *http.Request) map[string]any {
	data := map[string]any{}
	if id := IdentityFromContext(r.Context()); id != nil {
		data["Identity"] = id
	}
	if u := UserFromContext(r.Context()); u != nil {
		data["User"] = u
	}
	if msg := r.URL.Query().Get("error"); msg != "" {
		data["Error"] = msg
	}
	return data
}

func (p pages) render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	if err := p.views.Render(w, status, name, data); err != nil {
		httputil.LogError(r, err, p.logger)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (p pages) notFound(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusNotFound, view.NotFound, p.data(r))
}

// fail renders the view that matches err: the 404 page for NotFound, the
// error page with err's status otherwise.
func (p pages) fail(w http.ResponseWriter, r *http.Request, err error) {
	httputil.LogError(r, err, p.logger)
	if errors.Is(err, apperrors.ErrNotFound) {
		p.notFound(w, r)
		return
	}
	data := p.data(r)
	data["Error"] = httputil.Message(err)
	p.render(w, r, apperrors.HTTPStatus(err), view.Error, data)
}

// Panic renders the 500 page. It is the Recovery middleware's onPanic hook.
func (p pages) Panic(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusInternalServerError, view.Error, map[string]any{})
}

// evFormFields maps form names to the fields of domain.EVInput.
var evFormFields = []string{"Name", "Manufacturer", "Year", "Battery_size", "Range_WLTP", "Cost", "Power"}

// parseEVForm reads every EV attribute from a submitted form. A missing or
// non-numeric number is an InvalidInput error naming the field.
func parseEVForm(r *http.Request) (domain.EVInput, error) {
	var in domain.EVInput
	if err := r.ParseForm(); err != nil {
		return in, apperrors.InvalidInput("could not read the submitted form")
	}

	for _, field := range evFormFields {
		raw := strings.TrimSpace(r.PostForm.Get(field))
		if raw == "" {
			return in, apperrors.InvalidInput(field + " is required")
		}

		var err error
		switch field {
		case "Name":
			in.Name = raw
		case "Manufacturer":
			in.Manufacturer = raw
		case "Year":
			in.Year, err = strconv.Atoi(raw)
		case "Battery_size":
			in.BatterySize, err = strconv.ParseFloat(raw, 64)
		case "Range_WLTP":
			in.RangeWLTP, err = strconv.ParseFloat(raw, 64)
		case "Cost":
			in.Cost, err = strconv.ParseFloat(raw, 64)
		case "Power":
			in.Power, err = strconv.ParseFloat(raw, 64)
		}
		if err != nil {
			return in, apperrors.InvalidInput(field + " must be a number")
		}
	}
	return in, nil
}

// formMessage is the ?error= text for a failed EV write.
func formMessage(err error) string {
	if errors.Is(err, apperrors.ErrAlreadyExists) {
		return "EV name already exists"
	}
	return httputil.Message(err)
}
