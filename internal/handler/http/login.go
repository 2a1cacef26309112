package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/EVCatalog/internal/view"
)

// FirebaseWebConfig is handed to the client-side sign-in script.
type FirebaseWebConfig struct {
	ProjectID  string
	APIKey     string
	AuthDomain string
}

// LoginHandler serves the sign-in page. Sign-in itself happens in the
// browser, which stores the resulting ID token in the session cookie.
type LoginHandler struct {
	pages
	firebase FirebaseWebConfig
}

// NewLoginHandler creates a new login HTTP handler.
func NewLoginHandler(firebase FirebaseWebConfig, views view.Renderer, logger *slog.Logger) *LoginHandler {
	return &LoginHandler{
		pages:    pages{views: views, logger: logger},
		firebase: firebase,
	}
}

// Login handles GET /login.
func (h *LoginHandler) Login(w http.ResponseWriter, r *http.Request) {
	data := h.data(r)
	data["FirebaseProjectID"] = h.firebase.ProjectID
	data["FirebaseAPIKey"] = h.firebase.APIKey
	data["FirebaseAuthDomain"] = h.firebase.AuthDomain
	h.render(w, r, http.StatusOK, view.Login, data)
}
