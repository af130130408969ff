package handlers

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/bobmcallan/nav-portal/internal/auth"
	"github.com/bobmcallan/nav-portal/internal/common"
)

var loginErrors = map[string]string{
	"bad_request":         "The login form could not be read.",
	"missing_credentials": "Enter a username and password.",
	"invalid_credentials": "Invalid username or password.",
	"session_expired":     "Your session has expired. Please sign in again.",
}

// AuthHandler serves the login page and handles login and logout.
type AuthHandler struct {
	logger    *common.Logger
	gate      *auth.Gate
	templates *template.Template
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(logger *common.Logger, gate *auth.Gate) *AuthHandler {
	return &AuthHandler{
		logger:    logger,
		gate:      gate,
		templates: loadTemplates(),
	}
}

// ServeLogin handles GET /login.
func (h *AuthHandler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if _, err := h.gate.FromRequest(r); err == nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	render(w, h.logger, h.templates, "login.html", map[string]interface{}{
		"Page":  "login",
		"Error": loginErrors[r.URL.Query().Get("error")],
		"CSRF":  CSRFToken(r.Context()),
	})
}

// HandleLogin handles POST /login. It checks the form credentials, sets
// the session cookie and redirects to the dashboard.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/login?error=bad_request", http.StatusFound)
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	if username == "" || password == "" {
		http.Redirect(w, r, "/login?error=missing_credentials", http.StatusFound)
		return
	}

	token, sess, err := h.gate.Login(username, password)
	if err != nil {
		http.Redirect(w, r, "/login?error=invalid_credentials", http.StatusFound)
		return
	}

	h.gate.SetCookie(w, r, token, sess)
	http.Redirect(w, r, "/", http.StatusFound)
}

// HandleLogout handles POST /logout. It ends the session, clears the
// cookie and redirects to the login page.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if cookie, err := r.Cookie(auth.CookieName); err == nil && cookie.Value != "" {
		h.gate.Logout(cookie.Value)
	}
	h.gate.ClearCookie(w)

	if h.logger != nil {
		h.logger.Debug().Msg("Logged out")
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}
