package server

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/bobmcallan/nav-portal/internal/auth"
	"github.com/bobmcallan/nav-portal/internal/handlers"
)

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.metricsMiddleware)

	// Login and logout are reachable without a session
	r.HandleFunc("/login", s.app.AuthHandler.ServeLogin).Methods("GET", "HEAD")
	r.HandleFunc("/login", s.app.AuthHandler.HandleLogin).Methods("POST")
	r.HandleFunc("/logout", s.app.AuthHandler.HandleLogout).Methods("POST")

	// Dashboard pages
	r.Handle("/", s.requireSession(s.app.DashboardHandler)).Methods("GET", "HEAD")
	r.Handle("/dashboard", s.requireSession(s.app.DashboardHandler)).Methods("GET", "HEAD")

	// Static files (CSS, JS, images)
	r.PathPrefix("/static/").HandlerFunc(handlers.StaticFileHandler)

	// Public probes
	r.HandleFunc("/api/health", s.app.HealthHandler.ServeHTTP)
	r.HandleFunc("/api/version", s.app.VersionHandler.ServeHTTP)
	r.Handle("/metrics", s.app.Metrics.Handler()).Methods("GET")

	// Authenticated JSON API
	api := r.PathPrefix("/api").Subrouter()
	api.Handle("/dashboard", s.requireSession(http.HandlerFunc(s.app.APIHandler.HandleDashboard)))
	api.Handle("/performance", s.requireSession(http.HandlerFunc(s.app.APIHandler.HandlePerformance)))
	api.Handle("/benchmark", s.requireSession(http.HandlerFunc(s.app.APIHandler.HandleBenchmark)))

	// MCP endpoint (JSON-RPC over HTTP); the handler checks the session itself
	if s.app.MCPHandler != nil {
		r.Handle("/mcp", s.app.MCPHandler)
	}

	// 404 handler for unmatched API routes
	r.PathPrefix("/api/").HandlerFunc(s.handleNotFound)

	return r
}

// requireSession rejects requests without a valid session. Pages redirect to
// the login form; API calls get a JSON 401.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.app.Gate.FromRequest(r)
		if err != nil {
			if strings.HasPrefix(r.URL.Path, "/api/") {
				handlers.WriteError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), sess)))
	})
}

// handleNotFound returns a JSON 404 for unmatched API routes.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	handlers.WriteError(w, http.StatusNotFound, "endpoint not found: "+r.URL.Path)
}
