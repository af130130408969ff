// Package mcp exposes the dashboard figures as MCP tools over streamable HTTP.
package mcp

import (
	"encoding/json"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/nav-portal/internal/auth"
	"github.com/bobmcallan/nav-portal/internal/common"
	"github.com/bobmcallan/nav-portal/internal/config"
	"github.com/bobmcallan/nav-portal/internal/models"
)

// Authenticator validates the session carried by a request.
type Authenticator interface {
	FromRequest(r *http.Request) (*models.Session, error)
}

// Handler is the HTTP handler for the MCP endpoint.
// It wraps mcp-go's StreamableHTTPServer and delegates to it.
type Handler struct {
	streamable *mcpserver.StreamableHTTPServer
	server     *mcpserver.MCPServer
	gate       Authenticator
	logger     *common.Logger
}

// NewHandler creates the MCP handler with the dashboard tools registered.
func NewHandler(builder ViewBuilder, bench BenchmarkReader, gate Authenticator, logger *common.Logger) *Handler {
	mcpSrv := mcpserver.NewMCPServer(
		"nav-portal",
		config.GetVersion(),
		mcpserver.WithToolCapabilities(true),
	)
	RegisterTools(mcpSrv, builder, bench)

	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithStateLess(true),
	)

	if logger != nil {
		logger.Info().Int("tools", 4).Msg("MCP handler initialized")
	}

	return &Handler{
		streamable: streamable,
		server:     mcpSrv,
		gate:       gate,
		logger:     logger,
	}
}

// Server returns the underlying MCP server.
func (h *Handler) Server() *mcpserver.MCPServer {
	return h.server
}

// ServeHTTP requires a valid session (bearer token or cookie) and delegates
// to the mcp-go StreamableHTTPServer.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess, err := h.gate.FromRequest(r)
	if err != nil {
		w.Header().Set("WWW-Authenticate", `Bearer realm="nav-portal"`)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{
			"error":             "unauthorized",
			"error_description": "Authentication required to access MCP endpoint",
		})
		return
	}

	h.streamable.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), sess)))
}
