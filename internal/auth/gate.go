// Package auth gates the dashboard behind a single configured credential
// pair and expiring, HMAC-signed session cookies.
package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/nav-portal/internal/common"
	"github.com/bobmcallan/nav-portal/internal/config"
	"github.com/bobmcallan/nav-portal/internal/models"
	"github.com/bobmcallan/nav-portal/internal/telemetry"
)

// CookieName is the session cookie set on login.
const CookieName = "nav_session"

// Login outcomes recorded in telemetry.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Gate checks credentials, issues session tokens and validates them per request.
type Gate struct {
	creds    *Credentials
	sessions *SessionStore
	secret   []byte
	logger   *common.Logger
	metrics  *telemetry.Metrics
	now      func() time.Time
}

// NewGate creates a Gate from config. An empty session_secret is replaced
// by a random one, which invalidates cookies on restart.
func NewGate(cfg config.AuthConfig, logger *common.Logger, m *telemetry.Metrics) (*Gate, error) {
	creds, err := NewCredentials(cfg, logger)
	if err != nil {
		return nil, err
	}

	ttl := cfg.SessionTTL.Std()
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}

	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("auth: generate session secret: %w", err)
		}
		if logger != nil {
			logger.Warn().Msg("auth.session_secret not set; using a random secret for this process")
		}
	}

	return &Gate{
		creds:    creds,
		sessions: NewSessionStore(ttl),
		secret:   secret,
		logger:   logger,
		metrics:  m,
		now:      time.Now,
	}, nil
}

// Sessions exposes the session store.
func (g *Gate) Sessions() *SessionStore {
	return g.sessions
}

// Login verifies the credentials and starts a session, returning its signed token.
func (g *Gate) Login(username, password string) (string, *models.Session, error) {
	if err := g.creds.Verify(username, password); err != nil {
		g.metrics.RecordLogin(OutcomeFailure)
		if g.logger != nil {
			g.logger.Warn().Str("username", username).Msg("Login rejected")
		}
		return "", nil, err
	}

	sess := g.sessions.Create(username)
	token, err := SignToken(Claims{
		SID: sess.ID,
		Sub: sess.Username,
		Iat: sess.CreatedAt.Unix(),
		Exp: sess.ExpiresAt.Unix(),
	}, g.secret)
	if err != nil {
		g.sessions.Delete(sess.ID)
		return "", nil, err
	}

	g.metrics.RecordLogin(OutcomeSuccess)
	if g.logger != nil {
		g.logger.Info().Str("username", username).Str("session", sess.ID).Msg("Login succeeded")
	}
	return token, sess, nil
}

// Authenticate validates token and returns the live session it names.
func (g *Gate) Authenticate(token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	claims, err := ValidateToken(token, g.secret, g.now())
	if err != nil {
		return nil, err
	}
	sess, ok := g.sessions.Get(claims.SID)
	if !ok {
		return nil, ErrSessionExpired
	}
	return sess, nil
}

// Logout ends the session named by token. Invalid tokens are ignored.
func (g *Gate) Logout(token string) {
	claims, err := ValidateToken(token, g.secret, g.now())
	if err != nil && !errors.Is(err, ErrSessionExpired) {
		return
	}
	if claims != nil {
		g.sessions.Delete(claims.SID)
	}
}

// FromRequest authenticates r by its bearer token, else its session cookie.
func (g *Gate) FromRequest(r *http.Request) (*models.Session, error) {
	if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return g.Authenticate(strings.TrimSpace(bearer))
	}
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrInvalidToken
	}
	return g.Authenticate(cookie.Value)
}

// SetCookie writes the session cookie for token.
func (g *Gate) SetCookie(w http.ResponseWriter, r *http.Request, token string, sess *models.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func (g *Gate) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

type sessionContextKey struct{}

// WithSession returns a context carrying sess.
func WithSession(ctx context.Context, sess *models.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext returns the session attached by WithSession.
func SessionFromContext(ctx context.Context) (*models.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey{}).(*models.Session)
	return sess, ok && sess != nil
}
