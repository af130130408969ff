package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/bobmcallan/nav-portal/internal/common"
	"github.com/bobmcallan/nav-portal/internal/config"
)

func testAuthConfig(t *testing.T) config.AuthConfig {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return config.AuthConfig{
		Username:      "admin",
		PasswordHash:  string(hash),
		SessionSecret: "test-secret",
		SessionTTL:    config.Duration(time.Hour),
	}
}

func newTestGate(t *testing.T) *Gate {
	t.Helper()
	g, err := NewGate(testAuthConfig(t), common.NewSilentLogger(), nil)
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	return g
}

func TestSessionStore_CreateAndGet(t *testing.T) {
	store := NewSessionStore(time.Hour)
	sess := store.Create("admin")

	if sess.ID == "" {
		t.Fatal("expected session id")
	}
	got, ok := store.Get(sess.ID)
	if !ok {
		t.Fatal("expected to find session")
	}
	if got.Username != "admin" {
		t.Errorf("expected admin, got %s", got.Username)
	}
	if !got.ExpiresAt.Equal(got.CreatedAt.Add(time.Hour)) {
		t.Errorf("expected expiry one hour after creation, got %v", got.ExpiresAt.Sub(got.CreatedAt))
	}
}

func TestSessionStore_ExpiredSessionIsSweptOnGet(t *testing.T) {
	store := NewSessionStore(time.Minute)
	now := time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	sess := store.Create("admin")

	now = now.Add(2 * time.Minute)
	if _, ok := store.Get(sess.ID); ok {
		t.Error("expected expired session to not be returned")
	}
	if store.Len() != 0 {
		t.Errorf("expected expired session to be removed, have %d", store.Len())
	}
}

func TestSessionStore_Cleanup(t *testing.T) {
	store := NewSessionStore(time.Minute)
	now := time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	store.Create("a")
	store.Create("b")

	now = now.Add(30 * time.Second)
	store.Create("c")

	now = now.Add(45 * time.Second)
	if n := store.Cleanup(); n != 2 {
		t.Errorf("expected 2 sessions removed, got %d", n)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 session left, got %d", store.Len())
	}
}

func TestSessionStore_Delete(t *testing.T) {
	store := NewSessionStore(time.Hour)
	sess := store.Create("admin")
	store.Delete(sess.ID)
	if _, ok := store.Get(sess.ID); ok {
		t.Error("expected deleted session to not be found")
	}
}

func TestSessionStore_ConcurrentAccess(t *testing.T) {
	store := NewSessionStore(time.Hour)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess := store.Create("admin")
			store.Get(sess.ID)
			store.Delete(sess.ID)
		}()
	}
	wg.Wait()
	if store.Len() != 0 {
		t.Errorf("expected empty store, got %d", store.Len())
	}
}

func TestToken_RoundTrip(t *testing.T) {
	secret := []byte("k")
	now := time.Unix(1_700_000_000, 0)
	token, err := SignToken(Claims{SID: "s1", Sub: "admin", Iat: now.Unix(), Exp: now.Add(time.Hour).Unix()}, secret)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("expected 3 segments, got %q", token)
	}

	claims, err := ValidateToken(token, secret, now)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.SID != "s1" || claims.Sub != "admin" {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestToken_Rejections(t *testing.T) {
	secret := []byte("k")
	now := time.Unix(1_700_000_000, 0)
	valid, _ := SignToken(Claims{SID: "s1", Exp: now.Add(time.Hour).Unix()}, secret)
	expired, _ := SignToken(Claims{SID: "s1", Exp: now.Add(-time.Second).Unix()}, secret)
	noSID, _ := SignToken(Claims{Exp: now.Add(time.Hour).Unix()}, secret)

	tests := []struct {
		name   string
		token  string
		secret []byte
		want   error
	}{
		{"malformed", "abc.def", secret, ErrInvalidToken},
		{"wrong secret", valid, []byte("other"), ErrInvalidToken},
		{"tampered payload", tamper(valid), secret, ErrInvalidToken},
		{"expired", expired, secret, ErrSessionExpired},
		{"missing sid", noSID, secret, ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateToken(tt.token, tt.secret, now)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func tamper(token string) string {
	parts := strings.Split(token, ".")
	parts[1] = parts[1] + "x"
	return strings.Join(parts, ".")
}

func TestSignToken_EmptySecret(t *testing.T) {
	if _, err := SignToken(Claims{SID: "s"}, nil); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestCredentials_PlaintextIsHashed(t *testing.T) {
	creds, err := NewCredentials(config.AuthConfig{Username: "admin", Password: "pw"}, common.NewSilentLogger())
	if err != nil {
		t.Fatalf("NewCredentials: %v", err)
	}
	if string(creds.hash) == "pw" {
		t.Fatal("expected password to be hashed")
	}
	if err := creds.Verify("admin", "pw"); err != nil {
		t.Errorf("expected valid credentials, got %v", err)
	}
}

func TestCredentials_Verify(t *testing.T) {
	creds, err := NewCredentials(testAuthConfig(t), nil)
	if err != nil {
		t.Fatalf("NewCredentials: %v", err)
	}
	if err := creds.Verify("admin", "s3cret"); err != nil {
		t.Errorf("expected success, got %v", err)
	}
	if err := creds.Verify("admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if err := creds.Verify("root", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong username, got %v", err)
	}
}

func TestCredentials_ConfigErrors(t *testing.T) {
	if _, err := NewCredentials(config.AuthConfig{Username: "admin"}, nil); !errors.Is(err, ErrNoCredentials) {
		t.Errorf("expected ErrNoCredentials, got %v", err)
	}
	if _, err := NewCredentials(config.AuthConfig{Password: "pw"}, nil); err == nil {
		t.Error("expected error for missing username")
	}
	if _, err := NewCredentials(config.AuthConfig{Username: "admin", PasswordHash: "plain"}, nil); err == nil {
		t.Error("expected error for invalid hash")
	}
}

func TestGate_LoginAuthenticateLogout(t *testing.T) {
	g := newTestGate(t)

	token, sess, err := g.Login("admin", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	got, err := g.Authenticate(token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != sess.ID {
		t.Errorf("expected session %s, got %s", sess.ID, got.ID)
	}

	g.Logout(token)
	if _, err := g.Authenticate(token); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired after logout, got %v", err)
	}
}

func TestGate_LoginRejected(t *testing.T) {
	g := newTestGate(t)
	if _, _, err := g.Login("admin", "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if g.Sessions().Len() != 0 {
		t.Error("expected no session for a rejected login")
	}
}

func TestGate_ExpiredToken(t *testing.T) {
	g := newTestGate(t)
	token, _, err := g.Login("admin", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	g.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := g.Authenticate(token); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired, got %v", err)
	}
}

func TestGate_RandomSecretWhenUnset(t *testing.T) {
	cfg := testAuthConfig(t)
	cfg.SessionSecret = ""
	g, err := NewGate(cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	if len(g.secret) != 32 {
		t.Errorf("expected 32-byte secret, got %d", len(g.secret))
	}
}

func TestGate_Cookies(t *testing.T) {
	g := newTestGate(t)
	token, sess, _ := g.Login("admin", "s3cret")

	rec := httptest.NewRecorder()
	g.SetCookie(rec, httptest.NewRequest(http.MethodPost, "/login", nil), token, sess)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != CookieName || !c.HttpOnly || c.Path != "/" {
		t.Errorf("unexpected cookie %+v", c)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	if _, err := g.FromRequest(req); err != nil {
		t.Errorf("expected cookie to authenticate, got %v", err)
	}

	rec = httptest.NewRecorder()
	g.ClearCookie(rec)
	if got := rec.Result().Cookies()[0]; got.MaxAge != -1 {
		t.Errorf("expected MaxAge -1, got %d", got.MaxAge)
	}
}

func TestGate_FromRequestBearer(t *testing.T) {
	g := newTestGate(t)
	token, _, _ := g.Login("admin", "s3cret")

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if _, err := g.FromRequest(req); err != nil {
		t.Errorf("expected bearer token to authenticate, got %v", err)
	}

	req.Header.Set("Authorization", "Bearer junk")
	if _, err := g.FromRequest(req); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestGate_FromRequestWithoutCookie(t *testing.T) {
	g := newTestGate(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := g.FromRequest(req); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSessionContext(t *testing.T) {
	g := newTestGate(t)
	_, sess, _ := g.Login("admin", "s3cret")

	ctx := WithSession(httptest.NewRequest(http.MethodGet, "/", nil).Context(), sess)
	got, ok := SessionFromContext(ctx)
	if !ok || got.ID != sess.ID {
		t.Errorf("expected session from context, got %v %v", got, ok)
	}
}
