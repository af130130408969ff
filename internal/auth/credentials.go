package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/bobmcallan/nav-portal/internal/common"
	"github.com/bobmcallan/nav-portal/internal/config"
)

var (
	// ErrInvalidCredentials is returned when the username or password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionExpired is returned for expired tokens and sessions.
	ErrSessionExpired = errors.New("session expired")
	// ErrNoCredentials is returned when neither password nor password_hash is configured.
	ErrNoCredentials = errors.New("auth: no password configured")
)

// Credentials is the single configured username and its bcrypt hash.
type Credentials struct {
	username string
	hash     []byte
}

// NewCredentials builds Credentials from config. A plaintext password is
// hashed here and logged as a warning; password_hash takes precedence.
func NewCredentials(cfg config.AuthConfig, logger *common.Logger) (*Credentials, error) {
	if cfg.Username == "" {
		return nil, errors.New("auth: username is required")
	}

	if cfg.PasswordHash != "" {
		if _, err := bcrypt.Cost([]byte(cfg.PasswordHash)); err != nil {
			return nil, fmt.Errorf("auth: invalid password_hash: %w", err)
		}
		return &Credentials{username: cfg.Username, hash: []byte(cfg.PasswordHash)}, nil
	}

	if cfg.Password == "" {
		return nil, ErrNoCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	if logger != nil {
		logger.Warn().Str("username", cfg.Username).Msg("Plaintext password in config; set auth.password_hash instead")
	}
	return &Credentials{username: cfg.Username, hash: hash}, nil
}

// Username returns the configured username.
func (c *Credentials) Username() string {
	return c.username
}

// Verify checks username and password; both are always compared.
func (c *Credentials) Verify(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(c.hash, []byte(password))
	if !userOK || passErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}
