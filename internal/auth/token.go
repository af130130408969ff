package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidToken is returned for tokens that are malformed or carry a bad signature.
var ErrInvalidToken = errors.New("invalid session token")

// tokenHeader is the fixed first segment of every token.
var tokenHeader = base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))

// Claims is the payload of a session token.
type Claims struct {
	SID string `json:"sid"`
	Sub string `json:"sub"`
	Iat int64  `json:"iat"`
	Exp int64  `json:"exp"`
}

// SignToken encodes claims as an HMAC-SHA256 signed header.payload.signature token.
func SignToken(c Claims, secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("sign token: empty secret")
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	sigInput := tokenHeader + "." + base64.RawURLEncoding.EncodeToString(payload)
	return sigInput + "." + base64.RawURLEncoding.EncodeToString(sign(sigInput, secret)), nil
}

// ValidateToken verifies the signature and expiry of token at now.
func ValidateToken(token string, secret []byte, now time.Time) (*Claims, error) {
	parts := strings.SplitN(token, ".", 4)
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 parts, got %d", ErrInvalidToken, len(parts))
	}

	actualSig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: signature encoding", ErrInvalidToken)
	}
	if !hmac.Equal(sign(parts[0]+"."+parts[1], secret), actualSig) {
		return nil, fmt.Errorf("%w: signature mismatch", ErrInvalidToken)
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: payload encoding", ErrInvalidToken)
	}
	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: payload JSON", ErrInvalidToken)
	}

	if claims.SID == "" || claims.Exp == 0 {
		return nil, fmt.Errorf("%w: missing sid or exp", ErrInvalidToken)
	}
	if claims.Exp <= now.Unix() {
		return nil, ErrSessionExpired
	}
	return &claims, nil
}

func sign(input string, secret []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(input))
	return mac.Sum(nil)
}
