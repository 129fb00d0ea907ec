// internal/app/system/tokens/tokens.go

// Package tokens generates opaque credentials, hashes them for storage, and
// signs/verifies the compact claims carried by self-contained access tokens.
// It does no I/O; persistence lives in store/credentials.
package tokens

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// OpaqueTokenBytes is the entropy of a raw opaque token (well above the
// 20-byte floor unpredictability requires at the token store's scale).
const OpaqueTokenBytes = 32

// TypeAccess is the claims type discriminator for access tokens.
const TypeAccess = "access"

var (
	// ErrMissingSigningKey is a configuration error: the process has no key
	// to sign access tokens with. Startup must fail fast on it.
	ErrMissingSigningKey = errors.New("token signing key is not configured")
	// ErrBadSignature covers malformed, tampered, or wrong-type tokens.
	ErrBadSignature = errors.New("token signature invalid")
	// ErrExpired is returned when the claims verify but the token is past exp.
	ErrExpired = errors.New("token expired")
)

// GenerateOpaque returns a cryptographically random token in URL-safe,
// case-stable form (unpadded base64url).
func GenerateOpaque() (string, error) {
	buf := make([]byte, OpaqueTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Hash returns the SHA-256 digest of a raw token as lowercase hex. Stores
// persist only this value, never the raw token.
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// AccessClaims are the signed claims embedded in an access token. RefreshID
// back-references the refresh token that spawned this one, so revoking the
// refresh token can invalidate its children without rewriting them.
type AccessClaims struct {
	Type      string `json:"typ"`
	RefreshID string `json:"rtid"`
	jwt.RegisteredClaims
}

// Codec signs and verifies access-token claims with a process-wide HMAC key.
type Codec struct {
	key []byte
}

// NewCodec builds a Codec from the configured signing key.
// An empty key is a configuration error.
func NewCodec(key string) (*Codec, error) {
	if key == "" {
		return nil, ErrMissingSigningKey
	}
	return &Codec{key: []byte(key)}, nil
}

// SignAccess produces a compact HS256 token for userID with the given ttl.
// refreshID is the hex ObjectID of the parent refresh token.
func (c *Codec) SignAccess(userID, refreshID string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := AccessClaims{
		Type:      TypeAccess,
		RefreshID: refreshID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
}

// VerifyAccess checks the signature and expiry of a compact access token and
// returns its claims. Expiry is distinguished from tampering only so callers
// can log it; both must be treated as invalid.
func (c *Codec) VerifyAccess(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadSignature
		}
		return c.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrBadSignature
	}
	if claims.Type != TypeAccess {
		return nil, ErrBadSignature
	}
	return claims, nil
}
