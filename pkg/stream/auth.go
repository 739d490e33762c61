package stream

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the claims of an operation token.
type Claims struct {
	// Collections restricts the token to these targets. Empty allows all.
	Collections []string `json:"collections,omitempty"`
	jwt.RegisteredClaims
}

// Allows reports whether the claims permit operations on target.
func (c *Claims) Allows(target string) bool {
	if len(c.Collections) == 0 {
		return true
	}
	for _, name := range c.Collections {
		if name == target {
			return true
		}
	}
	return false
}

// Authenticator validates HS256 operation tokens.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator creates an Authenticator for secret.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Verify parses and validates a token.
func (a *Authenticator) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return claims, nil
}

// Issue signs a token for subject valid for ttl. A zero ttl never expires.
func (a *Authenticator) Issue(subject string, ttl time.Duration, collections ...string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Collections: collections,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subject,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// requestToken extracts a bearer token from the Authorization header or
// the token query parameter.
func requestToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
