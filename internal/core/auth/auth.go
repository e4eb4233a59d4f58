// Package auth provides bearer-token authentication for the HTTP API.
//
// The token is configured exclusively through the environment
// (RULEKIT_API_TOKEN); an empty token disables authentication so local
// development and tests run open. Health checks bypass authentication
// so load balancers never need credentials.
package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrMissingToken indicates the Authorization header was absent or
	// not a bearer scheme.
	ErrMissingToken = errors.New("missing bearer token")

	// ErrInvalidToken indicates the presented token did not match.
	ErrInvalidToken = errors.New("invalid bearer token")
)

// exemptPaths never require authentication.
var exemptPaths = map[string]bool{
	"/healthz": true,
}

// Middleware returns an HTTP middleware that enforces a static bearer
// token. A constant-time comparison prevents timing probes against the
// token value. An empty expected token disables the check entirely.
func Middleware(token string) func(http.Handler) http.Handler {
	expected := []byte(token)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(expected) == 0 || exemptPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			presented, err := bearerToken(r)
			if err != nil {
				unauthorized(w, err)
				return
			}

			if subtle.ConstantTimeCompare([]byte(presented), expected) != 1 {
				unauthorized(w, ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from an Authorization: Bearer header.
// The scheme comparison is case-insensitive per RFC 7235.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingToken
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMissingToken
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

func unauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="rulekit"`)
	http.Error(w, err.Error(), http.StatusUnauthorized)
}
