package auth

import (
	"fmt"
	"net/http"
	"strings"
)

// TokenCookieName is the cookie browsers carry the admin token in
const TokenCookieName = "auth_token"

// ExtractTokenFromAuthHeader extracts the token from an Authorization header
// of the form "Bearer {token}"
func ExtractTokenFromAuthHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", fmt.Errorf("authorization header is empty")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", fmt.Errorf("invalid authorization header format")
	}

	return strings.TrimSpace(parts[1]), nil
}

// ExtractTokenFromRequest tries the Authorization header first (CLI/API
// callers), then falls back to the auth cookie (browser callers).
func ExtractTokenFromRequest(r *http.Request) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, err := ExtractTokenFromAuthHeader(h); err == nil {
			return token, nil
		}
	}

	if c, err := r.Cookie(TokenCookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}

	return "", fmt.Errorf("no authentication token found in header or cookie")
}
