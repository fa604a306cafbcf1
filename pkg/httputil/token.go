package httputil

import (
	"errors"
	"net/http"
	"strings"
)

// GetTokenFromRequest reads the player token from the Authorization header,
// falling back to the "token" query parameter used by websocket clients.
func GetTokenFromRequest(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		if strings.HasPrefix(authHeader, "Bearer ") {
			return strings.TrimPrefix(authHeader, "Bearer "), nil
		}
		return authHeader, nil
	}

	if token := r.URL.Query().Get("token"); token != "" {
		return token, nil
	}

	return "", errors.New("no player token in header or query")
}
