package service

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
)

// validateCredentials compares in constant time.
func (s *Server) validateCredentials(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.config.AuthUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.config.AuthPassword)) == 1
	return userOK && passOK
}

// requireAuth is middleware that enforces HTTP basic auth when enabled.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.config.AuthEnabled {
			next.ServeHTTP(w, r)
			return
		}

		username, password, ok := r.BasicAuth()
		if !ok {
			slog.WarnContext(r.Context(), "Missing credentials", "path", r.URL.Path)
			w.Header().Set("WWW-Authenticate", `Basic realm="memorylove"`)
			writeJSONError(w, http.StatusUnauthorized, "missing credentials")
			return
		}
		if !s.validateCredentials(username, password) {
			slog.WarnContext(r.Context(), "Invalid credentials", "path", r.URL.Path, "username", username)
			w.Header().Set("WWW-Authenticate", `Basic realm="memorylove"`)
			writeJSONError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		next.ServeHTTP(w, r)
	})
}
