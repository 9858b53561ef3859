package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/agonsep/21stCentury/internal/metrics"
	"github.com/agonsep/21stCentury/pkg/auth"
)

type tokenRequest struct {
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// issueToken exchanges the admin password for a bearer token. The token is
// also set as an HttpOnly cookie for browser clients.
func (s *Server) issueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err, "", "Failed to issue token")
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "Password is required")
		return
	}

	if !s.passwords.Verify(req.Password) {
		metrics.AuthAttemptsTotal.WithLabelValues("denied").Inc()
		log.Warn().Str("remote", r.RemoteAddr).Msg("Rejected admin login")
		writeError(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	token, expiresAt, err := s.jwt.GenerateAdminToken(s.opts.AdminSubject)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("error").Inc()
		handleError(w, r, err, "", "Failed to issue token")
		return
	}
	metrics.AuthAttemptsTotal.WithLabelValues("granted").Inc()

	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, tokenResponse{Token: token, ExpiresAt: expiresAt})
}

func (s *Server) verifyToken(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":     true,
		"subject":   claims.Subject,
		"expiresAt": claims.ExpiresAt,
	})
}
