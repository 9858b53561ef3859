package api

import (
	"net/http"
	"time"
)

// health always answers 200; it does not probe the store
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": s.now().UTC().Format(time.RFC3339Nano),
	})
}
