package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/agonsep/21stCentury/internal/database"
	"github.com/agonsep/21stCentury/pkg/models"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warn().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeCached writes a 200 JSON body with a weak ETag derived from its
// content and answers 304 when the client already holds that version
func writeCached(w http.ResponseWriter, r *http.Request, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
		writeError(w, http.StatusInternalServerError, "Failed to encode response")
		return
	}

	etag := fmt.Sprintf(`W/"%016x"`, xxhash.Sum64(body))
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")

	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(append(body, '\n'))
}

func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == strings.TrimPrefix(etag, "W/") {
			return true
		}
	}
	return false
}

// decodeJSON reads a size-limited JSON body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return models.NewValidationError(fmt.Sprintf("Invalid JSON body: %v", err))
	}
	return nil
}

// pathID parses the {id} route variable
func pathID(r *http.Request, resource string) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, models.NewValidationError(fmt.Sprintf("Invalid %s id %q", resource, raw), "id")
	}
	return id, nil
}

// handleError maps validation, not-found and duplicate errors to client
// statuses. Anything else is logged and reported as a generic 500 with
// fallback as the message.
func handleError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg, fallback string) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, database.ErrDuplicateEmail):
		writeError(w, http.StatusBadRequest, "Email already exists")
	default:
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg(fallback)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
