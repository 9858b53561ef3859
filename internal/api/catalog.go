package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/agonsep/21stCentury/pkg/geocode"
	"github.com/agonsep/21stCentury/pkg/models"
)

func (s *Server) listIconTypes(w http.ResponseWriter, r *http.Request) {
	writeCached(w, r, models.IconTypes())
}

func (s *Server) listLayers(w http.ResponseWriter, r *http.Request) {
	writeCached(w, r, models.TileConfigs())
}

func (s *Server) geocode(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "Query parameter q is required")
		return
	}

	res, err := s.opts.Geocoder.Search(r.Context(), query)
	switch {
	case errors.Is(err, geocode.ErrNotFound):
		writeError(w, http.StatusNotFound, "Location not found. Please try a different city or zip code.")
	case err != nil:
		log.Warn().Err(err).Str("query", query).Msg("Geocode lookup failed")
		writeError(w, http.StatusBadGateway, "Error searching for location. Please try again.")
	default:
		writeJSON(w, http.StatusOK, res)
	}
}
