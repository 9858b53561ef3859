package api

import (
	"net/http"
	"strings"

	"github.com/agonsep/21stCentury/internal/metrics"
	"github.com/agonsep/21stCentury/pkg/models"
)

// mapInput is the create/update body. Nil fields are left untouched by an
// update.
type mapInput struct {
	Name        *string              `json:"name"`
	Center      *models.LatLng       `json:"center"`
	Layer       *string              `json:"layer"`
	Icons       *[]models.Icon       `json:"icons"`
	Connections *[]models.Connection `json:"connections"`
}

// applyTo merges the input into m and validates the merged scene
func (in *mapInput) applyTo(m *models.Map) error {
	if in.Name != nil {
		m.Name = strings.TrimSpace(*in.Name)
	}
	if in.Center != nil {
		m.Center = *in.Center
	}
	if in.Layer != nil {
		layer, err := models.ParseLayer(strings.TrimSpace(*in.Layer))
		if err != nil {
			return models.NewValidationError(err.Error(), "layer")
		}
		m.Layer = layer
	}
	if in.Icons != nil {
		m.Icons = *in.Icons
	}
	if in.Connections != nil {
		m.Connections = *in.Connections
	}

	if m.Name == "" {
		return models.NewValidationError("Name must not be empty", "name")
	}
	if err := m.Center.Validate(); err != nil {
		return models.NewValidationError("Invalid center: "+err.Error(), "center")
	}
	if m.Layer == "" {
		m.Layer = models.DefaultLayer
	}
	if m.Icons == nil {
		m.Icons = []models.Icon{}
	}
	if m.Connections == nil {
		m.Connections = []models.Connection{}
	}
	if err := models.ValidateScene(m.Icons, m.Connections); err != nil {
		return err
	}
	m.Connections = models.ResolveConnections(m.Icons, m.Connections)
	return nil
}

func (s *Server) listMaps(w http.ResponseWriter, r *http.Request) {
	maps, err := s.db.Maps.List(r.Context())
	if err != nil {
		handleError(w, r, err, "", "Failed to fetch maps")
		return
	}
	if maps == nil {
		maps = []*models.MapSummary{}
	}
	writeJSON(w, http.StatusOK, maps)
}

func (s *Server) getMap(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "map")
	if err != nil {
		handleError(w, r, err, "", "")
		return
	}

	m, err := s.db.Maps.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, err, "Map not found", "Failed to fetch map")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) createMap(w http.ResponseWriter, r *http.Request) {
	var in mapInput
	if err := decodeJSON(w, r, &in); err != nil {
		handleError(w, r, err, "", "")
		return
	}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" || in.Center == nil {
		writeError(w, http.StatusBadRequest, "Name and center are required")
		return
	}

	m := &models.Map{}
	if err := in.applyTo(m); err != nil {
		handleError(w, r, err, "", "")
		return
	}

	err := s.db.Maps.Create(r.Context(), m)
	metrics.RecordMutation("map", "create", err)
	if err != nil {
		handleError(w, r, err, "", "Failed to save map")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Map saved successfully",
		"map":     m,
	})
}

func (s *Server) updateMap(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "map")
	if err != nil {
		handleError(w, r, err, "", "")
		return
	}

	var in mapInput
	if err := decodeJSON(w, r, &in); err != nil {
		handleError(w, r, err, "", "")
		return
	}

	m, err := s.db.Maps.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, err, "Map not found", "Failed to fetch map")
		return
	}
	if err := in.applyTo(m); err != nil {
		handleError(w, r, err, "", "")
		return
	}

	err = s.db.Maps.Update(r.Context(), m)
	metrics.RecordMutation("map", "update", err)
	if err != nil {
		handleError(w, r, err, "Map not found", "Failed to update map")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Map updated successfully",
		"map":     m,
	})
}

func (s *Server) deleteMap(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "map")
	if err != nil {
		handleError(w, r, err, "", "")
		return
	}

	err = s.db.Maps.Delete(r.Context(), id)
	metrics.RecordMutation("map", "delete", err)
	if err != nil {
		handleError(w, r, err, "Map not found", "Failed to delete map")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Map deleted successfully",
		"id":      id,
	})
}
