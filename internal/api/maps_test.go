package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agonsep/21stCentury/pkg/auth"
	"github.com/agonsep/21stCentury/pkg/geocode"
	"github.com/agonsep/21stCentury/pkg/models"
)

type mapResponse struct {
	Message string     `json:"message"`
	Map     models.Map `json:"map"`
}

func sampleMapBody() map[string]any {
	return map[string]any{
		"name":   "  Depot A  ",
		"center": []float64{40.7128, -74.006},
		"layer":  "street",
		"icons": []models.Icon{
			{ID: "i-1", Type: "solar", Position: models.LatLng{Lat: 40.71, Lng: -74.0}, Name: "Solar PV 1"},
			{ID: "i-2", Type: "battery", Position: models.LatLng{Lat: 40.72, Lng: -74.01}, Name: "Battery Storage 1"},
		},
		"connections": []models.Connection{
			{ID: "c-1", From: "i-1", To: "i-2", FromName: "stale", ToName: "stale"},
		},
	}
}

func TestMaps_RoundTrip(t *testing.T) {
	env := setupTestServer(t)

	rec := env.do(t, http.MethodPost, "/api/maps", sampleMapBody(), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	saved := decode[mapResponse](t, rec)
	assert.Equal(t, "Map saved successfully", saved.Message)
	assert.Equal(t, "Depot A", saved.Map.Name)
	assert.Equal(t, models.LayerStreet, saved.Map.Layer)

	require.Len(t, saved.Map.Connections, 1)
	conn := saved.Map.Connections[0]
	assert.Equal(t, "Solar PV 1", conn.FromName)
	assert.Equal(t, "Battery Storage 1", conn.ToName)
	assert.Equal(t, models.LatLng{Lat: 40.72, Lng: -74.01}, conn.ToPos)

	rec = env.do(t, http.MethodGet, "/api/maps/"+strconv.FormatInt(saved.Map.ID, 10), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	loaded := decode[models.Map](t, rec)
	assert.Equal(t, saved.Map.Icons, loaded.Icons)
	assert.Equal(t, saved.Map.Connections, loaded.Connections)
	assert.Equal(t, models.LatLng{Lat: 40.7128, Lng: -74.006}, loaded.Center)

	rec = env.do(t, http.MethodGet, "/api/maps", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	summaries := decode[[]models.MapSummary](t, rec)
	require.Len(t, summaries, 1)
	assert.Equal(t, 2, summaries[0].IconCount)
	assert.Equal(t, 1, summaries[0].ConnectionCount)
}

func TestMaps_CreateValidation(t *testing.T) {
	env := setupTestServer(t)

	tests := []struct {
		name    string
		mutate  func(body map[string]any)
		wantMsg string
	}{
		{"missing name", func(b map[string]any) { delete(b, "name") }, "Name and center are required"},
		{"blank name", func(b map[string]any) { b["name"] = "   " }, "Name and center are required"},
		{"missing center", func(b map[string]any) { delete(b, "center") }, "Name and center are required"},
		{"unknown layer", func(b map[string]any) { b["layer"] = "terrain" }, "unknown layer"},
		{"dangling connection", func(b map[string]any) {
			b["connections"] = []models.Connection{{ID: "c-1", From: "i-1", To: "ghost"}}
		}, "ghost"},
		{"cable icon", func(b map[string]any) {
			b["icons"] = []models.Icon{{ID: "i-1", Type: models.CableIconTypeID, Name: "Cable 1"}}
			b["connections"] = []models.Connection{}
		}, "cable"},
		{"out of range center", func(b map[string]any) { b["center"] = []float64{91, 0} }, "latitude"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := sampleMapBody()
			tt.mutate(body)

			rec := env.do(t, http.MethodPost, "/api/maps", body, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, errorMessage(t, rec), tt.wantMsg)
		})
	}

	t.Run("defaults", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/maps", map[string]any{
			"name":   "Empty",
			"center": map[string]float64{"lat": 1, "lng": 2},
		}, "")
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		saved := decode[mapResponse](t, rec)
		assert.Equal(t, models.DefaultLayer, saved.Map.Layer)
		assert.NotNil(t, saved.Map.Icons)
		assert.NotNil(t, saved.Map.Connections)
	})
}

func TestMaps_UpdateAndDelete(t *testing.T) {
	env := setupTestServer(t)

	rec := env.do(t, http.MethodPut, "/api/maps/77", map[string]any{"name": "x"}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Map not found", errorMessage(t, rec))

	rec = env.do(t, http.MethodPost, "/api/maps", sampleMapBody(), "")
	require.Equal(t, http.StatusCreated, rec.Code)
	saved := decode[mapResponse](t, rec)
	path := "/api/maps/" + strconv.FormatInt(saved.Map.ID, 10)

	// moving an icon re-derives the connection snapshot
	icons := saved.Map.Icons
	icons[0].Position = models.LatLng{Lat: 41, Lng: -75}
	rec = env.do(t, http.MethodPut, path, map[string]any{"icons": icons}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[mapResponse](t, rec)
	assert.Equal(t, "Map updated successfully", updated.Message)
	assert.Equal(t, "Depot A", updated.Map.Name, "unset fields are kept")
	assert.Equal(t, models.LatLng{Lat: 41, Lng: -75}, updated.Map.Connections[0].FromPos)
	assert.Equal(t, models.LatLng{Lat: 40.72, Lng: -74.01}, updated.Map.Connections[0].ToPos)

	// dropping an icon that a connection still references is rejected
	rec = env.do(t, http.MethodPut, path, map[string]any{"icons": icons[1:]}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, path, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Map deleted successfully", decode[map[string]any](t, rec)["message"])

	rec = env.do(t, http.MethodDelete, path, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type fakeGeocoder map[string]models.LatLng

func (f fakeGeocoder) Search(_ context.Context, query string) (*geocode.Result, error) {
	if query == "down" {
		return nil, errors.New("connection refused")
	}
	pos, ok := f[query]
	if !ok {
		return nil, geocode.ErrNotFound
	}
	return &geocode.Result{Position: pos, DisplayName: query}, nil
}

func TestGeocode(t *testing.T) {
	env := setupTestServer(t)
	rec := env.do(t, http.MethodGet, "/api/geocode?q=denver", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "route is absent without a geocoder")

	jwtManager := auth.NewJWTManager(testSecret, "catalog", time.Hour)
	passwords, err := auth.NewPasswordVerifier(testPassword, "")
	require.NoError(t, err)
	srv := NewServer(env.db, jwtManager, passwords, Options{
		Geocoder: fakeGeocoder{"Denver": {Lat: 39.74, Lng: -104.99}},
	})
	env.handler = srv.Handler()

	rec = env.do(t, http.MethodGet, "/api/geocode?q=Denver", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.LatLng{Lat: 39.74, Lng: -104.99}, decode[geocode.Result](t, rec).Position)

	rec = env.do(t, http.MethodGet, "/api/geocode?q=Atlantis", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/geocode?q=down", nil, "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/geocode", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
