package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agonsep/21stCentury/pkg/models"
)

func TestWebMercator(t *testing.T) {
	tests := []struct {
		name string
		view WebMercator
	}{
		{"new york z12", WebMercator{Center: models.LatLng{Lat: 40.7128, Lng: -74.006}, Zoom: 12, Width: 800, Height: 600}},
		{"us center z4", WebMercator{Center: models.DefaultCenter, Zoom: 4, Width: 1024, Height: 768}},
		{"equator z0", WebMercator{Center: models.LatLng{}, Zoom: 0, Width: 256, Height: 256}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			center := tt.view.ToLatLng(Point{X: tt.view.Width / 2, Y: tt.view.Height / 2})
			assert.InDelta(t, tt.view.Center.Lat, center.Lat, 1e-9)
			assert.InDelta(t, tt.view.Center.Lng, center.Lng, 1e-9)

			for _, p := range []Point{{0, 0}, {tt.view.Width, tt.view.Height}, {13, 200}} {
				ll := tt.view.ToLatLng(p)
				back := tt.view.ToPoint(ll)
				assert.InDelta(t, p.X, back.X, 1e-6)
				assert.InDelta(t, p.Y, back.Y, 1e-6)
			}
		})
	}
}

func TestWebMercator_Zoom0Corners(t *testing.T) {
	view := WebMercator{Zoom: 0, Width: 256, Height: 256}

	topLeft := view.ToLatLng(Point{X: 0, Y: 0})
	assert.InDelta(t, -180, topLeft.Lng, 1e-9)
	assert.InDelta(t, maxMercatorLat, topLeft.Lat, 1e-6)

	bottomRight := view.ToLatLng(Point{X: 256, Y: 256})
	assert.InDelta(t, 180, bottomRight.Lng, 1e-9)
	assert.InDelta(t, -maxMercatorLat, bottomRight.Lat, 1e-6)
}

func TestWebMercator_Antimeridian(t *testing.T) {
	tests := []struct {
		name   string
		center models.LatLng
		drop   Point
		east   bool
	}{
		{"east of 180", models.LatLng{Lat: 51, Lng: 179.9}, Point{X: 700, Y: 300}, false},
		{"west of -180", models.LatLng{Lat: -17, Lng: -179.95}, Point{X: 50, Y: 300}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := WebMercator{Center: tt.center, Zoom: 10, Width: 800, Height: 600}

			ll := view.ToLatLng(tt.drop)
			assert.NoError(t, ll.Validate())
			if tt.east {
				assert.Greater(t, ll.Lng, 179.0)
			} else {
				assert.Less(t, ll.Lng, -179.0)
			}

			back := view.ToPoint(ll)
			assert.InDelta(t, tt.drop.X, back.X, 1e-6)
			assert.InDelta(t, tt.drop.Y, back.Y, 1e-6)
		})
	}
}
