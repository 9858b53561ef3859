package editor

import (
	"math"

	"github.com/agonsep/21stCentury/pkg/models"
)

// Point is a position on the rendered map surface in pixels, measured from
// the top-left corner of the viewport
type Point struct {
	X float64
	Y float64
}

// Projector converts viewport pixels to geographic coordinates
type Projector interface {
	ToLatLng(p Point) models.LatLng
}

const (
	tileSize = 256
	// maxMercatorLat is the latitude where the square Web Mercator world ends
	maxMercatorLat = 85.05112878
)

// WebMercator is the projection used by slippy-map tile servers, for a
// viewport of Width x Height pixels centered on Center at Zoom
type WebMercator struct {
	Center models.LatLng
	Zoom   float64
	Width  float64
	Height float64
}

func (w WebMercator) worldSize() float64 {
	return tileSize * math.Pow(2, w.Zoom)
}

func (w WebMercator) project(ll models.LatLng) (x, y float64) {
	size := w.worldSize()
	lat := math.Max(-maxMercatorLat, math.Min(maxMercatorLat, ll.Lat)) * math.Pi / 180
	x = (ll.Lng + 180) / 360 * size
	y = (1 - math.Log(math.Tan(lat)+1/math.Cos(lat))/math.Pi) / 2 * size
	return x, y
}

// ToLatLng returns the coordinate under viewport pixel p
func (w WebMercator) ToLatLng(p Point) models.LatLng {
	size := w.worldSize()
	cx, cy := w.project(w.Center)
	wx := cx + p.X - w.Width/2
	wy := cy + p.Y - w.Height/2

	lng := wrapLng(wx/size*360 - 180)
	n := math.Pi - 2*math.Pi*wy/size
	lat := math.Atan(math.Sinh(n)) * 180 / math.Pi
	return models.LatLng{Lat: lat, Lng: lng}
}

// wrapLng folds a longitude from a repeated world copy back into [-180, 180]
func wrapLng(lng float64) float64 {
	if lng >= -180 && lng <= 180 {
		return lng
	}
	lng = math.Mod(lng+180, 360)
	if lng < 0 {
		lng += 360
	}
	return lng - 180
}

// ToPoint returns the viewport pixel of ll, using the world copy nearest to
// the center
func (w WebMercator) ToPoint(ll models.LatLng) Point {
	size := w.worldSize()
	cx, cy := w.project(w.Center)
	x, y := w.project(ll)

	dx := x - cx
	if dx > size/2 {
		dx -= size
	} else if dx < -size/2 {
		dx += size
	}
	return Point{X: dx + w.Width/2, Y: y - cy + w.Height/2}
}
