package models

import (
	"encoding/json"
	"fmt"
	"math"
)

// LatLng is a geographic coordinate. On the wire it is encoded as a
// two-element array [lat, lng] to match the map tile widgets that consume it.
type LatLng struct {
	Lat float64
	Lng float64
}

// DefaultCenter is the geographic center of the contiguous United States
var DefaultCenter = LatLng{Lat: 39.8283, Lng: -98.5795}

// MarshalJSON encodes the coordinate as [lat, lng]
func (p LatLng) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Lat, p.Lng})
}

// UnmarshalJSON accepts either [lat, lng] or {"lat": .., "lng": ..}
func (p *LatLng) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("coordinate must have exactly 2 elements, got %d", len(pair))
		}
		p.Lat, p.Lng = pair[0], pair[1]
		return p.check()
	}

	var obj struct {
		Lat *float64 `json:"lat"`
		Lng *float64 `json:"lng"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("coordinate must be [lat, lng] or {lat, lng}: %w", err)
	}
	if obj.Lat == nil || obj.Lng == nil {
		return fmt.Errorf("coordinate requires both lat and lng")
	}
	p.Lat, p.Lng = *obj.Lat, *obj.Lng
	return p.check()
}

// Validate reports a non-numeric or out-of-range coordinate
func (p LatLng) Validate() error {
	return p.check()
}

func (p LatLng) check() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return fmt.Errorf("coordinate must be numeric")
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude %v out of range", p.Lat)
	}
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("longitude %v out of range", p.Lng)
	}
	return nil
}

func (p LatLng) String() string {
	return fmt.Sprintf("%.4f, %.4f", p.Lat, p.Lng)
}
