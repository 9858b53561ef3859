package models

import (
	"fmt"
	"time"
)

// Layer selects the tile imagery a map is rendered with
type Layer string

const (
	LayerSatellite Layer = "satellite"
	LayerStreet    Layer = "street"
	LayerHybrid    Layer = "hybrid"
)

// DefaultLayer is used when a map is saved without a layer
const DefaultLayer = LayerSatellite

// ParseLayer validates a layer name. An empty name yields DefaultLayer.
func ParseLayer(s string) (Layer, error) {
	switch Layer(s) {
	case "":
		return DefaultLayer, nil
	case LayerSatellite, LayerStreet, LayerHybrid:
		return Layer(s), nil
	default:
		return "", fmt.Errorf("unknown layer %q (must be satellite, street or hybrid)", s)
	}
}

// TileConfig describes the tile servers backing a layer
type TileConfig struct {
	Layer       Layer  `json:"layer"`
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
	OverlayURL  string `json:"overlayUrl,omitempty"`
}

const (
	esriImageryURL  = "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}"
	esriPlacesURL   = "https://server.arcgisonline.com/ArcGIS/rest/services/Reference/World_Boundaries_and_Places/MapServer/tile/{z}/{y}/{x}"
	esriAttribution = "&copy; Esri &mdash; Source: Esri, i-cubed, USDA, USGS, AEX, GeoEye, Getmapping, Aerogrid, IGN, IGP, UPR-EGP, and the GIS User Community"
	osmStreetURL    = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	osmAttribution  = "&copy; OpenStreetMap contributors"
)

// TileConfigs returns the tile configuration of every layer
func TileConfigs() []TileConfig {
	return []TileConfig{
		{Layer: LayerSatellite, URL: esriImageryURL, Attribution: esriAttribution},
		{Layer: LayerStreet, URL: osmStreetURL, Attribution: osmAttribution},
		{Layer: LayerHybrid, URL: esriImageryURL, Attribution: esriAttribution, OverlayURL: esriPlacesURL},
	}
}

// Icon is a placed infrastructure marker embedded in a Map
type Icon struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Position LatLng `json:"position"`
	Name     string `json:"name"`
}

// Connection is a directed cable between two icons. The position and name
// fields are snapshots of the endpoints; ResolveConnections recomputes them
// from the icon list.
type Connection struct {
	ID       string `json:"id"`
	From     string `json:"from"`
	To       string `json:"to"`
	FromPos  LatLng `json:"fromPos"`
	ToPos    LatLng `json:"toPos"`
	FromName string `json:"fromName"`
	ToName   string `json:"toName"`
}

// Map is a named infrastructure diagram
type Map struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Center      LatLng       `json:"center"`
	Layer       Layer        `json:"layer"`
	Icons       []Icon       `json:"icons"`
	Connections []Connection `json:"connections"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// MapSummary is the listing record for the saved-map picker
type MapSummary struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Layer           Layer     `json:"layer"`
	IconCount       int       `json:"iconCount"`
	ConnectionCount int       `json:"connectionCount"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Summary returns the listing record of the map
func (m *Map) Summary() *MapSummary {
	return &MapSummary{
		ID:              m.ID,
		Name:            m.Name,
		Layer:           m.Layer,
		IconCount:       len(m.Icons),
		ConnectionCount: len(m.Connections),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
