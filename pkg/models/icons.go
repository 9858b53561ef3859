package models

// IconType is one entry of the fixed infrastructure catalog that can be
// placed on a map.
type IconType struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Glyph string `json:"icon"`
	Color string `json:"color"`
	// IsConnector marks the cable entry: it starts cable mode instead of
	// being placed as a node.
	IsConnector bool `json:"isConnection,omitempty"`
}

// CableIconTypeID identifies the connector entry of the catalog
const CableIconTypeID = "cable"

var iconCatalog = []IconType{
	{ID: "solar", Name: "Solar PV", Glyph: "☀️", Color: "#FFD700"},
	{ID: "battery", Name: "Battery Storage", Glyph: "🔋", Color: "#32CD32"},
	{ID: "ev-demand", Name: "EV Demand", Glyph: "🚗", Color: "#FF6B6B"},
	{ID: "diesel-gen", Name: "Diesel Generator", Glyph: "⛽", Color: "#FF4500"},
	{ID: "gas-gen", Name: "Gas Generator", Glyph: "🏭", Color: "#32CD32"},
	{ID: "linear-gen", Name: "Linear Generator", Glyph: "📦", Color: "#9370DB"},
	{ID: "boiler", Name: "Boiler", Glyph: "🔥", Color: "#DC143C"},
	{ID: "elec-chiller", Name: "Elec. Chiller", Glyph: "❄️", Color: "#4169E1"},
	{ID: CableIconTypeID, Name: "Cable", Glyph: "🔌", Color: "#696969", IsConnector: true},
}

// IconTypes returns a copy of the icon catalog in palette order
func IconTypes() []IconType {
	out := make([]IconType, len(iconCatalog))
	copy(out, iconCatalog)
	return out
}

// LookupIconType finds a catalog entry by id
func LookupIconType(id string) (IconType, bool) {
	for _, t := range iconCatalog {
		if t.ID == id {
			return t, true
		}
	}
	return IconType{}, false
}
