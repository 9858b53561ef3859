package models

import (
	"encoding/json"
	"strings"
	"time"
)

// DefaultCurrency is applied to products stored without a currency code
const DefaultCurrency = "USD"

// Product is a catalog item (EV charging equipment)
type Product struct {
	ID              int64     `json:"id"`
	Category        string    `json:"category"`
	Name            string    `json:"name"`
	Cost            float64   `json:"cost"`
	Currency        string    `json:"currency"`
	Rating          string    `json:"rating"`
	Manufacturer    string    `json:"manufacturer"`
	Origin          *string   `json:"origin"`
	Efficiency      *float64  `json:"efficiency"`
	Lifetime        *int      `json:"lifetime"`
	MaintenanceCost *float64  `json:"maintenanceCost"`
	Footprint       *string   `json:"footprint"`
	NEVIEligible    bool      `json:"neviEligible"`
	Documents       []string  `json:"documents"`
	Description     *string   `json:"description"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// MarshalJSON adds the manufacturedIn alias of origin expected by catalog clients
// and always emits documents as a list.
func (p Product) MarshalJSON() ([]byte, error) {
	type plain Product
	docs := p.Documents
	if docs == nil {
		docs = []string{}
	}
	out := struct {
		plain
		Documents      []string `json:"documents"`
		ManufacturedIn *string  `json:"manufacturedIn"`
	}{
		plain:          plain(p),
		Documents:      docs,
		ManufacturedIn: p.Origin,
	}
	return json.Marshal(out)
}

// Category is a facet derived from distinct product category labels
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CategorySlug lower-cases the label and strips all whitespace. It is a
// display convenience, not a stable identifier.
func CategorySlug(label string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v' {
			return -1
		}
		return r
	}, strings.ToLower(label))
}

// NewCategory builds the facet record for a category label
func NewCategory(label string) Category {
	return Category{
		ID:          CategorySlug(label),
		Name:        label,
		Description: label + " products",
	}
}
