package database

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/agonsep/21stCentury/pkg/models"
)

// User represents a catalog user row
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull"`
	Email     string    `bun:"email,unique,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// ToModel converts database User to domain model
func (u *User) ToModel() *models.User {
	return &models.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// UserFromModel converts domain model to database User
func UserFromModel(m *models.User) *User {
	return &User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		CreatedAt: m.CreatedAt,
	}
}

// Product represents a catalog product row. Documents is stored as JSON text.
type Product struct {
	bun.BaseModel `bun:"table:products"`

	ID              int64     `bun:"id,pk,autoincrement"`
	Category        string    `bun:"category,notnull"`
	Name            string    `bun:"name,notnull"`
	Cost            float64   `bun:"cost,notnull"`
	Currency        string    `bun:"currency,nullzero,notnull,default:'USD'"`
	Rating          string    `bun:"rating,notnull"`
	Manufacturer    string    `bun:"manufacturer,notnull"`
	Origin          *string   `bun:"origin"`
	Efficiency      *float64  `bun:"efficiency"`
	Lifetime        *int      `bun:"lifetime"`
	MaintenanceCost *float64  `bun:"maintenance_cost"`
	Footprint       *string   `bun:"footprint"`
	NEVIEligible    bool      `bun:"nevi_eligible,notnull,default:false"`
	Documents       []string  `bun:"documents,type:json,notnull"`
	Description     *string   `bun:"description"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// ToModel converts database Product to domain model
func (p *Product) ToModel() *models.Product {
	docs := p.Documents
	if docs == nil {
		docs = []string{}
	}
	return &models.Product{
		ID:              p.ID,
		Category:        p.Category,
		Name:            p.Name,
		Cost:            p.Cost,
		Currency:        p.Currency,
		Rating:          p.Rating,
		Manufacturer:    p.Manufacturer,
		Origin:          p.Origin,
		Efficiency:      p.Efficiency,
		Lifetime:        p.Lifetime,
		MaintenanceCost: p.MaintenanceCost,
		Footprint:       p.Footprint,
		NEVIEligible:    p.NEVIEligible,
		Documents:       docs,
		Description:     p.Description,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// ProductFromModel converts domain model to database Product
func ProductFromModel(m *models.Product) *Product {
	docs := m.Documents
	if docs == nil {
		docs = []string{}
	}
	return &Product{
		ID:              m.ID,
		Category:        m.Category,
		Name:            m.Name,
		Cost:            m.Cost,
		Currency:        m.Currency,
		Rating:          m.Rating,
		Manufacturer:    m.Manufacturer,
		Origin:          m.Origin,
		Efficiency:      m.Efficiency,
		Lifetime:        m.Lifetime,
		MaintenanceCost: m.MaintenanceCost,
		Footprint:       m.Footprint,
		NEVIEligible:    m.NEVIEligible,
		Documents:       docs,
		Description:     m.Description,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// Map represents a saved diagram row. Center, icons and connections are
// embedded JSON documents rather than child tables.
type Map struct {
	bun.BaseModel `bun:"table:maps"`

	ID          int64               `bun:"id,pk,autoincrement"`
	Name        string              `bun:"name,notnull"`
	Center      models.LatLng       `bun:"center,type:json,notnull"`
	Layer       string              `bun:"layer,notnull,default:'satellite'"`
	Icons       []models.Icon       `bun:"icons,type:json,notnull"`
	Connections []models.Connection `bun:"connections,type:json,notnull"`
	CreatedAt   time.Time           `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time           `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// ToModel converts database Map to domain model
func (m *Map) ToModel() *models.Map {
	icons := m.Icons
	if icons == nil {
		icons = []models.Icon{}
	}
	conns := m.Connections
	if conns == nil {
		conns = []models.Connection{}
	}
	return &models.Map{
		ID:          m.ID,
		Name:        m.Name,
		Center:      m.Center,
		Layer:       models.Layer(m.Layer),
		Icons:       icons,
		Connections: conns,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// MapFromModel converts domain model to database Map
func MapFromModel(m *models.Map) *Map {
	icons := m.Icons
	if icons == nil {
		icons = []models.Icon{}
	}
	conns := m.Connections
	if conns == nil {
		conns = []models.Connection{}
	}
	return &Map{
		ID:          m.ID,
		Name:        m.Name,
		Center:      m.Center,
		Layer:       string(m.Layer),
		Icons:       icons,
		Connections: conns,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
