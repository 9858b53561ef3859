// Package seed loads the sample users and EV charger catalog into an empty
// store.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/agonsep/21stCentury/internal/database"
	"github.com/agonsep/21stCentury/pkg/models"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Catalog is the bootstrap data set
type Catalog struct {
	Users    []UserSeed    `yaml:"users"`
	Products []ProductSeed `yaml:"products"`
}

// UserSeed is one sample user
type UserSeed struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// ProductSeed is one sample product
type ProductSeed struct {
	Category        string   `yaml:"category"`
	Name            string   `yaml:"name"`
	Cost            float64  `yaml:"cost"`
	Currency        string   `yaml:"currency"`
	Rating          string   `yaml:"rating"`
	Manufacturer    string   `yaml:"manufacturer"`
	Origin          *string  `yaml:"origin"`
	Efficiency      *float64 `yaml:"efficiency"`
	Lifetime        *int     `yaml:"lifetime"`
	MaintenanceCost *float64 `yaml:"maintenanceCost"`
	Footprint       *string  `yaml:"footprint"`
	NEVIEligible    bool     `yaml:"neviEligible"`
	Documents       []string `yaml:"documents"`
	Description     *string  `yaml:"description"`
}

// Product converts the seed entry to a domain product
func (s ProductSeed) Product() *models.Product {
	currency := s.Currency
	if currency == "" {
		currency = models.DefaultCurrency
	}
	return &models.Product{
		Category:        s.Category,
		Name:            s.Name,
		Cost:            s.Cost,
		Currency:        currency,
		Rating:          s.Rating,
		Manufacturer:    s.Manufacturer,
		Origin:          s.Origin,
		Efficiency:      s.Efficiency,
		Lifetime:        s.Lifetime,
		MaintenanceCost: s.MaintenanceCost,
		Footprint:       s.Footprint,
		NEVIEligible:    s.NEVIEligible,
		Documents:       s.Documents,
		Description:     s.Description,
	}
}

// DefaultCatalog parses the embedded sample catalog
func DefaultCatalog() (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(catalogYAML, &c); err != nil {
		return nil, fmt.Errorf("parse embedded catalog: %w", err)
	}
	return &c, nil
}

// Result reports what a seeding pass inserted
type Result struct {
	UsersCreated    int
	UsersSkipped    int
	ProductsCreated int
	ProductsSkipped int
}

// Run seeds the default catalog when the products table is empty. It
// returns a zero Result when the store already holds products.
func Run(ctx context.Context, db *database.BunDB) (Result, error) {
	count, err := db.Products.Count(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		log.Debug().Int("products", count).Msg("Store already populated, skipping seed")
		return Result{}, nil
	}

	catalog, err := DefaultCatalog()
	if err != nil {
		return Result{}, err
	}
	return Apply(ctx, db, catalog)
}

// Apply inserts every catalog entry that is not stored yet. Users are
// matched by email and products by name and manufacturer, so repeated calls
// insert nothing new.
func Apply(ctx context.Context, db *database.BunDB, catalog *Catalog) (Result, error) {
	var res Result

	for _, u := range catalog.Users {
		err := db.Users.Create(ctx, &models.User{Name: u.Name, Email: u.Email})
		switch {
		case errors.Is(err, database.ErrDuplicateEmail):
			res.UsersSkipped++
		case err != nil:
			return res, fmt.Errorf("seed user %s: %w", u.Email, err)
		default:
			res.UsersCreated++
		}
	}

	for _, p := range catalog.Products {
		exists, err := db.Products.ExistsByNameAndManufacturer(ctx, p.Name, p.Manufacturer)
		if err != nil {
			return res, fmt.Errorf("check product %s: %w", p.Name, err)
		}
		if exists {
			res.ProductsSkipped++
			continue
		}
		if err := db.Products.Create(ctx, p.Product()); err != nil {
			return res, fmt.Errorf("seed product %s: %w", p.Name, err)
		}
		res.ProductsCreated++
	}

	log.Info().
		Int("users_created", res.UsersCreated).
		Int("products_created", res.ProductsCreated).
		Int("products_skipped", res.ProductsSkipped).
		Msg("Database seeded")
	return res, nil
}
