package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/agonsep/21stCentury/internal/database"
	"github.com/agonsep/21stCentury/internal/metrics"
	"github.com/agonsep/21stCentury/pkg/models"
)

const requiredProductFields = "Category, name, cost, currency, rating, and manufacturer are required"

// productInput is the create/update body. manufacturedIn takes precedence
// over origin when both are sent.
type productInput struct {
	Category        *string        `json:"category"`
	Name            *string        `json:"name"`
	Cost            numberInput    `json:"cost"`
	Currency        *string        `json:"currency"`
	Rating          *string        `json:"rating"`
	Manufacturer    *string        `json:"manufacturer"`
	Origin          *string        `json:"origin"`
	ManufacturedIn  *string        `json:"manufacturedIn"`
	Efficiency      numberInput    `json:"efficiency"`
	Lifetime        numberInput    `json:"lifetime"`
	MaintenanceCost numberInput    `json:"maintenanceCost"`
	Footprint       *string        `json:"footprint"`
	NEVIEligible    boolInput      `json:"neviEligible"`
	Documents       documentsInput `json:"documents"`
	Description     *string        `json:"description"`
}

// product validates the input and builds the record it describes
func (in *productInput) product() (*models.Product, error) {
	var invalid []string
	for _, f := range []struct {
		name string
		in   numberInput
	}{
		{"cost", in.Cost},
		{"efficiency", in.Efficiency},
		{"lifetime", in.Lifetime},
		{"maintenanceCost", in.MaintenanceCost},
	} {
		if f.in.Invalid {
			invalid = append(invalid, f.name)
		}
	}
	lifetime, ok := in.Lifetime.Int()
	if !ok && !in.Lifetime.Invalid {
		invalid = append(invalid, "lifetime")
	}
	if in.NEVIEligible.Invalid {
		invalid = append(invalid, "neviEligible")
	}
	if in.Documents.Invalid {
		invalid = append(invalid, "documents")
	}
	if len(invalid) > 0 {
		return nil, models.NewValidationError(
			fmt.Sprintf("Invalid value for %s", strings.Join(invalid, ", ")), invalid...)
	}

	p := &models.Product{
		Category:        trimmed(in.Category),
		Name:            trimmed(in.Name),
		Currency:        strings.ToUpper(trimmed(in.Currency)),
		Rating:          trimmed(in.Rating),
		Manufacturer:    trimmed(in.Manufacturer),
		Origin:          optionalText(in.Origin),
		Efficiency:      in.Efficiency.Value,
		Lifetime:        lifetime,
		MaintenanceCost: in.MaintenanceCost.Value,
		Footprint:       optionalText(in.Footprint),
		NEVIEligible:    in.NEVIEligible.Value,
		Documents:       in.Documents.Value,
		Description:     optionalText(in.Description),
	}
	if mi := optionalText(in.ManufacturedIn); mi != nil {
		p.Origin = mi
	}
	if p.Documents == nil {
		p.Documents = []string{}
	}

	var missing []string
	for _, f := range []struct {
		name  string
		empty bool
	}{
		{"category", p.Category == ""},
		{"name", p.Name == ""},
		{"cost", in.Cost.Value == nil},
		{"currency", p.Currency == ""},
		{"rating", p.Rating == ""},
		{"manufacturer", p.Manufacturer == ""},
	} {
		if f.empty {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, models.NewValidationError(requiredProductFields, missing...)
	}

	p.Cost = *in.Cost.Value
	if p.Cost < 0 {
		return nil, models.NewValidationError("Invalid value for cost: must not be negative", "cost")
	}
	return p, nil
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := database.ParseProductFilter(r.URL.Query())
	if err != nil {
		handleError(w, r, err, "", "")
		return
	}

	products, err := s.db.Products.List(r.Context(), filter)
	if err != nil {
		handleError(w, r, err, "", "Failed to fetch products")
		return
	}
	if products == nil {
		products = []*models.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) listProductsByCategory(w http.ResponseWriter, r *http.Request) {
	filter := database.DefaultProductFilter()
	filter.Category = mux.Vars(r)["category"]

	products, err := s.db.Products.List(r.Context(), filter)
	if err != nil {
		handleError(w, r, err, "", "Failed to fetch products by category")
		return
	}
	if products == nil {
		products = []*models.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) listManufacturers(w http.ResponseWriter, r *http.Request) {
	manufacturers, err := s.db.Products.Manufacturers(r.Context())
	if err != nil {
		handleError(w, r, err, "", "Failed to fetch manufacturers")
		return
	}
	if manufacturers == nil {
		manufacturers = []string{}
	}
	writeCached(w, r, manufacturers)
}

func (s *Server) listOrigins(w http.ResponseWriter, r *http.Request) {
	origins, err := s.db.Products.Origins(r.Context())
	if err != nil {
		handleError(w, r, err, "", "Failed to fetch origins")
		return
	}
	if origins == nil {
		origins = []string{}
	}
	writeCached(w, r, origins)
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.db.Products.Categories(r.Context())
	if err != nil {
		handleError(w, r, err, "", "Failed to fetch categories")
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	writeCached(w, r, categories)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "product")
	if err != nil {
		handleError(w, r, err, "", "")
		return
	}

	product, err := s.db.Products.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, err, "Product not found", "Failed to fetch product")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var in productInput
	if err := decodeJSON(w, r, &in); err != nil {
		handleError(w, r, err, "", "")
		return
	}
	product, err := in.product()
	if err != nil {
		handleError(w, r, err, "", "")
		return
	}

	err = s.db.Products.Create(r.Context(), product)
	metrics.RecordMutation("product", "create", err)
	if err != nil {
		handleError(w, r, err, "", "Failed to create product")
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "product")
	if err != nil {
		handleError(w, r, err, "", "")
		return
	}

	var in productInput
	if err := decodeJSON(w, r, &in); err != nil {
		handleError(w, r, err, "", "")
		return
	}
	product, err := in.product()
	if err != nil {
		handleError(w, r, err, "", "")
		return
	}
	product.ID = id

	err = s.db.Products.Update(r.Context(), product)
	metrics.RecordMutation("product", "update", err)
	if err != nil {
		handleError(w, r, err, "Product not found", "Failed to update product")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "product")
	if err != nil {
		handleError(w, r, err, "", "")
		return
	}

	err = s.db.Products.Delete(r.Context(), id)
	metrics.RecordMutation("product", "delete", err)
	if err != nil {
		handleError(w, r, err, "Product not found", "Failed to delete product")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Product deleted successfully",
		"id":      id,
	})
}
