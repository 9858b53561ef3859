// Package webui serves the server-rendered catalog browser, the saved-map
// picker and the admin login page.
package webui

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/agonsep/21stCentury/internal/database"
	"github.com/agonsep/21stCentury/pkg/auth"
	"github.com/agonsep/21stCentury/pkg/models"
)

// DefaultPageSize is used when the catalog is requested without a limit
const DefaultPageSize = 25

type page struct {
	Title       string
	HeaderTitle string
	Error       string
}

type sortLink struct {
	Label  string
	Link   template.URL
	Active bool
}

type catalogPage struct {
	page
	Filter        database.ProductFilter
	Products      []*models.Product
	Manufacturers []string
	Origins       []string
	NEVIOnly      bool
	Columns       []sortLink
	Page          int
	PrevLink      template.URL
	NextLink      template.URL
}

// OriginSelected reports whether origin is part of the active filter
func (p *catalogPage) OriginSelected(origin string) bool {
	for _, o := range p.Filter.Origins {
		if strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

type mapsPage struct {
	page
	Maps []*models.MapSummary
}

// Register mounts the pages on router
func Register(router *mux.Router, db *database.BunDB) {
	router.Handle("/", NewCatalogHandler(db)).Methods(http.MethodGet)
	router.Handle("/maps", NewMapsHandler(db)).Methods(http.MethodGet)
	router.Handle("/login", NewLoginHandler()).Methods(http.MethodGet)
	router.Handle("/logout", NewLogoutHandler()).Methods(http.MethodGet)
}

// CatalogHandler renders the filterable product table
type CatalogHandler struct {
	db *database.BunDB
}

// NewCatalogHandler creates a new catalog page handler
func NewCatalogHandler(db *database.BunDB) *CatalogHandler {
	return &CatalogHandler{db: db}
}

// ServeHTTP handles requests to /
func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data := &catalogPage{
		page: page{
			Title:       "EV Charger Catalog",
			HeaderTitle: "EV Charger Catalog",
		},
	}
	status := http.StatusOK

	filter, err := database.ParseProductFilter(r.URL.Query())
	if err != nil {
		data.Error = err.Error()
		status = http.StatusBadRequest
		filter = database.DefaultProductFilter()
	}
	if filter.Limit == 0 {
		filter.Limit = DefaultPageSize
	}
	data.Filter = filter
	data.NEVIOnly = filter.NEVIEligible != nil && *filter.NEVIEligible

	ctx := r.Context()
	// one extra row tells whether a next page exists
	probe := filter
	probe.Limit++
	products, err := h.db.Products.List(ctx, probe)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list products for catalog page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	hasNext := len(products) > filter.Limit
	if hasNext {
		products = products[:filter.Limit]
	}
	data.Products = products

	if data.Manufacturers, err = h.db.Products.Manufacturers(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to load manufacturer facet")
	}
	if data.Origins, err = h.db.Products.Origins(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to load origin facet")
	}

	data.Columns = sortLinks(filter)
	data.Page = filter.Offset/filter.Limit + 1
	if filter.Offset > 0 {
		prev := filter
		prev.Offset = max(0, filter.Offset-filter.Limit)
		data.PrevLink = queryLink(prev)
	}
	if hasNext {
		next := filter
		next.Offset = filter.Offset + filter.Limit
		data.NextLink = queryLink(next)
	}

	render(w, catalogTemplates, status, data)
}

func sortLinks(f database.ProductFilter) []sortLink {
	columns := []struct{ key, label string }{
		{database.SortName, "Name"},
		{database.SortManufacturer, "Manufacturer"},
		{database.SortCost, "Cost"},
		{database.SortRating, "Rating"},
		{database.SortEfficiency, "Efficiency"},
		{database.SortOrigin, "Origin"},
	}

	links := make([]sortLink, len(columns))
	for i, c := range columns {
		next := f
		next.Offset = 0
		next.Sort = c.key
		active := f.Sort == c.key
		next.Descending = active && !f.Descending
		links[i] = sortLink{Label: c.label, Link: queryLink(next), Active: active}
	}
	return links
}

func queryLink(f database.ProductFilter) template.URL {
	if f.Limit == DefaultPageSize {
		f.Limit = 0
	}
	return template.URL("?" + f.Query().Encode())
}

// MapsHandler renders the saved-map picker
type MapsHandler struct {
	db *database.BunDB
}

// NewMapsHandler creates a new maps page handler
func NewMapsHandler(db *database.BunDB) *MapsHandler {
	return &MapsHandler{db: db}
}

// ServeHTTP handles requests to /maps
func (h *MapsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	maps, err := h.db.Maps.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list maps for picker page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	render(w, mapsTemplates, http.StatusOK, &mapsPage{
		page: page{
			Title:       "Saved Maps - EV Charger Catalog",
			HeaderTitle: "Saved Maps",
		},
		Maps: maps,
	})
}

// LoginHandler handles the login page
type LoginHandler struct{}

// NewLoginHandler creates a new login handler
func NewLoginHandler() *LoginHandler {
	return &LoginHandler{}
}

// ServeHTTP handles requests to /login
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render(w, loginTemplates, http.StatusOK, &page{
		Title:       "Admin Login - EV Charger Catalog",
		HeaderTitle: "Catalog Admin Login",
	})
}

// LogoutHandler clears the admin token cookie
type LogoutHandler struct{}

// NewLogoutHandler creates a new logout handler
func NewLogoutHandler() *LogoutHandler {
	return &LogoutHandler{}
}

// ServeHTTP handles requests to /logout
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func render(w http.ResponseWriter, t *template.Template, status int, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Error().Err(err).Msg("Failed to render template")
	}
}
