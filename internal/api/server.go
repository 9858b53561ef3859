// Package api implements the catalog REST surface: users, products, maps,
// the icon and tile-layer catalogs and admin token issuance.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/agonsep/21stCentury/internal/database"
	"github.com/agonsep/21stCentury/internal/metrics"
	"github.com/agonsep/21stCentury/pkg/auth"
	"github.com/agonsep/21stCentury/pkg/geocode"
)

// Options configures a Server
type Options struct {
	// CORSOrigins lists allowed browser origins; "*" allows any
	CORSOrigins []string
	// AdminSubject is recorded as the subject of issued admin tokens
	AdminSubject string
	// Geocoder backs /api/geocode; the route is not registered when nil
	Geocoder Geocoder
}

// Geocoder resolves a place query to a coordinate
type Geocoder interface {
	Search(ctx context.Context, query string) (*geocode.Result, error)
}

// Server holds the handler dependencies and the route table
type Server struct {
	db        *database.BunDB
	jwt       *auth.JWTManager
	passwords *auth.PasswordVerifier
	opts      Options
	router    *mux.Router
	now       func() time.Time
}

// NewServer wires every API route onto a fresh router
func NewServer(db *database.BunDB, jwt *auth.JWTManager, passwords *auth.PasswordVerifier, opts Options) *Server {
	if opts.AdminSubject == "" {
		opts.AdminSubject = "admin"
	}

	s := &Server{
		db:        db,
		jwt:       jwt,
		passwords: passwords,
		opts:      opts,
		router:    mux.NewRouter(),
		now:       time.Now,
	}
	s.routes()
	return s
}

// Router exposes the route table so other packages can mount pages on it
func (s *Server) Router() *mux.Router {
	return s.router
}

// Handler returns the full middleware chain around the router. CORS and
// panic recovery sit outside mux so they also cover unmatched routes.
func (s *Server) Handler() http.Handler {
	return corsMiddleware(s.opts.CORSOrigins)(recoveryMiddleware(s.router))
}

func (s *Server) routes() {
	r := s.router
	r.Use(loggingMiddleware, metrics.Middleware)
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	admin := auth.RequireAdmin(s.jwt)
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.health).Methods(http.MethodGet)

	api.HandleFunc("/auth/token", s.issueToken).Methods(http.MethodPost)
	api.Handle("/auth/verify", admin(http.HandlerFunc(s.verifyToken))).Methods(http.MethodGet)

	api.HandleFunc("/users", s.listUsers).Methods(http.MethodGet)
	api.HandleFunc("/users", s.createUser).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}", s.getUser).Methods(http.MethodGet)

	// facet routes are registered before /products/{id}
	api.HandleFunc("/products", s.listProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/manufacturers", s.listManufacturers).Methods(http.MethodGet)
	api.HandleFunc("/products/origins", s.listOrigins).Methods(http.MethodGet)
	api.HandleFunc("/products/categories", s.listCategories).Methods(http.MethodGet)
	api.HandleFunc("/products/category/{category}", s.listProductsByCategory).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", s.getProduct).Methods(http.MethodGet)
	api.Handle("/products", admin(http.HandlerFunc(s.createProduct))).Methods(http.MethodPost)
	api.Handle("/products/{id}", admin(http.HandlerFunc(s.updateProduct))).Methods(http.MethodPut)
	api.Handle("/products/{id}", admin(http.HandlerFunc(s.deleteProduct))).Methods(http.MethodDelete)

	api.HandleFunc("/maps", s.listMaps).Methods(http.MethodGet)
	api.HandleFunc("/maps", s.createMap).Methods(http.MethodPost)
	api.HandleFunc("/maps/{id}", s.getMap).Methods(http.MethodGet)
	api.HandleFunc("/maps/{id}", s.updateMap).Methods(http.MethodPut)
	api.HandleFunc("/maps/{id}", s.deleteMap).Methods(http.MethodDelete)

	api.HandleFunc("/icon-types", s.listIconTypes).Methods(http.MethodGet)
	api.HandleFunc("/layers", s.listLayers).Methods(http.MethodGet)
	if s.opts.Geocoder != nil {
		api.HandleFunc("/geocode", s.geocode).Methods(http.MethodGet)
	}
}
