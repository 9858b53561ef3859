package webui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agonsep/21stCentury/internal/database"
	"github.com/agonsep/21stCentury/pkg/auth"
	"github.com/agonsep/21stCentury/pkg/models"
)

func setupRouter(t *testing.T, products int) (*mux.Router, *database.BunDB) {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	ctx := context.Background()
	for i := 0; i < products; i++ {
		origin := "USA"
		require.NoError(t, db.Products.Create(ctx, &models.Product{
			Category:     "EV Charger",
			Name:         "Charger " + strconv.Itoa(i),
			Cost:         1299.5,
			Currency:     "USD",
			Rating:       "4.0/5",
			Manufacturer: "ChargePoint",
			Origin:       &origin,
		}))
	}

	router := mux.NewRouter()
	Register(router, db)
	return router, db
}

func get(router http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestCatalogHandler(t *testing.T) {
	router, _ := setupRouter(t, 30)

	rec := get(router, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, body, "Charger 29")
	assert.Contains(t, body, "1,299.5 USD")
	assert.Contains(t, body, "Showing 25 products")
	assert.Contains(t, body, "offset=25")
	assert.NotContains(t, body, "Previous")
	assert.Contains(t, body, `class="delete-product" data-id="`)
	assert.Contains(t, body, "/api/products/")

	rec = get(router, "/?offset=25")
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.Contains(t, body, "Showing 5 products")
	assert.Contains(t, body, "Previous")
	assert.NotContains(t, body, "Next")

	rec = get(router, "/?search=charger%2012")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Showing 1 products")
}

func TestCatalogHandler_InvalidFilter(t *testing.T) {
	router, _ := setupRouter(t, 2)

	rec := get(router, "/?sort=bogus")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "sort must be one of")
	assert.Contains(t, rec.Body.String(), "Charger 1")
}

func TestMapsHandler(t *testing.T) {
	router, db := setupRouter(t, 0)

	rec := get(router, "/maps")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No saved maps yet.")

	require.NoError(t, db.Maps.Create(context.Background(), &models.Map{
		Name:   "Depot <B>",
		Center: models.DefaultCenter,
		Layer:  models.LayerHybrid,
	}))

	rec = get(router, "/maps")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Depot &lt;B&gt;")
	assert.Contains(t, rec.Body.String(), "hybrid")
}

func TestLoginAndLogout(t *testing.T) {
	router, _ := setupRouter(t, 0)

	rec := get(router, "/login")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/auth/token")

	rec = get(router, "/logout")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.TokenCookieName, cookies[0].Name)
	assert.Negative(t, cookies[0].MaxAge)
}
