package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agonsep/21stCentury/internal/database"
	"github.com/agonsep/21stCentury/pkg/models"
)

func TestMiddleware_UsesRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Middleware)
	r.HandleFunc("/api/widgets/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/widgets/{id}", "418"))
	for _, id := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/widgets/"+id, nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	}
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/widgets/{id}", "418"))
	assert.Equal(t, 2.0, after-before)
}

func TestRecordMutation(t *testing.T) {
	ok := MutationsTotal.WithLabelValues("widget", "create", "success")
	failed := MutationsTotal.WithLabelValues("widget", "create", "error")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	RecordMutation("widget", "create", nil)
	RecordMutation("widget", "create", errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(ok)-okBefore)
	assert.Equal(t, 1.0, testutil.ToFloat64(failed)-failedBefore)
}

func TestCollector_Collect(t *testing.T) {
	db, err := database.New(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.Users.Create(ctx, &models.User{Name: "A", Email: "a@example.com"}))
	require.NoError(t, db.Users.Create(ctx, &models.User{Name: "B", Email: "b@example.com"}))

	NewCollector(db, 0).Collect(ctx)

	assert.Equal(t, 2.0, testutil.ToFloat64(UsersTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(ProductsTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(MapsTotal))
}

func TestCollector_StartStop(t *testing.T) {
	db, err := database.New(":memory:")
	require.NoError(t, err)
	defer db.Close()

	c := NewCollector(db, 0)
	done := make(chan struct{})
	go func() {
		c.Start(context.Background())
		close(done)
	}()
	c.Stop()
	<-done

	assert.NotPanics(t, c.Stop)
}
