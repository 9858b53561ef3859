package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agonsep/21stCentury/internal/database"
	"github.com/agonsep/21stCentury/pkg/models"
)

func setupTestDB(t *testing.T) *database.BunDB {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	assert.Len(t, c.Users, 3)
	assert.Len(t, c.Products, 40)

	seen := map[string]bool{}
	for _, p := range c.Products {
		key := p.Name + "|" + p.Manufacturer
		assert.False(t, seen[key], "duplicate product %s", key)
		seen[key] = true

		assert.NotEmpty(t, p.Category)
		assert.NotEmpty(t, p.Rating)
		assert.GreaterOrEqual(t, p.Cost, 0.0)
		assert.Equal(t, models.DefaultCurrency, p.Product().Currency)
	}

	first := c.Products[0].Product()
	assert.Equal(t, "ChargePoint CT4021", first.Name)
	assert.Equal(t, []string{"Installation Manual", "Warranty", "NEVI Compliance Certificate"}, first.Documents)
	require.NotNil(t, first.Origin)
	assert.Equal(t, "USA", *first.Origin)
	assert.True(t, first.NEVIEligible)
}

func TestRun_SeedsEmptyStore(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	res, err := Run(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 3, res.UsersCreated)
	assert.Equal(t, 40, res.ProductsCreated)

	stats, err := db.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Users)
	assert.Equal(t, 40, stats.Products)

	// second run sees a populated store
	res, err = Run(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
}

func TestApply_SkipsExisting(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Users.Create(ctx, &models.User{Name: "Jane", Email: "jane@example.com"}))

	c, err := DefaultCatalog()
	require.NoError(t, err)
	require.NoError(t, db.Products.Create(ctx, c.Products[2].Product()))

	res, err := Apply(ctx, db, c)
	require.NoError(t, err)
	assert.Equal(t, 2, res.UsersCreated)
	assert.Equal(t, 1, res.UsersSkipped)
	assert.Equal(t, 39, res.ProductsCreated)
	assert.Equal(t, 1, res.ProductsSkipped)

	res, err = Apply(ctx, db, c)
	require.NoError(t, err)
	assert.Equal(t, 0, res.UsersCreated)
	assert.Equal(t, 0, res.ProductsCreated)
	assert.Equal(t, 40, res.ProductsSkipped)
}
