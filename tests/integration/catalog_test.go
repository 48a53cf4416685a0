package integration

import (
	"context"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcatalog "github.com/masoud-shayan/northwind/internal/application/catalog"
	"github.com/masoud-shayan/northwind/internal/domain/shared"
	"github.com/masoud-shayan/northwind/internal/infrastructure/persistence"
)

// TestMain runs before any tests and handles cleanup
func TestMain(m *testing.M) {
	code := m.Run()
	CleanupSharedContainer()
	os.Exit(code)
}

func TestCatalogQueries_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	svc := appcatalog.NewService(NewTestDB(t).Factory())
	ctx := context.Background()

	t.Run("CategorySummaries", func(t *testing.T) {
		summaries, err := svc.CategorySummaries(ctx)
		require.NoError(t, err)
		assert.Len(t, summaries, 8)
	})

	t.Run("ProductsAbove compares numerically", func(t *testing.T) {
		products, err := svc.ProductsAbove(ctx, decimal.RequireFromString("100"))
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, 38, products[0].ProductID)
		assert.True(t, products[0].Cost.Decimal.Equal(decimal.RequireFromString("263.50")))
	})

	t.Run("ProductsLike", func(t *testing.T) {
		products, err := svc.ProductsLike(ctx, "Tofu")
		require.NoError(t, err)
		assert.Len(t, products, 2)
	})

	t.Run("Joins", func(t *testing.T) {
		lines, err := svc.CategoryProducts(ctx)
		require.NoError(t, err)
		assert.Len(t, lines, 77)

		groups, err := svc.CategoriesWithProducts(ctx)
		require.NoError(t, err)
		require.Len(t, groups, 8)
		assert.Equal(t, "Beverages", groups[0].CategoryName)
		assert.Equal(t, "Chai", groups[0].Products[0].ProductName)
	})
}

func TestCatalogMutations_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := NewTestDB(t)
	svc := appcatalog.NewService(db.Factory())
	ctx := context.Background()
	price := decimal.NewFromInt(500)

	added, err := svc.AddProduct(ctx, appcatalog.AddProductInput{CategoryID: 6, ProductName: "masoud shayan", Price: &price})
	require.NoError(t, err)
	assert.True(t, added.Succeeded)

	// the seed advances the sequence past the fixed ids
	var id int
	require.NoError(t, db.DB.Raw("SELECT product_id FROM products WHERE product_name = ?", "masoud shayan").Scan(&id).Error)
	assert.Equal(t, 78, id)

	increased, err := svc.IncreaseProductPrice(ctx, "maso", decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.True(t, increased.Succeeded)

	var cost string
	require.NoError(t, db.DB.Raw("SELECT unit_price FROM products WHERE product_id = ?", id).Scan(&cost).Error)
	assert.True(t, decimal.RequireFromString(cost).Equal(decimal.NewFromInt(510)))

	// underscores in the prefix are literal
	_, err = svc.IncreaseProductPrice(ctx, "mas_", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, shared.ErrNotFound)

	deleted, err := svc.DeleteProducts(ctx, "maso")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted.Affected)

	n, err := persistence.NewNorthwind(db.DB).Products().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(77), n)
}

func TestSaveChanges_RollsBackOnForeignKeyViolation_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	svc := appcatalog.NewService(NewTestDB(t).Factory())

	_, err := svc.AddProduct(context.Background(), appcatalog.AddProductInput{CategoryID: 42, ProductName: "orphan"})
	assert.Error(t, err)
}
