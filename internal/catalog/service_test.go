package catalog

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/skvortsovm/shop-backend/internal/errs"
	"github.com/skvortsovm/shop-backend/internal/models"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	// No search index attached; Search falls back to SQL.
	return NewService(NewGormStore(db), nil), db
}

func TestProductCRUD(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	p := &models.Product{Name: "Mug", Description: "ceramic", Price: 12.5}
	require.NoError(t, svc.CreateProduct(ctx, p))
	require.NotEqual(t, uuid.Nil, p.ID)

	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mug", got.Name)

	updated, err := svc.UpdateProduct(ctx, p.ID, func(u *models.Product) {
		u.Price = 14.0
	})
	require.NoError(t, err)
	assert.Equal(t, 14.0, updated.Price)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	_, err = svc.GetProduct(ctx, p.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUpdateProduct_Unknown(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.UpdateProduct(context.Background(), uuid.New(), func(*models.Product) {})
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestListProducts_Pagination(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.CreateProduct(ctx, &models.Product{Name: "p", Price: 1}))
	}

	page, total, err := svc.ListProducts(ctx, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, page, 3)

	rest, total, err := svc.ListProducts(ctx, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, rest, 2)
}

func TestSearch_SQLFallback(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.CreateProduct(ctx, &models.Product{Name: "Blue Mug", Price: 1}))
	require.NoError(t, svc.CreateProduct(ctx, &models.Product{Name: "Plate", Description: "a mug-sized plate", Price: 1}))
	require.NoError(t, svc.CreateProduct(ctx, &models.Product{Name: "Spoon", Price: 1}))

	found, err := svc.Search(ctx, "MUG", 10)
	require.NoError(t, err)
	require.Len(t, found, 2)

	names := []string{found[0].Name, found[1].Name}
	assert.Contains(t, names, "Blue Mug")
	assert.Contains(t, names, "Plate")
}

func TestCategoryCRUD(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	c := &models.Category{Name: "Kitchen"}
	require.NoError(t, svc.CreateCategory(ctx, c))

	err := svc.CreateCategory(ctx, &models.Category{Name: "Kitchen"})
	require.ErrorIs(t, err, errs.ErrConflict)

	renamed, err := svc.UpdateCategory(ctx, c.ID, "Kitchenware")
	require.NoError(t, err)
	assert.Equal(t, "Kitchenware", renamed.Name)

	all, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.NoError(t, svc.DeleteCategory(ctx, c.ID))
	_, err = svc.GetCategory(ctx, c.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
}
