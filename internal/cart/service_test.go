package cart

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/skvortsovm/shop-backend/internal/errs"
	"github.com/skvortsovm/shop-backend/internal/models"
	"github.com/skvortsovm/shop-backend/internal/tokens"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	return NewService(NewGormStore(db)), db
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	u := &models.User{Email: uuid.NewString() + "@example.com", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64) *models.Product {
	t.Helper()

	p := &models.Product{Name: name, Price: price}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestResolve_UserIdempotent(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	u := seedUser(t, db)
	ident := &tokens.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}

	first, sid, err := svc.Resolve(ctx, ident, "")
	require.NoError(t, err)
	assert.Empty(t, sid)

	second, _, err := svc.Resolve(ctx, ident, "ignored-session")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestResolve_AnonymousIdempotent(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	first, sid, err := svc.Resolve(ctx, nil, "")
	require.NoError(t, err)
	require.NotEmpty(t, sid)
	require.NotNil(t, first.ExpiresAt)

	second, sid2, err := svc.Resolve(ctx, nil, sid)
	require.NoError(t, err)
	assert.Equal(t, sid, sid2)
	assert.Equal(t, first.ID, second.ID)
}

func TestResolve_RecoversUnlinkedUserCart(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	u := seedUser(t, db)
	p := seedProduct(t, db, "widget", 9.99)
	ident := &tokens.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}

	cart, _, err := svc.Resolve(ctx, ident, "")
	require.NoError(t, err)
	cart, err = svc.AddItem(ctx, cart, p.ID, 2)
	require.NoError(t, err)

	// Lose the users.cart_id link; the cart row itself is still owned.
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", u.ID).Update("cart_id", nil).Error)

	recovered, _, err := svc.Resolve(ctx, ident, "")
	require.NoError(t, err)
	assert.Equal(t, cart.ID, recovered.ID)
	require.Len(t, recovered.Items, 1)
	assert.Equal(t, 2, recovered.Items[0].Quantity)

	var relinked models.User
	require.NoError(t, db.First(&relinked, "id = ?", u.ID).Error)
	require.NotNil(t, relinked.CartID)
	assert.Equal(t, cart.ID, *relinked.CartID)
}

func TestResolve_ExpiredAnonymousCartIsReplaced(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()

	cart, sid, err := svc.Resolve(ctx, nil, "")
	require.NoError(t, err)

	past := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(&models.Cart{}).Where("id = ?", cart.ID).Update("expires_at", past).Error)

	fresh, sid2, err := svc.Resolve(ctx, nil, sid)
	require.NoError(t, err)
	assert.Equal(t, sid, sid2)
	assert.NotEqual(t, cart.ID, fresh.ID)
}

func TestAddItem_MergesLines(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	p := seedProduct(t, db, "widget", 9.99)

	cart, _, err := svc.Resolve(ctx, nil, "")
	require.NoError(t, err)

	cart, err = svc.AddItem(ctx, cart, p.ID, 1)
	require.NoError(t, err)
	cart, err = svc.AddItem(ctx, cart, p.ID, 2)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	require.NotNil(t, cart.Items[0].Product)
	assert.Equal(t, "widget", cart.Items[0].Product.Name)
}

func TestUpdateAndRemoveItem(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	p := seedProduct(t, db, "widget", 9.99)

	cart, _, err := svc.Resolve(ctx, nil, "")
	require.NoError(t, err)
	cart, err = svc.AddItem(ctx, cart, p.ID, 1)
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	cart, err = svc.UpdateItem(ctx, cart, itemID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, cart.Items[0].Quantity)

	cart, err = svc.RemoveItem(ctx, cart, itemID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	_, err = svc.UpdateItem(ctx, cart, itemID, 2)
	require.ErrorIs(t, err, errs.ErrNotFound)
	_, err = svc.RemoveItem(ctx, cart, itemID)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRemoveItem_ForeignCartItem(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	p := seedProduct(t, db, "widget", 9.99)

	mine, _, err := svc.Resolve(ctx, nil, "")
	require.NoError(t, err)
	theirs, _, err := svc.Resolve(ctx, nil, "")
	require.NoError(t, err)

	theirs, err = svc.AddItem(ctx, theirs, p.ID, 1)
	require.NoError(t, err)

	// An item id belonging to a different cart must not be reachable.
	_, err = svc.RemoveItem(ctx, mine, theirs.Items[0].ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestClear(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	p1 := seedProduct(t, db, "a", 1)
	p2 := seedProduct(t, db, "b", 2)

	cart, _, err := svc.Resolve(ctx, nil, "")
	require.NoError(t, err)
	cart, err = svc.AddItem(ctx, cart, p1.ID, 1)
	require.NoError(t, err)
	cart, err = svc.AddItem(ctx, cart, p2.ID, 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)

	cart, err = svc.Clear(ctx, cart)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestMerge_FoldsQuantitiesAndDeletesAnonCart(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	u := seedUser(t, db)

	shared := seedProduct(t, db, "shared", 5)
	only := seedProduct(t, db, "only-anon", 7)

	userCart, _, err := svc.Resolve(ctx, &tokens.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}, "")
	require.NoError(t, err)
	userCart, err = svc.AddItem(ctx, userCart, shared.ID, 1)
	require.NoError(t, err)

	anonCart, sid, err := svc.Resolve(ctx, nil, "")
	require.NoError(t, err)
	anonCart, err = svc.AddItem(ctx, anonCart, shared.ID, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, anonCart, only.ID, 4)
	require.NoError(t, err)

	merged, err := svc.Merge(ctx, u.ID, sid)
	require.NoError(t, err)
	require.Len(t, merged.Items, 2)

	byProduct := map[uuid.UUID]int{}
	for _, it := range merged.Items {
		byProduct[it.ProductID] = it.Quantity
	}
	assert.Equal(t, 3, byProduct[shared.ID])
	assert.Equal(t, 4, byProduct[only.ID])

	_, err = NewGormStore(db).CartBySession(ctx, sid)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestMerge_MissingAnonCart(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	u := seedUser(t, db)

	cart, err := svc.Merge(ctx, u.ID, "no-such-session")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestDeleteExpired(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	store := NewGormStore(db)
	p := seedProduct(t, db, "widget", 9.99)
	u := seedUser(t, db)

	expired, sid, err := svc.Resolve(ctx, nil, "")
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, expired, p.ID, 1)
	require.NoError(t, err)
	past := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(&models.Cart{}).Where("id = ?", expired.ID).Update("expires_at", past).Error)

	live, _, err := svc.Resolve(ctx, nil, "")
	require.NoError(t, err)
	userCart, _, err := svc.Resolve(ctx, &tokens.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}, "")
	require.NoError(t, err)

	n, err := store.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.CartBySession(ctx, sid)
	require.ErrorIs(t, err, errs.ErrNotFound)
	_, err = store.CartWithItems(ctx, live.ID)
	require.NoError(t, err)
	_, err = store.CartWithItems(ctx, userCart.ID)
	require.NoError(t, err)

	var orphans int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("cart_id = ?", expired.ID).Count(&orphans).Error)
	assert.Zero(t, orphans)
}
