package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skvortsovm/shop-backend/internal/errs"
	"github.com/skvortsovm/shop-backend/internal/models"
)

type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{DB: db} }

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", errs.ErrNotFound, what)
	}
	return err
}

func (r *GormStore) CartWithItems(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var c models.Cart
	err := r.DB.WithContext(ctx).
		Preload("Items.Product").
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, notFound(err, "cart")
	}
	return &c, nil
}

func (r *GormStore) CartByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var c models.Cart
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&c).Error; err != nil {
		return nil, notFound(err, "cart")
	}
	return &c, nil
}

func (r *GormStore) CartBySession(ctx context.Context, sessionID string) (*models.Cart, error) {
	var c models.Cart
	if err := r.DB.WithContext(ctx).Where("session_id = ?", sessionID).First(&c).Error; err != nil {
		return nil, notFound(err, "cart")
	}
	return &c, nil
}

func (r *GormStore) CreateCart(ctx context.Context, c *models.Cart) error {
	if err := r.DB.WithContext(ctx).Create(c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: cart", errs.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *GormStore) DeleteCart(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Cart{}).Error
	})
}

func (r *GormStore) LinkUserCart(ctx context.Context, userID, cartID uuid.UUID) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("cart_id", cartID).Error
}

func (r *GormStore) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &u, nil
}

func (r *GormStore) ItemByID(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).
		Where("cart_id = ? AND id = ?", cartID, itemID).
		First(&item).Error
	if err != nil {
		return nil, notFound(err, "cart item")
	}
	return &item, nil
}

func (r *GormStore) ItemByProduct(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if err != nil {
		return nil, notFound(err, "cart item")
	}
	return &item, nil
}

func (r *GormStore) SaveItem(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Save(item).Error
}

func (r *GormStore) DeleteItem(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Delete(item).Error
}

func (r *GormStore) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	return r.DB.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

// DeleteExpired reaps anonymous carts whose expiry has passed, items
// included. User carts (session_id IS NULL) are never touched.
func (r *GormStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var reaped int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uuid.UUID
		if err := tx.Model(&models.Cart{}).
			Where("session_id IS NOT NULL AND expires_at < ?", now).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("cart_id IN ?", ids).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&models.Cart{})
		reaped = res.RowsAffected
		return res.Error
	})
	return reaped, err
}
