// Package cart resolves an inbound identity or anonymous session
// identifier into exactly one cart and owns every mutation on it. A user
// cart keeps at most one line item per product; anonymous carts expire
// 24 hours after creation.
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/skvortsovm/shop-backend/internal/errs"
	"github.com/skvortsovm/shop-backend/internal/logging"
	"github.com/skvortsovm/shop-backend/internal/models"
	"github.com/skvortsovm/shop-backend/internal/tokens"
)

const AnonymousTTL = 24 * time.Hour

type Store interface {
	CartWithItems(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	CartByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	CartBySession(ctx context.Context, sessionID string) (*models.Cart, error)
	CreateCart(ctx context.Context, c *models.Cart) error
	DeleteCart(ctx context.Context, id uuid.UUID) error
	LinkUserCart(ctx context.Context, userID, cartID uuid.UUID) error
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	ItemByID(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error)
	ItemByProduct(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error)
	SaveItem(ctx context.Context, item *models.CartItem) error
	DeleteItem(ctx context.Context, item *models.CartItem) error
	ClearItems(ctx context.Context, cartID uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service { return &Service{store: store} }

// Resolve returns the single cart for the caller, creating it lazily.
// The authenticated path never consults sessionID. On the anonymous path
// the (possibly newly generated) session identifier is returned so the
// caller can hand it back to the client. Resolution is idempotent.
func (s *Service) Resolve(ctx context.Context, ident *tokens.Identity, sessionID string) (*models.Cart, string, error) {
	if ident != nil {
		c, err := s.resolveUser(ctx, ident.UserID)
		return c, "", err
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	existing, err := s.store.CartBySession(ctx, sessionID)
	switch {
	case err == nil:
		if existing.ExpiresAt != nil && existing.ExpiresAt.Before(time.Now()) {
			// Expired but not yet reaped; treat as absent.
			if err := s.store.DeleteCart(ctx, existing.ID); err != nil {
				return nil, "", err
			}
		} else {
			cart, err := s.store.CartWithItems(ctx, existing.ID)
			return cart, sessionID, err
		}
	case !errors.Is(err, errs.ErrNotFound):
		return nil, "", err
	}

	exp := time.Now().Add(AnonymousTTL)
	cart := &models.Cart{SessionID: &sessionID, ExpiresAt: &exp}
	if err := s.store.CreateCart(ctx, cart); err != nil {
		return nil, "", err
	}
	cart, err = s.store.CartWithItems(ctx, cart.ID)
	return cart, sessionID, err
}

func (s *Service) resolveUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.CartID != nil {
		cart, err := s.store.CartWithItems(ctx, *user.CartID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, errs.ErrNotFound) {
			return nil, err
		}
		// Dangling reference; fall through and recover or create.
	}

	// The users.cart_id link can be lost or stale while the cart row
	// itself survives. Recover it by owner before creating a new one.
	if existing, err := s.store.CartByUser(ctx, userID); err == nil {
		if err := s.store.LinkUserCart(ctx, userID, existing.ID); err != nil {
			return nil, err
		}
		return s.store.CartWithItems(ctx, existing.ID)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	cart := &models.Cart{UserID: &userID}
	if err := s.store.CreateCart(ctx, cart); err != nil {
		return nil, err
	}
	if err := s.store.LinkUserCart(ctx, userID, cart.ID); err != nil {
		return nil, err
	}
	return s.store.CartWithItems(ctx, cart.ID)
}

// AddItem appends a line item, or increments the quantity when the cart
// already holds the product. The returned cart is re-read after the
// write.
func (s *Service) AddItem(ctx context.Context, cart *models.Cart, productID uuid.UUID, quantity int) (*models.Cart, error) {
	existing, err := s.store.ItemByProduct(ctx, cart.ID, productID)
	switch {
	case err == nil:
		existing.Quantity += quantity
		if err := s.store.SaveItem(ctx, existing); err != nil {
			return nil, err
		}
	case errors.Is(err, errs.ErrNotFound):
		item := &models.CartItem{CartID: cart.ID, ProductID: productID, Quantity: quantity}
		if err := s.store.SaveItem(ctx, item); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	return s.store.CartWithItems(ctx, cart.ID)
}

func (s *Service) UpdateItem(ctx context.Context, cart *models.Cart, itemID uuid.UUID, quantity int) (*models.Cart, error) {
	item, err := s.store.ItemByID(ctx, cart.ID, itemID)
	if err != nil {
		return nil, err
	}
	item.Quantity = quantity
	if err := s.store.SaveItem(ctx, item); err != nil {
		return nil, err
	}
	return s.store.CartWithItems(ctx, cart.ID)
}

func (s *Service) RemoveItem(ctx context.Context, cart *models.Cart, itemID uuid.UUID) (*models.Cart, error) {
	item, err := s.store.ItemByID(ctx, cart.ID, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteItem(ctx, item); err != nil {
		return nil, err
	}
	return s.store.CartWithItems(ctx, cart.ID)
}

func (s *Service) Clear(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if err := s.store.ClearItems(ctx, cart.ID); err != nil {
		return nil, err
	}
	return s.store.CartWithItems(ctx, cart.ID)
}

// Merge folds the anonymous cart identified by sessionID into the user's
// cart, adding quantities per the one-line-per-product invariant, then
// deletes the anonymous cart. A missing anonymous cart is not an error;
// the user cart is returned as-is.
func (s *Service) Merge(ctx context.Context, userID uuid.UUID, sessionID string) (*models.Cart, error) {
	l := logging.FromContext(ctx).With("svc", "cart.merge")

	userCart, err := s.resolveUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	anon, err := s.store.CartBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return userCart, nil
		}
		return nil, err
	}
	anon, err = s.store.CartWithItems(ctx, anon.ID)
	if err != nil {
		return nil, err
	}

	for i := range anon.Items {
		if _, err := s.AddItem(ctx, userCart, anon.Items[i].ProductID, anon.Items[i].Quantity); err != nil {
			return nil, fmt.Errorf("merge item %s: %w", anon.Items[i].ID, err)
		}
	}

	if err := s.store.DeleteCart(ctx, anon.ID); err != nil {
		return nil, err
	}
	l.Info("cart_merged", "session_id", sessionID, "items", len(anon.Items))

	return s.store.CartWithItems(ctx, userCart.ID)
}
