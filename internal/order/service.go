// Package order creates orders from the item snapshot submitted at
// checkout, numbers them, and advances them through the status set.
//
// Unit prices come from the caller's snapshot and are not re-derived from
// the catalog; only the total is computed server-side. Clients that quote
// stale prices get those prices. See DESIGN.md before changing this.
package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/skvortsovm/shop-backend/internal/errs"
	"github.com/skvortsovm/shop-backend/internal/events"
	"github.com/skvortsovm/shop-backend/internal/logging"
	"github.com/skvortsovm/shop-backend/internal/models"
)

type Store interface {
	CreateOrder(ctx context.Context, o *models.Order) error
	OrderNumberExists(ctx context.Context, number string) (bool, error)
	OrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	OrdersByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	AllOrders(ctx context.Context) ([]models.Order, error)
	SaveStatus(ctx context.Context, id uuid.UUID, status string) error
}

type Service struct {
	store Store
	pub   events.Publisher
	flag  *Flag
}

func NewService(store Store, pub events.Publisher, flag *Flag) *Service {
	return &Service{store: store, pub: pub, flag: flag}
}

type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice float64
}

type CreateInput struct {
	Items         []ItemInput
	Phone         string
	Address       string
	RecipientName string
}

// Create builds an order from the snapshot, numbers it and persists it
// with status pending. Input validation happens at the HTTP boundary, not
// here. The new-order event fans out best-effort after the write.
func (s *Service) Create(ctx context.Context, in CreateInput, userID *uuid.UUID) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.create")

	var total float64
	items := make([]models.OrderItem, 0, len(in.Items))
	for i := range in.Items {
		total += float64(in.Items[i].Quantity) * in.Items[i].UnitPrice
		items = append(items, models.OrderItem{
			ProductID: in.Items[i].ProductID,
			Quantity:  in.Items[i].Quantity,
			UnitPrice: in.Items[i].UnitPrice,
		})
	}

	order := &models.Order{
		UserID:        userID,
		Status:        models.OrderStatusPending,
		TotalPrice:    total,
		Phone:         in.Phone,
		Address:       in.Address,
		RecipientName: in.RecipientName,
		Items:         items,
	}

	if err := s.createNumbered(ctx, order); err != nil {
		return nil, err
	}

	order, err := s.store.OrderByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	l.Info("order_created", "order_id", order.ID, "number", order.Number, "total", order.TotalPrice)
	if s.pub != nil {
		s.pub.Publish(ctx, events.EventOrderNew, order)
	}
	s.flag.Set(ctx)

	return order, nil
}

// createNumbered draws random order numbers until one is free. The code
// space (36^4) is large against expected volume; the attempt cap guards
// the saturated case.
func (s *Service) createNumbered(ctx context.Context, order *models.Order) error {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		number, err := NewNumber()
		if err != nil {
			return err
		}

		taken, err := s.store.OrderNumberExists(ctx, number)
		if err != nil {
			return err
		}
		if taken {
			continue
		}

		order.Number = number
		err = s.store.CreateOrder(ctx, order)
		if err == nil {
			return nil
		}
		// A concurrent creation may have won the number between the
		// existence check and the insert; redraw.
		if errors.Is(err, errs.ErrConflict) {
			continue
		}
		return err
	}
	return fmt.Errorf("%w: order number space exhausted", errs.ErrResourceExhausted)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.store.OrderByID(ctx, id)
}

func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return s.store.OrdersByUser(ctx, userID)
}

// ListAll returns every order and clears the admin has-new flag.
func (s *Service) ListAll(ctx context.Context) ([]models.Order, error) {
	orders, err := s.store.AllOrders(ctx)
	if err != nil {
		return nil, err
	}
	s.flag.Clear(ctx)
	return orders, nil
}

// UpdateStatus moves the order to newStatus unconditionally; any
// enumerated status may follow any other. Membership in the enum is
// checked at the boundary. Idempotent for a repeated status.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus string) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.update_status")

	if _, err := s.store.OrderByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.store.SaveStatus(ctx, id, newStatus); err != nil {
		return nil, err
	}
	order, err := s.store.OrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	l.Info("order_status_updated", "order_id", id, "status", newStatus)
	if s.pub != nil {
		s.pub.Publish(ctx, events.EventOrderStatusUpdated, order)
	}
	return order, nil
}

func (s *Service) HasNew(ctx context.Context) (bool, error) {
	return s.flag.Has(ctx)
}
