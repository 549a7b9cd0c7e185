// Package user owns profile reads and writes. Every operation takes the
// verified identity of the acting caller; ownership is self-or-admin and
// role changes are admin-only.
package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/skvortsovm/shop-backend/internal/errs"
	"github.com/skvortsovm/shop-backend/internal/hash"
	"github.com/skvortsovm/shop-backend/internal/models"
	"github.com/skvortsovm/shop-backend/internal/tokens"
)

type Store interface {
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	EmailTaken(ctx context.Context, email string, exclude uuid.UUID) (bool, error)
	SaveUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service { return &Service{store: store} }

func canAct(actor tokens.Identity, target uuid.UUID) error {
	if actor.Role == models.RoleAdmin || actor.UserID == target {
		return nil
	}
	return fmt.Errorf("%w: not the owner", errs.ErrForbidden)
}

func (s *Service) Get(ctx context.Context, actor tokens.Identity, id uuid.UUID) (*models.User, error) {
	if err := canAct(actor, id); err != nil {
		return nil, err
	}
	return s.store.UserByID(ctx, id)
}

type UpdateInput struct {
	Name     *string
	Phone    *string
	Email    *string
	Password *string
	Role     *string
}

func (s *Service) Update(ctx context.Context, actor tokens.Identity, id uuid.UUID, in UpdateInput) (*models.User, error) {
	if err := canAct(actor, id); err != nil {
		return nil, err
	}
	if in.Role != nil && actor.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: role changes are admin-only", errs.ErrForbidden)
	}

	u, err := s.store.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil && *in.Email != u.Email {
		taken, err := s.store.EmailTaken(ctx, *in.Email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("%w: email already registered", errs.ErrConflict)
		}
		u.Email = *in.Email
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Phone != nil {
		u.Phone = *in.Phone
	}
	if in.Password != nil {
		pwHash, err := hash.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = pwHash
	}
	if in.Role != nil {
		u.Role = *in.Role
	}

	if err := s.store.SaveUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Delete(ctx context.Context, actor tokens.Identity, id uuid.UUID) error {
	if err := canAct(actor, id); err != nil {
		return err
	}
	if _, err := s.store.UserByID(ctx, id); err != nil {
		return err
	}
	return s.store.DeleteUser(ctx, id)
}
