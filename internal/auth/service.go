// Package auth owns the authentication session model: short-lived access
// tokens and longer-lived refresh tokens whose sha256 hash is the only
// server-side record. At most one refresh hash is stored per user, so
// issuing a new session invalidates every outstanding refresh token.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/skvortsovm/shop-backend/internal/errs"
	"github.com/skvortsovm/shop-backend/internal/hash"
	"github.com/skvortsovm/shop-backend/internal/logging"
	"github.com/skvortsovm/shop-backend/internal/models"
	"github.com/skvortsovm/shop-backend/internal/tokens"
)

// dummyHash keeps Authenticate's unknown-email path as expensive as the
// wrong-password path, so timing does not reveal whether the email exists.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type Store interface {
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	SetRefreshHash(ctx context.Context, id uuid.UUID, h *string) error
}

type Service struct {
	store         Store
	accessSecret  []byte
	refreshSecret []byte
}

func NewService(store Store, accessSecret, refreshSecret []byte) *Service {
	return &Service{store: store, accessSecret: accessSecret, refreshSecret: refreshSecret}
}

type Session struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

// Register creates a user with a bcrypt password hash. Duplicate email is
// reported as ErrConflict.
func (s *Service) Register(ctx context.Context, email, password, name, phone, role string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if role == "" {
		role = models.RoleUser
	}
	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Email:        email,
		Name:         name,
		Phone:        phone,
		PasswordHash: pwHash,
		Role:         role,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		l.Warn("register_error", "error", err)
		return nil, err
	}
	return user, nil
}

// Authenticate verifies email and password. Every failure collapses to
// ErrUnauthorized; callers cannot tell a missing user from a wrong
// password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		hash.CheckPassword(dummyHash, password)
		return nil, fmt.Errorf("%w: invalid credentials", errs.ErrUnauthorized)
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, fmt.Errorf("%w: invalid credentials", errs.ErrUnauthorized)
	}
	return user, nil
}

// IssueSession mints an access/refresh token pair and overwrites the
// stored refresh hash, invalidating any previously issued refresh token.
func (s *Service) IssueSession(ctx context.Context, user *models.User) (*Session, error) {
	l := logging.FromContext(ctx).With("svc", "auth.issue_session")

	accessExp := time.Now().Add(tokens.AccessTTL)
	accessToken, err := tokens.Sign(user.Email, user.ID.String(), user.Role, accessExp, s.accessSecret)
	if err != nil {
		l.Error("issue_session_error", "status", 500, "error", err)
		return nil, err
	}

	refreshExp := time.Now().Add(tokens.RefreshTTL)
	refreshToken, err := tokens.Sign(user.Email, user.ID.String(), user.Role, refreshExp, s.refreshSecret)
	if err != nil {
		l.Error("issue_session_error", "status", 500, "error", err)
		return nil, err
	}

	refreshHash := hash.Sha256Hex(refreshToken)
	if err := s.store.SetRefreshHash(ctx, user.ID, &refreshHash); err != nil {
		l.Error("issue_session_error", "status", 500, "error", err)
		return nil, err
	}

	return &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

// RotateAccessToken redeems a refresh token for a new access token. The
// refresh token itself is not rotated. Any failure (malformed token,
// expiry, unknown subject, cleared or superseded hash) is reported as
// the same ErrUnauthorized, so this endpoint leaks nothing about accounts.
func (s *Service) RotateAccessToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := tokens.ClaimsFromToken(refreshToken, s.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("%w: invalid refresh token", errs.ErrUnauthorized)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return "", fmt.Errorf("%w: invalid refresh token", errs.ErrUnauthorized)
	}

	user, err := s.store.UserByID(ctx, userID)
	if err != nil || user.RefreshHash == nil {
		return "", fmt.Errorf("%w: invalid refresh token", errs.ErrUnauthorized)
	}
	if !hash.EqualConstantTime(hash.Sha256Hex(refreshToken), *user.RefreshHash) {
		return "", fmt.Errorf("%w: invalid refresh token", errs.ErrUnauthorized)
	}

	accessExp := time.Now().Add(tokens.AccessTTL)
	accessToken, err := tokens.Sign(user.Email, user.ID.String(), user.Role, accessExp, s.accessSecret)
	if err != nil {
		return "", err
	}
	return accessToken, nil
}

// EndSession clears the stored refresh hash; every outstanding refresh
// token for the user becomes permanently unredeemable.
func (s *Service) EndSession(ctx context.Context, userID uuid.UUID) error {
	return s.store.SetRefreshHash(ctx, userID, nil)
}
