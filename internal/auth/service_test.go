package auth

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
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

	return NewService(NewGormStore(db), []byte("test-jwt-secret"), []byte("test-refresh-secret")), db
}

func TestRegisterAndAuthenticate(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "a@example.com", "secret", "Alice", "+100", "")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.NotEqual(t, "secret", u.PasswordHash)

	got, err := svc.Authenticate(ctx, "a@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestAuthenticate_UniformFailure(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@example.com", "secret", "", "", "")
	require.NoError(t, err)

	_, wrongPw := svc.Authenticate(ctx, "a@example.com", "nope")
	_, noUser := svc.Authenticate(ctx, "missing@example.com", "nope")

	require.ErrorIs(t, wrongPw, errs.ErrUnauthorized)
	require.ErrorIs(t, noUser, errs.ErrUnauthorized)
	// The two failure modes must be indistinguishable to the caller.
	assert.Equal(t, wrongPw.Error(), noUser.Error())
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@example.com", "secret", "", "", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "a@example.com", "other", "", "", "")
	require.ErrorIs(t, err, errs.ErrConflict)
}

func TestIssueSession_ClaimsAndHash(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "a@example.com", "secret", "", "", "admin")
	require.NoError(t, err)

	session, err := svc.IssueSession(ctx, u)
	require.NoError(t, err)

	claims, err := tokens.ClaimsFromToken(session.AccessToken, []byte("test-jwt-secret"))
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, u.ID.String(), claims.Subject)
	assert.WithinDuration(t, time.Now().Add(tokens.AccessTTL), claims.ExpiresAt.Time, 5*time.Second)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", u.ID).Error)
	require.NotNil(t, stored.RefreshHash)
	// Only the hash is persisted, never the token.
	assert.NotEqual(t, session.RefreshToken, *stored.RefreshHash)
}

func TestRotateAccessToken(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "a@example.com", "secret", "", "", "")
	require.NoError(t, err)
	session, err := svc.IssueSession(ctx, u)
	require.NoError(t, err)

	access, err := svc.RotateAccessToken(ctx, session.RefreshToken)
	require.NoError(t, err)

	claims, err := tokens.ClaimsFromToken(access, []byte("test-jwt-secret"))
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), claims.Subject)
}

func TestRotateAccessToken_Failures(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "a@example.com", "secret", "", "", "")
	require.NoError(t, err)
	session, err := svc.IssueSession(ctx, u)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token func() string
	}{
		{name: "garbage", token: func() string { return "not-a-token" }},
		{name: "access token used as refresh", token: func() string { return session.AccessToken }},
		{name: "after logout", token: func() string {
			require.NoError(t, svc.EndSession(ctx, u.ID))
			return session.RefreshToken
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RotateAccessToken(ctx, tt.token())
			require.ErrorIs(t, err, errs.ErrUnauthorized)
		})
	}
}

func TestRotateAccessToken_ReplayAfterReissue(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "a@example.com", "secret", "", "", "")
	require.NoError(t, err)

	first, err := svc.IssueSession(ctx, u)
	require.NoError(t, err)
	second, err := svc.IssueSession(ctx, u)
	require.NoError(t, err)

	// The newer session overwrote the stored hash; the older refresh
	// token is a replay now.
	_, err = svc.RotateAccessToken(ctx, first.RefreshToken)
	require.ErrorIs(t, err, errs.ErrUnauthorized)

	_, err = svc.RotateAccessToken(ctx, second.RefreshToken)
	require.NoError(t, err)
}
