package httpserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/skvortsovm/shop-backend/internal/auth"
	"github.com/skvortsovm/shop-backend/internal/cart"
	"github.com/skvortsovm/shop-backend/internal/catalog"
	"github.com/skvortsovm/shop-backend/internal/events"
	"github.com/skvortsovm/shop-backend/internal/models"
	"github.com/skvortsovm/shop-backend/internal/order"
	"github.com/skvortsovm/shop-backend/internal/user"
)

var (
	testAccessSecret  = []byte("test-jwt-secret")
	testRefreshSecret = []byte("test-refresh-secret")
)

type testEnv struct {
	e  *echo.Echo
	db *gorm.DB
}

// newTestEnv wires the whole HTTP surface against an in-memory database.
// No redis, kafka, websocket hub or search index is attached; those paths
// degrade to no-ops.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	authSvc := auth.NewService(auth.NewGormStore(db), testAccessSecret, testRefreshSecret)
	cartSvc := cart.NewService(cart.NewGormStore(db))
	orderSvc := order.NewService(order.NewGormStore(db), &events.Fanout{}, nil)
	userSvc := user.NewService(user.NewGormStore(db))
	catalogSvc := catalog.NewService(catalog.NewGormStore(db), nil)

	e := echo.New()
	Register(e, &Deps{
		AuthHandler:    &AuthHTTP{Svc: authSvc, CartSvc: cartSvc},
		UserHandler:    &UserHTTP{Svc: userSvc},
		CartHandler:    &CartHTTP{Svc: cartSvc},
		OrderHandler:   &OrderHTTP{Svc: orderSvc},
		CatalogHandler: &CatalogHTTP{Svc: catalogSvc},
		AccessSecret:   testAccessSecret,
	})

	return &testEnv{e: e, db: db}
}

func (env *testEnv) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func bearer(token string) map[string]string {
	return map[string]string{echo.HeaderAuthorization: "Bearer " + token}
}

type registeredUser struct {
	ID           string
	AccessToken  string
	RefreshToken string
}

func (env *testEnv) register(t *testing.T, email, password, role string) registeredUser {
	t.Helper()

	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
		"name":     "Test User",
		"phone":    "+100",
		"role":     role,
	})
	require.NoError(t, err)

	rec := env.do(t, http.MethodPost, "/users/register", string(body), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	decode(t, rec, &resp)
	require.NotEmpty(t, resp.User.ID)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)

	return registeredUser{ID: resp.User.ID, AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}
}

func (env *testEnv) seedProduct(t *testing.T, name string, price float64) *models.Product {
	t.Helper()

	p := &models.Product{Name: name, Price: price}
	require.NoError(t, env.db.Create(p).Error)
	return p
}
