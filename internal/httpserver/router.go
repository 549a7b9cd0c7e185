package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/skvortsovm/shop-backend/internal/events"
	"github.com/skvortsovm/shop-backend/internal/middleware"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	UserHandler    *UserHTTP
	CartHandler    *CartHTTP
	OrderHandler   *OrderHTTP
	CatalogHandler *CatalogHTTP
	Hub            *events.Hub
	AccessSecret   []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	authMW := middleware.NewAuth(d.AccessSecret)

	a := e.Group("/auth")
	a.POST("/login", d.AuthHandler.Login)
	a.POST("/logout", d.AuthHandler.Logout, authMW.Require)

	u := e.Group("/users")
	u.POST("/register", d.AuthHandler.Register)
	u.POST("/refresh", d.AuthHandler.Refresh)
	u.GET("/:id", d.UserHandler.Get, authMW.Require)
	u.PATCH("/:id", d.UserHandler.Update, authMW.Require)
	u.DELETE("/:id", d.UserHandler.Delete, authMW.Require)

	crt := e.Group("/cart", authMW.Optional)
	crt.GET("", d.CartHandler.GetCart)
	crt.POST("", d.CartHandler.GetCart)
	crt.DELETE("", d.CartHandler.Clear)
	crt.POST("/items", d.CartHandler.AddItem)
	crt.PATCH("/items/:itemId", d.CartHandler.UpdateItem)
	crt.DELETE("/items/:itemId", d.CartHandler.RemoveItem)
	crt.POST("/merge", d.CartHandler.Merge, authMW.Require)

	o := e.Group("/orders")
	o.POST("", d.OrderHandler.Create, authMW.Optional)
	o.GET("", d.OrderHandler.ListOwn, authMW.Optional)
	o.GET("/admin", d.OrderHandler.ListAll, authMW.RequireAdmin)
	o.GET("/admin/has-new", d.OrderHandler.HasNew, authMW.RequireAdmin)
	o.GET("/:id", d.OrderHandler.Get, authMW.Optional)
	o.PATCH("/:id/status", d.OrderHandler.UpdateStatus, authMW.RequireAdmin)

	p := e.Group("/products")
	p.GET("", d.CatalogHandler.ListProducts)
	p.GET("/search", d.CatalogHandler.SearchProducts)
	p.GET("/:id", d.CatalogHandler.GetProduct)
	p.POST("", d.CatalogHandler.CreateProduct, authMW.RequireAdmin)
	p.PATCH("/:id", d.CatalogHandler.UpdateProduct, authMW.RequireAdmin)
	p.DELETE("/:id", d.CatalogHandler.DeleteProduct, authMW.RequireAdmin)

	cat := e.Group("/categories")
	cat.GET("", d.CatalogHandler.ListCategories)
	cat.GET("/:id", d.CatalogHandler.GetCategory)
	cat.POST("", d.CatalogHandler.CreateCategory, authMW.RequireAdmin)
	cat.PATCH("/:id", d.CatalogHandler.UpdateCategory, authMW.RequireAdmin)
	cat.DELETE("/:id", d.CatalogHandler.DeleteCategory, authMW.RequireAdmin)

	if d.Hub != nil {
		e.GET("/ws/orders", func(c echo.Context) error {
			return d.Hub.Serve(c.Response(), c.Request())
		})
	}
}
