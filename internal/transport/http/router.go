package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/lucasmoraes/shop-api/internal/handlers"
	"github.com/lucasmoraes/shop-api/internal/handlers/cart"
	"github.com/lucasmoraes/shop-api/internal/session"
)

type Deps struct {
	DB             *gorm.DB
	Sessions       *session.Service
	AuthHandler    *handlers.AuthHandler
	ProductHandler *handlers.ProductHandler
	CartHandler    *cart.CartHandler
	SearchHandler  *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	e.POST("/register", d.AuthHandler.Register)
	e.POST("/login", d.AuthHandler.Login)
	e.POST("/logout", d.AuthHandler.LogOut, d.Sessions.Middleware)

	products := e.Group("/api/products")

	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/search", d.SearchHandler.Search)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.POST("/add", d.ProductHandler.CreateProduct, d.Sessions.Middleware)
	products.PUT("/update/:id", d.ProductHandler.UpdateProduct, d.Sessions.Middleware)
	products.DELETE("/delete/:id", d.ProductHandler.DeleteProduct, d.Sessions.Middleware)

	cartGroup := e.Group("/api/cart", d.Sessions.Middleware)

	cartGroup.GET("", d.CartHandler.GetCart)
	cartGroup.GET("/checkout", d.CartHandler.Checkout)
	cartGroup.POST("/add/:id", d.CartHandler.AddToCart)
	cartGroup.POST("/remove/:id", d.CartHandler.RemoveFromCart)
}
