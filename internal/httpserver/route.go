package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "github.com/salepoint/cashier/pkg/middleware/auth"
)

type Deps struct {
	CartHandler    *CartHTTP
	PaymentHandler *PaymentHTTP
	JWTSecret      []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	authMW := middleware.NewAuthMiddleware(d.JWTSecret)

	cart := e.Group("/cart")
	cart.Use(authMW.RequireAuth)

	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.DELETE("", d.CartHandler.ClearCart)
	cart.POST("/:id/increment", d.CartHandler.IncrementQuantity)
	cart.PATCH("/:id/increment", d.CartHandler.IncrementQuantity)
	cart.POST("/:id/decrement", d.CartHandler.DecrementQuantity)
	cart.PATCH("/:id/decrement", d.CartHandler.DecrementQuantity)
	cart.DELETE("/:id", d.CartHandler.RemoveFromCart)

	cart.GET("/payment", d.PaymentHandler.PaymentSummary)
	cart.POST("/payment", d.PaymentHandler.RecordPayment)
	cart.GET("/payment/:id", d.PaymentHandler.GetPayment)
}
