package echoServer

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/vidya365/rental/app/echoServer/controller/auth"
	"github.com/vidya365/rental/app/echoServer/controller/checkout"
	"github.com/vidya365/rental/app/echoServer/controller/item"
	"github.com/vidya365/rental/app/echoServer/controller/order"
	"github.com/vidya365/rental/app/echoServer/controller/payment"
	"github.com/vidya365/rental/app/echoServer/controller/profile"
)

type C struct {
	Auth     *auth.Controller
	Item     *item.Controller
	Checkout *checkout.Controller
	Order    *order.Controller
	Payment  *payment.Controller
	Profile  *profile.Controller

	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)

	// Gateway confirmations arrive unauthenticated; the handler verifies
	// the payment signature instead.
	pub.POST("/payments/callback", c.Payment.Callback)
	pub.POST("/payments/webhook", c.Payment.Webhook)

	// Auth
	authed := e.Group("/v1")
	authed.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	authed.Use(extractClaims)

	// Catalog
	authed.GET("/items", c.Item.List)
	authed.GET("/items/:id", c.Item.Detail)

	// Profile
	authed.GET("/profile", c.Profile.Get)
	authed.PUT("/profile", c.Profile.Put)

	// Checkout steps
	authed.POST("/checkout/dates", c.Checkout.StartDates)
	authed.POST("/checkout/delivery", c.Checkout.SelectDelivery)
	authed.POST("/checkout/details", c.Checkout.SubmitDetails)
	authed.POST("/checkout/payment-method", c.Checkout.SelectPaymentMethod)

	// Orders
	authed.GET("/orders/my", c.Order.MyOrders)
	authed.GET("/orders/:id/receipt", c.Order.Receipt)

	// Admin
	admin := authed.Group("", RequireAdmin())
	admin.POST("/items", c.Item.Create)
	admin.POST("/items/:id/stock", c.Item.AddStock)
	admin.POST("/orders/:id/approve", c.Order.Approve)
	admin.POST("/orders/:id/reject", c.Order.Reject)
}

// extractClaims pulls user_id and role out of the verified token so
// handlers don't touch jwt types.
func extractClaims(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		tok, ok := ctx.Get("user").(*jwt.Token)
		if !ok || tok == nil {
			return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		}
		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		}

		sub, ok := claims["sub"].(float64)
		if !ok {
			return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		}
		ctx.Set("user_id", int64(sub))
		if role, ok := claims["role"].(string); ok {
			ctx.Set("role", role)
		}
		return next(ctx)
	}
}
