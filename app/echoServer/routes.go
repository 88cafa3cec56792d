package echoServer

import (
	"net/http"

	"quickrent/app/echoServer/controller/auth"
	"quickrent/app/echoServer/controller/item"
	"quickrent/app/echoServer/controller/moderation"
	"quickrent/app/echoServer/controller/payment"
	"quickrent/app/echoServer/controller/rental"
	"quickrent/app/echoServer/controller/wishlist"
	"quickrent/app/echoServer/jwtx"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth       *auth.Controller
	Item       *item.Controller
	Rental     *rental.Controller
	Payment    *payment.Controller
	Wishlist   *wishlist.Controller
	Moderation *moderation.Controller
	JWTSecret  string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)

	// gateway callback, authenticated by its shared token
	pub.POST("/payments/callback", c.Payment.HandleCallback)

	// Auth
	authed := e.Group("/v1")
	authed.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(c.JWTSecret),
		TokenLookup: "header:Authorization:Bearer ",
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return jwt.MapClaims{}
		},
	}))

	// Items
	authed.GET("/items", c.Item.List)
	authed.GET("/items/:id", c.Item.Detail)
	authed.POST("/items", c.Item.Create)
	authed.DELETE("/items/:id", c.Item.Delete)

	// Rentals
	authed.POST("/rentals", c.Rental.Create)
	authed.GET("/rentals/my", c.Rental.MyRentals)
	authed.GET("/rentals/owned", c.Rental.OwnedRentals)
	authed.PATCH("/rentals/:id/status", c.Rental.UpdateStatus)
	authed.POST("/rentals/:id/cancel", c.Rental.Cancel)
	authed.DELETE("/rentals/:id", c.Rental.Delete)
	authed.POST("/rentals/:id/verification", c.Moderation.SubmitVerification)

	// Payments
	authed.GET("/payments/my", c.Payment.MyEarnings)

	// Wishlist
	authed.GET("/wishlist", c.Wishlist.List)
	authed.POST("/wishlist/:itemId", c.Wishlist.Add)
	authed.DELETE("/wishlist/:itemId", c.Wishlist.Remove)

	// Reports
	authed.POST("/reports", c.Moderation.FileReport)

	// Admin area
	admin := authed.Group("/admin", RequireAdmin)
	admin.GET("/reports", c.Moderation.ListOpenReports)
	admin.PATCH("/reports/:id", c.Moderation.ResolveReport)
	admin.GET("/verifications", c.Moderation.ListPendingVerifications)
	admin.PATCH("/verifications/:id", c.Moderation.ReviewVerification)
	admin.GET("/activity", c.Moderation.ListActivity)
	admin.PATCH("/payments/:id/status", c.Payment.UpdateStatus)
}

func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !jwtx.IsAdmin(c) {
			return c.JSON(http.StatusForbidden, echo.Map{"message": "admin only"})
		}
		return next(c)
	}
}
