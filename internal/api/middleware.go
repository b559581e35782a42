package api

import (
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/satorioh/dashop/internal/service"
)

// JwtCustomClaims is the token payload issued at login by the user
// service. The checkout API trusts it and never re-validates credentials.
type JwtCustomClaims struct {
	UserID int    `json:"user_id"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// AuthMiddleware authenticates /v1 routes with the shared HMAC secret.
func AuthMiddleware(secret []byte) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(JwtCustomClaims)
		},
		SigningKey: secret,
	})
}

func currentUserID(c echo.Context) (int, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return 0, service.ErrUnauthorized
	}
	claims, ok := token.Claims.(*JwtCustomClaims)
	if !ok || claims.UserID <= 0 {
		return 0, service.ErrUnauthorized
	}
	return claims.UserID, nil
}
