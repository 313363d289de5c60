package handlers

import (
	"fmt"
	"time"

	"teamup-backend/internal/common"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type JwtAuth struct {
	common.JwtAuth
}

func NewJwtAuth(secret string) *JwtAuth {
	return &JwtAuth{
		common.JwtAuth{
			Secret: secret,
		},
	}
}

func (j JwtAuth) GenerateToken(userID string) (string, error) {
	claims := common.JwtCustomClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 24 * 30)), // 30 days
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	t, err := token.SignedString([]byte(j.Secret))
	if err != nil {
		return "", err
	}

	return t, nil
}

func (j JwtAuth) config() echojwt.Config {
	return echojwt.Config{
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(common.JwtCustomClaims)
		},
		TokenLookup:   "header:Authorization:Bearer ,query:token",
		SigningKey:    []byte(j.Secret),
		SigningMethod: jwt.SigningMethodHS256.Name,
	}
}

func (j JwtAuth) Middleware() echo.MiddlewareFunc {
	return echojwt.WithConfig(j.config())
}

// OptionalMiddleware lets requests without a usable token through as
// anonymous. A bad token is treated like no token.
func (j JwtAuth) OptionalMiddleware() echo.MiddlewareFunc {
	config := j.config()
	config.ContinueOnIgnoredError = true
	config.ErrorHandler = func(c echo.Context, err error) error {
		return nil
	}
	return echojwt.WithConfig(config)
}

func (j JwtAuth) GetUserID(c echo.Context) (string, error) {
	u, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return "", fmt.Errorf("failed to get token from context")
	}

	claims, ok := u.Claims.(*common.JwtCustomClaims)
	if !ok {
		return "", fmt.Errorf("failed to parse JWT claims")
	}
	if claims.UserID == "" {
		return "", fmt.Errorf("token has no user id")
	}

	return claims.UserID, nil
}
