package common

import (
	"teamup-backend/internal/config"
	"teamup-backend/internal/email"
	"teamup-backend/internal/matching"
	"teamup-backend/internal/notifications"
	"teamup-backend/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/wader/gormstore/v2"
	"gorm.io/gorm"
)

type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type JwtAuth struct {
	Secret string
}

type JWTIssuer interface {
	GenerateToken(userID string) (string, error)
	// Middleware rejects requests without a valid token.
	Middleware() echo.MiddlewareFunc
	// OptionalMiddleware parses a token when one is sent and lets anonymous
	// requests through.
	OptionalMiddleware() echo.MiddlewareFunc
	GetUserID(c echo.Context) (string, error)
}

type ServerState struct {
	Echo          *echo.Echo
	Config        *config.Config
	DB            *gorm.DB
	Store         store.Store
	Matching      *matching.Service
	Sessions      *gormstore.Store
	JwtIssuer     JWTIssuer
	Redis         *redis.Client
	EmailClient   email.EmailClient
	Notifications *notifications.Dispatcher
}
