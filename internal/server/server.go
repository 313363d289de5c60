package server

import (
	"context"
	"encoding/gob"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"teamup-backend/internal/cache"
	"teamup-backend/internal/common"
	"teamup-backend/internal/config"
	"teamup-backend/internal/email"
	"teamup-backend/internal/handlers"
	"teamup-backend/internal/matching"
	"teamup-backend/internal/notifications"
	"teamup-backend/internal/store"

	"github.com/go-playground/validator"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"github.com/markbates/goth/providers/slack"
	"github.com/redis/go-redis/v9"
	resend "github.com/resend/resend-go/v2"
	"github.com/wader/gormstore/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// CustomValidator Source: https://echo.labstack.com/docs/request#validate-data
type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// SentryLogger reports everything logged at error level to Sentry.
type SentryLogger struct {
	echo.Logger
}

func (l *SentryLogger) Error(i ...interface{}) {
	if err, ok := i[0].(error); ok {
		handlers.CaptureError(err)
	} else {
		handlers.CaptureError(fmt.Errorf("%v", i...))
	}
	l.Logger.Error(i...)
}

func (l *SentryLogger) Errorf(format string, args ...interface{}) {
	handlers.CaptureError(fmt.Errorf(format, args...))
	l.Logger.Errorf(format, args...)
}

type Server struct {
	common.ServerState
	teamCache *cache.RedisTeamCache
}

func New(cfg *config.Config) *Server {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}
	e.Logger = &SentryLogger{Logger: e.Logger}
	e.Logger.SetLevel(log.DEBUG)
	if !cfg.Server.Debug {
		e.Logger.SetLevel(log.INFO)
	}

	return &Server{
		ServerState: common.ServerState{
			Echo:   e,
			Config: cfg,
		},
	}
}

func (s *Server) Initialize() error {
	if err := s.setupDatabase(); err != nil {
		return err
	}

	s.setupRedis()

	s.JwtIssuer = handlers.NewJwtAuth(s.Config.Auth.SessionSecret)

	s.setupEmailClient()
	s.setupMatching()
	s.setupSessionStore()

	if err := s.runMigrations(); err != nil {
		return err
	}

	s.setupGothProviders()
	s.setupRoutes()

	// Keep last to avoid Recover middleware and panic if something goes wrong on init
	s.setupMiddleware()

	return nil
}

func (s *Server) setupDatabase() error {
	dsn := s.Config.Database.DSN
	if dsn == "" {
		return fmt.Errorf("DATABASE_DSN environment variable is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(s.Config.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(s.Config.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(s.Config.Database.ConnMaxLifetime)

	pg := store.NewPostgres(db)
	pg.SetLogger(s.Echo.Logger)

	s.DB = db
	s.Store = pg
	return nil
}

// setupRedis connects the open teams cache. Without REDIS_URI every listing
// goes to the database.
func (s *Server) setupRedis() {
	url := s.Config.Database.RedisURI
	if url == "" {
		s.Echo.Logger.Warn("REDIS_URI not configured, team listings will not be cached")
		return
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		s.Echo.Logger.Fatalf("Invalid REDIS_URI: %v", err)
	}
	s.Redis = redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Redis.Ping(ctx).Err(); err != nil {
		s.Echo.Logger.Fatalf("Failed to connect to redis: %v", err)
	}

	s.teamCache = cache.NewRedisTeamCache(s.Redis, s.Config.Cache.TeamsTTL)
}

func (s *Server) setupEmailClient() {
	apiKey := s.Config.Resend.APIKey
	if apiKey == "" {
		s.Echo.Logger.Warn("RESEND_API_KEY not configured, email notifications will be disabled")
		return
	}

	s.EmailClient = email.NewResendEmailClient(resend.NewClient(apiKey),
		s.Config.Resend.DefaultSender,
		s.Config.AppURL(),
		s.Echo.Logger)
}

func (s *Server) setupMatching() {
	s.Notifications = notifications.NewDispatcher(s.Store, s.EmailClient,
		notifications.NewTelegram(s.Config), s.Echo.Logger)

	opts := []matching.Option{
		matching.WithNotifier(s.Notifications),
		matching.WithLogger(s.Echo.Logger),
	}
	if s.teamCache != nil {
		opts = append(opts, matching.WithCache(s.teamCache))
	}
	s.Matching = matching.NewService(s.Store, opts...)
}

func (s *Server) setupSessionStore() {
	sessions := gormstore.New(s.DB, []byte(s.Config.Auth.SessionSecret))
	sessions.SessionOpts.MaxAge = 60 * 60 * 24 * 30 // 30 days
	quit := make(chan struct{})
	go sessions.PeriodicCleanup(1*time.Hour, quit)

	// To solve securecookie: error - caused by: gob: type not registered for interface
	gob.Register(map[string]interface{}{})

	s.Sessions = sessions
}

func (s *Server) runMigrations() error {
	if err := s.DB.AutoMigrate(store.Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Server) setupMiddleware() {
	s.Echo.Use(middleware.CORS())
	s.Echo.Use(session.Middleware(s.Sessions))
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(echoprometheus.NewMiddleware("teamup_backend"))
}

func (s *Server) setupGothProviders() {
	gothic.Store = s.Sessions

	goth.UseProviders(
		google.New(s.Config.Auth.GoogleKey, s.Config.Auth.GoogleSecret, s.Config.Auth.GoogleRedirect, "email", "profile", "openid"),
		slack.New(s.Config.Auth.SlackKey, s.Config.Auth.SlackSecret, s.Config.Auth.SlackRedirect, "users:read", "users:read.email", "team:read"),
	)
}

func (s *Server) setupRoutes() {
	handlers.SetupSentry(s.Echo, s.Config)

	// Serve static files
	s.Echo.Static("/static", "web/static")

	api := s.Echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
	api.GET("/metrics", echoprometheus.NewHandler())

	handlers.RegisterAPI(api, &s.ServerState)

	// SPA handler - serve index.html for all other routes
	s.Echo.GET("/*", func(c echo.Context) error {
		if strings.HasPrefix(c.Request().URL.Path, "/api") {
			return echo.NewHTTPError(http.StatusNotFound, "API endpoint not found")
		}
		return c.File("web/web-app.html")
	})
}

func (s *Server) Start() error {
	serverURL := s.Config.Server.Host + ":" + s.Config.Server.Port

	if s.Config.Server.TLS.Enabled {
		if _, err := os.Stat(s.Config.Server.TLS.CertFile); os.IsNotExist(err) {
			s.Echo.Logger.Warn("TLS certificate file not found, falling back to HTTP")
			return s.Echo.Start(serverURL)
		}
		if _, err := os.Stat(s.Config.Server.TLS.KeyFile); os.IsNotExist(err) {
			s.Echo.Logger.Warn("TLS key file not found, falling back to HTTP")
			return s.Echo.Start(serverURL)
		}
		return s.Echo.StartTLS(serverURL, s.Config.Server.TLS.CertFile, s.Config.Server.TLS.KeyFile)
	}

	return s.Echo.Start(serverURL)
}
