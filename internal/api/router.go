package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/teamhub/gatekeeper/internal/api/handler"
	"github.com/teamhub/gatekeeper/internal/api/middleware"
	"github.com/teamhub/gatekeeper/internal/core/service"
	"github.com/teamhub/gatekeeper/internal/infrastructure/config"
	mongodb "github.com/teamhub/gatekeeper/internal/infrastructure/db/mongo"
	redisdb "github.com/teamhub/gatekeeper/internal/infrastructure/db/redis"
	"github.com/teamhub/gatekeeper/internal/infrastructure/queue"
)

// NewRouter builds the Echo instance with the full middleware pipeline and
// all routes registered: session resolution first, then path authorization,
// then per-route role requirements.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, audit *queue.Dispatcher, log zerolog.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("gatekeeper"))

	// --- Dependencies ---
	hasher, err := service.NewHasher(cfg.Auth.HashDigest, cfg.Auth.HashIterations)
	if err != nil {
		return nil, err
	}
	locales, err := service.NewLocaleResolver(cfg.Session.DefaultLocale, cfg.Session.SupportedLocales)
	if err != nil {
		return nil, err
	}

	credentials := mongodb.NewCredentialRepository(db)
	sessions := redisdb.NewSessionStore(rdb, cfg.Session.TTL)

	sessionManager := service.NewSessionManager(credentials, sessions, hasher, locales, log)
	authorizer := service.NewPathAuthorizer(service.NewAuthzIndex(credentials, log), sessionManager, log)
	userService := service.NewUserService(credentials, hasher, log)
	throttle := service.NewLoginThrottle(cfg.Auth.LoginAttemptsPerMinute, cfg.Auth.LoginBurst)

	authHandler := handler.NewAuthHandler(sessionManager, throttle, audit, cfg.Session.CookieName, cfg.Session.TTL)
	userHandler := handler.NewUserHandler(userService)

	// --- Pipeline: session, then index-based authorization ---
	e.Use(middleware.Session(sessionManager, cfg.Session.CookieName))
	e.Use(middleware.Authorize(authorizer, audit))

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)
	e.GET("/auth/me", authHandler.Me)

	// --- User administration (also gated by the /admin/ function) ---
	e.POST("/admin/users", userHandler.Create)
	e.PUT("/admin/users/:key", userHandler.Update)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e, nil
}
