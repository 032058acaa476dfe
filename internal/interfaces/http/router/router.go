package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cuentia/backend/internal/infrastructure/auth"
	"github.com/cuentia/backend/internal/infrastructure/config"
	"github.com/cuentia/backend/internal/infrastructure/logger"
	"github.com/cuentia/backend/internal/interfaces/http/middleware"
)

// RouteRegistrar registers a handler's routes on a route group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// PublicRegistrar registers routes that bypass authentication
type PublicRegistrar interface {
	RegisterPublicRoutes(rg *gin.RouterGroup)
}

// Config holds everything the router needs to assemble the engine
type Config struct {
	AppConfig  *config.Config
	JWTService *auth.JWTService
	Logger     *zap.Logger
	// Public handlers are mounted on the engine root without authentication
	Public []PublicRegistrar
	// Webhook handlers skip JWT but live under the API prefix
	Webhooks []RouteRegistrar
	// API handlers require a valid access token
	API []RouteRegistrar
}

// New assembles the gin engine with the full middleware chain and all routes.
// Middleware order matters: request IDs must exist before logging, and body
// limits must apply before any handler reads the payload.
func New(cfg Config) *gin.Engine {
	if cfg.AppConfig.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	if len(cfg.AppConfig.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.AppConfig.HTTP.TrustedProxies)
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(cfg.Logger))
	engine.Use(logger.Recovery(cfg.Logger))
	engine.Use(middleware.CORSWithConfig(corsConfig(cfg.AppConfig)))
	engine.Use(middleware.Secure())
	engine.Use(middleware.BodyLimit(cfg.AppConfig.HTTP.MaxBodySize))

	root := engine.Group("")
	for _, registrar := range cfg.Public {
		registrar.RegisterPublicRoutes(root)
	}

	api := engine.Group("/api/v1")

	// Webhook routes verify their own signatures instead of bearer tokens
	for _, registrar := range cfg.Webhooks {
		registrar.RegisterRoutes(api)
	}

	jwtConfig := middleware.DefaultJWTConfig(cfg.JWTService)
	jwtConfig.Logger = cfg.Logger
	protected := api.Group("", middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	for _, registrar := range cfg.API {
		registrar.RegisterRoutes(protected)
	}

	return engine
}

// corsConfig builds the CORS middleware config from application settings
func corsConfig(cfg *config.Config) middleware.CORSConfig {
	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	return corsCfg
}
