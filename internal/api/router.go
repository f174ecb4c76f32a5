package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/universeos/dashboard/internal/api/handler"
	"github.com/universeos/dashboard/internal/api/middleware"
	"github.com/universeos/dashboard/internal/core/ports"
	"github.com/universeos/dashboard/internal/core/service"
)

// Dependencies carries the wired services the router exposes over HTTP.
type Dependencies struct {
	DB    *mongo.Database
	Redis *redis.Client

	JWTSecret string
	TokenTTL  time.Duration

	Sessions ports.SessionStore
	Config   ports.ConfigStore
	Layouts  ports.LayoutManager
	Catalog  *service.Catalog
	Centers  handler.CenterProvider
	Auditor  handler.Auditor

	Denylist interface {
		middleware.Denylist
		handler.Revoker
	}

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("dashboard"))

	// --- Handlers ---
	sessionHandler := handler.NewSessionHandler(deps.Sessions, deps.Denylist, deps.TokenTTL)
	layoutHandler := handler.NewLayoutHandler(deps.Layouts, deps.Catalog, deps.Auditor)
	notificationHandler := handler.NewNotificationHandler(deps.Centers)
	configHandler := handler.NewConfigHandler(deps.Config)
	catalogHandler := handler.NewCatalogHandler(deps.Catalog)

	// --- Public routes ---
	e.POST("/auth/login", sessionHandler.Login)

	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.DB, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	// --- Authenticated API ---
	v1 := e.Group("/v1", middleware.Auth(deps.JWTSecret, deps.Denylist))

	v1.GET("/session", sessionHandler.Current)
	v1.DELETE("/session", sessionHandler.Logout)
	v1.PATCH("/session/profile", sessionHandler.UpdateProfile)

	v1.GET("/catalog", catalogHandler.List)

	v1.GET("/layouts", layoutHandler.List)
	v1.GET("/layouts/active", layoutHandler.Active)
	v1.PUT("/layouts/:id", layoutHandler.Save)
	v1.POST("/layouts/:id/widgets", layoutHandler.AddWidget)
	v1.DELETE("/layouts/:id/widgets/:widget_id", layoutHandler.RemoveWidget)
	v1.GET("/layouts/:id/widgets/:widget_id/data", layoutHandler.WidgetData)
	v1.GET("/recommendations", layoutHandler.Recommendations)

	v1.GET("/notifications", notificationHandler.List)
	v1.DELETE("/notifications", notificationHandler.ClearAll)
	v1.POST("/notifications/:id/read", notificationHandler.MarkRead)
	v1.DELETE("/notifications/:id", notificationHandler.Clear)
	v1.PUT("/notifications/polling", notificationHandler.SetPaused)

	v1.GET("/config", configHandler.Snapshot)
	v1.GET("/config/flags/:flag", configHandler.FeatureFlag)
	v1.GET("/config/:name", configHandler.Get)
	v1.PUT("/config/:name", configHandler.Set, middleware.RequirePermission("system:configure"))

	return e
}
