package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/podfetch/authgate/docs"
	"github.com/podfetch/authgate/internal/api/handler"
	"github.com/podfetch/authgate/internal/api/middleware"
	"github.com/podfetch/authgate/internal/core/ports"
)

// Deps carries everything the router needs. Services are built by the caller.
type Deps struct {
	Auth       ports.AuthService
	Identities ports.IdentityService
	Guards     ports.Guards
	Proxy      middleware.Asserter

	Mode      middleware.Mode
	Cookie    handler.CookieConfig
	BasePath  string
	Readiness []handler.Dependency

	// Registry receives the HTTP request metrics and is served next to the
	// default registry. Nil registers them with the default registry.
	Registry *prometheus.Registry

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer = d.Registry
		gatherer = prometheus.Gatherers{d.Registry, prometheus.DefaultGatherer}
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "authgate",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Operational endpoints ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Readiness...)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are the stores up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	if d.BasePath != "" {
		docs.SwaggerInfo.BasePath = d.BasePath
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group(d.BasePath)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Cookie)
	api.POST("/auth/:username/login.json", authHandler.Login)
	api.POST("/auth/:username/logout.json", authHandler.Logout)

	// --- User management ---
	userHandler := handler.NewUserHandler(d.Identities)
	requireAdmin := middleware.RequireAdmin(d.Guards)

	users := api.Group("/users", middleware.Identity(d.Mode, d.Auth, d.Proxy))
	users.GET("", userHandler.List, requireAdmin)
	users.POST("", userHandler.Create, requireAdmin)
	users.GET("/me", userHandler.Me)
	users.PUT("/:username/role", userHandler.UpdateRole, requireAdmin)
	users.DELETE("/:username", userHandler.Delete, requireAdmin)

	// --- Forward-auth probes ---
	authorize := api.Group("/authorize", middleware.Identity(d.Mode, d.Auth, d.Proxy))
	authorize.GET("/admin", handler.Allow, requireAdmin)
	authorize.GET("/upload", handler.Allow, middleware.RequireAdminOrUploader(d.Guards))

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
