package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/agencia-oeste/viajes-api/internal/api/handler"
	"github.com/agencia-oeste/viajes-api/internal/api/middleware"
	"github.com/agencia-oeste/viajes-api/internal/core/domain"
	"github.com/agencia-oeste/viajes-api/internal/core/ports"
)

const bodyLimit = "1M"

// Deps is everything the router needs to wire handlers.
type Deps struct {
	Auth      ports.AuthService
	Requests  ports.TravelRequestService
	Federated ports.FederatedAuthService

	// Health lists the dependencies probed by /health/ready.
	Health  map[string]handler.Checker
	Version string
	Logger  zerolog.Logger

	CORSOrigins   []string
	AuthRateLimit float64
	SecureCookies bool

	// Registerer and Gatherer default to the prometheus globals.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds the Echo instance with middleware and all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echomiddleware.BodyLimit(bodyLimit))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "viajes",
		Subsystem:  "http",
		Registerer: deps.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	authHandler := handler.NewAuthHandler(deps.Auth)
	requestHandler := handler.NewTravelRequestHandler(deps.Requests)
	oauthHandler := handler.NewOAuthHandler(deps.Federated, deps.SecureCookies)
	healthHandler := handler.NewHealthHandler(deps.Version, deps.Health)

	e.GET("/", healthHandler.Root)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	limited := middleware.RateLimit(deps.AuthRateLimit)
	api.POST("/register", authHandler.Register, limited)
	api.POST("/login", authHandler.Login, limited)
	api.POST("/logout", authHandler.Logout)
	api.GET("/auth/github", oauthHandler.GitHubLogin)
	api.GET("/auth/github/callback", oauthHandler.GitHubCallback)

	secured := api.Group("", middleware.Auth(deps.Auth))
	secured.GET("/profile", authHandler.Profile)
	secured.GET("/clientes", requestHandler.Clients)

	requests := secured.Group("/solicitudes")
	requests.POST("", requestHandler.Create)
	requests.GET("", requestHandler.List)
	requests.GET("/stats", requestHandler.Stats)
	requests.GET("/next-id", requestHandler.NextID)
	requests.GET("/:id", requestHandler.Get)
	requests.PUT("/:id", requestHandler.Update)
	requests.DELETE("/:id", requestHandler.Delete, middleware.RBAC(deps.Auth, domain.RoleAgent))

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
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/health")
		},
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
