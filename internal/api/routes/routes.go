package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/gatewarden/gatewarden/internal/api/handlers"
	"github.com/gatewarden/gatewarden/internal/api/middleware"
	"github.com/gatewarden/gatewarden/internal/config"
	"github.com/gatewarden/gatewarden/internal/metrics"
	"github.com/gatewarden/gatewarden/internal/notify"
	"github.com/gatewarden/gatewarden/internal/pipeline"
	"github.com/gatewarden/gatewarden/internal/ratelimit"
	"github.com/gatewarden/gatewarden/internal/services"
)

// Deps bundles the shared components the route tree needs.
type Deps struct {
	DB       *gorm.DB
	Limiter  *ratelimit.Limiter
	Pipeline *pipeline.Pipeline
	Audit    *services.AuditService
	Notifier *notify.Notifier
}

// Register wires middleware and API routes onto the engine. The WAF gate
// runs first so every non-exempt request is decided before any handler.
func Register(router *gin.Engine, cfg config.Config, deps Deps) error {
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Recovery(cfg.Environment == "development"))
	router.Use(middleware.WAF(deps.Pipeline, deps.Notifier))

	registry := prometheus.NewRegistry()
	metrics.Register(registry)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	router.GET("/health", handlers.HealthHandler)

	authService, err := services.NewAuthService(cfg.AdminPassword, cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("init auth service: %w", err)
	}
	authHandler := handlers.NewAuthHandler(authService)

	admin := router.Group("/admin")
	admin.POST("/login", authHandler.Login)

	protected := admin.Group("/")
	protected.Use(middleware.Auth(authService))
	{
		handlers.NewDomainHandler(deps.DB).RegisterRoutes(protected)
		handlers.NewLogHandler(deps.Audit, services.NewDomainService(deps.DB)).RegisterRoutes(protected)
		handlers.NewPatternHandler(deps.DB).RegisterRoutes(protected)
		handlers.NewRateLimitHandler(deps.Limiter).RegisterRoutes(protected)
	}

	return nil
}
