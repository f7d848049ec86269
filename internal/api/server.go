// Package api is the HTTP adapter over the generation use cases.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alexanderramin/goalplan/internal/config"
	"github.com/alexanderramin/goalplan/internal/metrics"
	"github.com/alexanderramin/goalplan/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"
)

type Deps struct {
	Plans         service.PlanService
	Regenerations service.RegenerationService
	Playground    service.PlaygroundService
	Logger        *slog.Logger
	// Metrics and Gatherer are optional; /metrics is only mounted with a Gatherer.
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	// ProviderAvailable is optional and backs the llm_available health field.
	ProviderAvailable func(ctx context.Context) bool
}

type Server struct {
	plans             service.PlanService
	regenerations     service.RegenerationService
	playground        service.PlaygroundService
	providerAvailable func(ctx context.Context) bool
}

// NewHandler builds the router wrapped in CORS.
func NewHandler(cfg config.ServerConfig, deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		plans:             deps.Plans,
		regenerations:     deps.Regenerations,
		playground:        deps.Playground,
		providerAvailable: deps.ProviderAvailable,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(logger, deps.Metrics))

	r.GET("/health", s.health)
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(deps.Gatherer)))
	}

	apiGroup := r.Group("/api", BodyLimit(cfg.MaxBodyBytes))
	apiGroup.POST("/resolve", s.resolve)
	apiGroup.POST("/generate", s.generate)
	apiGroup.POST("/generate/regenerate-task", s.regenerateTask)
	apiGroup.POST("/playground", s.playgroundRun)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
	})
	return c.Handler(r)
}
