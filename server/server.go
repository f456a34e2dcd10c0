// Package server exposes the analysis service over HTTP.
package server

import (
	"github.com/gin-gonic/gin"

	"github.com/seo-optimizer/tagscope/logging"
	"github.com/seo-optimizer/tagscope/middleware"
	"github.com/seo-optimizer/tagscope/service"
	"github.com/seo-optimizer/tagscope/stats"
)

type Options struct {
	Service  *service.Service
	Requests *logging.Statistics
	// Monthly may be nil, in which case /api/statistics omits the counters.
	Monthly     *stats.Storage
	RateLimiter *middleware.RateLimiter
}

// New builds the gin router with all middleware and API routes.
func New(opts Options) *gin.Engine {
	h := &handlers{
		svc:      opts.Service,
		requests: opts.Requests,
		monthly:  opts.Monthly,
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORS())
	if opts.RateLimiter != nil {
		r.Use(opts.RateLimiter.RateLimit())
	}
	if opts.Requests != nil {
		r.Use(middleware.Stats(opts.Requests))
	}

	// API routes
	api := r.Group("/api")
	{
		api.GET("/health", h.health)

		api.POST("/analyze", h.analyze)
		api.GET("/recent-analyses", h.recentAnalyses)
		api.GET("/analyses", h.analysisByURL)
		api.GET("/analyses/:id", h.analysisByID)

		api.GET("/statistics", h.statistics)
	}

	return r
}
