// Package api exposes the scrape pipeline over HTTP.
package api

import (
	"time"

	"github.com/aluiziolira/go-scrape-products/config"
	"github.com/aluiziolira/go-scrape-products/scraper"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// FetcherFactory builds the fetcher for one request. mode is a
// config.Fetch* strategy name.
type FetcherFactory func(mode string) (scraper.Fetcher, error)

// Server carries the dependencies shared by all handlers.
type Server struct {
	cfg        *config.Config
	extraction config.ExtractionConfig
	metrics    *scraper.Metrics
	fetchers   FetcherFactory
	startTime  time.Time
}

// NewServer builds a server. A nil factory selects fetchers through
// scraper.New with cfg and the requested mode.
func NewServer(cfg *config.Config, extraction config.ExtractionConfig, metrics *scraper.Metrics, fetchers FetcherFactory) *Server {
	if fetchers == nil {
		fetchers = func(mode string) (scraper.Fetcher, error) {
			perRequest := *cfg
			perRequest.FetchMode = mode
			return scraper.New(&perRequest, metrics)
		}
	}
	return &Server{
		cfg:        cfg,
		extraction: extraction,
		metrics:    metrics,
		fetchers:   fetchers,
		startTime:  time.Now(),
	}
}

// Router creates a gin engine with all routes.
//
// Routes:
//
//	POST /api/v1/scrape
//	GET  /api/v1/health
//	GET  /metrics
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())

	v1 := r.Group("/api/v1")
	v1.GET("/health", s.Health)
	v1.POST("/scrape", s.Scrape)

	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))
	}
	return r
}
