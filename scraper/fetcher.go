// Package scraper retrieves page markup with interchangeable fetch strategies.
package scraper

import (
	"context"
	"fmt"

	"github.com/aluiziolira/go-scrape-products/config"
	"github.com/aluiziolira/go-scrape-products/models"
)

// Fetcher retrieves the raw markup of a page.
type Fetcher interface {
	// Name returns the strategy identifier ("static" or "rendered").
	Name() string

	// Fetch retrieves url. Failures are ConnectivityError or RenderError.
	Fetch(ctx context.Context, url string) (*models.RawPage, error)
}

// New returns the fetch strategy selected by cfg.FetchMode.
func New(cfg *config.Config, metrics *Metrics) (Fetcher, error) {
	switch cfg.FetchMode {
	case config.FetchStatic:
		return NewStaticFetcher(cfg, metrics), nil
	case config.FetchRendered:
		return NewRenderedFetcher(cfg, metrics), nil
	default:
		return nil, fmt.Errorf("unsupported fetch mode: %s", cfg.FetchMode)
	}
}
