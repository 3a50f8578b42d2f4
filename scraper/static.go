package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aluiziolira/go-scrape-products/config"
	"github.com/aluiziolira/go-scrape-products/models"
	"github.com/gocolly/colly/v2"
)

// StaticFetcher issues a single HTTP GET per page through a colly collector.
// A collector is built per call so no state is shared between fetches.
type StaticFetcher struct {
	cfg       *config.Config
	transport http.RoundTripper
	metrics   *Metrics
}

// NewStaticFetcher builds a static fetcher configured from cfg.
func NewStaticFetcher(cfg *config.Config, metrics *Metrics) *StaticFetcher {
	return &StaticFetcher{
		cfg: cfg,
		transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   cfg.Timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
		metrics: metrics,
	}
}

// WithTransport replaces the round tripper used by new collectors.
func (f *StaticFetcher) WithTransport(rt http.RoundTripper) *StaticFetcher {
	f.transport = rt
	return f
}

func (f *StaticFetcher) Name() string { return config.FetchStatic }

// Fetch retrieves url. Status codes outside 2xx are reported as
// ConnectivityError.
func (f *StaticFetcher) Fetch(ctx context.Context, url string) (*models.RawPage, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, f.fail(time.Now(), classifyError(url, err, 0))
	}

	collector := f.newCollector()

	var (
		page     *models.RawPage
		fetchErr error
	)

	collector.OnRequest(func(r *colly.Request) {
		for name, value := range f.cfg.Headers {
			r.Headers.Set(name, value)
		}
		slog.Debug("fetching page", slog.String("url", r.URL.String()), slog.String("strategy", f.Name()))
	})

	collector.OnResponse(func(r *colly.Response) {
		if err := classifyError(url, nil, r.StatusCode); err != nil {
			fetchErr = err
			return
		}
		if limit := f.cfg.MaxBodySize; limit > 0 && len(r.Body) >= limit {
			fetchErr = ConnectivityError{
				URL:    url,
				Reason: ReasonTooLarge,
				Err:    fmt.Errorf("response body reached the %d byte limit", limit),
			}
			return
		}
		page = &models.RawPage{
			URL:        url,
			FinalURL:   r.Request.URL.String(),
			Markup:     string(r.Body),
			StatusCode: r.StatusCode,
			Strategy:   f.Name(),
			FetchedAt:  time.Now(),
		}
	})

	collector.OnError(func(r *colly.Response, err error) {
		if fetchErr != nil {
			return
		}
		statusCode := 0
		if r != nil {
			statusCode = r.StatusCode
		}
		fetchErr = classifyError(url, err, statusCode)
	})

	start := time.Now()
	visitErr := collector.Visit(url)
	if fetchErr == nil && visitErr != nil {
		fetchErr = classifyError(url, visitErr, 0)
	}
	if fetchErr == nil && page == nil {
		fetchErr = ConnectivityError{URL: url, Reason: ReasonOther, Err: errors.New("no response received")}
	}
	if fetchErr != nil {
		return nil, f.fail(start, fetchErr)
	}

	f.metrics.IncRequest(f.Name(), "success")
	f.metrics.ObserveDuration(f.Name(), time.Since(start))
	return page, nil
}

func (f *StaticFetcher) newCollector() *colly.Collector {
	collector := colly.NewCollector(
		colly.UserAgent(f.cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.ParseHTTPErrorResponse = true
	collector.MaxBodySize = f.cfg.MaxBodySize
	collector.WithTransport(f.transport)
	collector.SetRequestTimeout(f.cfg.Timeout)
	return collector
}

func (f *StaticFetcher) fail(start time.Time, err error) error {
	category := errorTypeLabel(err)
	slog.Error("fetch failed",
		slog.String("strategy", f.Name()),
		slog.String("category", category),
		slog.Any("error", err),
	)
	f.metrics.IncRequest(f.Name(), "error")
	f.metrics.IncError(category)
	f.metrics.ObserveDuration(f.Name(), time.Since(start))
	return err
}
