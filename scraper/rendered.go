package scraper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aluiziolira/go-scrape-products/config"
	"github.com/aluiziolira/go-scrape-products/models"
	"github.com/go-rod/rod"
)

// browserSession is one scripted browser owned by a single fetch.
type browserSession interface {
	Render(ctx context.Context, url string, settle time.Duration) (*renderedPage, error)
	Close() error
}

type renderedPage struct {
	HTML     string
	FinalURL string
}

type sessionLauncher func(ctx context.Context, cfg *config.Config) (browserSession, error)

// RenderedFetcher loads pages in a scripted browser so client-side rendering
// runs before the markup is captured. Each call launches its own session and
// releases it before returning, whatever the outcome.
type RenderedFetcher struct {
	cfg     *config.Config
	launch  sessionLauncher
	metrics *Metrics
}

// NewRenderedFetcher builds a rendered fetcher configured from cfg.
func NewRenderedFetcher(cfg *config.Config, metrics *Metrics) *RenderedFetcher {
	return &RenderedFetcher{
		cfg:     cfg,
		launch:  launchRodSession,
		metrics: metrics,
	}
}

func (f *RenderedFetcher) Name() string { return config.FetchRendered }

// Fetch launches a browser, loads url, waits the settle duration and
// captures the rendered markup.
func (f *RenderedFetcher) Fetch(ctx context.Context, url string) (*models.RawPage, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	start := time.Now()
	session, err := f.launch(ctx, f.cfg)
	if err != nil {
		return nil, f.fail(start, RenderError{URL: url, Stage: StageLaunch, Err: err})
	}
	f.metrics.SessionOpened()
	defer func() {
		if err := session.Close(); err != nil {
			slog.Warn("releasing browser session", slog.String("url", url), slog.Any("error", err))
		}
		f.metrics.SessionClosed()
	}()

	slog.Debug("rendering page", slog.String("url", url), slog.Duration("settle", f.cfg.SettleDuration))
	rendered, err := session.Render(ctx, url, f.cfg.SettleDuration)
	if err != nil {
		return nil, f.fail(start, classifyRenderError(url, err))
	}

	finalURL := rendered.FinalURL
	if finalURL == "" {
		finalURL = url
	}

	f.metrics.IncRequest(f.Name(), "success")
	f.metrics.ObserveDuration(f.Name(), time.Since(start))
	return &models.RawPage{
		URL:       url,
		FinalURL:  finalURL,
		Markup:    rendered.HTML,
		Strategy:  f.Name(),
		FetchedAt: time.Now(),
	}, nil
}

func (f *RenderedFetcher) fail(start time.Time, err error) error {
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

// classifyRenderError maps deadline and navigation failures to
// ConnectivityError and anything else to RenderError.
func classifyRenderError(url string, err error) error {
	stage := StageCapture
	var tagged stageError
	if errors.As(err, &tagged) {
		stage = tagged.Stage
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ConnectivityError{URL: url, Reason: ReasonTimeout, Err: err}
	}
	var navErr *rod.NavigationError
	if errors.As(err, &navErr) {
		return ConnectivityError{URL: url, Reason: ReasonConnection, Err: err}
	}
	return RenderError{URL: url, Stage: stage, Err: err}
}
