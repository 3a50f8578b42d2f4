// Package pipeline sequences fetch, parse and extraction into one scrape
// run and exports the resulting records.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aluiziolira/go-scrape-products/config"
	"github.com/aluiziolira/go-scrape-products/extract"
	"github.com/aluiziolira/go-scrape-products/models"
	"github.com/aluiziolira/go-scrape-products/parser"
	"github.com/aluiziolira/go-scrape-products/scraper"
)

// Pipeline runs Fetch -> Parse -> Extract for one URL at a time. It keeps
// no results between runs; every Run returns a Result owned by the caller.
// Independent instances may run concurrently.
type Pipeline struct {
	fetcher   scraper.Fetcher
	extractor *extract.Extractor
	metrics   *scraper.Metrics

	state   atomic.Int32
	running atomic.Bool
}

// NewPipeline builds a pipeline around fetcher. A nil extractor gets a
// default one; metrics may be nil.
func NewPipeline(fetcher scraper.Fetcher, extractor *extract.Extractor, metrics *scraper.Metrics) *Pipeline {
	if extractor == nil {
		extractor = extract.NewExtractor()
	}
	return &Pipeline{
		fetcher:   fetcher,
		extractor: extractor,
		metrics:   metrics,
	}
}

// State returns the step the pipeline is currently in.
func (p *Pipeline) State() models.State {
	return models.State(p.state.Load())
}

// Run scrapes rawURL with ext. A reachable page without matching entries
// yields a Result with Empty set and a nil error. Fetch and parse failures
// are returned as typed errors; no retry is attempted.
func (p *Pipeline) Run(ctx context.Context, rawURL string, ext config.ExtractionConfig) (*models.Result, error) {
	if !p.running.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer p.running.Store(false)

	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	p.setState(models.StateIdle)

	target, err := ValidateURL(rawURL)
	if err != nil {
		return nil, p.fail(err)
	}
	if err := ext.Validate(); err != nil {
		return nil, p.fail(ValidationError{Field: "extraction", Err: err})
	}

	p.setState(models.StateFetching)
	page, err := p.fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, p.fail(err)
	}

	p.setState(models.StateParsing)
	doc, err := parser.Parse(page)
	if err != nil {
		return nil, p.fail(err)
	}

	p.setState(models.StateExtracting)
	extraction, err := p.extractor.Extract(doc, ext)
	if err != nil {
		var selErr extract.SelectorError
		if errors.As(err, &selErr) {
			err = ValidationError{Field: "extraction", Err: err}
		}
		return nil, p.fail(err)
	}

	result := &models.Result{
		SourceURL: target,
		FinalURL:  page.FinalURL,
		Strategy:  page.Strategy,
		Fields:    ext.FieldNames(),
		Records:   extraction.Records,
		Skipped:   extraction.Skipped,
		Empty:     len(extraction.Records) == 0,
		FetchedAt: page.FetchedAt,
		Duration:  time.Since(start),
	}

	p.metrics.AddRecords(len(result.Records))
	p.metrics.AddSkipped(result.Skipped)
	if result.Empty {
		p.metrics.IncRun("empty")
		slog.Warn("no products matched",
			slog.String("url", target),
			slog.String("container", ext.ContainerSelector),
			slog.Int("containers", extraction.Matched),
		)
	} else {
		p.metrics.IncRun("success")
		slog.Info("scrape complete",
			slog.String("url", target),
			slog.Int("records", len(result.Records)),
			slog.Int("skipped", result.Skipped),
			slog.Duration("duration", result.Duration),
		)
	}
	p.setState(models.StateDone)
	return result, nil
}

// ValidateURL trims rawURL and checks it is an absolute http(s) URL.
func ValidateURL(rawURL string) (string, error) {
	target := strings.TrimSpace(rawURL)
	if target == "" {
		return "", ValidationError{Field: "url", Err: errors.New("url cannot be empty")}
	}

	parsed, err := url.Parse(target)
	if err != nil {
		return "", ValidationError{Field: "url", Err: err}
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", ValidationError{Field: "url", Err: errors.New("url must start with http:// or https://")}
	}
	if parsed.Host == "" {
		return "", ValidationError{Field: "url", Err: errors.New("url must include a host")}
	}
	return target, nil
}

func (p *Pipeline) setState(s models.State) {
	prev := models.State(p.state.Swap(int32(s)))
	if prev != s {
		slog.Debug("pipeline state", slog.String("from", prev.String()), slog.String("to", s.String()))
	}
}

func (p *Pipeline) fail(err error) error {
	p.setState(models.StateError)
	category, _ := Describe(nil, err)
	p.metrics.IncRun(string(category))
	return err
}
