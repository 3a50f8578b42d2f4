package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aluiziolira/go-scrape-products/config"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

type rodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	cfg      *config.Config
}

func launchRodSession(ctx context.Context, cfg *config.Config) (browserSession, error) {
	l := launcher.New().
		Context(ctx).
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)
	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	l.Set(flags.Flag("disable-dev-shm-usage"))

	controlURL, err := l.Launch()
	if err != nil {
		if l.PID() != 0 {
			l.Kill()
		}
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	return &rodSession{launcher: l, browser: browser, cfg: cfg}, nil
}

func (s *rodSession) Render(ctx context.Context, url string, settle time.Duration) (*renderedPage, error) {
	page, err := s.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, stageError{Stage: StageOpen, Err: err}
	}

	if s.cfg.UserAgent != "" {
		if err := (proto.NetworkSetUserAgentOverride{UserAgent: s.cfg.UserAgent}).Call(page); err != nil {
			return nil, stageError{Stage: StageOpen, Err: err}
		}
	}
	if len(s.cfg.Headers) > 0 {
		if err := (proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(s.cfg.Headers)}).Call(page); err != nil {
			return nil, stageError{Stage: StageOpen, Err: err}
		}
	}

	if err := page.Navigate(url); err != nil {
		return nil, stageError{Stage: StageNavigate, Err: err}
	}
	if err := page.WaitLoad(); err != nil {
		return nil, stageError{Stage: StageNavigate, Err: err}
	}
	if err := settleFor(ctx, settle); err != nil {
		return nil, stageError{Stage: StageSettle, Err: err}
	}

	markup, err := page.HTML()
	if err != nil {
		return nil, stageError{Stage: StageCapture, Err: err}
	}

	rendered := &renderedPage{HTML: markup}
	if info, err := page.Info(); err == nil {
		rendered.FinalURL = info.URL
	}
	return rendered, nil
}

// Close shuts the browser down and removes its profile directory.
func (s *rodSession) Close() error {
	err := s.browser.Close()
	s.launcher.Kill()
	s.launcher.Cleanup()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}

func settleFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
