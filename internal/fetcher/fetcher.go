// Package fetcher retrieves web pages with a fast HTTP path and a headless
// browser fallback, under a single overall deadline.
package fetcher

import (
	"context"
	"errors"
	"net/http"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/Sla0ui/siteintel/internal/logger"
	"github.com/Sla0ui/siteintel/internal/models"
)

// Fetcher implements the two-tier fetch strategy.
type Fetcher struct {
	config   *models.Config
	client   *http.Client
	renderer Renderer
	logger   *zap.Logger
}

// Option customizes a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the fast-path client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithRenderer replaces the browser fallback.
func WithRenderer(r Renderer) Option {
	return func(f *Fetcher) { f.renderer = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// New creates a Fetcher. Without options it uses NewHTTPClient and a
// BrowserRenderer built from config.
func New(config *models.Config, opts ...Option) *Fetcher {
	f := &Fetcher{config: config}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = logger.OrNop(f.logger)
	if f.client == nil {
		f.client = NewHTTPClient(config)
	}
	if f.renderer == nil {
		f.renderer = NewBrowserRenderer(config, f.logger)
	}
	return f
}

type outcome struct {
	result *models.FetchResult
	err    error
}

// Fetch returns the page at url or a *models.FetchError. The whole attempt,
// fast path and fallback together, is bounded by config.FetchDeadline; when
// the deadline wins the in-flight attempt is cancelled and abandoned.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*models.FetchResult, error) {
	deadlineCtx, cancel := context.WithTimeout(ctx, f.config.FetchDeadline)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		res, err := f.attempt(deadlineCtx, url)
		done <- outcome{result: res, err: err}
	}()

	select {
	case o := <-done:
		return o.result, o.err
	case <-deadlineCtx.Done():
		reason := "timeout"
		if errors.Is(deadlineCtx.Err(), context.Canceled) {
			reason = "cancelled"
		}
		f.logger.Warn("fetch abandoned", zap.String("url", url), zap.String("reason", reason))
		return nil, &models.FetchError{URL: url, Reason: reason, Err: deadlineCtx.Err()}
	}
}

func (f *Fetcher) attempt(ctx context.Context, url string) (*models.FetchResult, error) {
	fast, httpErr := f.fetchHTTP(ctx, url)
	if httpErr == nil && utf8.RuneCountInString(fast.PlainText) >= f.config.MinTextLength {
		f.logger.Debug("fast path succeeded", zap.String("url", url), zap.Int("text_length", len(fast.PlainText)))
		return fast, nil
	}

	if httpErr != nil {
		f.logger.Debug("fast path failed, rendering", zap.String("url", url), zap.Error(httpErr))
	} else {
		f.logger.Debug("fast path text too short, rendering",
			zap.String("url", url),
			zap.Int("text_length", utf8.RuneCountInString(fast.PlainText)),
		)
	}

	rendered, renderErr := f.renderer.Render(ctx, url)
	if renderErr == nil {
		return rendered, nil
	}

	if httpErr == nil && fast.PlainText != "" {
		f.logger.Warn("browser fallback failed, keeping short http result",
			zap.String("url", url),
			zap.Error(renderErr),
		)
		return fast, nil
	}

	return nil, &models.FetchError{
		URL:    url,
		Reason: "all fetch strategies failed",
		Err:    errors.Join(httpErr, renderErr),
	}
}
