// Package pipeline sequences fetching and extraction for single URLs and bulk runs.
package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Sla0ui/siteintel/internal/extractor"
	"github.com/Sla0ui/siteintel/internal/logger"
	"github.com/Sla0ui/siteintel/internal/models"
)

// PageFetcher retrieves a page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*models.FetchResult, error)
}

// PageExtractor turns a page into an extraction result.
type PageExtractor interface {
	Extract(page *models.FetchResult) *models.ExtractionResult
}

// EmitFunc receives bulk events in order. Returning an error stops the run.
type EmitFunc func(models.BulkEvent) error

// Pipeline runs fetch-then-extract.
type Pipeline struct {
	fetcher   PageFetcher
	extractor PageExtractor
	config    *models.Config
	logger    *zap.Logger
}

// New creates a Pipeline.
func New(f PageFetcher, e PageExtractor, config *models.Config, l *zap.Logger) *Pipeline {
	return &Pipeline{
		fetcher:   f,
		extractor: e,
		config:    config,
		logger:    logger.OrNop(l),
	}
}

// ValidateURL checks that raw is an absolute http or https URL and returns it trimmed.
func ValidateURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", models.ErrInvalidURL, u.Scheme)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("%w: missing host", models.ErrInvalidURL)
	}
	return trimmed, nil
}

// Run fetches and extracts a single URL. A fetch failure is returned as is.
func (p *Pipeline) Run(ctx context.Context, rawURL string) (*models.SingleResult, error) {
	target, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	page, err := p.fetcher.Fetch(ctx, target)
	if err != nil {
		p.logger.Warn("fetch failed", zap.String("url", target), zap.Error(err))
		return nil, err
	}

	result := p.extractor.Extract(page)
	duration := time.Since(start)

	p.logger.Info("extraction complete",
		zap.String("url", target),
		zap.String("strategy", page.Strategy),
		zap.Duration("duration", duration),
	)

	return &models.SingleResult{
		URL:      target,
		Result:   result,
		Summary:  extractor.Summarize(result),
		Strategy: page.Strategy,
		Duration: duration,
	}, nil
}

// RunBulk processes urls one after another, emitting a start event, one
// progress event per URL and a complete event. Item failures, invalid URLs
// included, are reported as failed progress events; only context
// cancellation or an emit error ends the run early. Consecutive items are
// separated by config.BulkDelay, counted from the previous item's progress event.
func (p *Pipeline) RunBulk(ctx context.Context, urls []string, emit EmitFunc) error {
	if len(urls) == 0 {
		return models.ErrNoURLs
	}
	if len(urls) > p.config.MaxBulkURLs {
		return fmt.Errorf("%w: %d urls exceeds the limit of %d", models.ErrTooManyURLs, len(urls), p.config.MaxBulkURLs)
	}

	total := len(urls)
	if err := emit(models.BulkEvent{Type: models.EventStart, Total: total}); err != nil {
		return fmt.Errorf("emit start event: %w", err)
	}

	succeeded, failed := 0, 0

	for i, raw := range urls {
		delay := p.config.BulkDelay
		if i == 0 {
			delay = 0
		}
		if err := Pause(ctx, delay); err != nil {
			return fmt.Errorf("bulk run interrupted after %d of %d: %w", i, total, err)
		}

		event := p.process(ctx, raw)
		if event.Status == models.StatusSuccess {
			succeeded++
		} else {
			failed++
		}
		completed := i + 1
		event.Type = models.EventProgress
		event.Total = total
		event.Completed = completed
		event.Percent = completed * 100 / total

		if err := emit(event); err != nil {
			return fmt.Errorf("emit progress event: %w", err)
		}
	}

	p.logger.Info("bulk run complete",
		zap.Int("total", total),
		zap.Int("succeeded", succeeded),
		zap.Int("failed", failed),
	)

	complete := models.BulkEvent{
		Type:      models.EventComplete,
		Total:     total,
		Completed: total,
		Percent:   100,
		Succeeded: succeeded,
		Failed:    failed,
	}
	if err := emit(complete); err != nil {
		return fmt.Errorf("emit complete event: %w", err)
	}
	return nil
}

// process runs one bulk item and converts any failure into a failed event.
func (p *Pipeline) process(ctx context.Context, raw string) models.BulkEvent {
	single, err := p.Run(ctx, raw)
	if err != nil {
		return models.BulkEvent{URL: strings.TrimSpace(raw), Status: models.StatusFailed, Error: err.Error()}
	}
	return models.BulkEvent{URL: single.URL, Status: models.StatusSuccess, Result: single.Result}
}

// Pause blocks for d, measured from the call, or until ctx is done.
// A non-positive d only reports whether ctx is already done.
func Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	limiter := rate.NewLimiter(rate.Every(d), 1)
	limiter.Allow()
	return limiter.Wait(ctx)
}
