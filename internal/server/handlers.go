package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Sla0ui/siteintel/internal/models"
	"github.com/Sla0ui/siteintel/internal/pipeline"
)

// Runner executes extraction runs.
type Runner interface {
	Run(ctx context.Context, url string) (*models.SingleResult, error)
	RunBulk(ctx context.Context, urls []string, emit pipeline.EmitFunc) error
}

// SecurityScanner audits a URL.
type SecurityScanner interface {
	Scan(ctx context.Context, url string) (*models.SecurityScanResult, error)
}

// ExtractRequest is the body of POST /api/extract and POST /api/security.
type ExtractRequest struct {
	URL string `json:"url"`
}

// BulkRequest is the body of POST /api/extract/bulk.
type BulkRequest struct {
	URLs []string `json:"urls"`
}

// Handlers serves the API endpoints.
type Handlers struct {
	runner  Runner
	scanner SecurityScanner
	logger  *zap.Logger
}

// Health handles GET /healthz.
func (h *Handlers) Health(c echo.Context) error {
	return Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
}

// Extract handles POST /api/extract.
func (h *Handlers) Extract(c echo.Context) error {
	var req ExtractRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		return Error(c, http.StatusBadRequest, "url is required")
	}

	result, err := h.runner.Run(c.Request().Context(), req.URL)
	if err != nil {
		return Error(c, statusFor(err), err.Error())
	}
	return Success(c, http.StatusOK, "extraction complete", result)
}

// Security handles POST /api/security.
func (h *Handlers) Security(c echo.Context) error {
	var req ExtractRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		return Error(c, http.StatusBadRequest, "url is required")
	}

	result, err := h.scanner.Scan(c.Request().Context(), req.URL)
	if err != nil {
		return Error(c, statusFor(err), err.Error())
	}
	return Success(c, http.StatusOK, "security scan complete", result)
}

// ExtractBulk handles POST /api/extract/bulk. Progress is streamed as
// server-sent events; the stream starts with the first event, so request
// errors detected before it still get a JSON error response.
func (h *Handlers) ExtractBulk(c echo.Context) error {
	var req BulkRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	res := c.Response()
	emit := func(ev models.BulkEvent) error {
		if !res.Committed {
			res.Header().Set(echo.HeaderContentType, "text/event-stream")
			res.Header().Set("Cache-Control", "no-cache")
			res.Header().Set("Connection", "keep-alive")
			res.WriteHeader(http.StatusOK)
		}
		return writeEvent(res, ev)
	}

	err := h.runner.RunBulk(c.Request().Context(), req.URLs, emit)
	if err == nil {
		return nil
	}
	if !res.Committed {
		return Error(c, statusFor(err), err.Error())
	}

	// Mid-stream failures can only be logged; the client sees the stream end.
	h.logger.Warn("bulk stream ended early",
		zap.String("request_id", RequestIDFromContext(c)),
		zap.Error(err),
	)
	return nil
}

// writeEvent frames ev as "event: <type>\ndata: <json>\n\n" and flushes it.
func writeEvent(res *echo.Response, ev models.BulkEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	res.Flush()
	return nil
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var fetchErr *models.FetchError
	var scanErr *models.ScanError
	switch {
	case errors.Is(err, models.ErrInvalidURL),
		errors.Is(err, models.ErrNoURLs),
		errors.Is(err, models.ErrTooManyURLs):
		return http.StatusBadRequest
	case errors.As(err, &fetchErr):
		if fetchErr.Reason == "timeout" {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	case errors.As(err, &scanErr):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled):
		return 499
	default:
		return http.StatusInternalServerError
	}
}
