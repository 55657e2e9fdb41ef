// Package server exposes extraction and security scans over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/Sla0ui/siteintel/internal/logger"
)

const shutdownTimeout = 10 * time.Second

// New builds the echo instance with middleware and routes registered.
func New(runner Runner, scanner SecurityScanner, l *zap.Logger) *echo.Echo {
	l = logger.OrNop(l)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(RequestID())
	e.Use(Logging(l))
	e.Use(echoMiddleware.Recover())

	Register(e, &Handlers{runner: runner, scanner: scanner, logger: l})
	return e
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, h *Handlers) {
	e.GET("/healthz", h.Health)

	api := e.Group("/api")
	api.POST("/extract", h.Extract)
	api.POST("/extract/bulk", h.ExtractBulk)
	api.POST("/security", h.Security)
}

// Serve runs e on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, e *echo.Echo, addr string, l *zap.Logger) error {
	l = logger.OrNop(l)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- e.Start(addr)
	}()
	l.Info("http server listening", zap.String("addr", addr))

	select {
	case <-ctx.Done():
		l.Info("shutting down http server")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
