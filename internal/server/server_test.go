package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sla0ui/siteintel/internal/models"
	"github.com/Sla0ui/siteintel/internal/pipeline"
)

type fakeRunner struct {
	runErr  error
	bulkErr error
	events  []models.BulkEvent
}

func (r *fakeRunner) Run(ctx context.Context, url string) (*models.SingleResult, error) {
	if r.runErr != nil {
		return nil, r.runErr
	}
	result := models.NewExtractionResult()
	result.Emails = []string{"hello@acme.test"}
	return &models.SingleResult{URL: url, Result: result, Summary: models.Summary{Emails: 1}, Strategy: models.StrategyHTTP}, nil
}

func (r *fakeRunner) RunBulk(ctx context.Context, urls []string, emit pipeline.EmitFunc) error {
	if len(urls) == 0 {
		return models.ErrNoURLs
	}
	for _, ev := range r.events {
		if err := emit(ev); err != nil {
			return err
		}
	}
	return r.bulkErr
}

type fakeScanner struct {
	err error
}

func (s *fakeScanner) Scan(ctx context.Context, url string) (*models.SecurityScanResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.SecurityScanResult{TargetURL: url, SecurityScore: 63, Grade: "D"}, nil
}

func do(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthz(t *testing.T) {
	e := New(&fakeRunner{}, &fakeScanner{}, nil)

	rec := do(t, e, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
	body := decode(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, rec.Header().Get(HeaderRequestID), body["request_id"])
}

func TestRequestIDPropagated(t *testing.T) {
	e := New(&fakeRunner{}, &fakeScanner{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(HeaderRequestID))
}

func TestExtract(t *testing.T) {
	e := New(&fakeRunner{}, &fakeScanner{}, nil)

	rec := do(t, e, http.MethodPost, "/api/extract", `{"url":"https://acme.test"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, "https://acme.test", data["url"])
	result := data["result"].(map[string]any)
	assert.Equal(t, []any{"hello@acme.test"}, result["emails"])
	assert.Equal(t, []any{}, result["phones"])
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		runErr error
		want   int
	}{
		{"malformed body", `{`, nil, http.StatusBadRequest},
		{"missing url", `{"url":"  "}`, nil, http.StatusBadRequest},
		{"invalid url", `{"url":"ftp://x"}`, models.ErrInvalidURL, http.StatusBadRequest},
		{"fetch failure", `{"url":"https://down.test"}`, &models.FetchError{URL: "https://down.test", Reason: "all fetch strategies failed"}, http.StatusBadGateway},
		{"fetch timeout", `{"url":"https://slow.test"}`, &models.FetchError{URL: "https://slow.test", Reason: "timeout"}, http.StatusGatewayTimeout},
		{"unexpected", `{"url":"https://acme.test"}`, errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(&fakeRunner{runErr: tt.runErr}, &fakeScanner{}, nil)
			rec := do(t, e, http.MethodPost, "/api/extract", tt.body)

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, "error", decode(t, rec)["status"])
		})
	}
}

func TestSecurity(t *testing.T) {
	e := New(&fakeRunner{}, &fakeScanner{}, nil)

	rec := do(t, e, http.MethodPost, "/api/security", `{"url":"https://acme.test"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, float64(63), data["security_score"])
	assert.Equal(t, "D", data["grade"])
}

func TestSecurityUnreachable(t *testing.T) {
	scanErr := &models.ScanError{URL: "https://nope.invalid", Reason: "host unreachable", Err: errors.New("no such host")}
	e := New(&fakeRunner{}, &fakeScanner{err: scanErr}, nil)

	rec := do(t, e, http.MethodPost, "/api/security", `{"url":"https://nope.invalid"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, decode(t, rec)["message"], "host unreachable")
}

func TestExtractBulkStreamsEvents(t *testing.T) {
	runner := &fakeRunner{events: []models.BulkEvent{
		{Type: models.EventStart, Total: 2},
		{Type: models.EventProgress, Total: 2, Completed: 1, URL: "https://a.test", Status: models.StatusSuccess, Percent: 50},
		{Type: models.EventProgress, Total: 2, Completed: 2, URL: "https://b.test", Status: models.StatusFailed, Error: "timeout", Percent: 100},
		{Type: models.EventComplete, Total: 2, Succeeded: 1, Failed: 1},
	}}
	e := New(runner, &fakeScanner{}, nil)

	rec := do(t, e, http.MethodPost, "/api/extract/bulk", `{"urls":["https://a.test","https://b.test"]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get(echo.HeaderContentType))

	frames := strings.Split(strings.TrimSuffix(rec.Body.String(), "\n\n"), "\n\n")
	require.Len(t, frames, 4)

	wantTypes := []string{models.EventStart, models.EventProgress, models.EventProgress, models.EventComplete}
	for i, frame := range frames {
		lines := strings.SplitN(frame, "\n", 2)
		require.Len(t, lines, 2)
		assert.Equal(t, "event: "+wantTypes[i], lines[0])
		require.True(t, strings.HasPrefix(lines[1], "data: "))

		var ev models.BulkEvent
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(lines[1], "data: ")), &ev))
		assert.Equal(t, wantTypes[i], ev.Type)
	}
	assert.Contains(t, frames[2], `"status":"failed"`)
}

func TestExtractBulkRejectedBeforeStream(t *testing.T) {
	e := New(&fakeRunner{}, &fakeScanner{}, nil)

	rec := do(t, e, http.MethodPost, "/api/extract/bulk", `{"urls":[]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
	assert.Equal(t, "error", decode(t, rec)["status"])
}

func TestExtractBulkMidStreamError(t *testing.T) {
	runner := &fakeRunner{
		events:  []models.BulkEvent{{Type: models.EventStart, Total: 3}},
		bulkErr: context.Canceled,
	}
	e := New(runner, &fakeScanner{}, nil)

	rec := do(t, e, http.MethodPost, "/api/extract/bulk", `{"urls":["https://a.test"]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "event: start\ndata: {\"type\":\"start\",\"total\":3}\n\n", rec.Body.String())
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(models.ErrTooManyURLs))
	assert.Equal(t, http.StatusBadRequest, statusFor(&models.ScanError{URL: "x", Reason: "invalid url", Err: models.ErrInvalidURL}))
	assert.Equal(t, http.StatusBadGateway, statusFor(&models.ScanError{URL: "x", Reason: "host unreachable"}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("other")))
}
