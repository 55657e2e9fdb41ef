package security

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sla0ui/siteintel/internal/models"
)

type fakeResolver struct {
	addrs map[string][]string
}

func (r fakeResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	if addrs, ok := r.addrs[host]; ok {
		return addrs, nil
	}
	return nil, errors.New("no such host")
}

type fakeCertChecker struct {
	info  models.TLSInfo
	calls int
}

func (c *fakeCertChecker) Check(ctx context.Context, host, port string) models.TLSInfo {
	c.calls++
	return c.info
}

func validTLS() models.TLSInfo {
	return models.TLSInfo{Valid: true, DaysRemaining: 200, Grade: TLSGradeExcellent, Version: "TLS 1.3"}
}

func scanConfig() *models.Config {
	cfg := models.DefaultConfig()
	cfg.SecurityTimeout = 5 * time.Second
	return cfg
}

func TestScanHalfHeadersValidTLS(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Strict-Transport-Security", "max-age=31536000")
		h.Set("Content-Security-Policy", "default-src 'self'")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Type", "text/html; charset=utf-8")
		h.Set("Server", "nginx/1.25.3")
		_, _ = w.Write([]byte(`<html><script src="/wp-content/app.js"></script></html>`))
	}))
	defer srv.Close()

	certs := &fakeCertChecker{info: validTLS()}
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	scanner := New(scanConfig(), WithCertChecker(certs), WithClock(func() time.Time { return fixed }))

	result, err := scanner.Scan(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, 1, certs.calls)
	assert.Equal(t, 63, result.SecurityScore)
	assert.Equal(t, "D", result.Grade)
	assert.Equal(t, "127.0.0.1", result.Hostname)
	assert.Equal(t, []string{"127.0.0.1"}, result.IPAddresses)
	assert.Empty(t, result.RegistrableDomain)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, fixed, result.ScannedAt)
	assert.NotEmpty(t, result.ID)
	assert.Contains(t, result.Technologies, "Nginx")
	assert.Contains(t, result.Technologies, "WordPress")

	require.Len(t, result.HeaderAudit, len(Checklist))
	assert.True(t, result.HeaderAudit["content-type"].Present)
	assert.False(t, result.HeaderAudit["permissions-policy"].Present)

	require.Len(t, result.Vulnerabilities, 6+1)
	for _, v := range result.Vulnerabilities {
		assert.NotEqual(t, models.SeverityCritical, v.Severity)
	}
}

func TestScanInvalidTLSPrependsCritical(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	certs := &fakeCertChecker{info: validTLS()}
	result, err := New(scanConfig(), WithCertChecker(certs)).Scan(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Zero(t, certs.calls, "plain http targets are not dialed for tls")
	assert.False(t, result.TLS.Valid)
	assert.Equal(t, TLSGradeFailed, result.TLS.Grade)
	assert.NotEmpty(t, result.TLS.Reason)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)

	require.NotEmpty(t, result.Vulnerabilities)
	assert.Equal(t, models.SeverityCritical, result.Vulnerabilities[0].Severity)
	assert.Equal(t, VulnInvalidTLS, result.Vulnerabilities[0].Type)
	assert.Equal(t, ComputeScore(false, result.HeaderAudit), result.SecurityScore)
}

func TestScanHeaderFetchFailureDegrades(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	target := srv.URL
	srv.Close()

	result, err := New(scanConfig()).Scan(context.Background(), target)
	require.NoError(t, err)

	assert.Equal(t, 0, result.SecurityScore)
	assert.Equal(t, "F", result.Grade)
	assert.Len(t, result.Vulnerabilities, len(Checklist)+1)
	assert.Zero(t, result.StatusCode)
	for _, check := range result.HeaderAudit {
		assert.False(t, check.Present)
	}
}

func TestScanUnresolvableHost(t *testing.T) {
	scanner := New(scanConfig(), WithResolver(fakeResolver{}))

	result, err := scanner.Scan(context.Background(), "https://does-not-exist.invalid")

	assert.Nil(t, result)
	var scanErr *models.ScanError
	require.ErrorAs(t, err, &scanErr)
	assert.Equal(t, "host unreachable", scanErr.Reason)
}

func TestScanInvalidURL(t *testing.T) {
	scanner := New(scanConfig(), WithResolver(fakeResolver{}))

	for _, target := range []string{"", "ftp://example.com", "not a url", "https://"} {
		_, err := scanner.Scan(context.Background(), target)
		var scanErr *models.ScanError
		require.ErrorAs(t, err, &scanErr, target)
		assert.ErrorIs(t, err, models.ErrInvalidURL, target)
	}
}

func TestScanDeterministicScore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Permissions-Policy", "camera=()")
	}))
	defer srv.Close()

	scanner := New(scanConfig())
	first, err := scanner.Scan(context.Background(), srv.URL)
	require.NoError(t, err)
	second, err := scanner.Scan(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, first.SecurityScore, second.SecurityScore)
	assert.Equal(t, first.Grade, second.Grade)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestRegistrableDomain(t *testing.T) {
	assert.Equal(t, "example.co.uk", registrableDomain("www.shop.example.co.uk"))
	assert.Equal(t, "acme.com", registrableDomain("WWW.Acme.com"))
	assert.Empty(t, registrableDomain("127.0.0.1"))
	assert.Empty(t, registrableDomain("::1"))
}

func TestResolveHost(t *testing.T) {
	r := fakeResolver{addrs: map[string][]string{"acme.test": {"10.0.0.1", "10.0.0.2"}}}

	ips, err := ResolveHost(context.Background(), r, "acme.test")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, ips)

	ips, err = ResolveHost(context.Background(), r, "192.168.1.1")
	require.NoError(t, err)
	assert.Equal(t, []string{"192.168.1.1"}, ips)

	_, err = ResolveHost(context.Background(), r, "missing.test")
	assert.Error(t, err)
}
