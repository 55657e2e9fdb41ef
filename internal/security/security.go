// Package security audits the transport security and response headers of a URL.
package security

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/errgroup"

	"github.com/Sla0ui/siteintel/internal/detector"
	"github.com/Sla0ui/siteintel/internal/logger"
	"github.com/Sla0ui/siteintel/internal/models"
)

// Scanner runs security scans.
type Scanner struct {
	config   *models.Config
	client   *http.Client
	resolver Resolver
	certs    CertChecker
	logger   *zap.Logger
	now      func() time.Time
}

// Option customizes a Scanner.
type Option func(*Scanner)

// WithHTTPClient replaces the client used for the header fetch.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Scanner) { s.client = c }
}

// WithResolver replaces the DNS resolver.
func WithResolver(r Resolver) Option {
	return func(s *Scanner) { s.resolver = r }
}

// WithCertChecker replaces the TLS certificate check.
func WithCertChecker(c CertChecker) Option {
	return func(s *Scanner) { s.certs = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scanner) { s.logger = l }
}

// WithClock sets the time source used for ScannedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) { s.now = now }
}

// New creates a Scanner with the system resolver and a dialing certificate check.
func New(config *models.Config, opts ...Option) *Scanner {
	s := &Scanner{config: config}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logger.OrNop(s.logger)
	if s.client == nil {
		s.client = newHeaderClient(config)
	}
	if s.resolver == nil {
		s.resolver = net.DefaultResolver
	}
	if s.certs == nil {
		s.certs = &DialCertChecker{Timeout: config.SecurityTimeout}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// newHeaderClient skips certificate verification: certificate validity is
// judged by the TLS check, and headers of a badly configured site still count.
func newHeaderClient(config *models.Config) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= config.MaxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// Scan audits rawURL. It fails with *models.ScanError only when the URL is
// unusable or its host does not resolve; TLS and header failures are
// reflected in the result.
func (s *Scanner) Scan(ctx context.Context, rawURL string) (*models.SecurityScanResult, error) {
	target := strings.TrimSpace(rawURL)
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return nil, &models.ScanError{URL: rawURL, Reason: "invalid url", Err: models.ErrInvalidURL}
	}
	host := u.Hostname()

	ips, err := ResolveHost(ctx, s.resolver, host)
	if err != nil {
		return nil, &models.ScanError{URL: rawURL, Reason: "host unreachable", Err: err}
	}

	var (
		tlsInfo models.TLSInfo
		probe   headerProbe
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if u.Scheme != "https" {
			tlsInfo = FailedTLS("site is not served over https")
			return nil
		}
		port := u.Port()
		if port == "" {
			port = "443"
		}
		tlsInfo = s.certs.Check(gctx, host, port)
		return nil
	})
	g.Go(func() error {
		fetchCtx, cancel := context.WithTimeout(gctx, s.config.SecurityTimeout)
		defer cancel()

		var fetchErr error
		probe, fetchErr = fetchHeaders(fetchCtx, s.client, target, s.config.ScannerUserAgent)
		if fetchErr != nil {
			s.logger.Warn("header fetch failed, auditing empty header set",
				zap.String("url", target),
				zap.Error(fetchErr),
			)
		}
		return nil
	})
	// Neither probe fails the group; failures are recorded in tlsInfo and probe.
	_ = g.Wait()

	audit, findings := AuditHeaders(probe.Headers)
	if !tlsInfo.Valid {
		findings = append([]models.Vulnerability{InvalidTLSFinding(tlsInfo)}, findings...)
	}
	score := ComputeScore(tlsInfo.Valid, audit)

	result := &models.SecurityScanResult{
		ID:                uuid.NewString(),
		TargetURL:         target,
		Hostname:          host,
		RegistrableDomain: registrableDomain(host),
		IPAddresses:       ips,
		StatusCode:        probe.StatusCode,
		TLS:               tlsInfo,
		HeaderAudit:       audit,
		Vulnerabilities:   findings,
		Technologies:      detector.Detect(probe.Body, probe.Headers),
		SecurityScore:     score,
		Grade:             ComputeGrade(score),
		ScannedAt:         s.now().UTC(),
	}

	s.logger.Info("security scan finished",
		zap.String("url", target),
		zap.Int("score", result.SecurityScore),
		zap.String("grade", result.Grade),
		zap.Bool("tls_valid", tlsInfo.Valid),
		zap.Int("findings", len(findings)),
	)
	return result, nil
}

// registrableDomain returns the eTLD+1 of host, or "" for IPs and bare suffixes.
func registrableDomain(host string) string {
	if net.ParseIP(host) != nil {
		return ""
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(host))
	if err != nil {
		return ""
	}
	return domain
}
