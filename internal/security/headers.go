package security

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Sla0ui/siteintel/internal/models"
)

// bodySampleSize bounds how much of the page is kept for technology detection.
const bodySampleSize = 256 << 10

// Vulnerability types raised outside the header checklist.
const (
	VulnInvalidTLS      = "Missing or Invalid SSL/TLS"
	VulnServerExposed   = "Server Version Exposed"
	VulnPoweredByExpose = "Technology Stack Exposed"
)

// HeaderRule is one entry of the security header checklist.
type HeaderRule struct {
	Name        string
	Severity    string
	Title       string
	Description string
	Remediation string
}

// Checklist is the fixed, ordered set of audited response headers.
var Checklist = []HeaderRule{
	{
		Name:        "strict-transport-security",
		Severity:    models.SeverityHigh,
		Title:       "Missing HSTS Header",
		Description: "Strict-Transport-Security is not set, so browsers may connect over plain HTTP and are exposed to protocol downgrade and cookie hijacking.",
		Remediation: "Add 'Strict-Transport-Security: max-age=31536000; includeSubDomains' to all HTTPS responses.",
	},
	{
		Name:        "content-security-policy",
		Severity:    models.SeverityHigh,
		Title:       "Missing Content Security Policy",
		Description: "No Content-Security-Policy is defined, leaving the page open to cross-site scripting and data injection.",
		Remediation: "Define a Content-Security-Policy that restricts script, style and frame sources, e.g. \"default-src 'self'\".",
	},
	{
		Name:        "x-frame-options",
		Severity:    models.SeverityHigh,
		Title:       "Missing Clickjacking Protection",
		Description: "X-Frame-Options is not set, so the page can be embedded in frames on other sites for clickjacking.",
		Remediation: "Add 'X-Frame-Options: DENY' or 'SAMEORIGIN', or use the CSP frame-ancestors directive.",
	},
	{
		Name:        "x-content-type-options",
		Severity:    models.SeverityMedium,
		Title:       "Missing MIME Sniffing Protection",
		Description: "X-Content-Type-Options is not set, allowing browsers to MIME-sniff responses into executable types.",
		Remediation: "Add 'X-Content-Type-Options: nosniff'.",
	},
	{
		Name:        "x-xss-protection",
		Severity:    models.SeverityMedium,
		Title:       "Missing XSS Filter Header",
		Description: "X-XSS-Protection is not set; legacy browsers will not block reflected cross-site scripting.",
		Remediation: "Add 'X-XSS-Protection: 1; mode=block', and rely on a Content-Security-Policy for modern browsers.",
	},
	{
		Name:        "referrer-policy",
		Severity:    models.SeverityMedium,
		Title:       "Missing Referrer Policy",
		Description: "Referrer-Policy is not set, so full URLs including paths and query strings may leak to third parties.",
		Remediation: "Add 'Referrer-Policy: strict-origin-when-cross-origin' or a stricter policy.",
	},
	{
		Name:        "permissions-policy",
		Severity:    models.SeverityMedium,
		Title:       "Missing Permissions Policy",
		Description: "Permissions-Policy is not set, so embedded content may request camera, microphone, geolocation and similar features.",
		Remediation: "Add a Permissions-Policy disabling unused features, e.g. 'camera=(), microphone=(), geolocation=()'.",
	},
	{
		Name:        "cross-origin-embedder-policy",
		Severity:    models.SeverityLow,
		Title:       "Missing Cross-Origin Embedder Policy",
		Description: "Cross-Origin-Embedder-Policy is not set, so the document cannot enable cross-origin isolation.",
		Remediation: "Add 'Cross-Origin-Embedder-Policy: require-corp' once all embedded resources opt in.",
	},
	{
		Name:        "cross-origin-opener-policy",
		Severity:    models.SeverityLow,
		Title:       "Missing Cross-Origin Opener Policy",
		Description: "Cross-Origin-Opener-Policy is not set, so cross-origin windows can keep a reference to this page.",
		Remediation: "Add 'Cross-Origin-Opener-Policy: same-origin'.",
	},
	{
		Name:        "cross-origin-resource-policy",
		Severity:    models.SeverityLow,
		Title:       "Missing Cross-Origin Resource Policy",
		Description: "Cross-Origin-Resource-Policy is not set, so other origins may load this site's resources.",
		Remediation: "Add 'Cross-Origin-Resource-Policy: same-origin' or 'same-site'.",
	},
	{
		Name:        "expect-ct",
		Severity:    models.SeverityLow,
		Title:       "Missing Expect-CT Header",
		Description: "Expect-CT is not set, so misissued certificates are not reported through Certificate Transparency.",
		Remediation: "Add 'Expect-CT: max-age=86400, enforce' where supported.",
	},
	{
		Name:        "content-type",
		Severity:    models.SeverityLow,
		Title:       "Missing Content-Type Header",
		Description: "Content-Type is not declared, forcing browsers to guess the response type.",
		Remediation: "Always send an explicit Content-Type with a charset, e.g. 'text/html; charset=utf-8'.",
	},
}

// headerProbe is what the header fetch observed. A zero probe means the
// request failed and every checklist header is treated as absent.
type headerProbe struct {
	StatusCode int
	Headers    http.Header
	Body       string
}

// fetchHeaders GETs url and keeps the response headers and a body sample.
// Any status code is accepted.
func fetchHeaders(ctx context.Context, client *http.Client, url, userAgent string) (headerProbe, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return headerProbe{Headers: http.Header{}}, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return headerProbe{Headers: http.Header{}}, fmt.Errorf("header request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, bodySampleSize))
	return headerProbe{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       string(body),
	}, nil
}

// AuditHeaders checks headers against the checklist. It returns the audit map
// keyed by lowercase header name and the findings in checklist order,
// followed by the information disclosure findings.
func AuditHeaders(headers http.Header) (map[string]models.HeaderCheck, []models.Vulnerability) {
	audit := make(map[string]models.HeaderCheck, len(Checklist))
	findings := []models.Vulnerability{}

	for _, rule := range Checklist {
		value := strings.TrimSpace(headers.Get(rule.Name))
		present := len(headers.Values(rule.Name)) > 0
		audit[rule.Name] = models.HeaderCheck{
			Present:  present,
			Value:    value,
			Severity: rule.Severity,
		}
		if !present {
			findings = append(findings, models.Vulnerability{
				Severity:    rule.Severity,
				Type:        rule.Title,
				Description: rule.Description,
				Remediation: rule.Remediation,
			})
		}
	}

	if server := headers.Get("Server"); server != "" {
		findings = append(findings, models.Vulnerability{
			Severity:    models.SeverityLow,
			Type:        VulnServerExposed,
			Description: fmt.Sprintf("The Server header discloses %q, which helps attackers target known vulnerabilities.", server),
			Remediation: "Remove the Server header or reduce it to a generic value without version numbers.",
		})
	}
	if powered := headers.Get("X-Powered-By"); powered != "" {
		findings = append(findings, models.Vulnerability{
			Severity:    models.SeverityLow,
			Type:        VulnPoweredByExpose,
			Description: fmt.Sprintf("The X-Powered-By header discloses %q.", powered),
			Remediation: "Disable the X-Powered-By header in the application framework or proxy.",
		})
	}

	return audit, findings
}

// InvalidTLSFinding is the CRITICAL finding placed first when TLS is not valid.
func InvalidTLSFinding(info models.TLSInfo) models.Vulnerability {
	description := "The site does not serve a valid TLS certificate, so traffic can be intercepted or tampered with."
	if info.Reason != "" {
		description += " Reason: " + info.Reason + "."
	}
	return models.Vulnerability{
		Severity:    models.SeverityCritical,
		Type:        VulnInvalidTLS,
		Description: description,
		Remediation: "Serve the site over HTTPS with a certificate from a trusted CA (e.g. Let's Encrypt) and redirect HTTP to HTTPS.",
	}
}
