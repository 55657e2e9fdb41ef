package fetcher

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Sla0ui/siteintel/internal/models"
)

// maxBodySize caps how much of a response the fast path reads.
const maxBodySize = 5 << 20

// strippedElements never contribute visible text.
const strippedElements = "script, style, link, meta, iframe, noscript"

var whitespaceRun = regexp.MustCompile(`\s+`)

// NewHTTPClient creates the fast-path client. The overall request timeout is
// enforced through the request context, so the client carries none itself.
func NewHTTPClient(config *models.Config) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !config.VerifyTLS,
		},
		DisableKeepAlives: false,
		MaxIdleConns:      100,
		IdleConnTimeout:   90 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= config.MaxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// fetchHTTP performs the plain GET and converts the response into a FetchResult.
func (f *Fetcher) fetchHTTP(ctx context.Context, url string) (*models.FetchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, f.config.HTTPTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("error reading body: %w", err)
	}

	markup := string(body)
	text, err := visibleText(markup)
	if err != nil {
		return nil, err
	}

	return &models.FetchResult{
		SourceURL: url,
		PlainText: text,
		RawMarkup: markup,
		Strategy:  models.StrategyHTTP,
	}, nil
}

// visibleText strips non-content elements and collapses whitespace.
func visibleText(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("error parsing html: %w", err)
	}
	doc.Find(strippedElements).Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	return collapse(root.Text()), nil
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}
