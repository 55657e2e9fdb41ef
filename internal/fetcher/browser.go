package fetcher

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/Sla0ui/siteintel/internal/logger"
	"github.com/Sla0ui/siteintel/internal/models"
)

// Renderer loads a page in a JavaScript-capable environment.
type Renderer interface {
	Render(ctx context.Context, url string) (*models.FetchResult, error)
}

// innerTextScript removes non-content and chrome elements, then returns the visible text.
const innerTextScript = `(() => {
	document.querySelectorAll('script, style, link, meta, iframe, noscript, footer, nav')
		.forEach(el => el.remove());
	return document.body ? document.body.innerText : '';
})()`

// BrowserRenderer renders pages with headless Chrome. Every call starts its
// own allocator and browser, so concurrent renders share no state.
type BrowserRenderer struct {
	config *models.Config
	logger *zap.Logger
}

// NewBrowserRenderer creates a renderer using the navigation and wait settings of config.
func NewBrowserRenderer(config *models.Config, l *zap.Logger) *BrowserRenderer {
	return &BrowserRenderer{config: config, logger: logger.OrNop(l)}
}

// allocatorOptions returns headless Chrome flags with secure defaults
func (b *BrowserRenderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	return append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("ignore-certificate-errors", !b.config.VerifyTLS),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(b.config.UserAgent),
		chromedp.DisableGPU,
		chromedp.WindowSize(1280, 800),
	)
}

// Render navigates to url, waits for the document to settle and captures
// both the full markup and the visible text.
func (b *BrowserRenderer) Render(ctx context.Context, url string) (*models.FetchResult, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, b.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var markup, text string
	err := chromedp.Run(browserCtx,
		b.navigate(url),
		chromedp.Sleep(b.config.RenderWait),
		chromedp.OuterHTML("html", &markup, chromedp.ByQuery),
		chromedp.Evaluate(innerTextScript, &text),
	)
	if err != nil {
		return nil, fmt.Errorf("browser render failed: %w", err)
	}

	b.logger.Debug("page rendered",
		zap.String("url", url),
		zap.Int("markup_bytes", len(markup)),
		zap.Int("text_bytes", len(text)),
	)

	return &models.FetchResult{
		SourceURL: url,
		PlainText: collapse(text),
		RawMarkup: markup,
		Strategy:  models.StrategyBrowser,
	}, nil
}

// navigate issues the navigation and waits for the new document's
// DOMContentLoaded, bounded by the navigation timeout. It does not wait for
// the full load event.
func (b *BrowserRenderer) navigate(url string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		navCtx, cancel := context.WithTimeout(ctx, b.config.NavigationTimeout)
		defer cancel()

		// Registered before navigating so the event cannot be missed.
		loaded := make(chan struct{}, 1)
		chromedp.ListenTarget(navCtx, func(ev interface{}) {
			if isDOMContentLoaded(ev) {
				select {
				case loaded <- struct{}{}:
				default:
				}
			}
		})

		_, _, errorText, err := page.Navigate(url).Do(navCtx)
		if err != nil {
			return fmt.Errorf("navigate: %w", err)
		}
		if errorText != "" {
			return fmt.Errorf("navigate: %s", errorText)
		}
		return awaitLoad(navCtx, loaded)
	})
}

func isDOMContentLoaded(ev interface{}) bool {
	_, ok := ev.(*page.EventDomContentEventFired)
	return ok
}

// awaitLoad blocks until loaded fires or ctx ends.
func awaitLoad(ctx context.Context, loaded <-chan struct{}) error {
	select {
	case <-loaded:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("navigate: waiting for DOMContentLoaded: %w", ctx.Err())
	}
}
