package adaptors

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"website_auditor/internal/domain/models"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	log "github.com/sirupsen/logrus"
)

// BrowserFetcher renders pages in headless Chrome. Every Fetch allocates its
// own browser process and releases it before returning, so concurrent audits
// never share browser state.
type BrowserFetcher struct {
	timeout      time.Duration
	maxRedirects int
	userAgent    string
	log          *log.Logger
}

func NewBrowserFetcher(cfg WebClientConfig, log *log.Logger) *BrowserFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultFetchTimeout
	}
	if cfg.MaxRedirects < 0 {
		cfg.MaxRedirects = DefaultMaxRedirects
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	return &BrowserFetcher{
		timeout:      cfg.Timeout,
		maxRedirects: cfg.MaxRedirects,
		userAgent:    cfg.UserAgent,
		log:          log,
	}
}

// documentResponse collects what the main document response looked like.
type documentResponse struct {
	mu        sync.Mutex
	status    int
	headers   http.Header
	redirects int
}

func (d *documentResponse) listen(ev interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		if e.Type == network.ResourceTypeDocument && e.RedirectResponse != nil {
			d.redirects++
		}
	case *network.EventResponseReceived:
		if e.Type != network.ResourceTypeDocument || d.status != 0 || e.Response == nil {
			return
		}
		d.status = int(e.Response.Status)
		d.headers = make(http.Header, len(e.Response.Headers))
		for k, v := range e.Response.Headers {
			d.headers.Set(k, fmt.Sprint(v))
		}
	}
}

// Fetch implements adaptors.PageFetcher.
func (b *BrowserFetcher) Fetch(ctx context.Context, rawURL string) (*models.FetchResult, error) {
	if u, err := url.Parse(rawURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, &models.FetchError{URL: rawURL, Reason: models.FetchInvalidURL, Cause: err}
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(b.userAgent),
		)...,
	)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, b.timeout)
	defer cancelTimeout()

	doc := &documentResponse{}
	chromedp.ListenTarget(browserCtx, doc.listen)

	var html, finalURL string
	start := time.Now()
	err := chromedp.Run(browserCtx,
		network.Enable(),
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
		chromedp.Location(&finalURL),
	)
	elapsed := time.Since(start)
	if err != nil {
		b.log.WithError(err).WithField(`url`, rawURL).Warn(`browser fetch failed`)
		return nil, classifyBrowserError(browserCtx, rawURL, err)
	}

	doc.mu.Lock()
	defer doc.mu.Unlock()

	if doc.redirects > b.maxRedirects {
		return nil, &models.FetchError{URL: rawURL, Reason: models.FetchRedirectLoop}
	}
	if doc.status >= http.StatusBadRequest {
		return nil, &models.FetchError{URL: rawURL, Reason: models.FetchHTTPStatus, StatusCode: doc.status}
	}

	headers := doc.headers
	if headers == nil {
		headers = make(http.Header)
	}
	if finalURL == "" {
		finalURL = rawURL
	}

	return &models.FetchResult{
		URL:           rawURL,
		FinalURL:      finalURL,
		Document:      []byte(html),
		StatusCode:    doc.status,
		Headers:       headers,
		ContentLength: len(html),
		Timing:        elapsed,
		Redirects:     doc.redirects,
	}, nil
}

// classifyBrowserError maps Chrome net error codes onto fetch failure reasons.
func classifyBrowserError(ctx context.Context, rawURL string, err error) *models.FetchError {
	fe := &models.FetchError{URL: rawURL, Reason: models.FetchNetwork, Cause: err}
	msg := err.Error()
	switch {
	case ctx.Err() != nil || strings.Contains(msg, "ERR_TIMED_OUT"):
		fe.Reason = models.FetchTimeout
	case strings.Contains(msg, "ERR_NAME_NOT_RESOLVED"):
		fe.Reason = models.FetchDNS
	case strings.Contains(msg, "ERR_CERT_") || strings.Contains(msg, "ERR_SSL_"):
		fe.Reason = models.FetchTLS
	case strings.Contains(msg, "ERR_TOO_MANY_REDIRECTS"):
		fe.Reason = models.FetchRedirectLoop
	}
	return fe
}
