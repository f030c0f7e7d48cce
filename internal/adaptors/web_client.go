package adaptors

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"website_auditor/internal/domain/models"
	"website_auditor/internal/pkg/errors"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"website_auditor/internal/pkg/metrics"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultFetchTimeout = 30 * time.Second
	DefaultMaxRedirects = 10
	DefaultUserAgent    = "Mozilla/5.0 (compatible; WebsiteAuditor/1.0)"

	maxDocumentBytes = 10 << 20
	maxProbeBodyRead = 64 << 10
)

var errRedirectLoop = errors.New(`redirect limit exceeded`)

type WebClientConfig struct {
	Timeout      time.Duration
	MaxRedirects int
	UserAgent    string
}

// WebClient fetches pages and probes links over plain HTTP.
type WebClient struct {
	client       *http.Client
	maxRedirects int
	userAgent    string
	log          *log.Logger
}

func NewWebClient(cfg WebClientConfig, log *log.Logger) *WebClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultFetchTimeout
	}
	if cfg.MaxRedirects < 0 {
		cfg.MaxRedirects = DefaultMaxRedirects
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 100
	transport.MaxIdleConnsPerHost = 10
	transport.TLSHandshakeTimeout = 10 * time.Second

	rTripper := promhttp.InstrumentRoundTripperDuration(
		metrics.HTTPClientRequestDuration,
		promhttp.InstrumentRoundTripperCounter(metrics.HTTPClientRequestsTotal, transport))

	return &WebClient{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: rTripper,
		},
		maxRedirects: cfg.MaxRedirects,
		userAgent:    cfg.UserAgent,
		log:          log,
	}
}

// Fetch implements adaptors.PageFetcher.
func (w *WebClient) Fetch(ctx context.Context, rawURL string) (*models.FetchResult, error) {
	if u, err := url.Parse(rawURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, &models.FetchError{URL: rawURL, Reason: models.FetchInvalidURL, Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		w.log.WithError(err).Error(`failed to create request`)
		return nil, &models.FetchError{URL: rawURL, Reason: models.FetchInvalidURL, Cause: err}
	}
	w.setHeaders(req)

	redirects := 0
	client := w.redirectCountingClient(&redirects)

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		fetchErr := classifyFetchError(ctx, rawURL, err)
		metrics.HTTPClientErrorsTotal.WithLabelValues(http.MethodGet, string(fetchErr.Reason)).Inc()
		w.log.WithError(err).WithField(`url`, rawURL).Warn(`page fetch failed`)
		return nil, fetchErr
	}
	defer resp.Body.Close()

	bodyByte, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		w.log.Errorf(`failed to read response body. error: %v`, err)
		return nil, classifyFetchError(ctx, rawURL, err)
	}
	elapsed := time.Since(start)

	if resp.StatusCode >= http.StatusBadRequest {
		metrics.HTTPClientErrorsTotal.WithLabelValues(http.MethodGet, strconv.Itoa(resp.StatusCode)).Inc()
		return nil, &models.FetchError{URL: rawURL, Reason: models.FetchHTTPStatus, StatusCode: resp.StatusCode}
	}

	contentLength := len(bodyByte)
	if cl, err := strconv.Atoi(resp.Header.Get(`Content-Length`)); err == nil && cl > 0 {
		contentLength = cl
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &models.FetchResult{
		URL:           rawURL,
		FinalURL:      finalURL,
		Document:      bodyByte,
		StatusCode:    resp.StatusCode,
		Headers:       resp.Header,
		ContentLength: contentLength,
		Timing:        elapsed,
		Redirects:     redirects,
	}, nil
}

// Probe implements adaptors.LinkProber. It sends HEAD and falls back to GET
// for servers that do not implement HEAD.
func (w *WebClient) Probe(ctx context.Context, rawURL string) (*models.ProbeResult, error) {
	code, err := w.probe(ctx, rawURL, http.MethodHead)
	if err == nil && code != http.StatusMethodNotAllowed && code != http.StatusNotImplemented {
		return &models.ProbeResult{StatusCode: code, Method: http.MethodHead}, nil
	}
	if err != nil && ctx.Err() != nil {
		return nil, &models.LinkProbeError{URL: rawURL, Cause: err}
	}

	code, err = w.probe(ctx, rawURL, http.MethodGet)
	if err != nil {
		return nil, &models.LinkProbeError{URL: rawURL, Cause: err}
	}
	return &models.ProbeResult{StatusCode: code, Method: http.MethodGet}, nil
}

func (w *WebClient) probe(ctx context.Context, rawURL, method string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return 0, errors.Wrap(err, `failed to create request`)
	}
	w.setHeaders(req)

	redirects := 0
	resp, err := w.redirectCountingClient(&redirects).Do(req)
	if err != nil {
		metrics.HTTPClientErrorsTotal.WithLabelValues(method, `error`).Inc()
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxProbeBodyRead))

	if resp.StatusCode >= http.StatusBadRequest {
		metrics.HTTPClientErrorsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()
	}
	return resp.StatusCode, nil
}

// redirectCountingClient returns a shallow copy of the client whose redirect
// policy records the hop count and stops past maxRedirects.
func (w *WebClient) redirectCountingClient(redirects *int) *http.Client {
	c := *w.client
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) > w.maxRedirects {
			return errRedirectLoop
		}
		*redirects = len(via)
		return nil
	}
	return &c
}

func (w *WebClient) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", w.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
}

func classifyFetchError(ctx context.Context, rawURL string, err error) *models.FetchError {
	fe := &models.FetchError{URL: rawURL, Reason: models.FetchNetwork, Cause: err}

	var dnsErr *net.DNSError
	var netErr net.Error
	var certErr *tls.CertificateVerificationError
	var unknownAuth x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	var recordErr tls.RecordHeaderError

	switch {
	case errors.Is(err, errRedirectLoop):
		fe.Reason = models.FetchRedirectLoop
		fe.Cause = nil
	case ctx.Err() != nil, errors.Is(err, context.DeadlineExceeded):
		fe.Reason = models.FetchTimeout
	case errors.As(err, &dnsErr):
		fe.Reason = models.FetchDNS
	case errors.As(err, &certErr), errors.As(err, &unknownAuth), errors.As(err, &hostnameErr), errors.As(err, &recordErr):
		fe.Reason = models.FetchTLS
	case errors.As(err, &netErr) && netErr.Timeout():
		fe.Reason = models.FetchTimeout
	}
	return fe
}
