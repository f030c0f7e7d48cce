package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"
	"website_auditor/internal/adaptors/store"
	"website_auditor/internal/domain/models"
	"website_auditor/internal/service/extractors"
	"website_auditor/internal/service/scoring"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const auditedPage = `<!DOCTYPE html>
<html lang="en"><head><title>Home</title></head>
<body>
  <h1>Welcome</h1>
  <img src="/a.png"><img src="/b.png"><img src="/c.png">
  <a href="/about">About</a>
  <a href="mailto:someone@example.com">Mail us</a>
</body></html>`

// fetcherFunc adapts a function to the PageFetcher interface.
type fetcherFunc func(ctx context.Context, url string) (*models.FetchResult, error)

func (f fetcherFunc) Fetch(ctx context.Context, url string) (*models.FetchResult, error) {
	return f(ctx, url)
}

// siteFetcher serves the audited page; robots.txt and sitemap.xml are 404.
func siteFetcher(page string) fetcherFunc {
	return func(_ context.Context, url string) (*models.FetchResult, error) {
		if strings.HasSuffix(url, "/robots.txt") || strings.HasSuffix(url, "/sitemap.xml") {
			return nil, &models.FetchError{URL: url, Reason: models.FetchHTTPStatus, StatusCode: http.StatusNotFound}
		}
		return &models.FetchResult{
			URL:           url,
			FinalURL:      url,
			Document:      []byte(page),
			StatusCode:    http.StatusOK,
			Headers:       http.Header{},
			ContentLength: len(page),
			Timing:        300 * time.Millisecond,
		}, nil
	}
}

func okProber() *MockLinkProber {
	prober := new(MockLinkProber)
	prober.On("Probe", mock.Anything, mock.Anything).
		Return(&models.ProbeResult{StatusCode: http.StatusOK, Method: http.MethodHead}, nil)
	return prober
}

func newTestPipeline(st *store.MemoryStore, fetcher fetcherFunc, prober *MockLinkProber, timeout time.Duration) *AuditPipeline {
	logger := log.New()
	return NewAuditPipeline(
		st,
		fetcher,
		extractors.Default(fetcher, "WebsiteAuditor"),
		NewLinkChecker(prober, 4, time.Second, logger),
		scoring.NewEngine(scoring.DefaultSlowLoadMs),
		PipelineConfig{Timeout: timeout},
		logger,
	)
}

func createPending(t *testing.T, st *store.MemoryStore, url string) string {
	t.Helper()
	id, err := st.Create(context.Background(), &models.Audit{WebsiteURL: url, Email: "a@example.com", Name: "Ann"})
	require.NoError(t, err)
	return id
}

func TestAuditPipeline_Completes(t *testing.T) {
	st := store.NewMemoryStore()
	id := createPending(t, st, "https://example.com/")
	prober := okProber()

	err := newTestPipeline(st, siteFetcher(auditedPage), prober, time.Minute).Run(context.Background(), id)
	require.NoError(t, err)

	audit, err := st.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, audit.Status)
	assert.Empty(t, audit.Error)
	require.NotNil(t, audit.CompletedAt)
	require.NotNil(t, audit.Results)
	require.NotNil(t, audit.Summary)

	// robots.txt 404 does not fail the audit
	require.NotNil(t, audit.Results.RobotsTxt)
	assert.False(t, audit.Results.RobotsTxt.Exists)
	assert.NotEmpty(t, audit.Results.RobotsTxt.Error)

	// mailto is never probed nor counted as broken
	require.NotNil(t, audit.Results.Links)
	require.Len(t, audit.Results.Links.Links, 2)
	assert.Equal(t, models.LinkReachable, audit.Results.Links.Links[0].Status)
	assert.Equal(t, models.LinkSkipped, audit.Results.Links.Links[1].Status)
	assert.Empty(t, audit.Results.Links.Broken)
	prober.AssertNotCalled(t, "Probe", mock.Anything, "mailto:someone@example.com")

	// description missing -10, three images without alt -6
	assert.Equal(t, 84, audit.Summary.Score)
}

func TestAuditPipeline_FetchFailure(t *testing.T) {
	st := store.NewMemoryStore()
	id := createPending(t, st, "https://nowhere.invalid/")
	fetcher := fetcherFunc(func(_ context.Context, url string) (*models.FetchResult, error) {
		return nil, &models.FetchError{URL: url, Reason: models.FetchDNS, Cause: errors.New("no such host")}
	})

	err := newTestPipeline(st, fetcher, new(MockLinkProber), time.Minute).Run(context.Background(), id)
	require.NoError(t, err)

	audit, err := st.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, audit.Status)
	assert.Equal(t, "fetch https://nowhere.invalid/ failed: dns: no such host", audit.Error)
	assert.Nil(t, audit.Results)
	assert.Nil(t, audit.Summary)
}

func TestAuditPipeline_Timeout(t *testing.T) {
	st := store.NewMemoryStore()
	id := createPending(t, st, "https://slow.example.com/")
	fetcher := fetcherFunc(func(ctx context.Context, url string) (*models.FetchResult, error) {
		<-ctx.Done()
		return nil, &models.FetchError{URL: url, Reason: models.FetchTimeout, Cause: ctx.Err()}
	})

	err := newTestPipeline(st, fetcher, new(MockLinkProber), 50*time.Millisecond).Run(context.Background(), id)
	require.NoError(t, err)

	audit, err := st.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, audit.Status)
	assert.True(t, strings.HasPrefix(audit.Error, "timeout:"), audit.Error)
	assert.Nil(t, audit.Results)
	assert.Nil(t, audit.Summary)
}

func TestAuditPipeline_ExtractorPanicIsIsolated(t *testing.T) {
	st := store.NewMemoryStore()
	id := createPending(t, st, "https://example.com/")
	fetcher := siteFetcher(auditedPage)

	p := newTestPipeline(st, fetcher, okProber(), time.Minute)
	p.extractors = append(p.extractors, extractors.Extractor{
		Name: models.ExtractorSchema,
		Extract: func(context.Context, *extractors.Page) (any, error) {
			panic("bad schema")
		},
	})

	require.NoError(t, p.Run(context.Background(), id))

	audit, err := st.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, audit.Status)
	require.Len(t, audit.Results.ExtractionErrors, 1)
	assert.Equal(t, models.ExtractorSchema, audit.Results.ExtractionErrors[0].Extractor)
}

func TestAuditPipeline_AlreadyClaimed(t *testing.T) {
	st := store.NewMemoryStore()
	id := createPending(t, st, "https://example.com/")
	require.NoError(t, st.Update(context.Background(), id, models.AuditUpdate{Status: models.StatusProcessing}))

	err := newTestPipeline(st, siteFetcher(auditedPage), okProber(), time.Minute).Run(context.Background(), id)

	var pe *models.PersistenceError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "claim", pe.Op)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestAuditPipeline_UnknownAudit(t *testing.T) {
	err := newTestPipeline(store.NewMemoryStore(), siteFetcher(auditedPage), okProber(), time.Minute).
		Run(context.Background(), "missing")

	var pe *models.PersistenceError
	require.True(t, errors.As(err, &pe))
	assert.ErrorIs(t, err, models.ErrAuditNotFound)
}

func TestAuditPipeline_TerminalStateIsFinal(t *testing.T) {
	st := store.NewMemoryStore()
	id := createPending(t, st, "https://example.com/")
	p := newTestPipeline(st, siteFetcher(auditedPage), okProber(), time.Minute)

	require.NoError(t, p.Run(context.Background(), id))
	first, err := st.Get(context.Background(), id)
	require.NoError(t, err)

	assert.Error(t, p.Run(context.Background(), id))
	second, err := st.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
