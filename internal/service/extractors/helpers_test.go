package extractors

import (
	"context"
	"net/http"
	"testing"
	"time"
	"website_auditor/internal/domain/models"

	"github.com/stretchr/testify/require"
)

func newTestPage(t *testing.T, pageURL, body string) *Page {
	t.Helper()
	page, err := NewPage(&models.FetchResult{
		URL:        pageURL,
		FinalURL:   pageURL,
		Document:   []byte(body),
		StatusCode: http.StatusOK,
		Headers: http.Header{
			"Server":        []string{"nginx"},
			"Content-Type":  []string{"text/html; charset=utf-8"},
			"Cache-Control": []string{"no-cache"},
		},
		ContentLength: len(body),
		Timing:        1200 * time.Millisecond,
		Redirects:     1,
	})
	require.NoError(t, err)
	return page
}

// stubFetcher answers from a fixed map of url -> body. Unknown urls get a 404.
type stubFetcher map[string]string

func (s stubFetcher) Fetch(_ context.Context, url string) (*models.FetchResult, error) {
	body, ok := s[url]
	if !ok {
		return nil, &models.FetchError{URL: url, Reason: models.FetchHTTPStatus, StatusCode: http.StatusNotFound}
	}
	return &models.FetchResult{URL: url, FinalURL: url, Document: []byte(body), StatusCode: http.StatusOK}, nil
}
