package adaptors

import (
	"context"
	"website_auditor/internal/domain/models"
)

// PageFetcher retrieves a document plus response metadata. Failures are
// returned as *models.FetchError.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*models.FetchResult, error)
}

// LinkProber checks a single URL for reachability.
type LinkProber interface {
	Probe(ctx context.Context, url string) (*models.ProbeResult, error)
}
