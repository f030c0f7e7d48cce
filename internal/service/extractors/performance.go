package extractors

import "website_auditor/internal/domain/models"

func Performance(page *Page) (*models.PerformanceFacts, error) {
	size := page.Fetch.ContentLength
	if size <= 0 {
		size = len(page.Fetch.Document)
	}
	return &models.PerformanceFacts{
		PageSize: size,
		LoadTime: page.Fetch.Timing.Milliseconds(),
	}, nil
}
