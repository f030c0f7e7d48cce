package extractors

import (
	"context"
	"strings"
	"unicode/utf8"
	"website_auditor/internal/domain/adaptors"
	"website_auditor/internal/domain/models"
	"website_auditor/internal/pkg/errors"

	"github.com/temoto/robotstxt"
)

const maxRobotsContent = 64 * 1024

// RobotsTxt fetches /robots.txt on the page origin. A missing or unreadable
// file is reported in the facts, never as an extractor failure.
func RobotsTxt(fetcher adaptors.PageFetcher, userAgent string) func(context.Context, *Page) (any, error) {
	return func(ctx context.Context, page *Page) (any, error) {
		res, err := fetcher.Fetch(ctx, origin(page)+"/robots.txt")
		if err != nil {
			return &models.RobotsTxtFacts{Exists: false, Error: errors.Message(err)}, nil
		}

		content := string(res.Document)
		facts := &models.RobotsTxtFacts{
			Exists:      true,
			Content:     truncate(content, maxRobotsContent),
			HasSitemap:  strings.Contains(strings.ToLower(content), "sitemap:"),
			PageAllowed: true,
		}

		data, err := robotstxt.FromBytes(res.Document)
		if err != nil {
			facts.Error = errors.Message(errors.Wrap(err, `failed to parse robots.txt`))
			return facts, nil
		}
		facts.Sitemaps = data.Sitemaps
		facts.HasSitemap = facts.HasSitemap || len(data.Sitemaps) > 0

		path := page.URL.EscapedPath()
		if path == "" {
			path = "/"
		}
		facts.PageAllowed = data.TestAgent(path, userAgent)
		return facts, nil
	}
}

func origin(page *Page) string {
	return page.URL.Scheme + "://" + page.URL.Host
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
