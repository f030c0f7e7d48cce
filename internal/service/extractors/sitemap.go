package extractors

import (
	"context"
	"encoding/xml"
	"website_auditor/internal/domain/adaptors"
	"website_auditor/internal/domain/models"
	"website_auditor/internal/pkg/errors"
)

type sitemapDocument struct {
	XMLName  xml.Name
	URLs     []struct{} `xml:"url"`
	Sitemaps []struct{} `xml:"sitemap"`
}

// Sitemap fetches /sitemap.xml on the page origin and counts its entries. As
// with robots.txt, problems are reported in the facts.
func Sitemap(fetcher adaptors.PageFetcher) func(context.Context, *Page) (any, error) {
	return func(ctx context.Context, page *Page) (any, error) {
		res, err := fetcher.Fetch(ctx, origin(page)+"/sitemap.xml")
		if err != nil {
			return &models.SitemapFacts{Exists: false, Error: errors.Message(err)}, nil
		}
		return parseSitemap(res.Document), nil
	}
}

func parseSitemap(body []byte) *models.SitemapFacts {
	var doc sitemapDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return &models.SitemapFacts{Exists: false, Error: errors.Message(errors.Wrap(err, `invalid sitemap xml`))}
	}

	switch doc.XMLName.Local {
	case "urlset":
		return &models.SitemapFacts{Exists: true, URLCount: len(doc.URLs)}
	case "sitemapindex":
		return &models.SitemapFacts{Exists: true, URLCount: len(doc.Sitemaps), IsIndex: true}
	default:
		return &models.SitemapFacts{Exists: false, Error: `unexpected sitemap root element ` + doc.XMLName.Local}
	}
}
