package extractors

import (
	"strings"
	"website_auditor/internal/domain/models"

	"github.com/PuerkitoBio/goquery"
)

// Links collects every anchor with a usable href. Internal means the same
// hostname as the page; non-http links are kept and later skipped by the checker.
func Links(page *Page) (*models.LinkFacts, error) {
	facts := &models.LinkFacts{Links: []models.LinkRecord{}, Broken: []models.LinkRecord{}}
	pageHost := strings.ToLower(page.URL.Hostname())

	page.Doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}

		abs, err := page.URL.Parse(href)
		if err != nil {
			return
		}

		record := models.LinkRecord{
			Href:   abs.String(),
			Text:   text(s),
			Status: models.LinkUnchecked,
		}
		if abs.Scheme == "http" || abs.Scheme == "https" {
			record.IsInternal = strings.ToLower(abs.Hostname()) == pageHost
		}

		if record.IsInternal {
			facts.Internal++
		} else {
			facts.External++
		}
		facts.Links = append(facts.Links, record)
	})
	facts.Total = len(facts.Links)
	return facts, nil
}
