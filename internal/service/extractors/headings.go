package extractors

import (
	"website_auditor/internal/domain/models"

	"github.com/PuerkitoBio/goquery"
)

func Headings(page *Page) (*models.HeadingFacts, error) {
	collect := func(tag string) []models.Heading {
		headings := []models.Heading{}
		page.Doc.Find(tag).Each(func(_ int, s *goquery.Selection) {
			content := text(s)
			headings = append(headings, models.Heading{Content: content, Length: length(content)})
		})
		return headings
	}

	return &models.HeadingFacts{
		H1: collect("h1"),
		H2: collect("h2"),
		H3: collect("h3"),
		H4: collect("h4"),
		H5: collect("h5"),
		H6: collect("h6"),
	}, nil
}
