package extractors

import (
	"strings"
	"website_auditor/internal/domain/models"

	"github.com/PuerkitoBio/goquery"
)

// Recommended lengths in characters.
const (
	TitleMinLength       = 50
	TitleMaxLength       = 60
	DescriptionMinLength = 120
	DescriptionMaxLength = 160
)

// LengthStatusOf places n in the [min,max] band. Zero is missing.
func LengthStatusOf(n, min, max int) models.LengthStatus {
	switch {
	case n == 0:
		return models.LengthMissing
	case n < min:
		return models.LengthTooShort
	case n > max:
		return models.LengthTooLong
	default:
		return models.LengthGood
	}
}

func textFact(content string, min, max int) models.TextFact {
	n := length(content)
	return models.TextFact{Content: content, Length: n, Status: LengthStatusOf(n, min, max)}
}

func Meta(page *Page) (*models.MetaFacts, error) {
	doc := page.Doc

	title := text(doc.Find("head title").First())
	if title == "" {
		title = text(doc.Find("title").First())
	}
	description := metaContent(doc, `meta[name="description"]`)

	keywords := []string{}
	for _, k := range strings.Split(metaContent(doc, `meta[name="keywords"]`), ",") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}

	favicon, _ := doc.Find(`link[rel="icon"], link[rel="shortcut icon"]`).First().Attr("href")
	canonical, _ := doc.Find(`link[rel="canonical"]`).First().Attr("href")

	return &models.MetaFacts{
		Title:          textFact(title, TitleMinLength, TitleMaxLength),
		Description:    textFact(description, DescriptionMinLength, DescriptionMaxLength),
		Keywords:       keywords,
		Canonical:      resolve(page.URL, canonical),
		Favicon:        resolve(page.URL, favicon),
		Viewport:       metaContent(doc, `meta[name="viewport"]`),
		Robots:         metaContent(doc, `meta[name="robots"]`),
		HasOpenGraph:   doc.Find(`meta[property^="og:"]`).Length() > 0,
		HasTwitterCard: doc.Find(`meta[name^="twitter:"], meta[property^="twitter:"]`).Length() > 0,
	}, nil
}

func metaContent(doc *goquery.Document, selector string) string {
	v, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(v)
}
