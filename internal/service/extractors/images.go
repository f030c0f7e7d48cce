package extractors

import (
	"strings"
	"website_auditor/internal/domain/models"

	"github.com/PuerkitoBio/goquery"
)

func Images(page *Page) (*models.ImageFacts, error) {
	facts := &models.ImageFacts{Images: []models.Image{}}

	page.Doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if strings.TrimSpace(src) == "" {
			src, _ = s.Attr("data-src")
		}
		alt, _ := s.Attr("alt")
		alt = strings.TrimSpace(alt)

		img := models.Image{Src: resolve(page.URL, src), Alt: alt, HasAlt: alt != ""}
		if !img.HasAlt {
			facts.MissingAlt++
		}
		facts.Images = append(facts.Images, img)
	})
	facts.Total = len(facts.Images)
	return facts, nil
}
