package extractors

import (
	"strings"
	"website_auditor/internal/domain/models"

	"github.com/PuerkitoBio/goquery"
)

func Tracking(page *Page) (*models.TrackingFacts, error) {
	facts := &models.TrackingFacts{}

	page.Doc.Find("script, noscript").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		code := strings.ToLower(src + "\n" + s.Text())

		if strings.Contains(code, "google-analytics.com") || strings.Contains(code, "googletagmanager.com/gtag/js") ||
			strings.Contains(code, "gtag(") || strings.Contains(code, "ga('create'") {
			facts.GoogleAnalytics = true
		}
		if strings.Contains(code, "googletagmanager.com/gtm.js") || strings.Contains(code, "googletagmanager.com/ns.html") {
			facts.GoogleTagManager = true
		}
		if strings.Contains(code, "connect.facebook.net") || strings.Contains(code, "fbq(") {
			facts.FacebookPixel = true
		}
		if strings.Contains(code, "hotjar") {
			facts.Hotjar = true
		}
	})
	return facts, nil
}
