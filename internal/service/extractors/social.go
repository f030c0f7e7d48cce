package extractors

import (
	"net/url"
	"strings"
	"website_auditor/internal/domain/models"

	"github.com/PuerkitoBio/goquery"
)

var socialHosts = []string{
	"facebook.com",
	"twitter.com",
	"x.com",
	"linkedin.com",
	"instagram.com",
	"youtube.com",
	"tiktok.com",
	"pinterest.com",
	"github.com",
}

func Social(page *Page) (*models.SocialFacts, error) {
	facts := &models.SocialFacts{
		OpenGraph:   map[string]string{},
		TwitterCard: map[string]string{},
		Profiles:    []string{},
	}

	page.Doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		key, _ := s.Attr("property")
		if key == "" {
			key, _ = s.Attr("name")
		}
		content, _ := s.Attr("content")
		switch {
		case strings.HasPrefix(key, "og:"):
			facts.OpenGraph[strings.TrimPrefix(key, "og:")] = strings.TrimSpace(content)
		case strings.HasPrefix(key, "twitter:"):
			facts.TwitterCard[strings.TrimPrefix(key, "twitter:")] = strings.TrimSpace(content)
		}
	})

	seen := map[string]bool{}
	page.Doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		u, err := page.URL.Parse(strings.TrimSpace(href))
		if err != nil || !isSocialHost(u) {
			return
		}
		profile := u.String()
		if !seen[profile] {
			seen[profile] = true
			facts.Profiles = append(facts.Profiles, profile)
		}
	})
	return facts, nil
}

func isSocialHost(u *url.URL) bool {
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	for _, h := range socialHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}
