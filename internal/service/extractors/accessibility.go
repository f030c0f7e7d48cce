package extractors

import (
	"strings"
	"website_auditor/internal/domain/models"

	"github.com/PuerkitoBio/goquery"
)

const landmarkSelector = `header, nav, main, footer, aside, ` +
	`[role="banner"], [role="navigation"], [role="main"], [role="contentinfo"], ` +
	`[role="complementary"], [role="search"], [role="region"], [role="form"]`

func Accessibility(page *Page) (*models.AccessibilityFacts, error) {
	doc := page.Doc
	lang := strings.TrimSpace(doc.Find("html").First().AttrOr("lang", ""))

	facts := &models.AccessibilityFacts{
		HasLang:          lang != "",
		Lang:             lang,
		ImagesMissingAlt: doc.Find("img:not([alt])").Length(),
		LandmarkCount:    doc.Find(landmarkSelector).Length(),
	}

	doc.Find("input, select, textarea").Each(func(_ int, s *goquery.Selection) {
		switch strings.ToLower(s.AttrOr("type", "")) {
		case "hidden", "submit", "button", "image", "reset":
			return
		}
		if !hasLabel(doc, s) {
			facts.InputsWithoutLabel++
		}
	})

	doc.Find("button").Each(func(_ int, s *goquery.Selection) {
		if text(s) == "" && ariaName(s) == "" && strings.TrimSpace(s.AttrOr("title", "")) == "" {
			facts.ButtonsWithoutText++
		}
	})
	return facts, nil
}

func hasLabel(doc *goquery.Document, s *goquery.Selection) bool {
	if ariaName(s) != "" {
		return true
	}
	if s.Closest("label").Length() > 0 {
		return true
	}
	id := strings.TrimSpace(s.AttrOr("id", ""))
	if id == "" {
		return false
	}
	found := false
	doc.Find("label[for]").EachWithBreak(func(_ int, l *goquery.Selection) bool {
		found = l.AttrOr("for", "") == id
		return !found
	})
	return found
}

func ariaName(s *goquery.Selection) string {
	if v := strings.TrimSpace(s.AttrOr("aria-label", "")); v != "" {
		return v
	}
	return strings.TrimSpace(s.AttrOr("aria-labelledby", ""))
}
