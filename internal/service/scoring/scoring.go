package scoring

import (
	"fmt"
	"website_auditor/internal/domain/models"
)

const (
	DefaultSlowLoadMs = 3000

	penaltyMissingTitle       = 10
	penaltyMissingDescription = 10
	penaltyTitleTooLong       = 5
	penaltyDescriptionTooLong = 5
	penaltyMissingH1          = 10
	penaltyMultipleH1         = 5
	penaltyImageMissingAlt    = 2
	maxImagePenalty           = 20
	penaltySlowLoad           = 10
)

// Recommendation types.
const (
	TypeMetaTitle         = "meta_title"
	TypeMetaDescription   = "meta_description"
	TypeTitleLength       = "title_length"
	TypeDescriptionLength = "description_length"
	TypeCanonical         = "canonical"
	TypeHeadings          = "headings"
	TypeImages            = "images"
	TypePerformance       = "performance"
	TypeSSL               = "ssl"
	TypeBrokenLinks       = "broken_links"
	TypeRobotsTxt         = "robots_txt"
	TypeSitemap           = "sitemap"
)

// Engine turns a fact bundle into a score and recommendations. It holds no
// state besides its thresholds, so Score is safe for concurrent use.
type Engine struct {
	slowLoadMs int64
}

func NewEngine(slowLoadMs int64) *Engine {
	if slowLoadMs <= 0 {
		slowLoadMs = DefaultSlowLoadMs
	}
	return &Engine{slowLoadMs: slowLoadMs}
}

type scorecard struct {
	score   int
	summary *models.Summary
}

func (s *scorecard) add(penalty int, rec models.Recommendation) {
	s.score -= penalty
	switch rec.Severity {
	case models.SeverityCritical:
		s.summary.CriticalIssues++
	case models.SeverityWarning:
		s.summary.Warnings++
	default:
		s.summary.Passed++
	}
	s.summary.Recommendations = append(s.summary.Recommendations, rec)
}

// Score checks run in a fixed order and absent sub-records are not judged.
func (e *Engine) Score(facts *models.FactBundle) *models.Summary {
	card := &scorecard{
		score:   100,
		summary: &models.Summary{Recommendations: []models.Recommendation{}},
	}
	if facts == nil {
		card.summary.Score = 100
		return card.summary
	}

	if facts.Meta != nil {
		checkMeta(card, facts.Meta)
	}
	if facts.Headings != nil {
		checkHeadings(card, facts.Headings)
	}
	if facts.Images != nil {
		checkImages(card, facts.Images)
	}
	if facts.Performance != nil && facts.Performance.LoadTime > e.slowLoadMs {
		card.add(penaltySlowLoad, models.Recommendation{
			Type:        TypePerformance,
			Severity:    models.SeverityWarning,
			Description: fmt.Sprintf("Page took %dms to load, above the %dms threshold", facts.Performance.LoadTime, e.slowLoadMs),
			Impact:      "Slow pages rank lower and lose visitors before they render",
			HowToFix:    "Compress assets, enable caching and reduce render-blocking resources",
		})
	}
	if facts.Technical != nil && !facts.Technical.SSL {
		card.add(0, models.Recommendation{
			Type:        TypeSSL,
			Severity:    models.SeverityInfo,
			Description: "Page is not served over HTTPS",
			Impact:      "Browsers flag plain HTTP pages as not secure",
			HowToFix:    "Install a TLS certificate and redirect HTTP to HTTPS",
		})
	}
	if facts.Links != nil && len(facts.Links.Broken) > 0 {
		card.add(0, models.Recommendation{
			Type:        TypeBrokenLinks,
			Severity:    models.SeverityInfo,
			Description: fmt.Sprintf("%d broken link(s) found", len(facts.Links.Broken)),
			Impact:      "Broken links waste crawl budget and frustrate visitors",
			HowToFix:    "Update or remove links that return errors",
		})
	}
	if facts.RobotsTxt != nil && !facts.RobotsTxt.Exists {
		card.add(0, models.Recommendation{
			Type:        TypeRobotsTxt,
			Severity:    models.SeverityInfo,
			Description: "No robots.txt file found",
			Impact:      "Crawlers get no guidance on what to index",
			HowToFix:    "Add a robots.txt at the site root",
		})
	}
	if facts.Sitemap != nil && !facts.Sitemap.Exists {
		card.add(0, models.Recommendation{
			Type:        TypeSitemap,
			Severity:    models.SeverityInfo,
			Description: "No sitemap.xml found",
			Impact:      "Search engines may miss pages that are not linked",
			HowToFix:    "Publish a sitemap.xml and reference it from robots.txt",
		})
	}

	card.summary.Score = clamp(card.score)
	return card.summary
}

func checkMeta(card *scorecard, meta *models.MetaFacts) {
	switch meta.Title.Status {
	case models.LengthMissing:
		card.add(penaltyMissingTitle, models.Recommendation{
			Type:        TypeMetaTitle,
			Severity:    models.SeverityCritical,
			Description: "Page has no title",
			Impact:      "The title is the main headline shown in search results",
			HowToFix:    "Add a unique, descriptive <title> of 50-60 characters",
		})
	case models.LengthTooLong:
		card.add(penaltyTitleTooLong, models.Recommendation{
			Type:        TypeTitleLength,
			Severity:    models.SeverityWarning,
			Description: fmt.Sprintf("Title is %d characters long", meta.Title.Length),
			Impact:      "Long titles are truncated in search results",
			HowToFix:    "Shorten the title to at most 60 characters",
		})
	case models.LengthTooShort:
		card.add(0, models.Recommendation{
			Type:        TypeTitleLength,
			Severity:    models.SeverityInfo,
			Description: fmt.Sprintf("Title is only %d characters long", meta.Title.Length),
			Impact:      "Short titles leave out useful keywords",
			HowToFix:    "Expand the title to 50-60 characters",
		})
	}

	switch meta.Description.Status {
	case models.LengthMissing:
		card.add(penaltyMissingDescription, models.Recommendation{
			Type:        TypeMetaDescription,
			Severity:    models.SeverityCritical,
			Description: "Page has no meta description",
			Impact:      "Search engines will pick an arbitrary snippet instead",
			HowToFix:    "Add a meta description of 120-160 characters",
		})
	case models.LengthTooLong:
		card.add(penaltyDescriptionTooLong, models.Recommendation{
			Type:        TypeDescriptionLength,
			Severity:    models.SeverityWarning,
			Description: fmt.Sprintf("Meta description is %d characters long", meta.Description.Length),
			Impact:      "Long descriptions are truncated in search results",
			HowToFix:    "Shorten the meta description to at most 160 characters",
		})
	case models.LengthTooShort:
		card.add(0, models.Recommendation{
			Type:        TypeDescriptionLength,
			Severity:    models.SeverityInfo,
			Description: fmt.Sprintf("Meta description is only %d characters long", meta.Description.Length),
			Impact:      "Short descriptions convert fewer searchers",
			HowToFix:    "Expand the meta description to 120-160 characters",
		})
	}

	if meta.Canonical == "" {
		card.add(0, models.Recommendation{
			Type:        TypeCanonical,
			Severity:    models.SeverityInfo,
			Description: "Page has no canonical link",
			Impact:      "Duplicate URLs may split ranking signals",
			HowToFix:    `Add <link rel="canonical"> pointing at the preferred URL`,
		})
	}
}

func checkHeadings(card *scorecard, headings *models.HeadingFacts) {
	switch n := len(headings.H1); {
	case n == 0:
		card.add(penaltyMissingH1, models.Recommendation{
			Type:        TypeHeadings,
			Severity:    models.SeverityCritical,
			Description: "Page has no H1 heading",
			Impact:      "The H1 tells search engines what the page is about",
			HowToFix:    "Add exactly one H1 that summarises the page",
		})
	case n > 1:
		card.add(penaltyMultipleH1, models.Recommendation{
			Type:        TypeHeadings,
			Severity:    models.SeverityWarning,
			Description: fmt.Sprintf("Page has %d H1 headings", n),
			Impact:      "Several H1s dilute the main topic of the page",
			HowToFix:    "Keep one H1 and demote the others to H2",
		})
	}
}

func checkImages(card *scorecard, images *models.ImageFacts) {
	if images.MissingAlt == 0 {
		return
	}
	penalty := images.MissingAlt * penaltyImageMissingAlt
	if penalty > maxImagePenalty {
		penalty = maxImagePenalty
	}
	card.add(penalty, models.Recommendation{
		Type:        TypeImages,
		Severity:    models.SeverityWarning,
		Description: fmt.Sprintf("%d image(s) have no alt text", images.MissingAlt),
		Impact:      "Screen readers and image search rely on alt text",
		HowToFix:    "Describe each meaningful image in its alt attribute",
	})
}

func clamp(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}
