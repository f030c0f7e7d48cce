package scoring

import (
	"testing"
	"website_auditor/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func goodBundle() *models.FactBundle {
	return &models.FactBundle{
		Meta: &models.MetaFacts{
			Title:       models.TextFact{Content: "t", Length: 55, Status: models.LengthGood},
			Description: models.TextFact{Content: "d", Length: 140, Status: models.LengthGood},
			Canonical:   "https://example.com/",
		},
		Headings:    &models.HeadingFacts{H1: []models.Heading{{Content: "Hello", Length: 5}}},
		Images:      &models.ImageFacts{Total: 2},
		Links:       &models.LinkFacts{Broken: []models.LinkRecord{}},
		Technical:   &models.TechnicalFacts{SSL: true},
		Performance: &models.PerformanceFacts{LoadTime: 800},
		RobotsTxt:   &models.RobotsTxtFacts{Exists: true},
		Sitemap:     &models.SitemapFacts{Exists: true, URLCount: 3},
	}
}

func countSeverity(s *models.Summary, sev models.Severity) []string {
	var types []string
	for _, r := range s.Recommendations {
		if r.Severity == sev {
			types = append(types, r.Type)
		}
	}
	return types
}

func TestScore_PerfectPage(t *testing.T) {
	summary := NewEngine(0).Score(goodBundle())

	assert.Equal(t, 100, summary.Score)
	assert.Empty(t, summary.Recommendations)
	assert.Zero(t, summary.CriticalIssues)
	assert.Zero(t, summary.Warnings)
}

func TestScore_MissingMetaAndImageAlts(t *testing.T) {
	facts := goodBundle()
	facts.Meta.Title = models.TextFact{Status: models.LengthMissing}
	facts.Meta.Description = models.TextFact{Status: models.LengthMissing}
	facts.Images = &models.ImageFacts{Total: 3, MissingAlt: 3}

	summary := NewEngine(0).Score(facts)

	assert.Equal(t, 74, summary.Score)
	assert.Equal(t, []string{TypeMetaTitle, TypeMetaDescription}, countSeverity(summary, models.SeverityCritical))
	assert.Equal(t, []string{TypeImages}, countSeverity(summary, models.SeverityWarning))
	assert.Equal(t, 2, summary.CriticalIssues)
	assert.Equal(t, 1, summary.Warnings)
}

func TestScore_Penalties(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(f *models.FactBundle)
		wantScore int
		wantType  string
		wantSev   models.Severity
	}{
		{
			name:      "title too long",
			mutate:    func(f *models.FactBundle) { f.Meta.Title = models.TextFact{Length: 70, Status: models.LengthTooLong} },
			wantScore: 95, wantType: TypeTitleLength, wantSev: models.SeverityWarning,
		},
		{
			name:      "description too long",
			mutate:    func(f *models.FactBundle) { f.Meta.Description = models.TextFact{Length: 200, Status: models.LengthTooLong} },
			wantScore: 95, wantType: TypeDescriptionLength, wantSev: models.SeverityWarning,
		},
		{
			name:      "title too short is informational",
			mutate:    func(f *models.FactBundle) { f.Meta.Title = models.TextFact{Length: 10, Status: models.LengthTooShort} },
			wantScore: 100, wantType: TypeTitleLength, wantSev: models.SeverityInfo,
		},
		{
			name:      "missing h1",
			mutate:    func(f *models.FactBundle) { f.Headings.H1 = nil },
			wantScore: 90, wantType: TypeHeadings, wantSev: models.SeverityCritical,
		},
		{
			name: "multiple h1",
			mutate: func(f *models.FactBundle) {
				f.Headings.H1 = []models.Heading{{Content: "a"}, {Content: "b"}}
			},
			wantScore: 95, wantType: TypeHeadings, wantSev: models.SeverityWarning,
		},
		{
			name:      "image penalty is capped",
			mutate:    func(f *models.FactBundle) { f.Images = &models.ImageFacts{Total: 40, MissingAlt: 40} },
			wantScore: 80, wantType: TypeImages, wantSev: models.SeverityWarning,
		},
		{
			name:      "slow page",
			mutate:    func(f *models.FactBundle) { f.Performance.LoadTime = 3001 },
			wantScore: 90, wantType: TypePerformance, wantSev: models.SeverityWarning,
		},
		{
			name:      "no ssl",
			mutate:    func(f *models.FactBundle) { f.Technical.SSL = false },
			wantScore: 100, wantType: TypeSSL, wantSev: models.SeverityInfo,
		},
		{
			name: "broken links",
			mutate: func(f *models.FactBundle) {
				f.Links.Broken = []models.LinkRecord{{Href: "https://example.com/x", Status: models.LinkBroken}}
			},
			wantScore: 100, wantType: TypeBrokenLinks, wantSev: models.SeverityInfo,
		},
		{
			name:      "no robots",
			mutate:    func(f *models.FactBundle) { f.RobotsTxt = &models.RobotsTxtFacts{Exists: false, Error: "404"} },
			wantScore: 100, wantType: TypeRobotsTxt, wantSev: models.SeverityInfo,
		},
		{
			name:      "no sitemap",
			mutate:    func(f *models.FactBundle) { f.Sitemap = &models.SitemapFacts{Exists: false} },
			wantScore: 100, wantType: TypeSitemap, wantSev: models.SeverityInfo,
		},
		{
			name:      "no canonical",
			mutate:    func(f *models.FactBundle) { f.Meta.Canonical = "" },
			wantScore: 100, wantType: TypeCanonical, wantSev: models.SeverityInfo,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			facts := goodBundle()
			tc.mutate(facts)

			summary := NewEngine(DefaultSlowLoadMs).Score(facts)
			assert.Equal(t, tc.wantScore, summary.Score)
			require.Len(t, summary.Recommendations, 1)
			assert.Equal(t, tc.wantType, summary.Recommendations[0].Type)
			assert.Equal(t, tc.wantSev, summary.Recommendations[0].Severity)
		})
	}
}

func TestScore_AbsentFactsAreNotJudged(t *testing.T) {
	summary := NewEngine(0).Score(&models.FactBundle{
		ExtractionErrors: []models.ExtractionError{{Extractor: models.ExtractorMeta, Message: "boom"}},
	})
	assert.Equal(t, 100, summary.Score)
	assert.Empty(t, summary.Recommendations)

	summary = NewEngine(0).Score(nil)
	assert.Equal(t, 100, summary.Score)
}

func TestScore_Deterministic(t *testing.T) {
	facts := goodBundle()
	facts.Meta.Title = models.TextFact{Status: models.LengthMissing}
	facts.Headings.H1 = nil
	facts.Technical.SSL = false
	facts.Performance.LoadTime = 9000

	engine := NewEngine(0)
	first := engine.Score(facts)
	second := engine.Score(facts)

	assert.Equal(t, first, second)
	assert.Equal(t, 70, first.Score)
	assert.Equal(t, 1, first.Passed)
}

func TestScore_WorstCase(t *testing.T) {
	facts := &models.FactBundle{
		Meta: &models.MetaFacts{
			Title:       models.TextFact{Status: models.LengthMissing},
			Description: models.TextFact{Status: models.LengthMissing},
		},
		Headings:    &models.HeadingFacts{},
		Images:      &models.ImageFacts{MissingAlt: 100},
		Performance: &models.PerformanceFacts{LoadTime: 60000},
	}

	summary := NewEngine(0).Score(facts)
	assert.Equal(t, 40, summary.Score)
	assert.GreaterOrEqual(t, summary.Score, 0)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, clamp(-35))
	assert.Equal(t, 100, clamp(130))
	assert.Equal(t, 42, clamp(42))
}
