package extractors

import (
	"bytes"
	"context"
	"net/url"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"
	"website_auditor/internal/domain/adaptors"
	"website_auditor/internal/domain/models"
	"website_auditor/internal/pkg/errors"
	"website_auditor/internal/pkg/metrics"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Page is the parsed form of a fetched document shared by all extractors.
// Extractors must treat it as read-only.
type Page struct {
	URL   *url.URL
	Doc   *goquery.Document
	Fetch *models.FetchResult
}

func NewPage(res *models.FetchResult) (*Page, error) {
	if res == nil {
		return nil, errors.New(`fetch result is nil`)
	}

	raw := res.FinalURL
	if raw == "" {
		raw = res.URL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Wrap(err, `failed to parse page url`)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Document))
	if err != nil {
		return nil, errors.Wrap(err, `failed to parse html`)
	}

	return &Page{URL: u, Doc: doc, Fetch: res}, nil
}

// Extractor produces one sub-record of the fact bundle. Extract returns one of
// the *models.XxxFacts types.
type Extractor struct {
	Name    string
	Extract func(ctx context.Context, page *Page) (any, error)
}

// Default returns every extractor in bundle order. fetcher serves the
// robots.txt and sitemap.xml lookups.
func Default(fetcher adaptors.PageFetcher, userAgent string) []Extractor {
	return []Extractor{
		{Name: models.ExtractorMeta, Extract: wrap(Meta)},
		{Name: models.ExtractorHeadings, Extract: wrap(Headings)},
		{Name: models.ExtractorImages, Extract: wrap(Images)},
		{Name: models.ExtractorLinks, Extract: wrap(Links)},
		{Name: models.ExtractorTechnical, Extract: wrap(Technical)},
		{Name: models.ExtractorPerformance, Extract: wrap(Performance)},
		{Name: models.ExtractorSocial, Extract: wrap(Social)},
		{Name: models.ExtractorTracking, Extract: wrap(Tracking)},
		{Name: models.ExtractorSchema, Extract: wrap(Schema)},
		{Name: models.ExtractorAccessibility, Extract: wrap(Accessibility)},
		{Name: models.ExtractorRobotsTxt, Extract: RobotsTxt(fetcher, userAgent)},
		{Name: models.ExtractorSitemap, Extract: Sitemap(fetcher)},
	}
}

func wrap[T any](fn func(page *Page) (*T, error)) func(context.Context, *Page) (any, error) {
	return func(_ context.Context, page *Page) (any, error) {
		return fn(page)
	}
}

// Run executes the extractors concurrently. A failing or panicking extractor
// leaves its sub-record nil and adds an ExtractionError; the others are
// unaffected. The returned error is only the context error.
func Run(ctx context.Context, page *Page, list []Extractor, logger *log.Logger) (*models.FactBundle, error) {
	bundle := &models.FactBundle{}
	mu := sync.Mutex{}

	var g errgroup.Group
	for _, ex := range list {
		g.Go(func() error {
			fact, err := runIsolated(ctx, ex, page)
			if err == nil {
				err = assign(bundle, &mu, fact)
			}
			if err != nil {
				logger.WithContext(ctx).WithError(err).WithField(`extractor`, ex.Name).Warn(`extractor failed`)
				metrics.AuditExtractorFailuresTotal.WithLabelValues(ex.Name).Inc()

				mu.Lock()
				bundle.ExtractionErrors = append(bundle.ExtractionErrors, models.ExtractionError{
					Extractor: ex.Name,
					Message:   errors.Message(err),
				})
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(bundle.ExtractionErrors, func(i, j int) bool {
		return bundle.ExtractionErrors[i].Extractor < bundle.ExtractionErrors[j].Extractor
	})
	return bundle, ctx.Err()
}

func runIsolated(ctx context.Context, ex Extractor, page *Page) (fact any, err error) {
	defer func() {
		if r := recover(); r != nil {
			fact = nil
			err = errors.Errorf(`panic: %v`, r)
		}
	}()
	return ex.Extract(ctx, page)
}

func assign(b *models.FactBundle, mu *sync.Mutex, fact any) error {
	mu.Lock()
	defer mu.Unlock()

	switch f := fact.(type) {
	case *models.MetaFacts:
		b.Meta = f
	case *models.HeadingFacts:
		b.Headings = f
	case *models.ImageFacts:
		b.Images = f
	case *models.LinkFacts:
		b.Links = f
	case *models.TechnicalFacts:
		b.Technical = f
	case *models.PerformanceFacts:
		b.Performance = f
	case *models.SocialFacts:
		b.Social = f
	case *models.TrackingFacts:
		b.Tracking = f
	case *models.SchemaFacts:
		b.Schema = f
	case *models.AccessibilityFacts:
		b.Accessibility = f
	case *models.RobotsTxtFacts:
		b.RobotsTxt = f
	case *models.SitemapFacts:
		b.Sitemap = f
	default:
		return errors.Errorf(`unexpected fact type %T`, fact)
	}
	return nil
}

// text collapses runs of whitespace the way a browser renders them.
func text(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}

// resolve makes ref absolute against base. Unparseable refs are returned as-is.
func resolve(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}
