package models

// Extractor names, used as keys for extraction errors and metrics labels.
const (
	ExtractorMeta          = "meta"
	ExtractorHeadings      = "headings"
	ExtractorImages        = "images"
	ExtractorLinks         = "links"
	ExtractorTechnical     = "technical"
	ExtractorPerformance   = "performance"
	ExtractorSocial        = "social"
	ExtractorTracking      = "tracking"
	ExtractorSchema        = "schema"
	ExtractorAccessibility = "accessibility"
	ExtractorRobotsTxt     = "robotsTxt"
	ExtractorSitemap       = "sitemap"
)

// FactBundle is the fixed-shape result of one audit. A nil sub-record means
// its extractor failed; the reason is listed in ExtractionErrors.
type FactBundle struct {
	Meta             *MetaFacts          `json:"meta,omitempty"`
	Headings         *HeadingFacts       `json:"headings,omitempty"`
	Images           *ImageFacts         `json:"images,omitempty"`
	Links            *LinkFacts          `json:"links,omitempty"`
	Technical        *TechnicalFacts     `json:"technical,omitempty"`
	Performance      *PerformanceFacts   `json:"performance,omitempty"`
	Social           *SocialFacts        `json:"social,omitempty"`
	Tracking         *TrackingFacts      `json:"tracking,omitempty"`
	Schema           *SchemaFacts        `json:"schema,omitempty"`
	Accessibility    *AccessibilityFacts `json:"accessibility,omitempty"`
	RobotsTxt        *RobotsTxtFacts     `json:"robotsTxt,omitempty"`
	Sitemap          *SitemapFacts       `json:"sitemap,omitempty"`
	ExtractionErrors []ExtractionError   `json:"extractionErrors,omitempty"`
}

type LengthStatus string

const (
	LengthMissing  LengthStatus = "missing"
	LengthTooShort LengthStatus = "too_short"
	LengthGood     LengthStatus = "good"
	LengthTooLong  LengthStatus = "too_long"
)

type TextFact struct {
	Content string       `json:"content,omitempty"`
	Length  int          `json:"length"`
	Status  LengthStatus `json:"status"`
}

type MetaFacts struct {
	Title          TextFact `json:"title"`
	Description    TextFact `json:"description"`
	Keywords       []string `json:"keywords"`
	Canonical      string   `json:"canonical,omitempty"`
	Favicon        string   `json:"favicon,omitempty"`
	Viewport       string   `json:"viewport,omitempty"`
	Robots         string   `json:"robots,omitempty"`
	HasOpenGraph   bool     `json:"hasOpenGraph"`
	HasTwitterCard bool     `json:"hasTwitterCard"`
}

type Heading struct {
	Content string `json:"content"`
	Length  int    `json:"length"`
}

type HeadingFacts struct {
	H1 []Heading `json:"h1"`
	H2 []Heading `json:"h2"`
	H3 []Heading `json:"h3"`
	H4 []Heading `json:"h4"`
	H5 []Heading `json:"h5"`
	H6 []Heading `json:"h6"`
}

type Image struct {
	Src    string `json:"src"`
	Alt    string `json:"alt"`
	HasAlt bool   `json:"hasAlt"`
}

type ImageFacts struct {
	Images     []Image `json:"images"`
	Total      int     `json:"total"`
	MissingAlt int     `json:"missingAlt"`
}

type LinkStatus string

const (
	LinkUnchecked LinkStatus = "unchecked"
	LinkReachable LinkStatus = "reachable"
	LinkBroken    LinkStatus = "broken"
	LinkError     LinkStatus = "error"
	LinkSkipped   LinkStatus = "skipped"
)

type LinkRecord struct {
	Href       string     `json:"href"`
	Text       string     `json:"text"`
	IsInternal bool       `json:"isInternal"`
	Status     LinkStatus `json:"status"`
	StatusCode int        `json:"statusCode,omitempty"`
	Reason     string     `json:"reason,omitempty"`
}

// IsBroken reports whether the probe returned an error status or failed outright.
func (l LinkRecord) IsBroken() bool {
	return l.Status == LinkBroken || l.Status == LinkError
}

type LinkFacts struct {
	Links    []LinkRecord `json:"links"`
	Total    int          `json:"total"`
	Internal int          `json:"internal"`
	External int          `json:"external"`
	Broken   []LinkRecord `json:"broken"`
}

type TechnicalFacts struct {
	SSL          bool   `json:"ssl"`
	FinalURL     string `json:"finalUrl"`
	StatusCode   int    `json:"statusCode"`
	Redirects    int    `json:"redirects"`
	Server       string `json:"server,omitempty"`
	ContentType  string `json:"contentType,omitempty"`
	CacheControl string `json:"cacheControl,omitempty"`
	HTMLVersion  string `json:"htmlVersion,omitempty"`
}

type PerformanceFacts struct {
	PageSize int   `json:"pageSize"`
	LoadTime int64 `json:"loadTime"`
}

type SocialFacts struct {
	OpenGraph   map[string]string `json:"openGraph"`
	TwitterCard map[string]string `json:"twitterCard"`
	Profiles    []string          `json:"profiles"`
}

type TrackingFacts struct {
	GoogleAnalytics  bool `json:"googleAnalytics"`
	GoogleTagManager bool `json:"googleTagManager"`
	FacebookPixel    bool `json:"facebookPixel"`
	Hotjar           bool `json:"hotjar"`
}

type SchemaFacts struct {
	JSONLDCount   int      `json:"jsonLdCount"`
	InvalidJSONLD int      `json:"invalidJsonLd"`
	Types         []string `json:"types"`
	Microdata     []string `json:"microdata"`
}

type AccessibilityFacts struct {
	HasLang            bool   `json:"hasLang"`
	Lang               string `json:"lang,omitempty"`
	ImagesMissingAlt   int    `json:"imagesMissingAlt"`
	InputsWithoutLabel int    `json:"inputsWithoutLabel"`
	ButtonsWithoutText int    `json:"buttonsWithoutText"`
	LandmarkCount      int    `json:"landmarkCount"`
}

type RobotsTxtFacts struct {
	Exists      bool     `json:"exists"`
	Content     string   `json:"content,omitempty"`
	HasSitemap  bool     `json:"hasSitemap"`
	Sitemaps    []string `json:"sitemaps,omitempty"`
	PageAllowed bool     `json:"pageAllowed"`
	Error       string   `json:"error,omitempty"`
}

type SitemapFacts struct {
	Exists   bool   `json:"exists"`
	URLCount int    `json:"urlCount"`
	IsIndex  bool   `json:"isIndex"`
	Error    string `json:"error,omitempty"`
}
