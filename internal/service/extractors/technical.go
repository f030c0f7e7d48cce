package extractors

import (
	"bytes"
	"strings"
	"website_auditor/internal/domain/models"

	"golang.org/x/net/html"
)

func Technical(page *Page) (*models.TechnicalFacts, error) {
	res := page.Fetch
	return &models.TechnicalFacts{
		SSL:          page.URL.Scheme == "https",
		FinalURL:     page.URL.String(),
		StatusCode:   res.StatusCode,
		Redirects:    res.Redirects,
		Server:       res.Headers.Get("Server"),
		ContentType:  res.Headers.Get("Content-Type"),
		CacheControl: res.Headers.Get("Cache-Control"),
		HTMLVersion:  htmlVersion(res.Document),
	}, nil
}

// htmlVersion reads the doctype token and names the HTML version it declares.
func htmlVersion(body []byte) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(body))
	var doctype string
loop:
	for {
		switch tokenizer.Next() {
		case html.DoctypeToken:
			doctype = tokenizer.Token().String()
			break loop
		case html.StartTagToken, html.ErrorToken:
			break loop
		}
	}

	lower := strings.ToLower(doctype)
	switch {
	case lower == "":
		return ""
	case strings.Contains(lower, "xhtml 1.1"):
		return "XHTML 1.1"
	case strings.Contains(lower, "xhtml 1.0"):
		return "XHTML 1.0 " + dtdVariant(lower)
	case strings.Contains(lower, "html 4.01"):
		return "HTML 4.01 " + dtdVariant(lower)
	case strings.Contains(lower, "html 5") || strings.TrimSpace(lower) == "<!doctype html>":
		return "HTML5"
	default:
		return doctype
	}
}

func dtdVariant(doctype string) string {
	switch {
	case strings.Contains(doctype, "transitional"):
		return "Transitional"
	case strings.Contains(doctype, "frameset"):
		return "Frameset"
	default:
		return "Strict"
	}
}
