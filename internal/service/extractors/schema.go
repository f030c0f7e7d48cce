package extractors

import (
	"encoding/json"
	"strings"
	"website_auditor/internal/domain/models"

	"github.com/PuerkitoBio/goquery"
)

// Schema reports JSON-LD blocks and microdata item types.
func Schema(page *Page) (*models.SchemaFacts, error) {
	facts := &models.SchemaFacts{Types: []string{}, Microdata: []string{}}
	seenTypes := map[string]bool{}

	page.Doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		facts.JSONLDCount++

		var doc any
		if err := json.Unmarshal([]byte(strings.TrimSpace(s.Text())), &doc); err != nil {
			facts.InvalidJSONLD++
			return
		}
		for _, t := range jsonLDTypes(doc) {
			if !seenTypes[t] {
				seenTypes[t] = true
				facts.Types = append(facts.Types, t)
			}
		}
	})

	seenItems := map[string]bool{}
	page.Doc.Find("[itemtype]").Each(func(_ int, s *goquery.Selection) {
		for _, t := range strings.Fields(s.AttrOr("itemtype", "")) {
			if !seenItems[t] {
				seenItems[t] = true
				facts.Microdata = append(facts.Microdata, t)
			}
		}
	})
	return facts, nil
}

// jsonLDTypes walks top-level objects, arrays and @graph members for @type.
func jsonLDTypes(v any) []string {
	var types []string
	switch node := v.(type) {
	case []any:
		for _, item := range node {
			types = append(types, jsonLDTypes(item)...)
		}
	case map[string]any:
		switch t := node["@type"].(type) {
		case string:
			types = append(types, t)
		case []any:
			for _, item := range t {
				if s, ok := item.(string); ok {
					types = append(types, s)
				}
			}
		}
		if graph, ok := node["@graph"]; ok {
			types = append(types, jsonLDTypes(graph)...)
		}
	}
	return types
}
