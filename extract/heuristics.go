package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

// linkedData carries the fields we read out of JSON-LD blocks.
type linkedData struct {
	DatePublished  string
	ArticleSection string
	Keywords       []string
}

// articleTypes are the schema.org types treated as article-like.
var articleTypes = []string{"Article", "NewsArticle", "BlogPosting", "TechArticle"}

// parseLinkedData scans ld+json script blocks for an Article-like node.
// Arrays and @graph wrappers are unwrapped; the first match wins.
func parseLinkedData(doc *goquery.Document) linkedData {
	var ld linkedData
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var raw interface{}
		if err := json.Unmarshal([]byte(s.Text()), &raw); err != nil {
			return true // malformed block, keep scanning
		}
		if found, ok := findArticleNode(raw); ok {
			ld = found
			return false
		}
		return true
	})
	return ld
}

func findArticleNode(raw interface{}) (linkedData, bool) {
	switch v := raw.(type) {
	case []interface{}:
		for _, item := range v {
			if ld, ok := findArticleNode(item); ok {
				return ld, true
			}
		}
	case map[string]interface{}:
		if graph, ok := v["@graph"]; ok {
			if ld, ok := findArticleNode(graph); ok {
				return ld, true
			}
		}
		if !isArticleType(v["@type"]) {
			return linkedData{}, false
		}
		ld := linkedData{
			DatePublished:  stringValue(v["datePublished"]),
			ArticleSection: stringValue(v["articleSection"]),
			Keywords:       keywordList(v["keywords"]),
		}
		return ld, true
	}
	return linkedData{}, false
}

func isArticleType(t interface{}) bool {
	check := func(s string) bool {
		for _, at := range articleTypes {
			if strings.EqualFold(s, at) {
				return true
			}
		}
		return false
	}
	switch v := t.(type) {
	case string:
		return check(v)
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && check(s) {
				return true
			}
		}
	}
	return false
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// keywordList accepts both the string and array forms schema.org allows.
func keywordList(v interface{}) []string {
	switch kw := v.(type) {
	case string:
		parts := strings.Split(kw, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	case []interface{}:
		out := make([]string, 0, len(kw))
		for _, item := range kw {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	}
	return nil
}

var bareDateRe = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)

// extractDate tries date signals in priority order and returns the first
// one that parses, formatted as YYYY-MM-DD. Empty means no reliable signal;
// the caller decides whether to substitute "now".
func extractDate(doc *goquery.Document, rawHTML string, ld linkedData) string {
	candidates := []string{ld.DatePublished}

	if v, ok := doc.Find(`meta[property="article:published_time"]`).Attr("content"); ok {
		candidates = append(candidates, v)
	}
	if v, ok := doc.Find(`meta[property="og:article:published_time"]`).Attr("content"); ok {
		candidates = append(candidates, v)
	}

	published := doc.Find(`time[class*="published"]`).First()
	if v, ok := published.Attr("datetime"); ok {
		candidates = append(candidates, v)
	} else if published.Length() > 0 {
		candidates = append(candidates, published.Text())
	}

	doc.Find("time[datetime]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, ok := s.Attr("datetime"); ok {
			candidates = append(candidates, v)
			return false
		}
		return true
	})

	if m := bareDateRe.FindString(rawHTML); m != "" {
		candidates = append(candidates, m)
	}

	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if t, err := dateparse.ParseAny(c); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

func categoryHeuristics(ld linkedData) []fieldHeuristic {
	return []fieldHeuristic{
		func(doc *goquery.Document) string {
			return doc.Find(`a[rel="category tag"]`).First().Text()
		},
		func(doc *goquery.Document) string {
			return doc.Find("span.category").First().Text()
		},
		func(doc *goquery.Document) string {
			return doc.Find(".post-category").First().Text()
		},
		func(doc *goquery.Document) string { return ld.ArticleSection },
		func(doc *goquery.Document) string {
			v, _ := doc.Find(`meta[property="article:section"]`).Attr("content")
			return v
		},
	}
}

// extractTags is a union across all tag sources, not first-match-wins:
// the same page can carry tags in markup and structured data at once.
func extractTags(doc *goquery.Document, ld linkedData) []string {
	var tags []string
	seen := make(map[string]struct{})

	add := func(tag string) {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			return
		}
		norm := strings.ToLower(tag)
		if _, ok := seen[norm]; ok {
			return
		}
		seen[norm] = struct{}{}
		tags = append(tags, tag)
	}

	doc.Find(`a[rel="tag"]`).Each(func(_ int, s *goquery.Selection) { add(s.Text()) })
	doc.Find("span.tag").Each(func(_ int, s *goquery.Selection) { add(s.Text()) })
	doc.Find(".tags a").Each(func(_ int, s *goquery.Selection) { add(s.Text()) })
	for _, kw := range ld.Keywords {
		add(kw)
	}
	doc.Find(`meta[property="article:tag"]`).Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr("content"); ok {
			add(v)
		}
	})

	return tags
}
