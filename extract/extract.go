// Package extract turns one page of raw HTML into structured article
// fields. Every field resolves independently through an ordered list of
// heuristics, so a partially marked-up page still yields a partial result.
package extract

import (
	"net/url"
	"strings"

	"writecorpus/htmltext"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// SourceHint tells the extractor which platform-specific paths to try first.
type SourceHint string

const (
	// SourceGeneric covers WordPress-style and unknown sites.
	SourceGeneric SourceHint = "generic"
	// SourceNote covers the note.com hosted-article platform.
	SourceNote SourceHint = "note"
)

// Result holds the independently extracted fields for one page.
type Result struct {
	Title    string
	Body     string
	Date     string // ISO date (YYYY-MM-DD), empty when no signal parsed
	Category string
	Tags     []string
}

// fieldHeuristic inspects a parsed document and returns a candidate value,
// or "" to let the next heuristic try.
type fieldHeuristic func(doc *goquery.Document) string

// Extract resolves all fields from raw HTML. It never returns an error:
// pages that defeat every heuristic produce empty fields instead.
func Extract(html string, hint SourceHint) Result {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// Unparseable markup: salvage what the normalizer can.
		return Result{Body: htmltext.Normalize(html, true)}
	}

	ld := parseLinkedData(doc)

	return Result{
		Title:    firstNonEmpty(doc, titleHeuristics(hint)),
		Body:     extractBody(doc, html, hint),
		Date:     extractDate(doc, html, ld),
		Category: firstNonEmpty(doc, categoryHeuristics(ld)),
		Tags:     extractTags(doc, ld),
	}
}

// firstNonEmpty runs heuristics in order and keeps the first non-blank hit.
func firstNonEmpty(doc *goquery.Document, heuristics []fieldHeuristic) string {
	for _, h := range heuristics {
		if v := strings.TrimSpace(h(doc)); v != "" {
			return v
		}
	}
	return ""
}

// noteBodySelectors are the hosted platform's article content containers,
// most specific first.
var noteBodySelectors = []string{
	".note-common-styles__textnote-body",
	".p-article__content",
}

// contentClassSelectors is the fixed priority order of well-known
// content-wrapper classes on generic blog themes.
var contentClassSelectors = []string{
	".entry-content",
	".post-content",
	".article-body",
	".post-body",
	".entry",
	"#content",
}

func titleHeuristics(hint SourceHint) []fieldHeuristic {
	var hs []fieldHeuristic
	if hint == SourceNote {
		hs = append(hs, func(doc *goquery.Document) string {
			for _, sel := range noteBodySelectors {
				if h := doc.Find(sel + " h1").First(); h.Length() > 0 {
					return h.Text()
				}
			}
			return doc.Find("article h1").First().Text()
		})
	}
	hs = append(hs,
		documentTitle,
		func(doc *goquery.Document) string { return doc.Find("h1").First().Text() },
		func(doc *goquery.Document) string { return doc.Find("h2").First().Text() },
		func(doc *goquery.Document) string {
			v, _ := doc.Find(`meta[name="description"]`).Attr("content")
			return v
		},
	)
	return hs
}

// titleSeparators split site names off <title> text, half-width and full-width.
var titleSeparators = []string{"|", "｜", " - ", " – ", "―", "ー "}

func documentTitle(doc *goquery.Document) string {
	t := strings.TrimSpace(doc.Find("title").First().Text())
	if t == "" {
		return ""
	}
	for _, sep := range titleSeparators {
		if idx := strings.Index(t, sep); idx > 0 {
			t = t[:idx]
			break
		}
	}
	return strings.TrimSpace(t)
}

func extractBody(doc *goquery.Document, rawHTML string, hint SourceHint) string {
	var selectors []string
	if hint == SourceNote {
		selectors = append(selectors, noteBodySelectors...)
	}
	selectors = append(selectors, "article")
	selectors = append(selectors, contentClassSelectors...)
	selectors = append(selectors, "main")

	for _, sel := range selectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		inner, err := node.Html()
		if err != nil {
			continue
		}
		if text := htmltext.Normalize(inner, true); text != "" {
			return text
		}
	}

	// Readability pass before the crude whole-body fallback.
	if text := readableBody(rawHTML); text != "" {
		return text
	}

	// Whole document body with chrome regions excised.
	body := doc.Find("body").Clone()
	body.Find("nav, header, footer, aside").Remove()
	if inner, err := body.Html(); err == nil {
		return htmltext.Normalize(inner, true)
	}
	return ""
}

// readableBody runs go-readability over the full document and returns
// plain text, or "" when the page has no recognizable article.
func readableBody(rawHTML string) string {
	pageURL, _ := url.Parse("http://localhost/")
	article, err := readability.FromReader(strings.NewReader(rawHTML), pageURL)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.TextContent)
}
