// Package htmltext reduces raw HTML to plain text for extraction and
// fingerprinting. It is regex-based on purpose: input pages are often
// malformed and normalization must degrade gracefully instead of failing.
package htmltext

import (
	"regexp"
	"strings"
)

var (
	commentRe     = regexp.MustCompile(`(?s)<!--.*?-->`)
	scriptStyleRe = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>|<style\b[^>]*>.*?</style>|<noscript\b[^>]*>.*?</noscript>`)
	blockCloseRe  = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|ul|ol|blockquote|section|article|tr)>|<br\s*/?>`)
	tagRe         = regexp.MustCompile(`(?s)<[^>]*>`)
	multiNewline  = regexp.MustCompile(`\n{3,}`)
	intraSpaceRe  = regexp.MustCompile(`[ \t]+`)
)

// entities is the fixed decode table. Anything outside it passes through.
var entities = []struct{ from, to string }{
	{"&nbsp;", " "},
	{"&amp;", "&"},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&quot;", `"`},
	{"&#34;", `"`},
	{"&#39;", "'"},
	{"&#x27;", "'"},
	{"&apos;", "'"},
	{"&rsquo;", "’"},
	{"&lsquo;", "‘"},
	{"&rdquo;", "”"},
	{"&ldquo;", "“"},
	{"&ndash;", "–"},
	{"&mdash;", "—"},
	{"&hellip;", "…"},
}

// Normalize strips markup from html and returns readable plain text.
// When preserveLineBreaks is true, block-level boundaries become newlines
// before tags are stripped; otherwise all whitespace collapses to single
// spaces. Malformed input yields best-effort output, never an error.
func Normalize(html string, preserveLineBreaks bool) string {
	s := commentRe.ReplaceAllString(html, "")
	s = scriptStyleRe.ReplaceAllString(s, "")

	if preserveLineBreaks {
		s = blockCloseRe.ReplaceAllString(s, "\n")
	}
	s = tagRe.ReplaceAllString(s, " ")

	s = decodeEntities(s)

	if !preserveLineBreaks {
		return strings.Join(strings.Fields(s), " ")
	}

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(intraSpaceRe.ReplaceAllString(line, " "))
	}
	s = strings.Join(lines, "\n")
	s = multiNewline.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func decodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	for _, e := range entities {
		s = strings.ReplaceAll(s, e.from, e.to)
	}
	return s
}
