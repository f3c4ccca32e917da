package types

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// ArticleRecord represents one imported unit of the author's writing.
type ArticleRecord struct {
	SourceURL    string            `json:"source_url"`
	PlatformID   string            `json:"platform_id,omitempty"`
	Title        string            `json:"title"`
	Body         string            `json:"body"`
	PublishedAt  string            `json:"published_at,omitempty"` // ISO date, empty when no signal found
	Category     string            `json:"category,omitempty"`
	Tags         []string          `json:"tags,omitempty"`
	DateInferred bool              `json:"date_inferred,omitempty"`
	RawFields    map[string]string `json:"raw_fields,omitempty"`
}

// Valid reports whether the record carries enough content to keep.
// A record with only a title still counts for non-platform sources.
func (r *ArticleRecord) Valid() bool {
	return strings.TrimSpace(r.Title) != "" || strings.TrimSpace(r.Body) != ""
}

// IdentityKey returns the value used to decide whether two records refer
// to the same item: platform post ID first, then the normalized source
// URL, then a fingerprint of the body as last resort.
func (r *ArticleRecord) IdentityKey() string {
	if r.PlatformID != "" {
		return r.PlatformID
	}
	if u := NormalizeURL(r.SourceURL); u != "" {
		return u
	}
	return ContentFingerprint(r.Body)
}

// TagString joins tags into the comma-separated form used by the tabular codec.
func (r *ArticleRecord) TagString() string {
	return strings.Join(r.Tags, ",")
}

// DiscoveredURL is a candidate article link produced by a discovery
// strategy, annotated with whatever recency hint the strategy saw.
type DiscoveredURL struct {
	URL           string `json:"url"`
	RecencySignal string `json:"recency_signal,omitempty"` // feed pubDate or sitemap lastmod, raw
	Title         string `json:"title,omitempty"`
}

// ImportBatch is the unit of work handed to the fetch orchestrator.
type ImportBatch struct {
	URLs       []DiscoveredURL
	ByteBudget int
}

// FailedURL records one URL that could not be converted into a record.
type FailedURL struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// ImportSummary is what an import run reports back to the caller.
type ImportSummary struct {
	RecordsImported int       `json:"records_imported"`
	RecordsFailed   int       `json:"records_failed"`
	Truncated       bool      `json:"truncated"`
	Errors          []string  `json:"errors,omitempty"` // capped sample
	CompletedAt     time.Time `json:"completed_at"`
}

// GenerateID creates a short, stable ID by hashing the provided string input
func GenerateID(input string) string {
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16]
}

// fingerprintRunes is how much of the body feeds the synthetic identity key.
const fingerprintRunes = 64

// ContentFingerprint derives a synthetic identity key from the first
// characters of the body, case-folded, for records with no URL or platform ID.
func ContentFingerprint(body string) string {
	folded := strings.ToLower(strings.Join(strings.Fields(body), " "))
	if utf8.RuneCountInString(folded) > fingerprintRunes {
		runes := []rune(folded)
		folded = string(runes[:fingerprintRunes])
	}
	return "fp:" + GenerateID(folded)
}

// NormalizeURL canonicalizes a source URL for identity comparison:
// lowercases scheme and host, drops the fragment, strips common tracking
// query parameters, and trims the trailing slash.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return strings.ToLower(raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") || lk == "fbclid" || lk == "gclid" {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()

	out := u.String()
	if strings.HasSuffix(out, "/") {
		out = strings.TrimRight(out, "/")
	}
	return out
}
