package types

import (
	"strings"
	"testing"
)

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "https://example.com/path", "https://example.com/path"},
		{"trailing slash", "https://example.com/path/", "https://example.com/path"},
		{"uppercase host", "HTTPS://Example.COM/Path", "https://example.com/Path"},
		{"fragment dropped", "https://example.com/path#section", "https://example.com/path"},
		{"utm stripped", "https://example.com/path?utm_source=feed&utm_medium=rss", "https://example.com/path"},
		{"click ids stripped", "https://example.com/p?fbclid=X&gclid=Y", "https://example.com/p"},
		{"real params kept", "https://example.com/p?id=42", "https://example.com/p?id=42"},
		{"empty", "  ", ""},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := NormalizeURL(c.in); got != c.want {
				t.Fatalf("NormalizeURL(%q) = %q; want %q", c.in, got, c.want)
			}
		})
	}
}

func TestIdentityKeyPrecedence(t *testing.T) {
	platform := ArticleRecord{
		PlatformID: "note:abc123",
		SourceURL:  "https://note.com/writer/n/abc123",
		Body:       "body",
	}
	if got := platform.IdentityKey(); got != "note:abc123" {
		t.Fatalf("platform record key = %q; want platform ID", got)
	}

	web := ArticleRecord{SourceURL: "https://example.com/post/?utm_source=x", Body: "body"}
	if got := web.IdentityKey(); got != "https://example.com/post" {
		t.Fatalf("web record key = %q; want normalized URL", got)
	}

	bare := ArticleRecord{Body: "Some pasted text with no origin"}
	if got := bare.IdentityKey(); !strings.HasPrefix(got, "fp:") {
		t.Fatalf("bare record key = %q; want fingerprint", got)
	}
}

func TestIdentityKeyStableAcrossURLVariants(t *testing.T) {
	a := ArticleRecord{SourceURL: "https://example.com/post"}
	b := ArticleRecord{SourceURL: "https://example.com/post/?utm_campaign=spring#top"}
	if a.IdentityKey() != b.IdentityKey() {
		t.Fatalf("URL variants produced different keys: %q vs %q", a.IdentityKey(), b.IdentityKey())
	}
}

func TestContentFingerprint(t *testing.T) {
	base := ContentFingerprint("Hello   World, this is the body.")

	// Case and whitespace folding collapse to the same fingerprint.
	folded := ContentFingerprint("hello world,\n this is the body.")
	if base != folded {
		t.Fatalf("folding changed fingerprint: %q vs %q", base, folded)
	}

	// Only a prefix of the body feeds the key, so a long tail is irrelevant.
	prefix := strings.Repeat("a", 200)
	if ContentFingerprint(prefix+" one tail") != ContentFingerprint(prefix+" other tail") {
		t.Fatal("tail beyond the fingerprint window changed the key")
	}

	// Different openings must diverge.
	if base == ContentFingerprint("Completely different text.") {
		t.Fatal("distinct bodies collided")
	}
}

func TestValid(t *testing.T) {
	cases := []struct {
		name   string
		record ArticleRecord
		want   bool
	}{
		{"title only", ArticleRecord{Title: "T"}, true},
		{"body only", ArticleRecord{Body: "B"}, true},
		{"both blank", ArticleRecord{Title: "  ", Body: "\n"}, false},
		{"empty", ArticleRecord{}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.record.Valid(); got != c.want {
				t.Fatalf("Valid() = %v; want %v", got, c.want)
			}
		})
	}
}

func TestGenerateIDStable(t *testing.T) {
	a := GenerateID("input")
	b := GenerateID("input")
	if a != b || len(a) != 16 {
		t.Fatalf("GenerateID unstable or wrong length: %q vs %q", a, b)
	}
	if a == GenerateID("other") {
		t.Fatal("distinct inputs collided")
	}
}
