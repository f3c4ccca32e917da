package storage

import (
	"strings"
	"testing"

	"writecorpus/types"
)

func TestCSVRoundTrip(t *testing.T) {
	records := []types.ArticleRecord{
		{
			SourceURL:   "https://example.com/a",
			Title:       `Title with "quotes", commas`,
			Body:        "line one\nline two\n\nline four",
			PublishedAt: "2026-03-01",
			Category:    "essays",
			Tags:        []string{"writing", "craft"},
		},
		{
			SourceURL:    "https://note.com/writer/n/abc",
			PlatformID:   "note:abc",
			Title:        "Platform post",
			Body:         "body",
			PublishedAt:  "2026-02-15",
			DateInferred: true,
			RawFields:    map[string]string{"Mood": "calm"},
		},
	}

	payload, err := EncodeCSV(records)
	if err != nil {
		t.Fatalf("EncodeCSV: %v", err)
	}

	decoded, err := DecodeCSV(payload)
	if err != nil {
		t.Fatalf("DecodeCSV: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("decoded %d records; want 2", len(decoded))
	}

	first := decoded[0]
	if first.Title != records[0].Title {
		t.Fatalf("title = %q; want %q", first.Title, records[0].Title)
	}
	if first.Body != records[0].Body {
		t.Fatalf("embedded newlines lost: %q", first.Body)
	}
	if first.TagString() != "writing,craft" {
		t.Fatalf("tags = %q", first.TagString())
	}

	second := decoded[1]
	if second.PlatformID != "note:abc" {
		t.Fatalf("platform ID lost: %q", second.PlatformID)
	}
	if !second.DateInferred {
		t.Fatal("inferred-date flag lost")
	}
	if second.RawFields["Mood"] != "calm" {
		t.Fatalf("raw field lost: %v", second.RawFields)
	}
}

func TestEncodeCSVColumnOrder(t *testing.T) {
	records := []types.ArticleRecord{
		{
			SourceURL:  "https://example.com/a",
			Title:      "t",
			Body:       "b",
			PlatformID: "note:x",
			RawFields:  map[string]string{"Zeta": "1", "Alpha": "2"},
		},
	}

	payload, err := EncodeCSV(records)
	if err != nil {
		t.Fatalf("EncodeCSV: %v", err)
	}

	header := strings.SplitN(payload, "\n", 2)[0]
	want := "Date,Title,Content,Category,Tags,URL,PlatformId,Alpha,Zeta"
	if header != want {
		t.Fatalf("header = %q; want %q", header, want)
	}
}

func TestDecodeCSVUnknownColumnsLandInRawFields(t *testing.T) {
	payload := "Date,Title,Content,URL,Editor\n2026-01-01,t,b,https://example.com/a,yuki"
	decoded, err := DecodeCSV(payload)
	if err != nil {
		t.Fatalf("DecodeCSV: %v", err)
	}
	if len(decoded) != 1 || decoded[0].RawFields["Editor"] != "yuki" {
		t.Fatalf("unknown column not preserved: %+v", decoded)
	}
}

func TestDecodeCSVEmptyPayload(t *testing.T) {
	for _, payload := range []string{"", "  \n "} {
		decoded, err := DecodeCSV(payload)
		if err != nil || len(decoded) != 0 {
			t.Fatalf("DecodeCSV(%q) = %v, %v; want empty", payload, decoded, err)
		}
	}
}

func TestDecodeCSVHeaderOnly(t *testing.T) {
	decoded, err := DecodeCSV("Date,Title,Content,Category,Tags,URL")
	if err != nil || len(decoded) != 0 {
		t.Fatalf("header-only payload = %v, %v; want empty", decoded, err)
	}
}
