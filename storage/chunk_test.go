package storage

import (
	"fmt"
	"strings"
	"testing"
)

func TestEncodeChunkedSmallPayloadSingleField(t *testing.T) {
	doc := EncodeChunked("Date,Title", []string{"2026-01-01,a", "2026-01-02,b"}, 1024)

	if doc[chunkedFlagField] != "" {
		t.Fatalf("small payload flagged as chunked: %v", doc)
	}
	want := "Date,Title\n2026-01-01,a\n2026-01-02,b"
	if doc[dataField] != want {
		t.Fatalf("data = %q; want %q", doc[dataField], want)
	}
}

func TestChunkRoundTripAboveThreshold(t *testing.T) {
	header := "Date,Title,Content"
	rows := make([]string, 50)
	for i := range rows {
		rows[i] = fmt.Sprintf("2026-01-%02d,post %d,%s", i%28+1, i, strings.Repeat("x", 100))
	}

	doc := EncodeChunked(header, rows, 1000)
	if doc[chunkedFlagField] != "true" {
		t.Fatal("large payload not flagged as chunked")
	}

	// Every chunk stays under the ceiling and starts with the header.
	for field, value := range doc {
		if field == chunkedFlagField || field == chunkCountField {
			continue
		}
		if len(value) > 1000 {
			t.Fatalf("chunk %s is %d bytes; ceiling 1000", field, len(value))
		}
		if !strings.HasPrefix(value, header) {
			t.Fatalf("chunk %s does not repeat the header", field)
		}
	}

	payload, err := DecodeChunked(doc)
	if err != nil {
		t.Fatalf("DecodeChunked: %v", err)
	}
	want := header + "\n" + strings.Join(rows, "\n")
	if payload != want {
		t.Fatalf("round trip mismatch:\n got %d bytes\nwant %d bytes", len(payload), len(want))
	}
}

func TestChunkBoundariesRespectEmbeddedNewlines(t *testing.T) {
	// Quoted CSV rows may contain newlines; chunk boundaries must fall
	// only between rows, never inside one.
	header := "Title,Content"
	rows := []string{
		`a,"line one` + "\n" + `line two"`,
		`b,"third` + "\n" + `fourth"`,
		`c,plain`,
	}

	doc := EncodeChunked(header, rows, len(header)+len(rows[0])+2)
	payload, err := DecodeChunked(doc)
	if err != nil {
		t.Fatalf("DecodeChunked: %v", err)
	}

	want := header + "\n" + strings.Join(rows, "\n")
	if payload != want {
		t.Fatalf("round trip mismatch:\n got %q\nwant %q", payload, want)
	}
}

func TestEncodeChunkedOversizedRowBecomesOversizedField(t *testing.T) {
	// A single row larger than the chunk size cannot be split; it must
	// surface as one oversized field for Put to reject.
	big := strings.Repeat("y", 500)
	doc := EncodeChunked("H", []string{big}, 100)

	oversized := false
	for field, value := range doc {
		if field == chunkedFlagField || field == chunkCountField {
			continue
		}
		if len(value) > 100 {
			oversized = true
		}
	}
	if !oversized {
		t.Fatal("oversized row was silently truncated or split")
	}
}

func TestDecodeChunkedErrors(t *testing.T) {
	if _, err := DecodeChunked(Document{}); err == nil {
		t.Fatal("missing data field not reported")
	}

	bad := Document{
		dataField:        "H\nrow",
		chunkedFlagField: "true",
		chunkCountField:  "not-a-number",
	}
	if _, err := DecodeChunked(bad); err == nil {
		t.Fatal("invalid chunk count not reported")
	}

	missing := Document{
		dataField:        "H\nrow",
		chunkedFlagField: "true",
		chunkCountField:  "3",
	}
	if _, err := DecodeChunked(missing); err == nil {
		t.Fatal("missing chunk not reported")
	}
}

func TestDecodeChunkedUnchunkedPassthrough(t *testing.T) {
	doc := Document{dataField: "H\nrow1\nrow2"}
	payload, err := DecodeChunked(doc)
	if err != nil || payload != "H\nrow1\nrow2" {
		t.Fatalf("passthrough = %q, %v", payload, err)
	}
}
