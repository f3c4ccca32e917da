package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"writecorpus/config"
	"writecorpus/types"
)

func TestRecordStoreRoundTrip(t *testing.T) {
	store := NewRecordStore(NewMemory())
	ctx := context.Background()

	records := []types.ArticleRecord{
		{SourceURL: "https://example.com/a", Title: "A", Body: "body a", PublishedAt: "2026-01-02"},
		{SourceURL: "https://example.com/b", Title: "B", Body: "body\nwith newline", PublishedAt: "2026-01-01"},
	}

	if err := store.SaveRecords(ctx, records); err != nil {
		t.Fatalf("SaveRecords: %v", err)
	}

	loaded, err := store.LoadRecords(ctx)
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded %d records; want 2", len(loaded))
	}
	if loaded[1].Body != "body\nwith newline" {
		t.Fatalf("body lost in round trip: %q", loaded[1].Body)
	}
}

func TestRecordStoreChunksLargeSets(t *testing.T) {
	backend := NewMemory()
	store := NewRecordStore(backend)
	ctx := context.Background()

	// Bodies sized so the serialized set crosses the chunk threshold but
	// each row stays well under the backend ceiling.
	body := strings.Repeat("文章の練習。", 10000) // ~180KB
	var records []types.ArticleRecord
	for i := 0; i < 8; i++ {
		records = append(records, types.ArticleRecord{
			SourceURL: "https://example.com/post-" + string(rune('a'+i)),
			Title:     "post",
			Body:      body,
		})
	}

	if err := store.SaveRecords(ctx, records); err != nil {
		t.Fatalf("SaveRecords: %v", err)
	}

	doc, ok, err := backend.Get(ctx, config.RecordSetKey)
	if err != nil || !ok {
		t.Fatalf("backend.Get: %v, ok=%v", err, ok)
	}
	if doc[chunkedFlagField] != "true" {
		t.Fatal("large set not chunked")
	}
	for field, value := range doc {
		if field == chunkedFlagField || field == chunkCountField {
			continue
		}
		if len(value) > config.StorageSizeLimit {
			t.Fatalf("chunk %s exceeds the backend ceiling (%d bytes)", field, len(value))
		}
	}

	loaded, err := store.LoadRecords(ctx)
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(loaded) != len(records) {
		t.Fatalf("loaded %d records; want %d", len(loaded), len(records))
	}
	if loaded[0].Body != body {
		t.Fatal("chunked body corrupted in round trip")
	}
}

func TestRecordStoreRejectsUnsplittableRecord(t *testing.T) {
	store := NewRecordStore(NewMemory())
	ctx := context.Background()

	// One record bigger than the absolute ceiling cannot be chunked at
	// row granularity; the save must fail loudly instead of corrupting.
	records := []types.ArticleRecord{{
		SourceURL: "https://example.com/huge",
		Title:     "huge",
		Body:      strings.Repeat("x", config.StorageSizeLimit+1),
	}}

	err := store.SaveRecords(ctx, records)
	if !errors.Is(err, ErrSizeExceeded) {
		t.Fatalf("SaveRecords = %v; want ErrSizeExceeded", err)
	}
}

func TestRecordStoreAbsentSetIsEmpty(t *testing.T) {
	store := NewRecordStore(NewMemory())
	loaded, err := store.LoadRecords(context.Background())
	if err != nil || len(loaded) != 0 {
		t.Fatalf("fresh store = %v, %v; want empty", loaded, err)
	}
}

func TestDeletionRoundTrip(t *testing.T) {
	store := NewRecordStore(NewMemory())
	ctx := context.Background()

	keys, err := store.LoadDeletions(ctx)
	if err != nil || len(keys) != 0 {
		t.Fatalf("fresh deletions = %v, %v; want empty", keys, err)
	}

	if err := store.SaveDeletions(ctx, []string{"a", "b"}); err != nil {
		t.Fatalf("SaveDeletions: %v", err)
	}
	keys, err = store.LoadDeletions(ctx)
	if err != nil || len(keys) != 2 {
		t.Fatalf("deletions round trip = %v, %v", keys, err)
	}
}

func TestMetaRoundTrip(t *testing.T) {
	store := NewRecordStore(NewMemory())
	ctx := context.Background()

	meta, err := store.LoadMeta(ctx)
	if err != nil || len(meta) != 0 {
		t.Fatalf("fresh meta = %v, %v; want empty map", meta, err)
	}

	meta["https://example.com/a"] = "2026-09-01"
	if err := store.SaveMeta(ctx, meta); err != nil {
		t.Fatalf("SaveMeta: %v", err)
	}

	loaded, err := store.LoadMeta(ctx)
	if err != nil || loaded["https://example.com/a"] != "2026-09-01" {
		t.Fatalf("meta round trip = %v, %v", loaded, err)
	}
}
