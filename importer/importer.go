// Package importer wires the full acquisition pipeline: discover article
// URLs for a seed site, fetch and extract them concurrently, merge the
// batch into the persisted record set, and write it back as one atomic
// document set per run.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"writecorpus/config"
	"writecorpus/dedup"
	"writecorpus/discover"
	"writecorpus/events"
	"writecorpus/extract"
	"writecorpus/fetch"
	"writecorpus/orchestrator"
	"writecorpus/storage"
	"writecorpus/types"

	"github.com/araddon/dateparse"
)

// ErrStorageFull signals that even the chunked write exceeded the
// backend's absolute ceiling. The fetched result is still returned to
// the caller so nothing is silently lost.
var ErrStorageFull = errors.New("record set exceeds storage capacity; delete old records or import fewer items")

// errNoContent marks fetched pages that yielded no usable title or body.
var errNoContent = errors.New("no usable content extracted")

// Importer runs import operations against one record store.
type Importer struct {
	engine *discover.Engine
	client *fetch.Client
	store  *storage.RecordStore
	events *events.Producer // optional, nil disables publishing
}

// New builds an importer. events may be nil.
func New(engine *discover.Engine, client *fetch.Client, store *storage.RecordStore, producer *events.Producer) *Importer {
	return &Importer{engine: engine, client: client, store: store, events: producer}
}

// ImportFromURL discovers up to maxItems article URLs under seedURL,
// fetches and extracts them, merges the batch into the persisted set,
// and returns a run summary. Per-item failures never abort the run; only
// setup errors (bad seed, empty discovery) do.
func (imp *Importer) ImportFromURL(ctx context.Context, seedURL string, maxItems int) (types.ImportSummary, error) {
	if maxItems <= 0 || maxItems > config.MaxImportURLs {
		maxItems = config.MaxImportURLs
	}

	urls, err := imp.engine.Discover(ctx, seedURL, maxItems)
	if err != nil {
		return types.ImportSummary{}, err
	}
	if len(urls) == 0 {
		return types.ImportSummary{}, fmt.Errorf("no article URLs discovered under %s", seedURL)
	}
	log.Printf("Discovered %d candidate URL(s) under %s", len(urls), seedURL)

	existing, err := imp.store.LoadRecords(ctx)
	if err != nil {
		return types.ImportSummary{}, err
	}
	deletedKeys, err := imp.store.LoadDeletions(ctx)
	if err != nil {
		return types.ImportSummary{}, err
	}
	meta, err := imp.store.LoadMeta(ctx)
	if err != nil {
		return types.ImportSummary{}, err
	}
	deleted := dedup.NewDeletionSet(deletedKeys)

	// Budget covers the merged dataset, so the existing set's size is
	// the baseline the new batch grows from.
	baseSize := imp.store.SerializedSize(existing)
	result := orchestrator.Run(ctx, urls, imp.fetchAndExtract, orchestrator.Options{
		Concurrency: config.FetchConcurrency,
		Timeout:     config.FetchTimeout,
		Retries:     config.FetchRetries,
		BatchDelay:  config.BatchDelay,
		ByteBudget:  config.ImportByteBudget,
		Size: func(records []types.ArticleRecord) int {
			return baseSize + imp.store.SerializedSize(records)
		},
	})

	merged := dedup.Merge(existing, result.Succeeded, deleted)
	merged, trimmed := dedup.ApplyCaps(merged, config.MaxWebArticles, config.MaxPlatformPosts)

	now := time.Now()
	for _, record := range result.Succeeded {
		meta[record.IdentityKey()] = now.Format("2006-01-02")
	}
	for _, key := range trimmed {
		delete(meta, key)
	}

	summary := types.ImportSummary{
		RecordsImported: len(result.Succeeded),
		RecordsFailed:   len(result.Failed),
		Truncated:       result.Truncated,
		Errors:          errorSample(result.Failed),
		CompletedAt:     now,
	}

	if err := imp.store.SaveRecords(ctx, merged); err != nil {
		if errors.Is(err, storage.ErrSizeExceeded) {
			// Hand the fetched result back even though persistence failed.
			return summary, ErrStorageFull
		}
		return summary, err
	}
	if err := imp.store.SaveMeta(ctx, meta); err != nil {
		log.Printf("Warning: failed to save import metadata: %v", err)
	}

	imp.publish(seedURL, summary)
	log.Printf("Import of %s complete: %d imported, %d failed, truncated=%v",
		seedURL, summary.RecordsImported, summary.RecordsFailed, summary.Truncated)
	return summary, nil
}

// fetchAndExtract is the per-URL operation the orchestrator runs.
func (imp *Importer) fetchAndExtract(ctx context.Context, u types.DiscoveredURL) (*types.ArticleRecord, error) {
	html, err := imp.client.Get(ctx, u.URL)
	if err != nil {
		return nil, err
	}

	hint := sourceHint(u.URL)
	fields := extract.Extract(html, hint)

	record := types.ArticleRecord{
		SourceURL:   u.URL,
		PlatformID:  notePostID(u.URL),
		Title:       fields.Title,
		Body:        fields.Body,
		PublishedAt: fields.Date,
		Category:    fields.Category,
		Tags:        fields.Tags,
	}

	// Discovery sometimes knows the title when the page markup hides it.
	if record.Title == "" && u.Title != "" {
		record.Title = u.Title
	}

	if !record.Valid() {
		return nil, orchestrator.Permanent(fmt.Errorf("%s: %w", u.URL, errNoContent))
	}

	// Date fallback is explicit and flagged, never silent: downstream
	// recency selection can filter inferred dates out.
	if record.PublishedAt == "" {
		record.DateInferred = true
		record.PublishedAt = time.Now().Format("2006-01-02")
		if t, err := dateparse.ParseAny(u.RecencySignal); u.RecencySignal != "" && err == nil {
			record.PublishedAt = t.Format("2006-01-02")
		}
	}

	return &record, nil
}

// Records returns the persisted record set.
func (imp *Importer) Records(ctx context.Context) ([]types.ArticleRecord, error) {
	return imp.store.LoadRecords(ctx)
}

// ExportCSV returns the record set in the tabular export format.
func (imp *Importer) ExportCSV(ctx context.Context) (string, error) {
	records, err := imp.store.LoadRecords(ctx)
	if err != nil {
		return "", err
	}
	return storage.EncodeCSV(records)
}

// MarkDeleted soft-deletes the record with the given identity key: it is
// removed from the persisted set and its key joins the deletion set that
// filters all future merges.
func (imp *Importer) MarkDeleted(ctx context.Context, identityKey string) error {
	deletedKeys, err := imp.store.LoadDeletions(ctx)
	if err != nil {
		return err
	}
	deleted := dedup.NewDeletionSet(deletedKeys)
	deleted.Add(identityKey)
	if err := imp.store.SaveDeletions(ctx, deleted.Keys()); err != nil {
		return err
	}

	records, err := imp.store.LoadRecords(ctx)
	if err != nil {
		return err
	}
	kept := records[:0:0]
	for _, record := range records {
		if record.IdentityKey() != identityKey {
			kept = append(kept, record)
		}
	}
	if len(kept) == len(records) {
		return nil
	}
	return imp.store.SaveRecords(ctx, kept)
}

func (imp *Importer) publish(seedURL string, summary types.ImportSummary) {
	if imp.events == nil {
		return
	}
	if err := imp.events.PublishImportCompleted(seedURL, summary); err != nil {
		log.Printf("Warning: failed to publish import event: %v", err)
	}
}

// errorSample caps the per-item failure reasons reported to the caller.
func errorSample(failed []types.FailedURL) []string {
	n := len(failed)
	if n > config.MaxErrorSample {
		n = config.MaxErrorSample
	}
	sample := make([]string, 0, n)
	for _, f := range failed[:n] {
		sample = append(sample, fmt.Sprintf("%s: %s", f.URL, f.Reason))
	}
	return sample
}

// sourceHint picks the platform-specific extraction path for known hosts.
func sourceHint(rawURL string) extract.SourceHint {
	u, err := url.Parse(rawURL)
	if err != nil {
		return extract.SourceGeneric
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	if host == "note.com" || host == "note.mu" {
		return extract.SourceNote
	}
	return extract.SourceGeneric
}

// notePostID extracts the native post ID from a hosted-platform
// permalink (/{user}/n/{id}); other URLs have no platform identity.
func notePostID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	if host != "note.com" && host != "note.mu" {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) == 3 && parts[1] == "n" && parts[2] != "" {
		return "note:" + parts[2]
	}
	return ""
}
