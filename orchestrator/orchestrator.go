// Package orchestrator runs the per-URL fetch+extract operation over a
// batch of discovered URLs with bounded parallelism, timeouts, retries,
// inter-batch pacing, and a cumulative size budget.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"writecorpus/config"
	"writecorpus/fetch"
	"writecorpus/types"
)

// ItemOp converts one discovered URL into a record. It must respect ctx.
type ItemOp func(ctx context.Context, u types.DiscoveredURL) (*types.ArticleRecord, error)

// SizeFn reports the serialized size of the accumulated successes, used
// to enforce the byte budget between batches.
type SizeFn func(records []types.ArticleRecord) int

// Options tunes a Run. Zero values fall back to the configured defaults;
// pass Retries: -1 for no retries and ByteBudget: -1 for no budget.
type Options struct {
	Concurrency int
	Timeout     time.Duration
	Retries     int
	BatchDelay  time.Duration
	ByteBudget  int
	Size        SizeFn
}

// Result aggregates one orchestrator run. Every input URL lands in
// exactly one of Succeeded or Failed; Skipped counts URLs never
// scheduled because the budget ran out first.
type Result struct {
	Succeeded []types.ArticleRecord
	Failed    []types.FailedURL
	Truncated bool
	Skipped   int
}

// errPermanent marks failures that must not be retried.
var errPermanent = errors.New("permanent failure")

// Permanent wraps err so the orchestrator records it without retrying,
// e.g. a fetched page that yields no usable content.
func Permanent(err error) error {
	return fmt.Errorf("%w: %w", errPermanent, err)
}

// Run partitions urls into batches of opts.Concurrency and executes them
// sequentially, items within a batch in parallel. It never mutates caller
// state; the complete Result is handed back for the caller to merge.
func Run(ctx context.Context, urls []types.DiscoveredURL, op ItemOp, opts Options) Result {
	opts = withDefaults(opts)

	var result Result
	for batchStart := 0; batchStart < len(urls); batchStart += opts.Concurrency {
		end := batchStart + opts.Concurrency
		if end > len(urls) {
			end = len(urls)
		}
		batch := urls[batchStart:end]

		records, failures := runBatch(ctx, batch, op, opts)
		result.Succeeded = append(result.Succeeded, records...)
		result.Failed = append(result.Failed, failures...)

		// Budget check happens between batches: one batch of slack is
		// accepted rather than throwing away finished work.
		if opts.ByteBudget > 0 && opts.Size(result.Succeeded) > opts.ByteBudget {
			result.Truncated = true
			result.Skipped = len(urls) - end
			log.Printf("Byte budget reached after %d/%d URLs; skipping %d", end, len(urls), result.Skipped)
			return result
		}

		if end < len(urls) && opts.BatchDelay > 0 {
			select {
			case <-time.After(opts.BatchDelay):
			case <-ctx.Done():
				result.Skipped = len(urls) - end
				return result
			}
		}
	}
	return result
}

// runBatch fetches one batch in parallel and collects results in input
// order. Workers only read shared inputs; merging happens here, after
// every member has resolved.
func runBatch(ctx context.Context, batch []types.DiscoveredURL, op ItemOp, opts Options) ([]types.ArticleRecord, []types.FailedURL) {
	type slot struct {
		record *types.ArticleRecord
		err    error
	}
	slots := make([]slot, len(batch))

	var wg sync.WaitGroup
	for i, u := range batch {
		wg.Add(1)
		go func(i int, u types.DiscoveredURL) {
			defer wg.Done()
			record, err := runItem(ctx, u, op, opts)
			slots[i] = slot{record: record, err: err}
		}(i, u)
	}
	wg.Wait()

	var records []types.ArticleRecord
	var failures []types.FailedURL
	for i, s := range slots {
		if s.err != nil {
			failures = append(failures, types.FailedURL{URL: batch[i].URL, Reason: s.err.Error()})
			continue
		}
		records = append(records, *s.record)
	}
	return records, failures
}

// runItem attempts op with a per-attempt timeout, retrying transient
// failures with linearly increasing backoff. 404s, oversized responses,
// and Permanent-wrapped errors never retry.
func runItem(ctx context.Context, u types.DiscoveredURL, op ItemOp, opts Options) (*types.ArticleRecord, error) {
	var lastErr error
	for attempt := 0; attempt <= opts.Retries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 500 * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
		record, err := op(attemptCtx, u)
		cancel()

		if err == nil {
			return record, nil
		}
		lastErr = err

		if !retryable(err) {
			return nil, err
		}
		log.Printf("Retryable failure for %s (attempt %d/%d): %v", u.URL, attempt+1, opts.Retries+1, err)
	}
	return nil, fmt.Errorf("retries exhausted: %w", lastErr)
}

func retryable(err error) bool {
	if errors.Is(err, fetch.ErrNotFound) || errors.Is(err, fetch.ErrTooLarge) {
		return false
	}
	if errors.Is(err, errPermanent) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}

func withDefaults(opts Options) Options {
	if opts.Concurrency <= 0 {
		opts.Concurrency = config.FetchConcurrency
	}
	if opts.Timeout <= 0 {
		opts.Timeout = config.FetchTimeout
	}
	if opts.Retries == 0 {
		opts.Retries = config.FetchRetries
	} else if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.ByteBudget == 0 {
		opts.ByteBudget = config.ImportByteBudget
	} else if opts.ByteBudget < 0 {
		opts.ByteBudget = 0
	}
	if opts.Size == nil {
		opts.Size = jsonSize
	}
	return opts
}

// jsonSize is the default size estimate: summed field lengths plus a
// small per-record overhead, cheap enough to recompute per batch.
func jsonSize(records []types.ArticleRecord) int {
	total := 0
	for _, r := range records {
		total += len(r.SourceURL) + len(r.Title) + len(r.Body) + len(r.Category) + len(r.TagString()) + 64
	}
	return total
}
