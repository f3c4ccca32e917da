package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"writecorpus/fetch"
	"writecorpus/types"
)

func makeURLs(n int) []types.DiscoveredURL {
	urls := make([]types.DiscoveredURL, n)
	for i := range urls {
		urls[i] = types.DiscoveredURL{URL: fmt.Sprintf("https://example.com/post-%d", i)}
	}
	return urls
}

func okRecord(u types.DiscoveredURL) *types.ArticleRecord {
	return &types.ArticleRecord{SourceURL: u.URL, Title: "t", Body: "b"}
}

func TestRunAccountsForEveryInput(t *testing.T) {
	urls := makeURLs(12)

	// Two items fail transiently twice and succeed on the third attempt.
	flaky := map[string]*int32{
		urls[3].URL: new(int32),
		urls[8].URL: new(int32),
	}

	var active, peak int32
	op := func(ctx context.Context, u types.DiscoveredURL) (*types.ArticleRecord, error) {
		cur := atomic.AddInt32(&active, 1)
		defer atomic.AddInt32(&active, -1)
		for {
			old := atomic.LoadInt32(&peak)
			if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)

		if counter, ok := flaky[u.URL]; ok {
			if atomic.AddInt32(counter, 1) < 3 {
				return nil, errors.New("connection reset")
			}
		}
		return okRecord(u), nil
	}

	result := Run(context.Background(), urls, op, Options{
		Concurrency: 3,
		Timeout:     time.Second,
		Retries:     2,
		ByteBudget:  -1,
	})

	if len(result.Succeeded) != 12 {
		t.Fatalf("succeeded %d; want 12 (flaky items retry to success)", len(result.Succeeded))
	}
	if len(result.Failed) != 0 || result.Truncated || result.Skipped != 0 {
		t.Fatalf("unexpected failures: %+v", result)
	}
	if peak > 3 {
		t.Fatalf("peak concurrency %d exceeds limit 3", peak)
	}
}

func TestRunCollectsFailuresWithoutAborting(t *testing.T) {
	urls := makeURLs(6)
	op := func(ctx context.Context, u types.DiscoveredURL) (*types.ArticleRecord, error) {
		if u.URL == urls[2].URL {
			return nil, fmt.Errorf("%s: %w", u.URL, fetch.ErrNotFound)
		}
		return okRecord(u), nil
	}

	result := Run(context.Background(), urls, op, Options{
		Concurrency: 3,
		Timeout:     time.Second,
		Retries:     2,
		ByteBudget:  -1,
	})

	if len(result.Succeeded) != 5 || len(result.Failed) != 1 {
		t.Fatalf("succeeded=%d failed=%d; want 5/1", len(result.Succeeded), len(result.Failed))
	}
	if result.Failed[0].URL != urls[2].URL {
		t.Fatalf("wrong failure recorded: %+v", result.Failed[0])
	}
	if len(result.Succeeded)+len(result.Failed)+result.Skipped != len(urls) {
		t.Fatal("inputs not fully accounted for")
	}
}

func TestRunDoesNotRetryPermanentFailures(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"not found", fmt.Errorf("page: %w", fetch.ErrNotFound)},
		{"too large", fmt.Errorf("page: %w", fetch.ErrTooLarge)},
		{"permanent wrapped", Permanent(errors.New("no usable content"))},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var attempts int32
			op := func(ctx context.Context, u types.DiscoveredURL) (*types.ArticleRecord, error) {
				atomic.AddInt32(&attempts, 1)
				return nil, c.err
			}

			result := Run(context.Background(), makeURLs(1), op, Options{
				Concurrency: 1,
				Timeout:     time.Second,
				Retries:     2,
				ByteBudget:  -1,
			})

			if attempts != 1 {
				t.Fatalf("attempts = %d; want 1 (no retry)", attempts)
			}
			if len(result.Failed) != 1 {
				t.Fatalf("failure not recorded: %+v", result)
			}
		})
	}
}

func TestRunRetriesExhaustTransientFailures(t *testing.T) {
	var attempts int32
	op := func(ctx context.Context, u types.DiscoveredURL) (*types.ArticleRecord, error) {
		atomic.AddInt32(&attempts, 1)
		return nil, errors.New("status 503")
	}

	result := Run(context.Background(), makeURLs(1), op, Options{
		Concurrency: 1,
		Timeout:     time.Second,
		Retries:     2,
		ByteBudget:  -1,
	})

	if attempts != 3 {
		t.Fatalf("attempts = %d; want 3 (initial + 2 retries)", attempts)
	}
	if len(result.Failed) != 1 {
		t.Fatalf("failure not recorded: %+v", result)
	}
}

func TestRunStopsAtByteBudget(t *testing.T) {
	urls := makeURLs(9)
	var mu sync.Mutex
	var ran int

	op := func(ctx context.Context, u types.DiscoveredURL) (*types.ArticleRecord, error) {
		mu.Lock()
		ran++
		mu.Unlock()
		return okRecord(u), nil
	}

	// Each record counts 100 bytes; the budget allows one batch of three.
	result := Run(context.Background(), urls, op, Options{
		Concurrency: 3,
		Timeout:     time.Second,
		Retries:     -1,
		ByteBudget:  250,
		Size: func(records []types.ArticleRecord) int {
			return len(records) * 100
		},
	})

	if !result.Truncated {
		t.Fatal("budget overflow not flagged")
	}
	if len(result.Succeeded) != 3 {
		t.Fatalf("succeeded %d; want 3 (one full batch)", len(result.Succeeded))
	}
	if result.Skipped != 6 {
		t.Fatalf("skipped %d; want 6", result.Skipped)
	}
	if ran != 3 {
		t.Fatalf("ran %d ops; want 3 (later batches never scheduled)", ran)
	}
}

func TestRunRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	urls := makeURLs(9)

	var ran int32
	op := func(ctx context.Context, u types.DiscoveredURL) (*types.ArticleRecord, error) {
		atomic.AddInt32(&ran, 1)
		cancel() // first batch cancels the run
		return okRecord(u), nil
	}

	result := Run(ctx, urls, op, Options{
		Concurrency: 3,
		Timeout:     time.Second,
		Retries:     -1,
		ByteBudget:  -1,
		BatchDelay:  50 * time.Millisecond,
	})

	if atomic.LoadInt32(&ran) != 3 {
		t.Fatalf("ran %d ops; want 3 (cancellation stops later batches)", ran)
	}
	if result.Skipped != 6 {
		t.Fatalf("skipped %d; want 6", result.Skipped)
	}
}

func TestPermanentWrapping(t *testing.T) {
	base := errors.New("empty page")
	wrapped := Permanent(base)

	if retryable(wrapped) {
		t.Fatal("Permanent error reported as retryable")
	}
	if !errors.Is(wrapped, base) {
		t.Fatal("Permanent lost the underlying error")
	}
}

func TestWithDefaults(t *testing.T) {
	opts := withDefaults(Options{})
	if opts.Concurrency <= 0 || opts.Timeout <= 0 || opts.Retries <= 0 || opts.ByteBudget <= 0 {
		t.Fatalf("zero options did not pick up defaults: %+v", opts)
	}
	if opts.Size == nil {
		t.Fatal("default size estimator missing")
	}

	disabled := withDefaults(Options{Retries: -1, ByteBudget: -1})
	if disabled.Retries != 0 || disabled.ByteBudget != 0 {
		t.Fatalf("-1 did not disable retries/budget: %+v", disabled)
	}
}
