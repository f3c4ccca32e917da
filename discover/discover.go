// Package discover finds candidate article URLs for a seed site. It runs
// an ordered list of strategies (feed, sitemap, paginated listings,
// platform profile, blog entry list) and returns a bounded, deduplicated,
// recency-sorted set of candidates.
package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strings"
	"time"

	"writecorpus/cache"
	"writecorpus/fetch"
	"writecorpus/types"

	"github.com/araddon/dateparse"
)

// strategy probes one discovery mechanism against the seed site.
// A nil/empty result with nil error means "nothing here, try the next one".
type strategy struct {
	name string
	run  func(e *Engine, ctx context.Context, seed *url.URL) ([]types.DiscoveredURL, error)
}

// Engine runs discovery strategies against seed URLs.
type Engine struct {
	client *fetch.Client
	cache  cache.Cache
}

// NewEngine builds a discovery engine. The cache is optional; when set,
// discovery results are memoized per seed URL and reused regardless of
// age (staleness is surfaced to the caller, never silently refreshed).
func NewEngine(client *fetch.Client, c cache.Cache) *Engine {
	return &Engine{client: client, cache: c}
}

// Discover returns up to maxURLs candidate article URLs for seedURL,
// restricted to the seed's origin, deduplicated by normalized URL, and
// sorted by recency signal when one exists.
func (e *Engine) Discover(ctx context.Context, seedURL string, maxURLs int) ([]types.DiscoveredURL, error) {
	seed, err := url.Parse(strings.TrimSpace(seedURL))
	if err != nil || seed.Scheme == "" || seed.Host == "" {
		return nil, fmt.Errorf("malformed seed URL %q", seedURL)
	}
	if maxURLs <= 0 {
		maxURLs = 1
	}

	cacheKey := "discover:" + types.NormalizeURL(seedURL)
	if e.cache != nil {
		if raw, generatedAt, ok := e.cache.Get(cacheKey); ok {
			var cached []types.DiscoveredURL
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				log.Printf("Discovery cache hit for %s (generated %s)", seed.Host, generatedAt.Format("2006-01-02 15:04"))
				return capURLs(cached, maxURLs), nil
			}
		}
	}

	strategies := []strategy{
		{"feed", (*Engine).discoverFeed},
		{"sitemap", (*Engine).discoverSitemap},
		{"listing", (*Engine).discoverListings},
		{"note-profile", (*Engine).discoverNoteProfile},
		{"entry-list", (*Engine).discoverEntryList},
	}

	var found []types.DiscoveredURL
	seen := make(map[string]struct{})

	for _, s := range strategies {
		urls, err := s.run(e, ctx, seed)
		if err != nil {
			log.Printf("Discovery strategy %s failed for %s: %v", s.name, seed.Host, err)
			continue
		}

		added := 0
		for _, u := range urls {
			norm := types.NormalizeURL(u.URL)
			if norm == "" {
				continue
			}
			if _, dup := seen[norm]; dup {
				continue
			}
			if !sameOrigin(seed, u.URL) || isExcluded(u.URL) {
				continue
			}
			seen[norm] = struct{}{}
			found = append(found, u)
			added++
		}

		if added > 0 {
			log.Printf("Discovery strategy %s found %d URL(s) on %s", s.name, added, seed.Host)
			break
		}
	}

	sortByRecency(found)
	found = capURLs(found, maxURLs)

	if e.cache != nil && len(found) > 0 {
		if raw, err := json.Marshal(found); err == nil {
			e.cache.Put(cacheKey, string(raw))
		}
	}
	return found, nil
}

// sortByRecency orders URLs with a parseable recency signal first,
// newest to oldest. URLs without a signal keep their relative order and
// sort after everything dated.
func sortByRecency(urls []types.DiscoveredURL) {
	anySignal := false
	for _, u := range urls {
		if u.RecencySignal != "" {
			anySignal = true
			break
		}
	}
	if !anySignal {
		return
	}

	sort.SliceStable(urls, func(i, j int) bool {
		ti, iOK := parseSignal(urls[i].RecencySignal)
		tj, jOK := parseSignal(urls[j].RecencySignal)
		if iOK != jOK {
			return iOK
		}
		if !iOK {
			return false
		}
		return ti.After(tj)
	})
}

func parseSignal(signal string) (time.Time, bool) {
	if signal == "" {
		return time.Time{}, false
	}
	parsed, err := dateparse.ParseAny(signal)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

func capURLs(urls []types.DiscoveredURL, max int) []types.DiscoveredURL {
	if len(urls) > max {
		return urls[:max]
	}
	return urls
}

// sameOrigin checks host equality with the seed, tolerating a www prefix.
func sameOrigin(seed *url.URL, candidate string) bool {
	u, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	return stripWWW(u.Host) == stripWWW(seed.Host)
}

func stripWWW(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

// resolve turns a possibly relative href into an absolute URL on the seed.
func resolve(seed *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return seed.ResolveReference(ref).String()
}
