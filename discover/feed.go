package discover

import (
	"context"
	"net/url"
	"time"

	"writecorpus/types"

	"github.com/mmcdole/gofeed"
)

// feedPaths are the conventional RSS/Atom locations probed in order.
var feedPaths = []string{
	"/feed",
	"/feed/",
	"/rss",
	"/rss.xml",
	"/atom.xml",
	"/feed.xml",
	"/index.xml",
}

// discoverFeed probes conventional feed paths and parses the first one
// that yields entries. Feed pubDates become the recency signal.
func (e *Engine) discoverFeed(ctx context.Context, seed *url.URL) ([]types.DiscoveredURL, error) {
	parser := gofeed.NewParser()
	base := seed.Scheme + "://" + seed.Host

	for _, path := range feedPaths {
		body, err := e.client.Get(ctx, base+path)
		if err != nil {
			continue
		}

		feed, err := parser.ParseString(body)
		if err != nil || len(feed.Items) == 0 {
			continue
		}

		urls := make([]types.DiscoveredURL, 0, len(feed.Items))
		for _, item := range feed.Items {
			if item.Link == "" {
				continue
			}
			signal := ""
			if item.PublishedParsed != nil {
				signal = item.PublishedParsed.Format(time.RFC3339)
			} else if item.UpdatedParsed != nil {
				signal = item.UpdatedParsed.Format(time.RFC3339)
			}
			urls = append(urls, types.DiscoveredURL{
				URL:           item.Link,
				RecencySignal: signal,
				Title:         item.Title,
			})
		}
		if len(urls) > 0 {
			return urls, nil
		}
	}
	return nil, nil
}
