package discover

import (
	"context"
	"fmt"
	"net/url"

	"writecorpus/config"
	"writecorpus/types"
)

// discoverEntryList probes the blog engine convention of an entry-list
// page appended directly to the blog root (entrylist.html,
// entrylist-2.html, ...), harvesting permalinks from each page.
func (e *Engine) discoverEntryList(ctx context.Context, seed *url.URL) ([]types.DiscoveredURL, error) {
	base := seed.Scheme + "://" + seed.Host + seed.Path
	base = trimTrailingSlash(base)

	var found []types.DiscoveredURL
	seen := make(map[string]struct{})

	for page := 1; page <= config.MaxListingPages; page++ {
		listURL := base + "/entrylist.html"
		if page > 1 {
			listURL = fmt.Sprintf("%s/entrylist-%d.html", base, page)
		}

		body, err := e.client.Get(ctx, listURL)
		if err != nil {
			break
		}

		added := 0
		for _, link := range markerLinks(extractArticleLinks(body, seed)) {
			norm := types.NormalizeURL(link.URL)
			if _, dup := seen[norm]; dup {
				continue
			}
			seen[norm] = struct{}{}
			found = append(found, link)
			added++
		}
		if added == 0 {
			break
		}
	}
	return found, nil
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
