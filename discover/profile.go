package discover

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"writecorpus/types"
)

// noteHosts are the hostnames of the hosted-article platform.
var noteHosts = map[string]bool{
	"note.com": true,
	"note.mu":  true,
}

// notePostRe matches the platform's /{user}/n/{id} permalink shape.
var notePostRe = regexp.MustCompile(`/([A-Za-z0-9_]+)/n/(n?[A-Za-z0-9]+)`)

// discoverNoteProfile fetches a platform profile page once and collects
// every post permalink found in the markup. Only applies to note hosts.
func (e *Engine) discoverNoteProfile(ctx context.Context, seed *url.URL) ([]types.DiscoveredURL, error) {
	if !noteHosts[stripWWW(seed.Host)] {
		return nil, nil
	}

	body, err := e.client.Get(ctx, seed.String())
	if err != nil {
		return nil, err
	}

	base := seed.Scheme + "://" + seed.Host
	matches := notePostRe.FindAllStringSubmatch(body, -1)

	var urls []types.DiscoveredURL
	seen := make(map[string]struct{})
	for _, m := range matches {
		path := m[0]
		if !strings.HasPrefix(path, "/") {
			continue
		}
		full := base + path
		norm := types.NormalizeURL(full)
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		urls = append(urls, types.DiscoveredURL{URL: full})
	}
	return urls, nil
}
