package discover

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"writecorpus/config"
	"writecorpus/types"

	"github.com/PuerkitoBio/goquery"
)

// listingPaths are conventional archive/listing locations tried in
// addition to the seed URL itself.
var listingPaths = []string{
	"/blog",
	"/blog/",
	"/articles",
	"/news",
	"/posts",
	"/archives",
}

// articlePathMarkers are path fragments that mark an href as an article
// permalink on common blog engines.
var articlePathMarkers = []string{
	"/entry-",
	"/entry/",
	"/archives/",
	"/article/",
	"/articles/",
	"/post/",
	"/posts/",
	"/blog/",
}

// discoverListings treats the seed plus conventional listing paths as
// article listings, following numbered pagination per path until a page
// contributes nothing new.
func (e *Engine) discoverListings(ctx context.Context, seed *url.URL) ([]types.DiscoveredURL, error) {
	base := seed.Scheme + "://" + seed.Host

	pages := []string{seed.String()}
	for _, path := range listingPaths {
		pages = append(pages, base+path)
	}

	var found []types.DiscoveredURL
	seen := make(map[string]struct{})

	for _, listing := range pages {
		for page := 1; page <= config.MaxListingPages; page++ {
			pageURL := listing
			if page > 1 {
				pageURL = paginated(listing, page)
			}

			body, err := e.client.Get(ctx, pageURL)
			if err != nil {
				break
			}

			links := extractArticleLinks(body, seed)
			added := 0
			for _, link := range links {
				norm := types.NormalizeURL(link.URL)
				if _, dup := seen[norm]; dup {
					continue
				}
				seen[norm] = struct{}{}
				found = append(found, link)
				added++
			}

			// A page that contributes nothing new ends this listing.
			if added == 0 {
				break
			}
		}
	}
	return found, nil
}

// paginated appends the conventional /page/N suffix to a listing URL.
func paginated(listing string, page int) string {
	return fmt.Sprintf("%s/page/%d", strings.TrimRight(listing, "/"), page)
}

// extractArticleLinks pulls candidate permalinks out of one listing page
// using anchor patterns in decreasing order of confidence.
func extractArticleLinks(html string, seed *url.URL) []types.DiscoveredURL {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	collect := func(sel *goquery.Selection) []types.DiscoveredURL {
		var links []types.DiscoveredURL
		sel.Each(func(_ int, a *goquery.Selection) {
			href, ok := a.Attr("href")
			if !ok {
				return
			}
			abs := resolve(seed, href)
			if abs == "" || !sameOrigin(seed, abs) || isExcluded(abs) {
				return
			}
			links = append(links, types.DiscoveredURL{
				URL:   abs,
				Title: strings.TrimSpace(a.Text()),
			})
		})
		return links
	}

	// Most confident: anchors with an explicit title-link class.
	if links := collect(doc.Find("a.entry-title-link, a.title-link, a.post-title-link")); len(links) > 0 {
		return links
	}

	// Anchors whose href carries an article-path marker.
	if links := markerLinks(collect(doc.Find("a[href]"))); len(links) > 0 {
		return links
	}

	// Anchors nested under article/heading containers.
	if links := collect(doc.Find("article a[href], h2.entry-title a[href], h3.entry-title a[href], .post-title a[href]")); len(links) > 0 {
		return links
	}

	// Last resort is identical to the marker scan over every same-host
	// anchor, which collect already restricted to. Nothing matched.
	return nil
}

// markerLinks keeps only links whose path contains an article marker.
func markerLinks(links []types.DiscoveredURL) []types.DiscoveredURL {
	var out []types.DiscoveredURL
	for _, link := range links {
		u, err := url.Parse(link.URL)
		if err != nil {
			continue
		}
		for _, marker := range articlePathMarkers {
			if strings.Contains(u.Path, marker) {
				out = append(out, link)
				break
			}
		}
	}
	return out
}
