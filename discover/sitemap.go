package discover

import (
	"context"
	"encoding/xml"
	"net/url"
	"strings"

	"writecorpus/config"
	"writecorpus/types"
)

// sitemapPaths are probed after any robots.txt Sitemap directive.
var sitemapPaths = []string{
	"/sitemap.xml",
	"/sitemap_index.xml",
	"/wp-sitemap.xml",
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Sitemaps []sitemapURL `xml:"sitemap"`
}

// discoverSitemap probes the robots.txt directive and conventional sitemap
// paths, recursing into the first few children of a sitemap index.
// Sitemap lastmod values become the recency signal.
func (e *Engine) discoverSitemap(ctx context.Context, seed *url.URL) ([]types.DiscoveredURL, error) {
	base := seed.Scheme + "://" + seed.Host

	candidates := e.robotsSitemaps(ctx, base)
	for _, path := range sitemapPaths {
		candidates = append(candidates, base+path)
	}

	for _, candidate := range candidates {
		body, err := e.client.Get(ctx, candidate)
		if err != nil {
			continue
		}
		urls := e.parseSitemap(ctx, body, 0)
		if len(urls) > 0 {
			return urls, nil
		}
	}
	return nil, nil
}

// robotsSitemaps reads Sitemap: directives from robots.txt, if present.
func (e *Engine) robotsSitemaps(ctx context.Context, base string) []string {
	body, err := e.client.Get(ctx, base+"/robots.txt")
	if err != nil {
		return nil
	}

	var sitemaps []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 8 && strings.EqualFold(line[:8], "sitemap:") {
			if loc := strings.TrimSpace(line[8:]); loc != "" {
				sitemaps = append(sitemaps, loc)
			}
		}
	}
	return sitemaps
}

// parseSitemap handles both urlset documents and sitemap indexes. Index
// recursion is bounded: only the first MaxChildSitemaps children and one
// level of depth.
func (e *Engine) parseSitemap(ctx context.Context, body string, depth int) []types.DiscoveredURL {
	var set sitemapURLSet
	if err := xml.Unmarshal([]byte(body), &set); err == nil && len(set.URLs) > 0 {
		urls := make([]types.DiscoveredURL, 0, len(set.URLs))
		for _, u := range set.URLs {
			loc := strings.TrimSpace(u.Loc)
			if loc == "" || isExcluded(loc) {
				continue
			}
			urls = append(urls, types.DiscoveredURL{
				URL:           loc,
				RecencySignal: strings.TrimSpace(u.LastMod),
			})
		}
		return urls
	}

	if depth > 0 {
		return nil
	}

	var index sitemapIndex
	if err := xml.Unmarshal([]byte(body), &index); err != nil {
		return nil
	}

	var urls []types.DiscoveredURL
	children := index.Sitemaps
	if len(children) > config.MaxChildSitemaps {
		children = children[:config.MaxChildSitemaps]
	}
	for _, child := range children {
		loc := strings.TrimSpace(child.Loc)
		if loc == "" {
			continue
		}
		childBody, err := e.client.Get(ctx, loc)
		if err != nil {
			continue
		}
		urls = append(urls, e.parseSitemap(ctx, childBody, depth+1)...)
	}
	return urls
}
