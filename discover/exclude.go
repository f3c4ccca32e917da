package discover

import (
	"net/url"
	"strings"
)

// excludedPathParts filters listing, taxonomy, admin, and feed URLs out of
// candidate sets. These are pages about articles, not articles.
// Entries carry a trailing slash and match either inside the path or at
// its end, so "/feed" matches but "/feedback-story" does not.
var excludedPathParts = []string{
	"/category/",
	"/categories/",
	"/tag/",
	"/tags/",
	"/author/",
	"/page/",
	"/feed/",
	"/rss/",
	"/atom/",
	"/sitemap/",
	"/wp-admin/",
	"/wp-login/",
	"/wp-content/",
	"/wp-json/",
	"/login/",
	"/signup/",
	"/search/",
}

// excludedExtensions filters static assets.
var excludedExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".svg", ".webp", ".ico",
	".css", ".js", ".pdf", ".zip", ".mp3", ".mp4", ".xml", ".json",
}

// isExcluded reports whether a URL is on the fixed exclusion list.
func isExcluded(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return true
	}
	path := strings.ToLower(u.Path)
	if path == "" || path == "/" {
		return true
	}
	// Match with a virtual trailing slash so suffix segments are caught too.
	padded := path
	if !strings.HasSuffix(padded, "/") {
		padded += "/"
	}
	for _, part := range excludedPathParts {
		if strings.Contains(padded, part) {
			return true
		}
	}
	for _, ext := range excludedExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
