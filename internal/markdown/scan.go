// Package markdown finds externally-hosted image references in Markdown text.
//
// Only the inline form ![alt](http://...) or ![alt](https://...) is recognized.
// Reference-style links, HTML <img> tags and relative paths are left alone.
package markdown

import (
	"regexp"
)

var imageRefRegex = regexp.MustCompile(`!\[.*?\]\((https?://.*?)\)`)

// ImageURLs returns the URL of every image reference in text, in order of
// appearance. Duplicates are kept.
func ImageURLs(text string) []string {
	matches := imageRefRegex.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, match := range matches {
		if len(match) == 2 && match[1] != "" {
			out = append(out, match[1])
		}
	}
	return out
}

// Distinct drops repeated URLs, keeping first-seen order.
func Distinct(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// Count returns how many times each URL occurs in urls.
func Count(urls []string) map[string]int {
	counts := make(map[string]int, len(urls))
	for _, u := range urls {
		counts[u]++
	}
	return counts
}
