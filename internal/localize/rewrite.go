package localize

import "strings"

// Replace substitutes every occurrence of url in text. The match is on the
// exact original literal, query string included.
func Replace(text, url, replacement string) string {
	if url == "" {
		return text
	}
	return strings.ReplaceAll(text, url, replacement)
}
