package imagestore

import (
	"net/url"
	"path"
	"strings"
)

// FallbackName is used when a URL path has no usable file name.
const FallbackName = "image"

// StripQuery removes any "?query" and "#fragment" suffix from raw.
func StripQuery(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		return raw[:i]
	}
	return raw
}

// FileNameFromURL derives a local file name from the last path segment of
// raw, ignoring the query string. Percent-escapes are kept so the name stays
// usable as a Markdown link target.
func FileNameFromURL(raw string) string {
	p := ""
	if u, err := url.Parse(raw); err == nil {
		p = u.EscapedPath()
	} else {
		p = StripQuery(raw)
		if i := strings.Index(p, "://"); i >= 0 {
			p = p[i+3:]
			if j := strings.Index(p, "/"); j >= 0 {
				p = p[j:]
			} else {
				p = ""
			}
		}
	}
	return sanitizeName(path.Base(p))
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || name == "/" {
		return FallbackName
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			return '_'
		}
		return r
	}, name)
}

// splitExt splits name into base and extension; dotfiles keep their dot in base.
func splitExt(name string) (string, string) {
	ext := path.Ext(name)
	if ext == name {
		return name, ""
	}
	return strings.TrimSuffix(name, ext), ext
}
