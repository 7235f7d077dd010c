package localize

import (
	"path"
	"strings"

	"mdimg/internal/imagestore"
)

// DefaultMediaType is used for unknown or missing extensions. It is a guess,
// not the result of sniffing the bytes.
const DefaultMediaType = "image/jpeg"

var mediaTypesByExt = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
}

// MediaTypeForURL classifies raw by its file extension, ignoring case and
// any query string.
func MediaTypeForURL(raw string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(imagestore.StripQuery(raw)), "."))
	if mediaType, ok := mediaTypesByExt[ext]; ok {
		return mediaType
	}
	return DefaultMediaType
}
