package imagestore

import (
	"context"
	"io"
)

// PutResult describes one persisted image.
type PutResult struct {
	Name      string
	Path      string
	SizeBytes int64
	Digest    string
}

// Store is the byte-storage abstraction used by file-mode localization.
type Store interface {
	Put(ctx context.Context, name string, r io.Reader) (PutResult, error)
}
