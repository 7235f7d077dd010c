package localize

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"mdimg/internal/imagestore"
	"mdimg/internal/models"
)

// ErrFolderRequired is returned in file mode when no image folder was given
// on the command line or in the document's front matter.
var ErrFolderRequired = errors.New("image folder is required in file mode")

// ErrOverlappingReference marks a URL whose occurrences were all consumed by
// the replacement of a shorter URL that prefixes it.
var ErrOverlappingReference = errors.New("reference overlapped by an earlier replacement; not fetched")

// Placement is where one fetched image ended up.
type Placement struct {
	Replacement string
	FileName    string
	MediaType   string
	SizeBytes   int64
	Digest      string
}

// Destination turns fetched bytes into the text that replaces a URL.
type Destination interface {
	Mode() models.Mode
	Place(ctx context.Context, url string, body []byte) (Placement, error)
}

// DestinationOptions carries what the destination constructors need.
type DestinationOptions struct {
	BaseDir   string
	ImageRoot string
	Folder    string
}

type destinationFactory func(opts DestinationOptions) (Destination, error)

var destinationFactories = map[models.Mode]destinationFactory{
	models.ModeFile:   newFileDestinationFromOptions,
	models.ModeInline: func(DestinationOptions) (Destination, error) { return InlineDestination{}, nil },
}

// NewDestination builds the destination for mode.
func NewDestination(mode models.Mode, opts DestinationOptions) (Destination, error) {
	factory, ok := destinationFactories[mode]
	if !ok {
		return nil, fmt.Errorf("unsupported mode: %q", mode)
	}
	return factory(opts)
}

// FileDestination saves images into a directory and links them by a
// forward-slash relative path.
type FileDestination struct {
	store      imagestore.Store
	linkPrefix string
}

// NewFileDestination writes into store and links as linkPrefix/<name>.
func NewFileDestination(store imagestore.Store, linkPrefix string) *FileDestination {
	return &FileDestination{store: store, linkPrefix: strings.TrimRight(linkPrefix, "/")}
}

func newFileDestinationFromOptions(opts DestinationOptions) (Destination, error) {
	folder, err := cleanFolder(opts.Folder)
	if err != nil {
		return nil, err
	}
	root := strings.TrimSpace(opts.ImageRoot)
	if root == "" {
		return nil, fmt.Errorf("image root is required")
	}

	dir := filepath.Join(opts.BaseDir, filepath.FromSlash(root), filepath.FromSlash(folder))
	store, err := imagestore.NewLocalDir(dir)
	if err != nil {
		return nil, fmt.Errorf("create image directory %s: %w", dir, err)
	}
	return NewFileDestination(store, path.Join(filepath.ToSlash(root), folder)), nil
}

func cleanFolder(raw string) (string, error) {
	folder := strings.TrimSpace(filepath.ToSlash(raw))
	if folder == "" {
		return "", ErrFolderRequired
	}
	folder = path.Clean(folder)
	if path.IsAbs(folder) || folder == ".." || strings.HasPrefix(folder, "../") {
		return "", fmt.Errorf("image folder %q must stay inside the image root", raw)
	}
	if folder == "." {
		return "", ErrFolderRequired
	}
	return folder, nil
}

func (d *FileDestination) Mode() models.Mode { return models.ModeFile }

// Place stores body under a unique name derived from url.
func (d *FileDestination) Place(ctx context.Context, url string, body []byte) (Placement, error) {
	res, err := d.store.Put(ctx, imagestore.FileNameFromURL(url), bytes.NewReader(body))
	if err != nil {
		return Placement{}, fmt.Errorf("save image: %w", err)
	}
	return Placement{
		Replacement: d.linkPrefix + "/" + res.Name,
		FileName:    res.Name,
		MediaType:   MediaTypeForURL(url),
		SizeBytes:   res.SizeBytes,
		Digest:      res.Digest,
	}, nil
}

// InlineDestination embeds images as data URIs.
type InlineDestination struct{}

func (InlineDestination) Mode() models.Mode { return models.ModeInline }

// Place returns data:<media-type>;base64,<payload> for body.
func (InlineDestination) Place(_ context.Context, url string, body []byte) (Placement, error) {
	mediaType := MediaTypeForURL(url)
	return Placement{
		Replacement: DataURI(mediaType, body),
		MediaType:   mediaType,
		SizeBytes:   int64(len(body)),
	}, nil
}

// DataURI encodes body as a base64 data URI.
func DataURI(mediaType string, body []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(body)
}
