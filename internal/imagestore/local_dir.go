// Package imagestore persists fetched images as uniquely named files in one
// directory.
package imagestore

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const tmpPattern = ".mdimg-put-*"

// LocalDir stores images as plain files under root.
//
// Name resolution is check-then-use: two processes writing to the same
// directory at once may pick the same name.
type LocalDir struct {
	root string
}

// NewLocalDir creates root (and parents) if needed.
func NewLocalDir(root string) (*LocalDir, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("image directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &LocalDir{root: root}, nil
}

// Root returns the directory images are written to.
func (d *LocalDir) Root() string {
	return d.root
}

// UniqueName returns name when no file of that name exists in the
// directory, otherwise the first free of name_01.ext, name_02.ext, ...
func (d *LocalDir) UniqueName(name string) (string, error) {
	name = sanitizeName(name)
	free, err := d.isFree(name)
	if err != nil || free {
		return name, err
	}

	base, ext := splitExt(name)
	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s_%02d%s", base, counter, ext)
		free, err := d.isFree(candidate)
		if err != nil {
			return "", err
		}
		if free {
			return candidate, nil
		}
	}
}

func (d *LocalDir) isFree(name string) (bool, error) {
	_, err := os.Lstat(filepath.Join(d.root, name))
	if err == nil {
		return false, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return true, nil
	}
	return false, err
}

// Put streams r into a uniquely named file derived from name and returns
// the name actually used together with size and BLAKE2b-256 digest.
func (d *LocalDir) Put(ctx context.Context, name string, r io.Reader) (PutResult, error) {
	var zero PutResult
	if d == nil {
		return zero, fmt.Errorf("image store is not configured")
	}
	if r == nil {
		return zero, fmt.Errorf("reader is required")
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	tmp, err := os.CreateTemp(d.root, tmpPattern)
	if err != nil {
		return zero, err
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	h, err := blake2b.New256(nil)
	if err != nil {
		cleanup()
		return zero, err
	}
	n, err := io.Copy(io.MultiWriter(tmp, h), r)
	if err != nil {
		cleanup()
		return zero, err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return zero, err
	}

	unique, err := d.UniqueName(name)
	if err != nil {
		cleanup()
		return zero, err
	}
	dst := filepath.Join(d.root, unique)
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		cleanup()
		return zero, err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		cleanup()
		return zero, err
	}

	return PutResult{
		Name:      unique,
		Path:      dst,
		SizeBytes: n,
		Digest:    "blake2b-256:" + hex.EncodeToString(h.Sum(nil)),
	}, nil
}
