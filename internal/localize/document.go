package localize

import (
	"fmt"
	"os"
	"path/filepath"
)

// ReadDocument loads the whole document and its file mode.
func ReadDocument(path string) ([]byte, os.FileMode, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read document: %w", err)
	}
	if info.IsDir() {
		return nil, 0, fmt.Errorf("read document: %s is a directory", path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read document: %w", err)
	}
	return content, info.Mode().Perm(), nil
}

// WriteDocument replaces path with content through a temp file in the same
// directory, so readers never observe a partial document.
func WriteDocument(path string, content []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".mdimg-doc-*")
	if err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(content); err != nil {
		cleanup()
		return fmt.Errorf("write document: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("write document: %w", err)
	}
	if perm == 0 {
		perm = 0o644
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		cleanup()
		return fmt.Errorf("write document: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}
