package localize

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BackupPath returns <dir>/<name-without-ext><suffix><ext> for path.
func BackupPath(path, suffix string) string {
	dir, base := filepath.Split(path)
	ext := filepath.Ext(base)
	if ext == base {
		ext = ""
	}
	return filepath.Join(dir, strings.TrimSuffix(base, ext)+suffix+ext)
}

// WriteBackup writes content verbatim to the backup path for path and
// fsyncs it. The returned path is only valid when err is nil.
func WriteBackup(path, suffix string, content []byte) (string, error) {
	if suffix == "" {
		return "", fmt.Errorf("backup suffix is required")
	}
	backupPath := BackupPath(path, suffix)
	if filepath.Clean(backupPath) == filepath.Clean(path) {
		return "", fmt.Errorf("backup path equals document path: %s", path)
	}

	f, err := os.OpenFile(backupPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write backup: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("sync backup: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close backup: %w", err)
	}
	return backupPath, nil
}
