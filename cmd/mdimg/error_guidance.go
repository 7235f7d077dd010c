package main

import (
	"context"
	"errors"
	"net"
	"os"

	"mdimg/internal/fetch"
	"mdimg/internal/localize"
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	if errors.Is(err, localize.ErrFolderRequired) {
		lines = append(lines,
			"hint: pass --folder <name> to choose the subfolder under the image root.",
			"hint: or set image_folder in the document's YAML front matter.",
			"hint: use --inline to embed images instead of saving files.",
		)
		return uniqueLines(lines)
	}

	if errors.Is(err, os.ErrNotExist) {
		lines = append(lines, "hint: check the document path; it is resolved against the current directory.")
		return uniqueLines(lines)
	}

	if errors.Is(err, os.ErrPermission) {
		lines = append(lines, "hint: the document's directory and the image root must be writable (a backup is written next to the document).")
		return uniqueLines(lines)
	}

	if errors.Is(err, context.Canceled) {
		lines = append(lines, "hint: interrupted; the document is only rewritten at the end of a run and the backup is intact.")
		return uniqueLines(lines)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		lines = append(lines, "hint: request timed out; increase MDIMG_HTTP_TIMEOUT or fetch.timeout_seconds.")
		return uniqueLines(lines)
	}

	var fetchErr *fetch.Error
	if errors.As(err, &fetchErr) && fetchErr.StatusCode() >= 500 {
		lines = append(lines, "hint: the image host returned a server error; retry later.")
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		lines = append(lines,
			"hint: check network connectivity to the image host.",
			"hint: you can increase MDIMG_HTTP_TIMEOUT for slower networks.",
		)
	}

	return uniqueLines(lines)
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
