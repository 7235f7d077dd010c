package imagestore

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestUniqueNameSequence(t *testing.T) {
	store, err := NewLocalDir(filepath.Join(t.TempDir(), "image", "x"))
	if err != nil {
		t.Fatalf("new local dir: %v", err)
	}
	ctx := context.Background()

	want := []string{"a.jpg", "a_01.jpg", "a_02.jpg", "a_03.jpg"}
	for i, expected := range want {
		res, err := store.Put(ctx, "a.jpg", bytes.NewBufferString("payload"))
		if err != nil {
			t.Fatalf("put %d: %v", i, err)
		}
		if res.Name != expected {
			t.Fatalf("put %d: expected %q, got %q", i, expected, res.Name)
		}
	}

	entries, err := os.ReadDir(store.Root())
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != len(want) {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected %d files, got %v", len(want), names)
	}
}

func TestUniqueNameFreeNameUnchanged(t *testing.T) {
	store, err := NewLocalDir(t.TempDir())
	if err != nil {
		t.Fatalf("new local dir: %v", err)
	}
	got, err := store.UniqueName("photo.png")
	if err != nil {
		t.Fatalf("unique name: %v", err)
	}
	if got != "photo.png" {
		t.Fatalf("expected unchanged name, got %q", got)
	}
}

func TestUniqueNameWithoutExtension(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "image"), nil, 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store, err := NewLocalDir(dir)
	if err != nil {
		t.Fatalf("new local dir: %v", err)
	}
	got, err := store.UniqueName("image")
	if err != nil {
		t.Fatalf("unique name: %v", err)
	}
	if got != "image_01" {
		t.Fatalf("expected image_01, got %q", got)
	}
}

func TestUniqueNameSkipsTakenCounters(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "a_01.jpg"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}
	store, err := NewLocalDir(dir)
	if err != nil {
		t.Fatalf("new local dir: %v", err)
	}
	got, err := store.UniqueName("a.jpg")
	if err != nil {
		t.Fatalf("unique name: %v", err)
	}
	if got != "a_02.jpg" {
		t.Fatalf("expected a_02.jpg, got %q", got)
	}
}

func TestPutReportsSizeDigestAndPath(t *testing.T) {
	store, err := NewLocalDir(t.TempDir())
	if err != nil {
		t.Fatalf("new local dir: %v", err)
	}
	ctx := context.Background()

	res, err := store.Put(ctx, "hello.txt", bytes.NewBufferString("hello"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if res.SizeBytes != 5 {
		t.Fatalf("expected 5 bytes, got %d", res.SizeBytes)
	}
	if !strings.HasPrefix(res.Digest, "blake2b-256:") || len(res.Digest) != len("blake2b-256:")+64 {
		t.Fatalf("unexpected digest %q", res.Digest)
	}
	if res.Path != filepath.Join(store.Root(), "hello.txt") {
		t.Fatalf("unexpected path %q", res.Path)
	}

	data, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("expected hello, got %q", string(data))
	}
	info, err := os.Stat(res.Path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Fatalf("expected 0644, got %v", info.Mode().Perm())
	}
}

func TestPutLeavesNoTempFiles(t *testing.T) {
	store, err := NewLocalDir(t.TempDir())
	if err != nil {
		t.Fatalf("new local dir: %v", err)
	}
	if _, err := store.Put(context.Background(), "a.png", bytes.NewBufferString("x")); err != nil {
		t.Fatalf("put: %v", err)
	}
	entries, err := os.ReadDir(store.Root())
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "a.png" {
		t.Fatalf("unexpected directory contents: %v", entries)
	}
}

func TestFileNameFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{url: "https://example.com/a.jpg?size=small", want: "a.jpg"},
		{url: "https://example.com/path/to/b.PNG", want: "b.PNG"},
		{url: "https://example.com/c.gif#frag", want: "c.gif"},
		{url: "https://example.com/my%20pic.webp", want: "my%20pic.webp"},
		{url: "https://example.com/", want: FallbackName},
		{url: "https://example.com", want: FallbackName},
		{url: "https://example.com/dir/", want: "dir"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := FileNameFromURL(tt.url); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestStripQuery(t *testing.T) {
	if got := StripQuery("https://x/a.svg?v=2"); got != "https://x/a.svg" {
		t.Fatalf("unexpected %q", got)
	}
	if got := StripQuery("https://x/a.svg"); got != "https://x/a.svg" {
		t.Fatalf("unexpected %q", got)
	}
}
