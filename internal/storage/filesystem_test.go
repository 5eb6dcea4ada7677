package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFilenameFormat(t *testing.T) {
	ts := time.Date(2026, 8, 25, 15, 4, 5, 123456000, time.UTC)
	got := Filename(ts, 1)
	want := "morph_20260825_150405_123456_01.png"
	if got != want {
		t.Fatalf("Filename = %q, want %q", got, want)
	}
}

func TestFileStoreSaveAndURL(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "http://localhost:9099/")
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}

	url, err := store.Save(context.Background(), "morph_x_01.png", []byte{0x89, 'P', 'N', 'G'})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if url != "http://localhost:9099/morphs/morph_x_01.png" {
		t.Fatalf("url = %q", url)
	}

	data, err := os.ReadFile(filepath.Join(dir, "morphs", "morph_x_01.png"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != string([]byte{0x89, 'P', 'N', 'G'}) {
		t.Fatalf("stored bytes mismatch")
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "http://localhost:9099")
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	for _, name := range []string{"../escape.png", "a/b.png", "..", "", "  "} {
		if _, err := store.Save(context.Background(), name, []byte("x")); err == nil {
			t.Fatalf("expected error for filename %q", name)
		}
	}
}

func TestFileStoreRequiresBasePath(t *testing.T) {
	if _, err := NewFileStore("  ", "http://x"); err == nil {
		t.Fatalf("expected error for empty base path")
	}
}
