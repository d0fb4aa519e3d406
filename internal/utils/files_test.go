package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSafeWriteFileReplaces(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.bin")
	if err := SafeWriteFile(p, []byte("one")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := SafeWriteFile(p, []byte("two")); err != nil {
		t.Fatalf("second write: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "two" {
		t.Fatalf("expected replaced content, got %q", b)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestPublishFileFirstWriteWins(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "model.gob")
	if err := PublishFile(p, []byte("first")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	err := PublishFile(p, []byte("second"))
	if !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "first" {
		t.Fatalf("winner content overwritten: %q", b)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the published file, found %d entries", len(entries))
	}
}

func TestEnsureDirCreatesParent(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a", "b", "c.gob")
	if err := EnsureDir(p); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}
	info, err := os.Stat(filepath.Dir(p))
	if err != nil || !info.IsDir() {
		t.Fatalf("parent not created: %v", err)
	}
	if err := EnsureDir("relative.gob"); err != nil {
		t.Fatalf("bare file name: %v", err)
	}
}
