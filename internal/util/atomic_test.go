package util

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "mise.toml")

	AssertNoError(t, WriteFileAtomic(path, []byte("first\n"), 0o644))
	AssertNoError(t, WriteFileAtomic(path, []byte("second\n"), 0o644))

	got, err := os.ReadFile(path) //nolint:gosec // G304 - test temp dir
	AssertNoError(t, err)
	AssertEqual(t, string(got), "second\n")

	entries, err := os.ReadDir(filepath.Dir(path))
	AssertNoError(t, err)
	if len(entries) != 1 {
		t.Errorf("expected only the target file, found %d entries", len(entries))
	}
}

func TestWriteFileAtomicWithoutRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Razdfile.yml")
	original := "version: '3'\n"
	WriteFile(t, path, original)

	// A rename that never happens stands in for a crash between the
	// temporary write and the rename.
	crash := errors.New("crashed before rename")
	err := WriteFileAtomicWith(path, []byte("replaced\n"), 0o644, func(string, string) error {
		return crash
	})
	if !errors.Is(err, crash) {
		t.Fatalf("expected rename error, got %v", err)
	}

	got, readErr := os.ReadFile(path) //nolint:gosec // G304 - test temp dir
	AssertNoError(t, readErr)
	AssertEqual(t, string(got), original)

	entries, readErr := os.ReadDir(dir)
	AssertNoError(t, readErr)
	if len(entries) != 1 {
		t.Errorf("temporary file left behind: %d entries", len(entries))
	}
}
