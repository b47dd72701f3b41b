package backup

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	rerrors "github.com/klauern/razd/internal/errors"
	"github.com/klauern/razd/internal/util"
)

func TestPathFor(t *testing.T) {
	tests := map[string]string{
		"Razdfile.yml":   "Razdfile.yml.backup",
		"/p/mise.toml":   "/p/mise.toml.backup",
		"dir/.mise.toml": "dir/.mise.toml.backup",
	}
	for in, want := range tests {
		if got := PathFor(in); got != want {
			t.Errorf("PathFor(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCreate(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "mise.toml")
	util.WriteFile(t, src, "[tools]\nnode = \"22\"\n")

	meta, err := Create(src, Options{})
	util.AssertNoError(t, err)

	util.AssertEqual(t, meta.BackupPath, filepath.Join(dir, "mise.toml.backup"))
	util.AssertEqual(t, meta.SourcePath, src)
	util.AssertEqual(t, meta.Size, int64(len("[tools]\nnode = \"22\"\n")))
	util.AssertEqual(t, len(meta.Hash), 64)
	util.AssertEqual(t, util.ReadFile(t, meta.BackupPath), "[tools]\nnode = \"22\"\n")
}

func TestCreateReplacesPreviousBackup(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Razdfile.yml")

	util.WriteFile(t, src, "version: '3'\n")
	_, err := Create(src, Options{})
	util.AssertNoError(t, err)

	util.WriteFile(t, src, "version: '3'\ntasks: {}\n")
	_, err = Create(src, Options{})
	util.AssertNoError(t, err)

	util.AssertEqual(t, util.ReadFile(t, PathFor(src)), "version: '3'\ntasks: {}\n")
}

func TestCreateMissingSource(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "mise.toml"), Options{})
	if !errors.Is(err, rerrors.ErrIO) {
		t.Errorf("Create() error = %v, want io error", err)
	}
}

func TestCreateFailedRename(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "mise.toml")
	util.WriteFile(t, src, "[tools]\n")

	_, err := Create(src, Options{Rename: func(_, _ string) error {
		return errors.New("boom")
	}})
	if err == nil {
		t.Fatal("Create() should fail when rename fails")
	}
	if _, statErr := os.Stat(PathFor(src)); !os.IsNotExist(statErr) {
		t.Error("backup should not exist after failed rename")
	}
}

func TestStat(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "mise.toml")

	if _, err := Stat(src); !errors.Is(err, ErrNoBackup) {
		t.Errorf("Stat() error = %v, want ErrNoBackup", err)
	}

	util.WriteFile(t, PathFor(src), "old")
	meta, err := Stat(src)
	util.AssertNoError(t, err)
	util.AssertEqual(t, meta.Size, int64(3))
	util.AssertEqual(t, meta.ShortHash(), meta.Hash[:12])
}

func TestRestore(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Razdfile.yml")
	util.WriteFile(t, src, "current\n")
	util.WriteFile(t, PathFor(src), "previous\n")

	meta, err := Restore(src, Options{})
	util.AssertNoError(t, err)

	util.AssertEqual(t, util.ReadFile(t, src), "previous\n")
	util.AssertEqual(t, util.ReadFile(t, PathFor(src)), "previous\n")
	util.AssertEqual(t, meta.Size, int64(len("previous\n")))
}

func TestRestoreWithoutBackup(t *testing.T) {
	src := filepath.Join(t.TempDir(), "Razdfile.yml")
	util.WriteFile(t, src, "current\n")

	if _, err := Restore(src, Options{}); !errors.Is(err, ErrNoBackup) {
		t.Errorf("Restore() error = %v, want ErrNoBackup", err)
	}
	util.AssertEqual(t, util.ReadFile(t, src), "current\n")
}
