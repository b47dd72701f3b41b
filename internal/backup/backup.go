// Package backup keeps a single sibling copy of a manifest before razd
// overwrites it. Razdfile.yml is saved as Razdfile.yml.backup, mise.toml
// as mise.toml.backup.
package backup

import (
	"errors"
	"io/fs"
	"os"
	"time"

	rerrors "github.com/klauern/razd/internal/errors"
	"github.com/klauern/razd/internal/logging"
	"github.com/klauern/razd/internal/util"
)

// Suffix is appended to a file name to form its backup path.
const Suffix = ".backup"

// ErrNoBackup is returned by Restore when no backup exists.
var ErrNoBackup = errors.New("no backup found")

// Options configures backup behavior
type Options struct {
	// Rename moves finished temporary files into place. Nil uses os.Rename.
	Rename util.RenameFunc
}

// PathFor returns the backup path of path.
func PathFor(path string) string {
	return path + Suffix
}

// Create copies path to its backup sibling, replacing any earlier backup.
// The copy keeps the permissions of the original.
func Create(path string, opts Options) (*Metadata, error) {
	// #nosec G304 - path is a manifest inside the project root
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, rerrors.IO(path, "failed to read file for backup", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, rerrors.IO(path, "failed to stat file for backup", err)
	}

	dst := PathFor(path)
	if err := util.WriteFileAtomicWith(dst, data, info.Mode().Perm(), opts.Rename); err != nil {
		return nil, rerrors.IO(dst, "failed to write backup", err)
	}
	logging.Debug("created backup", logging.Path(dst))

	return &Metadata{
		SourcePath: path,
		BackupPath: dst,
		CreatedAt:  time.Now(),
		Hash:       hashContent(data),
		Size:       int64(len(data)),
	}, nil
}

// Stat describes the backup of path. It returns ErrNoBackup when there is
// none.
func Stat(path string) (*Metadata, error) {
	dst := PathFor(path)
	// #nosec G304 - dst is the sibling of a project manifest
	data, err := os.ReadFile(dst)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoBackup
	}
	if err != nil {
		return nil, rerrors.IO(dst, "failed to read backup", err)
	}
	info, err := os.Stat(dst)
	if err != nil {
		return nil, rerrors.IO(dst, "failed to stat backup", err)
	}
	return &Metadata{
		SourcePath: path,
		BackupPath: dst,
		CreatedAt:  info.ModTime(),
		Hash:       hashContent(data),
		Size:       info.Size(),
	}, nil
}

// Restore writes the backup of path back over path. The backup itself is
// kept.
func Restore(path string, opts Options) (*Metadata, error) {
	meta, err := Stat(path)
	if err != nil {
		return nil, err
	}

	// #nosec G304 - BackupPath is the sibling of a project manifest
	data, err := os.ReadFile(meta.BackupPath)
	if err != nil {
		return nil, rerrors.IO(meta.BackupPath, "failed to read backup", err)
	}
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := util.WriteFileAtomicWith(path, data, perm, opts.Rename); err != nil {
		return nil, rerrors.IO(path, "failed to restore backup", err)
	}
	logging.Info("restored backup", logging.Path(path))
	meta.Hash = hashContent(data)
	meta.Size = int64(len(data))
	return meta, nil
}
