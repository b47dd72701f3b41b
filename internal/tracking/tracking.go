// Package tracking persists the digests recorded at the last successful
// synchronization of a project. Records live outside the project, under the
// razd data directory, keyed by a hash of the project's canonical path.
package tracking

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/klauern/razd/internal/canonical"
	rerrors "github.com/klauern/razd/internal/errors"
	"github.com/klauern/razd/internal/logging"
	"github.com/klauern/razd/internal/util"
)

const (
	// FormatVersion tags records written by this version of razd. Records
	// carrying any other value are ignored.
	FormatVersion = "semantic-v1"

	dirName  = "file_tracking"
	fileName = "tracking.json"
)

// Record is the persisted state of one project.
type Record struct {
	RazdfileHash  canonical.Digest `json:"razdfile_hash,omitempty"`
	MiseTomlHash  canonical.Digest `json:"mise_toml_hash,omitempty"`
	FormatVersion string           `json:"format_version"`
	LastSyncTime  time.Time        `json:"last_sync_time"`
}

// Store reads and writes tracking records.
type Store struct {
	dir    string
	rename util.RenameFunc
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithRename replaces the rename step of atomic writes.
func WithRename(rename util.RenameFunc) Option {
	return func(s *Store) { s.rename = rename }
}

// WithClock sets the time source used for LastSyncTime.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore returns a store rooted at dataDir. An empty dataDir uses
// util.DataDir().
func NewStore(dataDir string, opts ...Option) *Store {
	if dataDir == "" {
		dataDir = util.DataDir()
	}
	s := &Store{
		dir:    filepath.Join(dataDir, dirName),
		rename: os.Rename,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the directory holding all project records.
func (s *Store) Dir() string {
	return s.dir
}

// PathFor returns the record file for the project at root.
func (s *Store) PathFor(root string) (string, error) {
	key, err := projectKey(root)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, key, fileName), nil
}

func projectKey(root string) (string, error) {
	abs, err := util.CanonicalPath(root)
	if err != nil {
		return "", rerrors.IO(root, "failed to resolve project path", err)
	}
	sum := sha256.Sum256([]byte(abs))
	return hex.EncodeToString(sum[:]), nil
}

// Load returns the record for root. A missing, unreadable as JSON, or
// outdated record yields nil with no error, so the caller bootstraps.
func (s *Store) Load(root string) (*Record, error) {
	path, err := s.PathFor(root)
	if err != nil {
		return nil, err
	}

	// #nosec G304 - path is derived from the data directory and a hash
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, rerrors.IO(path, "failed to read tracking record", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		logging.Warn("ignoring corrupt tracking record", logging.Path(path), logging.Err(err))
		return nil, nil
	}
	if rec.FormatVersion != FormatVersion {
		logging.Debug("ignoring tracking record with old format",
			logging.Path(path), "format_version", rec.FormatVersion)
		return nil, nil
	}
	return &rec, nil
}

// Save writes a fresh record for root holding the given digests and the
// current time. The write is atomic.
func (s *Store) Save(root string, razdfile, mise canonical.Digest) (*Record, error) {
	path, err := s.PathFor(root)
	if err != nil {
		return nil, err
	}

	rec := &Record{
		RazdfileHash:  razdfile,
		MiseTomlHash:  mise,
		FormatVersion: FormatVersion,
		LastSyncTime:  s.now().UTC(),
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, err
	}
	data = append(data, '\n')

	if err := util.WriteFileAtomicWith(path, data, 0o600, s.rename); err != nil {
		return nil, rerrors.IO(path, "failed to write tracking record", err)
	}
	logging.Debug("saved tracking record", logging.Path(path),
		logging.Digest(string(razdfile)), "mise_digest", mise.Short())
	return rec, nil
}

// Forget removes the record for root. Removing a missing record is not an
// error.
func (s *Store) Forget(root string) error {
	path, err := s.PathFor(root)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(filepath.Dir(path)); err != nil {
		return rerrors.IO(path, "failed to remove tracking record", err)
	}
	return nil
}
