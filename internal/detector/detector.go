// Package detector classifies how a project's manifests changed since the
// last synchronization. It compares semantic digests and never reads file
// timestamps.
package detector

import (
	"path/filepath"

	"github.com/klauern/razd/internal/canonical"
	"github.com/klauern/razd/internal/parser"
	"github.com/klauern/razd/internal/tracking"
)

// State is the outcome of change detection.
type State int

const (
	// NoChanges means both files match the tracking record.
	NoChanges State = iota
	// RazdfileChanged means only Razdfile.yml changed, or there is no record yet.
	RazdfileChanged
	// MiseChanged means only mise.toml changed.
	MiseChanged
	// BothChanged means both files changed since the last sync.
	BothChanged
)

// String returns the state name used in logs and status output.
func (s State) String() string {
	switch s {
	case NoChanges:
		return "no-changes"
	case RazdfileChanged:
		return "razdfile-changed"
	case MiseChanged:
		return "mise-changed"
	case BothChanged:
		return "both-changed"
	default:
		return "unknown"
	}
}

// Snapshot holds the digests of both manifests. A zero digest means the
// file does not exist.
type Snapshot struct {
	Razdfile canonical.Digest
	Mise     canonical.Digest
}

// Empty reports whether neither file exists.
func (s Snapshot) Empty() bool {
	return s.Razdfile.IsZero() && s.Mise.IsZero()
}

// Scan hashes both manifests in root.
func Scan(root string) (Snapshot, error) {
	razd, err := canonical.HashFile(filepath.Join(root, parser.RazdfileName))
	if err != nil {
		return Snapshot{}, err
	}
	mise, err := canonical.HashFile(filepath.Join(root, parser.MiseName))
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Razdfile: razd, Mise: mise}, nil
}

// Stored converts a tracking record to a snapshot. A nil record yields nil.
func Stored(rec *tracking.Record) *Snapshot {
	if rec == nil {
		return nil
	}
	return &Snapshot{Razdfile: rec.RazdfileHash, Mise: rec.MiseTomlHash}
}

// Classify compares the current digests with the stored ones. Without a
// stored snapshot any existing file counts as a Razdfile change, which
// makes the Razdfile the initial source of truth.
func Classify(current Snapshot, stored *Snapshot) State {
	if stored == nil {
		if current.Empty() {
			return NoChanges
		}
		return RazdfileChanged
	}

	razd := current.Razdfile != stored.Razdfile
	mise := current.Mise != stored.Mise
	switch {
	case razd && mise:
		return BothChanged
	case razd:
		return RazdfileChanged
	case mise:
		return MiseChanged
	default:
		return NoChanges
	}
}
