package sync

import (
	"github.com/klauern/razd/internal/backup"
	"github.com/klauern/razd/internal/detector"
	"github.com/klauern/razd/internal/tracking"
)

// Result is the outcome of one SyncIfNeeded call.
type Result int

const (
	// NoChangesNeeded means the files were already consistent.
	NoChangesNeeded Result = iota
	// RazdfileToMise means mise.toml was regenerated from the Razdfile.
	RazdfileToMise
	// MiseToRazdfile means the Razdfile tool section was updated from mise.toml.
	MiseToRazdfile
	// Skipped means sync was disabled or the user declined.
	Skipped
	// Conflict means both files changed and the user chose not to pick one.
	Conflict
)

// String returns a human-readable representation of the result.
func (r Result) String() string {
	switch r {
	case NoChangesNeeded:
		return "no changes needed"
	case RazdfileToMise:
		return "Razdfile.yml -> mise.toml"
	case MiseToRazdfile:
		return "mise.toml -> Razdfile.yml"
	case Skipped:
		return "skipped"
	case Conflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Synced reports whether the result carried content from one file to the
// other.
func (r Result) Synced() bool {
	return r == RazdfileToMise || r == MiseToRazdfile
}

// Outcome describes what SyncIfNeeded did.
type Outcome struct {
	// Result is the overall outcome.
	Result Result

	// State is the change classification that led to Result.
	State detector.State

	// Written lists the files that were replaced or created.
	Written []string

	// Backups lists the backups made before writing.
	Backups []*backup.Metadata

	// Record is the tracking record saved at the end, if any.
	Record *tracking.Record
}
