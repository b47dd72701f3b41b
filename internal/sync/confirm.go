package sync

import (
	"context"
	"fmt"
)

// QuestionKind identifies what the Manager is asking about.
type QuestionKind int

const (
	// AskImportMise asks whether to fill a Razdfile without tools from
	// mise.toml.
	AskImportMise QuestionKind = iota
	// AskCreateRazdfile asks whether to create a missing Razdfile.
	AskCreateRazdfile
	// AskBackup asks whether to back a file up before overwriting it.
	AskBackup
)

// Question is a yes/no question put to the user.
type Question struct {
	Kind QuestionKind
	// Path is the file the question is about.
	Path string
}

// Prompt returns the question text.
func (q Question) Prompt() string {
	switch q.Kind {
	case AskImportMise:
		return fmt.Sprintf("%s has no tools. Import them from mise.toml?", q.Path)
	case AskCreateRazdfile:
		return fmt.Sprintf("%s does not exist. Create it from mise.toml?", q.Path)
	case AskBackup:
		return fmt.Sprintf("Back up %s before overwriting it?", q.Path)
	default:
		return q.Path
	}
}

// Resolution is the user's answer to a conflict.
type Resolution int

const (
	// ResolveSkip leaves both files untouched.
	ResolveSkip Resolution = iota
	// ResolveUseRazdfile regenerates mise.toml from the Razdfile.
	ResolveUseRazdfile
	// ResolveUseMise updates the Razdfile from mise.toml.
	ResolveUseMise
)

// String returns the resolution name.
func (r Resolution) String() string {
	switch r {
	case ResolveUseRazdfile:
		return "use Razdfile.yml"
	case ResolveUseMise:
		return "use mise.toml"
	default:
		return "skip"
	}
}

// ConfirmationPort is how the Manager asks the user for decisions. Any
// answer that cannot be understood must be reported as no, or as
// ResolveSkip.
type ConfirmationPort interface {
	Confirm(ctx context.Context, q Question) (bool, error)
	ResolveConflict(ctx context.Context, c *ConflictPreview) (Resolution, error)
}

// Decline answers no to every question and skips every conflict. It is the
// port for non-interactive runs.
type Decline struct{}

// Confirm implements ConfirmationPort.
func (Decline) Confirm(context.Context, Question) (bool, error) { return false, nil }

// ResolveConflict implements ConfirmationPort.
func (Decline) ResolveConflict(context.Context, *ConflictPreview) (Resolution, error) {
	return ResolveSkip, nil
}
