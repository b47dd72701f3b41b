package sync

// Policy controls how much the Manager may do without asking.
type Policy struct {
	// SkipAll disables synchronization entirely.
	SkipAll bool
	// AutoApprove answers every question with yes, and resolves conflicts
	// in favour of the Razdfile.
	AutoApprove bool
	// MakeBackups copies a file to its .backup sibling before it is
	// overwritten.
	MakeBackups bool
}
