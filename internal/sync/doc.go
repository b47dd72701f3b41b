// Package sync keeps Razdfile.yml and mise.toml consistent.
//
// The Manager compares semantic digests of both files against the tracking
// record written at the last successful sync, decides which file is the
// source of truth and regenerates the other one.
//
// # Directions
//
// A changed Razdfile regenerates the [tools] and [plugins] tables of
// mise.toml; other mise.toml tables are kept. A changed mise.toml replaces
// the mise: key of the Razdfile and leaves tasks and comments alone. When
// both changed the caller's ConfirmationPort picks a side:
//
//	mgr := sync.New(tracking.NewStore(""), prompter, sync.Options{})
//	out, err := mgr.SyncIfNeeded(ctx, ".", sync.Policy{MakeBackups: true})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(out.Result)
//
// # Writes
//
// Every write goes through a temporary file and a rename. Before a file is
// overwritten its previous content can be copied to a .backup sibling.
// Regenerated content that equals the current bytes is not written.
package sync
