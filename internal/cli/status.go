package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/klauern/razd/internal/backup"
	"github.com/klauern/razd/internal/canonical"
	"github.com/klauern/razd/internal/detector"
	"github.com/klauern/razd/internal/parser"
	"github.com/klauern/razd/internal/tracking"
	"github.com/klauern/razd/internal/ui"
)

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the sync state of the project",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "forget",
				Usage: "Drop the record of the last sync so the next sync starts from the Razdfile",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			root, err := projectRoot(cmd)
			if err != nil {
				return err
			}
			store := tracking.NewStore(configFrom(ctx).DataDir())
			if cmd.Bool("forget") {
				if err := store.Forget(root); err != nil {
					return err
				}
				fmt.Println(ui.StatusSuccess("Forgot last sync"))
			}
			return printStatus(os.Stdout, store, root)
		},
	}
}

func printStatus(w io.Writer, store *tracking.Store, root string) error {
	current, err := detector.Scan(root)
	if err != nil {
		return err
	}
	rec, err := store.Load(root)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s %s\n", ui.Header("Project:"), root)
	printFile(w, root, parser.RazdfileName, current.Razdfile)
	printFile(w, root, parser.MiseName, current.Mise)

	fmt.Fprintln(w)
	if current.Empty() {
		fmt.Fprintln(w, ui.StatusSkipped("Nothing to sync"))
	} else {
		state := detector.Classify(current, detector.Stored(rec))
		fmt.Fprintf(w, "%s %s\n", ui.Bold("State:"), describeState(state))
	}

	if rec == nil {
		fmt.Fprintf(w, "%s never\n", ui.Bold("Last sync:"))
	} else {
		fmt.Fprintf(w, "%s %s (%s)\n", ui.Bold("Last sync:"),
			rec.LastSyncTime.Local().Format(time.RFC3339), rec.FormatVersion)
	}
	return nil
}

func printFile(w io.Writer, root, name string, digest canonical.Digest) {
	path := filepath.Join(root, name)
	if digest.IsZero() {
		fmt.Fprintf(w, "  %s\n", ui.StatusSkipped(fmt.Sprintf("%-13s missing", name)))
		return
	}
	line := fmt.Sprintf("%-13s %s", name, digest.Short())
	if meta, err := backup.Stat(path); err == nil {
		line += ui.Dim(fmt.Sprintf("  backup %s, %s", meta.ShortHash(), meta.CreatedAt.Local().Format(time.DateTime)))
	} else if !errors.Is(err, backup.ErrNoBackup) {
		line += ui.Dim("  backup unreadable")
	}
	fmt.Fprintf(w, "  %s\n", ui.StatusSuccess(line))
}

func describeState(s detector.State) string {
	switch s {
	case detector.NoChanges:
		return ui.Success("in sync")
	case detector.RazdfileChanged:
		return ui.Warning("Razdfile.yml changed, mise.toml will be regenerated")
	case detector.MiseChanged:
		return ui.Warning("mise.toml changed, Razdfile.yml will be updated")
	case detector.BothChanged:
		return ui.Error("both files changed, sync will ask which one wins")
	default:
		return s.String()
	}
}
