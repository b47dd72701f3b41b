package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/klauern/razd/internal/backup"
	"github.com/klauern/razd/internal/parser"
	"github.com/klauern/razd/internal/ui"
)

func restoreCommand() *cli.Command {
	return &cli.Command{
		Name:      "restore",
		Usage:     "Restore a manifest from its .backup copy",
		UsageText: "razd restore <Razdfile.yml|mise.toml>",
		Description: `Copy Razdfile.yml.backup or mise.toml.backup back over the file.
   The next sync treats the restored content as a regular edit.`,
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return errors.New("restore requires exactly 1 argument: <file>")
			}
			root, err := projectRoot(cmd)
			if err != nil {
				return err
			}
			path := cmd.Args().First()
			if !filepath.IsAbs(path) {
				path = filepath.Join(root, path)
			}
			return restoreFile(os.Stdout, path)
		},
	}
}

func restoreFile(w io.Writer, path string) error {
	if _, ok := parser.FormatForPath(path); !ok {
		return fmt.Errorf("%s is not a Razdfile or mise.toml", path)
	}
	meta, err := backup.Restore(path, backup.Options{})
	if errors.Is(err, backup.ErrNoBackup) {
		return fmt.Errorf("no backup found for %s", path)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(w, ui.StatusSuccess(fmt.Sprintf("Restored %s from %s (%s)", path, meta.BackupPath, meta.ShortHash())))
	return nil
}
