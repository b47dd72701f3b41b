package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/urfave/cli/v3"

	rerrors "github.com/klauern/razd/internal/errors"
	"github.com/klauern/razd/internal/parser"
	"github.com/klauern/razd/internal/ui"
)

func listCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List the tasks defined in Razdfile.yml",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "all",
				Aliases: []string{"a"},
				Usage:   "Include internal tasks",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			root, err := projectRoot(cmd)
			if err != nil {
				return err
			}
			return listTasks(os.Stdout, root, cmd.Bool("all"))
		},
	}
}

func listTasks(w io.Writer, root string, all bool) error {
	path := filepath.Join(root, parser.RazdfileName)
	m, _, err := parser.ParseFile(path, parser.FormatRazdfile)
	if errors.Is(err, fs.ErrNotExist) {
		return rerrors.Config(parser.RazdfileName+" not found in "+root, nil)
	}
	if err != nil {
		return err
	}

	names := m.TaskNames(all)
	if len(names) == 0 {
		fmt.Fprintf(w, "No tasks found in %s\n", parser.RazdfileName)
		return nil
	}
	slices.Sort(names)

	width := 0
	for _, name := range names {
		width = max(width, len(name)+1)
	}

	fmt.Fprintln(w, ui.Bold("task: Available tasks for this project:"))
	for _, name := range names {
		task, _ := m.Tasks.Get(name)
		label := ui.Info(fmt.Sprintf("%-*s", width, name+":"))
		desc := task.Desc
		if task.Internal {
			desc = ui.Dim("(internal) ") + desc
		}
		if desc == "" {
			fmt.Fprintf(w, "* %s\n", ui.Info(name+":"))
			continue
		}
		fmt.Fprintf(w, "* %s %s\n", label, desc)
	}
	return nil
}
