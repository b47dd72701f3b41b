package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/klauern/razd/internal/canonical"
	"github.com/klauern/razd/internal/parser"
	"github.com/klauern/razd/internal/ui"
)

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print the canonical form and digest of a manifest",
		UsageText: "razd inspect <Razdfile.yml|mise.toml>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return errors.New("inspect requires exactly 1 argument: <file>")
			}
			return inspectFile(os.Stdout, cmd.Args().First())
		},
	}
}

func inspectFile(w io.Writer, path string) error {
	format, ok := parser.FormatForPath(path)
	if !ok {
		return fmt.Errorf("%s is not a Razdfile or mise.toml", path)
	}
	m, _, err := parser.ParseFile(path, format)
	if err != nil {
		return err
	}

	form := canonical.Canonicalize(m)
	fmt.Fprintf(w, "%s %s (%s)\n", ui.Header("File:"), path, format)
	fmt.Fprintf(w, "%s %s\n", ui.Header("Digest:"), canonical.HashString(form))
	fmt.Fprintf(w, "%s\n%s\n", ui.Header("Canonical form:"), form)
	return nil
}
