package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/klauern/razd/internal/template"
	"github.com/klauern/razd/internal/ui"
)

func initCommand() *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "Create a starter Razdfile.yml for the project",
		UsageText: "razd init [--type node|python|rust|go|docker|generic] [--force]",
		Description: `Detect the project type and write a starter Razdfile.yml with a
   mise tool section and common tasks, then generate mise.toml from it.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "type",
				Aliases: []string{"t"},
				Usage:   "Project type to use instead of detecting it",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing Razdfile.yml",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			root, err := projectRoot(cmd)
			if err != nil {
				return err
			}

			projectType := template.Detect(root)
			if t := cmd.String("type"); t != "" {
				if projectType, err = template.ParseProjectType(t); err != nil {
					return err
				}
			} else {
				fmt.Println(ui.StatusPending("Detected project type: " + projectType.Title()))
			}

			gen, err := template.New()
			if err != nil {
				return err
			}
			path, err := gen.CreateRazdfile(root, projectType, cmd.Bool("force"))
			if errors.Is(err, template.ErrExists) {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err != nil {
				return err
			}
			fmt.Println(ui.StatusSuccess("Created " + path))

			cfg := configFrom(ctx)
			outcome, err := newManager(cfg).SyncIfNeeded(ctx, root, cfg.Policy())
			if err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}
			printOutcome(os.Stdout, outcome)
			return nil
		},
	}
}
