package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/klauern/razd/internal/config"
	rerrors "github.com/klauern/razd/internal/errors"
	"github.com/klauern/razd/internal/sync"
	"github.com/klauern/razd/internal/tracking"
	"github.com/klauern/razd/internal/ui"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect razd configuration",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the effective configuration",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "yaml",
						Usage:   "Output format (yaml, json)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return showConfig(os.Stdout, configFrom(ctx), cmd.String("format"))
				},
			},
			{
				Name:  "init",
				Usage: "Write a configuration file with default settings",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing configuration file",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					return initConfig(os.Stdout, cmd.Bool("force"))
				},
			},
			{
				Name:  "path",
				Usage: "Print the configuration file path",
				Action: func(_ context.Context, _ *cli.Command) error {
					fmt.Println(config.FilePath())
					return nil
				},
			},
		},
	}
}

func initConfig(w io.Writer, force bool) error {
	path := config.FilePath()
	if config.Exists() && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.Default().Save(); err != nil {
		return rerrors.IO(path, "failed to write config", err)
	}
	fmt.Fprintln(w, ui.StatusSuccess("Created "+path))
	return nil
}

func showConfig(w io.Writer, cfg *config.Config, format string) error {
	switch format {
	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to encode configuration: %w", err)
		}
		_, err = w.Write(data)
		return err
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode configuration: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	default:
		return fmt.Errorf("unsupported format %q (use yaml or json)", format)
	}
}

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:      "sync",
		Usage:     "Synchronize Razdfile.yml and mise.toml",
		UsageText: "razd sync [options]",
		Description: `Bring Razdfile.yml and mise.toml back in agreement.

   The file that changed since the last sync is the source. When both
   changed you are asked which one wins. Formatting-only edits are ignored.

   Examples:
     razd sync
     razd sync --yes --no-backup
     razd --dir ./service sync`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Answer yes to every question; Razdfile.yml wins conflicts",
			},
			&cli.BoolFlag{
				Name:  "no-backup",
				Usage: "Do not back files up before overwriting them",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			root, err := projectRoot(cmd)
			if err != nil {
				return err
			}

			cfg := configFrom(ctx)
			policy := cfg.Policy()
			if cmd.Bool("yes") {
				policy.AutoApprove = true
			}
			if cmd.Bool("no-backup") {
				policy.MakeBackups = false
			}

			outcome, err := newManager(cfg).SyncIfNeeded(ctx, root, policy)
			if err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}
			if policy.SkipAll {
				fmt.Println(ui.StatusSkipped("Sync disabled by configuration (RAZD_NO_SYNC)"))
				return nil
			}
			printOutcome(os.Stdout, outcome)
			return nil
		},
	}
}

// newManager builds a sync manager on the configured tracking store that
// prompts on the terminal.
func newManager(cfg *config.Config) *sync.Manager {
	store := tracking.NewStore(cfg.DataDir())
	return sync.New(store, newTerminalPrompter(), sync.Options{})
}

// printOutcome reports what a sync did.
func printOutcome(w io.Writer, outcome *sync.Outcome) {
	for _, b := range outcome.Backups {
		fmt.Fprintf(w, "  Created backup: %s\n", b.BackupPath)
	}
	switch outcome.Result {
	case sync.RazdfileToMise, sync.MiseToRazdfile:
		fmt.Fprintln(w, ui.StatusSuccess("Synced "+outcome.Result.String()))
	case sync.NoChangesNeeded:
		fmt.Fprintln(w, ui.StatusSuccess("Already in sync"))
	case sync.Skipped:
		fmt.Fprintln(w, ui.StatusSkipped("Sync skipped"))
	case sync.Conflict:
		fmt.Fprintln(w, ui.StatusWarning("Skipping sync. Please resolve manually."))
	}
}
