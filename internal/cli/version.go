package cli

import (
	"context"
	"fmt"
	"runtime"

	"github.com/urfave/cli/v3"

	"github.com/klauern/razd/internal/tracking"
)

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print the razd version",
		Action: func(_ context.Context, _ *cli.Command) error {
			fmt.Printf("razd %s (%s, %s)\n", Version, Commit, BuildDate)
			fmt.Printf("  %s, %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			fmt.Printf("  tracking format: %s\n", tracking.FormatVersion)
			return nil
		},
	}
}
