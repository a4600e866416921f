package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

const releaseSlug = "happyhackingspace/imt"

func (c *CLI) newUpCommand() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Self-update to the latest release",
		Example: `  imt up
  imt up --check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.selfUpdate(cmd.Context(), cmd.OutOrStdout(), check)
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Only report whether a newer release exists")
	return cmd
}

func (c *CLI) selfUpdate(ctx context.Context, w io.Writer, checkOnly bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	current := c.version
	if current == "dev" {
		current = "0.0.0"
	}

	updater, err := selfupdate.NewUpdater(selfupdate.Config{})
	if err != nil {
		return err
	}
	latest, found, err := updater.DetectLatest(ctx, selfupdate.ParseSlug(releaseSlug))
	if err != nil {
		return fmt.Errorf("detect latest version: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found for %s", releaseSlug)
	}
	if latest.LessOrEqual(current) {
		_, err := fmt.Fprintf(w, "Already up to date (%s)\n", c.version)
		return err
	}
	if checkOnly {
		_, err := fmt.Fprintf(w, "Release %s available (running %s)\n", latest.Version(), c.version)
		return err
	}

	slog.Info("Updating", "from", c.version, "to", latest.Version(), "asset", latest.AssetName)
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	if err := updater.UpdateTo(ctx, latest, exe); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	_, err = fmt.Fprintf(w, "Updated to %s\n", latest.Version())
	return err
}
