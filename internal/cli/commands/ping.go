package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var pingTimeoutFlag time.Duration

// NewPingCommand creates the ping command
func NewPingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the configured store is reachable",
		Example: `  # Ping the store from odm.yaml
  odm ping

  # Ping a specific store
  odm ping --url redis://localhost:6379/0`,
		RunE: runPing,
	}

	cmd.Flags().DurationVar(&pingTimeoutFlag, "timeout", 5*time.Second, "Ping timeout")

	return cmd
}

func runPing(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), pingTimeoutFlag)
	defer cancel()

	out := cmd.OutOrStdout()
	successColor := newColor(color.FgGreen, color.Bold)
	errorColor := newColor(color.FgRed, color.Bold)

	conn, logger, err := openConnection(ctx)
	if err != nil {
		errorColor.Fprintln(out, "✗ Could not open store")
		return err
	}
	defer logger.Sync()
	defer conn.Close()

	start := time.Now()
	if err := conn.Ping(ctx); err != nil {
		errorColor.Fprintln(out, "✗ Store is not reachable")
		return fmt.Errorf("ping failed: %w", err)
	}

	successColor.Fprintf(out, "✓ Store is reachable (%s)\n", time.Since(start).Round(time.Microsecond))
	return nil
}
