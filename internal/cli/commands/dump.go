package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/odm/internal/cli/ui"
	"github.com/conduit-lang/odm/internal/orm/store"
)

// NewDumpCommand creates the dump command
func NewDumpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dump [collection]",
		Short: "List collections or print the documents of one",
		Long: `Without arguments, list every collection holding documents along with
its document count. With a collection name, print each stored document as
indented JSON.`,
		Example: `  # List collections
  odm dump

  # Print all people
  odm dump people --url sqlite:///var/lib/app/odm.db`,
		Args: cobra.MaximumNArgs(1),
		RunE: runDump,
	}
}

func runDump(cmd *cobra.Command, args []string) error {
	conn, logger, err := openConnection(cmd.Context())
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer conn.Close()

	st := conn.Store()

	if len(args) == 0 {
		return dumpCollections(cmd, st)
	}
	return dumpCollection(cmd, st, logger, args[0])
}

func dumpCollections(cmd *cobra.Command, st store.Store) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	collections, err := st.Collections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	if len(collections) == 0 {
		newColor(color.FgCyan).Fprintln(out, "ℹ No collections")
		return nil
	}

	table := ui.NewTable(out, noColorFlag, "COLLECTION", "DOCUMENTS")
	for _, name := range collections {
		bodies, err := st.List(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", name, err)
		}
		table.AddRow(name, strconv.Itoa(len(bodies)))
	}
	table.Render()
	return nil
}

func dumpCollection(cmd *cobra.Command, st store.Store, logger *zap.Logger, collection string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	bodies, err := st.List(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", collection, err)
	}

	if len(bodies) == 0 {
		warn := newColor(color.FgYellow)
		warn.Fprintf(out, "⚠ Collection %q has no documents\n", collection)

		collections, err := st.Collections(ctx)
		if err != nil {
			return fmt.Errorf("failed to list collections: %w", err)
		}
		if similar := ui.Suggest(collection, collections, 3); len(similar) > 0 {
			fmt.Fprintf(out, "  Did you mean: %s?\n", strings.Join(similar, ", "))
		}
		return nil
	}

	newColor(color.FgCyan, color.Bold).Fprintf(out, "%s (%d documents)\n", collection, len(bodies))
	for _, body := range bodies {
		var buf bytes.Buffer
		if err := json.Indent(&buf, body, "", "  "); err != nil {
			logger.Warn("skipping malformed document",
				zap.String("collection", collection),
				zap.Error(err),
			)
			continue
		}
		fmt.Fprintln(out, buf.String())
	}
	return nil
}
