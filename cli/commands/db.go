package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mango-db/mango-go/cli/internal/ui"
)

// NewDBCommand creates the db command with subcommands.
func NewDBCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Inspect the database",
	}

	cmd.AddCommand(newDBPingCommand())
	cmd.AddCommand(newDBTablesCommand())

	return cmd
}

func newDBPingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check database connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBPing(cmd.Context())
		},
	}
}

func runDBPing(ctx context.Context) error {
	db, _, err := openClient(ctx)
	if err != nil {
		return err
	}
	defer db.Disconnect()

	ui.PrintSuccess("Database is reachable")
	return nil
}

func newDBTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List tables and their columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBTables(cmd.Context())
		},
	}
}

func runDBTables(ctx context.Context) error {
	db, _, err := openClient(ctx)
	if err != nil {
		return err
	}
	defer db.Disconnect()

	if err := db.DiscoverTables(ctx); err != nil {
		return err
	}
	names := db.Registry().Names()
	if len(names) == 0 {
		ui.PrintInfo("No tables found")
		return nil
	}

	for _, name := range names {
		schema, _ := db.Registry().Lookup(name)
		fmt.Printf("%s (%d columns)\n", name, len(schema.Columns))
		for _, col := range schema.Columns {
			fmt.Printf("  %s\n", col)
		}
	}
	return nil
}
