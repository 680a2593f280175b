package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mango-db/mango-go/cli/internal/config"
	"github.com/mango-db/mango-go/cli/internal/ui"
	"github.com/mango-db/mango-go/migrate/history"
)

// NewMigrateCommand creates the migrate command with subcommands.
func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long:  "Inspect the migration ledger and scaffold new migrations",
	}

	cmd.AddCommand(newMigrateStatusCommand())
	cmd.AddCommand(newMigrateCreateCommand())
	cmd.AddCommand(newMigrateResetCommand())

	return cmd
}

func newMigrateStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show applied migrations",
		Long:  "List every migration recorded in the ledger table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateStatus(cmd.Context())
		},
	}
}

func runMigrateStatus(ctx context.Context) error {
	db, cfg, err := openClient(ctx)
	if err != nil {
		return err
	}
	defer db.Disconnect()

	ledger := history.New(db, cfg.LedgerTable)
	if err := ledger.Init(ctx); err != nil {
		return err
	}
	entries, err := ledger.Entries(ctx)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		ui.PrintInfo("No migrations have been applied")
		return nil
	}

	rows := make([]ui.MigrationRow, len(entries))
	for i, e := range entries {
		rows[i] = ui.MigrationRow{Name: e.Name, Timestamp: e.Timestamp, ExecutedAt: e.ExecutedAt}
	}
	ui.PrintLedgerTable(rows)
	ui.PrintSuccess("%d migration(s) applied", len(entries))
	return nil
}

var migrationNamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

func newMigrateCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Scaffold a new migration",
		Long:  "Create a timestamped migration file in the migrations directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateCreate(args[0])
		},
	}
	return cmd
}

func runMigrateCreate(name string) error {
	if !migrationNamePattern.MatchString(name) {
		return fmt.Errorf("migration name must match %s", migrationNamePattern)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	timestamp := time.Now().Unix()
	filename := fmt.Sprintf("%d_%s.go", timestamp, name)
	path := filepath.Join(cfg.MigrationsDir, filename)

	if err := config.AppFs.MkdirAll(cfg.MigrationsDir, 0755); err != nil {
		return err
	}
	if _, err := config.AppFs.Stat(path); err == nil {
		return fmt.Errorf("migration file already exists: %s", path)
	}

	content := migrationTemplate(name, timestamp)
	if err := afero.WriteFile(config.AppFs, path, []byte(content), 0644); err != nil {
		return err
	}

	ui.PrintSuccess("Created %s", path)
	ui.PrintInfo("Register it with engine.Add(%s)", exportName(name))
	return nil
}

func migrationTemplate(name string, timestamp int64) string {
	return fmt.Sprintf(`package migrations

import (
	"context"

	"github.com/mango-db/mango-go/migrate"
	"github.com/mango-db/mango-go/runtime/client"
)

// %[1]s is the %[2]s migration.
var %[1]s = migrate.Migration{
	Name:      "%[2]s",
	Timestamp: %[3]d,
	Up: func(ctx context.Context, db *client.Client) error {
		// TODO: apply the schema change
		return nil
	},
	Down: func(ctx context.Context, db *client.Client) error {
		// TODO: undo the schema change
		return nil
	},
}
`, exportName(name), name, timestamp)
}

// exportName turns snake_case into an exported Go identifier.
func exportName(name string) string {
	parts := strings.Split(name, "_")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, "")
}

func newMigrateResetCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop every table in the database",
		Long:  "Drop all tables, including the migration ledger. Destructive.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateReset(cmd.Context(), force)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation prompt")
	return cmd
}

func runMigrateReset(ctx context.Context, force bool) error {
	db, _, err := openClient(ctx)
	if err != nil {
		return err
	}
	defer db.Disconnect()

	if err := db.DiscoverTables(ctx); err != nil {
		return err
	}
	tables := db.Registry().Names()
	if len(tables) == 0 {
		ui.PrintInfo("Database is already empty")
		return nil
	}

	if !force {
		confirmed := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Drop %d table(s)? This cannot be undone.", len(tables)),
		}
		if err := survey.AskOne(prompt, &confirmed); err != nil {
			return err
		}
		if !confirmed {
			ui.PrintWarning("Reset cancelled")
			return nil
		}
	}

	// Foreign keys between tables would block drops in an arbitrary
	// order.
	if _, err := db.Exec(ctx, "SET FOREIGN_KEY_CHECKS = 0"); err != nil {
		return err
	}
	for _, table := range tables {
		if err := db.DropTable(ctx, table); err != nil {
			return err
		}
	}
	if _, err := db.Exec(ctx, "SET FOREIGN_KEY_CHECKS = 1"); err != nil {
		return err
	}

	ui.PrintSuccess("Dropped %d table(s)", len(tables))
	return nil
}
