// Package commands implements the mango CLI commands.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build)
	Version = "dev"
	Commit  = "unknown"
)

// NewRootCommand creates the root mango command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "mango",
		Short:   "Query builder and schema migrations for MySQL",
		Long:    "mango manages schema migrations and inspects MySQL databases",
		Version: fmt.Sprintf("%s (commit: %s)", Version, Commit),
	}

	rootCmd.AddCommand(NewMigrateCommand())
	rootCmd.AddCommand(NewDBCommand())

	return rootCmd
}
