package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "vecdb",
	Short: "Embedded multi-collection vector database",
	Long: `vecdb - an in-process vector database with per-collection HNSW indexes.

Collections hold fixed-dimension vectors with a value and a source tag each.
Inserts are cheap; indexes are rebuilt explicitly.

Examples:
  # Run the server with a configuration file
  vecdb serve --config vecdb.toml

  # Inspect a local snapshot
  vecdb inspect /var/lib/vecdb/vecdb.snap`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML configuration file")
}
