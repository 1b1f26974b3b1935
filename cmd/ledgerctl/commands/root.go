package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	dbURL string
)

// rootCmd represents the base command
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Operator tooling for the ledger backend",
		Long: `ledgerctl manages a ledger backend deployment.

Commands:
  migrate  - Apply, roll back or inspect the database schema
  token    - Issue a signed bearer token for the write endpoints`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional, same as the server
			_ = godotenv.Load()
		},
	}
	cmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database connection URL (defaults to DATABASE_URL)")
	cmd.AddCommand(newMigrateCmd(), newTokenCmd())
	return cmd
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(value, key string) string {
	if value != "" {
		return value
	}
	return os.Getenv(key)
}

func databaseURL() (string, error) {
	url := envOr(dbURL, "DATABASE_URL")
	if url == "" {
		return "", fmt.Errorf("database URL required: pass --db or set DATABASE_URL")
	}
	return url, nil
}
