package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/firefly-oss/lib-session-manager/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "sessiond",
	Short: "Session and authorization context manager",
	Long: `sessiond maintains per-party session contexts for a multi-tenant
service mesh: it aggregates customer profiles from upstream party and
contract data, resolves contract roles against a static catalog plus
custom reference data, and answers fine-grained access questions.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().String("server-addr", "", "Server bind address (env: SERVER_ADDR)")
	rootCmd.PersistentFlags().String("upstream-url", "", "Customer-data platform base URL (env: UPSTREAM_BASE_URL)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging (env: DEBUG)")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
