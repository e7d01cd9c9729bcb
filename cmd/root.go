// Package cmd implements the command-line interface for the AI visibility
// scanner. It provides the root command plus the serve and scan subcommands.
package cmd

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/coreyshath-a11y/aeo-app/cmd/scan"
	"github.com/coreyshath-a11y/aeo-app/cmd/serve"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// rootCmd represents the root command for the aeoscan CLI.
	rootCmd = &cobra.Command{
		Use:   "aeoscan",
		Short: "AI visibility scanner",
		Long: `aeoscan audits a website for AI visibility: it fetches the page and its
surrounding signals (schema markup, sitemap, robots.txt, archive history,
field performance) and scores them across five pillars.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Load .env early so environment variables are visible to viper.
	_ = godotenv.Load()

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yaml or ./config/config.yaml)",
	)

	rootCmd.AddCommand(serve.Command())
	rootCmd.AddCommand(scan.Command())
}
