package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	rulesPath string
	verbose   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "liga",
	Short: "Liga standings engine - 순위, 승강 쿼터, 존 계산",
	Long: `Liga Unified CLI

Division standings for amateur racket leagues:
weighted ranking, promotion/relegation quotas and movement zones.

Usage:
  go run ./cmd/liga [command]

Examples:
  go run ./cmd/liga rank --input snapshot.json
  go run ./cmd/liga api --snapshot primera.json
  go run ./cmd/liga scheduler start
  go run ./cmd/liga db migrate`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "league rules YAML (default $LEAGUE_CONFIG or config/league.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
