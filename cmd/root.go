// Package cmd defines the CLI commands for the fund-load adjudicator.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fund-adjudicator/internal/config"
)

// cfgFile is the optional limits file (YAML or JSON); empty means defaults.
var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "fund-adjudicator",
	Short: "Adjudicate fund-load requests against per-customer velocity limits",
	Long: `fund-adjudicator consumes a stream of fund-load requests (JSONL or CSV)
and produces an accept/decline decision per request, enforcing daily and
rolling-weekly amount limits, daily load counts, prime-ID restrictions and
the Monday multiplier. Every request also yields a full audit record
explaining each rule evaluated.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "limits file (YAML or JSON, defaults used when omitted)")
}

// loadConfig resolves the run configuration from the --config flag.
func loadConfig() (config.Configuration, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	return config.Load(cfgFile)
}
