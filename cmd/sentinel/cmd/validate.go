package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the resolved configuration",
	Long: `Validate loads configuration from all sources (flags, environment,
config file, defaults) and checks it for consistency: stage budgets
must fit inside the request deadline, analyzer rosters must be
non-empty and free of duplicates, and thresholds must be in range.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "configuration OK")
		if quiet {
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  deadline:            %s\n", cfg.Pipeline.Deadline)
		fmt.Fprintf(cmd.OutOrStdout(), "  gate budget:         %s\n", cfg.Pipeline.GateBudget)
		fmt.Fprintf(cmd.OutOrStdout(), "  fan-out budget:      %s\n", cfg.Pipeline.FanOutBudget)
		fmt.Fprintf(cmd.OutOrStdout(), "  fast analyzers:      %v\n", cfg.Pipeline.FastAnalyzers)
		fmt.Fprintf(cmd.OutOrStdout(), "  expensive analyzers: %v\n", cfg.Pipeline.ExpensiveAnalyzers)
		fmt.Fprintf(cmd.OutOrStdout(), "  audit backend:       %s (%s)\n", cfg.Audit.Backend, cfg.Audit.Path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
