package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "sentinel %s\n", appVersion)
		if quiet {
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", appCommit)
		fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", appDate)
		fmt.Fprintf(cmd.OutOrStdout(), "  go:     %s %s/%s\n",
			runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
