package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/guardrail-labs/sentinel/internal/config"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
	quiet     bool

	// Version info - set via SetVersion()
	appVersion string
	appCommit  string
	appDate    string
)

var rootCmd = &cobra.Command{
	Use:   "sentinel",
	Short: "Risk-gated analysis pipeline for interaction requests",
	Long: `sentinel runs interaction requests through a risk-gated analysis
pipeline: fast analyzers screen each request sequentially, expensive
analyzers run concurrently on whatever passes the gate, and an
escalation policy decides whether the synthesized response must be
replaced by an intervention.

Every stage transition is recorded to an append-only audit trail.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}

func SetVersion(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: .sentinel.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "auto",
		"log format (auto, text, json)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-essential output")

	// Bind flags to viper (errors are nil when flag exists)
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

// loadConfig loads and validates configuration with CLI flag bindings
// applied on top.
func loadConfig() (*config.Config, error) {
	loader := config.NewLoaderWithViper(viper.GetViper())
	if cfgFile != "" {
		loader = loader.WithConfigFile(cfgFile)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	if err := config.NewValidator().Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
