package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader handles configuration loading from multiple sources.
type Loader struct {
	v          *viper.Viper
	configFile string
	envPrefix  string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		v:         viper.New(),
		envPrefix: "SENTINEL",
	}
}

// NewLoaderWithViper creates a loader using an existing viper instance.
// This allows integration with CLI flag bindings.
func NewLoaderWithViper(v *viper.Viper) *Loader {
	return &Loader{
		v:         v,
		envPrefix: "SENTINEL",
	}
}

// WithConfigFile sets an explicit config file path.
func (l *Loader) WithConfigFile(path string) *Loader {
	l.configFile = path
	return l
}

// Viper returns the underlying viper instance for flag binding.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load loads configuration from all sources.
// Precedence (highest to lowest):
// 1. CLI flags (set via viper.BindPFlag)
// 2. Environment variables (SENTINEL_*)
// 3. Project config (.sentinel.yaml in current directory)
// 4. User config (~/.config/sentinel/config.yaml)
// 5. Defaults
func (l *Loader) Load() (*Config, error) {
	l.setDefaults()

	l.v.SetEnvPrefix(l.envPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	} else {
		l.v.SetConfigName(".sentinel")
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			l.v.AddConfigPath(filepath.Join(home, ".config", "sentinel"))
		}
	}

	// Missing config file is fine, defaults apply.
	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers Default() as the lowest-precedence source.
func (l *Loader) setDefaults() {
	d := Default()

	l.v.SetDefault("log.level", d.Log.Level)
	l.v.SetDefault("log.format", d.Log.Format)

	l.v.SetDefault("pipeline.deadline", d.Pipeline.Deadline)
	l.v.SetDefault("pipeline.gate_budget", d.Pipeline.GateBudget)
	l.v.SetDefault("pipeline.fanout_budget", d.Pipeline.FanOutBudget)
	l.v.SetDefault("pipeline.fast_analyzers", d.Pipeline.FastAnalyzers)
	l.v.SetDefault("pipeline.expensive_analyzers", d.Pipeline.ExpensiveAnalyzers)
	l.v.SetDefault("pipeline.max_concurrent_analyzers", d.Pipeline.MaxConcurrentAnalyzers)
	l.v.SetDefault("pipeline.min_successful_analyzers", d.Pipeline.MinSuccessfulAnalyzers)

	l.v.SetDefault("escalation.high_confidence_floor", d.Escalation.HighConfidenceFloor)

	l.v.SetDefault("audit.backend", d.Audit.Backend)
	l.v.SetDefault("audit.path", d.Audit.Path)

	l.v.SetDefault("memory.path", d.Memory.Path)

	l.v.SetDefault("analyzers.rules_path", "")
}
