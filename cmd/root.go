package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/clduab11/poker-helper/internal/config"
)

var (
	configPath string // optional YAML config file
	logLevel   string // overrides the configured log level when set
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "poker-helper",
	Short: "Real-time poker decision pipeline",
	Long: `poker-helper watches a table source, tracks meaningful state changes,
and turns each one into an action recommendation through a cached
provider pipeline.`,
	SilenceUsage: true,
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file (when given), applies environment
// overrides, and sets up logging.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("invalid log level %q, using info", level)
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "", "Log level (trace, debug, info, warn, error)")
}
