package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/clduab11/poker-helper/internal/sched"
)

var (
	runProvider string // overrides the configured provider
	runSeats    int    // simulated table size
)

// runCmd starts the live pipeline against the simulated table.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the decision pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if runProvider != "" {
			cfg.Provider = runProvider
		}
		if cmd.Flags().Changed("seats") {
			cfg.SimSeats = runSeats
		}

		pipeline, err := sched.Build(cfg)
		if err != nil {
			return fmt.Errorf("build pipeline: %w", err)
		}

		pipeline.Start()
		logrus.Infof("pipeline running with provider %q, Ctrl-C to stop", cfg.Provider)

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs

		logrus.Info("shutting down")
		if err := pipeline.Shutdown(); err != nil {
			logrus.Warnf("shutdown finished with errors: %v", err)
		}

		m := pipeline.Metrics().Snapshot()
		fmt.Printf("session: %d passes, %d decisions, %d failures\n", m.Iterations, m.Decisions, m.Failures)
		if m.Iterations > 0 {
			fmt.Printf("latency: avg %v, min %v, max %v\n", m.Avg, m.Min, m.Max)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runProvider, "provider", "", "Decision provider (openai, anthropic, local)")
	runCmd.Flags().IntVar(&runSeats, "seats", 6, "Seats at the simulated table")
	rootCmd.AddCommand(runCmd)
}
