package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clduab11/poker-helper/internal/history"
)

var historyLimit int

// historyCmd lists stored decisions and session stats.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show stored decisions and session stats",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.HistoryDB == "" {
			return fmt.Errorf("no history database configured")
		}

		store, err := history.NewStore(cfg.HistoryDB)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer store.Close()

		stats, err := store.Stats()
		if err != nil {
			return fmt.Errorf("read stats: %w", err)
		}
		fmt.Printf("%d decisions (%d cached, %d fallbacks), avg latency %v\n",
			stats.Decisions, stats.CacheHits, stats.Fallbacks, stats.AvgLatency)
		for action, count := range stats.ByAction {
			fmt.Printf("  %-7s %d\n", action, count)
		}

		recs, err := store.Recent(historyLimit)
		if err != nil {
			return fmt.Errorf("read decisions: %w", err)
		}
		if len(recs) > 0 {
			fmt.Println("\nmost recent:")
		}
		for _, r := range recs {
			flags := ""
			if r.Cached {
				flags += " cached"
			}
			if r.Fallback {
				flags += " fallback"
			}
			fmt.Printf("  %s  %-7s %.1f  conf %.2f  %s%s\n",
				r.CreatedAt.Local().Format("15:04:05"), r.Action, r.Amount, r.Confidence, r.Provider, flags)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of decisions to list")
	rootCmd.AddCommand(historyCmd)
}
