package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clduab11/poker-helper/internal/replay"
)

// replayCmd re-runs a recorded hand through the decision pipeline.
var replayCmd = &cobra.Command{
	Use:   "replay <fixture.json>",
	Short: "Replay a recorded hand fixture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		fixture, err := replay.LoadFixture(args[0])
		if err != nil {
			return err
		}

		summary, err := replay.NewRunner(cfg, os.Stdout).Run(cmd.Context(), fixture)
		if err != nil {
			return fmt.Errorf("replay: %w", err)
		}
		fmt.Printf("\n%d frames, %d decisions in %v\n", summary.Frames, summary.Decisions, summary.Elapsed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
}
