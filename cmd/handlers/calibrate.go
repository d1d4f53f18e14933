package handlers

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"xscout/internal/classify"
	"xscout/internal/config"
	"xscout/internal/core"
	"xscout/internal/filter"
	"xscout/internal/history"
	"xscout/internal/report"
)

// NewCalibrateCmd creates the filter-calibration command. It runs the batch
// through classification and the filter chain without sending or persisting
// anything, so thresholds can be tuned against live search output.
func NewCalibrateCmd() *cobra.Command {
	calibrateCmd := &cobra.Command{
		Use:   "calibrate [candidates-file.json]",
		Short: "Analyze a raw candidate batch against the current filters",
		Long: `Dry-run a candidate batch through classification and the filter chain
and print engagement, freshness and skip-reason statistics. Nothing is sent,
drafted or written.

Examples:
  xscout calibrate data/raw-search-results.json
  xscout calibrate --no-history data/raw-search-results.json`,
		Args: cobra.ExactArgs(1),
		RunE: calibrateRunFunc,
	}

	calibrateCmd.Flags().Bool("no-history", false, "Ignore the tracking log (no dedup or cooldown skips)")

	return calibrateCmd
}

func calibrateRunFunc(cmd *cobra.Command, args []string) error {
	noHistory, _ := cmd.Flags().GetBool("no-history")

	batch, err := loadBatch(args[0])
	if err != nil {
		return err
	}

	cfg := config.Get()

	state := &history.State{}
	if !noHistory {
		state, err = history.NewStore(cfg.App.TrackingFile).Load()
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
	}

	classifier := classify.New(classify.DefaultConfig())
	chain := filter.NewChain(filterConfig(cfg), state, time.Now)

	categories := make([]core.Category, len(batch.Candidates))
	skipReasons := make([]string, len(batch.Candidates))
	for i, rec := range batch.Candidates {
		categories[i] = classifier.Classify(rec)
		skipReasons[i] = chain.Apply(rec, categories[i]).Reason
	}

	stats := report.Calibrate(batch.Candidates, categories, skipReasons, time.Now())
	fmt.Println(stats.Format(fmt.Sprintf("%s (%s)", args[0], batch.Mode)))
	return nil
}
