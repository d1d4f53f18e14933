package handlers

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"xscout/internal/config"
	"xscout/internal/digest"
	"xscout/internal/history"
	"xscout/internal/report"
	"xscout/internal/store"
	"xscout/internal/telegram"
)

// NewReportCmd creates the weekly analytics command.
func NewReportCmd() *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize recent runs and tracking activity",
		Long: `Build a weekly activity report from the run archive and the tracking log:
run counts, funnel totals, category breakdown and most-selected authors.

Examples:
  xscout report
  xscout report --days 14
  xscout report --send`,
		RunE: reportRunFunc,
	}

	reportCmd.Flags().Int("days", 7, "Window of runs to aggregate")
	reportCmd.Flags().Bool("send", false, "Deliver the report to Telegram instead of printing it")

	return reportCmd
}

func reportRunFunc(cmd *cobra.Command, args []string) error {
	days, _ := cmd.Flags().GetInt("days")
	send, _ := cmd.Flags().GetBool("send")

	cfg := config.Get()
	if send {
		if err := cfg.ValidateForSend(); err != nil {
			return err
		}
	}

	runs, err := store.NewStore(cfg.App.DataDir, cfg.App.PacksDir)
	if err != nil {
		return err
	}
	defer runs.Close()

	records, err := runs.ListRuns(days)
	if err != nil {
		return err
	}

	replied, skipped, err := history.NewStore(cfg.App.TrackingFile).Counts()
	if err != nil {
		return fmt.Errorf("failed to read tracking log: %w", err)
	}

	weekly := report.BuildWeekly(records, replied, skipped, time.Now())

	if send {
		client := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.SendDelay(), cfg.SendTimeout())
		chunks := digest.Chunk(weekly.FormatHTML(), cfg.Telegram.MessageLimit)
		return client.Send(cmd.Context(), chunks)
	}

	fmt.Println(weekly.Format())
	return nil
}
