// Package handlers implements the CLI subcommands.
package handlers

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"xscout/internal/classify"
	"xscout/internal/config"
	"xscout/internal/core"
	"xscout/internal/digest"
	"xscout/internal/filter"
	"xscout/internal/history"
	"xscout/internal/llm"
	"xscout/internal/logger"
	"xscout/internal/pipeline"
	"xscout/internal/prompt"
	"xscout/internal/scoring"
	"xscout/internal/store"
	"xscout/internal/telegram"
	"xscout/internal/templates"
)

// NewProcessCmd creates the main digest command: classify, filter, score,
// rank, draft, and deliver one candidate batch.
func NewProcessCmd() *cobra.Command {
	processCmd := &cobra.Command{
		Use:   "process [candidates-file.json]",
		Short: "Process a candidate batch into a Telegram approval digest",
		Long: `Process a JSON batch of candidate tweets produced by the search job.

The batch flows through classification, the filter chain, scoring, ranking,
template assignment and reply drafting, then out as a chunked Telegram digest.
Selected posts are appended to the tracking log and the run is archived.

Examples:
  xscout process data/fire-patrol-candidates.json
  xscout process --preview data/brand-building-candidates.json
  xscout process --no-draft data/fire-patrol-candidates.json`,
		Args: cobra.ExactArgs(1),
		RunE: processRunFunc,
	}

	processCmd.Flags().Bool("preview", false, "Render the digest to the terminal instead of sending")
	processCmd.Flags().Bool("no-draft", false, "Skip the drafting call, digest without reply drafts")
	processCmd.Flags().IntP("top", "n", 0, "Override the review budget for this run")

	return processCmd
}

func processRunFunc(cmd *cobra.Command, args []string) error {
	preview, _ := cmd.Flags().GetBool("preview")
	noDraft, _ := cmd.Flags().GetBool("no-draft")
	topN, _ := cmd.Flags().GetInt("top")

	batch, err := loadBatch(args[0])
	if err != nil {
		return err
	}

	cfg := config.Get()
	if !preview {
		if err := cfg.ValidateForSend(); err != nil {
			return err
		}
	}

	var drafter llm.Drafter
	if !noDraft {
		if err := cfg.ValidateForDraft(); err != nil {
			return err
		}
		drafter, err = newDrafter(cfg)
		if err != nil {
			return err
		}
	}

	// A preview run delivers nothing, so it archives nothing either.
	var runs *store.Store
	if !preview {
		runs, err = store.NewStore(cfg.App.DataDir, cfg.App.PacksDir)
		if err != nil {
			return err
		}
		defer runs.Close()
	}

	if topN <= 0 {
		topN = cfg.Engagement.TopN
	}

	opts := pipeline.Options{
		Classifier:   classify.New(classify.DefaultConfig()),
		FilterCfg:    filterConfig(cfg),
		Scorer:       scoring.New(scoringConfig(cfg), time.Now),
		Assigner:     templates.New(templates.DefaultConfig(), templates.NewRand()),
		Prompter:     prompt.New(prompt.DefaultConfig(), time.Now),
		Formatter:    digest.New(time.Now),
		History:      history.NewStore(cfg.App.TrackingFile),
		Runs:         runs,
		Drafter:      drafter,
		TopN:         topN,
		ChunkLimit:   cfg.Telegram.MessageLimit,
		DraftTimeout: cfg.DraftTimeout(),
	}
	if !preview {
		opts.Sender = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.SendDelay(), cfg.SendTimeout())
	}

	result, err := pipeline.New(opts).Run(cmd.Context(), batch)
	if err != nil {
		return err
	}

	if preview {
		fmt.Println(digest.Preview(batch.Mode, result.Selected, result.Drafts, time.Now()))
	}

	logger.Info("run complete",
		"mode", batch.Mode,
		"collected", result.Record.Stats.Collected,
		"selected", result.Record.Stats.Selected,
		"sent", result.Sent)
	return nil
}

// loadBatch reads and decodes the input document. Both failure modes are
// fatal and name the path.
func loadBatch(path string) (core.Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.Batch{}, fmt.Errorf("failed to read candidates file %s: %w", path, err)
	}
	var batch core.Batch
	if err := json.Unmarshal(data, &batch); err != nil {
		return core.Batch{}, fmt.Errorf("failed to parse candidates file %s: %w", path, err)
	}
	if batch.Mode == "" {
		batch.Mode = "unknown"
	}
	return batch, nil
}

func newDrafter(cfg *config.Config) (llm.Drafter, error) {
	switch cfg.AI.Provider {
	case "openai":
		return llm.NewOpenAIClient(cfg.AI.OpenAI.APIKey, cfg.AI.OpenAI.Model, cfg.AI.OpenAI.BaseURL)
	default:
		return llm.NewClient(cfg.AI.Gemini.APIKey, cfg.AI.Gemini.Model)
	}
}

// filterConfig applies the configured thresholds over the built-in keyword
// sets.
func filterConfig(cfg *config.Config) filter.Config {
	fc := filter.DefaultConfig()
	fc.Cooldown = time.Duration(cfg.Engagement.CooldownHours) * time.Hour
	fc.MaxAge = time.Duration(cfg.Engagement.MaxAgeHours * float64(time.Hour))
	fc.MinLikesPain = cfg.Engagement.MinLikesPain
	fc.MinLikesDefault = cfg.Engagement.MinLikesDefault
	return fc
}

// scoringConfig applies configured caps and folds the watchlist into tier 2.
func scoringConfig(cfg *config.Config) scoring.Config {
	sc := scoring.DefaultConfig()
	sc.ScoreCap = cfg.Engagement.ScoreCap
	sc.RelevanceCap = cfg.Engagement.RelevanceCap
	for _, author := range cfg.Engagement.Watchlist {
		if _, ok := sc.TierMap[author]; !ok {
			sc.TierMap[author] = 2
		}
	}
	return sc
}
