// Package pipeline runs one classify-filter-score-rank-draft-deliver pass
// over a candidate batch.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"xscout/internal/classify"
	"xscout/internal/core"
	"xscout/internal/digest"
	"xscout/internal/filter"
	"xscout/internal/history"
	"xscout/internal/llm"
	"xscout/internal/logger"
	"xscout/internal/prompt"
	"xscout/internal/rank"
	"xscout/internal/scoring"
	"xscout/internal/store"
	"xscout/internal/templates"
)

// Options assembles a pipeline. Drafter and Sender are the two external
// collaborators; either may be nil, which skips drafting or delivery. A run
// without delivery also skips persistence, so a dry run never marks a post
// as handled.
type Options struct {
	Classifier *classify.Classifier
	FilterCfg  filter.Config
	Scorer     *scoring.Scorer
	Assigner   *templates.Assigner
	Prompter   *prompt.Builder
	Formatter  *digest.Formatter
	History    *history.Store
	Runs       *store.Store // nil skips the run archive
	Drafter    llm.Drafter
	Sender     interface {
		Send(ctx context.Context, chunks []string) error
	}

	TopN         int
	ChunkLimit   int
	DraftTimeout time.Duration
	Now          func() time.Time
}

// Result is what one run produced, for callers that render previews or
// reports on top of the pipeline.
type Result struct {
	Record   core.RunRecord
	Selected []core.AnnotatedCandidate
	Drafts   map[string]core.ReplyDraftSet
	Digest   string
	Sent     bool
}

// Pipeline executes runs. It owns no state between runs; history and the run
// archive are external resources read and written per run.
type Pipeline struct {
	opts Options
}

// New builds a pipeline. Missing Now defaults to wall-clock time.
func New(opts Options) *Pipeline {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TopN <= 0 {
		opts.TopN = 5
	}
	if opts.ChunkLimit <= 0 {
		opts.ChunkLimit = 4000
	}
	return &Pipeline{opts: opts}
}

// Run processes one batch end to end. Drafting failures are recoverable and
// leave drafts absent; a transport failure aborts the run from that point.
func (p *Pipeline) Run(ctx context.Context, batch core.Batch) (*Result, error) {
	log := logger.Get()
	now := p.opts.Now

	// An empty batch means the search job found nothing; there is no digest
	// to deliver and nothing worth recording.
	if len(batch.Candidates) == 0 {
		log.Info("no candidates in batch, nothing to do", "mode", batch.Mode)
		return &Result{Record: p.buildRecord(batch.Mode, core.RunStats{}, nil, nil)}, nil
	}

	state, err := p.opts.History.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	log.Info("history loaded", "replied", len(state.SeenIDs))

	categories := make([]core.Category, len(batch.Candidates))
	for i, rec := range batch.Candidates {
		categories[i] = p.opts.Classifier.Classify(rec)
	}

	chain := filter.NewChain(p.opts.FilterCfg, state, now)
	passed, skipped, skipIDs := chain.Run(batch.Candidates, categories)
	log.Info("filtered", "collected", len(batch.Candidates), "passed", len(passed))

	stats := core.RunStats{
		Collected: len(batch.Candidates),
		Passed:    len(passed),
		Skipped:   skipped,
	}

	if len(passed) == 0 {
		return p.finishEmpty(ctx, batch.Mode, stats, skipIDs)
	}

	scored := make([]core.ScoredCandidate, 0, len(passed))
	for _, idx := range passed {
		rec := batch.Candidates[idx]
		score := p.opts.Scorer.Score(rec, categories[idx])
		scored = append(scored, core.ScoredCandidate{
			CandidateRecord: rec,
			Category:        categories[idx],
			Score:           score,
			Priority:        p.opts.Scorer.Priority(score),
		})
	}

	selected := rank.Select(scored, p.opts.TopN)
	stats.Selected = len(selected)

	annotated := make([]core.AnnotatedCandidate, len(selected))
	for i, sc := range selected {
		annotated[i] = core.AnnotatedCandidate{
			ScoredCandidate: sc,
			Templates:       p.opts.Assigner.Assign(sc.CandidateRecord, p.opts.Scorer.Tier(sc.Author.Username)),
			InfluenceTier:   p.opts.Scorer.Tier(sc.Author.Username),
		}
	}

	drafts := p.draft(ctx, annotated)

	doc := p.opts.Formatter.Format(batch.Mode, annotated, drafts)
	chunks := digest.Chunk(doc, p.opts.ChunkLimit)

	sent := false
	if p.opts.Sender != nil {
		if err := p.opts.Sender.Send(ctx, chunks); err != nil {
			return nil, fmt.Errorf("failed to deliver digest: %w", err)
		}
		sent = true
		log.Info("digest delivered", "chunks", len(chunks))
	}

	record := p.buildRecord(batch.Mode, stats, annotated, drafts)
	if sent {
		if err := p.persist(&record, annotated, skipIDs); err != nil {
			return nil, err
		}
	}

	return &Result{
		Record:   record,
		Selected: annotated,
		Drafts:   drafts,
		Digest:   doc,
		Sent:     sent,
	}, nil
}

// draft calls the drafting collaborator and parses its output. Any failure
// here is recoverable: the digest renders without drafts.
func (p *Pipeline) draft(ctx context.Context, annotated []core.AnnotatedCandidate) map[string]core.ReplyDraftSet {
	log := logger.Get()
	if p.opts.Drafter == nil {
		return nil
	}

	dctx := ctx
	if p.opts.DraftTimeout > 0 {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(ctx, p.opts.DraftTimeout)
		defer cancel()
	}

	raw, err := p.opts.Drafter.Draft(dctx, p.opts.Prompter.Build(annotated))
	if err != nil {
		logger.Warn("drafting failed, continuing without drafts", "error", err)
		return nil
	}
	parsed, err := llm.ParseDrafts(raw)
	if err != nil {
		logger.Warn("draft output unparsable, continuing without drafts", "error", err)
		return nil
	}
	log.Info("drafts generated", "count", len(parsed))
	return llm.MatchDrafts(parsed)
}

// finishEmpty handles a batch that was fully filtered out: the notice is
// delivered so the operator knows the run happened, then the run is archived.
func (p *Pipeline) finishEmpty(ctx context.Context, mode string, stats core.RunStats, skipIDs map[string]string) (*Result, error) {
	log := logger.Get()
	log.Info("no candidates survived filtering", "collected", stats.Collected)

	notice := p.opts.Formatter.FormatEmpty(mode, stats.Collected, stats.Skipped)
	sent := false
	if p.opts.Sender != nil {
		if err := p.opts.Sender.Send(ctx, []string{notice}); err != nil {
			return nil, fmt.Errorf("failed to deliver notice: %w", err)
		}
		sent = true
	}

	record := p.buildRecord(mode, stats, nil, nil)
	if sent {
		if err := p.persist(&record, nil, skipIDs); err != nil {
			return nil, err
		}
	}
	return &Result{Record: record, Digest: notice, Sent: sent}, nil
}

func (p *Pipeline) buildRecord(mode string, stats core.RunStats, annotated []core.AnnotatedCandidate, drafts map[string]core.ReplyDraftSet) core.RunRecord {
	summaries := make([]core.SelectionSummary, len(annotated))
	for i, c := range annotated {
		var draft *core.ReplyDraftSet
		if d, ok := drafts[c.ID]; ok {
			dd := d
			draft = &dd
		}
		summaries[i] = core.SelectionSummary{
			ID:        c.ID,
			Author:    c.Author.Username,
			Text:      core.Truncate(c.Text, 200),
			Category:  c.Category,
			Score:     c.Score,
			Priority:  c.Priority,
			Tier:      c.InfluenceTier,
			Templates: c.Templates,
			Likes:     c.LikeCount,
			Replies:   c.ReplyCount,
			URL:       c.URL(),
			Draft:     draft,
		}
	}
	return core.RunRecord{
		Timestamp:  p.opts.Now(),
		Mode:       mode,
		Stats:      stats,
		Candidates: summaries,
	}
}

// persist appends the run's decisions to the history log and archives the
// run. Only delivered runs reach here: an unsent candidate must stay eligible
// for the next run.
func (p *Pipeline) persist(record *core.RunRecord, annotated []core.AnnotatedCandidate, skipIDs map[string]string) error {
	if len(annotated) > 0 {
		entries := make([]history.Entry, len(annotated))
		for i, c := range annotated {
			entries[i] = history.Entry{
				PostID:    c.ID,
				Author:    c.Author.Username,
				Category:  c.Category,
				RepliedAt: p.opts.Now(),
			}
		}
		if err := p.opts.History.Append(entries); err != nil {
			return fmt.Errorf("failed to append history: %w", err)
		}
	}
	if err := p.opts.History.AppendSkipped(skipIDs); err != nil {
		return fmt.Errorf("failed to append skip log: %w", err)
	}

	if p.opts.Runs != nil {
		saved, err := p.opts.Runs.SaveRun(*record)
		if err != nil {
			return fmt.Errorf("failed to archive run: %w", err)
		}
		*record = saved
		if _, err := p.opts.Runs.WriteArtifact(saved); err != nil {
			return fmt.Errorf("failed to write run artifact: %w", err)
		}
	}
	return nil
}
