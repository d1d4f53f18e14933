package filter

import (
	"testing"
	"time"

	"xscout/internal/core"
	"xscout/internal/history"
)

var testNow = time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)

func now() time.Time { return testNow }

func candidate(id, text, username string, likes int, ageHours float64) core.CandidateRecord {
	return core.CandidateRecord{
		ID:        id,
		Text:      text,
		Author:    core.Author{Username: username},
		LikeCount: likes,
		CreatedAt: testNow.Add(-time.Duration(ageHours * float64(time.Hour))).Format(time.RFC3339),
	}
}

func emptyState() *history.State {
	return &history.State{
		SeenIDs:          make(map[string]bool),
		AuthorLastAction: make(map[string]time.Time),
	}
}

// passing is a record that clears every predicate with defaults.
func passing() core.CandidateRecord {
	return candidate("100", "my server is down and i have no idea why", "maker", 10, 5)
}

func TestChainPassesCleanRecord(t *testing.T) {
	chain := NewChain(DefaultConfig(), emptyState(), now)
	res := chain.Apply(passing(), core.CategoryPainPoint)
	if res.Skip {
		t.Fatalf("clean record skipped with reason %q", res.Reason)
	}
}

func TestChainSingleReasonInOrder(t *testing.T) {
	state := emptyState()
	state.SeenIDs["100"] = true

	// This record fails already_replied, low_engagement and too_old at once.
	rec := candidate("100", "my server is down", "maker", 0, 500)

	chain := NewChain(DefaultConfig(), state, now)
	res := chain.Apply(rec, core.CategoryPainPoint)
	if !res.Skip {
		t.Fatal("expected skip")
	}
	if res.Reason != ReasonAlreadyReplied {
		t.Errorf("reason = %q, want first failing predicate %q", res.Reason, ReasonAlreadyReplied)
	}
}

func TestAuthorCooldownWindow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cooldown = 96 * time.Hour

	state := emptyState()
	state.AuthorLastAction["maker"] = testNow.Add(-2 * 24 * time.Hour)

	chain := NewChain(cfg, state, now)
	res := chain.Apply(passing(), core.CategoryPainPoint)
	if res.Reason != ReasonAuthorCooldown {
		t.Errorf("2 days since last action: reason = %q, want %q", res.Reason, ReasonAuthorCooldown)
	}

	state.AuthorLastAction["maker"] = testNow.Add(-5 * 24 * time.Hour)
	res = chain.Apply(passing(), core.CategoryPainPoint)
	if res.Reason == ReasonAuthorCooldown {
		t.Error("5 days since last action must clear a 4-day cooldown")
	}
}

func TestBotDetection(t *testing.T) {
	chain := NewChain(DefaultConfig(), emptyState(), now)
	rec := passing()
	rec.Author.Username = "uptime_bot"
	if res := chain.Apply(rec, core.CategoryPainPoint); res.Reason != ReasonBot {
		t.Errorf("reason = %q, want %q", res.Reason, ReasonBot)
	}
}

func TestNotEnglish(t *testing.T) {
	chain := NewChain(DefaultConfig(), emptyState(), now)
	rec := passing()
	rec.Text = "сервер снова упал посреди ночи и я не знаю почему"
	if res := chain.Apply(rec, core.CategoryPainPoint); res.Reason != ReasonNotEnglish {
		t.Errorf("reason = %q, want %q", res.Reason, ReasonNotEnglish)
	}
}

func TestPromoDetection(t *testing.T) {
	chain := NewChain(DefaultConfig(), emptyState(), now)
	rec := passing()
	rec.Text = "My server course is live, sign up now and get started for just $9"
	if res := chain.Apply(rec, core.CategoryPainPoint); res.Reason != ReasonPromo {
		t.Errorf("reason = %q, want %q", res.Reason, ReasonPromo)
	}
}

func TestCashtagNoise(t *testing.T) {
	chain := NewChain(DefaultConfig(), emptyState(), now)

	rec := passing()
	rec.Text = "this is the next big thing, $PUMP to the moon with my server"
	if res := chain.Apply(rec, core.CategoryPainPoint); res.Reason != ReasonNoise {
		t.Errorf("cashtag not flagged: reason = %q", res.Reason)
	}

	rec.Text = "moved my server off $AWS and the bill is down by half"
	if res := chain.Apply(rec, core.CategoryPainPoint); res.Skip {
		t.Errorf("allowlisted cashtag skipped with reason %q", res.Reason)
	}
}

func TestCompetitorHandleExactMatch(t *testing.T) {
	chain := NewChain(DefaultConfig(), emptyState(), now)

	rec := passing()
	rec.Author.Username = "Vercel"
	if res := chain.Apply(rec, core.CategoryPainPoint); res.Reason != ReasonCompetitor {
		t.Errorf("reason = %q, want %q", res.Reason, ReasonCompetitor)
	}

	rec.Author.Username = "vercel_fan"
	if res := chain.Apply(rec, core.CategoryPainPoint); res.Reason == ReasonCompetitor {
		t.Error("competitor match must be exact, not substring")
	}
}

func TestLowEngagementThresholdPerCategory(t *testing.T) {
	chain := NewChain(DefaultConfig(), emptyState(), now)

	rec := passing()
	rec.LikeCount = 4

	if res := chain.Apply(rec, core.CategoryPainPoint); res.Skip {
		t.Errorf("pain point with 4 likes skipped: %q (floor is 3)", res.Reason)
	}
	if res := chain.Apply(rec, core.CategoryAudience); res.Reason != ReasonLowEngagement {
		t.Errorf("audience with 4 likes: reason = %q, want %q (floor is 5)", res.Reason, ReasonLowEngagement)
	}
}

func TestTooOld(t *testing.T) {
	chain := NewChain(DefaultConfig(), emptyState(), now)
	rec := candidate("1", "my server is down and i have no idea why", "maker", 10, 80)
	if res := chain.Apply(rec, core.CategoryPainPoint); res.Reason != ReasonTooOld {
		t.Errorf("reason = %q, want %q", res.Reason, ReasonTooOld)
	}
}

func TestUnparsableDateCountsAsTooOld(t *testing.T) {
	chain := NewChain(DefaultConfig(), emptyState(), now)
	rec := passing()
	rec.CreatedAt = "not-a-date"
	if res := chain.Apply(rec, core.CategoryPainPoint); res.Reason != ReasonTooOld {
		t.Errorf("reason = %q, want %q", res.Reason, ReasonTooOld)
	}
}

func TestRunHistogram(t *testing.T) {
	state := emptyState()
	state.SeenIDs["1"] = true

	records := []core.CandidateRecord{
		candidate("1", "my server is down and i have no idea why", "a", 10, 5),  // already_replied
		candidate("2", "my server is down and i have no idea why", "b", 0, 5),   // low_engagement
		candidate("3", "my server is down and i have no idea why", "c", 10, 90), // too_old
		candidate("4", "my server is down and i have no idea why", "d", 10, 5),  // passes
		candidate("5", "my server is down and i have no idea why", "e", 10, 5),  // passes
	}
	categories := make([]core.Category, len(records))
	for i := range categories {
		categories[i] = core.CategoryPainPoint
	}

	chain := NewChain(DefaultConfig(), state, now)
	passed, hist, reasons := chain.Run(records, categories)

	if len(passed) != 2 {
		t.Fatalf("passed = %d, want 2", len(passed))
	}
	if records[passed[0]].ID != "4" || records[passed[1]].ID != "5" {
		t.Errorf("survivors out of input order: %v", passed)
	}

	total := 0
	for _, n := range hist {
		total += n
	}
	if total != 3 {
		t.Errorf("histogram sum = %d, want 3", total)
	}
	if hist[ReasonAlreadyReplied] != 1 || hist[ReasonLowEngagement] != 1 || hist[ReasonTooOld] != 1 {
		t.Errorf("unexpected histogram: %v", hist)
	}
	if reasons["1"] != ReasonAlreadyReplied || reasons["2"] != ReasonLowEngagement || reasons["3"] != ReasonTooOld {
		t.Errorf("unexpected per-id reasons: %v", reasons)
	}
	if _, ok := reasons["4"]; ok {
		t.Error("survivor must carry no skip reason")
	}
}

func TestIsEnglishShortText(t *testing.T) {
	// Eight tokens or fewer with at least two function words passes even
	// below the ratio bar.
	if !isEnglish("is it down", 0.7, 0.15) {
		t.Error("short English text rejected")
	}
	if isEnglish("", 0.7, 0.15) {
		t.Error("empty text accepted")
	}
}
