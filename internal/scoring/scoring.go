// Package scoring computes the relevance score for classified candidates.
// The model is additive: engagement, freshness, reply bonus, influence tier,
// reply opportunity, topical relevance and a category bonus, with a hard gate
// capping topically irrelevant posts no matter how much engagement they have.
package scoring

import (
	"math"
	"strings"
	"time"

	"xscout/internal/core"
)

// Config holds every scoring constant. The shape of the algorithm is fixed;
// everything numeric or keyword-shaped lives here so tests can substitute
// fixtures.
type Config struct {
	// EngagementDivisor and EngagementCap bound the like-count component:
	// min(likes/divisor, cap) gives diminishing returns.
	EngagementDivisor float64
	EngagementCap     float64
	// FreshnessMax decays linearly to zero at FreshnessHorizon.
	FreshnessMax     float64
	FreshnessHorizon time.Duration
	// ReplyBonus rewards posts that are themselves replies (expertise signal).
	ReplyBonus float64
	// TierMap is the curated author→influence-tier mapping (1 highest).
	TierMap map[string]int
	// TierBonus indexes additive bonuses by tier (index 0 unused).
	TierBonus [4]float64
	// LikeBandHigh/Low and their bonuses apply when the author is not curated.
	LikeBandHigh      int
	LikeBandLow       int
	LikeBandHighBonus float64
	LikeBandLowBonus  float64
	// Reply-opportunity: uncontested conversations get a bonus, crowded
	// threads a penalty.
	LowReplyCount    int
	HighReplyCount   int
	LowReplyBonus    float64
	HighReplyPenalty float64
	// DirectKeywords are pain/ops vocabulary, IndirectKeywords broader infra
	// vocabulary. Matching neither closes the relevance gate.
	DirectKeywords   []string
	IndirectKeywords []string
	DirectBonus      float64
	IndirectBonus    float64
	// RelevanceCap is the total-score ceiling for gate-closed posts.
	RelevanceCap float64
	// CategoryBonus is the additive per-category component.
	CategoryBonus map[core.Category]float64
	// ScoreCap clamps the final score.
	ScoreCap float64
	// Priority thresholds.
	HotThreshold  float64
	GoodThreshold float64
}

// DefaultConfig returns the production scoring constants.
func DefaultConfig() Config {
	return Config{
		EngagementDivisor: 20,
		EngagementCap:     3,
		FreshnessMax:      2,
		FreshnessHorizon:  72 * time.Hour,
		ReplyBonus:        1,
		TierMap: map[string]int{
			"levelsio":        1,
			"kelseyhightower": 1,
			"copyconstruct":   1,
			"rakyll":          2,
			"jezhumble":       2,
			"allspaw":         2,
			"tdinh_me":        2,
			"marclouvier":     3,
			"yaboroda":        3,
			"danielfosworthy": 3,
		},
		TierBonus:         [4]float64{0, 1.5, 1.0, 0.5},
		LikeBandHigh:      100,
		LikeBandLow:       30,
		LikeBandHighBonus: 0.5,
		LikeBandLowBonus:  0.25,
		LowReplyCount:     5,
		HighReplyCount:    50,
		LowReplyBonus:     0.5,
		HighReplyPenalty:  0.5,
		DirectKeywords: []string{
			"crash", "down", "outage", "incident", "alert", "on-call",
			"pager", "rollback", "downtime", "502", "nginx",
			"deployment failed", "deploy failed", "3am",
		},
		IndirectKeywords: []string{
			"server", "vps", "hosting", "deploy", "devops", "infrastructure",
			"docker", "kubernetes", "ci/cd", "monitoring", "backend", "prod",
		},
		DirectBonus:   1.0,
		IndirectBonus: 0.4,
		RelevanceCap:  1.5,
		CategoryBonus: map[core.Category]float64{
			core.CategoryPainPoint:  1.5,
			core.CategoryAudience:   1.0,
			core.CategoryCompetitor: 0.5,
			core.CategoryMonitoring: 0,
		},
		ScoreCap:      5,
		HotThreshold:  3.5,
		GoodThreshold: 2.0,
	}
}

// Scorer computes relevance scores.
type Scorer struct {
	cfg Config
	now func() time.Time
}

// New builds a scorer. The now function is injectable for tests.
func New(cfg Config, now func() time.Time) *Scorer {
	return &Scorer{cfg: cfg, now: now}
}

// Tier returns the curated influence tier for an author, or 0.
func (s *Scorer) Tier(username string) int {
	return s.cfg.TierMap[strings.ToLower(username)]
}

// Score computes the final rounded score for one classified candidate.
func (s *Scorer) Score(rec core.CandidateRecord, cat core.Category) float64 {
	text := strings.ToLower(rec.Text)

	direct := containsAny(text, s.cfg.DirectKeywords)
	indirect := containsAny(text, s.cfg.IndirectKeywords)
	gateOpen := direct || indirect

	score := math.Min(float64(rec.LikeCount)/s.cfg.EngagementDivisor, s.cfg.EngagementCap)

	ageHours := rec.AgeHours(s.now())
	horizon := s.cfg.FreshnessHorizon.Hours()
	freshness := math.Max(s.cfg.FreshnessMax-ageHours*s.cfg.FreshnessMax/horizon, 0)
	if !gateOpen {
		// Irrelevant posts do not get to ride freshness either.
		freshness /= 2
	}
	score += freshness

	if rec.IsReply() {
		score += s.cfg.ReplyBonus
	}

	if tier := s.Tier(rec.Author.Username); tier >= 1 && tier <= 3 {
		score += s.cfg.TierBonus[tier]
	} else if rec.LikeCount >= s.cfg.LikeBandHigh {
		score += s.cfg.LikeBandHighBonus
	} else if rec.LikeCount >= s.cfg.LikeBandLow {
		score += s.cfg.LikeBandLowBonus
	}

	if rec.ReplyCount < s.cfg.LowReplyCount {
		score += s.cfg.LowReplyBonus
	} else if rec.ReplyCount > s.cfg.HighReplyCount {
		score -= s.cfg.HighReplyPenalty
	}

	switch {
	case direct:
		score += s.cfg.DirectBonus
	case indirect:
		score += s.cfg.IndirectBonus
	}

	score += s.cfg.CategoryBonus[cat]

	if !gateOpen && score > s.cfg.RelevanceCap {
		score = s.cfg.RelevanceCap
	}
	if score > s.cfg.ScoreCap {
		score = s.cfg.ScoreCap
	}
	if score < 0 {
		score = 0
	}

	return math.Round(score*100) / 100
}

// Priority derives the coarse tier label from a score.
func (s *Scorer) Priority(score float64) core.Priority {
	switch {
	case score >= s.cfg.HotThreshold:
		return core.PriorityHot
	case score >= s.cfg.GoodThreshold:
		return core.PriorityGood
	default:
		return core.PriorityMonitoring
	}
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
