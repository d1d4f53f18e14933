// Package classify assigns each candidate post to a topical category using
// ordered keyword rules. Classification is a pure function of the post text,
// author handle and reply status; the first matching rule wins.
package classify

import (
	"strings"

	"xscout/internal/core"
)

// Config holds the keyword sets the rules match against. All matching is
// case-insensitive substring matching on the post text.
type Config struct {
	// Authorities are accounts whose reply threads are treated as pain-point
	// conversations regardless of wording.
	Authorities []string
	// AudienceKeywords signal the target audience (indie/solo/learning-to-
	// deploy). Checked before pain keywords: "afraid to deploy" is an
	// audience signal, not a generic pain point.
	AudienceKeywords []string
	// PainKeywords signal production incidents and ops pain.
	PainKeywords []string
	// CompetitorKeywords name competing products or complain about their
	// pricing/complexity.
	CompetitorKeywords []string
}

// DefaultConfig returns the keyword sets tuned against live search output.
func DefaultConfig() Config {
	return Config{
		Authorities: []string{
			"theconfigguy", "fluxdiv", "kelseyhightower", "rakyll",
			"copyconstruct", "jezhumble", "allspaw",
		},
		AudienceKeywords: []string{
			"indie", "solo", "founder", "vibe", "learn", "first", "deploy",
			"afraid", "anxious", "scared", "zero cs", "zero degree",
			"master electrician",
		},
		PainKeywords: []string{
			"crash", "down", "incident", "alert", "failed", "error", "nginx",
			"502", "deployment failed", "rollback", "3am", "on-call", "pager",
		},
		CompetitorKeywords: []string{
			"vercel", "railway", "render", "heroku", "expensive", "pricing",
			"too complex", "overkill",
		},
	}
}

// rule is one step of the precedence chain.
type rule struct {
	category core.Category
	matches  func(text, author string, isReply bool) bool
}

// Classifier assigns categories via an ordered rule list.
type Classifier struct {
	rules []rule
}

// New builds a classifier from the given keyword configuration.
func New(cfg Config) *Classifier {
	authorities := lowerAll(cfg.Authorities)
	audience := lowerAll(cfg.AudienceKeywords)
	pain := lowerAll(cfg.PainKeywords)
	competitor := lowerAll(cfg.CompetitorKeywords)

	return &Classifier{rules: []rule{
		{core.CategoryPainPoint, func(text, author string, isReply bool) bool {
			if !isReply {
				return false
			}
			for _, a := range authorities {
				if strings.Contains(text, a) || author == a {
					return true
				}
			}
			return false
		}},
		{core.CategoryAudience, func(text, _ string, _ bool) bool {
			return containsAny(text, audience)
		}},
		{core.CategoryPainPoint, func(text, _ string, _ bool) bool {
			return containsAny(text, pain)
		}},
		{core.CategoryCompetitor, func(text, _ string, _ bool) bool {
			return containsAny(text, competitor)
		}},
	}}
}

// Classify returns the category for a candidate. Never errors: anything no
// rule claims falls through to monitoring.
func (c *Classifier) Classify(record core.CandidateRecord) core.Category {
	text := strings.ToLower(record.Text)
	author := strings.ToLower(record.Author.Username)

	for _, r := range c.rules {
		if r.matches(text, author, record.IsReply()) {
			return r.category
		}
	}
	return core.CategoryMonitoring
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
