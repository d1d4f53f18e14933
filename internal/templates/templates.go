// Package templates assigns each selected candidate a pair of reply-style
// templates: one safe, one punchy, always distinct. Assignment is rule-driven
// with the only randomness in the pipeline, isolated behind a seedable source.
package templates

import (
	"math/rand"
	"strings"
	"time"

	"xscout/internal/core"
)

// Rand is the single random-choice primitive the assigner uses. Production
// passes a time-seeded math/rand source; tests pass a fixed seed.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// NewRand returns a production random source.
func NewRand() Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Config holds the assignment business rules' keyword sets and weights.
type Config struct {
	// CompetitorNames trigger the competitor rule when mentioned in the text.
	CompetitorNames []string
	// PainLanguage marks complaint wording.
	PainLanguage []string
	// TopicalContext gates the product-mention template: template C is only
	// ever assigned when the text carries server/deploy/monitoring context.
	TopicalContext []string
	// BucketWeights are the default-rule draw weights, in bucket order.
	// They need not sum to 1; draws normalize.
	BucketWeights []float64
}

// DefaultConfig returns the production rule configuration.
func DefaultConfig() Config {
	return Config{
		CompetitorNames: []string{"vercel", "railway", "render", "heroku", "netlify", "fly.io"},
		PainLanguage: []string{
			"hate", "sucks", "broken", "frustrat", "tired of", "sick of",
			"nightmare", "painful", "annoying", "struggl", "fed up",
		},
		TopicalContext: []string{
			"server", "deploy", "hosting", "vps", "monitoring", "devops",
			"infrastructure", "uptime", "downtime", "prod",
		},
		BucketWeights: []float64{0.30, 0.25, 0.20, 0.15, 0.10},
	}
}

// defaultBuckets are the weighted pairs of the fallback rule, indexed in
// BucketWeights order. Substitutions for the C gate happen after the draw.
var defaultBuckets = []core.TemplatePair{
	{Safe: core.TemplatePureValue, Punchy: core.TemplateContrarian},
	{Safe: core.TemplateQuestion, Punchy: core.TemplatePureValue},
	{Safe: core.TemplateExperience, Punchy: core.TemplateContrarian},
	{Safe: core.TemplateUseCase, Punchy: core.TemplatePureValue},
	{Safe: core.TemplateQuestion, Punchy: core.TemplateUseCase},
}

// Assigner applies the template rules.
type Assigner struct {
	cfg Config
	rng Rand
}

// New builds an assigner with the given random source.
func New(cfg Config, rng Rand) *Assigner {
	return &Assigner{cfg: cfg, rng: rng}
}

// Assign picks the safe/punchy pair for one candidate. tier is the author's
// influence tier (1 highest, 0 uncurated). The returned pair is always
// distinct.
func (a *Assigner) Assign(rec core.CandidateRecord, tier int) core.TemplatePair {
	text := strings.ToLower(rec.Text)
	topical := containsAny(text, a.cfg.TopicalContext)

	var pair core.TemplatePair
	switch {
	case tier == 1:
		// Never pitch the product to a top-tier account.
		pair.Safe = core.TemplateQuestion
		if a.rng.Intn(2) == 0 {
			pair.Punchy = core.TemplatePureValue
		} else {
			pair.Punchy = core.TemplateContrarian
		}

	case containsAny(text, a.cfg.CompetitorNames):
		pair.Safe = core.TemplateQuestion
		if topical {
			pair.Punchy = core.TemplateUseCase
		} else {
			// Competitor named without any infra context: do not pitch an
			// irrelevant audience.
			pair.Punchy = core.TemplatePureValue
		}

	case containsAny(text, a.cfg.PainLanguage):
		if a.rng.Intn(2) == 0 {
			pair.Safe = core.TemplateExperience
			pair.Punchy = core.TemplateContrarian
		} else {
			pair.Safe = core.TemplateUseCase
			pair.Punchy = core.TemplateExperience
		}

	default:
		pair = defaultBuckets[a.drawBucket()]
		if !topical {
			// Same gate as the competitor rule, applied to either slot.
			if pair.Safe == core.TemplateUseCase {
				pair.Safe = core.TemplateExperience
			}
			if pair.Punchy == core.TemplateUseCase {
				pair.Punchy = core.TemplateContrarian
			}
		}
	}

	// Enforced last and unconditionally.
	if pair.Safe == pair.Punchy {
		pair.Punchy = a.randomOther(pair.Safe)
	}
	return pair
}

func (a *Assigner) drawBucket() int {
	total := 0.0
	for _, w := range a.cfg.BucketWeights {
		total += w
	}
	draw := a.rng.Float64() * total
	for i, w := range a.cfg.BucketWeights {
		draw -= w
		if draw < 0 {
			return i
		}
	}
	return len(a.cfg.BucketWeights) - 1
}

// randomOther picks uniformly among the four templates that are not exclude.
func (a *Assigner) randomOther(exclude core.Template) core.Template {
	others := make([]core.Template, 0, len(core.AllTemplates)-1)
	for _, t := range core.AllTemplates {
		if t != exclude {
			others = append(others, t)
		}
	}
	return others[a.rng.Intn(len(others))]
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
