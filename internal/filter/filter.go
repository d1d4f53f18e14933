// Package filter implements the skip chain applied to every classified
// candidate: an ordered list of predicates where the first failure determines
// the single reported skip reason.
package filter

import (
	"regexp"
	"strings"
	"time"

	"xscout/internal/core"
	"xscout/internal/history"
)

// Skip reasons, in chain order.
const (
	ReasonAlreadyReplied = "already_replied"
	ReasonAuthorCooldown = "author_cooldown"
	ReasonBot            = "is_bot"
	ReasonNotEnglish     = "not_english"
	ReasonPromo          = "is_promo"
	ReasonNoise          = "is_noise"
	ReasonCompetitor     = "is_competitor"
	ReasonLowEngagement  = "low_engagement"
	ReasonTooOld         = "too_old"
)

// Config holds every knob of the chain. Substitute a fixture in tests.
type Config struct {
	// Cooldown is the minimum gap between two surfaced posts by one author.
	Cooldown time.Duration
	// BotIndicators are substrings of the author name or handle that mark
	// automated accounts.
	BotIndicators []string
	// PromoKeywords mark sales language.
	PromoKeywords []string
	// NoiseKeywords mark off-topic domains (financial speculation, adult
	// content, unrelated regional news).
	NoiseKeywords []string
	// CashtagAllow lists technical abbreviations that look like cashtags but
	// are not ($HTTP does not exist, but keep the list configurable).
	CashtagAllow []string
	// CompetitorHandles are author handles never worth replying to.
	CompetitorHandles []string
	// MinLikesPain and MinLikesDefault are the category-dependent
	// engagement floors.
	MinLikesPain    int
	MinLikesDefault int
	// MaxAge drops posts older than this window.
	MaxAge time.Duration
	// ASCIIRatio and FuncWordRatio drive the English heuristic.
	ASCIIRatio    float64
	FuncWordRatio float64
}

// DefaultConfig returns the chain configuration tuned against live search
// output.
func DefaultConfig() Config {
	return Config{
		Cooldown: 96 * time.Hour,
		BotIndicators: []string{
			"bot", "automated", "automatic", "script", "crawl", "scraper",
		},
		PromoKeywords: []string{
			"buy now", "click here", "sign up", "get started", "limited offer",
			"promo code", "coupon", "discount", "save now",
		},
		NoiseKeywords: []string{
			"ransomware", "crypto", "bitcoin", "ethereum", "nft", "trading bot", "trading signal",
			"interior design", "gym", "fitness", "real estate", "property",
			"onlyfans", "adult", "porn",
			"indian railway", "railway station", "bank failure", "upi transaction", "indusind",
			"victim incident response", "law enforcement", "regulatory scrutiny", "cointelegraph",
		},
		CashtagAllow:      []string{"AWS", "GCP", "API", "SQL", "DNS", "TLS", "HTTP", "JSON"},
		CompetitorHandles: []string{"railway", "vercel", "render", "heroku", "netlify", "fly.io"},
		MinLikesPain:      3,
		MinLikesDefault:   5,
		MaxAge:            72 * time.Hour,
		ASCIIRatio:        0.7,
		FuncWordRatio:     0.15,
	}
}

// Result reports a single chain decision.
type Result struct {
	Skip   bool
	Reason string
}

// predicate returns a non-empty reason when the record must be skipped.
type predicate func(rec core.CandidateRecord, cat core.Category) string

// Chain evaluates predicates in fixed order with short-circuit semantics.
type Chain struct {
	cfg   Config
	state *history.State
	now   func() time.Time
	preds []predicate

	cashtagRe *regexp.Regexp
}

// NewChain builds the chain against a loaded history state. The now function
// is injectable for tests.
func NewChain(cfg Config, state *history.State, now func() time.Time) *Chain {
	c := &Chain{
		cfg:       cfg,
		state:     state,
		now:       now,
		cashtagRe: regexp.MustCompile(`\$([A-Z]{3,5})\b`),
	}
	c.preds = []predicate{
		c.alreadySeen,
		c.authorCooldown,
		c.isBot,
		c.notEnglish,
		c.isPromo,
		c.isNoise,
		c.isCompetitorAuthor,
		c.lowEngagement,
		c.tooOld,
	}
	return c
}

// Apply runs the chain for one record. At most one reason is ever reported:
// the first predicate that fails.
func (c *Chain) Apply(rec core.CandidateRecord, cat core.Category) Result {
	for _, p := range c.preds {
		if reason := p(rec, cat); reason != "" {
			return Result{Skip: true, Reason: reason}
		}
	}
	return Result{}
}

// Run applies the chain to a classified batch, returning survivors in input
// order, the count-by-reason histogram, and the per-ID skip reasons.
func (c *Chain) Run(records []core.CandidateRecord, categories []core.Category) ([]int, map[string]int, map[string]string) {
	var passed []int
	histogram := make(map[string]int)
	reasons := make(map[string]string)
	for i, rec := range records {
		res := c.Apply(rec, categories[i])
		if res.Skip {
			histogram[res.Reason]++
			reasons[rec.ID] = res.Reason
			continue
		}
		passed = append(passed, i)
	}
	return passed, histogram, reasons
}

func (c *Chain) alreadySeen(rec core.CandidateRecord, _ core.Category) string {
	if c.state.Seen(rec.ID) {
		return ReasonAlreadyReplied
	}
	return ""
}

// Cooldown is per-author and checked before any content filter: repeat
// authors never reach keyword analysis.
func (c *Chain) authorCooldown(rec core.CandidateRecord, _ core.Category) string {
	last, ok := c.state.LastAction(rec.Author.Username)
	if ok && c.now().Sub(last) < c.cfg.Cooldown {
		return ReasonAuthorCooldown
	}
	return ""
}

func (c *Chain) isBot(rec core.CandidateRecord, _ core.Category) string {
	name := strings.ToLower(rec.Author.Name)
	username := strings.ToLower(rec.Author.Username)
	for _, k := range c.cfg.BotIndicators {
		if strings.Contains(name, k) || strings.Contains(username, k) {
			return ReasonBot
		}
	}
	return ""
}

func (c *Chain) notEnglish(rec core.CandidateRecord, _ core.Category) string {
	if !isEnglish(rec.Text, c.cfg.ASCIIRatio, c.cfg.FuncWordRatio) {
		return ReasonNotEnglish
	}
	return ""
}

func (c *Chain) isPromo(rec core.CandidateRecord, _ core.Category) string {
	lower := strings.ToLower(rec.Text)
	for _, k := range c.cfg.PromoKeywords {
		if strings.Contains(lower, k) {
			return ReasonPromo
		}
	}
	return ""
}

func (c *Chain) isNoise(rec core.CandidateRecord, _ core.Category) string {
	lower := strings.ToLower(rec.Text)
	for _, k := range c.cfg.NoiseKeywords {
		if strings.Contains(lower, k) {
			return ReasonNoise
		}
	}
	for _, m := range c.cashtagRe.FindAllStringSubmatch(rec.Text, -1) {
		allowed := false
		for _, a := range c.cfg.CashtagAllow {
			if m[1] == a {
				allowed = true
				break
			}
		}
		if !allowed {
			return ReasonNoise
		}
	}
	return ""
}

func (c *Chain) isCompetitorAuthor(rec core.CandidateRecord, _ core.Category) string {
	username := strings.ToLower(rec.Author.Username)
	for _, h := range c.cfg.CompetitorHandles {
		if username == h {
			return ReasonCompetitor
		}
	}
	return ""
}

func (c *Chain) lowEngagement(rec core.CandidateRecord, cat core.Category) string {
	minLikes := c.cfg.MinLikesDefault
	if cat == core.CategoryPainPoint {
		minLikes = c.cfg.MinLikesPain
	}
	if rec.LikeCount < minLikes {
		return ReasonLowEngagement
	}
	return ""
}

func (c *Chain) tooOld(rec core.CandidateRecord, _ core.Category) string {
	if rec.AgeHours(c.now()) > c.cfg.MaxAge.Hours() {
		return ReasonTooOld
	}
	return ""
}

// funcWords are short common English function words; their presence among
// whitespace-split tokens backs up the ASCII-ratio check for a
// "predominantly English" verdict.
var funcWords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "it": true, "to": true,
	"of": true, "and": true, "in": true, "on": true, "for": true, "my": true,
	"i": true, "you": true, "we": true, "was": true, "are": true, "at": true,
	"with": true, "this": true, "that": true, "but": true, "so": true,
	"not": true, "just": true, "have": true, "be": true,
}

// isEnglish requires both a high ASCII-letter-and-punctuation ratio and an
// English function-word signal: a minimum token ratio, or for short texts an
// absolute minimum count.
func isEnglish(text string, asciiRatio, wordRatio float64) bool {
	if text == "" {
		return false
	}

	ascii := 0
	total := 0
	for _, r := range text {
		total++
		if r <= 127 {
			ascii++
		}
	}
	if float64(ascii)/float64(total) <= asciiRatio {
		return false
	}

	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return false
	}
	count := 0
	for _, tok := range tokens {
		if funcWords[strings.Trim(tok, ".,!?'\"()")] {
			count++
		}
	}
	if float64(count)/float64(len(tokens)) >= wordRatio {
		return true
	}
	// Short texts rarely clear the ratio bar; two function words is enough.
	return len(tokens) <= 8 && count >= 2
}
