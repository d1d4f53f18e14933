// Package prompt serializes a selected batch into the drafting prompt.
package prompt

import (
	"fmt"
	"strings"
	"time"

	"xscout/internal/core"
)

// Config carries the persona and product identity injected into every prompt.
type Config struct {
	ProductHandle string
	ProductPitch  string
}

// DefaultConfig returns the production prompt identity.
func DefaultConfig() Config {
	return Config{
		ProductHandle: "@mttrly",
		ProductPitch:  "a server monitoring tool for indie makers",
	}
}

// Builder renders a drafting prompt for the selected candidates.
type Builder struct {
	cfg Config
	now func() time.Time
}

// New builds a prompt builder. now may be nil for wall-clock time.
func New(cfg Config, now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{cfg: cfg, now: now}
}

// Build renders the full prompt: persona and product facts, authoring rules,
// one block per candidate, and the strict output contract the response parser
// depends on.
func (b *Builder) Build(selected []core.AnnotatedCandidate) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are writing Twitter replies for %s — %s.\n\n", b.cfg.ProductHandle, b.cfg.ProductPitch)
	sb.WriteString(`PERSONA: Gilfoyle mode (Silicon Valley). Dry, smart, confident engineer. You've seen this 100 times before.
You share observations from production. You don't sell. Trust > sales.

MANDATORY RULES:
1. HOOK FIRST: First 5-7 words MUST cite a specific detail from the tweet. Prove you read it.
   BAD: "I feel this", "Spot on", "Exactly this"
   GOOD: "The $30 stack works until...", "3am incidents happen because..."
2. LENGTH: 1-3 sentences max. Short. People are stressed.
3. NO SALES: No "check out", "buy now", "try us". Value only.
4. TEMPLATE OBEDIENCE: Each variant must follow its assigned template exactly.
5. PRODUCT QUOTA: Across the whole batch, at most 40% of safe replies and 40% of punchy replies may mention ` + b.cfg.ProductHandle + `, and only where the template allows it.
6. ACCURACY: If the tweet quotes a number, price, or metric, never contradict or distort it.
7. TOPICAL FIT: If the tweet is not about servers, deploys, or monitoring, do not steer it there.
8. NO EMOJI spam. No exclamation marks. No corporate speak.
9. NO generic openings. Every reply must be unique to the tweet.

TEMPLATE RULES:
- Template A (Pure Value): Hook + insight. Never mentions the product.
- Template B (Experience): First-person story from production. Never mentions the product.
- Template C (Use Case): Concrete use case, may mention ` + b.cfg.ProductHandle + ` if it fits naturally.
- Template D (Question): Hook + thoughtful question. Never mentions the product.
- Template E (Contrarian): Agree, then push one level deeper. Never mentions the product.

For each tweet, generate exactly 2 reply variants:
- SAFE: Neutral-expert tone, following the safe template.
- PUNCHY: Slightly edgier, more personality, still respectful, following the punchy template.

Additionally for EACH tweet provide:
- context_ru: Brief context in Russian (2-3 sentences). Explain what the tweet is about and why it is relevant. If it is a reply in a thread, explain the thread context.
- safe_ru: Russian translation of the SAFE reply.
- punchy_ru: Russian translation of the PUNCHY reply.
- why: Brief explanation in Russian why this tweet was selected and why this reply angle works.

TWEETS TO REPLY TO:

`)

	for i, c := range selected {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(b.candidateBlock(i+1, c))
	}

	sb.WriteString(`

OUTPUT FORMAT (strict JSON array):
[
  {
    "tweet_id": "123...",
    "context_ru": "Краткий контекст на русском...",
    "safe": "Reply text here...",
    "safe_ru": "Перевод safe варианта...",
    "punchy": "Reply text here...",
    "punchy_ru": "Перевод punchy варианта...",
    "why": "Почему выбран этот твит и почему такой угол ответа...",
    "safe_template": "A",
    "punchy_template": "E"
  }
]

Return ONLY the JSON array. No markdown, no explanation.`)

	return sb.String()
}

func (b *Builder) candidateBlock(n int, c core.AnnotatedCandidate) string {
	followers := "?"
	if c.Author.FollowerCount > 0 {
		followers = fmt.Sprintf("%d", c.Author.FollowerCount)
	}
	isReply := "no"
	if c.IsReply() {
		isReply = "yes"
	}
	tier := ""
	if c.InfluenceTier > 0 {
		tier = fmt.Sprintf("\nInfluence tier: %d", c.InfluenceTier)
	}
	return fmt.Sprintf(`--- TWEET %d ---
ID: %s
Author: @%s (%s followers)
Category: %s
Priority: %s | Score: %.2f%s
Templates: safe=%s punchy=%s
Likes: %d | Replies: %d | Age: %dh
Is Reply: %s
Text: %q
URL: %s`,
		n, c.ID, c.Author.Username, followers,
		c.Category, c.Priority, c.Score, tier,
		c.Templates.Safe, c.Templates.Punchy,
		c.LikeCount, c.ReplyCount, int(c.AgeHours(b.now())),
		isReply, c.Text, c.URL())
}
