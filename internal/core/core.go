package core

import (
	"fmt"
	"time"
)

// Category is the topical bucket a candidate post is classified into.
// Exactly one category is assigned per post.
type Category string

const (
	CategoryPainPoint  Category = "pain_point"
	CategoryAudience   Category = "audience"
	CategoryCompetitor Category = "competitor"
	CategoryMonitoring Category = "monitoring"
)

// Priority is a coarse tier label derived from the relevance score. It drives
// digest glyphs only; ranking itself uses the numeric score.
type Priority string

const (
	PriorityHot        Priority = "hot"
	PriorityGood       Priority = "good"
	PriorityMonitoring Priority = "monitoring"
)

// Template names one of the five reply-style policies.
type Template string

const (
	TemplatePureValue  Template = "A" // hook + insight, no product mention
	TemplateExperience Template = "B" // first-person experience story
	TemplateUseCase    Template = "C" // specific use case, may mention the product
	TemplateQuestion   Template = "D" // hook + thoughtful question
	TemplateContrarian Template = "E" // agree, then push one level deeper
)

// AllTemplates lists every template in enumeration order.
var AllTemplates = []Template{TemplatePureValue, TemplateExperience, TemplateUseCase, TemplateQuestion, TemplateContrarian}

// Author identifies the account behind a candidate post. Username comparisons
// are case-insensitive throughout the pipeline.
type Author struct {
	Username      string `json:"username"`                // unique handle, without the @
	Name          string `json:"name,omitempty"`          // display name
	FollowerCount int    `json:"followerCount,omitempty"` // 0 when unknown
}

// CandidateRecord is a single social post under consideration, as produced by
// the external search collaborator. It is read-only inside the pipeline:
// classification, score and template fields live on the wrapper types below.
type CandidateRecord struct {
	ID         string `json:"id"`                          // stable post identifier
	Text       string `json:"text"`                        // post body
	Author     Author `json:"author"`                      // posting account
	LikeCount  int    `json:"likeCount,omitempty"`         // absent treated as 0
	ReplyCount int    `json:"replyCount,omitempty"`        // absent treated as 0
	CreatedAt  string `json:"createdAt"`                   // ISO 8601
	InReplyTo  string `json:"inReplyToStatusId,omitempty"` // non-empty when the post is itself a reply
}

// IsReply reports whether the post replies to another post.
func (c CandidateRecord) IsReply() bool { return c.InReplyTo != "" }

// CreatedTime parses CreatedAt. Unparsable dates come back zero with ok=false;
// callers treat those as infinitely old rather than failing.
func (c CandidateRecord) CreatedTime() (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, c.CreatedAt); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AgeHours returns the post age relative to now, in hours. Unparsable dates
// report an effectively infinite age.
func (c CandidateRecord) AgeHours(now time.Time) float64 {
	created, ok := c.CreatedTime()
	if !ok {
		return 1e9
	}
	return now.Sub(created).Hours()
}

// URL is the canonical link to the post.
func (c CandidateRecord) URL() string {
	return fmt.Sprintf("https://x.com/%s/status/%s", c.Author.Username, c.ID)
}

// ScoredCandidate is a candidate that has been classified and survived the
// filter chain, carrying its relevance score.
type ScoredCandidate struct {
	CandidateRecord
	Category Category `json:"category"`
	Score    float64  `json:"score"`    // 0..5, rounded to 2 decimals
	Priority Priority `json:"priority"` // derived from Score
}

// TemplatePair holds the two distinct reply styles assigned to one candidate.
type TemplatePair struct {
	Safe   Template `json:"safe"`
	Punchy Template `json:"punchy"`
}

// AnnotatedCandidate is a top-N selection annotated with its template pair and
// influence tier. Annotation happens only after truncation.
type AnnotatedCandidate struct {
	ScoredCandidate
	Templates     TemplatePair `json:"templates"`
	InfluenceTier int          `json:"influenceTier,omitempty"` // 1..3, 0 when the author is not curated
}

// ReplyDraftSet is the per-candidate output of the drafting collaborator. The
// pipeline tolerates total or partial absence of these.
type ReplyDraftSet struct {
	PostID            string `json:"tweet_id"`
	Context           string `json:"context_ru"`
	SafeText          string `json:"safe"`
	SafeTranslation   string `json:"safe_ru"`
	PunchyText        string `json:"punchy"`
	PunchyTranslation string `json:"punchy_ru"`
	Rationale         string `json:"why"`
	SafeTemplate      string `json:"safe_template"`
	PunchyTemplate    string `json:"punchy_template"`
}

// RunStats counts the batch at each pipeline stage.
type RunStats struct {
	Collected int            `json:"collected"`
	Passed    int            `json:"passed"`
	Selected  int            `json:"selected"`
	Skipped   map[string]int `json:"skipped"` // filter reason → count
}

// SelectionSummary is the per-candidate slice of a persisted run record.
type SelectionSummary struct {
	ID        string         `json:"id"`
	Author    string         `json:"author"`
	Text      string         `json:"text"` // truncated to 200 chars
	Category  Category       `json:"category"`
	Score     float64        `json:"score"`
	Priority  Priority       `json:"priority"`
	Tier      int            `json:"tier,omitempty"`
	Templates TemplatePair   `json:"templates"`
	Likes     int            `json:"likes"`
	Replies   int            `json:"replies"`
	URL       string         `json:"url"`
	Draft     *ReplyDraftSet `json:"draft"` // nil when drafting failed
}

// RunRecord is the persisted artifact of one pipeline invocation.
type RunRecord struct {
	ID         string             `json:"id"`
	Timestamp  time.Time          `json:"timestamp"`
	Mode       string             `json:"mode"`
	Stats      RunStats           `json:"stats"`
	Candidates []SelectionSummary `json:"candidates"`
}

// Batch is the input document handed over by the search collaborator.
type Batch struct {
	Mode       string            `json:"mode"`
	Candidates []CandidateRecord `json:"candidates"`
}

// Truncate shortens s to at most maxLen runes, appending an ellipsis when it
// actually cut something.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
