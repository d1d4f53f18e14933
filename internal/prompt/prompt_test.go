package prompt

import (
	"strings"
	"testing"
	"time"

	"xscout/internal/core"
)

var testNow = time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)

func now() time.Time { return testNow }

func annotated(id, username, text string) core.AnnotatedCandidate {
	return core.AnnotatedCandidate{
		ScoredCandidate: core.ScoredCandidate{
			CandidateRecord: core.CandidateRecord{
				ID:         id,
				Text:       text,
				Author:     core.Author{Username: username, FollowerCount: 1200},
				LikeCount:  15,
				ReplyCount: 3,
				CreatedAt:  testNow.Add(-6 * time.Hour).Format(time.RFC3339),
			},
			Category: core.CategoryPainPoint,
			Score:    3.4,
			Priority: core.PriorityGood,
		},
		Templates: core.TemplatePair{Safe: core.TemplateQuestion, Punchy: core.TemplateContrarian},
	}
}

func TestBuildContainsCandidateBlocks(t *testing.T) {
	b := New(DefaultConfig(), now)
	out := b.Build([]core.AnnotatedCandidate{
		annotated("101", "alice", "my deploy failed at 3am"),
		annotated("102", "bob", "no alerts fired, found out from a customer"),
	})

	for _, want := range []string{
		"--- TWEET 1 ---",
		"--- TWEET 2 ---",
		"ID: 101",
		"ID: 102",
		"@alice (1200 followers)",
		"Templates: safe=D punchy=E",
		"Likes: 15 | Replies: 3 | Age: 6h",
		"https://x.com/alice/status/101",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildContainsOutputContract(t *testing.T) {
	b := New(DefaultConfig(), now)
	out := b.Build([]core.AnnotatedCandidate{annotated("101", "alice", "text")})

	for _, field := range []string{
		`"tweet_id"`, `"context_ru"`, `"safe"`, `"safe_ru"`,
		`"punchy"`, `"punchy_ru"`, `"why"`, `"safe_template"`, `"punchy_template"`,
	} {
		if !strings.Contains(out, field) {
			t.Errorf("output contract missing field %s", field)
		}
	}
	if !strings.Contains(out, "Return ONLY the JSON array") {
		t.Error("output contract missing the array-only instruction")
	}
}

func TestBuildMentionsProductIdentity(t *testing.T) {
	cfg := Config{ProductHandle: "@acmeping", ProductPitch: "a ping service"}
	out := New(cfg, now).Build([]core.AnnotatedCandidate{annotated("1", "a", "t")})
	if !strings.Contains(out, "@acmeping") || !strings.Contains(out, "a ping service") {
		t.Error("prompt does not carry the configured product identity")
	}
	if strings.Contains(out, "@mttrly") {
		t.Error("default identity leaked into a configured prompt")
	}
}
