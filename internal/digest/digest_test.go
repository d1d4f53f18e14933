package digest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"xscout/internal/core"
)

var testNow = time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)

func now() time.Time { return testNow }

func annotated(id, username, text string, priority core.Priority) core.AnnotatedCandidate {
	return core.AnnotatedCandidate{
		ScoredCandidate: core.ScoredCandidate{
			CandidateRecord: core.CandidateRecord{
				ID:        id,
				Text:      text,
				Author:    core.Author{Username: username},
				LikeCount: 12,
				CreatedAt: testNow.Add(-6 * time.Hour).Format(time.RFC3339),
			},
			Category: core.CategoryPainPoint,
			Score:    3.75,
			Priority: priority,
		},
		Templates: core.TemplatePair{Safe: core.TemplateQuestion, Punchy: core.TemplateContrarian},
	}
}

func draftFor(id string) core.ReplyDraftSet {
	return core.ReplyDraftSet{
		PostID:            id,
		Context:           "контекст",
		SafeText:          "The 3am page is the real cost here.",
		SafeTranslation:   "перевод safe",
		PunchyText:        "You don't have an uptime problem, you have an observability problem.",
		PunchyTranslation: "перевод punchy",
		Rationale:         "почему",
	}
}

func TestFormatRendersDraftsAndMarkers(t *testing.T) {
	f := New(now)
	selected := []core.AnnotatedCandidate{
		annotated("1", "alice", "server crashed <again> & again", core.PriorityHot),
		annotated("2", "bob", "still no monitoring", core.PriorityGood),
	}
	drafts := map[string]core.ReplyDraftSet{"1": draftFor("1")}

	doc := f.Format("fire-patrol", selected, drafts)

	if !strings.Contains(doc, "🚨 Fire Patrol Digest — 2025-07-10") {
		t.Error("header missing mode label or date")
	}
	if !strings.Contains(doc, "🔥 <b>1/2") || !strings.Contains(doc, "👍 <b>2/2") {
		t.Error("priority glyphs or rank positions missing")
	}
	if !strings.Contains(doc, "&lt;again&gt; &amp; again") {
		t.Error("original text not HTML-escaped")
	}
	if !strings.Contains(doc, "SAFE [D]") || !strings.Contains(doc, "PUNCHY [E]") {
		t.Error("template labels missing from draft sections")
	}
	if !strings.Contains(doc, "draft unavailable") {
		t.Error("candidate without a draft must carry an explicit marker")
	}
	if strings.Count(doc, "x.com/") < 2 {
		t.Error("canonical URLs missing")
	}
	// Quick-approve trailer lists both positions with template pairs.
	if !strings.Contains(doc, "1. @alice") || !strings.Contains(doc, "2. @bob") {
		t.Error("quick-approve index missing positions")
	}
	if !strings.Contains(doc, "[D/E]") {
		t.Error("quick-approve index missing template pairs")
	}
}

func TestFormatEmptyIncludesHistogram(t *testing.T) {
	f := New(now)
	doc := f.FormatEmpty("brand-building", 14, map[string]int{
		"too_old":        5,
		"low_engagement": 9,
	})

	if !strings.Contains(doc, "No suitable candidates out of 14") {
		t.Error("notice missing collected count")
	}
	if !strings.Contains(doc, "too_old: 5") || !strings.Contains(doc, "low_engagement: 9") {
		t.Error("skip histogram missing")
	}
}

func TestChunkSplitsOnlyAtSeparators(t *testing.T) {
	f := New(now)
	selected := make([]core.AnnotatedCandidate, 5)
	for i := range selected {
		id := fmt.Sprintf("%d", i+1)
		selected[i] = annotated(id, "author"+id, strings.Repeat("long tweet text ", 60), core.PriorityHot)
	}
	doc := f.Format("fire-patrol", selected, nil)

	limit := 1500
	chunks := Chunk(doc, limit)

	if len(chunks) < 2 {
		t.Fatalf("expected >= 2 chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > limit {
			t.Errorf("chunk %d has %d chars, limit %d", i, len(chunk), limit)
		}
	}

	rejoined := strings.Join(chunks, Separator)
	if rejoined != doc {
		t.Error("rejoining chunks with the separator does not reproduce the document")
	}
}

func TestChunkShortDocumentIsSingleChunk(t *testing.T) {
	chunks := Chunk("short", 4000)
	if len(chunks) != 1 || chunks[0] != "short" {
		t.Errorf("Chunk(short) = %v", chunks)
	}
}

func TestEscapeHTML(t *testing.T) {
	got := EscapeHTML(`a < b && c > d`)
	want := "a &lt; b &amp;&amp; c &gt; d"
	if got != want {
		t.Errorf("EscapeHTML = %q, want %q", got, want)
	}
}
