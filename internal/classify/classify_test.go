package classify

import (
	"testing"

	"xscout/internal/core"
)

func record(text, author, inReplyTo string) core.CandidateRecord {
	return core.CandidateRecord{
		ID:        "1",
		Text:      text,
		Author:    core.Author{Username: author},
		InReplyTo: inReplyTo,
	}
}

func TestClassifyPrecedence(t *testing.T) {
	c := New(DefaultConfig())

	tests := []struct {
		name string
		rec  core.CandidateRecord
		want core.Category
	}{
		{
			name: "authority reply wins over everything",
			rec:  record("totally agree with this", "kelseyhightower", "99"),
			want: core.CategoryPainPoint,
		},
		{
			name: "authority mention in reply text",
			rec:  record("replying to rakyll about observability", "nobody", "99"),
			want: core.CategoryPainPoint,
		},
		{
			name: "authority author without reply is not a pain point",
			rec:  record("good morning", "kelseyhightower", ""),
			want: core.CategoryMonitoring,
		},
		{
			name: "audience keyword beats pain keyword",
			rec:  record("as a solo founder my server crashed again", "someone", ""),
			want: core.CategoryAudience,
		},
		{
			name: "pain keyword",
			rec:  record("production went down at 3am", "someone", ""),
			want: core.CategoryPainPoint,
		},
		{
			name: "pain beats competitor",
			rec:  record("nginx throws 502 behind heroku", "someone", ""),
			want: core.CategoryPainPoint,
		},
		{
			name: "competitor keyword",
			rec:  record("vercel bill doubled this month", "someone", ""),
			want: core.CategoryCompetitor,
		},
		{
			name: "nothing matches",
			rec:  record("nice weather today", "someone", ""),
			want: core.CategoryMonitoring,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.rec); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.rec.Text, got, tt.want)
			}
		})
	}
}

func TestClassifyIsPure(t *testing.T) {
	c := New(DefaultConfig())
	rec := record("my app keeps crashing since the last deploy", "maker", "")

	first := c.Classify(rec)
	for i := 0; i < 10; i++ {
		if got := c.Classify(rec); got != first {
			t.Fatalf("classification changed between calls: %s then %s", first, got)
		}
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	c := New(DefaultConfig())
	if got := c.Classify(record("SERVER IS DOWN", "x", "")); got != core.CategoryPainPoint {
		t.Errorf("uppercase text not matched, got %s", got)
	}
}
