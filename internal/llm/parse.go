package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"xscout/internal/core"
)

// ExtractJSONArray locates the first balanced top-level JSON array inside raw
// text, tolerating surrounding prose and markdown code fences. The scan is
// string-aware so brackets inside quoted values do not unbalance it.
func ExtractJSONArray(raw string) (string, bool) {
	start := strings.IndexByte(raw, '[')
	for start >= 0 {
		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(raw); i++ {
			ch := raw[i]
			if inString {
				switch {
				case escaped:
					escaped = false
				case ch == '\\':
					escaped = true
				case ch == '"':
					inString = false
				}
				continue
			}
			switch ch {
			case '"':
				inString = true
			case '[':
				depth++
			case ']':
				depth--
				if depth == 0 {
					return raw[start : i+1], true
				}
			}
		}
		// Unterminated from this opener; try the next one.
		next := strings.IndexByte(raw[start+1:], '[')
		if next < 0 {
			break
		}
		start += 1 + next
	}
	return "", false
}

// ParseDrafts extracts and decodes the draft array from raw model output.
// Entries without a tweet id are dropped.
func ParseDrafts(raw string) ([]core.ReplyDraftSet, error) {
	arr, ok := ExtractJSONArray(raw)
	if !ok {
		return nil, fmt.Errorf("no JSON array found in model output")
	}
	var drafts []core.ReplyDraftSet
	if err := json.Unmarshal([]byte(arr), &drafts); err != nil {
		return nil, fmt.Errorf("failed to parse draft array: %w", err)
	}
	kept := drafts[:0]
	for _, d := range drafts {
		if d.PostID != "" {
			kept = append(kept, d)
		}
	}
	return kept, nil
}

// MatchDrafts indexes a draft list by post id for digest assembly.
func MatchDrafts(drafts []core.ReplyDraftSet) map[string]core.ReplyDraftSet {
	byID := make(map[string]core.ReplyDraftSet, len(drafts))
	for _, d := range drafts {
		byID[d.PostID] = d
	}
	return byID
}
