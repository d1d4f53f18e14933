// Package history reads and writes the engagement tracking log: a markdown
// file with a "## Replied To" section listing every post the operator has
// already replied to, used for dedup and per-author cooldown.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"xscout/internal/core"
)

const skeleton = "# X Engagement Tracking\n\n## Replied To\n(none yet)\n\n## Skipped\n(none yet)\n"

// Entry is one appended record of an outreach action.
type Entry struct {
	PostID    string
	Author    string // username, without the @
	Category  core.Category
	RepliedAt time.Time
}

// State is the parsed view of the log that the filter chain consumes.
type State struct {
	SeenIDs map[string]bool
	// AuthorLastAction maps a lowercased username to the most recent action
	// date observed for that author across the whole log.
	AuthorLastAction map[string]time.Time
}

// Seen reports whether a post ID is already in the log. Exact match only.
func (s *State) Seen(id string) bool { return s.SeenIDs[id] }

// LastAction returns the most recent action date for an author, if any.
func (s *State) LastAction(username string) (time.Time, bool) {
	t, ok := s.AuthorLastAction[strings.ToLower(username)]
	return t, ok
}

// Store owns the tracking file.
type Store struct {
	path string
}

// NewStore creates a store for the given tracking file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Two line formats are tolerated: the legacy bare-ID form ("- 123456") and
// the richer "- 123456 — @author category (2025-01-02T15:04:05Z)" form.
var (
	bareLineRe = regexp.MustCompile(`^- (\S+)`)
	richLineRe = regexp.MustCompile(`^- (\S+) — @(\S+) (\S+) \((.+)\)\s*$`)
)

// Load parses the tracking file. A missing file is initialized with an empty
// skeleton first, so first-run behavior is deterministic. Malformed lines are
// skipped, never fatal.
func (s *Store) Load() (*State, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create tracking directory: %w", err)
		}
		if err := os.WriteFile(s.path, []byte(skeleton), 0644); err != nil {
			return nil, fmt.Errorf("failed to initialize tracking file: %w", err)
		}
	}

	content, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tracking file: %w", err)
	}

	state := &State{
		SeenIDs:          make(map[string]bool),
		AuthorLastAction: make(map[string]time.Time),
	}

	inReplied := false
	for _, line := range strings.Split(string(content), "\n") {
		if strings.HasPrefix(line, "## Replied To") {
			inReplied = true
			continue
		}
		if strings.HasPrefix(line, "## ") {
			inReplied = false
			continue
		}
		if !inReplied {
			continue
		}

		if m := richLineRe.FindStringSubmatch(line); m != nil {
			state.SeenIDs[m[1]] = true
			if t, err := time.Parse(time.RFC3339, m[4]); err == nil {
				username := strings.ToLower(m[2])
				if prev, ok := state.AuthorLastAction[username]; !ok || t.After(prev) {
					state.AuthorLastAction[username] = t
				}
			}
			continue
		}
		if m := bareLineRe.FindStringSubmatch(line); m != nil {
			state.SeenIDs[m[1]] = true
		}
	}

	return state, nil
}

// Append records the run's selections under "## Replied To". The whole file is
// rewritten to a temp file and renamed into place, so an overlapping run can
// never observe a half-written log.
func (s *Store) Append(entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	content, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		content = []byte(skeleton)
	} else if err != nil {
		return fmt.Errorf("failed to read tracking file: %w", err)
	}

	var lines strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&lines, "- %s — @%s %s (%s)\n", e.PostID, e.Author, e.Category, e.RepliedAt.UTC().Format(time.RFC3339))
	}

	updated := insertUnderSection(string(content), "## Replied To", lines.String())
	return s.writeAtomic(updated)
}

// AppendSkipped records skipped IDs under "## Skipped" for operator review.
// Lines are sorted by ID so repeated runs diff cleanly.
func (s *Store) AppendSkipped(ids map[string]string) error {
	if len(ids) == 0 {
		return nil
	}

	content, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		content = []byte(skeleton)
	} else if err != nil {
		return fmt.Errorf("failed to read tracking file: %w", err)
	}

	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	var lines strings.Builder
	for _, id := range sorted {
		fmt.Fprintf(&lines, "- %s (%s)\n", id, ids[id])
	}

	updated := insertUnderSection(string(content), "## Skipped", lines.String())
	return s.writeAtomic(updated)
}

func insertUnderSection(content, header, lines string) string {
	marker := header + "\n"
	if !strings.Contains(content, marker) {
		return content + "\n" + marker + lines
	}
	return strings.Replace(content, marker, marker+lines, 1)
}

func (s *Store) writeAtomic(content string) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".tracking-*")
	if err != nil {
		return fmt.Errorf("failed to create temp tracking file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp tracking file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp tracking file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace tracking file: %w", err)
	}
	return nil
}

// Counts tallies the replied/skipped sections for the weekly report.
func (s *Store) Counts() (replied, skipped int, err error) {
	content, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read tracking file: %w", err)
	}

	section := ""
	for _, line := range strings.Split(string(content), "\n") {
		if strings.HasPrefix(line, "## ") {
			section = strings.TrimSpace(strings.TrimPrefix(line, "##"))
			continue
		}
		if !strings.HasPrefix(line, "- ") {
			continue
		}
		switch section {
		case "Replied To":
			replied++
		case "Skipped":
			skipped++
		}
	}
	return replied, skipped, nil
}
