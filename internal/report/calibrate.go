package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"xscout/internal/core"
)

// CalibrationStats summarizes a raw candidate batch before filtering, used to
// sanity-check search queries and threshold settings against live data.
type CalibrationStats struct {
	Total     int
	English   int
	Likes1    int
	Likes3    int
	Likes5    int
	Likes10   int
	Replies   int
	Originals int
	Fresh12h  int
	Fresh24h  int
	Fresh48h  int

	// Pipeline view of the same batch.
	Categories map[core.Category]int
	Skipped    map[string]int
	Passed     int
}

// mostlyASCII reports whether text is mostly ASCII, the same coarse
// heuristic the language filter starts from.
func mostlyASCII(text string) bool {
	if text == "" {
		return false
	}
	ascii := 0
	for _, r := range text {
		if r < 128 {
			ascii++
		}
	}
	return float64(ascii)/float64(len([]rune(text))) > 0.7
}

// Calibrate folds raw engagement numbers and the pipeline's own
// classification and skip decisions into one stats block. categories and
// skipReasons are parallel to records; skipReasons holds "" for records that
// passed.
func Calibrate(records []core.CandidateRecord, categories []core.Category, skipReasons []string, now time.Time) CalibrationStats {
	stats := CalibrationStats{
		Categories: make(map[core.Category]int),
		Skipped:    make(map[string]int),
	}

	for i, rec := range records {
		stats.Total++
		if mostlyASCII(rec.Text) {
			stats.English++
		}
		if rec.LikeCount >= 1 {
			stats.Likes1++
		}
		if rec.LikeCount >= 3 {
			stats.Likes3++
		}
		if rec.LikeCount >= 5 {
			stats.Likes5++
		}
		if rec.LikeCount >= 10 {
			stats.Likes10++
		}
		if rec.IsReply() {
			stats.Replies++
		} else {
			stats.Originals++
		}
		age := rec.AgeHours(now)
		if age <= 12 {
			stats.Fresh12h++
		}
		if age <= 24 {
			stats.Fresh24h++
		}
		if age <= 48 {
			stats.Fresh48h++
		}

		stats.Categories[categories[i]]++
		if skipReasons[i] == "" {
			stats.Passed++
		} else {
			stats.Skipped[skipReasons[i]]++
		}
	}
	return stats
}

// Format renders the calibration stats as a markdown table plus the skip
// histogram.
func (s CalibrationStats) Format(label string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "### %s\n\n", label)
	sb.WriteString("| Metric | Count |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Total results | %d |\n", s.Total)
	fmt.Fprintf(&sb, "| English | %d |\n", s.English)
	fmt.Fprintf(&sb, "| Likes >= 1 | %d |\n", s.Likes1)
	fmt.Fprintf(&sb, "| Likes >= 3 | %d |\n", s.Likes3)
	fmt.Fprintf(&sb, "| Likes >= 5 | %d |\n", s.Likes5)
	fmt.Fprintf(&sb, "| Likes >= 10 | %d |\n", s.Likes10)
	fmt.Fprintf(&sb, "| Replies | %d |\n", s.Replies)
	fmt.Fprintf(&sb, "| Originals | %d |\n", s.Originals)
	fmt.Fprintf(&sb, "| Fresh < 12h | %d |\n", s.Fresh12h)
	fmt.Fprintf(&sb, "| Fresh < 24h | %d |\n", s.Fresh24h)
	fmt.Fprintf(&sb, "| Fresh < 48h | %d |\n", s.Fresh48h)
	fmt.Fprintf(&sb, "| Passed filters | %d |\n", s.Passed)
	sb.WriteString("\n")

	if len(s.Categories) > 0 {
		sb.WriteString("Categories:\n")
		for _, c := range []core.Category{core.CategoryPainPoint, core.CategoryAudience, core.CategoryCompetitor, core.CategoryMonitoring} {
			if n := s.Categories[c]; n > 0 {
				fmt.Fprintf(&sb, "- %s: %d\n", c, n)
			}
		}
		sb.WriteString("\n")
	}

	if len(s.Skipped) > 0 {
		sb.WriteString("Skip reasons:\n")
		reasons := make([]string, 0, len(s.Skipped))
		for r := range s.Skipped {
			reasons = append(reasons, r)
		}
		sort.Strings(reasons)
		for _, r := range reasons {
			fmt.Fprintf(&sb, "- %s: %d\n", r, s.Skipped[r])
		}
	}
	return sb.String()
}
