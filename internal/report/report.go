// Package report builds the weekly activity summary from the run archive and
// the tracking log.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"xscout/internal/core"
	"xscout/internal/digest"
)

// Weekly aggregates a window of runs plus the tracking log counters.
type Weekly struct {
	WeekStart time.Time
	Runs      int
	Collected int
	Passed    int
	Selected  int
	Replied   int
	Skipped   int
	// Categories counts selected candidates per category.
	Categories map[core.Category]int
	// TopAuthors lists the most-selected authors, sorted desc.
	TopAuthors []AuthorCount
}

// AuthorCount pairs an author with how often they were selected.
type AuthorCount struct {
	Author string
	Count  int
}

// BuildWeekly folds run records into a weekly summary. replied and skipped
// come from the tracking log.
func BuildWeekly(runs []core.RunRecord, replied, skipped int, now time.Time) Weekly {
	weekStart := now.AddDate(0, 0, -int(now.Weekday()))
	w := Weekly{
		WeekStart:  weekStart,
		Runs:       len(runs),
		Replied:    replied,
		Skipped:    skipped,
		Categories: make(map[core.Category]int),
	}

	authors := make(map[string]int)
	for _, run := range runs {
		w.Collected += run.Stats.Collected
		w.Passed += run.Stats.Passed
		w.Selected += run.Stats.Selected
		for _, c := range run.Candidates {
			w.Categories[c.Category]++
			authors[c.Author]++
		}
	}

	for a, n := range authors {
		w.TopAuthors = append(w.TopAuthors, AuthorCount{Author: a, Count: n})
	}
	sort.Slice(w.TopAuthors, func(i, j int) bool {
		if w.TopAuthors[i].Count != w.TopAuthors[j].Count {
			return w.TopAuthors[i].Count > w.TopAuthors[j].Count
		}
		return w.TopAuthors[i].Author < w.TopAuthors[j].Author
	})
	if len(w.TopAuthors) > 5 {
		w.TopAuthors = w.TopAuthors[:5]
	}
	return w
}

// Format renders the weekly report as markdown for terminal output.
func (w Weekly) Format() string {
	bold := func(s string) string { return "**" + s + "**" }
	return w.render(bold, func(s string) string { return s })
}

// FormatHTML renders the weekly report as Telegram HTML. Author names are
// escaped; the markup is only what sendMessage's HTML parse mode accepts.
func (w Weekly) FormatHTML() string {
	bold := func(s string) string { return "<b>" + s + "</b>" }
	return w.render(bold, digest.EscapeHTML)
}

func (w Weekly) render(bold, esc func(string) string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "📊 %s — неделя %s\n\n", bold("Еженедельный отчёт @mttrly"), w.WeekStart.Format("02.01.2006"))

	sb.WriteString(bold("Активность:") + "\n")
	fmt.Fprintf(&sb, "- 🏃 Прогонов: %d\n", w.Runs)
	fmt.Fprintf(&sb, "- 🎯 Кандидатов собрано: %d\n", w.Collected)
	fmt.Fprintf(&sb, "- ✅ Прошло фильтры: %d\n", w.Passed)
	fmt.Fprintf(&sb, "- 💬 Отобрано в дайджесты: %d\n", w.Selected)
	fmt.Fprintf(&sb, "- 📝 Реплаев в логе: %d\n", w.Replied)
	fmt.Fprintf(&sb, "- ⏭️ Пропущено: %d\n\n", w.Skipped)

	if len(w.Categories) > 0 {
		sb.WriteString(bold("Источники (за неделю):") + "\n")
		fmt.Fprintf(&sb, "- 🔥 Pain points: %d\n", w.Categories[core.CategoryPainPoint])
		fmt.Fprintf(&sb, "- 👥 Audience signals: %d\n", w.Categories[core.CategoryAudience])
		fmt.Fprintf(&sb, "- 🏢 Competitor mentions: %d\n", w.Categories[core.CategoryCompetitor])
		fmt.Fprintf(&sb, "- 👀 Watchlist monitoring: %d\n\n", w.Categories[core.CategoryMonitoring])
	}

	if len(w.TopAuthors) > 0 {
		sb.WriteString(bold("Топ авторов:") + "\n")
		for _, a := range w.TopAuthors {
			fmt.Fprintf(&sb, "- @%s: %d\n", esc(a.Author), a.Count)
		}
		sb.WriteString("\n")
	}

	sb.WriteString(bold("Next:") + "\n")
	sb.WriteString("- Review best replies from last week\n")
	sb.WriteString("- Check @mttrly mentions\n")
	return sb.String()
}
