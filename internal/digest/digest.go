// Package digest renders a drafted batch into Telegram-safe HTML text and
// chunks it at block boundaries.
package digest

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"xscout/internal/core"
)

// Separator is the block boundary between candidate sections. Chunking splits
// only here, never mid-block.
const Separator = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n"

// textPreviewLen bounds the quoted original text inside a digest block.
const textPreviewLen = 400

// Formatter renders digests.
type Formatter struct {
	now func() time.Time
}

// New builds a formatter. now may be nil for wall-clock time.
func New(now func() time.Time) *Formatter {
	if now == nil {
		now = time.Now
	}
	return &Formatter{now: now}
}

func priorityGlyph(p core.Priority) string {
	switch p {
	case core.PriorityHot:
		return "🔥"
	case core.PriorityGood:
		return "👍"
	default:
		return "📈"
	}
}

func categoryLabel(c core.Category) string {
	switch c {
	case core.CategoryPainPoint:
		return "ГОРЯЧЕЕ"
	case core.CategoryAudience:
		return "ХОРОШЕЕ"
	default:
		return "МОНИТОРИНГ"
	}
}

func modeLabel(mode string) string {
	switch mode {
	case "fire-patrol":
		return "🚨 Fire Patrol"
	case "brand-building":
		return "🏗 Brand Building"
	default:
		return "📋 " + mode
	}
}

// Format renders the full digest for a selected batch. drafts maps post id to
// its draft set; candidates without an entry render a "draft unavailable"
// marker instead of being dropped.
func (f *Formatter) Format(mode string, selected []core.AnnotatedCandidate, drafts map[string]core.ReplyDraftSet) string {
	var sb strings.Builder
	date := f.now().UTC().Format("2006-01-02")

	fmt.Fprintf(&sb, "<b>%s Digest — %s</b>\n", modeLabel(mode), date)
	fmt.Fprintf(&sb, "Tweets: %d candidates\n", len(selected))
	sb.WriteString(Separator)

	for i, c := range selected {
		draft, hasDraft := drafts[c.ID]
		f.writeBlock(&sb, i+1, len(selected), c, draft, hasDraft)
		sb.WriteString(Separator)
	}

	f.writeApproveIndex(&sb, selected)
	return sb.String()
}

func (f *Formatter) writeBlock(sb *strings.Builder, n, total int, c core.AnnotatedCandidate, draft core.ReplyDraftSet, hasDraft bool) {
	ageH := int(c.AgeHours(f.now()))
	isReply := ""
	if c.IsReply() {
		isReply = " (reply в треде)"
	}

	fmt.Fprintf(sb, "%s <b>%d/%d — %s</b>\n", priorityGlyph(c.Priority), n, total, categoryLabel(c.Category))
	fmt.Fprintf(sb, "@%s | ❤️ %d | 💬 %d | Score: %.2f | %dh%s\n\n",
		c.Author.Username, c.LikeCount, c.ReplyCount, c.Score, ageH, isReply)

	if hasDraft && draft.Context != "" {
		fmt.Fprintf(sb, "<b>Контекст:</b> %s\n\n", EscapeHTML(draft.Context))
	}

	fmt.Fprintf(sb, "<b>Твит:</b>\n<i>\"%s\"</i>\n\n", EscapeHTML(core.Truncate(c.Text, textPreviewLen)))

	if hasDraft {
		fmt.Fprintf(sb, "🟢 <b>SAFE [%s]:</b>\n%s\n", c.Templates.Safe, EscapeHTML(draft.SafeText))
		if draft.SafeTranslation != "" {
			fmt.Fprintf(sb, "<i>%s</i>\n\n", EscapeHTML(draft.SafeTranslation))
		} else {
			sb.WriteString("\n")
		}
		fmt.Fprintf(sb, "🟠 <b>PUNCHY [%s]:</b>\n%s\n", c.Templates.Punchy, EscapeHTML(draft.PunchyText))
		if draft.PunchyTranslation != "" {
			fmt.Fprintf(sb, "<i>%s</i>\n\n", EscapeHTML(draft.PunchyTranslation))
		} else {
			sb.WriteString("\n")
		}
		if draft.Rationale != "" {
			fmt.Fprintf(sb, "<b>Почему:</b> %s\n\n", EscapeHTML(draft.Rationale))
		}
	} else {
		sb.WriteString("⚠️ draft unavailable\n\n")
	}

	fmt.Fprintf(sb, "🔗 x.com/%s/status/%s\n", c.Author.Username, c.ID)
}

// writeApproveIndex appends the quick-approve trailer mapping position to
// author, category and template pair, so the operator can answer with a
// number plus SAFE/PUNCHY.
func (f *Formatter) writeApproveIndex(sb *strings.Builder, selected []core.AnnotatedCandidate) {
	for i, c := range selected {
		fmt.Fprintf(sb, "%d. @%s — %s [%s/%s]\n",
			i+1, c.Author.Username, categoryLabel(c.Category), c.Templates.Safe, c.Templates.Punchy)
	}
	sb.WriteString("\n<i>Ответь номером твита + SAFE/PUNCHY для аппрува.</i>")
}

// FormatEmpty renders the notice sent when no candidates survive filtering,
// with the skip-reason histogram so the operator can see why.
func (f *Formatter) FormatEmpty(mode string, collected int, skipped map[string]int) string {
	var sb strings.Builder
	date := f.now().UTC().Format("2006-01-02")

	fmt.Fprintf(&sb, "<b>%s Digest — %s</b>\n", modeLabel(mode), date)
	fmt.Fprintf(&sb, "No suitable candidates out of %d collected.\n", collected)

	if len(skipped) > 0 {
		sb.WriteString("\n<b>Skip reasons:</b>\n")
		reasons := make([]string, 0, len(skipped))
		for r := range skipped {
			reasons = append(reasons, r)
		}
		sort.Strings(reasons)
		for _, r := range reasons {
			fmt.Fprintf(&sb, "• %s: %d\n", r, skipped[r])
		}
	}
	return sb.String()
}

// EscapeHTML escapes the three characters Telegram's HTML parse mode treats
// as markup.
func EscapeHTML(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	return text
}

// Chunk splits a digest into transport-safe segments of at most limit
// characters, cutting only at Separator boundaries. Rejoining the chunks with
// the separator reproduces the original block order.
func Chunk(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	parts := strings.Split(text, Separator)
	var chunks []string
	current := ""
	for _, part := range parts {
		candidate := part
		if current != "" {
			candidate = current + Separator + part
		}
		if len(candidate) > limit && current != "" {
			chunks = append(chunks, current)
			current = part
		} else {
			current = candidate
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}
