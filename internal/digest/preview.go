package digest

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"xscout/internal/core"
)

var (
	previewTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	previewBlockStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).Padding(0, 1)
	previewMetaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	previewSafeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	previewPunchyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// Preview renders the batch for the terminal instead of Telegram, used by the
// --preview flag to inspect a run without sending anything.
func Preview(mode string, selected []core.AnnotatedCandidate, drafts map[string]core.ReplyDraftSet, now time.Time) string {
	var sb strings.Builder

	title := fmt.Sprintf("%s — %d candidates", modeLabel(mode), len(selected))
	sb.WriteString(previewTitleStyle.Render(title))
	sb.WriteString("\n\n")

	for i, c := range selected {
		var block strings.Builder
		fmt.Fprintf(&block, "%s %d/%d %s  score %.2f  @%s\n",
			priorityGlyph(c.Priority), i+1, len(selected), c.Category, c.Score, c.Author.Username)
		block.WriteString(previewMetaStyle.Render(fmt.Sprintf("❤️ %d  💬 %d  %dh  templates %s/%s",
			c.LikeCount, c.ReplyCount, int(c.AgeHours(now)), c.Templates.Safe, c.Templates.Punchy)))
		block.WriteString("\n\n")
		block.WriteString(core.Truncate(c.Text, textPreviewLen))
		block.WriteString("\n")

		if d, ok := drafts[c.ID]; ok {
			block.WriteString("\n")
			block.WriteString(previewSafeStyle.Render("SAFE:   " + d.SafeText))
			block.WriteString("\n")
			block.WriteString(previewPunchyStyle.Render("PUNCHY: " + d.PunchyText))
			block.WriteString("\n")
		} else {
			block.WriteString("\n")
			block.WriteString(previewMetaStyle.Render("draft unavailable"))
			block.WriteString("\n")
		}
		block.WriteString(previewMetaStyle.Render(c.URL()))

		sb.WriteString(previewBlockStyle.Render(block.String()))
		sb.WriteString("\n")
	}
	return sb.String()
}
