// Package components renders reusable pieces of terminal output.
package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/estuda/estuda/internal/ui/theme"
)

// QuotaBar displays how much of a quota window is used.
type QuotaBar struct {
	Label string
	Used  int64
	Limit int64 // negative means unlimited
	Width int
}

// NewQuotaBar creates a new quota bar.
func NewQuotaBar(label string, used, limit int64, width int) QuotaBar {
	return QuotaBar{
		Label: label,
		Used:  used,
		Limit: limit,
		Width: width,
	}
}

// Percent is the used share in [0, 1]; always 0 when unlimited.
func (q QuotaBar) Percent() float64 {
	if q.Limit < 0 {
		return 0
	}
	if q.Limit == 0 {
		return 1
	}
	return min(1, float64(q.Used)/float64(q.Limit))
}

// View renders the bar followed by "used/limit".
func (q QuotaBar) View() string {
	var result string

	if q.Label != "" {
		result += theme.Label.Render(q.Label)
	}

	suffix := fmt.Sprintf("  %d/%d", q.Used, q.Limit)
	if q.Limit < 0 {
		suffix = fmt.Sprintf("  %d/unlimited", q.Used)
	}

	barWidth := q.Width - lipgloss.Width(result) - len(suffix)
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * q.Percent())
	filled = max(0, min(filled, barWidth))
	empty := barWidth - filled

	fill := theme.ProgressFilled
	if q.Limit >= 0 && q.Used >= q.Limit {
		fill = theme.ProgressFull
	}

	result += fill.Render(strings.Repeat(" ", filled))
	result += theme.ProgressEmpty.Render(strings.Repeat(" ", empty))
	result += theme.Hint.Render(suffix)

	return result
}
