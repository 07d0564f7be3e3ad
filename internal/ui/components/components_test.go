package components

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestQuotaBar_Percent(t *testing.T) {
	tests := []struct {
		name  string
		used  int64
		limit int64
		want  float64
	}{
		{"empty", 0, 20, 0},
		{"half", 10, 20, 0.5},
		{"over", 25, 20, 1},
		{"zero limit", 0, 0, 1},
		{"unlimited", 500, -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, NewQuotaBar("", tt.used, tt.limit, 40).Percent(), 1e-9)
		})
	}
}

func TestQuotaBar_View(t *testing.T) {
	bar := NewQuotaBar("day", 5, 20, 50)
	out := ansi.Strip(bar.View())
	assert.True(t, strings.HasPrefix(out, "day"))
	assert.True(t, strings.HasSuffix(out, "5/20"))
	assert.Equal(t, 50, lipgloss.Width(bar.View()))

	assert.True(t, strings.HasSuffix(ansi.Strip(NewQuotaBar("month", 7, -1, 50).View()), "7/unlimited"))
}

func TestTable(t *testing.T) {
	out := ansi.Strip(Table([]string{"ID", "Status"}, [][]string{{"a1", "pending"}, {"b2", "done"}}))
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "pending")
	assert.Contains(t, out, "b2")
}
