package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/estuda/estuda/internal/ui/theme"
)

func wantJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

// emit prints v as indented JSON under --json, otherwise calls pretty.
func emit(cmd *cobra.Command, v any, pretty func(w io.Writer)) error {
	w := cmd.OutOrStdout()
	if wantJSON(cmd) {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	pretty(w)
	return nil
}

// field prints one "label  value" line.
func field(w io.Writer, label string, value any) {
	lipgloss.Fprintln(w, theme.Label.Render(label)+theme.Body.Render(fmt.Sprint(value)))
}

func title(w io.Writer, s string) {
	lipgloss.Fprintln(w, theme.Title.Render(s))
}

func hint(w io.Writer, s string) {
	lipgloss.Fprintln(w, theme.Hint.Render(s))
}

func day(t time.Time) string {
	return t.Format("2006-01-02")
}

func stamp(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func elapsed(seconds int64) string {
	return (time.Duration(seconds) * time.Second).Round(time.Second).String()
}

func percent(f float64) string {
	return fmt.Sprintf("%.0f%%", f*100)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// render prints styled text, downsampling colors to what w supports.
func render(w io.Writer, s string) {
	lipgloss.Fprintln(w, s)
}
