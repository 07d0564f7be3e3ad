package cmd

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/estuda/estuda/internal/llm"
	"github.com/estuda/estuda/internal/store"
	"github.com/estuda/estuda/internal/ui/components"
	"github.com/estuda/estuda/internal/ui/theme"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM request/response events",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		verbose, _ := cmd.Flags().GetBool("verbose")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		events, err := a.Store.EventRepo().QueryLLMRequests(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if purpose != "" {
			events = slices.DeleteFunc(events, func(e store.LLMRequestEvent) bool { return e.Purpose != purpose })
		}

		return emit(cmd, events, func(w io.Writer) {
			if len(events) == 0 {
				hint(w, "No LLM events found.")
				return
			}
			rows := make([][]string, 0, len(events))
			for _, e := range events {
				ok := theme.Good.Render("✓")
				if !e.Success {
					ok = theme.Bad.Render("✗")
				}
				rows = append(rows, []string{
					strconv.FormatInt(e.ID, 10),
					e.Timestamp.Local().Format("2006-01-02 15:04:05"),
					e.Purpose,
					truncate(e.Model, 28),
					strconv.Itoa(e.InputTokens),
					strconv.Itoa(e.OutputTokens),
					strconv.FormatInt(e.LatencyMs, 10),
					ok,
				})
			}
			render(w, components.Table([]string{"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK"}, rows))

			if !verbose {
				return
			}
			for _, e := range events {
				fmt.Fprintln(w)
				title(w, fmt.Sprintf("Event %d", e.ID))
				if e.ErrorMessage != "" {
					field(w, "Error", e.ErrorMessage)
				}
				field(w, "Request", orNotCaptured(e.RequestBody))
				field(w, "Response", orNotCaptured(e.ResponseBody))
			}
		})
	},
}

func orNotCaptured(s string) string {
	if s == "" {
		return "(not captured)"
	}
	return s
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := a.Store.EventRepo().LLMUsage(cmd.Context())
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}

		return emit(cmd, stats, func(w io.Writer) {
			if len(stats) == 0 {
				hint(w, "No LLM usage recorded yet.")
				return
			}

			var (
				totalCost     float64
				unknownModels []string
				totalIn       int64
				totalOut      int64
			)
			rows := make([][]string, 0, len(stats)+1)
			for _, st := range stats {
				cost := "?"
				if price, ok := llm.PriceOf(st.Model); ok {
					usd := price.Cost(st.InputTokens, st.OutputTokens)
					totalCost += usd
					cost = formatCost(usd)
				} else if !slices.Contains(unknownModels, st.Model) {
					unknownModels = append(unknownModels, st.Model)
				}
				totalIn += st.InputTokens
				totalOut += st.OutputTokens
				rows = append(rows, []string{
					truncate(st.Model, 32), st.Purpose,
					strconv.Itoa(st.Requests), strconv.Itoa(st.Failures),
					strconv.FormatInt(st.InputTokens, 10), strconv.FormatInt(st.OutputTokens, 10),
					fmt.Sprintf("%.0f", st.AvgLatencyMs), cost,
				})
			}

			label := "TOTAL"
			if len(unknownModels) > 0 {
				label = "TOTAL (partial)"
			}
			rows = append(rows, []string{label, "", "", "", strconv.FormatInt(totalIn, 10), strconv.FormatInt(totalOut, 10), "", formatCost(totalCost)})

			render(w, components.Table([]string{"Model", "Purpose", "Calls", "Failed", "Input", "Output", "Avg Ms", "Cost"}, rows))
			if len(unknownModels) > 0 {
				hint(w, fmt.Sprintf("Pricing unavailable for: %v", unknownModels))
			}
		})
	},
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. artifact-gen)")
	llmListCmd.Flags().BoolP("verbose", "v", false, "Print request and response bodies")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
