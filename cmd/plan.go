package cmd

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/estuda/estuda/internal/content"
	"github.com/estuda/estuda/internal/planner"
	"github.com/estuda/estuda/internal/ui/components"
	"github.com/estuda/estuda/internal/ui/theme"
)

var planCmd = &cobra.Command{
	Use:   "plan <request-file>",
	Short: "Preview how a generation request splits into work units",
	Long: `Expand a YAML or JSON generation request into its work units without
calling the LLM or touching any quota. Use "-" to read the request from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := planner.ReadRequest(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}

		units, err := planner.New(cfg.Generation.MaxTargetCount).Plan(req)
		if err != nil {
			return err
		}
		return emit(cmd, units, func(w io.Writer) {
			if len(units) == 0 {
				hint(w, "The request produces no work units.")
				return
			}
			rows := make([][]string, 0, len(units))
			for _, u := range units {
				rows = append(rows, []string{strconv.Itoa(u.Index + 1), u.TopicPath(), u.SourceStyle, u.Difficulty, u.Format})
			}
			render(w, components.Table([]string{"#", "Topic", "Style", "Difficulty", "Format"}, rows))
			printCounts(w, planner.Counts(units))
		})
	},
}

func printCounts(w io.Writer, counts map[string]int) {
	paths := make([]string, 0, len(counts))
	for p := range counts {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	title(w, "Per topic")
	for _, p := range paths {
		field(w, strconv.Itoa(counts[p]), p)
	}
}

var generateCmd = &cobra.Command{
	Use:   "generate <request-file>",
	Short: "Generate questions for a request, charged against the usage quota",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := planner.ReadRequest(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		svc, err := a.Content(cmd.Context())
		if err != nil {
			return fmt.Errorf("LLM provider: %w", err)
		}

		res, err := svc.Generate(cmd.Context(), ownerOf(cmd), req)
		if err != nil {
			return err
		}
		return emit(cmd, res, func(w io.Writer) { printBatch(w, res) })
	},
}

func printBatch(w io.Writer, res *content.BatchResult) {
	title(w, "Batch "+res.BatchID)
	field(w, "Outcome", theme.Status(string(res.Outcome)))
	field(w, "Requested", res.Requested)
	field(w, "Generated", len(res.Artifacts))
	field(w, "Charged", res.Charged)

	for i, a := range res.Artifacts {
		fmt.Fprintln(w)
		heading := fmt.Sprintf("%d. %s  [%s · %s · %s]", i+1, a.TopicPath, a.SourceStyle, a.Difficulty, a.Format)
		title(w, heading)
		fmt.Fprintln(w, a.Content.Statement)
		for j, o := range a.Content.Options {
			fmt.Fprintf(w, "  %c) %s\n", 'A'+j, o)
		}
		field(w, "Answer", a.Content.Answer)
		if a.Content.Explanation != "" {
			hint(w, a.Content.Explanation)
		}
	}

	if len(res.Failures) > 0 {
		fmt.Fprintln(w)
		title(w, "Failed units")
		for _, f := range res.Failures {
			line := fmt.Sprintf("%d. %s (%s) after %d attempts: %s", f.Index+1, f.TopicPath, f.Format, f.Attempts, f.Error)
			render(w, theme.Bad.Render(strings.TrimSpace(line)))
		}
	}
}
