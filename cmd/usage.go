package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/estuda/estuda/internal/usage"
	"github.com/estuda/estuda/internal/ui/components"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Inspect quotas and subscription plans",
}

type usageReport struct {
	Owner    string          `json:"owner"`
	Plan     string          `json:"plan"`
	Counters []usage.Counter `json:"counters"`
}

var usageShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the owner's plan and current quota usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		owner := ownerOf(cmd)
		plan, counters, err := a.Limiter.Usage(cmd.Context(), owner)
		if err != nil {
			return err
		}
		report := usageReport{Owner: owner, Plan: plan, Counters: counters}
		return emit(cmd, report, func(w io.Writer) {
			title(w, owner)
			field(w, "Plan", plan)
			for _, c := range counters {
				label := fmt.Sprintf("%s/%s", c.Kind, c.Period)
				render(w, components.NewQuotaBar(label, c.Used, int64(c.Limit), 60).View())
			}
		})
	},
}

var usageSetPlanCmd = &cobra.Command{
	Use:   "set-plan <plan>",
	Short: "Assign a subscription plan to the owner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		owner := ownerOf(cmd)
		if err := a.Limiter.SetPlan(cmd.Context(), owner, args[0]); err != nil {
			return err
		}
		return emit(cmd, map[string]string{"owner": owner, "plan": args[0]}, func(w io.Writer) {
			field(w, "Plan", args[0])
		})
	},
}

func init() {
	usageCmd.AddCommand(usageShowCmd)
	usageCmd.AddCommand(usageSetPlanCmd)
}
