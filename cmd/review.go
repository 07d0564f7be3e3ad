package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/estuda/estuda/internal/clock"
	"github.com/estuda/estuda/internal/spacedrep"
	"github.com/estuda/estuda/internal/ui/components"
	"github.com/estuda/estuda/internal/ui/theme"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Work with scheduled revisions",
}

var reviewDueCmd = &cobra.Command{
	Use:   "due",
	Short: "List revisions due today or overdue",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		items, err := a.Revisions.Due(cmd.Context(), ownerOf(cmd), limit)
		if err != nil {
			return err
		}
		return emit(cmd, items, func(w io.Writer) { printItems(w, items, "Nothing to review today.") })
	},
}

var reviewCreateCmd = &cobra.Command{
	Use:   "create <topic>",
	Short: "Schedule a revision by hand",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subtopic, _ := cmd.Flags().GetString("subtopic")
		priority, _ := cmd.Flags().GetInt("priority")
		dueStr, _ := cmd.Flags().GetString("due")

		in := spacedrep.CreateInput{Topic: args[0], Subtopic: subtopic, Priority: priority}
		if dueStr != "" {
			due, err := clock.ParseDay(dueStr)
			if err != nil {
				return fmt.Errorf("invalid --due %q: %w", dueStr, err)
			}
			in.DueDate = &due
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		it, err := a.Revisions.Create(cmd.Context(), ownerOf(cmd), in)
		if err != nil {
			return err
		}
		return emit(cmd, it, func(w io.Writer) { printItem(w, it) })
	},
}

var reviewRecordCmd = &cobra.Command{
	Use:   "record <revision-id> <quality 0-5>",
	Short: "Record a review and reschedule the revision",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		quality, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quality %q: must be 0-5", args[1])
		}
		spent, _ := cmd.Flags().GetDuration("time")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Revisions.Review(cmd.Context(), ownerOf(cmd), args[0], spacedrep.ReviewInput{
			Quality:          &quality,
			TimeSpentSeconds: int(spent / time.Second),
		})
		if err != nil {
			return err
		}
		return emit(cmd, res, func(w io.Writer) {
			printItem(w, res.Item)
			e := res.Event
			field(w, "Interval", fmt.Sprintf("%d → %d days", e.PreviousInterval, e.NewInterval))
			field(w, "Ease", fmt.Sprintf("%.2f → %.2f", e.PreviousEase, e.NewEase))
		})
	},
}

var reviewCompleteCmd = itemCmd("complete", "Mark a revision done", func(s *spacedrep.Scheduler) func(context.Context, string, string) (*spacedrep.Item, error) {
	return s.Complete
})

var reviewArchiveCmd = itemCmd("archive", "Archive a revision for good", func(s *spacedrep.Scheduler) func(context.Context, string, string) (*spacedrep.Item, error) {
	return s.Archive
})

func itemCmd(use, short string, op func(*spacedrep.Scheduler) func(context.Context, string, string) (*spacedrep.Item, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <revision-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			it, err := op(a.Revisions)(cmd.Context(), ownerOf(cmd), args[0])
			if err != nil {
				return err
			}
			return emit(cmd, it, func(w io.Writer) { printItem(w, it) })
		},
	}
}

var reviewHistoryCmd = &cobra.Command{
	Use:   "history <revision-id>",
	Short: "Show the review log of a revision",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		events, err := a.Revisions.History(cmd.Context(), ownerOf(cmd), args[0])
		if err != nil {
			return err
		}
		return emit(cmd, events, func(w io.Writer) {
			if len(events) == 0 {
				hint(w, "No reviews recorded.")
				return
			}
			rows := make([][]string, 0, len(events))
			for _, e := range events {
				rows = append(rows, []string{
					strconv.FormatInt(e.Sequence, 10),
					e.Timestamp.Local().Format("2006-01-02 15:04"),
					strconv.Itoa(e.Quality),
					fmt.Sprintf("%d → %d", e.PreviousInterval, e.NewInterval),
					fmt.Sprintf("%.2f → %.2f", e.PreviousEase, e.NewEase),
					day(e.DueDate),
				})
			}
			render(w, components.Table([]string{"#", "When", "Quality", "Interval", "Ease", "Next due"}, rows))
		})
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Mark pending revisions past their due date as overdue",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.Revisions.Sweep(cmd.Context())
		if err != nil {
			return err
		}
		log.Info("sweep finished", zap.Int64("overdue", n))
		return emit(cmd, map[string]int64{"overdue": n}, func(w io.Writer) {
			field(w, "Overdue", n)
		})
	},
}

func printItems(w io.Writer, items []*spacedrep.Item, empty string) {
	if len(items) == 0 {
		hint(w, empty)
		return
	}
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{
			truncate(it.ID, 8), it.TopicRef.Path(), theme.Status(string(it.Status)), day(it.DueDate),
			strconv.Itoa(it.Interval), fmt.Sprintf("%.2f", it.Ease), strconv.Itoa(it.Priority),
		})
	}
	render(w, components.Table([]string{"ID", "Topic", "Status", "Due", "Interval", "Ease", "Priority"}, rows))
}

func printItem(w io.Writer, it *spacedrep.Item) {
	title(w, it.TopicRef.Path())
	field(w, "ID", it.ID)
	field(w, "Status", theme.Status(string(it.Status)))
	field(w, "Due", day(it.DueDate))
	field(w, "Interval", fmt.Sprintf("%d days", it.Interval))
	field(w, "Ease", fmt.Sprintf("%.2f", it.Ease))
	field(w, "Repetitions", it.Repetitions)
	field(w, "Last review", stamp(it.LastReviewedAt))
}

func init() {
	reviewDueCmd.Flags().IntP("limit", "n", 50, "Number of revisions to show")

	reviewCreateCmd.Flags().String("subtopic", "", "Subtopic within the topic")
	reviewCreateCmd.Flags().Int("priority", 0, "Priority 1-5 (default 3)")
	reviewCreateCmd.Flags().String("due", "", "Due date YYYY-MM-DD (default tomorrow)")

	reviewRecordCmd.Flags().Duration("time", 0, "Time spent on the review, e.g. 5m")

	reviewCmd.AddCommand(reviewDueCmd)
	reviewCmd.AddCommand(reviewCreateCmd)
	reviewCmd.AddCommand(reviewRecordCmd)
	reviewCmd.AddCommand(reviewCompleteCmd)
	reviewCmd.AddCommand(reviewArchiveCmd)
	reviewCmd.AddCommand(reviewHistoryCmd)
}
