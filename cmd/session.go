package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/estuda/estuda/internal/session"
	"github.com/estuda/estuda/internal/ui/components"
	"github.com/estuda/estuda/internal/ui/theme"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Track study sessions",
}

var sessionStartCmd = &cobra.Command{
	Use:   "start <topic>",
	Short: "Start a study session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subtopic, _ := cmd.Flags().GetString("subtopic")
		method, _ := cmd.Flags().GetString("method")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.Sessions.Start(cmd.Context(), ownerOf(cmd), session.StartInput{
			Topic:    args[0],
			Subtopic: subtopic,
			Method:   session.Method(method),
		})
		if err != nil {
			return err
		}
		return emit(cmd, s, func(w io.Writer) { printSession(w, s) })
	},
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.Sessions.List(cmd.Context(), ownerOf(cmd), limit)
		if err != nil {
			return err
		}
		return emit(cmd, list, func(w io.Writer) {
			if len(list) == 0 {
				hint(w, "No sessions yet.")
				return
			}
			rows := make([][]string, 0, len(list))
			for _, s := range list {
				rows = append(rows, []string{
					truncate(s.ID, 8), s.TopicRef.Path(), string(s.Method), theme.Status(string(s.Status)),
					stamp(&s.StartedAt), elapsed(s.DurationSeconds),
					fmt.Sprintf("%d/%d", s.QuestionsCorrect, s.QuestionsAttempted),
				})
			}
			render(w, components.Table([]string{"ID", "Topic", "Method", "Status", "Started", "Duration", "Score"}, rows))
		})
	},
}

var sessionPauseCmd = transitionCmd("pause", "Pause an active session", func(t *session.Tracker) func(context.Context, string, string) (*session.Session, error) {
	return t.Pause
})

var sessionResumeCmd = transitionCmd("resume", "Resume a paused session", func(t *session.Tracker) func(context.Context, string, string) (*session.Session, error) {
	return t.Resume
})

var sessionCancelCmd = transitionCmd("cancel", "Cancel a session without recording results", func(t *session.Tracker) func(context.Context, string, string) (*session.Session, error) {
	return t.Cancel
})

func transitionCmd(use, short string, op func(*session.Tracker) func(context.Context, string, string) (*session.Session, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <session-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := op(a.Sessions)(cmd.Context(), ownerOf(cmd), args[0])
			if err != nil {
				return err
			}
			return emit(cmd, s, func(w io.Writer) { printSession(w, s) })
		},
	}
}

var sessionFinishCmd = &cobra.Command{
	Use:   "finish <session-id>",
	Short: "Finish a session and record its results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		attempted, _ := cmd.Flags().GetInt("attempted")
		correct, _ := cmd.Flags().GetInt("correct")
		revise, _ := cmd.Flags().GetBool("revise")
		priority, _ := cmd.Flags().GetInt("priority")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Sessions.Finish(cmd.Context(), ownerOf(cmd), args[0], session.FinishInput{
			QuestionsAttempted: &attempted,
			QuestionsCorrect:   &correct,
			CreateRevision:     revise,
			Priority:           priority,
		})
		if err != nil {
			return err
		}
		return emit(cmd, res, func(w io.Writer) {
			printSession(w, res.Session)
			field(w, "Accuracy", percent(res.Accuracy))
			if res.Revision != nil {
				field(w, "Revision", fmt.Sprintf("%s due %s", truncate(res.Revision.ID, 8), day(res.Revision.DueDate)))
			}
		})
	},
}

func printSession(w io.Writer, s *session.Session) {
	title(w, s.TopicRef.Path())
	field(w, "ID", s.ID)
	field(w, "Method", s.Method)
	field(w, "Status", theme.Status(string(s.Status)))
	field(w, "Started", stamp(&s.StartedAt))
	if s.EndedAt != nil {
		field(w, "Ended", stamp(s.EndedAt))
		field(w, "Duration", elapsed(s.DurationSeconds))
		field(w, "Score", fmt.Sprintf("%d/%d", s.QuestionsCorrect, s.QuestionsAttempted))
	}
}

func init() {
	sessionStartCmd.Flags().String("subtopic", "", "Subtopic within the topic")
	sessionStartCmd.Flags().StringP("method", "m", string(session.MethodQuestions), "Study method: questions, reading, flashcards, video, review or summary")

	sessionListCmd.Flags().IntP("limit", "n", 20, "Number of sessions to show")

	sessionFinishCmd.Flags().Int("attempted", 0, "Questions attempted")
	sessionFinishCmd.Flags().Int("correct", 0, "Questions answered correctly")
	sessionFinishCmd.Flags().Bool("revise", false, "Schedule a revision from this session")
	sessionFinishCmd.Flags().Int("priority", 0, "Revision priority 1-5 (default 3)")

	sessionCmd.AddCommand(sessionStartCmd)
	sessionCmd.AddCommand(sessionPauseCmd)
	sessionCmd.AddCommand(sessionResumeCmd)
	sessionCmd.AddCommand(sessionFinishCmd)
	sessionCmd.AddCommand(sessionCancelCmd)
	sessionCmd.AddCommand(sessionListCmd)
}
