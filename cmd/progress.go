package cmd

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/AlexMoto69/uplearn/internal/progress"
	"github.com/AlexMoto69/uplearn/internal/ui"
	"github.com/spf13/cobra"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show module progress, streaks and score",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		sum, err := e.tutor.GetProgress(cmd.Context(), e.user)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd, sum)
		}
		lipgloss.Fprint(cmd.OutOrStdout(), ui.SummaryView(sum))
		return nil
	},
}

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List lesson modules and their state for the learner",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ids, err := e.lessons.Modules()
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No lesson files found in %s.\n", e.cfg.Lessons.Dir)
			return nil
		}

		p, err := e.store.ProgressRepo().Load(cmd.Context(), e.user)
		if err != nil {
			return fmt.Errorf("load progress: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-6s  %-12s  %7s  %s\n", "Module", "State", "Quizzes", "File")
		fmt.Fprintln(out, strings.Repeat("─", 72))
		for _, id := range ids {
			fmt.Fprintf(out, "%-6d  %-12s  %4d/%d  %s\n",
				id,
				p.StateOf(id),
				p.QuizCounts[id],
				progress.QuizzesPerModule,
				e.lessons.Path(id),
			)
		}
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the learner's progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		user := resolveUser(cmd)
		if !yes {
			return fmt.Errorf("this deletes all progress of %q; rerun with --yes to confirm", user)
		}

		logger := newLogger(cmd)
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, closers, err := openStore(cmd, cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			for i := len(closers) - 1; i >= 0; i-- {
				_ = closers[i]()
			}
		}()

		existed, err := st.ProgressRepo().Reset(cmd.Context(), user)
		if err != nil {
			return err
		}
		if !existed {
			fmt.Fprintf(cmd.OutOrStdout(), "No progress recorded for %s.\n", user)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Progress of %s deleted.\n", user)
		return nil
	},
}

func init() {
	progressCmd.Flags().Bool("json", false, "Print the summary as JSON")
	resetCmd.Flags().Bool("yes", false, "Confirm deletion")
}
