package cmd

import (
	"fmt"

	"charm.land/lipgloss/v2"
	"github.com/AlexMoto69/uplearn/internal/progress"
	"github.com/AlexMoto69/uplearn/internal/ui"
	"github.com/spf13/cobra"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Record a quiz result",
	Long: "Record the result of a quiz. Give --correct/--total or --score/--max-score.\n" +
		"--module and --quiz-index advance that module's counter when the quiz passes\n" +
		"and is the next one in sequence; --daily marks the daily quiz.",
	Example: "  uplearn submit --correct 4 --total 5 --module 2 --quiz-index 3",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sub, err := submissionFromFlags(cmd)
		if err != nil {
			return err
		}

		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		report, err := e.tutor.RecordSubmission(cmd.Context(), e.user, sub)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd, report)
		}
		lipgloss.Fprint(cmd.OutOrStdout(), ui.OutcomeView(report))
		return nil
	},
}

// submissionFromFlags maps the flags that were set onto a submission;
// unset flags stay absent.
func submissionFromFlags(cmd *cobra.Command) (progress.Submission, error) {
	var sub progress.Submission
	f := cmd.Flags()

	ints := []struct {
		name string
		dst  **int
	}{
		{"score", &sub.Score},
		{"max-score", &sub.MaxScore},
		{"correct", &sub.Correct},
		{"total", &sub.Total},
		{"quiz-index", &sub.QuizIndex},
	}
	for _, fl := range ints {
		if !f.Changed(fl.name) {
			continue
		}
		v, err := f.GetInt(fl.name)
		if err != nil {
			return sub, fmt.Errorf("--%s: %w", fl.name, err)
		}
		*fl.dst = &v
	}

	if f.Changed("module") {
		v, err := f.GetInt("module")
		if err != nil {
			return sub, fmt.Errorf("--module: %w", err)
		}
		m := progress.ModuleID(v)
		sub.Module = &m
	}

	sub.Daily, _ = f.GetBool("daily")
	return sub, nil
}

func addSubmitFlags(c *cobra.Command) {
	c.Flags().Int("score", 0, "Points scored")
	c.Flags().Int("max-score", 0, "Maximum points")
	c.Flags().Int("correct", 0, "Correct answers")
	c.Flags().Int("total", 0, "Total questions")
	c.Flags().Int("module", 0, "Module the quiz belongs to")
	c.Flags().Int("quiz-index", 0, "Position of the quiz within the module (1-8)")
	c.Flags().Bool("daily", false, "This was the daily quiz")
	c.Flags().Bool("json", false, "Print the outcome as JSON")
}

func init() {
	addSubmitFlags(submitCmd)
}
