package cmd

import (
	"encoding/json"
	"fmt"

	"charm.land/lipgloss/v2"
	"github.com/AlexMoto69/uplearn/internal/tutor"
	"github.com/AlexMoto69/uplearn/internal/ui"
	"github.com/spf13/cobra"
)

var quizCmd = &cobra.Command{
	Use:   "quiz [modules]",
	Short: "Generate a quiz over unlocked modules",
	Long: "Generate a multiple-choice quiz from the lesson modules the learner has unlocked.\n" +
		"modules is a list such as \"1,3-4\"; omit it or pass \"all\" for every unlocked module.\n" +
		"With --from the quiz is built from the given file (or stdin for \"-\") instead.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		from, _ := cmd.Flags().GetString("from")

		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		var quiz *tutor.Quiz
		if from != "" {
			text, err := readInput(cmd, from)
			if err != nil {
				return err
			}
			quiz, err = e.tutor.GenerateFromText(cmd.Context(), text, count)
			if err != nil {
				return err
			}
		} else {
			quiz, err = e.tutor.GenerateModuleQuiz(cmd.Context(), e.user, selector(args), count)
			if err != nil {
				return err
			}
		}
		return printQuiz(cmd, quiz)
	},
}

var dailyCmd = &cobra.Command{
	Use:   "daily [modules]",
	Short: "Generate today's daily quiz",
	Long: "Generate the daily review quiz. Once a daily quiz has been passed today this\n" +
		"reports it and exits; --another generates a practice set anyway.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		another, _ := cmd.Flags().GetBool("another")

		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		quiz, err := e.tutor.GenerateDailyQuiz(cmd.Context(), e.user, tutor.DailyOptions{
			Selector: selector(args),
			Count:    count,
			Another:  another,
		})
		if err != nil {
			return err
		}
		return printQuiz(cmd, quiz)
	},
}

func selector(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func printQuiz(cmd *cobra.Command, quiz *tutor.Quiz) error {
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(cmd, quiz)
	}
	reveal, _ := cmd.Flags().GetBool("answers")
	lipgloss.Fprint(cmd.OutOrStdout(), ui.QuizView(quiz, reveal))
	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{quizCmd, dailyCmd} {
		c.Flags().IntP("count", "n", 0, "Number of questions (default from config)")
		c.Flags().Bool("json", false, "Print the quiz as JSON")
		c.Flags().Bool("answers", false, "Mark correct options and show explanations")
	}
	quizCmd.Flags().String("from", "", "Build the quiz from this text file (\"-\" for stdin)")
	dailyCmd.Flags().Bool("another", false, "Generate a new set even if today's daily quiz is done")
}
