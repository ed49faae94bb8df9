package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AlexMoto69/uplearn/internal/prompt"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question answered from your unlocked modules",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		modules, _ := cmd.Flags().GetString("modules")
		historyPath, _ := cmd.Flags().GetString("history")

		var history []prompt.Turn
		if historyPath != "" {
			raw, err := readInput(cmd, historyPath)
			if err != nil {
				return err
			}
			if err := json.Unmarshal([]byte(raw), &history); err != nil {
				return fmt.Errorf("parse history %s: %w", historyPath, err)
			}
		}

		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		answer, err := e.tutor.AnswerQuestion(cmd.Context(), e.user, strings.Join(args, " "), modules, history)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), answer)
		return nil
	},
}

func init() {
	askCmd.Flags().StringP("modules", "m", "", "Modules to draw on, e.g. \"1,3-4\" (default all unlocked)")
	askCmd.Flags().String("history", "", "JSON file of earlier turns [{\"from\": \"user\", \"text\": \"...\"}]")
}
