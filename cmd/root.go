package cmd

import (
	"fmt"
	"os"

	"github.com/AlexMoto69/uplearn/internal/config"
	"github.com/AlexMoto69/uplearn/internal/store"
	"github.com/AlexMoto69/uplearn/internal/tutor"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "uplearn",
	Short: "Biology quizzes and answers grounded in your lessons",
	Long: "uplearn builds multiple-choice quizzes and answers questions from the lesson modules " +
		"a learner has unlocked, and tracks per-module progress, streaks and daily quizzes.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		if kind := tutor.KindOf(err); kind != tutor.KindInternal {
			fmt.Fprintf(os.Stderr, "error [%s]: %v\n", kind, err)
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "SQLite path or postgres:// URL (overrides UPLEARN_DB and DATABASE_URL)")
	rootCmd.PersistentFlags().String("config", "", "Config file (YAML, TOML or JSON)")
	rootCmd.PersistentFlags().StringP("user", "u", "", "Learner ID (default $UPLEARN_USER, then $USER)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log diagnostics to stderr")

	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(dailyCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(modulesCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the file named by --config, if any, plus the
// environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// resolveDBPath returns the database DSN using --db flag (highest priority),
// then the configured DSN, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.Database.DSN != "" {
		return cfg.Database.DSN, store.EnsureDir(cfg.Database.DSN)
	}
	return store.DefaultDBPath()
}

// resolveUser returns the learner ID from --user, UPLEARN_USER or USER.
func resolveUser(cmd *cobra.Command) string {
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		return u
	}
	for _, key := range []string{"UPLEARN_USER", "USER", "USERNAME"} {
		if u := os.Getenv(key); u != "" {
			return u
		}
	}
	return "local"
}
