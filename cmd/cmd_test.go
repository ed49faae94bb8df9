package cmd

import (
	"testing"

	"github.com/AlexMoto69/uplearn/internal/progress"
	"github.com/spf13/cobra"
)

func newSubmitFlags(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "submit"}
	addSubmitFlags(c)
	if err := c.Flags().Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return c
}

func TestSubmissionFromFlags(t *testing.T) {
	c := newSubmitFlags(t, "--correct", "4", "--total", "5", "--module", "2", "--quiz-index", "3", "--daily")
	sub, err := submissionFromFlags(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.Correct == nil || *sub.Correct != 4 || sub.Total == nil || *sub.Total != 5 {
		t.Fatalf("correct/total not set: %+v", sub)
	}
	if sub.Module == nil || *sub.Module != progress.ModuleID(2) || sub.QuizIndex == nil || *sub.QuizIndex != 3 {
		t.Fatalf("module/quiz index not set: %+v", sub)
	}
	if !sub.Daily {
		t.Fatal("daily not set")
	}
	if sub.Score != nil || sub.MaxScore != nil {
		t.Fatalf("unset flags became present: %+v", sub)
	}
}

func TestSubmissionFromFlags_ZeroIsPresent(t *testing.T) {
	c := newSubmitFlags(t, "--score", "0")
	sub, err := submissionFromFlags(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.Score == nil || *sub.Score != 0 {
		t.Fatalf("explicit zero score dropped: %+v", sub)
	}
	if err := sub.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestResolveUser(t *testing.T) {
	t.Setenv("UPLEARN_USER", "ana")
	t.Setenv("USER", "root")

	c := &cobra.Command{Use: "x"}
	c.Flags().String("user", "", "")
	if got := resolveUser(c); got != "ana" {
		t.Fatalf("resolveUser = %q, want ana", got)
	}

	if err := c.Flags().Set("user", "bogdan"); err != nil {
		t.Fatal(err)
	}
	if got := resolveUser(c); got != "bogdan" {
		t.Fatalf("resolveUser = %q, want bogdan", got)
	}
}

func TestSelector(t *testing.T) {
	if got := selector(nil); got != "" {
		t.Fatalf("selector(nil) = %q", got)
	}
	if got := selector([]string{"1,3-4"}); got != "1,3-4" {
		t.Fatalf("selector = %q", got)
	}
}
