package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"tutor/internal/bootstrap"
	sessiondto "tutor/internal/modules/session/dto"
	"tutor/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var workPath string

	root := &cobra.Command{
		Use:           "tutor",
		Short:         "Checkpoint-driven study sessions over your own notes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&workPath, "work", ".", "work directory (plans/, notes/, reports/)")

	root.AddCommand(newTUICmd(&workPath))
	root.AddCommand(newPlanCmd(&workPath))
	root.AddCommand(newSessionCmd(&workPath))
	root.AddCommand(newHistoryCmd(&workPath))
	root.AddCommand(newProviderCmd(&workPath))
	return root
}

func loadApp(workPath string) (*bootstrap.App, error) {
	cfg, err := config.New(workPath)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg)
}

func newTUICmd(workPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the tutor terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := loadApp(*workPath)
			if err != nil {
				return err
			}
			return bootstrap.RunTUI(app)
		},
	}
}

func newPlanCmd(workPath *string) *cobra.Command {
	plan := &cobra.Command{Use: "plan", Short: "Curriculum plan commands"}

	plan.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List known plans",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*workPath)
			if err != nil {
				return err
			}
			plans, err := app.PlanCLI.ListPlans(context.Background())
			if err != nil {
				return err
			}
			if len(plans) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no plans")
				return nil
			}
			for _, p := range plans {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-40s %d checkpoints\n", p.ID, p.Title, p.Checkpoints)
			}
			return nil
		},
	})

	plan.AddCommand(&cobra.Command{
		Use:   "show <plan-id>",
		Short: "Show a plan's checkpoints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*workPath)
			if err != nil {
				return err
			}
			detail, err := app.PlanCLI.GetPlan(context.Background(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", detail.Title, detail.ID)
			for _, cp := range detail.Checkpoints {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%3d. %s [%s]\n", cp.OrderIndex+1, cp.Topic, cp.Difficulty)
				for _, obj := range cp.Objectives {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "       - %s\n", obj)
				}
			}
			return nil
		},
	})

	plan.AddCommand(&cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the plan index from plan files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*workPath)
			if err != nil {
				return err
			}
			if err := app.PlanCLI.Reindex(context.Background()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "plans reindexed")
			return nil
		},
	})

	return plan
}

func newSessionCmd(workPath *string) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Checkpoint session commands"}

	session.AddCommand(&cobra.Command{
		Use:   "start <plan-id>",
		Short: "Start a session on a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*workPath)
			if err != nil {
				return err
			}
			out, err := app.SessionCLI.Start(context.Background(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session %s started on %s (%d checkpoints, first: %s)\n",
				out.SessionID, out.PlanTitle, out.CheckpointCount, out.FirstTopic)
			return nil
		},
	})

	session.AddCommand(&cobra.Command{
		Use:   "step",
		Short: "Advance the session by one transition",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*workPath)
			if err != nil {
				return err
			}
			directive, err := app.SessionCLI.Step(context.Background())
			if err != nil {
				return err
			}
			printDirective(cmd, directive)
			return nil
		},
	})

	session.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Advance until the session needs you",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*workPath)
			if err != nil {
				return err
			}
			directive, err := app.SessionCLI.Run(context.Background())
			if err != nil {
				return err
			}
			printDirective(cmd, directive)
			return nil
		},
	})

	session.AddCommand(&cobra.Command{
		Use:   "answer <question-id>=<text> ...",
		Short: "Submit answers to the pending questions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*workPath)
			if err != nil {
				return err
			}
			answers := make([]sessiondto.AnswerInput, 0, len(args))
			for _, arg := range args {
				id, text, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("answer %q must be <question-id>=<text>", arg)
				}
				answers = append(answers, sessiondto.AnswerInput{QuestionID: id, Text: text})
			}
			directive, err := app.SessionCLI.Answer(context.Background(), answers)
			if err != nil {
				return err
			}
			if directive.Kind == sessiondto.DirectiveProceed {
				directive, err = app.SessionCLI.Run(context.Background())
				if err != nil {
					return err
				}
			}
			printDirective(cmd, directive)
			return nil
		},
	})

	session.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the active session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*workPath)
			if err != nil {
				return err
			}
			status, err := app.SessionCLI.Status(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session %s on %s\n", status.SessionID, status.PlanTitle)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "phase: %s  checkpoint %d/%d", status.Phase, status.CurrentIndex+1, status.CheckpointCount)
			if status.CurrentTopic != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), " (%s)", status.CurrentTopic)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nmastered: %d  content retries: %d  remediations: %d\n",
				status.MasteredCount, status.ContentRetries, status.Remediations)
			if status.LastError != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "last error: %s\n", status.LastError)
			}
			return nil
		},
	})

	session.AddCommand(&cobra.Command{
		Use:   "abort",
		Short: "Abort the active session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*workPath)
			if err != nil {
				return err
			}
			if err := app.SessionCLI.Abort(context.Background()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "session aborted")
			return nil
		},
	})

	return session
}

func printDirective(cmd *cobra.Command, directive sessiondto.Directive) {
	w := cmd.OutOrStdout()
	switch directive.Kind {
	case sessiondto.DirectiveNeedAnswers:
		_, _ = fmt.Fprintf(w, "answer these questions on %s:\n", directive.Topic)
		for _, q := range directive.Questions {
			_, _ = fmt.Fprintf(w, "  %s: %s\n", q.ID, q.Text)
		}
		_, _ = fmt.Fprintln(w, "submit with: tutor session answer <question-id>=<text> ...")

	case sessiondto.DirectiveShowRemediation:
		_, _ = fmt.Fprintf(w, "remediation (attempt %d):\n", directive.AttemptNumber)
		objectives := make([]string, 0, len(directive.Explanations))
		for objective := range directive.Explanations {
			objectives = append(objectives, objective)
		}
		sort.Strings(objectives)
		for _, objective := range objectives {
			_, _ = fmt.Fprintf(w, "\n%s\n  %s\n", objective, directive.Explanations[objective])
		}
		_, _ = fmt.Fprintln(w, "\ncontinue with: tutor session run")

	case sessiondto.DirectiveCheckpointResult:
		r := directive.Result
		verdict := "not mastered"
		if r.Mastered {
			verdict = "mastered"
		}
		_, _ = fmt.Fprintf(w, "checkpoint %q: %s (score %.0f%%, %d remediations)\n",
			r.Topic, verdict, r.Score*100, r.RemediationAttempts)
		_, _ = fmt.Fprintln(w, "continue with: tutor session run")

	case sessiondto.DirectiveSessionFinished:
		s := directive.Summary
		_, _ = fmt.Fprintf(w, "session complete: %s, mastered %d/%d\n", s.PlanTitle, s.MasteredCount, s.CheckpointCount)
		for _, o := range s.Outcomes {
			mark := "✗"
			if o.Mastered {
				mark = "✓"
			}
			_, _ = fmt.Fprintf(w, "  %s %s (%.0f%%)\n", mark, o.Topic, o.Score*100)
		}

	case sessiondto.DirectiveErrored:
		_, _ = fmt.Fprintf(w, "session failed: %s\n", directive.Reason)

	default:
		_, _ = fmt.Fprintf(w, "phase: %s\n", directive.Phase)
	}
}

func newHistoryCmd(workPath *string) *cobra.Command {
	history := &cobra.Command{Use: "history", Short: "Completed session records"}

	history.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List completed sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*workPath)
			if err != nil {
				return err
			}
			records, err := app.HistoryCLI.ListRecords(context.Background())
			if err != nil {
				return err
			}
			if len(records) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no completed sessions")
				return nil
			}
			for _, r := range records {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %-32s %-40s %d/%d mastered\n",
					r.CompletedAt.Format("2006-01-02 15:04"), r.SessionID, r.PlanTitle, r.MasteredCount, r.CheckpointCount)
			}
			return nil
		},
	})

	history.AddCommand(&cobra.Command{
		Use:   "show <session-id>",
		Short: "Show one session's outcomes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*workPath)
			if err != nil {
				return err
			}
			detail, err := app.HistoryCLI.GetRecord(context.Background(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", detail.PlanTitle, detail.SessionID)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "completed %s, mastery %.0f%% (%d/%d)\n",
				detail.CompletedAt.Format("2006-01-02 15:04"), detail.MasteryRate*100, detail.MasteredCount, detail.CheckpointCount)
			for _, o := range detail.Outcomes {
				mark := "✗"
				if o.Mastered {
					mark = "✓"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %s %s (%.0f%%, %d remediations)\n", mark, o.Topic, o.Score*100, o.RemediationAttempts)
			}
			return nil
		},
	})

	history.AddCommand(&cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the record index from report files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*workPath)
			if err != nil {
				return err
			}
			if err := app.HistoryCLI.Reindex(context.Background()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "history reindexed")
			return nil
		},
	})

	return history
}

func newProviderCmd(workPath *string) *cobra.Command {
	provider := &cobra.Command{Use: "provider", Short: "Assessment provider commands"}

	provider.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List configured providers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*workPath)
			if err != nil {
				return err
			}
			providers, err := app.ProviderCLI.List(context.Background())
			if err != nil {
				return err
			}
			if len(providers) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no providers configured")
				return nil
			}
			for _, p := range providers {
				state := "disabled"
				if p.Enabled {
					state = "enabled"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-20s %-10s %-9s roles: %s\n",
					p.Name, p.Version, state, strings.Join(p.Roles, ", "))
			}
			return nil
		},
	})

	provider.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Verify provider binaries, checksums, and lifecycle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*workPath)
			if err != nil {
				return err
			}
			results, err := app.ProviderCLI.Doctor(context.Background())
			if err != nil {
				return err
			}
			if len(results) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no providers configured")
				return nil
			}
			for _, r := range results {
				check := func(ok bool) string {
					if ok {
						return "ok"
					}
					return "FAIL"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-20s binary: %-5s checksum: %-5s lifecycle: %-5s",
					r.Name, check(r.BinaryReachable), check(r.ChecksumValid), check(r.LifecycleOK))
				if r.Error != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  (%s)", r.Error)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	})

	return provider
}
