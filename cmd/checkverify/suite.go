package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sirkon/checkverify/internal/failure"
	"github.com/sirkon/checkverify/internal/report"
	"github.com/sirkon/checkverify/internal/suite"
)

func (a *app) suiteCmd() *cobra.Command {
	var jobs int

	cmd := &cobra.Command{
		Use:   "suite [flags] SUITE",
		Short: "Run verification cases of a suite file (yaml or toml)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSuite(cmd, args[0], jobs)
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "cases run in parallel, GOMAXPROCS if not positive")

	return cmd
}

func (a *app) runSuite(cmd *cobra.Command, path string, jobs int) error {
	color, err := a.colored()
	if err != nil {
		return err
	}
	if a.config != "" {
		return failure.New(failure.Configuration, path, 0, "--config is not used by suites, set it in the suite file")
	}

	s, err := suite.Load(path)
	if err != nil {
		return err
	}

	results, err := s.Run(cmd.Context(), jobs, a.logger())
	if err != nil {
		return err
	}

	for _, r := range results {
		switch {
		case r.Err != nil:
			fmt.Fprintf(a.stdout, "FAIL %s: %s\n", r.Case, r.Err)
		case r.Outcome.Passed:
			fmt.Fprintf(a.stdout, "ok   %s\n", r.Case)
		default:
			fmt.Fprintf(a.stdout, "FAIL %s\n%s\n", r.Case, report.Styled(r.Outcome, color))
		}
	}

	failed := suite.Failed(results)
	fmt.Fprintf(a.stdout, "%d cases, %d failed\n", len(results), len(failed))

	switch code := suite.ExitCode(results); code {
	case exitPassed:
		return nil
	case exitMismatch:
		return errMismatch
	default:
		// The most severe setup error decides the exit code.
		for _, r := range failed {
			if class, ok := failure.ClassOf(r.Err); ok && class.ExitCode() == code {
				return r.Err
			}
		}
		return failure.New(failure.Execution, path, 0, "suite failed")
	}
}
