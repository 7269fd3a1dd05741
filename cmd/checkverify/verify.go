package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sirkon/checkverify"
	"github.com/sirkon/checkverify/internal/checks"
	"github.com/sirkon/checkverify/internal/failure"
	"github.com/sirkon/checkverify/internal/fixture"
	"github.com/sirkon/checkverify/internal/report"
)

type verifyFlags struct {
	checks       []string
	goVersion    string
	nonCompiling bool
	quickFixes   bool
	noIssues     bool
	fileIssue    string
}

func (a *app) verifyCmd() *cobra.Command {
	var flags verifyFlags

	cmd := &cobra.Command{
		Use:   "verify [flags] FILE...",
		Short: "Verify fixture files forming a single package",
		Long: `Verify runs checks over fixture files type-checked together as a single package.
Issues raised must match issues declared in fixture comments exactly.

With --no-issues checks must raise nothing. With --file-issue checks must raise exactly
one file level issue on the first file with the given message.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runVerify(flags, args)
		},
	}

	cmd.Flags().StringArrayVar(&flags.checks, "check", nil, "rule code or name to run, all bundled checks if omitted")
	cmd.Flags().StringVar(&flags.goVersion, "go", "", "Go language version of fixtures (1.N), the toolchain one by default")
	cmd.Flags().BoolVar(&flags.nonCompiling, "non-compiling", false, "tolerate parse and type errors in fixtures")
	cmd.Flags().BoolVar(&flags.quickFixes, "quick-fixes", false, "verify quick fixes declared in fixtures")
	cmd.Flags().BoolVar(&flags.noIssues, "no-issues", false, "expect no issues at all")
	cmd.Flags().StringVar(&flags.fileIssue, "file-issue", "", "expect a single file level issue with this message")
	cmd.MarkFlagsMutuallyExclusive("no-issues", "file-issue")

	return cmd
}

func (a *app) runVerify(flags verifyFlags, files []string) error {
	color, err := a.colored()
	if err != nil {
		return err
	}
	cfg, err := a.checkConfig()
	if err != nil {
		return err
	}

	cs, err := checks.ByCode(cfg, flags.checks...)
	if err != nil {
		return failure.Wrap(failure.Configuration, "", err, "select checks")
	}

	opts := []checkverify.Option{
		checkverify.OnFiles(files...),
		checkverify.WithChecks(cs...),
		checkverify.WithLogger(a.logger()),
	}
	if flags.goVersion != "" {
		v, err := fixture.ParseVersion(flags.goVersion)
		if err != nil {
			return failure.Wrap(failure.Configuration, "", err, "parse --go")
		}
		opts = append(opts, checkverify.WithGoVersion(int(v)))
	}
	if flags.nonCompiling {
		opts = append(opts, checkverify.NonCompiling())
	}
	if flags.quickFixes {
		opts = append(opts, checkverify.WithQuickFixes())
	}

	mode := checkverify.ModeIssues
	switch {
	case flags.noIssues:
		mode = checkverify.ModeNoIssues
	case flags.fileIssue != "":
		mode = checkverify.ModeFileIssue
	}

	o, err := checkverify.New(opts...).Run(mode, flags.fileIssue)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, report.Styled(o, color))
	if !o.Passed {
		return errMismatch
	}

	return nil
}
