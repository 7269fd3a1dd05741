// Package checkverify verifies static-analysis checks against annotated Go fixtures.
//
// Fixtures declare issues they expect in comments:
//
//	func f() {
//		// Noncompliant@+1 {{Nested too deeply}}
//		if y {
//		}
//	}
//
// A Verifier parses these declarations, runs checks over the independently parsed and
// type-checked fixture, and compares the issues raised with the declared ones:
//
//	func TestNesting(t *testing.T) {
//		checkverify.New(
//			checkverify.OnFile("testdata/nesting.go"),
//			checkverify.WithCheck(nesting.New()),
//		).VerifyIssues(t)
//	}
package checkverify

import (
	"encoding"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"golang.org/x/tools/go/analysis"

	"github.com/sirkon/checkverify/internal/expect"
	"github.com/sirkon/checkverify/internal/failure"
	"github.com/sirkon/checkverify/internal/fixture"
	"github.com/sirkon/checkverify/internal/issue"
	"github.com/sirkon/checkverify/internal/match"
	"github.com/sirkon/checkverify/internal/report"
	"github.com/sirkon/checkverify/internal/runner"
)

type (
	// Check is a rule implementation run over fixtures.
	Check = runner.Check

	// Tree is a parsed and type-checked fixture package given to checks.
	Tree = fixture.Tree

	// Issue is an issue raised by a check.
	Issue = issue.Issue

	// Location is an issue location.
	Location = issue.Location

	// Secondary is a secondary issue location.
	Secondary = issue.Secondary

	// Fix is a quick fix offered for an issue.
	Fix = issue.Fix

	// Edit is a text edit of a quick fix.
	Edit = issue.Edit

	// Outcome is a verification result.
	Outcome = report.Outcome
)

// FromAnalyzer adapts a go/analysis analyzer to a Check.
func FromAnalyzer(a *analysis.Analyzer) Check {
	return runner.FromAnalyzer(a)
}

// CheckFunc turns a function into a Check.
func CheckFunc(name string, f func(tree *Tree) ([]Issue, error)) Check {
	return runner.Func(name, f)
}

// Mode is an assertion mode of a run.
type Mode int

const (
	modeInvalid Mode = iota

	// ModeIssues expects exactly the issues declared in fixtures.
	ModeIssues

	// ModeNoIssues expects no issues at all, declarations are still parsed and validated.
	ModeNoIssues

	// ModeFileIssue expects a single file level issue on the first fixture with the given message.
	ModeFileIssue
)

func (m Mode) String() string {
	v, err := m.MarshalText()
	if err != nil {
		return fmt.Sprintf("mode-invalid(%d)", int(m))
	}

	return string(v)
}

var _ encoding.TextUnmarshaler = (*Mode)(nil)

func (m *Mode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "issues":
		*m = ModeIssues
	case "no-issues":
		*m = ModeNoIssues
	case "file-issue":
		*m = ModeFileIssue
	default:
		return fmt.Errorf("unknown verification mode %q", b)
	}

	return nil
}

func (m Mode) MarshalText() ([]byte, error) {
	switch m {
	case ModeIssues:
		return []byte("issues"), nil
	case ModeNoIssues:
		return []byte("no-issues"), nil
	case ModeFileIssue:
		return []byte("file-issue"), nil
	default:
		return nil, fmt.Errorf("cannot marshal invalid Mode(%d)", int(m))
	}
}

// TB is the part of testing.TB a Verifier needs.
type TB interface {
	Helper()
	Fatalf(format string, args ...any)
}

// Verifier is an immutable verification configuration.
type Verifier struct {
	cfg config
	err error
}

// New creates a Verifier. Configuration errors are reported by verification methods.
func New(opts ...Option) Verifier {
	cfg := config{
		compiling: true,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return Verifier{err: err}
		}
	}

	return Verifier{cfg: cfg}
}

// VerifyIssues fails the test unless checks raise exactly the issues declared in fixtures.
func (v Verifier) VerifyIssues(t TB) {
	t.Helper()
	v.verify(t, ModeIssues, "")
}

// VerifyNoIssues fails the test if checks raise any issue.
func (v Verifier) VerifyNoIssues(t TB) {
	t.Helper()
	v.verify(t, ModeNoIssues, "")
}

// VerifyIssueOnFile fails the test unless checks raise exactly one issue: a file level
// one on the first fixture with the given message.
func (v Verifier) VerifyIssueOnFile(t TB, message string) {
	t.Helper()
	v.verify(t, ModeFileIssue, message)
}

func (v Verifier) verify(t TB, mode Mode, message string) {
	t.Helper()

	o, err := v.Run(mode, message)
	if err != nil {
		t.Fatalf("setup error: %s", err)
		return
	}
	if !o.Passed {
		t.Fatalf("verification failed:\n%s", o.Report)
	}
}

// Run verifies fixtures in the given mode. The message is used in ModeFileIssue only.
//
// Returned errors are setup errors of [failure.Error] type, a failed verification is not an error.
func (v Verifier) Run(mode Mode, message string) (Outcome, error) {
	if v.err != nil {
		return Outcome{}, v.err
	}
	if len(v.cfg.files) == 0 {
		return Outcome{}, setupError("set files before calling any verification method")
	}
	if len(v.cfg.checks) == 0 {
		return Outcome{}, setupError("set checks before calling any verification method")
	}
	if _, err := mode.MarshalText(); err != nil {
		return Outcome{}, setupError("invalid verification mode %d", int(mode))
	}
	if mode == ModeFileIssue && message == "" {
		return Outcome{}, setupError("provide a message of the file level issue")
	}

	log := v.cfg.logger.With(slog.String("mode", mode.String()))

	sources, err := v.read()
	if err != nil {
		return Outcome{}, err
	}

	sets := make([]*expect.Set, 0, len(sources))
	for i, src := range sources {
		set, err := expect.Parse(src.Name, src.Content)
		if err != nil {
			return Outcome{}, err
		}
		if set.QuickFixes() && !v.cfg.quickFixes {
			return Outcome{}, failure.New(
				failure.Configuration,
				src.Name,
				0,
				"quick fixes are declared but not verified, add the WithQuickFixes option",
			)
		}

		switch {
		case mode == ModeNoIssues:
			set = expect.None(set.File, set.LineCount)
		case mode == ModeFileIssue && i == 0:
			set = expect.FileLevel(set.File, set.LineCount, message)
		case mode == ModeFileIssue:
			set = expect.None(set.File, set.LineCount)
		}
		sets = append(sets, set)
		log.Debug("expectations parsed", slog.String("file", src.Name), slog.Int("issues", set.Len()))
	}

	version := v.cfg.version
	if version == 0 {
		version = fixture.Latest()
	}
	tree, err := fixture.Load(sources, version, v.cfg.compiling)
	if err != nil {
		return Outcome{}, err
	}
	if len(tree.Errors) > 0 {
		log.Debug("fixture errors tolerated", slog.Int("errors", len(tree.Errors)))
	}

	actual, err := runner.Execute(tree, v.cfg.checks, log)
	if err != nil {
		return Outcome{}, err
	}

	res := match.Match(sets, actual)
	log.Debug(
		"match complete",
		slog.Int("matched", len(res.Matched)),
		slog.Int("mismatched", len(res.Mismatched)),
		slog.Int("missing", len(res.Missing)),
		slog.Int("unexpected", len(res.Unexpected)),
	)

	return report.Render(res), nil
}

func (v Verifier) read() ([]fixture.Source, error) {
	res := make([]fixture.Source, 0, len(v.cfg.files))
	for _, name := range v.cfg.files {
		var data []byte
		var err error
		if v.cfg.fsys != nil {
			data, err = fs.ReadFile(v.cfg.fsys, name)
		} else {
			data, err = os.ReadFile(name)
		}
		if err != nil {
			return nil, failure.Wrap(failure.Configuration, name, err, "read fixture")
		}

		res = append(res, fixture.Source{Name: name, Content: data})
	}

	return res, nil
}
