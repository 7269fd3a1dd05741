package checkverify

import (
	"io/fs"
	"log/slog"
	"slices"

	"golang.org/x/tools/go/analysis"

	"github.com/sirkon/checkverify/internal/failure"
	"github.com/sirkon/checkverify/internal/fixture"
	"github.com/sirkon/checkverify/internal/runner"
)

// Option configures a Verifier.
type Option func(c *config) error

type config struct {
	files      []string
	fsys       fs.FS
	checks     []runner.Check
	version    fixture.Version
	compiling  bool
	quickFixes bool
	logger     *slog.Logger
}

// OnFile sets the single fixture file to verify.
func OnFile(path string) Option {
	return OnFiles(path)
}

// OnFiles sets fixture files verified together as a single package.
func OnFiles(paths ...string) Option {
	return func(c *config) error {
		if c.files != nil {
			return setupError("do not set files multiple times")
		}
		if len(paths) == 0 {
			return setupError("provide at least one file")
		}

		seen := map[string]struct{}{}
		for _, p := range paths {
			if _, ok := seen[p]; ok {
				return failure.New(failure.Configuration, p, 0, "file %s was already added", p)
			}
			seen[p] = struct{}{}
		}

		c.files = slices.Clone(paths)
		return nil
	}
}

// FromFS makes fixture files to be read from the given file system, an embed.FS for instance.
func FromFS(fsys fs.FS) Option {
	return func(c *config) error {
		if c.fsys != nil {
			return setupError("do not set the file system multiple times")
		}

		c.fsys = fsys
		return nil
	}
}

// WithCheck sets the single check to run.
func WithCheck(check Check) Option {
	return WithChecks(check)
}

// WithChecks sets checks to run, each of them runs once in the given order.
func WithChecks(checks ...Check) Option {
	return func(c *config) error {
		if c.checks != nil {
			return setupError("do not set checks multiple times")
		}
		if len(checks) == 0 {
			return setupError("provide at least one check")
		}
		for _, check := range checks {
			if check == nil {
				return setupError("nil check")
			}
		}

		c.checks = slices.Clone(checks)
		return nil
	}
}

// WithAnalyzer sets the single analyzer to run as a check.
func WithAnalyzer(a *analysis.Analyzer) Option {
	return WithAnalyzers(a)
}

// WithAnalyzers sets analyzers to run as checks.
func WithAnalyzers(analyzers ...*analysis.Analyzer) Option {
	checks := make([]Check, 0, len(analyzers))
	for _, a := range analyzers {
		if a == nil {
			return func(c *config) error {
				return setupError("nil analyzer")
			}
		}
		checks = append(checks, runner.FromAnalyzer(a))
	}

	return WithChecks(checks...)
}

// WithGoVersion sets the language minor version fixtures are type-checked with: 21 stands for go1.21.
// The toolchain version is used by default.
func WithGoVersion(minor int) Option {
	return func(c *config) error {
		if c.version != 0 {
			return setupError("do not set go version multiple times")
		}

		v := fixture.Version(minor)
		if err := v.Validate(); err != nil {
			return err
		}

		c.version = v
		return nil
	}
}

// NonCompiling makes parse and type errors in fixtures tolerated.
func NonCompiling() Option {
	return func(c *config) error {
		c.compiling = false
		return nil
	}
}

// WithQuickFixes enables verification of quick fixes declared with the quickfixes attribute
// and fix@ and edit@ comments. Fixtures declaring quick fixes are a setup error without it.
func WithQuickFixes() Option {
	return func(c *config) error {
		c.quickFixes = true
		return nil
	}
}

// WithLogger sets the logger for debug records of verification stages.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return setupError("nil logger")
		}

		c.logger = logger
		return nil
	}
}

func setupError(format string, a ...any) error {
	return failure.New(failure.Configuration, "", 0, format, a...)
}
