// Package suite runs declarative verification suites: many fixture sets checked with bundled checks.
package suite

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/sirkon/checkverify"
	"github.com/sirkon/checkverify/internal/checks"
	"github.com/sirkon/checkverify/internal/failure"
	"github.com/sirkon/checkverify/internal/fixture"
)

// Suite is a set of verification cases. Paths are relative to the suite file.
type Suite struct {
	Config string `yaml:"config" toml:"config"`
	Cases  []Case `yaml:"cases" toml:"cases"`

	dir    string
	checks *checks.Config
}

// Case describes a single verification run.
type Case struct {
	Name  string   `yaml:"name" toml:"name"`
	Files []string `yaml:"files" toml:"files"`

	// Checks are rule codes or names, all bundled checks are run if empty.
	Checks []string `yaml:"checks" toml:"checks"`

	Go           fixture.Version  `yaml:"go" toml:"go"`
	NonCompiling bool             `yaml:"non-compiling" toml:"non-compiling"`
	QuickFixes   bool             `yaml:"quick-fixes" toml:"quick-fixes"`
	Expect       checkverify.Mode `yaml:"expect" toml:"expect"`

	// Message of the file level issue, used with file-issue expectations only.
	Message string `yaml:"message" toml:"message"`
}

// Load reads a suite in YAML or TOML, the format is chosen by the file extension.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, failure.Wrap(failure.Configuration, path, err, "read suite")
	}

	var s Suite
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil {
			return nil, failure.Wrap(failure.Configuration, path, err, "decode yaml suite")
		}
	case ".toml":
		md, err := toml.Decode(string(data), &s)
		if err != nil {
			return nil, failure.Wrap(failure.Configuration, path, err, "decode toml suite")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, failure.New(failure.Configuration, path, 0, "unknown suite keys %v", undecoded)
		}
	default:
		return nil, failure.New(failure.Configuration, path, 0, "unsupported suite format %q", ext)
	}

	s.dir = filepath.Dir(path)
	if err := s.validate(path); err != nil {
		return nil, err
	}

	if s.Config != "" {
		cfg, err := checks.LoadConfig(s.path(s.Config))
		if err != nil {
			return nil, failure.Wrap(failure.Configuration, path, err, "load check config")
		}
		s.checks = cfg
	}

	return &s, nil
}

func (s *Suite) validate(path string) error {
	if len(s.Cases) == 0 {
		return failure.New(failure.Configuration, path, 0, "suite has no cases")
	}

	names := map[string]struct{}{}
	for i := range s.Cases {
		c := &s.Cases[i]
		if c.Name == "" {
			return failure.New(failure.Configuration, path, 0, "case #%d has no name", i+1)
		}
		if _, ok := names[c.Name]; ok {
			return failure.New(failure.Configuration, path, 0, "duplicate case %s", c.Name)
		}
		names[c.Name] = struct{}{}

		if len(c.Files) == 0 {
			return failure.New(failure.Configuration, path, 0, "case %s has no files", c.Name)
		}
		if c.Expect == 0 {
			c.Expect = checkverify.ModeIssues
		}
		if c.Expect == checkverify.ModeFileIssue && c.Message == "" {
			return failure.New(failure.Configuration, path, 0, "case %s expects a file issue without a message", c.Name)
		}
		if c.Go != 0 {
			if err := c.Go.Validate(); err != nil {
				return fmt.Errorf("case %s: %w", c.Name, err)
			}
		}
	}

	return nil
}

func (s *Suite) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}

	return filepath.Join(s.dir, name)
}

// Result is an outcome of a case. Err is set for cases that could not be verified.
type Result struct {
	Case    string
	Outcome checkverify.Outcome
	Err     error
}

// Passed checks if the case has been verified successfully.
func (r Result) Passed() bool {
	return r.Err == nil && r.Outcome.Passed
}

// Run verifies cases concurrently, at most jobs at a time. Results keep the order of cases.
//
// A failing case does not stop others. The returned error is set only when the context
// was cancelled before all cases ran.
func (s *Suite) Run(ctx context.Context, jobs int, logger *slog.Logger) ([]Result, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	results := make([]Result, len(s.Cases))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(s.Cases)))
	for i, c := range s.Cases {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			results[i] = s.run(c, logger.With(slog.String("case", c.Name)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("run suite: %w", err)
	}

	return results, nil
}

func (s *Suite) run(c Case, logger *slog.Logger) Result {
	res := Result{Case: c.Name}

	cs, err := checks.ByCode(s.checks, c.Checks...)
	if err != nil {
		res.Err = failure.Wrap(failure.Configuration, "", err, "case %s", c.Name)
		return res
	}

	files := make([]string, 0, len(c.Files))
	for _, f := range c.Files {
		files = append(files, s.path(f))
	}

	opts := []checkverify.Option{
		checkverify.OnFiles(files...),
		checkverify.WithChecks(cs...),
		checkverify.WithLogger(logger),
	}
	if c.Go != 0 {
		opts = append(opts, checkverify.WithGoVersion(int(c.Go)))
	}
	if c.NonCompiling {
		opts = append(opts, checkverify.NonCompiling())
	}
	if c.QuickFixes {
		opts = append(opts, checkverify.WithQuickFixes())
	}

	res.Outcome, res.Err = checkverify.New(opts...).Run(c.Expect, c.Message)
	if res.Err != nil {
		logger.Debug("case setup failed", slog.Any("err", res.Err))
	}

	return res
}

// Failed returns results of cases that did not pass.
func Failed(results []Result) []Result {
	var res []Result
	for _, r := range results {
		if !r.Passed() {
			res = append(res, r)
		}
	}

	return res
}

// ExitCode returns the most severe exit code of results: 0 when all passed,
// 1 for verification failures, a class code for setup errors.
func ExitCode(results []Result) int {
	var code int
	for _, r := range results {
		switch {
		case r.Err != nil:
			if class, ok := failure.ClassOf(r.Err); ok {
				code = max(code, class.ExitCode())
			} else {
				code = max(code, failure.Execution.ExitCode())
			}
		case !r.Outcome.Passed:
			code = max(code, 1)
		}
	}

	return code
}
