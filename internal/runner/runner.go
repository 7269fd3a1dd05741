// Package runner executes checks over fixture trees and collects their issues.
package runner

import (
	"fmt"
	"log/slog"

	"github.com/sirkon/checkverify/internal/failure"
	"github.com/sirkon/checkverify/internal/fixture"
	"github.com/sirkon/checkverify/internal/issue"
)

// Check is a rule implementation: it visits a tree and returns issues found.
//
// A check may keep state within a single call but must not mutate the tree.
// Stateful checks must be instantiated per run.
type Check interface {
	// Name identifies the rule, it is used as [issue.Issue.Rule] when a check leaves it empty.
	Name() string
	Check(tree *fixture.Tree) ([]issue.Issue, error)
}

// Execute runs every check once in the given order and returns their issues
// sorted with [issue.Sort].
//
// Errors and panics of checks are [failure.Execution] errors.
func Execute(tree *fixture.Tree, checks []Check, logger *slog.Logger) ([]issue.Issue, error) {
	var r Reporter
	for _, c := range checks {
		if err := execute(tree, c, r.For(c.Name())); err != nil {
			return nil, err
		}
	}

	res := r.Issues()
	issue.Sort(res)
	logger.Debug("checks executed", slog.Int("checks", len(checks)), slog.Int("issues", len(res)))
	return res, nil
}

func execute(tree *fixture.Tree, c Check, rep *RuleReporter) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = failure.Wrap(failure.Execution, "", fmt.Errorf("panic: %v", r), "run check %s", c.Name())
		}
	}()

	issues, err := c.Check(tree)
	if err != nil {
		return failure.Wrap(failure.Execution, "", err, "run check %s", c.Name())
	}

	for _, is := range issues {
		rep.Report(is)
	}
	return nil
}

// Func turns a function into a check.
func Func(name string, f func(tree *fixture.Tree) ([]issue.Issue, error)) Check {
	return funcCheck{name: name, f: f}
}

type funcCheck struct {
	name string
	f    func(tree *fixture.Tree) ([]issue.Issue, error)
}

func (c funcCheck) Name() string {
	return c.name
}

func (c funcCheck) Check(tree *fixture.Tree) ([]issue.Issue, error) {
	return c.f(tree)
}
