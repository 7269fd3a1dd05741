// Package checks provides bundled error handling checks.
//
// Three of them are go/analysis analyzers, HandleInNonErrorFunc is a native check.
// All of them share known wrap, logger and abandon functions that can be extended with [Config].
package checks

import (
	"fmt"

	"github.com/sirkon/checkverify/internal/cerrules"
	"github.com/sirkon/checkverify/internal/runner"
)

// New creates a fresh check of the rule.
func New(rule cerrules.Rule, cfg *Config) (runner.Check, error) {
	known := newKnownFuncs(cfg)

	switch rule {
	case cerrules.CER000NoSilentDrop:
		return runner.FromAnalyzer(newNoSilentDrop(known)), nil
	case cerrules.CER050HandleInNonErrorFunc:
		return newHandleInNonErrorFunc(known), nil
	case cerrules.CER102AnnotationFormatMustEndWithW:
		return runner.FromAnalyzer(newAnnotationFormat(known)), nil
	case cerrules.CER150NoLogAndReturn:
		return runner.FromAnalyzer(newNoLogAndReturn(known)), nil
	default:
		return nil, fmt.Errorf("no check for rule %s", rule)
	}
}

// All creates checks of all rules.
func All(cfg *Config) []runner.Check {
	var res []runner.Check
	for _, rule := range cerrules.All() {
		c, err := New(rule, cfg)
		if err != nil {
			panic(fmt.Errorf("bundled rule %s: %w", rule, err))
		}
		res = append(res, c)
	}

	return res
}

// ByCode creates checks of rules given by codes or names. No codes means all rules.
func ByCode(cfg *Config, codes ...string) ([]runner.Check, error) {
	if len(codes) == 0 {
		return All(cfg), nil
	}

	var res []runner.Check
	for _, code := range codes {
		rule, ok := cerrules.Lookup(code)
		if !ok {
			return nil, fmt.Errorf("unknown rule %q", code)
		}

		c, err := New(rule, cfg)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}

	return res, nil
}
