package runner

import (
	"sync"

	"github.com/sirkon/checkverify/internal/issue"
)

// Reporter collects issues raised by checks.
type Reporter struct {
	mu     sync.Mutex
	issues []issue.Issue
}

// RuleReporter binds a Reporter to a fixed rule.
// It is used during an entire check execution to record issues
// without specifying the rule repeatedly.
type RuleReporter struct {
	parent *Reporter
	rule   string
}

// For returns a reporter that automatically sets the given rule for all issues produced through it.
func (r *Reporter) For(rule string) *RuleReporter {
	return &RuleReporter{parent: r, rule: rule}
}

// Report adds a new issue to the reporter.
func (r *Reporter) Report(is issue.Issue) {
	r.mu.Lock()
	r.issues = append(r.issues, is)
	r.mu.Unlock()
}

// Report records an issue under the bound rule. An issue with rule already set keeps it.
func (rr *RuleReporter) Report(is issue.Issue) {
	if is.Rule == "" {
		is.Rule = rr.rule
	}
	rr.parent.Report(is)
}

// Issues returns a snapshot of all collected issues.
func (r *Reporter) Issues() []issue.Issue {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]issue.Issue, len(r.issues))
	copy(out, r.issues)
	return out
}

// Len returns the number of collected issues.
func (r *Reporter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.issues)
}
