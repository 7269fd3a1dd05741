// Package match reconciles expected issues with the issues checks actually raised.
package match

import (
	"sort"

	"github.com/sirkon/checkverify/internal/expect"
	"github.com/sirkon/checkverify/internal/issue"
)

// Result of a match. Its collections are disjoint: every expected and every actual issue
// ends up in exactly one of them.
type Result struct {
	// Matched pairs agree in every declared detail.
	Matched []Pair

	// Mismatched pairs were aligned by their position on a line but differ in details.
	Mismatched []Pair

	// Missing are expected issues nothing was raised for.
	Missing []*expect.Issue

	// Unexpected are actual issues nobody declared.
	Unexpected []issue.Issue
}

// Passed checks if there are no discrepancies.
func (r *Result) Passed() bool {
	return len(r.Missing) == 0 && len(r.Unexpected) == 0 && len(r.Mismatched) == 0
}

// Pair is an expected issue aligned with an actual one.
type Pair struct {
	Expected *expect.Issue
	Actual   issue.Issue

	// Details lists differences, it is empty for matched pairs.
	Details []Detail
}

// Match pairs expected issues with actual ones.
//
// Issues are grouped by file and primary line. On each line the i-th expected issue in
// declaration order is paired with the i-th actual issue in emission order, the leftovers
// are missing or unexpected. Actual issues of files without an expectation set are unexpected.
// Files asserted clean make every actual issue of theirs unexpected.
func Match(sets []*expect.Set, actual []issue.Issue) *Result {
	byFile := map[string]map[int][]issue.Issue{}
	for _, is := range actual {
		lines, ok := byFile[is.Primary.File]
		if !ok {
			lines = map[int][]issue.Issue{}
			byFile[is.Primary.File] = lines
		}
		lines[is.Primary.Line] = append(lines[is.Primary.Line], is)
	}

	res := &Result{}
	known := map[string]struct{}{}
	for _, set := range sets {
		known[set.File] = struct{}{}
		matchFile(res, set, byFile[set.File])
	}

	var foreign []string
	for file := range byFile {
		if _, ok := known[file]; !ok {
			foreign = append(foreign, file)
		}
	}
	sort.Strings(foreign)
	for _, file := range foreign {
		for _, line := range sortedLines(byFile[file], nil) {
			res.Unexpected = append(res.Unexpected, byFile[file][line]...)
		}
	}

	return res
}

func matchFile(res *Result, set *expect.Set, actual map[int][]issue.Issue) {
	if set.NoIssues {
		for _, line := range sortedLines(actual, nil) {
			res.Unexpected = append(res.Unexpected, actual[line]...)
		}
		return
	}

	for _, line := range sortedLines(actual, set.Lines()) {
		expected := set.At(line)
		raised := actual[line]

		n := min(len(expected), len(raised))
		for i := 0; i < n; i++ {
			p := Pair{
				Expected: expected[i],
				Actual:   raised[i],
				Details:  compare(expected[i], raised[i]),
			}
			if len(p.Details) == 0 {
				res.Matched = append(res.Matched, p)
			} else {
				res.Mismatched = append(res.Mismatched, p)
			}
		}
		res.Missing = append(res.Missing, expected[n:]...)
		res.Unexpected = append(res.Unexpected, raised[n:]...)
	}
}

// sortedLines returns the union of actual issue lines and extra lines in ascending order.
func sortedLines(actual map[int][]issue.Issue, extra []int) []int {
	seen := map[int]struct{}{}
	var res []int
	for line := range actual {
		seen[line] = struct{}{}
		res = append(res, line)
	}
	for _, line := range extra {
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		res = append(res, line)
	}
	sort.Ints(res)

	return res
}
