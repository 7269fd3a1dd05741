// Package issue defines the records produced by checks during a verification run.
package issue

import (
	"bytes"
	"fmt"
	"sort"
)

// Location points to a region of a fixture file. Lines and columns are 1-based,
// columns are byte offsets like in go/token.
//
// Line 0 means the issue belongs to the file as a whole. Column 0 means the whole line.
type Location struct {
	File      string
	Line      int
	Column    int
	EndLine   int
	EndColumn int
}

// IsFileLevel reports whether the location does not point to any line.
func (l Location) IsFileLevel() bool {
	return l.Line == 0
}

func (l Location) String() string {
	switch {
	case l.IsFileLevel():
		return l.File
	case l.Column == 0:
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
}

// Secondary is a supporting location referenced by an issue explanation.
type Secondary struct {
	Location Location
	Message  string
}

// Issue is a single finding raised by a check.
type Issue struct {
	// Rule identifies the check that raised the issue.
	Rule string

	Primary     Location
	Message     string
	Secondaries []Secondary

	// Cost is an effort to fix. It is nil for checks with constant remediation.
	Cost *float64

	// Fixes are quick fixes offered for the issue.
	Fixes []Fix
}

// Fix is a quick fix: a set of edits applied together.
type Fix struct {
	Message string
	Edits   []Edit
}

// Edit replaces the text of the location with NewText. An empty location inserts text.
type Edit struct {
	Location Location
	NewText  string
}

// Cost is a shortcut to fill [Issue.Cost].
func Cost(v float64) *float64 {
	return &v
}

// Sort orders issues by file, primary line, primary column and rule.
// Issues equal by these keys keep their emission order.
func Sort(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i].Primary, issues[j].Primary
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return issues[i].Rule < issues[j].Rule
	})
}

// LineCount returns the number of lines in the source, a trailing line without a newline counts.
func LineCount(src []byte) int {
	n := bytes.Count(src, []byte{'\n'})
	if len(src) > 0 && src[len(src)-1] != '\n' {
		n++
	}

	return n
}
