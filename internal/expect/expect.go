// Package expect folds parsed annotations into per-file expectation sets.
package expect

import (
	"slices"

	"github.com/sirkon/rbtree"

	"github.com/sirkon/checkverify/internal/annotation"
	"github.com/sirkon/checkverify/internal/issue"
)

// Location is an expected secondary location.
type Location struct {
	Line    int
	Message *annotation.Message
}

// Issue is an expected issue. Zero column and end values mean they were not declared.
type Issue struct {
	File      string
	Line      int
	Column    int
	EndLine   int
	EndColumn int

	Message     *annotation.Message
	Effort      *float64
	Secondaries []Location

	// Fixes are compared only when FixesDeclared is set. An empty list then expects no quick fixes.
	Fixes         []Fix
	FixesDeclared bool

	// Declared is the line of the comment declaring the issue.
	Declared int
}

// Fix is an expected quick fix.
type Fix struct {
	ID      string
	Message *annotation.Message
	Edits   []Edit
}

// Edit is an expected text edit of a quick fix. The end column is exclusive.
type Edit struct {
	Line      int
	Column    int
	EndLine   int
	EndColumn int
	NewText   string
}

// Set is the expectation set of a single fixture file.
type Set struct {
	File      string
	LineCount int

	// NoIssues is set when the file is asserted to be clean.
	NoIssues bool

	issues     *rbtree.Tree[*lineIssues]
	lines      []int
	total      int
	quickFixes bool
}

// lineIssues keeps expectations of a single line.
type lineIssues struct {
	line   int
	issues []*Issue
}

func (l *lineIssues) Cmp(other *lineIssues) int {
	switch {
	case l.line < other.line:
		return -1
	case l.line > other.line:
		return 1
	default:
		return 0
	}
}

func newSet(file string, lineCount int) *Set {
	return &Set{
		File:      file,
		LineCount: lineCount,
		issues:    rbtree.New[*lineIssues](),
	}
}

// None creates a set expecting no issues at all.
func None(file string, lineCount int) *Set {
	s := newSet(file, lineCount)
	s.NoIssues = true

	return s
}

// FileLevel creates a set expecting a single issue on the file as a whole.
func FileLevel(file string, lineCount int, message string) *Set {
	s := newSet(file, lineCount)
	s.add(&Issue{
		File:    file,
		Message: annotation.Literal(message),
	})

	return s
}

// Lines returns lines having expectations in ascending order.
func (s *Set) Lines() []int {
	return s.lines
}

// At returns expectations of the line in declaration order.
func (s *Set) At(line int) []*Issue {
	res := s.issues.Search(&lineIssues{line: line})
	if res == nil {
		return nil
	}

	return res.issues
}

// Len returns the total number of expected issues.
func (s *Set) Len() int {
	return s.total
}

// QuickFixes checks if any issue declares expected quick fixes.
func (s *Set) QuickFixes() bool {
	return s.quickFixes
}

// Empty checks if no issues are expected.
func (s *Set) Empty() bool {
	return s.total == 0
}

func (s *Set) add(is *Issue) {
	node := &lineIssues{line: is.Line}
	if got := s.issues.InsertReturn(node); got != node {
		node = got
	} else {
		s.lines = insertSorted(s.lines, is.Line)
	}

	node.issues = append(node.issues, is)
	s.total++
	if is.FixesDeclared {
		s.quickFixes = true
	}
}

func insertSorted(lines []int, line int) []int {
	i := len(lines)
	for i > 0 && lines[i-1] > line {
		i--
	}

	return slices.Insert(lines, i, line)
}

// Parse builds the expectation set right from the fixture source.
func Parse(file string, src []byte) (*Set, error) {
	decls, err := annotation.Parse(file, src)
	if err != nil {
		return nil, err
	}

	return Build(file, issue.LineCount(src), decls)
}
