// Package annotation extracts expected-issue declarations from fixture comments.
//
// Declarations live in line comments only:
//
//	// Noncompliant[@(+|-)N] [[[attr=value(;attr=value)*]]] [{{message}} | {{/regex/}}] [; effort=N]
//	// Secondary@(+|-)N|@N [{{message}}]
//	// NoIssues
//	// fix@ID {{message}}
//	// edit@ID [[sc=N;ec=N(;sl=N;el=N)]] {{replacement}}
//
// Issue attributes are sc (startColumn), ec (endColumn), el (endLine), secondary, effortToFix
// and quickfixes. Edits take sc, ec, sl (startLine) and el.
//
// A marker word followed by anything but the end of the comment or a grammar token is prose,
// so "// Secondary storage is slow." declares nothing. Lowercase fix and edit markers need
// '@' right after them.
package annotation

import (
	"fmt"
	"regexp"
	"strconv"
)

// Kind of declaration.
type Kind int

const (
	kindInvalid Kind = iota
	KindIssue
	KindSecondary
	KindNoIssues
	KindFix
	KindEdit
)

func (k Kind) String() string {
	switch k {
	case KindIssue:
		return markerIssue
	case KindSecondary:
		return markerSecondary
	case KindNoIssues:
		return markerNoIssues
	case KindFix:
		return markerFix
	case KindEdit:
		return markerEdit
	default:
		return fmt.Sprintf("kind-invalid(%d)", k)
	}
}

// LineRef refers a line either absolutely or relative to some base line.
type LineRef struct {
	Value    int
	Relative bool
}

// Resolve computes the absolute line.
func (r LineRef) Resolve(base int) int {
	if r.Relative {
		return base + r.Value
	}

	return r.Value
}

func (r LineRef) String() string {
	if !r.Relative {
		return strconv.Itoa(r.Value)
	}
	if r.Value < 0 {
		return strconv.Itoa(r.Value)
	}

	return "+" + strconv.Itoa(r.Value)
}

// Message is an expected issue message: either a literal or a pattern.
type Message struct {
	Text    string
	Pattern *regexp.Regexp
}

// Literal creates a literal message.
func Literal(text string) *Message {
	return &Message{Text: text}
}

// Pattern creates a message matched with a regular expression that must cover the whole actual message.
func Pattern(expr string) (*Message, error) {
	re, err := regexp.Compile(`^(?:` + expr + `)$`)
	if err != nil {
		return nil, err
	}

	return &Message{Text: expr, Pattern: re}, nil
}

// Matches checks if the actual message satisfies this one. A nil message matches anything.
func (m *Message) Matches(actual string) bool {
	switch {
	case m == nil:
		return true
	case m.Pattern != nil:
		return m.Pattern.MatchString(actual)
	default:
		return m.Text == actual
	}
}

func (m *Message) String() string {
	switch {
	case m == nil:
		return "<any>"
	case m.Pattern != nil:
		return "/" + m.Text + "/"
	default:
		return strconv.Quote(m.Text)
	}
}

// Declaration is a single parsed annotation comment.
type Declaration struct {
	Kind Kind

	// Line is where the comment itself is.
	Line int

	// Offset is the line directive after the marker, nil when there is none.
	Offset *LineRef

	Message *Message
	Effort  *float64

	// StartColumn and EndColumn are zero when not declared.
	StartColumn int
	EndColumn   int
	EndLine     *LineRef

	// Secondaries come from the secondary attribute, they are relative to the comment line.
	Secondaries []LineRef

	// QuickFixes are ids of quick fixes the issue must offer. A single [NoQuickFixes] id
	// means the issue must offer none.
	QuickFixes []string

	// FixID is the quick fix a fix or edit declaration belongs to.
	FixID string

	// StartLine is the first line of an edit. Relative edit lines count from the issue line.
	StartLine *LineRef
}

// NoQuickFixes is the quickfixes id expecting an issue without any quick fix.
const NoQuickFixes = "!"
