package match

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirkon/checkverify/internal/expect"
	"github.com/sirkon/checkverify/internal/issue"
)

// DetailKind is a kind of difference between aligned issues.
type DetailKind int

const (
	detailInvalid DetailKind = iota
	DetailMessage
	DetailColumn
	DetailEndLine
	DetailEndColumn
	DetailSecondaries
	DetailSecondaryMessage
	DetailEffort
	DetailQuickFixes
)

func (k DetailKind) String() string {
	switch k {
	case DetailMessage:
		return "message"
	case DetailColumn:
		return "column"
	case DetailEndLine:
		return "end line"
	case DetailEndColumn:
		return "end column"
	case DetailSecondaries:
		return "secondary locations"
	case DetailSecondaryMessage:
		return "secondary message"
	case DetailEffort:
		return "effort"
	case DetailQuickFixes:
		return "quick fixes"
	default:
		return fmt.Sprintf("detail-invalid(%d)", k)
	}
}

// Detail is a single difference. Expected and Actual are rendered values.
type Detail struct {
	Kind DetailKind

	// Line is the secondary location line for DetailSecondaryMessage.
	Line int

	Expected string
	Actual   string
}

// compare checks declared details of the expected issue against the actual one.
// Undeclared details are not compared.
func compare(exp *expect.Issue, act issue.Issue) []Detail {
	var res []Detail

	if !exp.Message.Matches(act.Message) {
		res = append(res, Detail{
			Kind:     DetailMessage,
			Expected: exp.Message.String(),
			Actual:   strconv.Quote(act.Message),
		})
	}

	for _, c := range []struct {
		kind     DetailKind
		expected int
		actual   int
	}{
		{DetailColumn, exp.Column, act.Primary.Column},
		{DetailEndLine, exp.EndLine, act.Primary.EndLine},
		{DetailEndColumn, exp.EndColumn, act.Primary.EndColumn},
	} {
		if c.expected > 0 && c.expected != c.actual {
			res = append(res, Detail{
				Kind:     c.kind,
				Expected: strconv.Itoa(c.expected),
				Actual:   strconv.Itoa(c.actual),
			})
		}
	}

	res = append(res, compareSecondaries(exp, act)...)

	if exp.Effort != nil {
		actual := "none"
		if act.Cost != nil {
			actual = formatFloat(*act.Cost)
		}
		if act.Cost == nil || *act.Cost != *exp.Effort {
			res = append(res, Detail{
				Kind:     DetailEffort,
				Expected: formatFloat(*exp.Effort),
				Actual:   actual,
			})
		}
	}

	if exp.FixesDeclared {
		if d, ok := compareFixes(exp, act); !ok {
			res = append(res, d)
		}
	}

	return res
}

// compareFixes checks quick fixes pairwise: the message first, then every edit in order.
func compareFixes(exp *expect.Issue, act issue.Issue) (Detail, bool) {
	ok := len(exp.Fixes) == len(act.Fixes)
	for i := 0; ok && i < len(exp.Fixes); i++ {
		e, a := exp.Fixes[i], act.Fixes[i]
		if !e.Message.Matches(a.Message) || len(e.Edits) != len(a.Edits) {
			ok = false
			break
		}
		for j, edit := range e.Edits {
			if renderExpectedEdit(edit) != renderEdit(exp.File, a.Edits[j]) {
				ok = false
				break
			}
		}
	}
	if ok {
		return Detail{}, true
	}

	expected := make([]string, 0, len(exp.Fixes))
	for _, f := range exp.Fixes {
		edits := make([]string, 0, len(f.Edits))
		for _, e := range f.Edits {
			edits = append(edits, renderExpectedEdit(e))
		}
		expected = append(expected, f.Message.String()+" ["+strings.Join(edits, " ")+"]")
	}
	actual := make([]string, 0, len(act.Fixes))
	for _, f := range act.Fixes {
		edits := make([]string, 0, len(f.Edits))
		for _, e := range f.Edits {
			edits = append(edits, renderEdit(exp.File, e))
		}
		actual = append(actual, strconv.Quote(f.Message)+" ["+strings.Join(edits, " ")+"]")
	}

	return Detail{
		Kind:     DetailQuickFixes,
		Expected: "[" + strings.Join(expected, ", ") + "]",
		Actual:   "[" + strings.Join(actual, ", ") + "]",
	}, false
}

func renderExpectedEdit(e expect.Edit) string {
	return fmt.Sprintf("%d:%d-%d:%d %q", e.Line, e.Column, e.EndLine, e.EndColumn, e.NewText)
}

// renderEdit renders an actual edit, edits of other files are prefixed with their file name.
func renderEdit(file string, e issue.Edit) string {
	l := e.Location
	res := fmt.Sprintf("%d:%d-%d:%d %q", l.Line, l.Column, l.EndLine, l.EndColumn, e.NewText)
	if l.File != file {
		res = l.File + ":" + res
	}

	return res
}

func compareSecondaries(exp *expect.Issue, act issue.Issue) []Detail {
	expLines := make([]string, 0, len(exp.Secondaries))
	for _, s := range exp.Secondaries {
		expLines = append(expLines, strconv.Itoa(s.Line))
	}
	actLines := make([]string, 0, len(act.Secondaries))
	for _, s := range act.Secondaries {
		if s.Location.File != exp.File {
			actLines = append(actLines, s.Location.File+":"+strconv.Itoa(s.Location.Line))
			continue
		}
		actLines = append(actLines, strconv.Itoa(s.Location.Line))
	}

	if strings.Join(expLines, " ") != strings.Join(actLines, " ") {
		return []Detail{{
			Kind:     DetailSecondaries,
			Expected: "[" + strings.Join(expLines, " ") + "]",
			Actual:   "[" + strings.Join(actLines, " ") + "]",
		}}
	}

	var res []Detail
	for i, s := range exp.Secondaries {
		actual := act.Secondaries[i].Message
		if s.Message.Matches(actual) {
			continue
		}
		res = append(res, Detail{
			Kind:     DetailSecondaryMessage,
			Line:     s.Line,
			Expected: s.Message.String(),
			Actual:   strconv.Quote(actual),
		})
	}

	return res
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
