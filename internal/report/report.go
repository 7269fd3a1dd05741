// Package report renders match results into verification outcomes.
package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sirkon/checkverify/internal/match"
)

// Kind of a discrepancy.
type Kind int

const (
	kindInvalid Kind = iota
	KindMissing
	KindUnexpected
	KindMismatch
)

// Discrepancy is a single line of a failure report.
type Discrepancy struct {
	Kind   Kind
	File   string
	Line   int
	Column int
	Text   string
}

func (d Discrepancy) String() string {
	if d.Line == 0 {
		return fmt.Sprintf("%s: %s", d.File, d.Text)
	}

	return fmt.Sprintf("%s:%d: %s", d.File, d.Line, d.Text)
}

// Outcome of a verification run.
type Outcome struct {
	Passed bool

	// Report is empty when the run passed.
	Report        string
	Discrepancies []Discrepancy

	Missing    int
	Unexpected int
	Mismatched int
}

// Render turns a match result into an outcome. Discrepancies are sorted by file, line and column.
func Render(res *match.Result) Outcome {
	o := Outcome{
		Passed:     res.Passed(),
		Missing:    len(res.Missing),
		Unexpected: len(res.Unexpected),
		Mismatched: len(res.Mismatched),
	}
	if o.Passed {
		return o
	}

	for _, e := range res.Missing {
		text := "expected issue not raised"
		if e.Message != nil {
			text += ": " + e.Message.String()
		}
		o.Discrepancies = append(o.Discrepancies, Discrepancy{
			Kind:   KindMissing,
			File:   e.File,
			Line:   e.Line,
			Column: e.Column,
			Text:   text,
		})
	}

	for _, a := range res.Unexpected {
		o.Discrepancies = append(o.Discrepancies, Discrepancy{
			Kind:   KindUnexpected,
			File:   a.Primary.File,
			Line:   a.Primary.Line,
			Column: a.Primary.Column,
			Text:   "unexpected issue raised: " + strconv.Quote(a.Message),
		})
	}

	for _, p := range res.Mismatched {
		for _, d := range p.Details {
			o.Discrepancies = append(o.Discrepancies, Discrepancy{
				Kind:   KindMismatch,
				File:   p.Expected.File,
				Line:   p.Expected.Line,
				Column: p.Actual.Primary.Column,
				Text:   detailText(d),
			})
		}
	}

	sort.SliceStable(o.Discrepancies, func(i, j int) bool {
		a, b := o.Discrepancies[i], o.Discrepancies[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})

	var buf strings.Builder
	buf.WriteString(o.Header())
	for _, d := range o.Discrepancies {
		buf.WriteByte('\n')
		buf.WriteString(d.String())
	}
	o.Report = buf.String()

	return o
}

// Header returns the summary line of the report.
func (o Outcome) Header() string {
	return fmt.Sprintf(
		"%d discrepancies (%d missing, %d unexpected, %d mismatched)",
		len(o.Discrepancies),
		o.Missing,
		o.Unexpected,
		o.Mismatched,
	)
}

func detailText(d match.Detail) string {
	switch d.Kind {
	case match.DetailSecondaryMessage:
		return fmt.Sprintf("secondary message mismatch at %d: expected %s, got %s", d.Line, d.Expected, d.Actual)
	default:
		return fmt.Sprintf("%s mismatch: expected %s, got %s", d.Kind, d.Expected, d.Actual)
	}
}
