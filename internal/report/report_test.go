package report

import (
	"testing"

	"github.com/sirkon/checkverify/internal/expect"
	"github.com/sirkon/checkverify/internal/issue"
	"github.com/sirkon/checkverify/internal/match"
)

const fixture = `package p

func f() {
	g() // Noncompliant {{Remove this call}}
	h() // Noncompliant [[sc=2]] {{/Rename .*/}}
	g() // Noncompliant
	h() // Noncompliant {{cost}} ; effort=1
	g() // Noncompliant {{linked}}
	// Secondary@-1 {{declared}}
}
`

func TestRender(t *testing.T) {
	set, err := expect.Parse("a.go", []byte(fixture))
	if err != nil {
		t.Fatalf("parse expectations: %s", err)
	}

	actual := []issue.Issue{
		{Primary: issue.Location{File: "a.go", Line: 3}, Message: "Too long"},
		{Primary: issue.Location{File: "a.go", Line: 5, Column: 3}, Message: "Add a comment"},
		{Primary: issue.Location{File: "a.go", Line: 7}, Message: "cost"},
		{
			Primary:     issue.Location{File: "a.go", Line: 8},
			Message:     "linked",
			Secondaries: []issue.Secondary{{Location: issue.Location{File: "a.go", Line: 8}, Message: "used"}},
		},
		{Primary: issue.Location{File: "b.go"}, Message: "file level"},
	}

	o := Render(match.Match([]*expect.Set{set}, actual))
	if o.Passed {
		t.Fatal("failure expected")
	}

	want := `8 discrepancies (2 missing, 2 unexpected, 3 mismatched)
a.go:3: unexpected issue raised: "Too long"
a.go:4: expected issue not raised: "Remove this call"
a.go:5: message mismatch: expected /Rename .*/, got "Add a comment"
a.go:5: column mismatch: expected 2, got 3
a.go:6: expected issue not raised
a.go:7: effort mismatch: expected 1, got none
a.go:8: secondary message mismatch at 8: expected "declared", got "used"
b.go: unexpected issue raised: "file level"`
	if o.Report != want {
		t.Errorf("unexpected report\n--- got ---\n%s\n--- want ---\n%s", o.Report, want)
	}

	if got := Styled(o, false); got != want {
		t.Errorf("plain styled report must equal the report, got\n%s", got)
	}
}

func TestRenderPassed(t *testing.T) {
	set, err := expect.Parse("a.go", []byte("package p\n\nvar x = 1 // Noncompliant {{x}}\n"))
	if err != nil {
		t.Fatalf("parse expectations: %s", err)
	}

	o := Render(match.Match([]*expect.Set{set}, []issue.Issue{
		{Primary: issue.Location{File: "a.go", Line: 3}, Message: "x"},
	}))
	if !o.Passed || o.Report != "" || len(o.Discrepancies) != 0 {
		t.Errorf("clean pass expected, got %+v", o)
	}
	if got := Styled(o, false); got != "verification passed" {
		t.Errorf("got %q", got)
	}
}

func TestNoIssuesOutcome(t *testing.T) {
	o := Render(match.Match([]*expect.Set{expect.None("a.go", 3)}, []issue.Issue{
		{Primary: issue.Location{File: "a.go", Line: 2}, Message: "boom"},
	}))

	if o.Passed || o.Unexpected != 1 || len(o.Discrepancies) != 1 {
		t.Fatalf("exactly one unexpected issue expected, got %+v", o)
	}
	if got := o.Discrepancies[0].String(); got != `a.go:2: unexpected issue raised: "boom"` {
		t.Errorf("got %q", got)
	}
}
