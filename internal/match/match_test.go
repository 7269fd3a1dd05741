package match

import (
	"reflect"
	"testing"

	"github.com/sirkon/deepequal"

	"github.com/sirkon/checkverify/internal/expect"
	"github.com/sirkon/checkverify/internal/issue"
)

func set(t *testing.T, src string) *expect.Set {
	t.Helper()

	s, err := expect.Parse("fixture.go", []byte(src))
	if err != nil {
		t.Fatalf("parse expectations: %s", err)
	}

	return s
}

func at(line int, msg string) issue.Issue {
	return issue.Issue{
		Rule:    "rule",
		Primary: issue.Location{File: "fixture.go", Line: line},
		Message: msg,
	}
}

// summary is a comparable rendition of a result.
type summary struct {
	Matched    []int
	Mismatched []string
	Missing    []int
	Unexpected []string
}

func summarize(r *Result) summary {
	var s summary
	for _, p := range r.Matched {
		s.Matched = append(s.Matched, p.Expected.Line)
	}
	for _, p := range r.Mismatched {
		for _, d := range p.Details {
			s.Mismatched = append(s.Mismatched, d.Kind.String()+": "+d.Expected+" vs "+d.Actual)
		}
	}
	for _, e := range r.Missing {
		s.Missing = append(s.Missing, e.Line)
	}
	for _, a := range r.Unexpected {
		s.Unexpected = append(s.Unexpected, a.Primary.String()+" "+a.Message)
	}

	return s
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		actual []issue.Issue
		want   summary
	}{
		{
			name: "empty both ways",
			src:  "package p\n",
			want: summary{},
		},
		{
			name:   "nested example",
			src:    "package p\nfunc f(x, y bool) {\n\t// Noncompliant@+1 {{Nested too deeply}}\n\tif y {}\n}\n",
			actual: []issue.Issue{at(4, "Nested too deeply")},
			want:   summary{Matched: []int{4}},
		},
		{
			name:   "location only",
			src:    "package p\nvar x = 1 // Noncompliant\n",
			actual: []issue.Issue{at(2, "any text at all")},
			want:   summary{Matched: []int{2}},
		},
		{
			name:   "pattern match",
			src:    "package p\nvar x = 1 // Noncompliant {{/Remove this .*/}}\n",
			actual: []issue.Issue{at(2, "Remove this unused import")},
			want:   summary{Matched: []int{2}},
		},
		{
			name:   "pattern mismatch",
			src:    "package p\nvar x = 1 // Noncompliant {{/Remove this .*/}}\n",
			actual: []issue.Issue{at(2, "Add a comment")},
			want:   summary{Mismatched: []string{`message: /Remove this .*/ vs "Add a comment"`}},
		},
		{
			name:   "missing and unexpected",
			src:    "package p\nvar x = 1 // Noncompliant {{here}}\nvar y = 2\n",
			actual: []issue.Issue{at(3, "there")},
			want:   summary{Missing: []int{2}, Unexpected: []string{"fixture.go:3 there"}},
		},
		{
			name: "order preserving pairing",
			src:  "package p\nvar x = 1 // Noncompliant {{a}}\n// Noncompliant@-1 {{b}}\n",
			actual: []issue.Issue{
				at(2, "b"),
				at(2, "a"),
			},
			want: summary{Mismatched: []string{`message: "a" vs "b"`, `message: "b" vs "a"`}},
		},
		{
			name: "identical messages pair in order",
			src:  "package p\nvar x = 1 // Noncompliant {{same}}\n// Noncompliant@-1 {{same}}\n",
			actual: []issue.Issue{
				at(2, "same"),
				at(2, "same"),
			},
			want: summary{Matched: []int{2, 2}},
		},
		{
			name: "more actual than expected on a line",
			src:  "package p\nvar x = 1 // Noncompliant {{a}}\n",
			actual: []issue.Issue{
				at(2, "a"),
				at(2, "a"),
			},
			want: summary{Matched: []int{2}, Unexpected: []string{"fixture.go:2 a"}},
		},
		{
			name: "no issues marker",
			src:  "package p // NoIssues\nvar x = 1\n",
			actual: []issue.Issue{
				at(2, "raised"),
			},
			want: summary{Unexpected: []string{"fixture.go:2 raised"}},
		},
		{
			name: "issue in a foreign file",
			src:  "package p\n",
			actual: []issue.Issue{
				{Primary: issue.Location{File: "other.go", Line: 1}, Message: "elsewhere"},
			},
			want: summary{Unexpected: []string{"other.go:1 elsewhere"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Match([]*expect.Set{set(t, tt.src)}, tt.actual)

			got := summarize(res)
			if !reflect.DeepEqual(tt.want, got) {
				deepequal.SideBySide(t, "result", tt.want, got)
			}
			wantPassed := len(tt.want.Missing) == 0 && len(tt.want.Unexpected) == 0 && len(tt.want.Mismatched) == 0
			if res.Passed() != wantPassed {
				t.Errorf("got passed %v, want %v", res.Passed(), wantPassed)
			}
		})
	}
}

func TestMatchDetails(t *testing.T) {
	src := `package p

func f() {
	g() // Noncompliant [[sc=2;ec=5;secondary=+1]] {{call}} ; effort=2
	h()
	g() // Noncompliant {{second}}
	// Secondary@+1 {{used here}}
	h()
}
`
	tests := []struct {
		name   string
		actual []issue.Issue
		want   []string
	}{
		{
			name: "all match",
			actual: []issue.Issue{
				{
					Primary:     issue.Location{File: "fixture.go", Line: 4, Column: 2, EndLine: 4, EndColumn: 5},
					Message:     "call",
					Cost:        issue.Cost(2),
					Secondaries: []issue.Secondary{{Location: issue.Location{File: "fixture.go", Line: 5}}},
				},
				{
					Primary:     issue.Location{File: "fixture.go", Line: 6},
					Message:     "second",
					Secondaries: []issue.Secondary{{Location: issue.Location{File: "fixture.go", Line: 8}, Message: "used here"}},
				},
			},
			want: nil,
		},
		{
			name: "everything differs",
			actual: []issue.Issue{
				{
					Primary:     issue.Location{File: "fixture.go", Line: 4, Column: 3, EndLine: 4, EndColumn: 9},
					Message:     "call",
					Cost:        issue.Cost(3),
					Secondaries: []issue.Secondary{{Location: issue.Location{File: "fixture.go", Line: 4}}},
				},
				{
					Primary:     issue.Location{File: "fixture.go", Line: 6},
					Message:     "second",
					Secondaries: []issue.Secondary{{Location: issue.Location{File: "fixture.go", Line: 8}, Message: "declared here"}},
				},
			},
			want: []string{
				"column: 2 vs 3",
				"end column: 5 vs 9",
				"secondary locations: [5] vs [4]",
				"effort: 2 vs 3",
				`secondary message: "used here" vs "declared here"`,
			},
		},
		{
			name: "no cost and no secondaries",
			actual: []issue.Issue{
				{
					Primary: issue.Location{File: "fixture.go", Line: 4, Column: 2, EndLine: 4, EndColumn: 5},
					Message: "call",
				},
				{
					Primary: issue.Location{File: "fixture.go", Line: 6},
					Message: "second",
					Secondaries: []issue.Secondary{
						{Location: issue.Location{File: "other.go", Line: 8}, Message: "used here"},
					},
				},
			},
			want: []string{
				"secondary locations: [5] vs []",
				"effort: 2 vs none",
				"secondary locations: [8] vs [other.go:8]",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Match([]*expect.Set{set(t, src)}, tt.actual)

			got := summarize(res).Mismatched
			if !reflect.DeepEqual(tt.want, got) {
				deepequal.SideBySide(t, "details", tt.want, got)
			}
			if len(res.Missing) != 0 || len(res.Unexpected) != 0 {
				t.Errorf("all issues must be paired, got %d missing and %d unexpected", len(res.Missing), len(res.Unexpected))
			}
		})
	}
}

func TestMatchQuickFixes(t *testing.T) {
	src := `package p

func f() {
	g() // Noncompliant [[quickfixes=qf1]]
	h() // Noncompliant [[quickfixes=!]]
	k() // Noncompliant
}
// fix@qf1 {{Use h}}
// edit@qf1 [[sc=2;ec=3]] {{h}}
`
	edit := func(file string, col, endCol int, text string) issue.Edit {
		return issue.Edit{
			Location: issue.Location{File: file, Line: 4, Column: col, EndLine: 4, EndColumn: endCol},
			NewText:  text,
		}
	}
	actual := func(g []issue.Fix, h []issue.Fix) []issue.Issue {
		return []issue.Issue{
			{Primary: issue.Location{File: "fixture.go", Line: 4}, Fixes: g},
			{Primary: issue.Location{File: "fixture.go", Line: 5}, Fixes: h},
			{
				Primary: issue.Location{File: "fixture.go", Line: 6},
				Fixes:   []issue.Fix{{Message: "anything goes"}},
			},
		}
	}

	tests := []struct {
		name   string
		actual []issue.Issue
		want   []string
	}{
		{
			name:   "all match",
			actual: actual([]issue.Fix{{Message: "Use h", Edits: []issue.Edit{edit("fixture.go", 2, 3, "h")}}}, nil),
			want:   nil,
		},
		{
			name:   "missing fix",
			actual: actual(nil, nil),
			want:   []string{`quick fixes: ["Use h" [4:2-4:3 "h"]] vs []`},
		},
		{
			name: "unexpected fix",
			actual: actual(
				[]issue.Fix{{Message: "Use h", Edits: []issue.Edit{edit("fixture.go", 2, 3, "h")}}},
				[]issue.Fix{{Message: "Use k"}},
			),
			want: []string{`quick fixes: [] vs ["Use k" []]`},
		},
		{
			name:   "wrong message",
			actual: actual([]issue.Fix{{Message: "Use k", Edits: []issue.Edit{edit("fixture.go", 2, 3, "h")}}}, nil),
			want:   []string{`quick fixes: ["Use h" [4:2-4:3 "h"]] vs ["Use k" [4:2-4:3 "h"]]`},
		},
		{
			name:   "wrong replacement",
			actual: actual([]issue.Fix{{Message: "Use h", Edits: []issue.Edit{edit("fixture.go", 2, 3, "k")}}}, nil),
			want:   []string{`quick fixes: ["Use h" [4:2-4:3 "h"]] vs ["Use h" [4:2-4:3 "k"]]`},
		},
		{
			name:   "edit in another file",
			actual: actual([]issue.Fix{{Message: "Use h", Edits: []issue.Edit{edit("other.go", 2, 3, "h")}}}, nil),
			want:   []string{`quick fixes: ["Use h" [4:2-4:3 "h"]] vs ["Use h" [other.go:4:2-4:3 "h"]]`},
		},
		{
			name: "extra edit",
			actual: actual([]issue.Fix{{Message: "Use h", Edits: []issue.Edit{
				edit("fixture.go", 2, 3, "h"),
				edit("fixture.go", 1, 1, "// "),
			}}}, nil),
			want: []string{`quick fixes: ["Use h" [4:2-4:3 "h"]] vs ["Use h" [4:2-4:3 "h" 4:1-4:1 "// "]]`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Match([]*expect.Set{set(t, src)}, tt.actual)

			got := summarize(res).Mismatched
			if !reflect.DeepEqual(tt.want, got) {
				deepequal.SideBySide(t, "details", tt.want, got)
			}
		})
	}
}

func TestMatchFileLevel(t *testing.T) {
	sets := []*expect.Set{expect.FileLevel("fixture.go", 3, "Add a package comment")}

	res := Match(sets, []issue.Issue{
		{Primary: issue.Location{File: "fixture.go"}, Message: "Add a package comment"},
	})
	if !res.Passed() {
		t.Errorf("file level issue must match, got %+v", summarize(res))
	}

	res = Match(sets, []issue.Issue{at(2, "Add a package comment")})
	want := summary{Missing: []int{0}, Unexpected: []string{"fixture.go:2 Add a package comment"}}
	if got := summarize(res); !reflect.DeepEqual(want, got) {
		deepequal.SideBySide(t, "result", want, got)
	}
}
