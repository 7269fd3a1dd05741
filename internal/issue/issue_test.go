package issue

import (
	"reflect"
	"testing"

	"github.com/sirkon/deepequal"
)

func TestSort(t *testing.T) {
	issues := []Issue{
		{Rule: "B", Primary: Location{File: "b.go", Line: 1}, Message: "b1"},
		{Rule: "B", Primary: Location{File: "a.go", Line: 3, Column: 5}, Message: "a3-5"},
		{Rule: "A", Primary: Location{File: "a.go", Line: 3, Column: 5}, Message: "a3-5-rule-a"},
		{Rule: "A", Primary: Location{File: "a.go", Line: 3, Column: 2}, Message: "a3-2"},
		{Rule: "A", Primary: Location{File: "a.go", Line: 3, Column: 2}, Message: "a3-2-second"},
		{Rule: "C", Primary: Location{File: "a.go", Line: 1}, Message: "a1"},
	}

	Sort(issues)

	var got []string
	for _, is := range issues {
		got = append(got, is.Message)
	}
	want := []string{"a1", "a3-2", "a3-2-second", "a3-5-rule-a", "a3-5", "b1"}
	if !reflect.DeepEqual(want, got) {
		deepequal.SideBySide(t, "order", want, got)
	}
}

func TestLocationString(t *testing.T) {
	tests := []struct {
		name string
		loc  Location
		want string
	}{
		{name: "file level", loc: Location{File: "a.go"}, want: "a.go"},
		{name: "whole line", loc: Location{File: "a.go", Line: 4}, want: "a.go:4"},
		{name: "with column", loc: Location{File: "a.go", Line: 4, Column: 7}, want: "a.go:4:7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.loc.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLineCount(t *testing.T) {
	tests := []struct {
		src  string
		want int
	}{
		{src: "", want: 0},
		{src: "a", want: 1},
		{src: "a\n", want: 1},
		{src: "a\nb", want: 2},
		{src: "a\n\n", want: 2},
	}

	for _, tt := range tests {
		if got := LineCount([]byte(tt.src)); got != tt.want {
			t.Errorf("LineCount(%q) = %d, want %d", tt.src, got, tt.want)
		}
	}
}
