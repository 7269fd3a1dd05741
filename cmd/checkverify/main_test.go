package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirkon/checkverify/internal/cerrules"
)

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{
			name: "passed",
			args: []string{"verify", "--check", "CER000", "testdata/drop.go"},
			want: 0,
		},
		{
			name: "mismatch",
			args: []string{"verify", "--check", "CER000", "testdata/missing.go"},
			want: 1,
		},
		{
			name: "annotation syntax",
			args: []string{"verify", "testdata/syntax.go"},
			want: 2,
		},
		{
			name: "unknown check",
			args: []string{"verify", "--check", "CER999", "testdata/drop.go"},
			want: 2,
		},
		{
			name: "bad go version",
			args: []string{"verify", "--go", "1.x", "testdata/drop.go"},
			want: 2,
		},
		{
			name: "exclusive expectations",
			args: []string{"verify", "--no-issues", "--file-issue", "msg", "testdata/drop.go"},
			want: 2,
		},
		{
			name: "broken fixture",
			args: []string{"verify", "testdata/broken.go"},
			want: 10,
		},
		{
			name: "tolerated broken fixture",
			args: []string{"verify", "--non-compiling", "--no-issues", "testdata/broken.go"},
			want: 0,
		},
		{
			name: "quick fixes",
			args: []string{"verify", "--quick-fixes", "--check", "CER102", "testdata/fix.go"},
			want: 0,
		},
		{
			name: "quick fixes not enabled",
			args: []string{"verify", "--check", "CER102", "testdata/fix.go"},
			want: 2,
		},
		{
			name: "suite",
			args: []string{"suite", "--jobs", "2", "testdata/suite.yaml"},
			want: 0,
		},
		{
			name: "invalid color",
			args: []string{"--color", "always", "verify", "testdata/drop.go"},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if got := run(tt.args, &stdout, &stderr); got != tt.want {
				t.Fatalf("got exit code %d, want %d\nstdout:\n%s\nstderr:\n%s", got, tt.want, stdout.String(), stderr.String())
			}
		})
	}
}

func TestMismatchReport(t *testing.T) {
	var stdout, stderr bytes.Buffer
	run([]string{"verify", "--color", "off", "--check", "CER000", "testdata/missing.go"}, &stdout, &stderr)

	want := "1 discrepancies (1 missing, 0 unexpected, 0 mismatched)\n" +
		"testdata/missing.go:7: expected issue not raised\n"
	if got := stdout.String(); !strings.HasPrefix(got, want) {
		t.Errorf("got report\n%s\nwant\n%s", got, want)
	}
	if stderr.Len() != 0 {
		t.Errorf("nothing expected in stderr, got %s", stderr.String())
	}
}

func TestChecksList(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"checks"}, &stdout, &stderr); code != 0 {
		t.Fatalf("got exit code %d: %s", code, stderr.String())
	}

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != len(cerrules.All()) {
		t.Fatalf("got %d checks, want %d", len(lines), len(cerrules.All()))
	}
	if want := "CER000: NoSilentDrop - Error must never be ignored."; lines[0] != want {
		t.Errorf("got %q, want %q", lines[0], want)
	}
}
