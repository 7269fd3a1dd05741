package checks

import (
	"errors"
	"reflect"
	"testing"

	"github.com/sirkon/deepequal"

	"github.com/sirkon/checkverify"
	"github.com/sirkon/checkverify/internal/cerrules"
	"github.com/sirkon/checkverify/internal/failure"
)

func TestChecks(t *testing.T) {
	tests := []struct {
		file string
		rule cerrules.Rule
	}{
		{file: "testdata/silent_drop.go", rule: cerrules.NoSilentDrop()},
		{file: "testdata/wrap_format.go", rule: cerrules.AnnotationFormatMustEndWithW()},
		{file: "testdata/log_and_return.go", rule: cerrules.NoLogAndReturn()},
		{file: "testdata/non_error_func.go", rule: cerrules.HandleInNonErrorFunc()},
	}

	for _, tt := range tests {
		t.Run(tt.rule.Code(), func(t *testing.T) {
			c, err := New(tt.rule, nil)
			if err != nil {
				t.Fatal(err)
			}

			checkverify.New(
				checkverify.OnFile(tt.file),
				checkverify.WithCheck(c),
				checkverify.WithQuickFixes(),
			).VerifyIssues(t)
		})
	}
}

func TestCompliantCode(t *testing.T) {
	checkverify.New(
		checkverify.OnFile("testdata/get_config.go"),
		checkverify.WithChecks(All(nil)...),
	).VerifyNoIssues(t)
}

func TestBrokenFixture(t *testing.T) {
	t.Run("non-compiling", func(t *testing.T) {
		checkverify.New(
			checkverify.OnFile("testdata/broken.go"),
			checkverify.WithAnalyzer(NoSilentDrop(nil)),
			checkverify.NonCompiling(),
		).VerifyIssues(t)
	})

	t.Run("compiling", func(t *testing.T) {
		_, err := checkverify.New(
			checkverify.OnFile("testdata/broken.go"),
			checkverify.WithAnalyzer(NoSilentDrop(nil)),
		).Run(checkverify.ModeIssues, "")
		if !errors.Is(err, failure.Execution) {
			t.Errorf("execution error expected, got %v", err)
		}
	})
}

func TestGenericsNeedVersion(t *testing.T) {
	_, err := checkverify.New(
		checkverify.OnFile("testdata/get_config.go"),
		checkverify.WithCheck(HandleInNonErrorFunc(nil)),
		checkverify.WithGoVersion(17),
	).Run(checkverify.ModeNoIssues, "")
	if !errors.Is(err, failure.Execution) {
		t.Errorf("execution error expected, got %v", err)
	}
}

func TestByCode(t *testing.T) {
	all, err := ByCode(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != len(cerrules.All()) {
		t.Errorf("all checks expected, got %d", len(all))
	}

	got, err := ByCode(nil, "cer150", "NoSilentDrop")
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, c := range got {
		names = append(names, c.Name())
	}
	want := []string{"CER150", "CER000"}
	if !reflect.DeepEqual(want, names) {
		deepequal.SideBySide(t, "names", want, names)
	}

	if _, err := ByCode(nil, "CER999"); err == nil {
		t.Error("unknown rule must be an error")
	}
}

func TestLoadConfig(t *testing.T) {
	want := &Config{
		Wraps: []WrapSpec{
			{Ref: Reference{Package: "example.com/errs", Name: "Annotate"}, Kind: WrapKindFmt},
		},
		Loggers: []LoggerSpec{
			{Ref: Reference{Package: "example.com/logging", Type: "Logger", Name: "Report"}, Kind: LoggingKindFormat},
		},
		Abandons: []AbandonSpec{
			{Ref: Reference{Package: "example.com/app", Name: "Die"}, Kind: AbandonKindSilent},
		},
	}

	for _, path := range []string{"testdata/config.yaml", "testdata/config.toml"} {
		t.Run(path, func(t *testing.T) {
			got, err := LoadConfig(path)
			if err != nil {
				t.Fatal(err)
			}

			if !reflect.DeepEqual(want, got) {
				deepequal.SideBySide(t, "config", want, got)
			}

			known := newKnownFuncs(got)
			if _, ok := known.wraps[packagedFunc{pkgPath: "example.com/errs", name: "Annotate"}]; !ok {
				t.Error("configured wrap is not known")
			}
			if _, ok := known.wraps[packagedFunc{pkgPath: "fmt", name: "Errorf"}]; !ok {
				t.Error("predefined wrap is lost")
			}
		})
	}

	if _, err := LoadConfig("testdata/silent_drop.go"); err == nil {
		t.Error("unsupported config format must be an error")
	}
}

func TestReference(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Reference
		wantErr bool
	}{
		{
			name:  "function",
			input: `"fmt".Errorf`,
			want:  Reference{Package: "fmt", Name: "Errorf"},
		},
		{
			name:  "method",
			input: `"go.uber.org/zap".Logger.Error`,
			want:  Reference{Package: "go.uber.org/zap", Type: "Logger", Name: "Error"},
		},
		{name: "empty", input: "", wantErr: true},
		{name: "unquoted package", input: "fmt.Errorf", wantErr: true},
		{name: "no name", input: `"fmt"`, wantErr: true},
		{name: "too deep", input: `"fmt".A.B.C`, wantErr: true},
		{name: "bad identifier", input: `"fmt".1x`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Reference
			err := got.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Errorf("error expected, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}

			if !reflect.DeepEqual(tt.want, got) {
				deepequal.SideBySide(t, "reference", tt.want, got)
			}
			if got.String() != tt.input {
				t.Errorf("round trip: got %s, want %s", got, tt.input)
			}
		})
	}
}

func TestFixWrapFormat(t *testing.T) {
	tests := []struct {
		format string
		want   string
		ok     bool
	}{
		{format: "failed %w", want: "failed: %w", ok: true},
		{format: "failed:%w", want: "failed: %w", ok: true},
		{format: "lookup %s  %w", want: "lookup %s: %w", ok: true},
		{format: "lookup %s (%w)", ok: false},
		{format: "%w", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got, ok := fixWrapFormat(tt.format)
			if ok != tt.ok || got != tt.want {
				t.Errorf("got %q, %v, want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestQuickFixesNeedOption(t *testing.T) {
	c, err := New(cerrules.AnnotationFormatMustEndWithW(), nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = checkverify.New(
		checkverify.OnFile("testdata/wrap_format.go"),
		checkverify.WithCheck(c),
	).Run(checkverify.ModeIssues, "")
	if !errors.Is(err, failure.Configuration) {
		t.Errorf("configuration error expected, got %v", err)
	}
}
