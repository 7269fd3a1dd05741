package checks

import (
	"bytes"
	"encoding"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config extends predefined known functions of checks.
type Config struct {
	Wraps    []WrapSpec    `yaml:"wraps" toml:"wraps"`
	Loggers  []LoggerSpec  `yaml:"loggers" toml:"loggers"`
	Abandons []AbandonSpec `yaml:"abandons" toml:"abandons"`
}

// WrapSpec describes a registered wrap function.
type WrapSpec struct {
	Ref  Reference `yaml:"ref" toml:"ref"`
	Kind WrapKind  `yaml:"kind" toml:"kind"`
}

// LoggerSpec describes a registered logger function.
type LoggerSpec struct {
	Ref  Reference   `yaml:"ref" toml:"ref"`
	Kind LoggingKind `yaml:"kind" toml:"kind"`
}

// AbandonSpec describes a function stopping the execution flow.
type AbandonSpec struct {
	Ref  Reference   `yaml:"ref" toml:"ref"`
	Kind AbandonKind `yaml:"kind" toml:"kind"`
}

// LoadConfig reads a configuration in YAML or TOML, the format is chosen by the file extension.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode yaml config: %w", err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, fmt.Errorf("decode toml config: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown config keys %v", undecoded)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	for i, w := range c.Wraps {
		if w.Kind == 0 {
			return fmt.Errorf("wraps[%d] %s: missing kind", i, w.Ref)
		}
	}
	for i, l := range c.Loggers {
		if l.Kind == 0 {
			return fmt.Errorf("loggers[%d] %s: missing kind", i, l.Ref)
		}
	}

	return nil
}

// WrapKind represents different wrap strategies (fmt-style, errors-style).
type WrapKind int

const (
	_ WrapKind = iota

	// WrapKindFmt demands an error to be an argument of the list, the format goes first.
	WrapKindFmt

	// WrapKindErrors demands an error to be the first argument, the message goes next.
	WrapKindErrors
)

func (k WrapKind) String() string {
	v, err := k.MarshalText()
	if err != nil {
		return fmt.Sprintf("wrap-kind-invalid(%d)", k)
	}

	return string(v)
}

var _ encoding.TextUnmarshaler = (*WrapKind)(nil)

func (k *WrapKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "fmt":
		*k = WrapKindFmt
		return nil
	case "errors":
		*k = WrapKindErrors
		return nil
	default:
		return fmt.Errorf("unknown kind %q of wrap", b)
	}
}

func (k WrapKind) MarshalText() ([]byte, error) {
	switch k {
	case WrapKindFmt:
		return []byte("fmt"), nil
	case WrapKindErrors:
		return []byte("errors"), nil
	default:
		return nil, fmt.Errorf("cannot marshal invalid WrapKind(%d)", k)
	}
}

// LoggingKind represents the style of logging (format-like, zap-like).
type LoggingKind int

const (
	_ LoggingKind = iota
	LoggingKindFormat
	LoggingKindZap
	LoggingKindZeroLog
	LoggingKindSlog
)

func (k LoggingKind) String() string {
	v, err := k.MarshalText()
	if err != nil {
		return fmt.Sprintf("logging-kind-invalid(%d)", k)
	}

	return string(v)
}

var _ encoding.TextUnmarshaler = (*LoggingKind)(nil)

func (k *LoggingKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "format":
		*k = LoggingKindFormat
		return nil
	case "zap":
		*k = LoggingKindZap
		return nil
	case "zerolog":
		*k = LoggingKindZeroLog
		return nil
	case "slog":
		*k = LoggingKindSlog
		return nil
	default:
		return fmt.Errorf("unknown kind %q of logger", b)
	}
}

func (k LoggingKind) MarshalText() ([]byte, error) {
	switch k {
	case LoggingKindFormat:
		return []byte("format"), nil
	case LoggingKindZap:
		return []byte("zap"), nil
	case LoggingKindZeroLog:
		return []byte("zerolog"), nil
	case LoggingKindSlog:
		return []byte("slog"), nil
	default:
		return nil, fmt.Errorf("cannot marshal invalid LoggingKind(%d)", k)
	}
}

// AbandonKind describes varieties of execution abandoning. Silent ones do not report anything,
// so a proper logging must be made before them.
type AbandonKind int

const (
	AbandonKindSilent AbandonKind = iota
	AbandonKindFormat
	AbandonKindZap
)

func (k AbandonKind) String() string {
	v, err := k.MarshalText()
	if err != nil {
		return fmt.Sprintf("abandon-kind-invalid(%d)", k)
	}

	return string(v)
}

var _ encoding.TextUnmarshaler = (*AbandonKind)(nil)

func (k *AbandonKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "silent", "":
		*k = AbandonKindSilent
		return nil
	case "format":
		*k = AbandonKindFormat
		return nil
	case "zap":
		*k = AbandonKindZap
		return nil
	default:
		return fmt.Errorf("unknown kind %q of execution abandon", b)
	}
}

func (k AbandonKind) MarshalText() ([]byte, error) {
	switch k {
	case AbandonKindSilent:
		return []byte("silent"), nil
	case AbandonKindFormat:
		return []byte("format"), nil
	case AbandonKindZap:
		return []byte("zap"), nil
	default:
		return nil, fmt.Errorf("cannot marshal invalid AbandonKind(%d)", k)
	}
}

// Reference points to a package level function or to a method of a named type.
type Reference struct {
	Package string
	Type    string
	Name    string
}

func (r Reference) String() string {
	v, err := r.MarshalText()
	if err != nil {
		return fmt.Sprintf("reference-invalid(%q, %q, %q)", r.Package, r.Type, r.Name)
	}

	return string(v)
}

var _ encoding.TextUnmarshaler = (*Reference)(nil)

func (r *Reference) UnmarshalText(b []byte) error {
	s := string(bytes.TrimSpace(b))
	if s == "" {
		return errors.New("empty reference")
	}

	// Expected forms:
	//   "pkg/path".Name
	//   "pkg/path".Type.Name

	// 1) split at the quoted package
	if !strings.HasPrefix(s, `"`) {
		return fmt.Errorf("reference must start with quoted package: %q", s)
	}
	end := strings.Index(s[1:], `"`)
	if end < 0 {
		return fmt.Errorf("unterminated quoted package in reference: %q", s)
	}
	end++ // include the first quote

	pkg := s[1:end]
	if pkg == "" {
		return fmt.Errorf("package cannot be empty in reference: %q", s)
	}

	rest := s[end+1:]
	if !strings.HasPrefix(rest, ".") {
		return fmt.Errorf("reference must contain a name: %q", s)
	}
	rest = rest[1:]

	parts := strings.Split(rest, ".")
	if len(parts) > 2 {
		return fmt.Errorf("reference must have 1 or 2 identifiers after package: %q", s)
	}
	for _, p := range parts {
		if !isIdent(p) {
			return fmt.Errorf("invalid identifier %q in reference %q", p, s)
		}
	}

	r.Package = pkg
	switch len(parts) {
	case 1:
		r.Type = ""
		r.Name = parts[0]
	case 2:
		r.Type = parts[0]
		r.Name = parts[1]
	}

	return nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 && !unicode.IsLetter(r) && r != '_' {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}

func (r Reference) MarshalText() ([]byte, error) {
	if r.Package == "" {
		return nil, errors.New("cannot marshal Reference: empty Package")
	}
	if r.Name == "" {
		return nil, errors.New("cannot marshal Reference: empty Name")
	}

	var b strings.Builder
	b.WriteByte('"')
	b.WriteString(r.Package)
	b.WriteString(`".`)
	if r.Type != "" {
		b.WriteString(r.Type)
		b.WriteByte('.')
	}
	b.WriteString(r.Name)

	return []byte(b.String()), nil
}

func (r Reference) key() packagedFunc {
	return packagedFunc{
		pkgPath: r.Package,
		typ:     r.Type,
		name:    r.Name,
	}
}
