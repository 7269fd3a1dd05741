package fixture

import (
	"encoding"
	"fmt"
	"go/version"
	"runtime"
	"strconv"
	"strings"

	"github.com/sirkon/checkverify/internal/failure"
)

// fallbackLatest is used when the toolchain version cannot be parsed, development builds for instance.
const fallbackLatest Version = 25

// Version is a Go language minor version: 21 stands for go1.21.
type Version int

// Latest returns the language version of the toolchain in use.
func Latest() Version {
	v, err := ParseVersion(version.Lang(runtime.Version()))
	if err != nil {
		return fallbackLatest
	}

	return v
}

// ParseVersion accepts "go1.N", "1.N" and "N" forms.
func ParseVersion(s string) (Version, error) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimPrefix(raw, "go")
	raw = strings.TrimPrefix(raw, "1.")
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid go version %q", s)
	}

	return Version(n), nil
}

func (v Version) String() string {
	return fmt.Sprintf("go1.%d", v)
}

// Validate checks the version is supported by the toolchain.
func (v Version) Validate() error {
	if latest := Latest(); v < 1 || v > latest {
		return failure.New(failure.Configuration, "", 0, "unsupported go version %s, use 1..%d", v, latest)
	}

	return nil
}

var _ encoding.TextUnmarshaler = (*Version)(nil)

func (v *Version) UnmarshalText(b []byte) error {
	res, err := ParseVersion(string(b))
	if err != nil {
		return err
	}

	*v = res
	return nil
}

func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}
