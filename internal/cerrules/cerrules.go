package cerrules

import (
	"fmt"
	"strings"
)

// Rule represents a rule code (CER-series).
//
// Rule numbering scheme:
//
//	000–099  Structural propagation and wrapping
//	100–149  Message text and formatting rules
//	150–199  Logging and reporting discipline
type Rule int

const (
	ruleInvalid Rule = iota

	CER000NoSilentDrop
	CER050HandleInNonErrorFunc
	CER102AnnotationFormatMustEndWithW
	CER150NoLogAndReturn
)

// String returns the canonical code and short name of the rule.
// Example: "CER000: NoSilentDrop"
func (r Rule) String() string {
	if r.Code() == "" {
		return fmt.Sprintf("rule-unknown(%d)", r)
	}

	return r.Code() + ": " + r.Name()
}

// Code returns the rule code, "CER000" for instance. It is empty for unknown rules.
func (r Rule) Code() string {
	switch r {
	case CER000NoSilentDrop:
		return "CER000"
	case CER050HandleInNonErrorFunc:
		return "CER050"
	case CER102AnnotationFormatMustEndWithW:
		return "CER102"
	case CER150NoLogAndReturn:
		return "CER150"
	default:
		return ""
	}
}

// Name returns the short name of the rule.
func (r Rule) Name() string {
	switch r {
	case CER000NoSilentDrop:
		return "NoSilentDrop"
	case CER050HandleInNonErrorFunc:
		return "HandleInNonErrorFunc"
	case CER102AnnotationFormatMustEndWithW:
		return "AnnotationFormatMustEndWithW"
	case CER150NoLogAndReturn:
		return "NoLogAndReturn"
	default:
		return ""
	}
}

// Description returns the human-readable explanation of the rule.
func (r Rule) Description() string {
	switch r {
	case CER000NoSilentDrop:
		return "Error must never be ignored."
	case CER050HandleInNonErrorFunc:
		return "Errors in non-error-returning funcs must be logged or panicked."
	case CER102AnnotationFormatMustEndWithW:
		return "Annotation format must end with ': %w' fragment."
	case CER150NoLogAndReturn:
		return "Error must be either logged or returned, never both."
	default:
		return fmt.Sprintf("unknown-rule(%d)", r)
	}
}

// All returns known rules in code order.
func All() []Rule {
	return []Rule{
		CER000NoSilentDrop,
		CER050HandleInNonErrorFunc,
		CER102AnnotationFormatMustEndWithW,
		CER150NoLogAndReturn,
	}
}

// Lookup finds a rule by its code or name, case-insensitively.
func Lookup(s string) (Rule, bool) {
	for _, r := range All() {
		if strings.EqualFold(s, r.Code()) || strings.EqualFold(s, r.Name()) {
			return r, true
		}
	}

	return ruleInvalid, false
}

// Constructors for stable call sites.

func NoSilentDrop() Rule                 { return CER000NoSilentDrop }
func HandleInNonErrorFunc() Rule         { return CER050HandleInNonErrorFunc }
func AnnotationFormatMustEndWithW() Rule { return CER102AnnotationFormatMustEndWithW }
func NoLogAndReturn() Rule               { return CER150NoLogAndReturn }
