package annotation

import (
	"go/scanner"
	"go/token"
	"strings"

	"github.com/sirkon/checkverify/internal/failure"
)

const (
	markerIssue     = "Noncompliant"
	markerSecondary = "Secondary"
	markerNoIssues  = "NoIssues"
	markerFix       = "fix"
	markerEdit      = "edit"
)

var markers = []struct {
	marker string
	kind   Kind
}{
	{markerIssue, KindIssue},
	{markerSecondary, KindSecondary},
	{markerNoIssues, KindNoIssues},
	{markerFix, KindFix},
	{markerEdit, KindEdit},
}

// Parse extracts declarations from the fixture source in the order they appear.
//
// The source does not need to be valid Go: comments are collected with a scanner, so
// fixtures of the non-compiling kind are fine here. Any malformed declaration is an
// [failure.AnnotationSyntax] error naming the file and line.
func Parse(file string, src []byte) ([]Declaration, error) {
	fset := token.NewFileSet()
	tf := fset.AddFile(file, -1, len(src))

	var s scanner.Scanner
	s.Init(tf, src, func(token.Position, string) {}, scanner.ScanComments)

	var res []Declaration
	var hasPrimary bool
	for {
		pos, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		if tok != token.COMMENT {
			continue
		}

		// Block comments are documentation, declarations live in line comments only.
		body, ok := strings.CutPrefix(lit, "//")
		if !ok {
			continue
		}

		decl, ok, err := parseComment(file, fset.Position(pos).Line, strings.TrimRight(body, "\r"))
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		switch decl.Kind {
		case KindIssue:
			hasPrimary = true
		case KindSecondary:
			if !hasPrimary {
				return nil, failure.New(
					failure.AnnotationSyntax,
					file,
					decl.Line,
					"%s declared before any %s",
					markerSecondary,
					markerIssue,
				)
			}
		}
		res = append(res, decl)
	}

	return res, nil
}

// parseComment returns false when the comment text is not a declaration.
func parseComment(file string, line int, body string) (Declaration, bool, error) {
	text := strings.TrimLeft(body, " \t")

	var kind Kind
	var rest string
	for _, m := range markers {
		tail, ok := strings.CutPrefix(text, m.marker)
		if !ok || (tail != "" && isWordChar(tail[0])) {
			continue
		}

		kind = m.kind
		rest = tail
		break
	}
	if kind == kindInvalid || !declares(kind, rest) {
		return Declaration{}, false, nil
	}

	mach := &machine{
		file: file,
		src:  rest,
		decl: Declaration{
			Kind: kind,
			Line: line,
		},
	}
	if err := mach.run(); err != nil {
		return Declaration{}, false, err
	}

	return mach.decl, true, nil
}

// declares checks if the text after a marker starts a declaration rather than prose.
func declares(kind Kind, rest string) bool {
	if kind == KindFix || kind == KindEdit {
		return strings.HasPrefix(rest, "@")
	}

	rest = strings.TrimLeft(rest, " \t")
	switch {
	case rest == "":
		return true
	case rest[0] == '@':
		return true
	case rest[0] == ';':
		return strings.HasPrefix(strings.TrimLeft(rest[1:], " \t"), "effort")
	default:
		return strings.HasPrefix(rest, "[[") || strings.HasPrefix(rest, "{{")
	}
}

func isWordChar(c byte) bool {
	return c == '_' || isDigit(c) || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
