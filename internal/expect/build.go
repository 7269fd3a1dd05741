package expect

import (
	"strings"

	"github.com/sirkon/checkverify/internal/annotation"
	"github.com/sirkon/checkverify/internal/failure"
)

// Build resolves declarations of a file against its line count.
//
// Relative lines are all counted from the comment line: issue offsets, end lines and
// secondary lines of both attributes and Secondary declarations. An end line still must not
// precede the issue line. Secondary declarations attach to the closest preceding issue.
//
// Quick fixes are referenced by id from the quickfixes attribute and may be declared anywhere in
// the file. Relative lines of their edits count from the line of the issue referencing them. Every
// fix and edit must be referenced by some issue.
func Build(file string, lineCount int, decls []annotation.Declaration) (*Set, error) {
	s := newSet(file, lineCount)

	var last *Issue
	var noIssuesAt int
	fixes := newFixDecls()
	var refs []fixRef
	for _, d := range decls {
		switch d.Kind {
		case annotation.KindNoIssues:
			s.NoIssues = true
			noIssuesAt = d.Line

		case annotation.KindIssue:
			is, err := s.resolveIssue(d)
			if err != nil {
				return nil, err
			}
			s.add(is)
			last = is
			if is.FixesDeclared {
				refs = append(refs, fixRef{issue: is, decl: d})
			}

		case annotation.KindFix:
			if err := fixes.message(file, d); err != nil {
				return nil, err
			}

		case annotation.KindEdit:
			fixes.edit(d)

		case annotation.KindSecondary:
			if last == nil {
				return nil, failure.New(failure.AnnotationSyntax, file, d.Line, "Secondary declared before any Noncompliant")
			}
			line := d.Offset.Resolve(d.Line)
			if err := s.checkLine(d.Line, line, "secondary"); err != nil {
				return nil, err
			}
			last.Secondaries = append(last.Secondaries, Location{
				Line:    line,
				Message: d.Message,
			})
		}
	}

	for _, ref := range refs {
		if err := s.resolveFixes(ref.issue, ref.decl, fixes); err != nil {
			return nil, err
		}
	}
	for _, id := range fixes.order {
		if fd := fixes.byID[id]; !fd.used {
			return nil, failure.New(failure.Resolution, file, fd.line, "no issue refers to quick fix %s", id)
		}
	}

	if s.NoIssues && !s.Empty() {
		return nil, failure.New(
			failure.Configuration,
			file,
			noIssuesAt,
			"NoIssues cannot be combined with Noncompliant declarations in the same file",
		)
	}

	return s, nil
}

func (s *Set) resolveIssue(d annotation.Declaration) (*Issue, error) {
	line := d.Line
	if d.Offset != nil {
		line = d.Offset.Resolve(d.Line)
	}
	if err := s.checkLine(d.Line, line, "issue"); err != nil {
		return nil, err
	}

	is := &Issue{
		File:      s.File,
		Line:      line,
		Column:    d.StartColumn,
		EndColumn: d.EndColumn,
		Message:   d.Message,
		Effort:    d.Effort,
		Declared:  d.Line,

		FixesDeclared: len(d.QuickFixes) > 0,
	}

	if d.EndLine != nil {
		is.EndLine = d.EndLine.Resolve(d.Line)
		if err := s.checkLine(d.Line, is.EndLine, "end"); err != nil {
			return nil, err
		}
		if is.EndLine < line {
			return nil, failure.New(
				failure.Resolution,
				s.File,
				d.Line,
				"end line %d is before the issue line %d",
				is.EndLine,
				line,
			)
		}
	}
	if is.Column > 0 && is.EndColumn > 0 && (is.EndLine == 0 || is.EndLine == line) && is.EndColumn < is.Column {
		return nil, failure.New(
			failure.Resolution,
			s.File,
			d.Line,
			"end column %d is before the start column %d",
			is.EndColumn,
			is.Column,
		)
	}

	for _, ref := range d.Secondaries {
		sline := ref.Resolve(d.Line)
		if err := s.checkLine(d.Line, sline, "secondary"); err != nil {
			return nil, err
		}
		is.Secondaries = append(is.Secondaries, Location{Line: sline})
	}

	return is, nil
}

type fixRef struct {
	issue *Issue
	decl  annotation.Declaration
}

type fixDecl struct {
	line    int
	message *annotation.Message
	edits   []annotation.Declaration
	used    bool
}

// fixDecls collects fix and edit declarations by id in order of appearance.
type fixDecls struct {
	byID  map[string]*fixDecl
	order []string
}

func newFixDecls() *fixDecls {
	return &fixDecls{byID: map[string]*fixDecl{}}
}

func (f *fixDecls) get(id string, line int) *fixDecl {
	fd, ok := f.byID[id]
	if !ok {
		fd = &fixDecl{line: line}
		f.byID[id] = fd
		f.order = append(f.order, id)
	}

	return fd
}

func (f *fixDecls) message(file string, d annotation.Declaration) error {
	fd := f.get(d.FixID, d.Line)
	if fd.message != nil {
		return failure.New(failure.AnnotationSyntax, file, d.Line, "quick fix %s already has a message", d.FixID)
	}

	fd.message = d.Message
	return nil
}

func (f *fixDecls) edit(d annotation.Declaration) {
	fd := f.get(d.FixID, d.Line)
	fd.edits = append(fd.edits, d)
}

func (s *Set) resolveFixes(is *Issue, d annotation.Declaration, fixes *fixDecls) error {
	for _, id := range d.QuickFixes {
		if id == annotation.NoQuickFixes {
			continue
		}

		fd, ok := fixes.byID[id]
		switch {
		case !ok || fd.message == nil:
			return failure.New(failure.Resolution, s.File, d.Line, "missing message for quick fix %s", id)
		case len(fd.edits) == 0:
			return failure.New(failure.Resolution, s.File, d.Line, "missing edits for quick fix %s", id)
		}
		fd.used = true

		fix := Fix{
			ID:      id,
			Message: fd.message,
		}
		for _, e := range fd.edits {
			edit, err := s.resolveEdit(id, is.Line, e)
			if err != nil {
				return err
			}
			fix.Edits = append(fix.Edits, edit)
		}
		is.Fixes = append(is.Fixes, fix)
	}

	return nil
}

func (s *Set) resolveEdit(id string, line int, d annotation.Declaration) (Edit, error) {
	e := Edit{
		Line:      line,
		Column:    d.StartColumn,
		EndLine:   line,
		EndColumn: d.EndColumn,
		NewText:   strings.ReplaceAll(d.Message.Text, `\n`, "\n"),
	}
	if d.StartLine != nil {
		e.Line = d.StartLine.Resolve(line)
	}
	if d.EndLine != nil {
		e.EndLine = d.EndLine.Resolve(line)
	}
	if err := s.checkLine(d.Line, e.Line, "edit start"); err != nil {
		return Edit{}, err
	}
	if err := s.checkLine(d.Line, e.EndLine, "edit end"); err != nil {
		return Edit{}, err
	}

	switch {
	case e.EndLine < e.Line || (e.EndLine == e.Line && e.EndColumn < e.Column):
		return Edit{}, failure.New(failure.Resolution, s.File, d.Line, "edit of quick fix %s ends before it starts", id)
	case e.EndLine == e.Line && e.EndColumn == e.Column && e.NewText == "":
		return Edit{}, failure.New(failure.Resolution, s.File, d.Line, "edit of quick fix %s changes nothing", id)
	}

	return e, nil
}

func (s *Set) checkLine(declared, line int, what string) error {
	if line >= 1 && line <= s.LineCount {
		return nil
	}

	return failure.New(
		failure.Resolution,
		s.File,
		declared,
		"%s line %d is out of file bounds [1, %d]",
		what,
		line,
		s.LineCount,
	)
}
