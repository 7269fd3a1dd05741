// Package fixture builds parsed and type-checked trees out of fixture sources.
package fixture

import (
	"errors"
	"fmt"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"io/fs"
	"runtime"

	"github.com/sirkon/checkverify/internal/failure"
	"github.com/sirkon/checkverify/internal/issue"
)

// defaultPackage is used to type-check fixtures whose package clause is broken.
const defaultPackage = "fixture"

// Source is a fixture file content.
type Source struct {
	Name    string
	Content []byte
}

// File is a parsed fixture file.
type File struct {
	Name   string
	Source []byte
	AST    *ast.File
	Lines  int
}

// Tree is a fixture package ready for checks. Checks must treat it as read only.
type Tree struct {
	Fset  *token.FileSet
	Files []*File
	Pkg   *types.Package
	Info  *types.Info
	Sizes types.Sizes

	Version   Version
	Compiling bool

	// Errors are parse and type errors tolerated in non-compiling mode.
	Errors []error
}

// Load parses and type-checks sources as a single package.
//
// In compiling mode any parse or type error is an [failure.Execution] error. Otherwise errors
// are kept in [Tree.Errors] and checks get whatever partial syntax and type information was built.
func Load(sources []Source, v Version, compiling bool) (*Tree, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}

	t := &Tree{
		Fset:      token.NewFileSet(),
		Sizes:     types.SizesFor("gc", runtime.GOARCH),
		Version:   v,
		Compiling: compiling,
	}

	for _, src := range sources {
		f, err := parser.ParseFile(t.Fset, src.Name, src.Content, parser.ParseComments|parser.AllErrors)
		if err != nil {
			if compiling {
				return nil, failure.Wrap(failure.Execution, src.Name, err, "parse fixture")
			}
			t.Errors = append(t.Errors, err)
		}
		if f == nil {
			continue
		}

		t.Files = append(t.Files, &File{
			Name:   src.Name,
			Source: src.Content,
			AST:    f,
			Lines:  issue.LineCount(src.Content),
		})
	}

	if err := t.typeCheck(); err != nil {
		return nil, err
	}

	return t, nil
}

func (t *Tree) typeCheck() (err error) {
	pkgName := defaultPackage
	if len(t.Files) > 0 && t.Files[0].AST.Name != nil && t.Files[0].AST.Name.Name != "_" {
		pkgName = t.Files[0].AST.Name.Name
	}

	t.Info = &types.Info{
		Types:        map[ast.Expr]types.TypeAndValue{},
		Instances:    map[*ast.Ident]types.Instance{},
		Defs:         map[*ast.Ident]types.Object{},
		Uses:         map[*ast.Ident]types.Object{},
		Implicits:    map[ast.Node]types.Object{},
		Selections:   map[*ast.SelectorExpr]*types.Selection{},
		Scopes:       map[ast.Node]*types.Scope{},
		FileVersions: map[*ast.File]string{},
	}

	var typeErrs []error
	conf := types.Config{
		GoVersion: t.Version.String(),
		Importer:  importer.ForCompiler(t.Fset, "gc", nil),
		Sizes:     t.Sizes,
		Error: func(err error) {
			typeErrs = append(typeErrs, err)
		},
	}

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		cause := fmt.Errorf("type checker panic: %v", r)
		if t.Compiling {
			err = failure.Wrap(failure.Execution, "", cause, "type-check fixtures")
			return
		}
		t.Errors = append(t.Errors, cause)
		if t.Pkg == nil {
			t.Pkg = types.NewPackage(pkgName, pkgName)
		}
	}()

	// The error is the first of typeErrs, the package is returned anyway.
	t.Pkg, _ = conf.Check(pkgName, t.Fset, t.ASTFiles(), t.Info)

	if len(typeErrs) > 0 && t.Compiling {
		return failure.Wrap(
			failure.Execution,
			"",
			errors.Join(typeErrs...),
			"type-check fixtures as %s",
			t.Version,
		)
	}
	t.Errors = append(t.Errors, typeErrs...)

	return nil
}

// ASTFiles returns syntax trees of all fixture files.
func (t *Tree) ASTFiles() []*ast.File {
	res := make([]*ast.File, 0, len(t.Files))
	for _, f := range t.Files {
		res = append(res, f.AST)
	}

	return res
}

// Span converts a node range into a location. An invalid end gives a location with no end.
func (t *Tree) Span(pos, end token.Pos) issue.Location {
	p := t.Fset.Position(pos)
	loc := issue.Location{
		File:   p.Filename,
		Line:   p.Line,
		Column: p.Column,
	}
	if end.IsValid() {
		e := t.Fset.Position(end)
		loc.EndLine = e.Line
		loc.EndColumn = e.Column
	}

	return loc
}

// Node is a shortcut for Span over a node.
func (t *Tree) Node(n ast.Node) issue.Location {
	return t.Span(n.Pos(), n.End())
}

// ReadFile gives access to fixture sources only.
func (t *Tree) ReadFile(name string) ([]byte, error) {
	for _, f := range t.Files {
		if f.Name == name {
			return f.Source, nil
		}
	}

	return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrNotExist}
}
