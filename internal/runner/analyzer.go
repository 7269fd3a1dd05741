package runner

import (
	"errors"
	"fmt"
	"go/types"
	"reflect"

	"golang.org/x/tools/go/analysis"

	"github.com/sirkon/checkverify/internal/fixture"
	"github.com/sirkon/checkverify/internal/issue"
)

// FromAnalyzer adapts a go/analysis analyzer to the Check capability.
//
// The analyzer runs along with its Requires closure over the fixture package. Facts
// live in memory for the duration of a single call. Diagnostics turn into issues
// named after the analyzer, with the category appended when it is set. Related
// information becomes secondary locations and suggested fixes become quick fixes.
func FromAnalyzer(a *analysis.Analyzer) Check {
	return analyzerCheck{a: a}
}

type analyzerCheck struct {
	a *analysis.Analyzer
}

func (c analyzerCheck) Name() string {
	return c.a.Name
}

func (c analyzerCheck) Check(tree *fixture.Tree) ([]issue.Issue, error) {
	if err := analysis.Validate([]*analysis.Analyzer{c.a}); err != nil {
		return nil, fmt.Errorf("validate analyzer: %w", err)
	}

	var res []issue.Issue
	act := &action{
		tree:    tree,
		results: map[*analysis.Analyzer]any{},
		facts:   newFactStore(),
	}
	report := func(d analysis.Diagnostic) {
		res = append(res, c.convert(tree, d))
	}
	if _, err := act.run(c.a, report); err != nil {
		return nil, err
	}

	return res, nil
}

func (c analyzerCheck) convert(tree *fixture.Tree, d analysis.Diagnostic) issue.Issue {
	rule := c.a.Name
	if d.Category != "" {
		rule += "/" + d.Category
	}

	is := issue.Issue{
		Rule:    rule,
		Primary: tree.Span(d.Pos, d.End),
		Message: d.Message,
	}
	for _, rel := range d.Related {
		is.Secondaries = append(is.Secondaries, issue.Secondary{
			Location: tree.Span(rel.Pos, rel.End),
			Message:  rel.Message,
		})
	}
	for _, sf := range d.SuggestedFixes {
		fix := issue.Fix{Message: sf.Message}
		for _, e := range sf.TextEdits {
			end := e.End
			if !end.IsValid() {
				end = e.Pos
			}
			fix.Edits = append(fix.Edits, issue.Edit{
				Location: tree.Span(e.Pos, end),
				NewText:  string(e.NewText),
			})
		}
		is.Fixes = append(is.Fixes, fix)
	}

	return is
}

// action runs analyzers over a single fixture tree, each of them at most once.
type action struct {
	tree    *fixture.Tree
	results map[*analysis.Analyzer]any
	facts   *factStore
}

func (act *action) run(a *analysis.Analyzer, report func(analysis.Diagnostic)) (any, error) {
	if res, ok := act.results[a]; ok {
		return res, nil
	}

	if len(act.tree.Errors) > 0 && !a.RunDespiteErrors {
		return nil, fmt.Errorf("analyzer %s cannot run over fixtures with errors: %w", a.Name, errors.Join(act.tree.Errors...))
	}

	resultOf := map[*analysis.Analyzer]any{}
	for _, req := range a.Requires {
		res, err := act.run(req, func(analysis.Diagnostic) {})
		if err != nil {
			return nil, fmt.Errorf("run %s required by %s: %w", req.Name, a.Name, err)
		}
		resultOf[req] = res
	}

	pass := &analysis.Pass{
		Analyzer:          a,
		Fset:              act.tree.Fset,
		Files:             act.tree.ASTFiles(),
		Pkg:               act.tree.Pkg,
		TypesInfo:         act.tree.Info,
		TypesSizes:        act.tree.Sizes,
		TypeErrors:        typeErrors(act.tree.Errors),
		Report:            report,
		ResultOf:          resultOf,
		ReadFile:          act.tree.ReadFile,
		ImportObjectFact:  act.facts.importObject,
		ExportObjectFact:  act.facts.exportObject,
		ImportPackageFact: act.facts.importPackage,
		ExportPackageFact: func(f analysis.Fact) { act.facts.exportPackage(act.tree.Pkg, f) },
		AllObjectFacts:    act.facts.allObject,
		AllPackageFacts:   act.facts.allPackage,
	}

	res, err := a.Run(pass)
	if err != nil {
		return nil, fmt.Errorf("run analyzer %s: %w", a.Name, err)
	}

	act.results[a] = res
	return res, nil
}

func typeErrors(errs []error) []types.Error {
	var res []types.Error
	for _, err := range errs {
		var terr types.Error
		if errors.As(err, &terr) {
			res = append(res, terr)
		}
	}

	return res
}

type objectFactKey struct {
	obj types.Object
	typ reflect.Type
}

type packageFactKey struct {
	pkg *types.Package
	typ reflect.Type
}

// factStore keeps facts exported by analyzers within a single check call.
type factStore struct {
	objects  map[objectFactKey]analysis.Fact
	packages map[packageFactKey]analysis.Fact
}

func newFactStore() *factStore {
	return &factStore{
		objects:  map[objectFactKey]analysis.Fact{},
		packages: map[packageFactKey]analysis.Fact{},
	}
}

func (s *factStore) importObject(obj types.Object, fact analysis.Fact) bool {
	stored, ok := s.objects[objectFactKey{obj: obj, typ: reflect.TypeOf(fact)}]
	if !ok {
		return false
	}

	reflect.ValueOf(fact).Elem().Set(reflect.ValueOf(stored).Elem())
	return true
}

func (s *factStore) exportObject(obj types.Object, fact analysis.Fact) {
	s.objects[objectFactKey{obj: obj, typ: reflect.TypeOf(fact)}] = fact
}

func (s *factStore) importPackage(pkg *types.Package, fact analysis.Fact) bool {
	stored, ok := s.packages[packageFactKey{pkg: pkg, typ: reflect.TypeOf(fact)}]
	if !ok {
		return false
	}

	reflect.ValueOf(fact).Elem().Set(reflect.ValueOf(stored).Elem())
	return true
}

func (s *factStore) exportPackage(pkg *types.Package, fact analysis.Fact) {
	s.packages[packageFactKey{pkg: pkg, typ: reflect.TypeOf(fact)}] = fact
}

func (s *factStore) allObject() []analysis.ObjectFact {
	res := make([]analysis.ObjectFact, 0, len(s.objects))
	for k, f := range s.objects {
		res = append(res, analysis.ObjectFact{Object: k.obj, Fact: f})
	}

	return res
}

func (s *factStore) allPackage() []analysis.PackageFact {
	res := make([]analysis.PackageFact, 0, len(s.packages))
	for k, f := range s.packages {
		res = append(res, analysis.PackageFact{Package: k.pkg, Fact: f})
	}

	return res
}
