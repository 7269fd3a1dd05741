package checks

import (
	"go/ast"
	"go/types"
	"maps"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/sirkon/checkverify/internal/cerrules"
)

// NoLogAndReturn returns an analyzer reporting errors that are logged and returned
// as well, and errors logged more than once.
//
// Functions logging their error parameters are marked with facts, so calling them
// counts as logging.
func NoLogAndReturn(cfg *Config) *analysis.Analyzer {
	return newNoLogAndReturn(newKnownFuncs(cfg))
}

func newNoLogAndReturn(known *knownFuncs) *analysis.Analyzer {
	rule := cerrules.NoLogAndReturn()
	c := &noLogAndReturn{known: known}

	return &analysis.Analyzer{
		Name:             rule.Code(),
		Doc:              rule.Description(),
		Requires:         []*analysis.Analyzer{inspect.Analyzer},
		RunDespiteErrors: true,
		FactTypes:        []analysis.Fact{new(logsErrorFact)},
		Run:              c.run,
	}
}

type noLogAndReturn struct {
	known *knownFuncs
}

// errStates is a state of error variables at some point of a statement list.
type errStates map[*types.Var]errState

func (c *noLogAndReturn) run(pass *analysis.Pass) (any, error) {
	pector := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	c.exportFacts(pass, pector)

	pector.Preorder([]ast.Node{(*ast.FuncDecl)(nil), (*ast.FuncLit)(nil)}, func(node ast.Node) {
		var body *ast.BlockStmt
		switch n := node.(type) {
		case *ast.FuncDecl:
			body = n.Body
		case *ast.FuncLit:
			body = n.Body
		}
		if body == nil {
			return
		}

		c.walk(pass, body.List, errStates{})
	})

	return nil, nil
}

// exportFacts marks functions logging any of their error parameters. Marks are
// propagated until nothing changes, so wrappers of wrappers are marked too.
func (c *noLogAndReturn) exportFacts(pass *analysis.Pass, pector *inspector.Inspector) {
	type candidate struct {
		obj    types.Object
		body   *ast.BlockStmt
		params map[*types.Var]struct{}
	}

	var candidates []candidate
	pector.Preorder([]ast.Node{(*ast.FuncDecl)(nil)}, func(node ast.Node) {
		fd := node.(*ast.FuncDecl)
		obj := pass.TypesInfo.Defs[fd.Name]
		if obj == nil || fd.Body == nil {
			return
		}

		params := map[*types.Var]struct{}{}
		for _, field := range fd.Type.Params.List {
			for _, name := range field.Names {
				v, ok := pass.TypesInfo.Defs[name].(*types.Var)
				if ok && isError(v.Type()) {
					params[v] = struct{}{}
				}
			}
		}
		if len(params) > 0 {
			candidates = append(candidates, candidate{obj: obj, body: fd.Body, params: params})
		}
	})

	for changed := true; changed; {
		changed = false
		for _, cand := range candidates {
			if pass.ImportObjectFact(cand.obj, new(logsErrorFact)) {
				continue
			}
			if c.logsAny(pass, cand.body, cand.params) {
				pass.ExportObjectFact(cand.obj, new(logsErrorFact))
				changed = true
			}
		}
	}
}

func (c *noLogAndReturn) logsAny(pass *analysis.Pass, body *ast.BlockStmt, params map[*types.Var]struct{}) bool {
	var found bool
	ast.Inspect(body, func(n ast.Node) bool {
		if found {
			return false
		}
		if _, ok := n.(*ast.FuncLit); ok {
			return false
		}
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		for _, v := range c.logged(pass, call) {
			if _, ok := params[v]; ok {
				found = true
				return false
			}
		}
		return true
	})

	return found
}

// logged returns error variables logged by the call. It is empty for calls that are not logging.
func (c *noLogAndReturn) logged(pass *analysis.Pass, call *ast.CallExpr) []*types.Var {
	kind, ok := c.known.logger(pass.TypesInfo, call)
	if !ok {
		_, obj, ok := callee(pass.TypesInfo, call)
		if !ok || !pass.ImportObjectFact(obj, new(logsErrorFact)) {
			return nil
		}
		kind = LoggingKindFormat
	}

	var res []*types.Var
	for _, arg := range call.Args {
		res = append(res, errorVars(pass.TypesInfo, arg)...)
	}
	if kind == LoggingKindZeroLog {
		// Errors are attached to the event: log.Error().Err(err).Msg("...").
		res = append(res, errorVars(pass.TypesInfo, call.Fun)...)
	}

	return res
}

// walk goes through statements tracking what is done with error variables. Nested
// statement lists get a copy of the state. The resulting state is returned.
func (c *noLogAndReturn) walk(pass *analysis.Pass, stmts []ast.Stmt, states errStates) errStates {
	for _, stmt := range stmts {
		c.stmt(pass, stmt, states)
	}

	return states
}

func (c *noLogAndReturn) stmt(pass *analysis.Pass, stmt ast.Stmt, states errStates) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		call, ok := ast.Unparen(s.X).(*ast.CallExpr)
		if !ok {
			return
		}
		for _, v := range c.logged(pass, call) {
			st := states[v]
			switch st.setTakenCare(false, call) {
			case takenCareAlreadyLogged:
				pass.Report(analysis.Diagnostic{
					Pos:      call.Pos(),
					End:      call.End(),
					Category: "duplicate",
					Message:  "error " + v.Name() + " is logged multiple times",
					Related:  []analysis.RelatedInformation{{Pos: st.at.Pos(), Message: "logged here"}},
				})
			case takenCareAlreadyReturned:
				// Unreachable code, vet reports it.
			}
			states[v] = st
		}

	case *ast.ReturnStmt:
		for _, res := range s.Results {
			for _, v := range errorVars(pass.TypesInfo, res) {
				st := states[v]
				if st.setTakenCare(true, s) == takenCareAlreadyLogged {
					pass.Report(analysis.Diagnostic{
						Pos:     s.Pos(),
						End:     s.End(),
						Message: "error " + v.Name() + " is both logged and returned",
						Related: []analysis.RelatedInformation{{Pos: st.at.Pos(), Message: "logged here"}},
					})
				}
				states[v] = st
			}
		}

	case *ast.AssignStmt:
		for _, lhs := range s.Lhs {
			c.reset(pass, lhs, states)
		}

	case *ast.LabeledStmt:
		c.stmt(pass, s.Stmt, states)

	case *ast.BlockStmt:
		c.branch(pass, s.List, states)

	case *ast.IfStmt:
		if s.Init != nil {
			c.stmt(pass, s.Init, states)
		}
		c.branch(pass, s.Body.List, states)
		if s.Else != nil {
			c.branch(pass, []ast.Stmt{s.Else}, states)
		}

	case *ast.ForStmt:
		c.branch(pass, s.Body.List, states)

	case *ast.RangeStmt:
		c.branch(pass, s.Body.List, states)

	case *ast.SwitchStmt:
		if s.Init != nil {
			c.stmt(pass, s.Init, states)
		}
		for _, cc := range s.Body.List {
			c.branch(pass, cc.(*ast.CaseClause).Body, states)
		}

	case *ast.TypeSwitchStmt:
		for _, cc := range s.Body.List {
			c.branch(pass, cc.(*ast.CaseClause).Body, states)
		}

	case *ast.SelectStmt:
		for _, cc := range s.Body.List {
			c.branch(pass, cc.(*ast.CommClause).Body, states)
		}
	}
}

// branch walks a nested statement list. Variables logged there are considered logged
// after it too, unless the list ends the control flow.
func (c *noLogAndReturn) branch(pass *analysis.Pass, stmts []ast.Stmt, states errStates) {
	res := c.walk(pass, stmts, maps.Clone(states))
	if len(stmts) > 0 && terminates(stmts[len(stmts)-1]) {
		return
	}

	for v, st := range res {
		if _, ok := states[v]; ok || st.takenCare == nil || *st.takenCare {
			continue
		}
		states[v] = st
	}
}

func (c *noLogAndReturn) reset(pass *analysis.Pass, lhs ast.Expr, states errStates) {
	id, ok := ast.Unparen(lhs).(*ast.Ident)
	if !ok {
		return
	}

	obj := pass.TypesInfo.ObjectOf(id)
	if v, ok := obj.(*types.Var); ok {
		delete(states, v)
	}
}

func terminates(stmt ast.Stmt) bool {
	switch s := stmt.(type) {
	case *ast.ReturnStmt, *ast.BranchStmt:
		return true
	case *ast.ExprStmt:
		call, ok := ast.Unparen(s.X).(*ast.CallExpr)
		if !ok {
			return false
		}
		id, ok := call.Fun.(*ast.Ident)
		return ok && id.Name == "panic"
	default:
		return false
	}
}
