package checks

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/sirkon/checkverify/internal/cerrules"
)

// NoSilentDrop returns an analyzer reporting error results that are neither assigned
// nor checked: calls used as statements and errors assigned to the blank identifier.
func NoSilentDrop(cfg *Config) *analysis.Analyzer {
	return newNoSilentDrop(newKnownFuncs(cfg))
}

func newNoSilentDrop(known *knownFuncs) *analysis.Analyzer {
	rule := cerrules.NoSilentDrop()
	c := &noSilentDrop{known: known}

	return &analysis.Analyzer{
		Name:             rule.Code(),
		Doc:              rule.Description(),
		Requires:         []*analysis.Analyzer{inspect.Analyzer},
		RunDespiteErrors: true,
		Run:              c.run,
	}
}

type noSilentDrop struct {
	known *knownFuncs
}

func (c *noSilentDrop) run(pass *analysis.Pass) (any, error) {
	pector := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.ExprStmt)(nil),
		(*ast.AssignStmt)(nil),
	}

	pector.Preorder(nodeFilter, func(node ast.Node) {
		switch n := node.(type) {
		case *ast.ExprStmt:
			call, ok := ast.Unparen(n.X).(*ast.CallExpr)
			if !ok || !lastIsError(pass.TypesInfo.TypeOf(call)) {
				return
			}
			if c.isReporting(pass.TypesInfo, call) {
				return
			}
			c.report(pass, call)

		case *ast.AssignStmt:
			c.checkAssign(pass, n)
		}
	})

	return nil, nil
}

func (c *noSilentDrop) checkAssign(pass *analysis.Pass, n *ast.AssignStmt) {
	// v, _ := f()
	if len(n.Rhs) == 1 && len(n.Lhs) > 1 {
		call, ok := ast.Unparen(n.Rhs[0]).(*ast.CallExpr)
		if !ok {
			return
		}
		tuple, ok := pass.TypesInfo.TypeOf(call).(*types.Tuple)
		if !ok || tuple.Len() != len(n.Lhs) {
			return
		}
		for i, lhs := range n.Lhs {
			if isBlank(lhs) && isError(tuple.At(i).Type()) {
				c.report(pass, call)
				return
			}
		}
		return
	}

	// _ = f(), a, _ = g(), h()
	if len(n.Lhs) != len(n.Rhs) {
		return
	}
	for i, lhs := range n.Lhs {
		call, ok := ast.Unparen(n.Rhs[i]).(*ast.CallExpr)
		if !ok || !isBlank(lhs) {
			continue
		}
		if isError(pass.TypesInfo.TypeOf(call)) {
			c.report(pass, call)
		}
	}
}

// isReporting checks if the call is a known logging or abandon one: their errors are of no interest.
func (c *noSilentDrop) isReporting(info *types.Info, call *ast.CallExpr) bool {
	if _, ok := c.known.logger(info, call); ok {
		return true
	}
	_, ok := c.known.abandon(info, call)
	return ok
}

func (c *noSilentDrop) report(pass *analysis.Pass, call *ast.CallExpr) {
	name := types.ExprString(call.Fun)
	d := analysis.Diagnostic{
		Pos:     call.Pos(),
		End:     call.End(),
		Message: "error returned by " + name + " is dropped",
	}

	_, obj, ok := callee(pass.TypesInfo, call)
	if ok && obj.Pkg() == pass.Pkg && obj.Pos().IsValid() {
		d.Related = append(d.Related, analysis.RelatedInformation{
			Pos:     obj.Pos(),
			Message: "function declared here",
		})
	}

	pass.Report(d)
}

func isBlank(e ast.Expr) bool {
	id, ok := e.(*ast.Ident)
	return ok && id.Name == "_"
}
