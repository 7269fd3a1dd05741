package checks

import (
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/ast/inspector"

	"github.com/sirkon/checkverify/internal/cerrules"
	"github.com/sirkon/checkverify/internal/fixture"
	"github.com/sirkon/checkverify/internal/issue"
	"github.com/sirkon/checkverify/internal/runner"
)

// HandleInNonErrorFunc returns a check reporting `if err != nil` branches of functions
// without an error result when the branch neither logs nor abandons the execution.
//
// The cost of an issue is the number of statements in the branch, at least 1.
func HandleInNonErrorFunc(cfg *Config) runner.Check {
	return newHandleInNonErrorFunc(newKnownFuncs(cfg))
}

func newHandleInNonErrorFunc(known *knownFuncs) runner.Check {
	return &handleInNonErrorFunc{
		rule:  cerrules.HandleInNonErrorFunc(),
		known: known,
	}
}

type handleInNonErrorFunc struct {
	rule  cerrules.Rule
	known *knownFuncs
}

func (c *handleInNonErrorFunc) Name() string {
	return c.rule.Code()
}

func (c *handleInNonErrorFunc) Check(tree *fixture.Tree) ([]issue.Issue, error) {
	var res []issue.Issue

	pector := inspector.New(tree.ASTFiles())
	pector.WithStack([]ast.Node{(*ast.IfStmt)(nil)}, func(n ast.Node, push bool, stack []ast.Node) bool {
		if !push {
			return true
		}

		ifs := n.(*ast.IfStmt)
		v := checkedError(tree.Info, ifs.Cond)
		if v == nil {
			return true
		}

		sig := enclosingSignature(tree.Info, stack)
		if sig == nil || lastIsError(sig.Results()) {
			return true
		}
		if c.handled(tree.Info, ifs.Body) {
			return true
		}

		res = append(res, issue.Issue{
			Primary: tree.Span(ifs.If, ifs.Cond.End()),
			Message: "error " + v.Name() + " is neither logged nor abandoned",
			Cost:    issue.Cost(float64(max(1, len(ifs.Body.List)))),
		})
		return true
	})

	return res, nil
}

// handled checks if the body has a logging or abandon call. Nested function literals are skipped.
func (c *handleInNonErrorFunc) handled(info *types.Info, body *ast.BlockStmt) bool {
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
		if _, ok := c.known.logger(info, call); ok {
			found = true
		} else if _, ok := c.known.abandon(info, call); ok {
			found = true
		}
		return !found
	})

	return found
}

// checkedError returns the error variable of the `err != nil` or `nil != err` condition.
func checkedError(info *types.Info, cond ast.Expr) *types.Var {
	bin, ok := ast.Unparen(cond).(*ast.BinaryExpr)
	if !ok || bin.Op != token.NEQ {
		return nil
	}

	x, y := ast.Unparen(bin.X), ast.Unparen(bin.Y)
	if isNil(info, x) {
		x, y = y, x
	}
	if !isNil(info, y) {
		return nil
	}

	id, ok := x.(*ast.Ident)
	if !ok {
		return nil
	}
	v, ok := info.Uses[id].(*types.Var)
	if !ok || !isError(v.Type()) {
		return nil
	}

	return v
}

func isNil(info *types.Info, e ast.Expr) bool {
	id, ok := e.(*ast.Ident)
	if !ok {
		return false
	}
	_, ok = info.Uses[id].(*types.Nil)
	return ok
}

// enclosingSignature returns the signature of the innermost function around the stack top.
func enclosingSignature(info *types.Info, stack []ast.Node) *types.Signature {
	for i := len(stack) - 1; i >= 0; i-- {
		switch n := stack[i].(type) {
		case *ast.FuncDecl:
			fn, ok := info.Defs[n.Name].(*types.Func)
			if !ok {
				return nil
			}
			return fn.Signature()
		case *ast.FuncLit:
			sig, _ := info.TypeOf(n).(*types.Signature)
			return sig
		}
	}

	return nil
}
