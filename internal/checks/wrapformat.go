package checks

import (
	"go/ast"
	"go/token"
	"strconv"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/sirkon/checkverify/internal/cerrules"
)

const wrapFormatSuffix = ": %w"

// AnnotationFormat returns an analyzer reporting fmt-style wraps of errors whose
// format literal does not end with ": %w".
func AnnotationFormat(cfg *Config) *analysis.Analyzer {
	return newAnnotationFormat(newKnownFuncs(cfg))
}

func newAnnotationFormat(known *knownFuncs) *analysis.Analyzer {
	rule := cerrules.AnnotationFormatMustEndWithW()

	return &analysis.Analyzer{
		Name:             rule.Code(),
		Doc:              rule.Description(),
		Requires:         []*analysis.Analyzer{inspect.Analyzer},
		RunDespiteErrors: true,
		Run: func(pass *analysis.Pass) (any, error) {
			pector := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

			pector.Preorder([]ast.Node{(*ast.CallExpr)(nil)}, func(node ast.Node) {
				call := node.(*ast.CallExpr)

				kind, ok := known.wrap(pass.TypesInfo, call)
				if !ok || kind != WrapKindFmt || len(call.Args) < 2 {
					return
				}
				if _, ok := known.wrapped(pass.TypesInfo, call); !ok {
					// Not a wrap, just a new error.
					return
				}

				lit, ok := ast.Unparen(call.Args[0]).(*ast.BasicLit)
				if !ok || lit.Kind != token.STRING {
					// Non-literal formats are out of this rule.
					return
				}
				format, err := strconv.Unquote(lit.Value)
				if err != nil || strings.HasSuffix(format, wrapFormatSuffix) {
					return
				}

				diag := analysis.Diagnostic{
					Pos:     lit.Pos(),
					End:     lit.End(),
					Message: "annotation format " + lit.Value + ` must end with ": %w"`,
				}
				if fixed, ok := fixWrapFormat(format); ok {
					diag.SuggestedFixes = []analysis.SuggestedFix{{
						Message: `End the format with ": %w"`,
						TextEdits: []analysis.TextEdit{{
							Pos:     lit.Pos(),
							End:     lit.End(),
							NewText: []byte(strconv.Quote(fixed)),
						}},
					}}
				}
				pass.Report(diag)
			})

			return nil, nil
		},
	}
}

// fixWrapFormat turns "failed %w" or "failed:%w" into "failed: %w". Formats with the wrapped
// error in the middle are left as is.
func fixWrapFormat(format string) (string, bool) {
	base, ok := strings.CutSuffix(format, "%w")
	if !ok {
		return "", false
	}
	base = strings.TrimRight(base, " :")
	if base == "" {
		return "", false
	}

	return base + wrapFormatSuffix, true
}
