package checks

import (
	"go/ast"
	"go/types"
	"maps"

	"golang.org/x/tools/go/types/typeutil"
)

type packagedFunc struct {
	pkgPath string
	typ     string
	name    string
}

// knownFuncs resolves calls of functions with a known error handling meaning.
type knownFuncs struct {
	wraps    map[packagedFunc]WrapKind
	loggers  map[packagedFunc]LoggingKind
	abandons map[packagedFunc]AbandonKind
}

func newKnownFuncs(cfg *Config) *knownFuncs {
	if cfg == nil {
		cfg = &Config{}
	}

	wraps := map[packagedFunc]WrapKind{}
	for _, w := range cfg.Wraps {
		wraps[w.Ref.key()] = w.Kind
	}
	loggers := map[packagedFunc]LoggingKind{}
	for _, l := range cfg.Loggers {
		loggers[l.Ref.key()] = l.Kind
	}
	abandons := map[packagedFunc]AbandonKind{}
	for _, a := range cfg.Abandons {
		abandons[a.Ref.key()] = a.Kind
	}

	// Predefined ones cannot be overridden.
	maps.Insert(wraps, maps.All(predefinedWraps))
	maps.Insert(loggers, maps.All(predefinedLoggers))
	maps.Insert(abandons, maps.All(predefinedAbandons))

	return &knownFuncs{
		wraps:    wraps,
		loggers:  loggers,
		abandons: abandons,
	}
}

var predefinedWraps = map[packagedFunc]WrapKind{
	{pkgPath: "fmt", name: "Errorf"}: WrapKindFmt,

	{pkgPath: "github.com/sirkon/errors", name: "Wrap"}:  WrapKindErrors,
	{pkgPath: "github.com/sirkon/errors", name: "Wrapf"}: WrapKindErrors,

	// Were widely used before. I am sure they still are, at least in older codebases.
	{pkgPath: "github.com/pkg/errors", name: "Wrap"}:         WrapKindErrors,
	{pkgPath: "github.com/pkg/errors", name: "Wrapf"}:        WrapKindErrors,
	{pkgPath: "github.com/pkg/errors", name: "WithMessage"}:  WrapKindErrors,
	{pkgPath: "github.com/pkg/errors", name: "WithMessagef"}: WrapKindErrors,

	{pkgPath: "golang.org/x/xerrors", name: "Errorf"}: WrapKindFmt,
}

var predefinedLoggers = map[packagedFunc]LoggingKind{
	// Stdlib.
	{pkgPath: "builtin", name: "print"}:   LoggingKindFormat,
	{pkgPath: "builtin", name: "println"}: LoggingKindFormat,
	{pkgPath: "fmt", name: "Print"}:       LoggingKindFormat,
	{pkgPath: "fmt", name: "Printf"}:      LoggingKindFormat,
	{pkgPath: "fmt", name: "Println"}:     LoggingKindFormat,
	{pkgPath: "fmt", name: "Fprint"}:      LoggingKindFormat,
	{pkgPath: "fmt", name: "Fprintf"}:     LoggingKindFormat,
	{pkgPath: "fmt", name: "Fprintln"}:    LoggingKindFormat,
	{pkgPath: "log", name: "Print"}:       LoggingKindFormat,
	{pkgPath: "log", name: "Printf"}:      LoggingKindFormat,
	{pkgPath: "log", name: "Println"}:     LoggingKindFormat,
	{pkgPath: "log", name: "Panic"}:       LoggingKindFormat,
	{pkgPath: "log", name: "Panicf"}:      LoggingKindFormat,
	{pkgPath: "log", name: "Panicln"}:     LoggingKindFormat,
	{pkgPath: "log", name: "Fatal"}:       LoggingKindFormat,
	{pkgPath: "log", name: "Fatalf"}:      LoggingKindFormat,
	{pkgPath: "log", name: "Fatalln"}:     LoggingKindFormat,
	{pkgPath: "log/slog", name: "Debug"}:  LoggingKindSlog,
	{pkgPath: "log/slog", name: "Info"}:   LoggingKindSlog,
	{pkgPath: "log/slog", name: "Warn"}:   LoggingKindSlog,
	{pkgPath: "log/slog", name: "Error"}:  LoggingKindSlog,

	{pkgPath: "log", typ: "Logger", name: "Print"}:         LoggingKindFormat,
	{pkgPath: "log", typ: "Logger", name: "Printf"}:        LoggingKindFormat,
	{pkgPath: "log", typ: "Logger", name: "Println"}:       LoggingKindFormat,
	{pkgPath: "log/slog", typ: "Logger", name: "Debug"}:    LoggingKindSlog,
	{pkgPath: "log/slog", typ: "Logger", name: "Info"}:     LoggingKindSlog,
	{pkgPath: "log/slog", typ: "Logger", name: "Warn"}:     LoggingKindSlog,
	{pkgPath: "log/slog", typ: "Logger", name: "Error"}:    LoggingKindSlog,
	{pkgPath: "log/slog", typ: "Logger", name: "Log"}:      LoggingKindSlog,
	{pkgPath: "log/slog", typ: "Logger", name: "LogAttrs"}: LoggingKindSlog,

	// Zap.
	{pkgPath: "go.uber.org/zap", typ: "Logger", name: "Debug"}:  LoggingKindZap,
	{pkgPath: "go.uber.org/zap", typ: "Logger", name: "Info"}:   LoggingKindZap,
	{pkgPath: "go.uber.org/zap", typ: "Logger", name: "Warn"}:   LoggingKindZap,
	{pkgPath: "go.uber.org/zap", typ: "Logger", name: "Error"}:  LoggingKindZap,
	{pkgPath: "go.uber.org/zap", typ: "Logger", name: "DPanic"}: LoggingKindZap,
	{pkgPath: "go.uber.org/zap", typ: "Logger", name: "Panic"}:  LoggingKindZap,
	{pkgPath: "go.uber.org/zap", typ: "Logger", name: "Fatal"}:  LoggingKindZap,

	// Zerolog.
	{pkgPath: "github.com/rs/zerolog", typ: "Event", name: "Msg"}:  LoggingKindZeroLog,
	{pkgPath: "github.com/rs/zerolog", typ: "Event", name: "Msgf"}: LoggingKindZeroLog,
}

var predefinedAbandons = map[packagedFunc]AbandonKind{
	// Stdlib.
	{pkgPath: "builtin", name: "panic"}:                         AbandonKindSilent,
	{pkgPath: "os", name: "Exit"}:                               AbandonKindSilent,
	{pkgPath: "testing", typ: "T", name: "Fatal"}:               AbandonKindFormat,
	{pkgPath: "testing", typ: "T", name: "Fatalf"}:              AbandonKindFormat,
	{pkgPath: "testing", typ: "common", name: "Fatal"}:          AbandonKindFormat,
	{pkgPath: "testing", typ: "common", name: "Fatalf"}:         AbandonKindFormat,
	{pkgPath: "log", name: "Fatal"}:                             AbandonKindFormat,
	{pkgPath: "log", name: "Fatalf"}:                            AbandonKindFormat,
	{pkgPath: "log", name: "Fatalln"}:                           AbandonKindFormat,
	{pkgPath: "log", name: "Panic"}:                             AbandonKindFormat,
	{pkgPath: "log", name: "Panicf"}:                            AbandonKindFormat,
	{pkgPath: "log", name: "Panicln"}:                           AbandonKindFormat,
	{pkgPath: "go.uber.org/zap", typ: "Logger", name: "DPanic"}: AbandonKindZap,
	{pkgPath: "go.uber.org/zap", typ: "Logger", name: "Panic"}:  AbandonKindZap,
	{pkgPath: "go.uber.org/zap", typ: "Logger", name: "Fatal"}:  AbandonKindZap,
}

// callee resolves the function a call refers to. Calls of function values are not resolved.
func callee(info *types.Info, call *ast.CallExpr) (packagedFunc, types.Object, bool) {
	obj := typeutil.Callee(info, call)
	switch fn := obj.(type) {
	case *types.Builtin:
		return packagedFunc{pkgPath: "builtin", name: fn.Name()}, fn, true

	case *types.Func:
		if fn.Pkg() == nil {
			return packagedFunc{}, nil, false
		}

		res := packagedFunc{
			pkgPath: fn.Pkg().Path(),
			name:    fn.Name(),
		}
		sig, ok := fn.Type().(*types.Signature)
		if ok && sig.Recv() != nil {
			res.typ = receiverName(sig.Recv().Type())
		}

		return res, fn, true

	default:
		return packagedFunc{}, nil, false
	}
}

func receiverName(t types.Type) string {
	if p, ok := t.(*types.Pointer); ok {
		t = p.Elem()
	}
	switch v := types.Unalias(t).(type) {
	case *types.Named:
		return v.Obj().Name()
	default:
		return ""
	}
}

func (k *knownFuncs) wrap(info *types.Info, call *ast.CallExpr) (WrapKind, bool) {
	f, _, ok := callee(info, call)
	if !ok {
		return 0, false
	}

	kind, ok := k.wraps[f]
	return kind, ok
}

func (k *knownFuncs) logger(info *types.Info, call *ast.CallExpr) (LoggingKind, bool) {
	f, _, ok := callee(info, call)
	if !ok {
		return 0, false
	}

	kind, ok := k.loggers[f]
	return kind, ok
}

func (k *knownFuncs) abandon(info *types.Info, call *ast.CallExpr) (AbandonKind, bool) {
	f, _, ok := callee(info, call)
	if !ok {
		return 0, false
	}

	kind, ok := k.abandons[f]
	return kind, ok
}

// wrapped returns the error argument of a known wrap call. Nested wraps are unfolded.
func (k *knownFuncs) wrapped(info *types.Info, call *ast.CallExpr) (ast.Expr, bool) {
	kind, ok := k.wrap(info, call)
	if !ok {
		return nil, false
	}

	var arg ast.Expr
	switch kind {
	case WrapKindErrors:
		if len(call.Args) < 2 {
			return nil, false
		}
		arg = call.Args[0]
	case WrapKindFmt:
		for _, a := range call.Args[min(1, len(call.Args)):] {
			if isError(info.TypeOf(a)) {
				arg = a
				break
			}
		}
	}
	if arg == nil {
		return nil, false
	}

	if inner, ok := ast.Unparen(arg).(*ast.CallExpr); ok {
		if res, ok := k.wrapped(info, inner); ok {
			return res, true
		}
	}

	return arg, true
}

var errorType = types.Universe.Lookup("error").Type()

func isError(t types.Type) bool {
	return t != nil && types.Identical(t, errorType)
}

// lastIsError checks if the type is an error or a tuple ending with an error.
func lastIsError(t types.Type) bool {
	if tuple, ok := t.(*types.Tuple); ok {
		return tuple.Len() > 0 && isError(tuple.At(tuple.Len()-1).Type())
	}

	return isError(t)
}

// errorVars returns error variables referenced within the expression.
func errorVars(info *types.Info, expr ast.Node) []*types.Var {
	var res []*types.Var
	seen := map[*types.Var]struct{}{}
	ast.Inspect(expr, func(n ast.Node) bool {
		if _, ok := n.(*ast.FuncLit); ok {
			return false
		}
		id, ok := n.(*ast.Ident)
		if !ok {
			return true
		}
		v, ok := info.Uses[id].(*types.Var)
		if !ok || v.IsField() || !isError(v.Type()) {
			return true
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			res = append(res, v)
		}
		return true
	})

	return res
}
