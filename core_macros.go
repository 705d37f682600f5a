// core_macros.go — the builtin macro providers
//
// Two provider modules make up the standard macro set. LoadMacros merges
// them, in this order, into every freshly seeded module (and NewExpander
// pre-merges them into its builtin fallback table); a later provider
// overrides an earlier one on name collision.
//
//	hy.core.result-macros — pattern macros over special-form shapes
//	hy.core.macros        — plain convenience rewrites
//
// Everything here is a pure tree rewrite into the special forms the
// downstream compiler consumes (if, do, not, ...), which are not macros, so
// expansion of the emitted forms halts at their heads. The recursive ones
// (cond, the threading arrows) emit a new call to themselves and rely on the
// rewrite loop re-resolving the root each iteration.
package hy

/* ===========================
   providers
   =========================== */

var coreProviders = []*Module{newResultMacros(), newCoreMacros()}

// CoreProviders returns the builtin macro-provider modules in merge order.
func CoreProviders() []*Module { return coreProviders }

// BuiltinMacros returns a fresh table merging every provider's macros, for
// use as an expander's builtin fallback.
func BuiltinMacros() MacroTable {
	t := MacroTable{}
	for _, m := range coreProviders {
		for k, d := range m.Macros {
			t[k] = d
		}
	}
	return t
}

func newResultMacros() *Module {
	m := NewModule("hy.core.result-macros", "hy/core/result_macros.hy")

	PatternMacro(m, []string{"when"}, NArgs(1, -1), "",
		func(c *Compiler, expr *Expression, name string, parsed []any) (any, error) {
			test := parsed[0].(Object)
			return Expr(Sym("if"), test, doBlock(parsed[1:]), Lit(nil)), nil
		})

	PatternMacro(m, []string{"unless"}, NArgs(1, -1), "",
		func(c *Compiler, expr *Expression, name string, parsed []any) (any, error) {
			test := parsed[0].(Object)
			return Expr(Sym("if"), test, Lit(nil), doBlock(parsed[1:])), nil
		})

	PatternMacro(m, []string{"if-not"}, NArgs(2, 3), "",
		func(c *Compiler, expr *Expression, name string, parsed []any) (any, error) {
			test := parsed[0].(Object)
			then := parsed[1].(Object)
			var els Object = Lit(nil)
			if len(parsed) == 3 {
				els = parsed[2].(Object)
			}
			return Expr(Sym("if"), Expr(Sym("not"), test), then, els), nil
		})

	return m
}

func newCoreMacros() *Module {
	m := NewModule("hy.core.macros", "hy/core/macros.hy")

	// (cond (test body...) ...) — nested ifs, one clause per iteration.
	m.InstallMacro("cond", func(c *Compiler, args []Object) (any, error) {
		if len(args) == 0 {
			return Lit(nil), nil
		}
		clause, ok := args[0].(*Expression)
		if !ok || len(clause.Items) == 0 {
			return nil, syntaxErrorAt(c, args[0], "cond clauses must be non-empty forms")
		}
		rest := append([]Object{Sym("cond")}, args[1:]...)
		return Expr(Sym("if"), clause.Items[0], doBlock(anySlice(clause.Items[1:])), Expr(rest...)), nil
	})

	// (-> x f (g a) ...) — thread-first; one step per iteration.
	m.InstallMacro("->", func(c *Compiler, args []Object) (any, error) {
		return thread(c, args, false)
	})

	// (->> x f (g a) ...) — thread-last.
	m.InstallMacro("->>", func(c *Compiler, args []Object) (any, error) {
		return thread(c, args, true)
	})

	return m
}

/* ===========================
   rewrite helpers
   =========================== */

func doBlock(body []any) Object {
	items := []Object{Sym("do")}
	for _, b := range body {
		items = append(items, b.(Object))
	}
	return Expr(items...)
}

func anySlice(items []Object) []any {
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}

func thread(c *Compiler, args []Object, last bool) (any, error) {
	if len(args) == 0 {
		return nil, syntaxErrorAt(c, nil, "threading macro needs at least one form")
	}
	if len(args) == 1 {
		return args[0], nil
	}
	x, step := args[0], args[1]
	var call *Expression
	if e, ok := step.(*Expression); ok {
		if last {
			call = Expr(append(append([]Object{}, e.Items...), x)...)
		} else {
			items := []Object{}
			if len(e.Items) > 0 {
				items = append(items, e.Items[0])
			}
			items = append(items, x)
			items = append(items, e.Items[1:]...)
			call = Expr(items...)
		}
	} else {
		call = Expr(step, x)
	}
	head := "->"
	if last {
		head = "->>"
	}
	rest := append([]Object{Sym(head), call}, args[2:]...)
	return Expr(rest...), nil
}

func syntaxErrorAt(c *Compiler, node Object, msg string) error {
	if c != nil {
		return c.SyntaxError(node, msg)
	}
	return &SyntaxError{Msg: msg, Expression: node}
}
