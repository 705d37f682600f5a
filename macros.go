// macros.go — macro definitions, per-module macro tables, and registration
//
// WHAT THIS MODULE DOES
// =====================
// A macro is an invocable with a fixed display identity:
//
//	type MacroDef struct { Name string; Fn MacroFn }
//
// The Name is set once, at install time, to the mangled surface name — no
// runtime renaming of callables. Tables map mangled names to definitions and
// are owned by exactly one Module; definitions themselves may be shared
// (aliased) across tables by require (require.go).
//
// A Module owns two tables: the ordinary macro table and the reader-macro
// table (consumed by the external reader; this core only moves entries in
// and out of it). Identity is the module's canonical filesystem identity,
// an opaque comparable key supplied by the module loader; "" means unknown.
//
// Registration surfaces:
//
//   - (*Module).InstallMacro(name, fn)        — mangle, store, last write wins
//   - (*Module).InstallReaderMacro(name, fn)  — same, reader table
//   - PatternMacro(module, names, pattern, shadow, fn)
//     The declarative registrar: wraps fn so that, at invocation, the raw
//     arguments are destructured against `pattern` first. On mismatch it
//     raises a syntax error pinned to the first offending argument instead
//     of entering the body. If `shadow` is non-empty and any argument is an
//     iterable-unpack form, the wrapper rewrites the whole call into
//     ((. hy pyops <shadow>) args...) so the form degrades to an ordinary
//     function call instead of special syntax.
package hy

import (
	"fmt"
	"strings"
)

// MacroFn is the invocable part of a macro: it receives the compiler context
// (nil when expansion runs without one) and the raw, unexpanded argument
// forms, and returns either replacement syntax (anything AsModel accepts) or
// a terminal CompiledResult.
type MacroFn func(c *Compiler, args []Object) (any, error)

// MacroDef is a macro with its stable display identity.
type MacroDef struct {
	Name string
	Fn   MacroFn
}

// Call invokes the macro body. Diagnostic wrapping happens in the expansion
// engine, not here.
func (d *MacroDef) Call(c *Compiler, args []Object) (any, error) {
	return d.Fn(c, args)
}

// MacroTable maps mangled names to definitions.
type MacroTable map[string]*MacroDef

// Module is a macro-bearing compilation unit.
type Module struct {
	Name         string // dotted qualified name, e.g. "pkg.macros"
	Identity     string // canonical filesystem identity; "" = unknown
	Macros       MacroTable
	ReaderMacros MacroTable
	// Exports, when non-nil, is the module's explicit export list (surface
	// spellings). When nil, EXPORTS-style requires fall back to the
	// convention: every name not starting with "_".
	Exports []string
}

// NewModule returns a module with empty tables.
func NewModule(name, identity string) *Module {
	return &Module{
		Name:         name,
		Identity:     identity,
		Macros:       MacroTable{},
		ReaderMacros: MacroTable{},
	}
}

// InstallMacro canonicalizes name, stores fn in the module's macro table
// under it, and returns the definition. Re-installing a name silently
// overwrites the prior binding; this is how builtins get shadowed.
func (m *Module) InstallMacro(name string, fn MacroFn) *MacroDef {
	mangled := Mangle(name)
	def := &MacroDef{Name: mangled, Fn: fn}
	m.Macros[mangled] = def
	return def
}

// InstallReaderMacro is InstallMacro for the reader-macro table.
func (m *Module) InstallReaderMacro(name string, fn MacroFn) *MacroDef {
	mangled := Mangle(name)
	def := &MacroDef{Name: mangled, Fn: fn}
	m.ReaderMacros[mangled] = def
	return def
}

// PatternMacroFn is the body of a pattern macro: it receives the compiler,
// the whole call-form, the name the macro was invoked under, and the parse
// tree produced by the pattern.
type PatternMacroFn func(c *Compiler, expr *Expression, name string, parsed []any) (any, error)

// PatternMacro registers fn under each of names, wrapped with argument-shape
// validation (and the optional shadow-function rewrite described in the file
// header). It returns the installed definitions, one per name.
func PatternMacro(m *Module, names []string, pattern ArgPattern, shadow string, fn PatternMacroFn) []*MacroDef {
	defs := make([]*MacroDef, 0, len(names))
	for _, name := range names {
		name := name
		defs = append(defs, m.InstallMacro(name, func(c *Compiler, args []Object) (any, error) {
			if shadow != "" && anyUnpack(args) {
				// Degrade to an ordinary call of the shadow function.
				call := Expr(append([]Object{
					Expr(Sym("."), Sym("hy"), Sym("pyops"), Sym(shadow)),
				}, args...)...)
				if c != nil {
					return Replace(call, c.This), nil
				}
				return call, nil
			}

			var expr *Expression
			if c != nil {
				expr, _ = c.This.(*Expression)
			}

			parsed, err := pattern.Match(args)
			if err != nil {
				return nil, patternSyntaxError(c, expr, name, err)
			}
			return fn(c, expr, name, parsed)
		}))
	}
	return defs
}

func anyUnpack(args []Object) bool {
	for _, a := range args {
		if IsUnpack("iterable", a) {
			return true
		}
	}
	return false
}

// patternSyntaxError converts a pattern mismatch into a *SyntaxError pinned
// to the first unmatched argument of the call-form, or its last element when
// the arguments ran out.
func patternSyntaxError(c *Compiler, expr *Expression, name string, err error) error {
	msg := err.Error()
	pos := -1
	if nm, ok := err.(*NoMatchError); ok {
		pos = nm.Pos
	}
	msg = fmt.Sprintf("parse error for pattern macro '%s': %s",
		name, strings.ReplaceAll(msg, "end of input", "end of macro call"))

	var node Object
	if expr != nil && len(expr.Items) > 0 {
		// Argument i sits at expr.Items[i+1]; clamp to the last element for
		// end-of-input mismatches.
		i := len(expr.Items) - 1
		if pos >= 0 && pos+1 < i {
			i = pos + 1
		}
		node = expr.Items[i]
	}
	if c != nil {
		return c.SyntaxError(node, msg)
	}
	return &SyntaxError{Msg: msg, Expression: node}
}
