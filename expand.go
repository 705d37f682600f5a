// expand.go — head resolution and the macro-expansion rewrite loop
//
// WHAT THIS MODULE DOES
// =====================
// Expand repeatedly rewrites the *root* of a tree: while the tree is a
// non-empty Expression whose head names a macro, the macro is invoked with
// the raw argument forms and its result spliced back in as the new root.
// The head is re-resolved on every iteration because an expansion may itself
// be headed by a different macro call — the loop is a fixed-point iteration,
// not a single substitution pass.
//
// Head resolution order (strict, no fuzzy matching):
//
//  1. the compiler's scope stack, innermost frame first
//  2. the module's own macro table
//  3. the expander's builtin table (injected at construction; see NewExpander)
//
// so a lexically closer macro always masks an outer one, and a module's own
// macros always mask builtins.
//
// The loop stops when: the head is not a symbol or dotted attribute chain,
// the head resolves to nothing, the macro returned a terminal CompiledResult,
// or the caller asked for a single step. On every non-result exit the final
// value is normalized with AsModel.
//
// Failure discipline: each macro invocation runs inside a diagnostic
// boundary. Language errors (see errors.go) pass through unchanged; any
// other error — or panic — becomes a *MacroExpansionError carrying the
// call-form and, when a compiler was supplied, its filename and source.
//
// Reentrancy: a macro body may call back into the compiler and trigger
// nested expansion. The only engine state held across a macro call is the
// compiler's This slot, which is saved and restored around every invocation,
// including on the failure path. ScopeStack frames are likewise paired
// Push/Pop; callers defer the Pop so failures cannot leak frames.
package hy

import "fmt"

/* ===========================
   PUBLIC API
   =========================== */

// CompiledResult marks the terminal compiled-result sentinel: a macro return
// value meaning "this is already final; do not re-expand". The downstream
// compiler owns the concrete types.
type CompiledResult interface {
	CompiledResult()
}

// ScopeStack is an ordered sequence of macro tables for lexically nested
// macro-definition contexts, searched innermost (most recently pushed) first.
type ScopeStack struct {
	frames []MacroTable
}

// Push enters a nested lexical frame. Pair it with a deferred Pop.
func (s *ScopeStack) Push(t MacroTable) { s.frames = append(s.frames, t) }

// Pop leaves the innermost frame. Popping an empty stack is a programming
// error and panics.
func (s *ScopeStack) Pop() {
	if len(s.frames) == 0 {
		panic("hy: ScopeStack.Pop on empty stack")
	}
	s.frames = s.frames[:len(s.frames)-1]
}

// Len reports the current nesting depth.
func (s *ScopeStack) Len() int { return len(s.frames) }

// Lookup scans innermost-first and returns the first definition bound to the
// mangled name.
func (s *ScopeStack) Lookup(name string) (*MacroDef, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if d, ok := s.frames[i][name]; ok {
			return d, true
		}
	}
	return nil, false
}

// Compiler is the surface the downstream compiler exposes to macros and to
// the expansion engine. All fields may be left zero except Module, which
// require/expansion fall back to when no explicit module is given.
type Compiler struct {
	Module   *Module
	Filename string
	Source   string
	Scopes   ScopeStack
	// This is the current expression under expansion, maintained by the
	// engine for the duration of each macro call.
	This Object
	// WarnOnCoreShadow, when set, is invoked by require for every aliased
	// name that may shadow a builtin.
	WarnOnCoreShadow func(name string)
}

// SyntaxError builds a *SyntaxError against this compiler's file and source.
func (c *Compiler) SyntaxError(node Object, msg string) error {
	return &SyntaxError{Msg: msg, Expression: node, Filename: c.Filename, Source: c.Source}
}

// Expander holds the collaborators head resolution and require need: the
// module loader and the process-default builtin table.
type Expander struct {
	// Resolver loads modules by dotted path; nil disables path sources.
	Resolver ModuleResolver
	// Builtins is the fallback macro table consulted after the module's own.
	// It is fixed at construction; mutate it only before first use.
	Builtins MacroTable
}

// NewExpander returns an expander whose builtin table merges the core
// provider modules in their listed order (later providers override earlier).
func NewExpander(r ModuleResolver) *Expander {
	return &Expander{Resolver: r, Builtins: BuiltinMacros()}
}

// Expand expands the toplevel macros of tree until none applies.
//
// `module` is a *Module or a dotted path resolved through the expander's
// Resolver; it supplies the second resolution namespace. `c` may be nil.
// `once` stops after the first rewrite. When a macro returns a terminal
// CompiledResult: with resultOK the sentinel is returned as-is, bypassing
// further expansion and final normalization; without it the pre-expansion
// tree for that step is returned instead and the loop stops.
func (e *Expander) Expand(tree Object, module any, c *Compiler, once, resultOK bool) (any, error) {
	mod, err := e.asModule(module)
	if err != nil {
		return nil, err
	}

	for {
		form, ok := tree.(*Expression)
		if !ok || len(form.Items) == 0 {
			break // not a macro call
		}
		name, ok := headName(form.Items[0])
		if !ok {
			break // head shape cannot name a macro
		}
		def, ok := e.resolve(name, c, mod)
		if !ok {
			break // unresolved head
		}

		obj, err := e.invoke(def, form, c)
		if err != nil {
			return nil, err
		}
		if r, ok := obj.(CompiledResult); ok {
			if resultOK {
				return r, nil
			}
			return tree, nil
		}

		tree = Replace(AsModel(obj), form)
		if once {
			break
		}
	}
	return AsModel(tree), nil
}

// Expand1 expands the toplevel macro of tree once.
func (e *Expander) Expand1(tree Object, module any, c *Compiler) (any, error) {
	return e.Expand(tree, module, c, true, true)
}

// ExpandAll fully expands tree, treating terminal results as "keep the
// pre-expansion tree", so the return value is always syntax.
func (e *Expander) ExpandAll(tree Object, module any, c *Compiler) (Object, error) {
	v, err := e.Expand(tree, module, c, false, false)
	if err != nil {
		return nil, err
	}
	return v.(Object), nil
}

//// END_OF_PUBLIC

/* ===========================
   PRIVATE: resolution & the invocation boundary
   =========================== */

// headName computes the lookup key for a call head: dotted attribute chains
// (. a b c) join their mangled components as "a.b.c"; plain symbols mangle
// directly; any other shape is not a macro call.
func headName(head Object) (string, bool) {
	switch h := head.(type) {
	case *Expression:
		if len(h.Items) < 2 {
			return "", false
		}
		dot, ok := h.Items[0].(*Symbol)
		if !ok || dot.Name != "." {
			return "", false
		}
		parts := make([]string, 0, len(h.Items)-1)
		for _, it := range h.Items[1:] {
			s, ok := it.(*Symbol)
			if !ok {
				return "", false
			}
			parts = append(parts, Mangle(s.Name))
		}
		return joinDotted(parts), true
	case *Symbol:
		return Mangle(h.Name), true
	default:
		return "", false
	}
}

func joinDotted(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += "." + p
	}
	return out
}

// resolve picks the first namespace binding name: scope stack, then module,
// then builtins.
func (e *Expander) resolve(name string, c *Compiler, mod *Module) (*MacroDef, bool) {
	if c != nil {
		if d, ok := c.Scopes.Lookup(name); ok {
			return d, true
		}
	}
	if mod != nil {
		if d, ok := mod.Macros[name]; ok {
			return d, true
		}
	}
	d, ok := e.Builtins[name]
	return d, ok
}

// invoke runs one macro call inside the diagnostic boundary: This is saved
// and restored (also on panic), language errors pass through, and everything
// else is normalized into a *MacroExpansionError.
func (e *Expander) invoke(def *MacroDef, form *Expression, c *Compiler) (obj any, err error) {
	if c != nil {
		prev := c.This
		c.This = form
		defer func() { c.This = prev }()
	}
	defer func() {
		if r := recover(); r != nil {
			if le, ok := r.(LanguageError); ok {
				err = le
				return
			}
			err = wrapMacroFailure(fmt.Sprintf("%v", r), form, c)
		}
	}()

	obj, err = def.Call(c, form.Items[1:])
	if err != nil {
		if _, ok := err.(LanguageError); ok {
			return nil, err
		}
		return nil, wrapMacroFailure(err.Error(), form, c)
	}
	return obj, nil
}

func wrapMacroFailure(detail string, form *Expression, c *Compiler) error {
	e := &MacroExpansionError{
		Msg:        fmt.Sprintf("expanding macro %s\n  %s", headString(form), detail),
		Expression: form,
	}
	if c != nil {
		e.Filename = c.Filename
		e.Source = c.Source
	}
	return e
}

// asModule accepts the forms `module` arguments take across the public API.
func (e *Expander) asModule(module any) (*Module, error) {
	switch m := module.(type) {
	case nil:
		return nil, nil
	case *Module:
		return m, nil
	case string:
		return e.importModule(m, "")
	default:
		return nil, fmt.Errorf("hy: module argument must be *Module or string, got %T", module)
	}
}
