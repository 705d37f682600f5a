package hy

import (
	"strings"
	"testing"
)

// seeded returns an expander with the standard builtin table and a user
// module that carries no macros of its own.
func seeded() (*Expander, *Module) {
	return NewExpander(nil), NewModule("user", "")
}

func Test_Core_When(t *testing.T) {
	e, mod := seeded()
	out := expandAll(t, e, mod, "(when ok (a) (b))")
	wantPrint(t, out, "(if ok (do (a) (b)) None)")
}

func Test_Core_Unless(t *testing.T) {
	e, mod := seeded()
	out := expandAll(t, e, mod, "(unless ok (a))")
	wantPrint(t, out, "(if ok None (do (a)))")
}

func Test_Core_IfNot(t *testing.T) {
	e, mod := seeded()
	out := expandAll(t, e, mod, "(if-not ok 1 2)")
	wantPrint(t, out, "(if (not ok) 1 2)")

	out = expandAll(t, e, mod, "(if-not ok 1)")
	wantPrint(t, out, "(if (not ok) 1 None)")
}

func Test_Core_When_TooFewArguments(t *testing.T) {
	e, mod := seeded()
	c := &Compiler{Module: mod, Source: "(when)"}
	_, err := e.ExpandAll(readForm(t, "(when)"), mod, c)
	se, ok := err.(*SyntaxError)
	if !ok {
		t.Fatalf("want *SyntaxError, got %#v", err)
	}
	if !strings.Contains(se.Msg, "pattern macro 'when'") {
		t.Fatalf("got %q", se.Msg)
	}
}

func Test_Core_Cond(t *testing.T) {
	e, mod := seeded()
	out := expandAll(t, e, mod, "(cond (a 1) (b 2))")
	// One clause per rewrite; the nested cond stays for the compiler to
	// expand when it reaches that subtree.
	wantPrint(t, out, "(if a (do 1) (cond (b 2)))")

	out = expandAll(t, e, mod, "(cond)")
	wantPrint(t, out, "None")
}

func Test_Core_Cond_BadClause(t *testing.T) {
	e, mod := seeded()
	_, err := e.ExpandAll(readForm(t, "(cond x)"), mod, nil)
	if _, ok := err.(*SyntaxError); !ok {
		t.Fatalf("want *SyntaxError, got %#v", err)
	}
}

func Test_Core_ThreadFirst(t *testing.T) {
	e, mod := seeded()
	out := expandAll(t, e, mod, "(-> x (f a) g)")
	wantPrint(t, out, "(g (f x a))")

	out = expandAll(t, e, mod, "(-> x)")
	wantPrint(t, out, "x")
}

func Test_Core_ThreadLast(t *testing.T) {
	e, mod := seeded()
	out := expandAll(t, e, mod, "(->> x (f a) g)")
	wantPrint(t, out, "(g (f a x))")
}

func Test_Core_UserShadowsBuiltin(t *testing.T) {
	e, mod := seeded()
	mod.InstallMacro("when", marker("custom"))

	out := expandAll(t, e, mod, "(when ok 1)")
	wantPrint(t, out, "(custom)")

	other := NewModule("other", "")
	out = expandAll(t, e, other, "(when ok 1)")
	wantPrint(t, out, "(if ok (do 1) None)")
}

func Test_CoreProviders_OrderAndNames(t *testing.T) {
	ps := CoreProviders()
	if len(ps) != 2 {
		t.Fatalf("want two providers, got %d", len(ps))
	}
	if ps[0].Name != "hy.core.result-macros" || ps[1].Name != "hy.core.macros" {
		t.Fatalf("provider order changed: %s, %s", ps[0].Name, ps[1].Name)
	}
}
