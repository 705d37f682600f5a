package hy

import (
	"strings"
	"testing"
)

// --- local helpers ----------------------------------------------------------

func mustRequire(t *testing.T, e *Expander, source, target any, a Assignments, opts *RequireOpts) bool {
	t.Helper()
	ok, err := e.Require(source, target, a, opts)
	if err != nil {
		t.Fatalf("Require: %v", err)
	}
	return ok
}

func wantBound(t *testing.T, tab MacroTable, name string, def *MacroDef) {
	t.Helper()
	got, ok := tab[name]
	if !ok {
		t.Fatalf("name %q not bound; table has %v", name, sortedKeys(tab))
	}
	if got != def {
		t.Fatalf("name %q bound to %v, want aliased original %v", name, got, def)
	}
}

func srcModule(t *testing.T, name string, macros ...string) *Module {
	t.Helper()
	m := NewModule(name, "/lib/"+strings.ReplaceAll(name, ".", "/")+".hy")
	for _, n := range macros {
		m.InstallMacro(n, marker(n))
	}
	return m
}

// --- Require ----------------------------------------------------------------

func Test_Require_All_BindsEveryName(t *testing.T) {
	e := bareExpander()
	src := srcModule(t, "pkg.macros", "foo", "bar", "_helper")
	dst := NewModule("app", "/app.hy")

	if !mustRequire(t, e, src, dst, All, nil) {
		t.Fatalf("transfer reported nothing moved")
	}
	wantBound(t, dst.Macros, "foo", src.Macros["foo"])
	wantBound(t, dst.Macros, "bar", src.Macros["bar"])
	wantBound(t, dst.Macros, "_helper", src.Macros["_helper"])
}

func Test_Require_ExplicitList_BindsOnlyAlias(t *testing.T) {
	e := bareExpander()
	src := srcModule(t, "pkg.macros", "foo", "other")
	dst := NewModule("app", "/app.hy")

	mustRequire(t, e, src, dst, List(Assign{Name: "foo", Alias: "bar"}), nil)
	wantBound(t, dst.Macros, "bar", src.Macros["foo"])
	if _, ok := dst.Macros["foo"]; ok {
		t.Fatalf("original name should not be bound by an aliased require")
	}
	if _, ok := dst.Macros["other"]; ok {
		t.Fatalf("unrequested names must not transfer")
	}
}

func Test_Require_ExplicitList_MissingName_Fails(t *testing.T) {
	e := bareExpander()
	src := srcModule(t, "pkg.macros", "foo")
	dst := NewModule("app", "/app.hy")

	_, err := e.Require(src, dst, List(Assign{Name: "absent", Alias: "absent"}), nil)
	re, ok := err.(*RequireError)
	if !ok {
		t.Fatalf("want *RequireError, got %#v", err)
	}
	if !strings.Contains(re.Msg, "absent") || !strings.Contains(re.Msg, "pkg.macros") {
		t.Fatalf("message must name symbol and source module: %q", re.Msg)
	}
	if len(dst.Macros) != 0 {
		t.Fatalf("no partial success: table should stay empty, has %v", sortedKeys(dst.Macros))
	}
}

func Test_Require_Exports_ConventionSkipsUnderscoreNames(t *testing.T) {
	e := bareExpander()
	src := srcModule(t, "pkg.macros", "_helper", "public1")
	dst := NewModule("app", "/app.hy")

	mustRequire(t, e, src, dst, Exports, nil)
	wantBound(t, dst.Macros, "public1", src.Macros["public1"])
	if _, ok := dst.Macros["_helper"]; ok {
		t.Fatalf("underscore-prefixed names are private by convention")
	}
}

func Test_Require_Exports_ExplicitListWins(t *testing.T) {
	e := bareExpander()
	src := srcModule(t, "pkg.macros", "a", "b", "_c")
	src.Exports = []string{"b", "_c"} // explicit list overrides the convention
	dst := NewModule("app", "/app.hy")

	mustRequire(t, e, src, dst, Exports, nil)
	if _, ok := dst.Macros["a"]; ok {
		t.Fatalf("name outside the declared export list transferred")
	}
	wantBound(t, dst.Macros, "b", src.Macros["b"])
	wantBound(t, dst.Macros, "_c", src.Macros["_c"])
}

func Test_Require_Prefix_JoinsAndMangles(t *testing.T) {
	e := bareExpander()
	src := srcModule(t, "pkg.macros", "foo-bar")
	dst := NewModule("app", "/app.hy")

	mustRequire(t, e, src, dst, All, &RequireOpts{Prefix: "my-pkg"})
	wantBound(t, dst.Macros, "my_pkg.foo_bar", src.Macros["foo_bar"])
}

func Test_Require_SelfRequire_NoOp(t *testing.T) {
	e := bareExpander()
	mod := srcModule(t, "app", "m")
	before := len(mod.Macros)

	if mustRequire(t, e, mod, mod, All, nil) {
		t.Fatalf("self-require should report nothing transferred")
	}
	if len(mod.Macros) != before {
		t.Fatalf("self-require changed the table")
	}
}

func Test_Require_SelfRequire_ByCanonicalIdentity(t *testing.T) {
	e := bareExpander()
	// Same file re-imported under a different qualified name.
	a := srcModule(t, "app", "m")
	b := NewModule("app.reimported", a.Identity)

	if mustRequire(t, e, a, b, All, nil) {
		t.Fatalf("identity-equal modules are the same module")
	}
}

func Test_Require_UnknownIdentity_Proceeds(t *testing.T) {
	e := bareExpander()
	src := NewModule("a", "")
	src.InstallMacro("m", marker("m"))
	dst := NewModule("b", "")

	if !mustRequire(t, e, src, dst, All, nil) {
		t.Fatalf("unknown identities must compare as distinct modules")
	}
	wantBound(t, dst.Macros, "m", src.Macros["m"])
}

func Test_Require_RawTableTarget(t *testing.T) {
	e := bareExpander()
	src := srcModule(t, "pkg.macros", "foo")
	tab := MacroTable{}

	mustRequire(t, e, src, tab, All, nil)
	wantBound(t, tab, "foo", src.Macros["foo"])
}

func Test_Require_NilTarget_UsesCompilerModule(t *testing.T) {
	e := bareExpander()
	src := srcModule(t, "pkg.macros", "foo")
	dst := NewModule("app", "/app.hy")
	c := &Compiler{Module: dst}

	mustRequire(t, e, src, nil, All, &RequireOpts{Compiler: c})
	wantBound(t, dst.Macros, "foo", src.Macros["foo"])
}

func Test_Require_SourceByPath(t *testing.T) {
	src := srcModule(t, "pkg.macros", "foo")
	e := bareExpander()
	e.Resolver = mapResolver{"pkg.macros": src}
	dst := NewModule("app", "/app.hy")

	mustRequire(t, e, "pkg.macros", dst, All, nil)
	wantBound(t, dst.Macros, "foo", src.Macros["foo"])
}

func Test_Require_SourceByRelativePath(t *testing.T) {
	sib := srcModule(t, "pkg.sibling", "foo")
	deep := srcModule(t, "pkg.other", "bar")
	e := bareExpander()
	e.Resolver = mapResolver{"pkg.sibling": sib, "pkg.other": deep}
	dst := NewModule("pkg.app", "/pkg/app.hy")

	// One leading dot: sibling of the target module.
	mustRequire(t, e, ".sibling", dst, All, nil)
	wantBound(t, dst.Macros, "foo", sib.Macros["foo"])

	// Two dots from a deeper target, via the explicit base-name override.
	dst2 := NewModule("somewhere.else", "/x.hy")
	mustRequire(t, e, "..other", dst2, All, &RequireOpts{TargetModuleName: "pkg.sub.app"})
	wantBound(t, dst2.Macros, "bar", deep.Macros["bar"])
}

func Test_Require_UnresolvablePath_IsRequireError(t *testing.T) {
	e := bareExpander()
	e.Resolver = mapResolver{}
	dst := NewModule("app", "/app.hy")

	_, err := e.Require("no.such.module", dst, All, nil)
	if _, ok := err.(*RequireError); !ok {
		t.Fatalf("want *RequireError, got %#v", err)
	}
}

func Test_Require_WarnOnCoreShadow(t *testing.T) {
	e := bareExpander()
	src := srcModule(t, "pkg.macros", "when", "also")
	dst := NewModule("app", "/app.hy")

	var warned []string
	c := &Compiler{Module: dst, WarnOnCoreShadow: func(name string) { warned = append(warned, name) }}

	mustRequire(t, e, src, dst, All, &RequireOpts{Compiler: c})
	if len(warned) != 2 {
		t.Fatalf("want one warning per aliased name, got %v", warned)
	}
}

// --- hierarchical packages ---------------------------------------------------

func Test_Require_MacrolessSource_ExplicitList_PullsSubmodules(t *testing.T) {
	pkg := NewModule("pkg", "/pkg/__init__.hy") // exposes no macros
	sub := srcModule(t, "pkg.tools", "hammer", "saw")
	e := bareExpander()
	e.Resolver = mapResolver{"pkg": pkg, "pkg.tools": sub}
	dst := NewModule("app", "/app.hy")

	ok := mustRequire(t, e, pkg, dst, List(Assign{Name: "tools", Alias: "t"}), nil)
	if !ok {
		t.Fatalf("submodule fallback should report a transfer")
	}
	wantBound(t, dst.Macros, "t.hammer", sub.Macros["hammer"])
	wantBound(t, dst.Macros, "t.saw", sub.Macros["saw"])
}

func Test_Require_MacrolessSource_AllOrExports_NothingTransferred(t *testing.T) {
	pkg := NewModule("pkg", "/pkg/__init__.hy")
	e := bareExpander()
	dst := NewModule("app", "/app.hy")

	if mustRequire(t, e, pkg, dst, All, nil) {
		t.Fatalf("ALL on a macro-less module transfers nothing")
	}
	if mustRequire(t, e, pkg, dst, Exports, nil) {
		t.Fatalf("EXPORTS on a macro-less module transfers nothing")
	}
}

func Test_Require_MacrolessSource_BadSubmodule_NamesBoth(t *testing.T) {
	pkg := NewModule("pkg", "/pkg/__init__.hy")
	e := bareExpander()
	e.Resolver = mapResolver{"pkg": pkg}
	dst := NewModule("app", "/app.hy")

	_, err := e.Require(pkg, dst, List(Assign{Name: "ghost", Alias: "g"}), nil)
	re, ok := err.(*RequireError)
	if !ok {
		t.Fatalf("want *RequireError, got %#v", err)
	}
	if !strings.Contains(re.Msg, "cannot import name 'ghost'") || !strings.Contains(re.Msg, "'pkg'") {
		t.Fatalf("message must name both the name and the source: %q", re.Msg)
	}
}

// --- reader macros -----------------------------------------------------------

func Test_RequireReader_AllAndList(t *testing.T) {
	e := bareExpander()
	src := NewModule("pkg.readers", "/pkg/readers.hy")
	src.InstallReaderMacro("json", marker("json"))
	src.InstallReaderMacro("csv", marker("csv"))

	dst := NewModule("app", "/app.hy")
	ok, err := e.RequireReader(src, dst, All)
	if err != nil || !ok {
		t.Fatalf("RequireReader ALL: ok=%v err=%v", ok, err)
	}
	wantBound(t, dst.ReaderMacros, "json", src.ReaderMacros["json"])
	wantBound(t, dst.ReaderMacros, "csv", src.ReaderMacros["csv"])

	dst2 := NewModule("app2", "/app2.hy")
	if _, err := e.RequireReader(src, dst2, List(Assign{Name: "json"})); err != nil {
		t.Fatalf("RequireReader list: %v", err)
	}
	if _, ok := dst2.ReaderMacros["csv"]; ok {
		t.Fatalf("unrequested reader macro transferred")
	}

	if _, err := e.RequireReader(src, dst2, List(Assign{Name: "xml"})); err == nil {
		t.Fatalf("missing reader name must fail")
	}

	if _, err := e.RequireReader(src, dst2, Exports); err == nil {
		t.Fatalf("EXPORTS is not a reader-macro semantics")
	}
}

func Test_EnableReaders(t *testing.T) {
	mod := NewModule("app", "/app.hy")
	mod.InstallReaderMacro("json", marker("json"))
	reader := MacroTable{}

	if err := EnableReaders(mod, reader, All); err != nil {
		t.Fatalf("EnableReaders: %v", err)
	}
	wantBound(t, reader, "json", mod.ReaderMacros["json"])

	err := EnableReaders(mod, reader, List(Assign{Name: "ghost"}))
	ne, ok := err.(*NameError)
	if !ok {
		t.Fatalf("want *NameError, got %#v", err)
	}
	if !strings.Contains(ne.Msg, "ghost") {
		t.Fatalf("message must name the missing reader: %q", ne.Msg)
	}
}

// --- seeding -----------------------------------------------------------------

func Test_LoadMacros_SeedsStandardSet(t *testing.T) {
	mod := NewModule("app", "/app.hy")
	mod.InstallMacro("leftover", marker("x"))

	LoadMacros(mod)
	if _, ok := mod.Macros["leftover"]; ok {
		t.Fatalf("LoadMacros must reset prior macros")
	}
	for _, name := range []string{"when", "unless", "if_not", "cond", "->", "->>"} {
		if _, ok := mod.Macros[Mangle(name)]; !ok {
			t.Fatalf("standard macro %q missing after seeding; have %v", name, sortedKeys(mod.Macros))
		}
	}
}

func Test_LoadMacros_LaterProvidersOverride(t *testing.T) {
	mod := NewModule("app", "/app.hy")
	LoadMacros(mod)

	providers := CoreProviders()
	last := providers[len(providers)-1]
	for k, d := range last.Macros {
		if mod.Macros[k] != d {
			t.Fatalf("binding for %q does not come from the last provider that defines it", k)
		}
	}
}

func Test_BuiltinMacros_FreshCopy(t *testing.T) {
	a := BuiltinMacros()
	b := BuiltinMacros()
	delete(a, "cond")
	if _, ok := b["cond"]; !ok {
		t.Fatalf("BuiltinMacros must return independent tables")
	}
}
