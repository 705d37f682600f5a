// require.go — sharing macro tables across modules
//
// OVERVIEW
// --------
// Require copies (aliases) macro bindings from a source module's table into a
// target table, under possibly-aliased, possibly-prefixed names. The source
// may be a live *Module or a dotted import path resolved through the
// expander's ModuleResolver; relative paths (leading dots) resolve against
// the target module's own qualified name, one level up per leading dot.
//
// Assignment semantics:
//
//   - All      — every macro in the source table, aliased to itself.
//   - Exports  — every macro whose name is exported: the source's explicit
//     Exports list when it declares one, else every name not
//     starting with "_".
//   - List(..) — explicit (name, alias) pairs; a missing name fails with a
//     *RequireError naming the source module. No partial success:
//     the first missing name aborts the call.
//
// Self-require — source and target resolving to the same canonical Identity,
// or being the same *Module — is a no-op returning false ("nothing
// transferred"). Identity is an opaque key computed by the module loader
// from the resolved absolute path; an unknown ("") identity on either side
// compares as *not* the same module, so require proceeds. That permissive
// choice mirrors the original system's behavior on filesystem-probe errors.
//
// Hierarchical packages: a source module that exposes no macros at all turns
// each bare name in an explicit list into a submodule path (`source.name`)
// and recursively requires All of it under the alias as prefix. A failure
// there is re-raised as "cannot import name 'X' from 'Y'".
//
// RequireReader is the simpler sibling for reader-macro tables (All or
// explicit list only — no exports, no prefix, no submodule fallback).
// EnableReaders moves registered reader macros into a live reader's table.
// LoadMacros seeds a fresh module with the core providers' tables.
//
// Concurrency: tables are mutated here with no locking; the host is expected
// to serialize module loading, as stated in the module docs.
package hy

import (
	"fmt"
	"sort"
	"strings"
)

/* ===========================
   PUBLIC API
   =========================== */

// ModuleResolver is the module-loading collaborator: it turns an absolute
// dotted path into a live module. Resolution/IO failures surface as require
// errors to the caller of Require.
type ModuleResolver interface {
	Resolve(name string) (*Module, error)
}

// Assign is one (name, alias) pair of an explicit assignment list.
type Assign struct {
	Name, Alias string
}

// Assignments selects which macros a require call transfers.
type Assignments struct {
	kind int
	list []Assign
}

const (
	assignAll = iota
	assignExports
	assignList
)

// All transfers every macro in the source table.
var All = Assignments{kind: assignAll}

// Exports transfers the source module's exported macros.
var Exports = Assignments{kind: assignExports}

// List transfers exactly the given (name, alias) pairs.
func List(entries ...Assign) Assignments {
	return Assignments{kind: assignList, list: entries}
}

// RequireOpts carries the optional parameters of Require.
type RequireOpts struct {
	// Prefix, when non-empty, is joined to each alias with "." before
	// canonicalization.
	Prefix string
	// TargetModuleName overrides the base qualified name used to resolve a
	// relative source path (defaults to the target module's Name).
	TargetModuleName string
	// Compiler, when set, receives WarnOnCoreShadow calls for each aliased
	// name and supplies the fallback target module.
	Compiler *Compiler
}

// SameModule reports whether two modules are the same underlying file,
// compared by canonical Identity (or plain pointer identity). Unknown
// identities compare as not-same, so require proceeds rather than failing;
// see the file header.
func SameModule(a, b *Module) bool {
	if a == nil || b == nil {
		return false
	}
	if a == b {
		return true
	}
	return a.Identity != "" && a.Identity == b.Identity
}

// Require loads macros from a module. It returns whether any macros were
// actually transferred.
//
// `source` is a *Module or a dotted path string. `target` is a *Module, a
// raw MacroTable (non-module injection), or nil to use the compiler's
// module from opts.
func (e *Expander) Require(source, target any, a Assignments, opts *RequireOpts) (bool, error) {
	if opts == nil {
		opts = &RequireOpts{}
	}

	targetMod, targetTable, err := requireTarget(target, opts)
	if err != nil {
		return false, err
	}

	base := opts.TargetModuleName
	if base == "" && targetMod != nil {
		base = targetMod.Name
	}
	src, err := e.sourceModule(source, base)
	if err != nil {
		return false, err
	}

	// Quick check that the source isn't the module being compiled (e.g. a
	// module re-imported under another name); compared by file identity.
	if targetMod != nil && SameModule(src, targetMod) {
		return false, nil
	}

	if len(src.Macros) == 0 {
		// No macros here: with an explicit list, treat each bare name as a
		// submodule path and pull everything from it under the alias.
		if a.kind != assignList {
			return false, nil
		}
		for _, as := range a.list {
			sub := src.Name + "." + Mangle(as.Name)
			if _, err := e.Require(sub, target, All, &RequireOpts{Prefix: as.Alias, Compiler: opts.Compiler}); err != nil {
				if _, ok := err.(*RequireError); ok {
					return false, &RequireError{Msg: fmt.Sprintf(
						"cannot import name '%s' from '%s' (%s)", as.Name, src.Name, src.Identity)}
				}
				return false, err
			}
		}
		return true, nil
	}

	for _, as := range resolveAssignments(src, a) {
		mangled := Mangle(as.Name)
		aliased := as.Alias
		if opts.Prefix != "" {
			aliased = opts.Prefix + "." + aliased
		}
		if opts.Compiler != nil && opts.Compiler.WarnOnCoreShadow != nil {
			opts.Compiler.WarnOnCoreShadow(aliased)
		}
		def, ok := src.Macros[mangled]
		if !ok {
			return false, &RequireError{Msg: fmt.Sprintf(
				"could not require name %s from %s", mangled, src.Name)}
		}
		targetTable[Mangle(aliased)] = def
	}
	return true, nil
}

// RequireReader transfers reader macros. Only All and explicit lists are
// supported; aliases and prefixes do not apply to reader macros.
func (e *Expander) RequireReader(source, target any, a Assignments) (bool, error) {
	targetMod, targetTable, err := readerTarget(target)
	if err != nil {
		return false, err
	}

	base := ""
	if targetMod != nil {
		base = targetMod.Name
	}
	src, err := e.sourceModule(source, base)
	if err != nil {
		return false, err
	}
	if targetMod != nil && SameModule(src, targetMod) {
		return false, nil
	}

	var names []string
	switch a.kind {
	case assignAll:
		names = sortedKeys(src.ReaderMacros)
	case assignList:
		for _, as := range a.list {
			names = append(names, as.Name)
		}
	default:
		return false, &RequireError{Msg: "require-reader accepts only ALL or an explicit name list"}
	}

	for _, name := range names {
		mangled := Mangle(name)
		def, ok := src.ReaderMacros[mangled]
		if !ok {
			return false, &RequireError{Msg: fmt.Sprintf(
				"could not require name %s from %s", mangled, src.Name)}
		}
		targetTable[mangled] = def
	}
	return true, nil
}

// EnableReaders copies reader macros registered on module into a live
// reader's table. `names` is All or an explicit list; asking for a name that
// was never registered fails with a *NameError.
func EnableReaders(module *Module, reader MacroTable, a Assignments) error {
	var names []string
	switch a.kind {
	case assignAll:
		names = sortedKeys(module.ReaderMacros)
	case assignList:
		for _, as := range a.list {
			names = append(names, as.Name)
		}
	default:
		return &RequireError{Msg: "enable-readers accepts only ALL or an explicit name list"}
	}
	for _, name := range names {
		mangled := Mangle(name)
		def, ok := module.ReaderMacros[mangled]
		if !ok {
			return &NameError{Msg: fmt.Sprintf("reader %s is not defined", name)}
		}
		reader[mangled] = def
	}
	return nil
}

// LoadMacros resets module's macro and reader-macro tables, then merges in
// every core provider module's tables in listed order (later providers
// overwrite earlier ones). This is the seeding step that gives a fresh
// module the standard macro set before user code runs. Calling it on a core
// provider module itself is not guarded against and will clear the provider.
func LoadMacros(module *Module) {
	module.Macros = MacroTable{}
	module.ReaderMacros = MacroTable{}
	for _, provider := range CoreProviders() {
		for k, d := range provider.Macros {
			module.Macros[k] = d
		}
		for k, d := range provider.ReaderMacros {
			module.ReaderMacros[k] = d
		}
	}
}

//// END_OF_PUBLIC

/* ===========================
   PRIVATE: source/target derivation
   =========================== */

func requireTarget(target any, opts *RequireOpts) (*Module, MacroTable, error) {
	switch t := target.(type) {
	case *Module:
		return t, t.Macros, nil
	case MacroTable:
		return nil, t, nil
	case nil:
		if opts.Compiler != nil && opts.Compiler.Module != nil {
			m := opts.Compiler.Module
			return m, m.Macros, nil
		}
		return nil, nil, fmt.Errorf("hy: require target omitted and no compiler module available")
	default:
		return nil, nil, fmt.Errorf("hy: require target must be *Module, MacroTable, or nil, got %T", target)
	}
}

func readerTarget(target any) (*Module, MacroTable, error) {
	switch t := target.(type) {
	case *Module:
		return t, t.ReaderMacros, nil
	case MacroTable:
		return nil, t, nil
	default:
		return nil, nil, fmt.Errorf("hy: require-reader target must be *Module or MacroTable, got %T", target)
	}
}

// sourceModule accepts a live module or a dotted path (resolved against
// base when relative).
func (e *Expander) sourceModule(source any, base string) (*Module, error) {
	switch s := source.(type) {
	case *Module:
		return s, nil
	case string:
		return e.importModule(s, base)
	default:
		return nil, fmt.Errorf("hy: require source must be *Module or string, got %T", source)
	}
}

// importModule resolves spec through the module loader. A leading dot walks
// one level up base per dot: ".sib" against "pkg.mod" is "pkg.sib",
// "..other" against "pkg.sub.mod" is "pkg.other".
func (e *Expander) importModule(spec, base string) (*Module, error) {
	name := spec
	if strings.HasPrefix(spec, ".") {
		dots := 0
		for dots < len(spec) && spec[dots] == '.' {
			dots++
		}
		parts := []string{}
		if base != "" {
			parts = strings.Split(base, ".")
		}
		for i := 0; i < dots && len(parts) > 0; i++ {
			parts = parts[:len(parts)-1]
		}
		rest := spec[dots:]
		if rest != "" {
			parts = append(parts, rest)
		}
		name = strings.Join(parts, ".")
	}
	if e.Resolver == nil {
		return nil, &RequireError{Msg: fmt.Sprintf("no module resolver to import %s", name)}
	}
	m, err := e.Resolver.Resolve(name)
	if err != nil {
		return nil, &RequireError{Msg: err.Error()}
	}
	return m, nil
}

// resolveAssignments expands All/Exports into concrete (name, alias) pairs,
// in sorted name order for deterministic transfer and warning sequences.
func resolveAssignments(src *Module, a Assignments) []Assign {
	if a.kind == assignList {
		return a.list
	}
	exported := map[string]bool{}
	if a.kind == assignExports {
		if src.Exports != nil {
			for _, name := range src.Exports {
				exported[Mangle(name)] = true
			}
		} else {
			for k := range src.Macros {
				if !strings.HasPrefix(k, "_") {
					exported[k] = true
				}
			}
		}
	}
	var out []Assign
	for _, k := range sortedKeys(src.Macros) {
		if a.kind == assignAll || exported[k] {
			out = append(out, Assign{Name: k, Alias: k})
		}
	}
	return out
}

func sortedKeys(t MacroTable) []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
