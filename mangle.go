// mangle.go — surface-name canonicalization
//
// Macro tables are keyed by *mangled* names: a deterministic normalization of
// the surface spelling into a plain identifier, so that two spellings which
// mangle alike (e.g. `foo-bar` and `foo_bar`) share one macro slot.
//
// Rules, applied per dot-separated component (dots themselves survive, so a
// qualified name like `pkg.foo-bar` mangles to `pkg.foo_bar`):
//
//  1. a trailing `?` turns into an `is_` prefix:        `odd?`  → `is_odd`
//  2. every `-` becomes `_`:                            `as-is` → `as_is`
//  3. any remaining rune outside [A-Za-z0-9_] is replaced with a `hyx_<hex>`
//     escape so the result is always a plain identifier: `a+b`  → `ahyx_2Bb`
//  4. a leading digit gets a `hyx_` guard:              `1st`   → `hyx_1st`
//
// Mangling already-mangled names is a no-op.
package hy

import (
	"fmt"
	"strings"
)

// Mangle canonicalizes a surface name into a macro-table key. Dot-separated
// components are mangled independently and re-joined, so dotted lookup keys
// built by the expander stay distinct from plain symbol keys.
func Mangle(s string) string {
	if s == "" {
		return s
	}
	if strings.ContainsRune(s, '.') {
		parts := strings.Split(s, ".")
		for i, p := range parts {
			parts[i] = mangleComponent(p)
		}
		return strings.Join(parts, ".")
	}
	return mangleComponent(s)
}

func mangleComponent(s string) string {
	if s == "" {
		return s
	}
	if strings.HasSuffix(s, "?") && len(s) > 1 {
		s = "is_" + s[:len(s)-1]
	}
	s = strings.ReplaceAll(s, "-", "_")

	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteString("hyx_")
			}
			b.WriteRune(r)
		default:
			fmt.Fprintf(&b, "hyx_%X", r)
		}
	}
	return b.String()
}
