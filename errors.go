// errors.go: the expansion error taxonomy and caret-snippet rendering
//
// What this file does
// -------------------
// Every failure this core can raise is one of a small set of typed errors:
//
//   - *SyntaxError         — a pattern macro's arguments did not match its
//     declared shape; points at the offending argument.
//   - *MacroExpansionError — the uniform wrapper for anything unexpected that
//     escapes a macro body; carries the call-form and, when a compiler context
//     was available, the source filename and text.
//   - *RequireError        — a requested macro name was absent from a source
//     module, or a recursive submodule require failed.
//   - *NameError           — reader-enabling asked for a reader macro that was
//     never registered.
//
// SyntaxError and MacroExpansionError are *language errors*: they carry their
// own position information, and the expansion boundary (expand.go) propagates
// them unchanged so inner diagnostics keep their precision. Everything else
// raised inside a macro body is normalized into a MacroExpansionError exactly
// once, at the invocation boundary.
//
// `PrettyError` renders positioned errors as a numbered snippet with a caret
// under the 1-based column, clamping out-of-range coordinates so rendering
// never fails:
//
//	MACRO EXPANSION ERROR in lib.hy at 3:2: expanding macro `boom`
//	  division by zero
//
//	   2 | (defn f [x]
//	   3 |  (boom x))
//	     |  ^
//
// Errors without a position (or without source text) render as their plain
// message. Output is plain text, no ANSI colors.
package hy

import (
	"fmt"
	"strings"
)

/* ===========================
   PUBLIC API
   =========================== */

// LanguageError marks the error kinds that carry their own diagnostics and
// must cross the expansion boundary unchanged.
type LanguageError interface {
	error
	LanguageError()
}

// SyntaxError reports a shape mismatch between a pattern macro's declared
// argument grammar and the raw arguments it received.
type SyntaxError struct {
	Msg        string
	Expression Object // the offending node (first unmatched argument)
	Filename   string
	Source     string
}

func (e *SyntaxError) Error() string  { return e.Msg }
func (e *SyntaxError) LanguageError() {}

// MacroExpansionError is the uniform wrapper for unexpected failures raised
// from inside a macro body.
type MacroExpansionError struct {
	Msg        string
	Expression Object // the macro call-form being expanded
	Filename   string
	Source     string
}

func (e *MacroExpansionError) Error() string  { return e.Msg }
func (e *MacroExpansionError) LanguageError() {}

// RequireError reports a failed macro transfer; its message always names both
// the missing symbol and the source module.
type RequireError struct {
	Msg string
}

func (e *RequireError) Error() string { return e.Msg }

// NameError reports a reader-macro name that was never registered.
type NameError struct {
	Msg string
}

func (e *NameError) Error() string { return e.Msg }

// PrettyError renders err with a caret snippet when it is a positioned
// language error that carries source text; other errors render as-is.
func PrettyError(err error) string {
	switch e := err.(type) {
	case *SyntaxError:
		return prettySnippet("SYNTAX ERROR", e.Filename, e.Source, e.Expression, e.Msg)
	case *MacroExpansionError:
		return prettySnippet("MACRO EXPANSION ERROR", e.Filename, e.Source, e.Expression, e.Msg)
	default:
		return err.Error()
	}
}

//// END_OF_PUBLIC

/* ===========================
   PRIVATE: snippet rendering
   =========================== */

// prettySnippet builds the numbered caret snippet. Coordinates are 1-based
// and clamped to the source bounds; when no position or source is available
// it degrades to "HEADER [in name]: msg".
func prettySnippet(header, name, src string, node Object, msg string) string {
	var pos *Position
	if node != nil {
		pos = node.Pos()
	}
	if pos == nil || src == "" {
		if name != "" {
			return fmt.Sprintf("%s in %s: %s", header, name, msg)
		}
		return fmt.Sprintf("%s: %s", header, msg)
	}

	line, col := pos.Line, pos.Col
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line > len(lines) {
		line = len(lines)
	}
	lineTxt := lines[line-1]
	if col > len(lineTxt)+1 {
		col = len(lineTxt) + 1
	}

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lineTxt)
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
