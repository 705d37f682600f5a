// patterns.go — the argument-shape interface consumed by pattern macros
//
// The full pattern sublanguage used to destructure special-form argument
// lists lives outside this core; pattern macros (macros.go) only depend on
// the ArgPattern contract below. A non-match is reported as a *NoMatchError
// whose Pos is the index of the first argument the pattern could not accept
// (== len(args) when the arguments ran out early); the pattern-macro wrapper
// converts it into a positioned *SyntaxError.
//
// NArgs is the one combinator shipped here — it is all the builtin macros
// need, and it doubles as the reference implementation of the contract.
package hy

import "fmt"

// ArgPattern validates and destructures a pattern macro's raw arguments.
// Match returns the parse tree handed to the macro body, or an error
// (conventionally a *NoMatchError) describing the first mismatch.
type ArgPattern interface {
	Match(args []Object) ([]any, error)
}

// NoMatchError reports where an ArgPattern stopped accepting input. Messages
// mentioning exhausted input should use the phrase "end of input"; the
// pattern-macro wrapper rewords it per call site.
type NoMatchError struct {
	Pos int
	Msg string
}

func (e *NoMatchError) Error() string { return e.Msg }

// NArgs matches between min and max arguments (max < 0 means unbounded) and
// yields them unchanged, one parse-tree entry per argument.
func NArgs(min, max int) ArgPattern { return nargs{min: min, max: max} }

type nargs struct{ min, max int }

func (p nargs) Match(args []Object) ([]any, error) {
	if len(args) < p.min {
		return nil, &NoMatchError{
			Pos: len(args),
			Msg: fmt.Sprintf("expected at least %d arguments, got end of input", p.min),
		}
	}
	if p.max >= 0 && len(args) > p.max {
		return nil, &NoMatchError{
			Pos: p.max,
			Msg: fmt.Sprintf("expected at most %d arguments", p.max),
		}
	}
	tree := make([]any, len(args))
	for i, a := range args {
		tree[i] = a
	}
	return tree, nil
}
