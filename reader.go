// reader.go — a position-tracking s-expression reader
//
// The expansion core proper consumes trees, it does not parse text; this
// reader exists so the REPL and the tests can build trees from source the
// same way the real front end would, with every node carrying a 1-based
// line/column Position that the caret renderer in errors.go understands.
//
// Accepted syntax: `(` `)` forms, `'x` quote sugar reading as (quote x),
// double-quoted strings with the usual escapes, integers, floats, `;`
// comments to end of line, and symbols (anything else up to whitespace or a
// delimiter). `None`, `True`, and `False` read as literals.
//
// Errors are *ReadError values with the offending coordinates.
package hy

import (
	"fmt"
	"strconv"
	"strings"
)

// ReadError reports unreadable input. Line and Col are 1-based.
type ReadError struct {
	Line, Col int
	Msg       string
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// IsIncomplete reports whether err means the input stopped mid-form (an
// unclosed paren or string), which a REPL treats as "keep reading" rather
// than a failure.
func IsIncomplete(err error) bool {
	re, ok := err.(*ReadError)
	return ok && strings.HasPrefix(re.Msg, "unclosed")
}

// ReadString reads exactly one form from src.
func ReadString(src string) (Object, error) {
	r := &reader{src: src, line: 1, col: 1}
	r.skipSpace()
	if r.eof() {
		return nil, r.errf("no form in input")
	}
	return r.readForm()
}

// ReadAll reads every form in src.
func ReadAll(src string) ([]Object, error) {
	r := &reader{src: src, line: 1, col: 1}
	var out []Object
	for {
		r.skipSpace()
		if r.eof() {
			return out, nil
		}
		form, err := r.readForm()
		if err != nil {
			return nil, err
		}
		out = append(out, form)
	}
}

type reader struct {
	src       string
	pos       int
	line, col int
}

func (r *reader) eof() bool { return r.pos >= len(r.src) }

func (r *reader) peek() byte { return r.src[r.pos] }

func (r *reader) next() byte {
	c := r.src[r.pos]
	r.pos++
	if c == '\n' {
		r.line++
		r.col = 1
	} else {
		r.col++
	}
	return c
}

func (r *reader) errf(format string, args ...any) error {
	return &ReadError{Line: r.line, Col: r.col, Msg: fmt.Sprintf(format, args...)}
}

func (r *reader) skipSpace() {
	for !r.eof() {
		switch c := r.peek(); {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == ',':
			r.next()
		case c == ';':
			for !r.eof() && r.peek() != '\n' {
				r.next()
			}
		default:
			return
		}
	}
}

func (r *reader) here() *Position { return &Position{Line: r.line, Col: r.col} }

func (r *reader) readForm() (Object, error) {
	start := r.here()
	switch c := r.peek(); c {
	case '(':
		r.next()
		items := []Object{}
		for {
			r.skipSpace()
			if r.eof() {
				return nil, &ReadError{Line: start.Line, Col: start.Col, Msg: "unclosed '('"}
			}
			if r.peek() == ')' {
				r.next()
				e := &Expression{Items: items}
				e.SetPos(r.closed(start))
				return e, nil
			}
			item, err := r.readForm()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
	case ')':
		return nil, r.errf("unexpected ')'")
	case '\'':
		r.next()
		r.skipSpace()
		if r.eof() {
			return nil, r.errf("quote at end of input")
		}
		quoted, err := r.readForm()
		if err != nil {
			return nil, err
		}
		q := Sym("quote")
		q.SetPos(start)
		e := Expr(q, quoted)
		e.SetPos(r.closed(start))
		return e, nil
	case '"':
		return r.readString(start)
	default:
		return r.readAtom(start)
	}
}

func (r *reader) closed(start *Position) *Position {
	return &Position{Line: start.Line, Col: start.Col, EndLine: r.line, EndCol: r.col - 1}
}

func (r *reader) readString(start *Position) (Object, error) {
	r.next() // opening quote
	var b strings.Builder
	for {
		if r.eof() {
			return nil, &ReadError{Line: start.Line, Col: start.Col, Msg: "unclosed string"}
		}
		c := r.next()
		switch c {
		case '"':
			l := Lit(b.String())
			l.SetPos(r.closed(start))
			return l, nil
		case '\\':
			if r.eof() {
				return nil, &ReadError{Line: start.Line, Col: start.Col, Msg: "unclosed string"}
			}
			switch e := r.next(); e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '"', '\\':
				b.WriteByte(e)
			default:
				return nil, r.errf("unknown escape '\\%c'", e)
			}
		default:
			b.WriteByte(c)
		}
	}
}

func isDelim(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', ',', '(', ')', '"', ';':
		return true
	}
	return false
}

func (r *reader) readAtom(start *Position) (Object, error) {
	var b strings.Builder
	for !r.eof() && !isDelim(r.peek()) {
		b.WriteByte(r.next())
	}
	text := b.String()
	pos := r.closed(start)

	var o Object
	switch {
	case text == "None":
		o = Lit(nil)
	case text == "True":
		o = Lit(true)
	case text == "False":
		o = Lit(false)
	default:
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			o = Lit(n)
		} else if f, err := strconv.ParseFloat(text, 64); err == nil && looksNumeric(text) {
			o = Lit(f)
		} else {
			o = Sym(text)
		}
	}
	o.SetPos(pos)
	return o, nil
}

// looksNumeric keeps symbols like `+` or `1+` from being wooed into floats
// by ParseFloat's permissiveness ("inf", "nan" stay symbols too).
func looksNumeric(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '+' || s[0] == '-' {
		i = 1
	}
	return i < len(s) && s[i] >= '0' && s[i] <= '9'
}
