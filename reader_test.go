package hy

import (
	"strings"
	"testing"
)

func Test_Read_Atoms(t *testing.T) {
	cases := []struct{ src, want string }{
		{"foo", "foo"},
		{"foo-bar?", "foo-bar?"}, // reader keeps surface spelling
		{"42", "42"},
		{"-3", "-3"},
		{"2.5", "2.5"},
		{`"hi\nthere"`, `"hi\nthere"`},
		{"None", "None"},
		{"True", "True"},
		{"False", "False"},
		{"+", "+"},
		{"1+", "1+"},
	}
	for _, tc := range cases {
		got := PrintStr(readForm(t, tc.src))
		if got != tc.want {
			t.Fatalf("read %q -> %q, want %q", tc.src, got, tc.want)
		}
	}
}

func Test_Read_AtomKinds(t *testing.T) {
	if _, ok := readForm(t, "42").(*Literal); !ok {
		t.Fatalf("integer should read as literal")
	}
	if _, ok := readForm(t, "+").(*Symbol); !ok {
		t.Fatalf("bare operator should read as symbol")
	}
	if _, ok := readForm(t, "inf").(*Symbol); !ok {
		t.Fatalf("'inf' must stay a symbol")
	}
	if l, ok := readForm(t, "2.5").(*Literal); !ok || l.Val != float64(2.5) {
		t.Fatalf("float should read as float literal")
	}
}

func Test_Read_FormsAndComments(t *testing.T) {
	o := readForm(t, "(f 1 ; trailing\n   (g 2))")
	wantPrint(t, o, "(f 1 (g 2))")

	forms, err := ReadAll("(a) (b)\n; just a comment\n(c)")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(forms) != 3 {
		t.Fatalf("want 3 forms, got %d", len(forms))
	}
}

func Test_Read_QuoteSugar(t *testing.T) {
	wantPrint(t, readForm(t, "'x"), "(quote x)")
	wantPrint(t, readForm(t, "'(a b)"), "(quote (a b))")
}

func Test_Read_Positions(t *testing.T) {
	o := readForm(t, "(f\n  (g 1))")
	e := o.(*Expression)
	if p := e.Pos(); p.Line != 1 || p.Col != 1 {
		t.Fatalf("outer form position, got %#v", p)
	}
	inner := e.Items[1].(*Expression)
	if p := inner.Pos(); p.Line != 2 || p.Col != 3 {
		t.Fatalf("inner form position, got %#v", p)
	}
	one := inner.Items[1]
	if p := one.Pos(); p.Line != 2 || p.Col != 6 {
		t.Fatalf("atom position, got %#v", p)
	}
}

func Test_Read_Errors(t *testing.T) {
	if _, err := ReadString(""); err == nil {
		t.Fatalf("empty input must fail")
	}
	_, err := ReadString("(a b")
	re, ok := err.(*ReadError)
	if !ok {
		t.Fatalf("want *ReadError, got %#v", err)
	}
	if !IsIncomplete(re) {
		t.Fatalf("unclosed paren should count as incomplete input")
	}
	if re.Line != 1 || re.Col != 1 {
		t.Fatalf("error should point at the opening paren, got %d:%d", re.Line, re.Col)
	}

	if _, err := ReadString(")"); err == nil || IsIncomplete(err) {
		t.Fatalf("stray ')' is a hard error: %v", err)
	}
	if _, err := ReadString(`"open`); err == nil || !IsIncomplete(err) {
		t.Fatalf("unclosed string should count as incomplete: %v", err)
	}
	if _, err := ReadString(`"\q"`); err == nil || !strings.Contains(err.Error(), "escape") {
		t.Fatalf("unknown escape should fail: %v", err)
	}
}
