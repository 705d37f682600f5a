package hy

import (
	"fmt"
	"strconv"
	"strings"
)

/* ---------- globals & tiny helpers ---------- */

var EnableColor = false // REPL-only; tests can leave this false

const (
	colorReset = "\033[0m"
	colorGreen = "\033[32m"
	colorBlue  = "\033[34m"
)

func colorize(s, c string) string {
	if !EnableColor {
		return s
	}
	return c + s + colorReset
}

// Blue and Green tint REPL output (no-ops unless EnableColor is set).
func Blue(s string) string  { return colorize(s, colorBlue) }
func Green(s string) string { return colorize(s, colorGreen) }

/* ---------- form printing ---------- */

// PrintStr renders a syntax value back as surface text. Symbols print their
// unmangled spelling, string literals print quoted, and forms print as
// parenthesized sequences. Opaque literal payloads fall back to %v.
func PrintStr(o Object) string {
	var b strings.Builder
	printTo(&b, o)
	return b.String()
}

func printTo(b *strings.Builder, o Object) {
	switch x := o.(type) {
	case *Symbol:
		b.WriteString(x.Name)
	case *Literal:
		printLiteral(b, x.Val)
	case *Expression:
		b.WriteByte('(')
		for i, it := range x.Items {
			if i > 0 {
				b.WriteByte(' ')
			}
			printTo(b, it)
		}
		b.WriteByte(')')
	default:
		fmt.Fprintf(b, "%v", o)
	}
}

func printLiteral(b *strings.Builder, v any) {
	switch x := v.(type) {
	case nil:
		b.WriteString("None")
	case bool:
		if x {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case string:
		b.WriteString(strconv.Quote(x))
	case int64:
		b.WriteString(strconv.FormatInt(x, 10))
	case float64:
		b.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	default:
		fmt.Fprintf(b, "%v", x)
	}
}
