// hy — an interactive macro-expansion shell.
//
// With a file argument, every form in the file is read, fully expanded
// against a fresh module seeded with the builtin macros, and printed.
// Without arguments it starts a REPL: each entered form is expanded and the
// result printed back as source, which makes macro behavior inspectable
// without involving a compiler. `:step` expands a single level at a time.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"golang.org/x/term"

	hy "github.com/DevArtist254/hy"
)

const (
	appName     = "hy"
	historyFile = ".hy_expand_history"
	promptMain  = "=> "
	promptCont  = "... "
)

var banner = fmt.Sprintf("hy macro expander %s\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.", hy.Version)

const helpText = `
Commands:
  :quit           Exit
  :macros         List the macros visible to this session
  :step <form>    Expand <form> one level and print the result
`

func red(s string) string {
	if !hy.EnableColor {
		return s
	}
	return "\x1b[31m" + s + "\x1b[0m"
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [file.hy]\n", appName)
		flag.PrintDefaults()
	}
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println(hy.Version)
		return
	}

	hy.EnableColor = term.IsTerminal(int(os.Stdout.Fd()))

	if flag.NArg() > 0 {
		os.Exit(expandFile(flag.Arg(0)))
	}
	os.Exit(repl())
}

// session is the REPL/file expansion state: one user module seeded with the
// builtin macros, so (require ...)-style mutations done by entered macros
// would be visible to later forms.
type session struct {
	exp *hy.Expander
	mod *hy.Module
}

func newSession() *session {
	mod := hy.NewModule("repl", "")
	hy.LoadMacros(mod)
	return &session{exp: hy.NewExpander(nil), mod: mod}
}

func (s *session) compiler(filename, src string) *hy.Compiler {
	return &hy.Compiler{Module: s.mod, Filename: filename, Source: src}
}

func expandFile(file string) int {
	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, file, err)
		return 1
	}

	forms, rerr := hy.ReadAll(string(src))
	if rerr != nil {
		fmt.Fprintln(os.Stderr, red(rerr.Error()))
		return 1
	}

	s := newSession()
	c := s.compiler(file, string(src))
	for _, form := range forms {
		out, err := s.exp.ExpandAll(form, s.mod, c)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(hy.PrettyError(err)))
			return 1
		}
		fmt.Println(hy.PrintStr(out))
	}
	return 0
}

func repl() int {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	s := newSession()

	for {
		code, ok := readByReadProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			break
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		if strings.HasPrefix(trimmed, ":") {
			if done := s.command(trimmed); done {
				return 0
			}
			continue
		}

		s.expandAndPrint(code, false)
	}
	return 0
}

// command handles ":"-prefixed REPL commands; true means quit.
func (s *session) command(cmd string) bool {
	switch {
	case cmd == ":quit":
		return true
	case cmd == ":macros":
		names := map[string]bool{}
		for k := range s.exp.Builtins {
			names[k] = true
		}
		for k := range s.mod.Macros {
			names[k] = true
		}
		sorted := make([]string, 0, len(names))
		for k := range names {
			sorted = append(sorted, k)
		}
		sort.Strings(sorted)
		for _, k := range sorted {
			fmt.Println(hy.Green(k))
		}
	case strings.HasPrefix(cmd, ":step "):
		s.expandAndPrint(strings.TrimPrefix(cmd, ":step "), true)
	default:
		fmt.Print(helpText)
	}
	return false
}

func (s *session) expandAndPrint(code string, step bool) {
	forms, err := hy.ReadAll(code)
	if err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		return
	}
	c := s.compiler("<repl>", code)
	for _, form := range forms {
		var out any
		var eerr error
		if step {
			out, eerr = s.exp.Expand1(form, s.mod, c)
		} else {
			out, eerr = s.exp.ExpandAll(form, s.mod, c)
		}
		if eerr != nil {
			fmt.Fprintln(os.Stderr, red(hy.PrettyError(eerr)))
			continue
		}
		if o, ok := out.(hy.Object); ok {
			fmt.Println(hy.Blue(hy.PrintStr(o)))
		} else {
			fmt.Printf("%v\n", out)
		}
	}
}

// readByReadProbe keeps prompting for continuation lines until the buffered
// input reads as complete forms (or fails with a non-incomplete error, which
// is surfaced by the expansion path for a proper message).
func readByReadProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		_, rerr := hy.ReadAll(src)
		if rerr == nil || !hy.IsIncomplete(rerr) {
			return src, true
		}
	}
}
