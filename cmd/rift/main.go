// Command rift is the CLI front door for the interpreter in the parent
// package: a batch `run` mode and an interactive REPL, grounded on the
// teacher's cmd/msg/main.go (liner-backed line editing, a history file
// in the user's home directory, signal-flushed history on interrupt).
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	rift "github.com/Octa-Org/Rift"
)

const (
	appName     = "rift"
	historyFile = ".rift_history"
	promptMain  = "==> "
	promptCont  = "... "

	// version is a build-time constant; a real release would stamp this
	// via -ldflags, but no build tooling exists yet in this repository.
	version = "0.1.0-dev"
)

func main() {
	if len(os.Args) < 2 {
		os.Exit(cmdRepl())
	}

	switch os.Args[1] {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "version":
		fmt.Println(version)
	case "-h", "--help", "help":
		usage()
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [run <file>|version]\n%s with no arguments starts the REPL.\n", appName, appName)
}

func cmdRun(args []string) int {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s run <file>\n", appName)
		return 2
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, args[0], err)
		return 1
	}

	env := rift.NewEnvironment()
	prog, diagErrs := parseSource(string(src), env)
	if prog == nil {
		fmt.Fprint(os.Stderr, diagErrs.Snippets(string(src)))
		return 1
	}

	interp := rift.NewInterpreter(env)
	if _, err := interp.Run(prog); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	return 0
}

func parseSource(src string, env *rift.Environment) (*rift.Program, *rift.Reporter) {
	lex := rift.NewLexer(src)
	tokens, lexErrs := lex.ScanTokens()
	report := &rift.Reporter{}
	for _, e := range lexErrs {
		report.Report(e)
	}
	if report.HasErrors() {
		return nil, report
	}
	p := rift.NewParser(tokens, env)
	prog, perr := p.Parse()
	return prog, perr
}

func cmdRepl() int {
	fmt.Printf("Rift %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.\n", version)

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
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	env := rift.NewEnvironment()
	interp := rift.NewInterpreter(env)

	for {
		code, ok := readStatement(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			return 0
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if trimmed == ":quit" {
			return 0
		}

		prog, report := parseSource(code, env)
		if prog == nil {
			fmt.Fprint(os.Stderr, report.Snippets(code))
			continue
		}
		results, err := interp.Run(prog)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			continue
		}
		for _, r := range results {
			fmt.Println(r)
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}
}

// readStatement reads lines until braces balance and the buffered input
// looks like a complete statement (ends with ';' or '}'), so a multi-line
// block typed across several prompts is submitted as one parse.
func readStatement(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder
	depth := 0

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
		depth += strings.Count(line, "{") - strings.Count(line, "}")

		trimmed := strings.TrimSpace(line)
		if depth <= 0 && (trimmed == "" || strings.HasSuffix(trimmed, ";") || strings.HasSuffix(trimmed, "}") || strings.HasPrefix(trimmed, ":")) {
			return b.String(), true
		}
	}
}
