// whiskerlua is a small CLI around the whisker scripting engine: it runs
// script files and offers a REPL against a persistent engine instance, so
// authors can try node scripts outside the editor.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"

	luaengine "github.com/writewhisker/whisker-editor-web-sub003"
)

const (
	appName     = "whiskerlua"
	historyFile = ".whiskerlua_history"
	promptMain  = "==> "
	promptCont  = "... "
)

func red(s string) string   { return "\x1b[31m" + s + "\x1b[0m" }
func green(s string) string { return "\x1b[32m" + s + "\x1b[0m" }
func blue(s string) string  { return "\x1b[94m" + s + "\x1b[0m" }

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch cmd := os.Args[1]; cmd {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl())
	case "version":
		fmt.Println(luaengine.Version)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`whisker scripting engine %s

Usage:
  %s run <file.lua>    Run a script and print its output.
  %s repl              Start an interactive session.
  %s version           Print the engine version.

`, luaengine.Version, appName, appName, appName)
}

// -----------------------------------------------------------------------------
// run
// -----------------------------------------------------------------------------

func cmdRun(args []string) int {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s run <file.lua>\n", appName)
		return 2
	}
	src, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, args[0], err)
		return 1
	}

	eng := luaengine.New()
	res := eng.Execute(string(src))
	for _, line := range res.Output {
		fmt.Println(line)
	}
	for _, e := range res.Errors {
		fmt.Fprintln(os.Stderr, red(e))
	}
	if !res.Success {
		return 1
	}
	return 0
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func cmdRepl() int {
	eng := luaengine.New()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	histPath := filepath.Join(os.TempDir(), historyFile)
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
	}
	if f, err := os.Open(histPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Printf("whisker scripting engine %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.\n", luaengine.Version)

	var buf strings.Builder
	for {
		prompt := promptMain
		if buf.Len() > 0 {
			prompt = promptCont
		}
		input, err := line.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			buf.Reset()
			continue
		}
		if err == io.EOF {
			fmt.Println()
			return 0
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			return 1
		}

		if buf.Len() == 0 {
			switch strings.TrimSpace(input) {
			case "":
				continue
			case ":quit":
				return 0
			case ":reset":
				eng.Reset()
				fmt.Println(green("state cleared"))
				continue
			case ":vars":
				printVars(eng)
				continue
			}
		}

		buf.WriteString(input)
		buf.WriteByte('\n')
		src := buf.String()
		if needsMore(src) {
			continue
		}
		buf.Reset()
		line.AppendHistory(strings.TrimRight(src, "\n"))

		// Statements execute against the persistent engine; a bare
		// expression (which Execute rejects) echoes its value instead.
		res := eng.Execute(src)
		if res.Success {
			for _, out := range res.Output {
				fmt.Println(out)
			}
			continue
		}
		if v, err := eng.Evaluate(strings.TrimSpace(src)); err == nil {
			fmt.Println(blue(v.String()))
			continue
		}
		for _, out := range res.Output {
			fmt.Println(out)
		}
		for _, e := range res.Errors {
			fmt.Fprintln(os.Stderr, red(e))
		}
	}
}

// needsMore reports whether src has unclosed block constructs, in which
// case the REPL keeps reading continuation lines. It counts block tokens
// through the lexer, so keywords inside strings never confuse it.
func needsMore(src string) bool {
	toks, err := luaengine.NewLexer(src).Lex()
	if err != nil {
		return false // let Execute surface the error
	}
	depth := 0
	for _, t := range toks {
		switch t.Type {
		case luaengine.IF, luaengine.WHILE, luaengine.FOR, luaengine.FUNCTION:
			depth++
		case luaengine.END:
			depth--
		}
	}
	return depth > 0
}

func printVars(eng *luaengine.Engine) {
	vars := eng.GetAllVariables()
	names := make([]string, 0, len(vars))
	for n := range vars {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Printf("%s = %v\n", blue(n), vars[n])
	}
}
