package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"

	"lif/interpreter-go/pkg/interpreter"
	"lif/interpreter-go/pkg/parser"
	"lif/interpreter-go/pkg/runtime"
)

const (
	replBanner      = "Lif " + cliToolVersion + " (type :help for commands)"
	replPrompt      = "lif> "
	replContinue    = "...> "
	replHistoryFile = "repl_history"
	replSourceName  = "<repl>"
)

// lineReader is the part of liner.State the REPL needs.
type lineReader interface {
	Prompt(prompt string) (string, error)
}

// plainReader serves piped input without line editing.
type plainReader struct {
	scanner *bufio.Scanner
}

func (r *plainReader) Prompt(string) (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

func runRepl(args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(stderr, "lif repl does not take arguments (received %s)\n", strings.Join(args, " "))
		return 1
	}
	interp, err := newInterpreter()
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		ln := liner.NewLiner()
		defer ln.Close()
		ln.SetCtrlCAborts(true)
		ln.SetMultiLineMode(true)

		historyPath := replHistoryPath()
		if historyPath != "" {
			if f, err := os.Open(historyPath); err == nil {
				_, _ = ln.ReadHistory(f)
				_ = f.Close()
			}
			defer func() {
				if err := os.MkdirAll(filepath.Dir(historyPath), 0o755); err != nil {
					return
				}
				if f, err := os.Create(historyPath); err == nil {
					_, _ = ln.WriteHistory(f)
					_ = f.Close()
				}
			}()
		}
		fmt.Fprintln(stdout, replBanner)
		return repl(interp, ln, ln.AppendHistory)
	}
	return repl(interp, &plainReader{scanner: bufio.NewScanner(stdin)}, nil)
}

func replHistoryPath() string {
	home, err := resolveLifHome()
	if err != nil {
		return ""
	}
	return filepath.Join(home, replHistoryFile)
}

// repl evaluates chunks in one persistent interpreter until input ends or
// the program calls exit.
func repl(interp *interpreter.Interpreter, in lineReader, remember func(string)) int {
	for {
		code, ok := readChunk(in)
		if !ok {
			return 0
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if remember != nil {
			remember(strings.ReplaceAll(code, "\n", " "))
		}
		if strings.HasPrefix(trimmed, ":") {
			if done := replCommand(interp, trimmed); done {
				return 0
			}
			continue
		}

		program, err := parser.ParseModule(replSourceName, []byte(code))
		if err != nil {
			var syntaxErr *parser.SyntaxError
			if errors.As(err, &syntaxErr) {
				fmt.Fprintln(stderr, describeSyntaxError(replSourceName, []byte(code), syntaxErr))
			} else {
				fmt.Fprintln(stderr, err)
			}
			continue
		}
		ref, err := interp.Run(program)
		if err != nil {
			var exit *runtime.Exit
			if errors.As(err, &exit) {
				// error and assert report and keep the session; exit ends it.
				if exit.Message != "" {
					fmt.Fprintln(stderr, exit.Message)
					continue
				}
				return exit.Code
			}
			continue
		}
		if ref != nil && ref.Defined() {
			text, err := interp.Stringify(ref)
			if err != nil {
				fmt.Fprintln(stderr, interp.DescribeError(err))
				continue
			}
			fmt.Fprintln(stdout, text)
		}
	}
}

// readChunk keeps reading lines while the accumulated source is an
// incomplete program.
func readChunk(in lineReader) (string, bool) {
	var b strings.Builder
	for {
		prompt := replPrompt
		if b.Len() > 0 {
			prompt = replContinue
		}
		line, err := in.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, err := parser.ParseModule(replSourceName, []byte(src)); err != nil && parser.IsIncomplete(err) {
			continue
		}
		return src, true
	}
}

// replCommand runs a colon command and reports whether the session ends.
func replCommand(interp *interpreter.Interpreter, command string) bool {
	switch strings.ToLower(command) {
	case ":quit", ":q", ":exit":
		return true
	case ":gc":
		freed := interp.Collect()
		live := interp.Heap().Live()
		fmt.Fprintf(stdout, "freed %d objects (%d values, %d references, %d scopes); %d live\n",
			freed.Total(), freed.Values, freed.References, freed.Scopes, live.Total())
	case ":help":
		fmt.Fprintln(stdout, ":gc    run a garbage collection and report the heap")
		fmt.Fprintln(stdout, ":quit  leave the session")
	default:
		fmt.Fprintf(stdout, "unknown command %s. Type :help for commands.\n", command)
	}
	return false
}
