package tonecurve

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const defaultProgram = "applyacv"

// BatchOptions describes the command lines produced by WriteCommands.
type BatchOptions struct {
	// Program is the command name, default "applyacv".
	Program   string
	InputDir  string
	OutputDir string
	// ACV is passed to -a as is.
	ACV string
}

// WriteCommands writes one command line per non-empty directive line read from
// directives and returns the number of lines written.
//
// Each directive is validated before it is emitted, the first invalid line
// aborts with its line number. The n lines before it are still flushed to w.
func WriteCommands(w io.Writer, directives io.Reader, opts BatchOptions) (int, error) {
	program := opts.Program
	if program == "" {
		program = defaultProgram
	}
	prefix := strings.Join([]string{
		program,
		"-i", shellQuote(opts.InputDir),
		"-o", shellQuote(opts.OutputDir),
		"-a", shellQuote(opts.ACV),
		"-c",
	}, " ")

	bw := bufio.NewWriter(w)
	sc := bufio.NewScanner(directives)
	n, lineNo := 0, 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if _, err := ParseDirective(line); err != nil {
			if ferr := bw.Flush(); ferr != nil {
				return n, ferr
			}
			return n, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if _, err := bw.WriteString(prefix + " " + shellQuote(line) + "\n"); err != nil {
			return n, err
		}
		n++
	}
	if err := sc.Err(); err != nil {
		return n, err
	}
	return n, bw.Flush()
}

// shellQuote wraps s in single quotes when a POSIX shell would split or expand it.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$`!*?[]{}()<>|&;#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
