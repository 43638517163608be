// Command acvcmd turns a file of curve-stack directives into applyacv command lines.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bool64/dev/version"
	"github.com/spf13/pflag"
	"github.com/vearutop/tonecurve"
)

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }
func (e usageError) ExitCode() int { return 2 }

func main() {
	if err := run(os.Args[1:]); err != nil {
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(coder.ExitCode())
		}
		fail(err)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("acvcmd", pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	input := fs.StringP("input", "i", "", "input data folder")
	output := fs.StringP("output", "o", "", "output data folder")
	curves := fs.StringP("curve", "c", "", "param file for images and curves")
	acv := fs.StringP("acv", "a", "", "path of folder containing acv files")
	file := fs.StringP("file", "f", "cmd.txt", "output file containing command lines")
	program := fs.String("program", "applyacv", "command written at the start of every line")
	verbose := fs.IntP("verbose", "v", 0, "verbosity: 0 warn, 1 info, 2 debug")
	showVersion := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return usageError{msg: err.Error()}
	}
	if *showVersion {
		fmt.Println("acvcmd", version.Info().String())
		return nil
	}
	if *input == "" || *output == "" || *curves == "" || *acv == "" {
		return usageError{msg: "missing required arguments: -i, -o, -c and -a"}
	}

	level := slog.LevelWarn
	if *verbose >= 1 {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	logger.Info("arguments", "input", *input, "output", *output, "curve", *curves, "acv", *acv, "file", *file)

	in, err := os.Open(filepath.Clean(*curves))
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(filepath.Clean(*file))
	if err != nil {
		return err
	}

	n, err := tonecurve.WriteCommands(out, in, tonecurve.BatchOptions{
		Program:   *program,
		InputDir:  *input,
		OutputDir: *output,
		ACV:       *acv,
	})
	if err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	logger.Info("command lines written", "count", n, "file", *file)
	return nil
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
