// Command acvdiff compares two rasters sample by sample.
//
// It exits with status 1 and writes an absolute difference image when the
// rasters differ.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bool64/dev/version"
	"github.com/spf13/pflag"
	"github.com/vearutop/tonecurve"
	"github.com/vearutop/tonecurve/internal/geotiff"
)

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }
func (e usageError) ExitCode() int { return 2 }

var errDifferent = errors.New("rasters differ")

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, errDifferent) {
			os.Exit(1)
		}
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(coder.ExitCode())
		}
		fail(err)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("acvdiff", pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	diffOut := fs.String("diff-out", "diff.tif", "difference image written when the rasters differ")
	verbose := fs.IntP("verbose", "v", 0, "print pixel digests of both rasters")
	showVersion := fs.Bool("version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: acvdiff [flags] a.tif b.tif")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return usageError{msg: err.Error()}
	}
	if *showVersion {
		fmt.Println("acvdiff", version.Info().String())
		return nil
	}
	if fs.NArg() != 2 {
		return usageError{msg: "two raster paths expected"}
	}

	a, err := geotiff.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	b, err := geotiff.Open(fs.Arg(1))
	if err != nil {
		return err
	}
	if *verbose > 0 {
		fmt.Printf("%s  %s\n", geotiff.PixelDigest(a), fs.Arg(0))
		fmt.Printf("%s  %s\n", geotiff.PixelDigest(b), fs.Arg(1))
	}

	res, err := tonecurve.DiffRasters(a, b)
	if err != nil {
		return err
	}
	if res.Max == 0 {
		fmt.Println("no difference")
		return nil
	}

	fmt.Printf("max difference: %d (%d samples)\n", res.Max, res.Count)
	f, err := os.Create(filepath.Clean(*diffOut))
	if err != nil {
		return err
	}
	if err := geotiff.EncodeTIFF(f, res.Diff); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return errDifferent
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
