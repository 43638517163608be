// Command applyacv applies a stack of ACV tone curves to one image.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/bool64/dev/version"
	"github.com/spf13/pflag"
	"github.com/vearutop/tonecurve"
	"github.com/vearutop/tonecurve/internal/geotiff"
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
	fs := pflag.NewFlagSet("applyacv", pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	input := fs.StringP("input", "i", "", "input data folder")
	output := fs.StringP("output", "o", "", "output data folder")
	curve := fs.StringP("curve", "c", "", "directive: image,curve1,mask1[,curve2,mask2...]")
	acv := fs.StringP("acv", "a", "", "path of folder containing acv files")
	blockSize := fs.IntP("blocksize", "b", 1000, "number of rows processed at once")
	quality := fs.IntP("quality", "q", 100, "jpeg quality, 100 keeps lossless compression")
	compress := fs.String("compress", "deflate", "lossless tile compression: none, deflate, zstd")
	tileSize := fs.Int("tile-size", 512, "output tile size, multiple of 16")
	ovr := fs.Bool("overviews", true, "write overview levels")
	resampling := fs.String("resampling", "cubic", "overview resampling: nearest, bilinear, cubic, lanczos")
	srs := fs.IntP("srs", "p", 0, "EPSG code stamped in the output geo keys")
	configPath := fs.String("config", "", "YAML config file, flags given on the command line take precedence")
	verbose := fs.IntP("verbose", "v", 0, "verbosity: 0 warn, 1 info, 2 debug")
	showVersion := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return usageError{msg: err.Error()}
	}
	if *showVersion {
		fmt.Println("applyacv", version.Info().String())
		return nil
	}

	opt := tonecurve.Options{
		InputDir:    *input,
		OutputDir:   *output,
		CurveDir:    tonecurve.CurveDirFromFlag(*acv),
		BlockHeight: *blockSize,
		Quality:     *quality,
		TileSize:    *tileSize,
		Overviews:   *ovr,
		EPSG:        *srs,
	}
	var err error
	if opt.Compression, err = geotiff.ParseCompression(*compress); err != nil {
		return usageError{msg: err.Error()}
	}
	if opt.Resampling, err = geotiff.ParseResampling(*resampling); err != nil {
		return usageError{msg: err.Error()}
	}

	if *configPath != "" {
		cfg, err := tonecurve.LoadConfig(*configPath)
		if err != nil {
			return err
		}
		if err := cfg.Apply(&opt, fs.Changed); err != nil {
			return usageError{msg: err.Error()}
		}
		if !fs.Changed("verbose") && cfg.Verbose > 0 {
			*verbose = cfg.Verbose
		}
	}

	if opt.InputDir == "" || opt.OutputDir == "" || *curve == "" || opt.CurveDir == "" {
		return usageError{msg: "missing required arguments: -i, -o, -c and -a"}
	}

	logger := newLogger(*verbose)
	logger.Info("starting", "version", version.Info().Version, "directive", *curve)

	start := time.Now()
	opt.Logger = logger
	opt.OnBlock = func(index, total int) {
		logger.Debug("block done", "index", index+1, "total", total)
	}
	if err := tonecurve.Run(*curve, func(o *tonecurve.Options) { *o = opt }); err != nil {
		return err
	}
	logger.Info("done", "elapsed", time.Since(start).String())
	return nil
}

func newLogger(verbose int) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case verbose >= 2:
		level = slog.LevelDebug
	case verbose == 1:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
