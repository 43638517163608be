package tonecurve

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vearutop/tonecurve/internal/geotiff"
)

// Options controls the processing of one curve-stack directive.
type Options struct {
	InputDir  string
	OutputDir string
	// CurveDir holds the ACV files and mask rasters named by directives.
	CurveDir string
	// BlockHeight is the number of rows processed at once.
	BlockHeight int
	// Quality below 100 writes lossy JPEG tiles with that quality.
	Quality     int
	Compression geotiff.Compression
	TileSize    int
	Overviews   bool
	Resampling  geotiff.Resampling
	// EPSG, when positive, is stamped in the output geo keys.
	EPSG    int
	Logger  *slog.Logger
	OnBlock func(index, total int)
}

func defaultOptions() Options {
	return Options{
		BlockHeight: defaultBlockHeight,
		Quality:     defaultQuality,
		Compression: geotiff.CompressionDeflate,
		TileSize:    defaultTileSize,
		Overviews:   true,
		Resampling:  geotiff.ResamplingCubic,
	}
}

// Run applies the curve stack described by line to its image and writes the
// result under the same name in Options.OutputDir.
func Run(line string, opts ...func(o *Options)) error {
	opt := defaultOptions()
	for _, applyOpt := range opts {
		applyOpt(&opt)
	}
	logger := opt.Logger
	if logger == nil {
		logger = discardLogger()
	}

	d, err := ParseDirective(line)
	if err != nil {
		return err
	}

	inPath := filepath.Join(opt.InputDir, d.Image)
	img, err := geotiff.Open(inPath)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	logger.Info("image loaded", "path", inPath, "width", img.Width, "height", img.Height, "bands", img.BandCount())

	stack, err := PrepareStack(d, opt.CurveDir, img.Width, img.Height, logger)
	if err != nil {
		return err
	}

	out, err := applyStack(img, stack, opt, logger)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Clean(opt.OutputDir), 0o755); err != nil {
		return err
	}
	outPath := filepath.Join(opt.OutputDir, d.Image)
	err = geotiff.WriteCOG(outPath, out, func(o *geotiff.WriteOptions) {
		o.TileSize = opt.TileSize
		o.Compression = opt.Compression
		o.Overviews = opt.Overviews
		o.Resampling = opt.Resampling
		o.EPSG = opt.EPSG
		if opt.Quality < 100 {
			o.Compression = geotiff.CompressionJPEG
			o.Quality = opt.Quality
		}
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	logger.Info("image written", "path", outPath)
	return nil
}

// PrepareStack builds the layers of d. Curve and mask files are resolved in curveDir,
// masks whose size differs from width x height are resized to it.
//
// The returned layers are in application order, which is the reverse of the
// directive order: the first listed curve is applied last.
func PrepareStack(d *Directive, curveDir string, width, height int, logger *slog.Logger) ([]Layer, error) {
	if logger == nil {
		logger = discardLogger()
	}
	logger.Info("preparing curves", "count", len(d.Entries))

	stack := make([]Layer, 0, len(d.Entries))
	for i := len(d.Entries) - 1; i >= 0; i-- {
		e := d.Entries[i]
		curvePath := filepath.Join(curveDir, e.Curve)
		cs, err := ReadACVFile(curvePath)
		if err != nil {
			return nil, fmt.Errorf("curve %d: %w", i, err)
		}
		lut, err := BuildLUT(cs)
		if err != nil {
			return nil, fmt.Errorf("curve %d %s: %w", i, curvePath, err)
		}
		logger.Info("curve ready", "path", curvePath)

		l := Layer{LUT: lut, Name: e.Curve}
		if e.Mask != "" {
			maskPath := MaskPath(curveDir, e.Mask)
			logger.Info("using mask", "path", maskPath)
			mask, err := openMask(maskPath, width, height, logger)
			if err != nil {
				return nil, fmt.Errorf("mask %d: %w", i, err)
			}
			l.Mask = mask
		}
		stack = append(stack, l)
	}
	return stack, nil
}

func openMask(path string, width, height int, logger *slog.Logger) (*geotiff.Raster, error) {
	m, err := geotiff.Open(path)
	if err != nil {
		return nil, err
	}
	if m.Width == width && m.Height == height {
		return m, nil
	}
	logger.Warn("mask size differs from image, resizing",
		"path", path, "mask_width", m.Width, "mask_height", m.Height, "width", width, "height", height)
	return m.Resized(width, height)
}

func applyStack(img *geotiff.Raster, stack []Layer, opt Options, logger *slog.Logger) (*geotiff.Raster, error) {
	out := geotiff.NewRaster(img.Width, img.Height, img.BandCount())
	out.Geo = img.Geo

	logger.Info("applying curves by blocks", "block_height", opt.BlockHeight)
	err := Composite(img, out, stack, func(o *CompositeOptions) {
		o.BlockHeight = opt.BlockHeight
		o.Logger = logger
		o.OnBlock = opt.OnBlock
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
