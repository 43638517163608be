package tonecurve

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
)

// BandReader reads rectangular windows of 8-bit bands.
type BandReader interface {
	Bounds() (width, height int)
	BandCount() int
	// ReadWindow fills dst with the samples of band inside r, row by row.
	ReadWindow(band int, r image.Rectangle, dst []uint8) error
}

// BandWriter writes rectangular windows of 8-bit bands.
type BandWriter interface {
	WriteWindow(band int, r image.Rectangle, src []uint8) error
}

// Layer is one curve stack entry: a LUT and an optional blend mask.
// The mask band 0 weights every image band, 0 keeps the original sample and
// 255 takes the LUT value.
type Layer struct {
	LUT  *LUT
	Mask BandReader
	Name string
}

// CompositeOptions controls strip processing.
type CompositeOptions struct {
	// BlockHeight is the number of rows read, transformed and written at once.
	BlockHeight int
	// OnBlock is called after a strip is written.
	OnBlock func(index, total int)
	Logger  *slog.Logger
}

// Composite streams src through the layers of stack in order, strip by strip,
// and writes the result to dst at the same offsets. Any I/O error aborts.
func Composite(src BandReader, dst BandWriter, stack []Layer, opts ...func(o *CompositeOptions)) error {
	opt := CompositeOptions{
		BlockHeight: defaultBlockHeight,
	}
	for _, applyOpt := range opts {
		applyOpt(&opt)
	}
	if opt.BlockHeight <= 0 {
		return errors.New("block height must be positive")
	}
	logger := opt.Logger
	if logger == nil {
		logger = discardLogger()
	}

	w, h := src.Bounds()
	bands := src.BandCount()
	if w <= 0 || h <= 0 || bands <= 0 {
		return errors.New("empty raster")
	}
	for i, l := range stack {
		if l.LUT == nil {
			return fmt.Errorf("layer %d: missing LUT", i)
		}
		if l.Mask == nil {
			continue
		}
		mw, mh := l.Mask.Bounds()
		if mw != w || mh != h {
			return fmt.Errorf("layer %d: %w: mask %dx%d, image %dx%d", i, ErrMaskSize, mw, mh, w, h)
		}
	}

	planes := make([][]uint8, bands)
	for b := range planes {
		planes[b] = make([]uint8, w*opt.BlockHeight)
	}
	var mask []uint8

	total := (h + opt.BlockHeight - 1) / opt.BlockHeight
	for block := 0; block < total; block++ {
		y0 := block * opt.BlockHeight
		rows := opt.BlockHeight
		if y0+rows > h {
			rows = h - y0
		}
		rect := image.Rect(0, y0, w, y0+rows)
		n := w * rows
		logger.Debug("processing block", "block", block, "rows", rows)

		for b := range planes {
			if err := src.ReadWindow(b, rect, planes[b][:n]); err != nil {
				return fmt.Errorf("read block %d band %d: %w", block, b, err)
			}
		}

		for i, l := range stack {
			if l.Mask == nil {
				for b := range planes {
					applyLUT(planes[b][:n], l.LUT, b)
				}
				continue
			}
			if mask == nil {
				mask = make([]uint8, w*opt.BlockHeight)
			}
			if err := l.Mask.ReadWindow(0, rect, mask[:n]); err != nil {
				return fmt.Errorf("read mask of layer %d block %d: %w", i, block, err)
			}
			for b := range planes {
				blendLUT(planes[b][:n], mask[:n], l.LUT, b)
			}
		}

		for b := range planes {
			if err := dst.WriteWindow(b, rect, planes[b][:n]); err != nil {
				return fmt.Errorf("write block %d band %d: %w", block, b, err)
			}
		}
		if opt.OnBlock != nil {
			opt.OnBlock(block, total)
		}
	}
	return nil
}

func applyLUT(plane []uint8, l *LUT, band int) {
	if band >= len(l) {
		return
	}
	t := &l[band]
	for i, v := range plane {
		plane[i] = t[v]
	}
}

func blendLUT(plane, mask []uint8, l *LUT, band int) {
	if band >= len(l) {
		return
	}
	t := &l[band]
	for i, v := range plane {
		plane[i] = blend(v, t[v], mask[i])
	}
}

// blend mixes the original sample v and the curve value c with weight m/255 on c.
func blend(v, c, m uint8) uint8 {
	a1 := float64(m) / 255.0
	a2 := float64(255-m) / 255.0
	return uint8(math.RoundToEven(a1*float64(c) + a2*float64(v)))
}
