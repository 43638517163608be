package geotiff

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/garyhouston/tiff66"
)

// Open reads a TIFF or GeoTIFF file and decodes its first image into memory.
//
// The whole raster stays resident, strip-bounded memory only holds for the
// processing done on the decoded raster.
func Open(path string) (*Raster, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	r, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Decode decodes the first image of an 8-bit TIFF and its GeoTIFF tags.
//
// Images may be tiled or stripped, chunky or planar, with any number of samples.
// Supported compressions are none, LZW, deflate, zstd and JPEG, with or without
// horizontal differencing.
func Decode(data []byte) (*Raster, error) {
	dirs, err := readIFDs(data)
	if err != nil {
		return nil, err
	}
	d := dirs[0]
	l, err := newBlockLayout(d)
	if err != nil {
		return nil, err
	}

	offsets := tiff66.Tag(tiff66.StripOffsets)
	if l.tiled {
		offsets = tiff66.TileOffsets
	}
	r, err := l.decode(d.segments(offsets))
	if err != nil {
		return nil, err
	}
	r.Geo = georefFromIFD(d)
	return r, nil
}

// blockLayout describes how the samples of an image are cut into tiles or strips.
type blockLayout struct {
	width, height  int
	samples        int
	planar         bool
	tiled          bool
	blockW, blockH int
	compression    uint32
	predictor      uint32
	jpegTables     []byte
}

func newBlockLayout(d ifd) (*blockLayout, error) {
	l := &blockLayout{
		width:       int(d.value(tiff66.ImageWidth, 0)),
		height:      int(d.value(tiff66.ImageLength, 0)),
		samples:     int(d.value(tiff66.SamplesPerPixel, 1)),
		planar:      d.value(tiff66.PlanarConfiguration, 1) == 2,
		compression: d.value(tiff66.Compression, cNone),
		predictor:   d.value(tiff66.Predictor, 1),
	}
	if l.width <= 0 || l.height <= 0 || l.samples <= 0 {
		return nil, fmt.Errorf("invalid TIFF dimensions %dx%dx%d", l.width, l.height, l.samples)
	}

	bps := d.ints(tiff66.BitsPerSample)
	if len(bps) == 0 {
		return nil, fmt.Errorf("%w: 1 bit per sample", ErrUnsupported)
	}
	for _, v := range bps {
		if v != 8 {
			return nil, fmt.Errorf("%w: %d bits per sample", ErrUnsupported, v)
		}
	}
	for _, v := range d.ints(tiff66.SampleFormat) {
		if v != 1 {
			return nil, fmt.Errorf("%w: sample format %d", ErrUnsupported, v)
		}
	}

	switch p := d.value(tiff66.PhotometricInterpretation, photometricMinIsBlack); p {
	case photometricMinIsBlack, photometricRGB:
	case photometricYCbCr:
		if l.compression != cJPEG {
			return nil, fmt.Errorf("%w: YCbCr without JPEG compression", ErrUnsupported)
		}
	default:
		return nil, fmt.Errorf("%w: photometric interpretation %d", ErrUnsupported, p)
	}
	if l.predictor != 1 && l.predictor != 2 {
		return nil, fmt.Errorf("%w: predictor %d", ErrUnsupported, l.predictor)
	}
	if l.compression == cJPEG {
		if l.planar || (l.samples != 1 && l.samples != 3) {
			return nil, fmt.Errorf("%w: jpeg with %d samples", ErrUnsupported, l.samples)
		}
		if f := d.field(tiff66.JPEGTables); f != nil {
			l.jpegTables = f.Data
		}
	}

	if tw := d.value(tiff66.TileWidth, 0); tw > 0 {
		l.tiled = true
		l.blockW, l.blockH = int(tw), int(d.value(tiff66.TileLength, 0))
	} else {
		l.blockW, l.blockH = l.width, int(d.value(tiff66.RowsPerStrip, uint32(l.height)))
		if l.blockH > l.height {
			l.blockH = l.height
		}
	}
	if l.blockW <= 0 || l.blockH <= 0 {
		return nil, fmt.Errorf("invalid block size %dx%d", l.blockW, l.blockH)
	}
	return l, nil
}

// decode expands every block into a new raster. Tiles are stored at full tile
// size, the padding past the right and bottom edges is dropped.
func (l *blockLayout) decode(blocks []tiff66.ImageSegment) (*Raster, error) {
	across := (l.width + l.blockW - 1) / l.blockW
	down := (l.height + l.blockH - 1) / l.blockH
	planes, spp := 1, l.samples
	if l.planar {
		planes, spp = l.samples, 1
	}
	if want := across * down * planes; len(blocks) < want {
		return nil, fmt.Errorf("%d tiles or strips, want %d", len(blocks), want)
	}

	dec, err := newTileDecoder(l.compression, l.jpegTables)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	r := NewRaster(l.width, l.height, l.samples)
	for p := 0; p < planes; p++ {
		for by := 0; by < down; by++ {
			rows := l.blockH
			if !l.tiled {
				rows = min(l.blockH, l.height-by*l.blockH)
			}
			for bx := 0; bx < across; bx++ {
				i := (p*down+by)*across + bx
				if len(blocks[i]) == 0 {
					// Sparse block, left as zeros.
					continue
				}
				samples, err := dec.decode(blocks[i], l.blockW, rows, spp)
				if err != nil {
					return nil, fmt.Errorf("block %d: %w", i, err)
				}
				if l.predictor == 2 {
					undoHorizontalDifferencing(samples, l.blockW, rows, spp)
				}
				scatterBlock(r, samples, bx*l.blockW, by*l.blockH, l.blockW, rows, spp, p)
			}
		}
	}
	return r, nil
}

func undoHorizontalDifferencing(samples []uint8, width, rows, spp int) {
	stride := width * spp
	for y := 0; y < rows; y++ {
		row := samples[y*stride : (y+1)*stride]
		for i := spp; i < stride; i++ {
			row[i] += row[i-spp]
		}
	}
}

// scatterBlock copies the pixel-interleaved samples of a block of blockW x rows
// pixels at x0,y0 into the raster planes starting at firstBand.
func scatterBlock(r *Raster, samples []uint8, x0, y0, blockW, rows, spp, firstBand int) {
	w := min(blockW, r.Width-x0)
	h := min(rows, r.Height-y0)
	for y := 0; y < h; y++ {
		src := samples[y*blockW*spp:]
		off := (y0+y)*r.Width + x0
		if spp == 1 {
			copy(r.Planes[firstBand][off:off+w], src[:w])
			continue
		}
		for x := 0; x < w; x++ {
			for c := 0; c < spp; c++ {
				r.Planes[firstBand+c][off+x] = src[x*spp+c]
			}
		}
	}
}
