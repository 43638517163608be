package geotiff

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/garyhouston/tiff66"
)

const (
	defaultTileSize = 512
	defaultQuality  = 90
)

// WriteOptions controls cloud-optimized GeoTIFF output.
type WriteOptions struct {
	// TileSize is the tile width and height, a multiple of 16. Default 512.
	TileSize    int
	Compression Compression
	// Quality is the JPEG quality (1-100) when Compression is CompressionJPEG.
	Quality int
	// Level is the deflate or zstd level, 0 selects the codec default.
	Level int
	// Overviews adds reduced resolution levels until the image fits in one tile.
	Overviews  bool
	Resampling Resampling
	// EPSG, when not zero, replaces the geo key directory of the raster.
	// Codes must be in [1,65535].
	EPSG int
}

// WriteCOG writes r to path as a tiled GeoTIFF with overviews placed before
// the full resolution data.
func WriteCOG(path string, r *Raster, opts ...func(o *WriteOptions)) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := EncodeCOG(bw, r, opts...); err != nil {
		_ = f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

type level struct {
	r     *Raster
	node  *tiff66.IFDNode
	tiles [][]byte
}

// EncodeCOG writes r as a little-endian tiled GeoTIFF. All IFDs come first,
// followed by tile data from the smallest overview to full resolution.
func EncodeCOG(w io.Writer, r *Raster, opts ...func(o *WriteOptions)) error {
	opt := WriteOptions{
		TileSize:    defaultTileSize,
		Compression: CompressionDeflate,
		Quality:     defaultQuality,
		Overviews:   true,
		Resampling:  ResamplingCubic,
	}
	for _, applyOpt := range opts {
		applyOpt(&opt)
	}
	if err := validateWrite(r, opt); err != nil {
		return err
	}

	enc, err := newTileEncoder(opt.Compression, opt.Quality, codecLevel(opt))
	if err != nil {
		return err
	}
	defer enc.Close()

	rasters := []*Raster{r}
	if opt.Overviews {
		rasters = append(rasters, overviews(r, opt.TileSize, opt.Resampling)...)
	}

	geo := r.Geo
	if opt.EPSG != 0 {
		if geo, err = geo.WithEPSG(opt.EPSG); err != nil {
			return err
		}
	}

	levels := make([]*level, len(rasters))
	for i, lr := range rasters {
		l := &level{r: lr}
		if l.tiles, err = encodeTiles(enc, lr, opt); err != nil {
			return fmt.Errorf("encode level %d: %w", i, err)
		}
		var g *Georef
		if i == 0 {
			g = geo
		}
		l.node = levelNode(lr, i > 0, len(l.tiles), opt, g)
		if i > 0 {
			levels[i-1].node.Next = l.node
		}
		levels[i] = l
	}

	// The directory chain takes the head of the file, its size does not depend
	// on the offset values filled in below.
	root := levels[0].node
	head := tiff66.Align(tiff66.HeaderSize + root.TreeSize())
	pos := uint64(head)
	for i := len(levels) - 1; i >= 0; i-- {
		l := levels[i]
		offsets := l.node.FindFields([]tiff66.Tag{tiff66.TileOffsets})[0]
		counts := l.node.FindFields([]tiff66.Tag{tiff66.TileByteCounts})[0]
		for t, data := range l.tiles {
			offsets.PutLong(uint32(pos), uint32(t), binary.LittleEndian)
			counts.PutLong(uint32(len(data)), uint32(t), binary.LittleEndian)
			pos += uint64(len(data))
			if pos > math.MaxUint32 {
				return fmt.Errorf("%w: output over 4 GiB needs BigTIFF", ErrUnsupported)
			}
		}
	}

	buf := make([]byte, head)
	tiff66.PutHeader(buf, binary.LittleEndian, tiff66.HeaderSize)
	end, err := root.PutIFDTree(buf, tiff66.HeaderSize)
	if err != nil {
		return fmt.Errorf("write directories: %w", err)
	}
	if end > head {
		return fmt.Errorf("directories take %d bytes, %d reserved", end, head)
	}
	if _, err := w.Write(buf); err != nil {
		return err
	}
	for i := len(levels) - 1; i >= 0; i-- {
		for _, data := range levels[i].tiles {
			if _, err := w.Write(data); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateWrite(r *Raster, opt WriteOptions) error {
	if r.Width <= 0 || r.Height <= 0 || len(r.Planes) == 0 {
		return errors.New("empty raster")
	}
	if opt.EPSG < 0 || opt.EPSG > 0xFFFF {
		return fmt.Errorf("EPSG code %d out of range [1,65535]", opt.EPSG)
	}
	if opt.TileSize < 16 || opt.TileSize%16 != 0 {
		return fmt.Errorf("tile size %d must be a positive multiple of 16", opt.TileSize)
	}
	if opt.Compression == CompressionJPEG {
		if n := len(r.Planes); n != 1 && n != 3 {
			return fmt.Errorf("%w: jpeg tiles need 1 or 3 bands, got %d", ErrUnsupported, n)
		}
		if opt.Quality < 1 || opt.Quality > 100 {
			return fmt.Errorf("jpeg quality %d out of range [1,100]", opt.Quality)
		}
	}
	return nil
}

func codecLevel(opt WriteOptions) int {
	if opt.Level != 0 {
		return opt.Level
	}
	if opt.Compression == CompressionZstd {
		return 3
	}
	return -1
}

func encodeTiles(enc *tileEncoder, r *Raster, opt WriteOptions) ([][]byte, error) {
	ts := opt.TileSize
	across := (r.Width + ts - 1) / ts
	down := (r.Height + ts - 1) / ts
	bands := len(r.Planes)
	tiles := make([][]byte, 0, across*down)
	samples := make([]uint8, ts*ts*bands)

	for ty := 0; ty < down; ty++ {
		for tx := 0; tx < across; tx++ {
			src := image.Rect(tx*ts, ty*ts, (tx+1)*ts, (ty+1)*ts)
			var (
				data []byte
				err  error
			)
			if opt.Compression == CompressionJPEG {
				var img image.Image
				if img, err = r.window(src, image.Rect(0, 0, ts, ts)); err == nil {
					data, err = enc.encodeImage(img)
				}
			} else {
				fillChunky(samples, r, src.Intersect(image.Rect(0, 0, r.Width, r.Height)), ts)
				data, err = enc.encodeChunky(samples)
			}
			if err != nil {
				return nil, fmt.Errorf("tile %d,%d: %w", tx, ty, err)
			}
			tiles = append(tiles, data)
		}
	}
	return tiles, nil
}

// fillChunky interleaves the samples of src into a ts x ts tile, padding with zeros.
func fillChunky(dst []uint8, r *Raster, src image.Rectangle, ts int) {
	for i := range dst {
		dst[i] = 0
	}
	bands := len(r.Planes)
	for y := 0; y < src.Dy(); y++ {
		row := dst[y*ts*bands:]
		off := (src.Min.Y+y)*r.Width + src.Min.X
		for x := 0; x < src.Dx(); x++ {
			for b, plane := range r.Planes {
				row[x*bands+b] = plane[off+x]
			}
		}
	}
}

func levelNode(r *Raster, reduced bool, tiles int, opt WriteOptions, g *Georef) *tiff66.IFDNode {
	bands := len(r.Planes)
	repeat := func(v uint32, n int) []uint32 {
		out := make([]uint32, n)
		for i := range out {
			out[i] = v
		}
		return out
	}

	photometric := uint32(photometricMinIsBlack)
	colorBands := 1
	if bands >= 3 && bands <= 4 {
		photometric, colorBands = photometricRGB, 3
	}
	if opt.Compression == CompressionJPEG && bands == 3 {
		photometric = photometricYCbCr
	}

	subfile := uint32(0)
	if reduced {
		subfile = 1
	}
	fields := []tiff66.Field{
		longField(tiff66.NewSubfileType, subfile),
		longField(tiff66.ImageWidth, uint32(r.Width)),
		longField(tiff66.ImageLength, uint32(r.Height)),
		shortField(tiff66.BitsPerSample, repeat(8, bands)...),
		shortField(tiff66.Compression, opt.Compression.tagValue()),
		shortField(tiff66.PhotometricInterpretation, photometric),
		shortField(tiff66.SamplesPerPixel, uint32(bands)),
		shortField(tiff66.PlanarConfiguration, 1),
		longField(tiff66.TileWidth, uint32(opt.TileSize)),
		longField(tiff66.TileLength, uint32(opt.TileSize)),
		longField(tiff66.TileOffsets, make([]uint32, tiles)...),
		longField(tiff66.TileByteCounts, make([]uint32, tiles)...),
		shortField(tiff66.SampleFormat, repeat(1, bands)...),
	}
	if extra := bands - colorBands; extra > 0 {
		kinds := repeat(0, extra)
		if bands == 4 {
			kinds[0] = 2
		}
		fields = append(fields, shortField(tiff66.ExtraSamples, kinds...))
	}
	if photometric == photometricYCbCr {
		fields = append(fields, shortField(tiff66.YCbCrSubSampling, 2, 2))
	}
	fields = append(fields, geoFields(g)...)

	node := tiff66.NewIFDNode(tiff66.TIFFSpace)
	node.Order = binary.LittleEndian
	node.AddFields(fields)
	return node
}

// EncodeTIFF writes r as a single resolution deflate compressed tiled TIFF
// without georeferencing, one sample per band.
func EncodeTIFF(w io.Writer, r *Raster) error {
	plain := *r
	plain.Geo = nil
	return EncodeCOG(w, &plain, func(o *WriteOptions) {
		o.Compression = CompressionDeflate
		o.Overviews = false
	})
}
