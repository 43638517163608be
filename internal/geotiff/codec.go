package geotiff

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/image/tiff/lzw"
)

// Compression identifies the codec applied to every tile.
type Compression int

const (
	// CompressionNone stores raw interleaved samples.
	CompressionNone Compression = iota
	// CompressionDeflate is zlib (Adobe deflate).
	CompressionDeflate
	// CompressionZstd is zstandard, as written by GDAL.
	CompressionZstd
	// CompressionJPEG is lossy baseline JPEG, one stream per tile.
	CompressionJPEG
)

// TIFF compression tag values.
const (
	cNone         = 1
	cLZW          = 5
	cJPEG         = 7
	cDeflate      = 8
	cAdobeDeflate = 32946
	cZstd         = 50000
)

// ParseCompression parses a compression name.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none":
		return CompressionNone, nil
	case "deflate":
		return CompressionDeflate, nil
	case "zstd":
		return CompressionZstd, nil
	case "jpeg":
		return CompressionJPEG, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", name)
	}
}

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionDeflate:
		return "deflate"
	case CompressionZstd:
		return "zstd"
	case CompressionJPEG:
		return "jpeg"
	default:
		return fmt.Sprintf("compression(%d)", int(c))
	}
}

func (c Compression) tagValue() uint32 {
	switch c {
	case CompressionDeflate:
		return cDeflate
	case CompressionZstd:
		return cZstd
	case CompressionJPEG:
		return cJPEG
	default:
		return cNone
	}
}

// tileEncoder compresses one tile worth of samples. Encoders are not safe for
// concurrent use.
type tileEncoder struct {
	c       Compression
	quality int
	level   int
	buf     bytes.Buffer
	zstd    *zstd.Encoder
}

func newTileEncoder(c Compression, quality, level int) (*tileEncoder, error) {
	e := &tileEncoder{c: c, quality: quality, level: level}
	if c == CompressionZstd {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		if err != nil {
			return nil, fmt.Errorf("zstd encoder: %w", err)
		}
		e.zstd = enc
	}
	return e, nil
}

func (e *tileEncoder) Close() error {
	if e.zstd != nil {
		return e.zstd.Close()
	}
	return nil
}

// encodeChunky compresses pixel-interleaved samples.
func (e *tileEncoder) encodeChunky(samples []uint8) ([]byte, error) {
	switch e.c {
	case CompressionNone:
		out := make([]byte, len(samples))
		copy(out, samples)
		return out, nil
	case CompressionDeflate:
		e.buf.Reset()
		zw, err := zlib.NewWriterLevel(&e.buf, e.level)
		if err != nil {
			return nil, err
		}
		if _, err := zw.Write(samples); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		return bytes.Clone(e.buf.Bytes()), nil
	case CompressionZstd:
		return e.zstd.EncodeAll(samples, nil), nil
	default:
		return nil, fmt.Errorf("%w: %s is not a sample codec", ErrUnsupported, e.c)
	}
}

// encodeImage compresses a tile image as a standalone JPEG stream.
func (e *tileEncoder) encodeImage(img image.Image) ([]byte, error) {
	e.buf.Reset()
	if err := jpeg.Encode(&e.buf, img, &jpeg.Options{Quality: e.quality}); err != nil {
		return nil, err
	}
	return bytes.Clone(e.buf.Bytes()), nil
}

// tileDecoder expands the tiles or strips of one image. Decoders are not safe
// for concurrent use.
type tileDecoder struct {
	compression uint32
	// jpegTables is the JPEGTables field shared by abbreviated JPEG streams.
	jpegTables []byte
	zstd       *zstd.Decoder
}

func newTileDecoder(compression uint32, jpegTables []byte) (*tileDecoder, error) {
	d := &tileDecoder{compression: compression, jpegTables: jpegTables}
	switch compression {
	case cNone, cLZW, cJPEG, cDeflate, cAdobeDeflate:
	case cZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decoder: %w", err)
		}
		d.zstd = dec
	default:
		return nil, fmt.Errorf("%w: compression %d", ErrUnsupported, compression)
	}
	return d, nil
}

func (d *tileDecoder) Close() {
	if d.zstd != nil {
		d.zstd.Close()
	}
}

// decode returns the width*rows*spp pixel-interleaved samples of one block.
func (d *tileDecoder) decode(block []byte, width, rows, spp int) ([]uint8, error) {
	n := width * rows * spp
	switch d.compression {
	case cNone:
		if len(block) < n {
			return nil, fmt.Errorf("block of %d bytes, want %d", len(block), n)
		}
		return bytes.Clone(block[:n]), nil
	case cLZW:
		return readSamples(lzw.NewReader(bytes.NewReader(block), lzw.MSB, 8), n)
	case cDeflate, cAdobeDeflate:
		zr, err := zlib.NewReader(bytes.NewReader(block))
		if err != nil {
			return nil, err
		}
		return readSamples(zr, n)
	case cZstd:
		out, err := d.zstd.DecodeAll(block, make([]byte, 0, n))
		if err != nil {
			return nil, err
		}
		if len(out) < n {
			return nil, fmt.Errorf("block expands to %d bytes, want %d", len(out), n)
		}
		return out[:n], nil
	default:
		return d.decodeJPEG(block, width, rows, spp)
	}
}

func readSamples(r io.ReadCloser, n int) ([]uint8, error) {
	defer r.Close()
	out := make([]uint8, n)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("block truncated: %w", err)
	}
	return out, nil
}

func (d *tileDecoder) decodeJPEG(block []byte, width, rows, spp int) ([]uint8, error) {
	stream := block
	if len(d.jpegTables) > 4 && len(block) > 2 {
		// Drop the EOI of the tables and the SOI of the block.
		stream = append(bytes.Clone(d.jpegTables[:len(d.jpegTables)-2]), block[2:]...)
	}
	img, err := jpeg.Decode(bytes.NewReader(stream))
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	w, h := min(width, b.Dx()), min(rows, b.Dy())
	out := make([]uint8, width*rows*spp)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.At(b.Min.X+x, b.Min.Y+y)
			i := (y*width + x) * spp
			if spp == 1 {
				out[i] = color.GrayModel.Convert(c).(color.Gray).Y
				continue
			}
			cr, cg, cb, _ := c.RGBA()
			out[i], out[i+1], out[i+2] = uint8(cr>>8), uint8(cg>>8), uint8(cb>>8)
		}
	}
	return out, nil
}
