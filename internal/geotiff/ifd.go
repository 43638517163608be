package geotiff

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/garyhouston/tiff66"
)

// GDAL private tag holding the nodata value as text.
const tagGDALNoData tiff66.Tag = 42113

// PhotometricInterpretation values.
const (
	photometricMinIsBlack = 1
	photometricRGB        = 2
	photometricYCbCr      = 6
)

// ifd gives typed access to the fields of one image file directory.
type ifd struct {
	node *tiff66.IFDNode
}

// readIFDs parses the directory chain of a classic TIFF file.
func readIFDs(data []byte) ([]ifd, error) {
	valid, order, pos := tiff66.GetHeader(data)
	if !valid {
		return nil, fmt.Errorf("%w: not a classic tiff header", ErrUnsupported)
	}
	root, err := tiff66.GetIFDTree(data, order, pos, tiff66.TIFFSpace)
	if err != nil {
		return nil, fmt.Errorf("read tiff directories: %w", err)
	}
	var dirs []ifd
	for n := root; n != nil; n = n.Next {
		if len(dirs) > maxIFDs {
			return nil, fmt.Errorf("more than %d tiff directories", maxIFDs)
		}
		dirs = append(dirs, ifd{node: n})
	}
	if len(dirs) == 0 || len(dirs[0].node.Fields) == 0 {
		return nil, fmt.Errorf("%w: empty tiff directory", ErrUnsupported)
	}
	return dirs, nil
}

const maxIFDs = 64

func (d ifd) field(tag tiff66.Tag) *tiff66.Field {
	if f := d.node.FindFields([]tiff66.Tag{tag}); len(f) > 0 {
		return f[0]
	}
	return nil
}

// ints returns the values of an integral field, nil when the field is absent.
func (d ifd) ints(tag tiff66.Tag) []uint32 {
	f := d.field(tag)
	if f == nil || !f.Type.IsIntegral() {
		return nil
	}
	out := make([]uint32, f.Count)
	for i := range out {
		out[i] = uint32(f.AnyInteger(uint32(i), d.node.Order))
	}
	return out
}

func (d ifd) value(tag tiff66.Tag, def uint32) uint32 {
	if v := d.ints(tag); len(v) > 0 {
		return v[0]
	}
	return def
}

func (d ifd) reals(tag tiff66.Tag) []float64 {
	f := d.field(tag)
	if f == nil {
		return nil
	}
	order := d.node.Order
	out := make([]float64, 0, f.Count)
	for i := uint32(0); i < f.Count; i++ {
		switch {
		case f.Type.IsFloat():
			out = append(out, f.AnyFloat(i, order))
		case f.Type.IsRational():
			num, den := f.AnyRational(i, order)
			if den != 0 {
				out = append(out, float64(num)/float64(den))
			}
		case f.Type.IsIntegral():
			out = append(out, float64(f.AnyInteger(i, order)))
		}
	}
	return out
}

func (d ifd) ascii(tag tiff66.Tag) string {
	f := d.field(tag)
	if f == nil || f.Type != tiff66.ASCII {
		return ""
	}
	return strings.TrimRight(f.ASCII(), "\x00")
}

// segments returns the payloads referenced by the offsets field tag, in field order.
func (d ifd) segments(offsets tiff66.Tag) []tiff66.ImageSegment {
	for _, id := range d.node.GetImageData() {
		if id.OffsetTag == offsets {
			return id.Segments
		}
	}
	return nil
}

// Field constructors for little-endian output.

func shortField(tag tiff66.Tag, vals ...uint32) tiff66.Field {
	f := tiff66.Field{Tag: tag, Type: tiff66.SHORT, Count: uint32(len(vals)), Data: make([]byte, 2*len(vals))}
	for i, v := range vals {
		f.PutShort(uint16(v), uint32(i), binary.LittleEndian)
	}
	return f
}

func longField(tag tiff66.Tag, vals ...uint32) tiff66.Field {
	f := tiff66.Field{Tag: tag, Type: tiff66.LONG, Count: uint32(len(vals)), Data: make([]byte, 4*len(vals))}
	for i, v := range vals {
		f.PutLong(v, uint32(i), binary.LittleEndian)
	}
	return f
}

func doubleField(tag tiff66.Tag, vals ...float64) tiff66.Field {
	f := tiff66.Field{Tag: tag, Type: tiff66.DOUBLE, Count: uint32(len(vals)), Data: make([]byte, 8*len(vals))}
	for i, v := range vals {
		f.PutDouble(v, uint32(i), binary.LittleEndian)
	}
	return f
}

func asciiField(tag tiff66.Tag, s string) tiff66.Field {
	f := tiff66.Field{Tag: tag, Type: tiff66.ASCII}
	f.PutASCII(s)
	f.Count = uint32(len(f.Data))
	return f
}
