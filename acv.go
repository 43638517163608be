package tonecurve

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// minCurves is the number of curves the LUT builder reads: composite, red, green, blue.
const minCurves = 4

// Point is a curve control point.
type Point struct {
	In  int
	Out int
}

// Curve is an ordered list of control points.
type Curve []Point

// CurveSet is the content of an ACV file.
type CurveSet struct {
	Format int16
	Curves []Curve
}

// Composite returns the curve applied to every channel.
func (cs *CurveSet) Composite() Curve {
	return cs.Curves[CurveComposite]
}

// Channel returns the curve of channel ch (0 red, 1 green, 2 blue).
func (cs *CurveSet) Channel(ch int) Curve {
	return cs.Curves[CurveRed+ch]
}

// ReadACVFile reads and decodes an ACV file.
func ReadACVFile(path string) (*CurveSet, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cs, err := DecodeACV(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cs, nil
}

// DecodeACV decodes an ACV stream: big-endian int16 words holding the format tag,
// the curve count and, for every curve, a point count followed by (output, input) pairs.
func DecodeACV(r io.Reader) (*CurveSet, error) {
	format, err := readI16(r)
	if err != nil {
		return nil, malformed("format tag", err)
	}
	count, err := readI16(r)
	if err != nil {
		return nil, malformed("curve count", err)
	}
	if count < minCurves {
		return nil, fmt.Errorf("%w: %d curves, at least %d required", ErrMalformedCurveFile, count, minCurves)
	}

	cs := &CurveSet{
		Format: format,
		Curves: make([]Curve, 0, count),
	}
	for i := 0; i < int(count); i++ {
		n, err := readI16(r)
		if err != nil {
			return nil, malformed(fmt.Sprintf("curve %d point count", i), err)
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: curve %d has negative point count %d", ErrMalformedCurveFile, i, n)
		}
		c := make(Curve, n)
		for j := range c {
			out, err := readI16(r)
			if err != nil {
				return nil, malformed(fmt.Sprintf("curve %d point %d", i, j), err)
			}
			in, err := readI16(r)
			if err != nil {
				return nil, malformed(fmt.Sprintf("curve %d point %d", i, j), err)
			}
			c[j] = Point{In: int(in), Out: int(out)}
		}
		cs.Curves = append(cs.Curves, c)
	}
	return cs, nil
}

// EncodeACV writes cs in the layout read by DecodeACV.
func EncodeACV(w io.Writer, cs *CurveSet) error {
	if len(cs.Curves) < minCurves {
		return fmt.Errorf("%w: %d curves, at least %d required", ErrMalformedCurveFile, len(cs.Curves), minCurves)
	}
	words := make([]int16, 0, 2+len(cs.Curves)*9)
	words = append(words, cs.Format, int16(len(cs.Curves)))
	for _, c := range cs.Curves {
		words = append(words, int16(len(c)))
		for _, p := range c {
			words = append(words, int16(p.Out), int16(p.In))
		}
	}
	return binary.Write(w, binary.BigEndian, words)
}

func readI16(r io.Reader) (int16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(buf[:])), nil
}

func malformed(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated at %s", ErrMalformedCurveFile, what)
	}
	return fmt.Errorf("read %s: %w", what, err)
}
