package tonecurve

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Directive is a parsed curve-stack line: an image name followed by
// (curve, mask) pairs in listed order.
type Directive struct {
	Image   string
	Entries []DirectiveEntry
}

// DirectiveEntry names a curve file and an optional mask.
type DirectiveEntry struct {
	Curve string
	// Mask is empty when the entry has no mask.
	Mask string
}

// ParseDirective parses "image,curve1,mask1[,curve2,mask2...]".
//
// Mask tokens of two characters or less mean "no mask". Lines with a missing
// mask token, an empty image or an empty curve name are rejected.
func ParseDirective(line string) (*Directive, error) {
	line = strings.TrimRight(line, "\r\n")
	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) < 3 {
		return nil, fmt.Errorf("%w: %d fields, want image and at least one curve,mask pair", ErrInvalidDirective, len(fields))
	}
	if len(fields)%2 == 0 {
		return nil, fmt.Errorf("%w: %d fields, curve and mask tokens must come in pairs", ErrInvalidDirective, len(fields))
	}
	if fields[0] == "" {
		return nil, fmt.Errorf("%w: empty image name", ErrInvalidDirective)
	}

	d := &Directive{
		Image:   fields[0],
		Entries: make([]DirectiveEntry, 0, (len(fields)-1)/2),
	}
	for i := 1; i < len(fields); i += 2 {
		e := DirectiveEntry{Curve: fields[i]}
		if e.Curve == "" {
			return nil, fmt.Errorf("%w: empty curve name at field %d", ErrInvalidDirective, i+1)
		}
		if len(fields[i+1]) > noMaskTokenLen {
			e.Mask = fields[i+1]
		}
		d.Entries = append(d.Entries, e)
	}
	return d, nil
}

// String formats d back into a directive line.
func (d *Directive) String() string {
	var sb strings.Builder
	sb.WriteString(d.Image)
	for _, e := range d.Entries {
		sb.WriteByte(',')
		sb.WriteString(e.Curve)
		sb.WriteByte(',')
		sb.WriteString(e.Mask)
	}
	return sb.String()
}

// MaskPath resolves a mask name from a directive to the flat raster exported
// next to it in dir.
func MaskPath(dir, name string) string {
	p := filepath.Join(dir, name)
	return strings.TrimSuffix(p, filepath.Ext(p)) + maskExt
}

// CurveDirFromFlag returns the curve directory for the value of the -a flag.
// A trailing extension is dropped so that a document path can be passed
// in place of the folder holding its exports.
func CurveDirFromFlag(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}
