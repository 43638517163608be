package tonecurve

import "errors"

var (
	// ErrMalformedCurveFile is returned when an ACV stream is truncated or holds fewer than 4 curves.
	ErrMalformedCurveFile = errors.New("malformed curve file")
	// ErrDegenerateCurve is returned for curves that cannot be interpolated.
	ErrDegenerateCurve = errors.New("degenerate curve")
	// ErrInvalidDirective is returned for curve-stack lines that do not match the grammar.
	ErrInvalidDirective = errors.New("invalid curve stack directive")
	// ErrMaskSize is returned when a mask does not cover the image it is applied to.
	ErrMaskSize = errors.New("mask size does not match image")
)
