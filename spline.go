package tonecurve

import (
	"fmt"
	"sort"
)

// Interpolator maps an input intensity to an output intensity.
type Interpolator func(x float64) float64

// NewInterpolator builds the interpolating function of a curve.
//
// Curves with more than two points use a natural cubic spline, curves with two
// points a straight line. Both extend past the first and last control point
// with their end pieces instead of clamping.
func NewInterpolator(c Curve) (Interpolator, error) {
	if len(c) < 2 {
		return nil, fmt.Errorf("%w: %d control points", ErrDegenerateCurve, len(c))
	}

	pts := make(Curve, len(c))
	copy(pts, c)
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].In < pts[j].In })

	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		if i > 0 && p.In == pts[i-1].In {
			return nil, fmt.Errorf("%w: duplicate input %d", ErrDegenerateCurve, p.In)
		}
		xs[i] = float64(p.In)
		ys[i] = float64(p.Out)
	}

	if len(pts) == 2 {
		return linear(xs[0], ys[0], xs[1], ys[1]), nil
	}
	return naturalSpline(xs, ys), nil
}

func linear(x0, y0, x1, y1 float64) Interpolator {
	slope := (y1 - y0) / (x1 - x0)
	return func(x float64) float64 {
		return y0 + slope*(x-x0)
	}
}

// naturalSpline solves for the second derivatives m of the cubic spline through
// (xs, ys) with m[0] = m[n-1] = 0.
func naturalSpline(xs, ys []float64) Interpolator {
	n := len(xs)
	m := make([]float64, n)

	// Thomas algorithm on the n-2 interior equations
	// h[i-1]*m[i-1] + 2*(h[i-1]+h[i])*m[i] + h[i]*m[i+1] = 6*(d[i] - d[i-1]).
	c := make([]float64, n)
	d := make([]float64, n)
	for i := 1; i < n-1; i++ {
		h0 := xs[i] - xs[i-1]
		h1 := xs[i+1] - xs[i]
		rhs := 6 * ((ys[i+1]-ys[i])/h1 - (ys[i]-ys[i-1])/h0)
		diag := 2 * (h0 + h1)
		if i > 1 {
			diag -= h0 * c[i-1]
			rhs -= h0 * d[i-1]
		}
		c[i] = h1 / diag
		d[i] = rhs / diag
	}
	for i := n - 2; i >= 1; i-- {
		m[i] = d[i] - c[i]*m[i+1]
	}

	return func(x float64) float64 {
		i := segment(xs, x)
		h := xs[i+1] - xs[i]
		a := (xs[i+1] - x) / h
		b := (x - xs[i]) / h
		return a*ys[i] + b*ys[i+1] + ((a*a*a-a)*m[i]+(b*b*b-b)*m[i+1])*h*h/6
	}
}

// segment returns the index of the spline piece used for x, out of range
// values use the first or the last piece.
func segment(xs []float64, x float64) int {
	i := sort.SearchFloat64s(xs, x) - 1
	if i < 0 {
		return 0
	}
	if i > len(xs)-2 {
		return len(xs) - 2
	}
	return i
}
