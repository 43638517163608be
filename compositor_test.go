package tonecurve

import (
	"bytes"
	"errors"
	"testing"

	"github.com/vearutop/tonecurve/internal/geotiff"
)

func testRaster(w, h, bands int) *geotiff.Raster {
	r := geotiff.NewRaster(w, h, bands)
	for b, plane := range r.Planes {
		for i := range plane {
			plane[i] = uint8((i*7 + b*31 + i/w*13) % 256)
		}
	}
	return r
}

func rampMask(w, h int) *geotiff.Raster {
	m := geotiff.NewRaster(w, h, 1)
	for i := range m.Planes[0] {
		m.Planes[0][i] = uint8(i * 255 / (w*h - 1))
	}
	return m
}

func invertLUT() *LUT {
	var l LUT
	for ch := range l {
		for i := range l[ch] {
			l[ch][i] = uint8(255 - i)
		}
	}
	return &l
}

func TestBlend(t *testing.T) {
	// 128/255*200 + 127/255*50 = 125.29
	if got := blend(50, 200, 128); got != 125 {
		t.Fatalf("blend(50, 200, 128) = %d, want 125", got)
	}
	for v := 0; v < 256; v++ {
		for _, c := range []uint8{0, 17, 128, 255} {
			if got := blend(uint8(v), c, 0); got != uint8(v) {
				t.Fatalf("mask 0: blend(%d, %d) = %d", v, c, got)
			}
			if got := blend(uint8(v), c, 255); got != c {
				t.Fatalf("mask 255: blend(%d, %d) = %d", v, c, got)
			}
		}
	}
}

func TestComposite_emptyStack(t *testing.T) {
	src := testRaster(13, 9, 3)
	dst := geotiff.NewRaster(13, 9, 3)
	if err := Composite(src, dst, nil); err != nil {
		t.Fatal(err)
	}
	for b := range src.Planes {
		if !bytes.Equal(src.Planes[b], dst.Planes[b]) {
			t.Fatalf("band %d changed", b)
		}
	}
}

func TestComposite_identityCurves(t *testing.T) {
	l, err := BuildLUT(identityCurveSet())
	if err != nil {
		t.Fatal(err)
	}
	src := testRaster(10, 10, 3)
	dst := geotiff.NewRaster(10, 10, 3)
	if err := Composite(src, dst, []Layer{{LUT: l}, {LUT: l, Mask: rampMask(10, 10)}}); err != nil {
		t.Fatal(err)
	}
	for b := range src.Planes {
		if !bytes.Equal(src.Planes[b], dst.Planes[b]) {
			t.Fatalf("band %d changed", b)
		}
	}
}

func TestComposite_masked(t *testing.T) {
	src := geotiff.NewRaster(2, 1, 4)
	for b := range src.Planes {
		src.Planes[b][0] = 50
		src.Planes[b][1] = 50
	}
	var l LUT
	for ch := range l {
		l[ch][50] = 200
	}
	mask := geotiff.NewRaster(2, 1, 1)
	mask.Planes[0][0] = 128
	mask.Planes[0][1] = 0

	dst := geotiff.NewRaster(2, 1, 4)
	if err := Composite(src, dst, []Layer{{LUT: &l, Mask: mask}}); err != nil {
		t.Fatal(err)
	}
	for b := 0; b < 3; b++ {
		if dst.Planes[b][0] != 125 || dst.Planes[b][1] != 50 {
			t.Fatalf("band %d = %v, want [125 50]", b, dst.Planes[b])
		}
	}
	if dst.Planes[3][0] != 50 || dst.Planes[3][1] != 50 {
		t.Fatalf("alpha band changed: %v", dst.Planes[3])
	}
}

func TestComposite_singleBandUsesRed(t *testing.T) {
	l := IdentityLUT()
	l[0][10] = 99
	src := geotiff.NewRaster(1, 1, 1)
	src.Planes[0][0] = 10
	dst := geotiff.NewRaster(1, 1, 1)
	if err := Composite(src, dst, []Layer{{LUT: l}}); err != nil {
		t.Fatal(err)
	}
	if dst.Planes[0][0] != 99 {
		t.Fatalf("got %d, want 99", dst.Planes[0][0])
	}
}

func TestComposite_order(t *testing.T) {
	inv := invertLUT()
	lift := IdentityLUT()
	for ch := range lift {
		for i := range lift[ch] {
			lift[ch][i] = clampLevel(i + 10)
		}
	}
	src := geotiff.NewRaster(1, 1, 3)
	src.Planes[0][0] = 0

	dst := geotiff.NewRaster(1, 1, 3)
	if err := Composite(src, dst, []Layer{{LUT: lift}, {LUT: inv}}); err != nil {
		t.Fatal(err)
	}
	if dst.Planes[0][0] != 245 {
		t.Fatalf("lift then invert = %d, want 245", dst.Planes[0][0])
	}
	if err := Composite(src, dst, []Layer{{LUT: inv}, {LUT: lift}}); err != nil {
		t.Fatal(err)
	}
	if dst.Planes[0][0] != 255 {
		t.Fatalf("invert then lift = %d, want 255", dst.Planes[0][0])
	}
}

func TestComposite_blockSizeIndependence(t *testing.T) {
	const w, h = 17, 23
	src := testRaster(w, h, 4)
	cs := identityCurveSet()
	cs.Curves[CurveComposite] = Curve{{In: 0, Out: 20}, {In: 100, Out: 150}, {In: 255, Out: 230}}
	cs.Curves[CurveRed] = Curve{{In: 0, Out: 0}, {In: 255, Out: 200}}
	curved, err := BuildLUT(cs)
	if err != nil {
		t.Fatal(err)
	}
	stack := []Layer{{LUT: curved}, {LUT: invertLUT(), Mask: rampMask(w, h)}}

	whole := geotiff.NewRaster(w, h, 4)
	if err := Composite(src, whole, stack); err != nil {
		t.Fatal(err)
	}

	for _, bh := range []int{1, 5, 22, 23} {
		strips := geotiff.NewRaster(w, h, 4)
		var blocks, total int
		err := Composite(src, strips, stack, func(o *CompositeOptions) {
			o.BlockHeight = bh
			o.OnBlock = func(index, n int) {
				blocks++
				total = n
			}
		})
		if err != nil {
			t.Fatal(err)
		}
		if want := (h + bh - 1) / bh; blocks != want || total != want {
			t.Fatalf("block height %d: %d blocks of %d, want %d", bh, blocks, total, want)
		}
		for b := range whole.Planes {
			if !bytes.Equal(whole.Planes[b], strips.Planes[b]) {
				t.Fatalf("block height %d: band %d differs", bh, b)
			}
		}
	}
}

func TestComposite_errors(t *testing.T) {
	src := testRaster(4, 4, 3)
	dst := geotiff.NewRaster(4, 4, 3)

	err := Composite(src, dst, []Layer{{LUT: IdentityLUT(), Mask: rampMask(4, 3)}})
	if !errors.Is(err, ErrMaskSize) {
		t.Fatalf("expected ErrMaskSize, got %v", err)
	}
	if err := Composite(src, dst, []Layer{{}}); err == nil {
		t.Fatalf("expected error for missing LUT")
	}
	if err := Composite(src, dst, nil, func(o *CompositeOptions) { o.BlockHeight = 0 }); err == nil {
		t.Fatalf("expected error for zero block height")
	}
	// Destination too small for the source windows.
	if err := Composite(src, geotiff.NewRaster(4, 2, 3), nil); err == nil {
		t.Fatalf("expected write error")
	}
}
