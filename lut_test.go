package tonecurve

import (
	"errors"
	"testing"
)

func TestBuildLUT_identity(t *testing.T) {
	l, err := BuildLUT(identityCurveSet())
	if err != nil {
		t.Fatal(err)
	}
	if *l != *IdentityLUT() {
		t.Fatalf("identity curves did not produce the identity LUT")
	}
}

func TestBuildLUT_twoPoint(t *testing.T) {
	cs := identityCurveSet()
	cs.Curves[CurveRed] = Curve{{In: 0, Out: 10}, {In: 255, Out: 245}}
	l, err := BuildLUT(cs)
	if err != nil {
		t.Fatal(err)
	}
	// round(10 + 235*100/255) = round(102.16)
	if got := l[0][100]; got != 102 {
		t.Fatalf("red[100] = %d, want 102", got)
	}
	if l[0][0] != 10 || l[0][255] != 245 {
		t.Fatalf("red ends = %d, %d, want 10, 245", l[0][0], l[0][255])
	}
	if l[1][100] != 100 || l[2][100] != 100 {
		t.Fatalf("green and blue must stay identity")
	}
}

func TestBuildLUT_channelThenComposite(t *testing.T) {
	cs := identityCurveSet()
	cs.Curves[CurveGreen] = Curve{{In: 0, Out: 0}, {In: 255, Out: 128}}
	cs.Curves[CurveComposite] = Curve{{In: 0, Out: 50}, {In: 255, Out: 255}}
	l, err := BuildLUT(cs)
	if err != nil {
		t.Fatal(err)
	}
	// 255 -> 128 -> round(50 + 205*128/255) = 153; the other order would give 128.
	if got := l[1][255]; got != 153 {
		t.Fatalf("green[255] = %d, want 153", got)
	}
	// Red only receives the composite curve.
	if got := l[0][255]; got != 255 {
		t.Fatalf("red[255] = %d, want 255", got)
	}
}

func TestBuildLUT_clampOnlyAtEnd(t *testing.T) {
	cs := identityCurveSet()
	cs.Curves[CurveRed] = Curve{{In: 0, Out: 0}, {In: 128, Out: 255}}
	cs.Curves[CurveComposite] = Curve{{In: 0, Out: 0}, {In: 510, Out: 255}}
	l, err := BuildLUT(cs)
	if err != nil {
		t.Fatal(err)
	}
	// 200 -> round(398.44) = 398 -> 199. Clamping in between would give 128.
	if got := l[0][200]; got != 199 {
		t.Fatalf("red[200] = %d, want 199", got)
	}
	// Green has only the halving composite curve.
	if got := l[1][255]; got != 128 {
		t.Fatalf("green[255] = %d, want 128", got)
	}

	cs = identityCurveSet()
	cs.Curves[CurveBlue] = Curve{{In: 0, Out: -40}, {In: 128, Out: 300}}
	if l, err = BuildLUT(cs); err != nil {
		t.Fatal(err)
	}
	if l[2][0] != 0 || l[2][255] != 255 {
		t.Fatalf("blue ends not clamped: %d, %d", l[2][0], l[2][255])
	}
}

func TestApplyCurve_halfToEven(t *testing.T) {
	table := identityTable()
	if err := ApplyCurve(&table, Curve{{In: 0, Out: 1}, {In: 2, Out: 2}}); err != nil {
		t.Fatal(err)
	}
	// f(v) = 1 + v/2
	for v, want := range map[int]int{1: 2, 3: 2, 5: 4, 4: 3} {
		if table[v] != want {
			t.Fatalf("table[%d] = %d, want %d", v, table[v], want)
		}
	}
}

func TestBuildLUT_errors(t *testing.T) {
	if _, err := BuildLUT(&CurveSet{Curves: make([]Curve, 3)}); !errors.Is(err, ErrMalformedCurveFile) {
		t.Fatalf("expected ErrMalformedCurveFile, got %v", err)
	}
	cs := identityCurveSet()
	cs.Curves[CurveGreen] = Curve{{In: 5, Out: 5}}
	if _, err := BuildLUT(cs); !errors.Is(err, ErrDegenerateCurve) {
		t.Fatalf("expected ErrDegenerateCurve, got %v", err)
	}
}

func TestLUT_Map(t *testing.T) {
	cs := identityCurveSet()
	cs.Curves[CurveRed] = Curve{{In: 0, Out: 255}, {In: 255, Out: 0}}
	l, err := BuildLUT(cs)
	if err != nil {
		t.Fatal(err)
	}
	if got := l.Map(0, 10); got != 245 {
		t.Fatalf("Map(0, 10) = %d, want 245", got)
	}
	if got := l.Map(3, 10); got != 10 {
		t.Fatalf("Map(3, 10) = %d, want 10", got)
	}
}
