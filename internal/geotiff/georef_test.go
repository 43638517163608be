package geotiff

import (
	"testing"
)

func TestGeoref_WithEPSG(t *testing.T) {
	var g *Georef
	if g.HasTransform() {
		t.Fatalf("nil georef has no transform")
	}

	p, err := g.WithEPSG(2154)
	if err != nil {
		t.Fatal(err)
	}
	if p.HasTransform() {
		t.Fatalf("identity transform reported as georeferenced")
	}
	if p.GeoKeys[7] != 1 || p.GeoKeys[12] != geoKeyProjectedCSType || p.GeoKeys[15] != 2154 {
		t.Fatalf("unexpected projected keys %v", p.GeoKeys)
	}

	src := &Georef{
		Transform:  [6]float64{1, 2, 0, 3, 0, -2},
		GeoDoubles: []float64{1},
		GeoASCII:   "x|",
		NoData:     "0",
	}
	geo, err := src.WithEPSG(4171)
	if err != nil {
		t.Fatal(err)
	}
	if geo.Transform != src.Transform || geo.NoData != "0" {
		t.Fatalf("transform and nodata must be kept: %+v", geo)
	}
	if geo.GeoDoubles != nil || geo.GeoASCII != "" {
		t.Fatalf("old key parameters kept: %+v", geo)
	}
	if geo.GeoKeys[7] != 2 || geo.GeoKeys[12] != geoKeyGeographicType {
		t.Fatalf("unexpected geographic keys %v", geo.GeoKeys)
	}
	if src.GeoASCII != "x|" {
		t.Fatalf("source georef modified")
	}

	if _, err := src.WithEPSG(65535); err != nil {
		t.Fatalf("largest code rejected: %v", err)
	}
	for _, code := range []int{0, -4326, 65536, 102100} {
		if _, err := src.WithEPSG(code); err == nil {
			t.Fatalf("expected error for EPSG %d", code)
		}
	}
}

func TestReadIFDs_errors(t *testing.T) {
	for name, data := range map[string][]byte{
		"short":     []byte("II*"),
		"magic":     []byte("PK\x03\x04\x00\x00\x00\x00"),
		"bigtiff":   []byte("II+\x00\x08\x00\x00\x00"),
		"ifd range": []byte("II*\x00\xff\x00\x00\x00"),
	} {
		if _, err := readIFDs(data); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := Decode([]byte("PK\x03\x04\x00\x00\x00\x00")); err == nil {
		t.Fatalf("expected decode error")
	}
}
