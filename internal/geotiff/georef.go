package geotiff

import (
	"fmt"

	"github.com/garyhouston/tiff66"
)

// GeoTIFF keys written by WithEPSG.
const (
	geoKeyModelType       = 1024
	geoKeyRasterType      = 1025
	geoKeyGeographicType  = 2048
	geoKeyProjectedCSType = 3072
)

// Georef is the georeferencing carried from an input raster to its output.
type Georef struct {
	// Transform maps pixel corners to model space:
	// x = T[0] + col*T[1] + row*T[2], y = T[3] + col*T[4] + row*T[5].
	Transform [6]float64
	// GeoKeys, GeoDoubles and GeoASCII are the raw GeoTIFF key directory and its parameters.
	GeoKeys    []uint16
	GeoDoubles []float64
	GeoASCII   string
	NoData     string
}

// identityTransform is what a raster without georeferencing reports.
var identityTransform = [6]float64{0, 1, 0, 0, 0, 1}

// HasTransform reports whether Transform carries a real georeference.
func (g *Georef) HasTransform() bool {
	return g != nil && g.Transform != identityTransform && g.Transform != [6]float64{}
}

// WithEPSG returns a copy of g whose key directory declares the given EPSG code.
// Codes in the 4000-4999 range are declared as geographic systems, others as projected.
// A key holds 16 bits, codes outside [1,65535] are rejected.
func (g *Georef) WithEPSG(code int) (*Georef, error) {
	if code < 1 || code > 0xFFFF {
		return nil, fmt.Errorf("EPSG code %d out of range [1,65535]", code)
	}
	out := Georef{Transform: identityTransform}
	if g != nil {
		out = *g
	}
	modelType, key := uint16(1), uint16(geoKeyProjectedCSType)
	if code >= 4000 && code < 5000 {
		modelType, key = 2, geoKeyGeographicType
	}
	out.GeoKeys = []uint16{
		1, 1, 0, 3,
		geoKeyModelType, 0, 1, modelType,
		geoKeyRasterType, 0, 1, 1,
		key, 0, 1, uint16(code),
	}
	out.GeoDoubles = nil
	out.GeoASCII = ""
	return &out, nil
}

// georefFromIFD returns nil when the directory carries no GeoTIFF tags.
func georefFromIFD(d ifd) *Georef {
	g := &Georef{Transform: identityTransform}
	found := false

	if m := d.reals(tiff66.ModelTransformationTag); len(m) >= 8 {
		g.Transform = [6]float64{m[3], m[0], m[1], m[7], m[4], m[5]}
		found = true
	} else if scale, tie := d.reals(tiff66.ModelPixelScaleTag), d.reals(tiff66.ModelTiepointTag); len(scale) >= 2 && len(tie) >= 6 {
		g.Transform = [6]float64{
			tie[3] - tie[0]*scale[0], scale[0], 0,
			tie[4] + tie[1]*scale[1], 0, -scale[1],
		}
		found = true
	}
	if keys := d.ints(tiff66.GeoKeyDirectoryTag); len(keys) > 0 {
		g.GeoKeys = make([]uint16, len(keys))
		for i, k := range keys {
			g.GeoKeys[i] = uint16(k)
		}
		found = true
	}
	if v := d.reals(tiff66.GeoDoubleParamsTag); len(v) > 0 {
		g.GeoDoubles = v
	}
	g.GeoASCII = d.ascii(tiff66.GeoAsciiParamsTag)
	g.NoData = d.ascii(tagGDALNoData)
	if g.NoData != "" {
		found = true
	}

	if !found {
		return nil
	}
	return g
}

// geoFields encodes g as GeoTIFF fields.
func geoFields(g *Georef) []tiff66.Field {
	if g == nil {
		return nil
	}
	var fields []tiff66.Field
	if g.HasTransform() {
		t := g.Transform
		if t[2] == 0 && t[4] == 0 {
			fields = append(fields,
				doubleField(tiff66.ModelPixelScaleTag, t[1], -t[5], 0),
				doubleField(tiff66.ModelTiepointTag, 0, 0, 0, t[0], t[3], 0),
			)
		} else {
			fields = append(fields, doubleField(tiff66.ModelTransformationTag,
				t[1], t[2], 0, t[0],
				t[4], t[5], 0, t[3],
				0, 0, 0, 0,
				0, 0, 0, 1,
			))
		}
	}
	if len(g.GeoKeys) > 0 {
		keys := make([]uint32, len(g.GeoKeys))
		for i, k := range g.GeoKeys {
			keys[i] = uint32(k)
		}
		fields = append(fields, shortField(tiff66.GeoKeyDirectoryTag, keys...))
	}
	if len(g.GeoDoubles) > 0 {
		fields = append(fields, doubleField(tiff66.GeoDoubleParamsTag, g.GeoDoubles...))
	}
	if g.GeoASCII != "" {
		fields = append(fields, asciiField(tiff66.GeoAsciiParamsTag, g.GeoASCII))
	}
	if g.NoData != "" {
		fields = append(fields, asciiField(tagGDALNoData, g.NoData))
	}
	return fields
}
