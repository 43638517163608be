package tonecurve

import (
	"fmt"

	"github.com/vearutop/tonecurve/internal/geotiff"
)

// DiffResult holds the comparison of two rasters.
type DiffResult struct {
	// Diff is the per sample absolute difference.
	Diff *geotiff.Raster
	// Max is the largest absolute difference over all bands.
	Max uint8
	// Count is the number of differing samples.
	Count int
}

// DiffRasters compares a and b sample by sample.
func DiffRasters(a, b *geotiff.Raster) (*DiffResult, error) {
	if a.Width != b.Width || a.Height != b.Height {
		return nil, fmt.Errorf("size mismatch: %dx%d vs %dx%d", a.Width, a.Height, b.Width, b.Height)
	}
	if a.BandCount() != b.BandCount() {
		return nil, fmt.Errorf("band count mismatch: %d vs %d", a.BandCount(), b.BandCount())
	}

	res := &DiffResult{Diff: geotiff.NewRaster(a.Width, a.Height, a.BandCount())}
	res.Diff.Geo = a.Geo
	for band, pa := range a.Planes {
		pb := b.Planes[band]
		pd := res.Diff.Planes[band]
		for i, va := range pa {
			d := va - pb[i]
			if pb[i] > va {
				d = pb[i] - va
			}
			if d == 0 {
				continue
			}
			pd[i] = d
			res.Count++
			if d > res.Max {
				res.Max = d
			}
		}
	}
	return res, nil
}
