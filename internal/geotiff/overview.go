package geotiff

import (
	"fmt"

	"github.com/nfnt/resize"
)

// Resampling selects the kernel used to build overview levels.
type Resampling int

const (
	// ResamplingNearest keeps the nearest source sample.
	ResamplingNearest Resampling = iota
	// ResamplingBilinear is linear sampling.
	ResamplingBilinear
	// ResamplingCubic is Catmull-Rom cubic sampling.
	ResamplingCubic
	// ResamplingLanczos is Lanczos sampling with a=3.
	ResamplingLanczos
)

// ParseResampling parses an overview resampling name.
func ParseResampling(name string) (Resampling, error) {
	switch name {
	case "nearest":
		return ResamplingNearest, nil
	case "bilinear":
		return ResamplingBilinear, nil
	case "cubic":
		return ResamplingCubic, nil
	case "lanczos":
		return ResamplingLanczos, nil
	default:
		return 0, fmt.Errorf("unknown resampling %q", name)
	}
}

func (rs Resampling) String() string {
	switch rs {
	case ResamplingNearest:
		return "nearest"
	case ResamplingBilinear:
		return "bilinear"
	case ResamplingCubic:
		return "cubic"
	case ResamplingLanczos:
		return "lanczos"
	default:
		return fmt.Sprintf("resampling(%d)", int(rs))
	}
}

func (rs Resampling) interpolation() resize.InterpolationFunction {
	switch rs {
	case ResamplingNearest:
		return resize.NearestNeighbor
	case ResamplingCubic:
		return resize.Bicubic
	case ResamplingLanczos:
		return resize.Lanczos3
	default:
		return resize.Bilinear
	}
}

// overviews halves r, rounding up, until both sides fit in a single tile.
func overviews(r *Raster, tileSize int, rs Resampling) []*Raster {
	var levels []*Raster
	prev := r
	for prev.Width > tileSize || prev.Height > tileSize {
		next := prev.resample((prev.Width+1)/2, (prev.Height+1)/2, rs.interpolation())
		levels = append(levels, next)
		prev = next
	}
	return levels
}
