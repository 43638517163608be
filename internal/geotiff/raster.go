package geotiff

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/nfnt/resize"
)

// ErrUnsupported is returned for rasters this package cannot read or write.
var ErrUnsupported = errors.New("unsupported raster")

// Raster is an in-memory 8-bit raster stored band by band.
type Raster struct {
	Width  int
	Height int
	// Planes holds one Width*Height slice per band.
	Planes [][]uint8
	Geo    *Georef
}

// NewRaster allocates a zeroed raster.
func NewRaster(width, height, bands int) *Raster {
	r := &Raster{
		Width:  width,
		Height: height,
		Planes: make([][]uint8, bands),
	}
	for b := range r.Planes {
		r.Planes[b] = make([]uint8, width*height)
	}
	return r
}

// Bounds returns the raster dimensions.
func (r *Raster) Bounds() (width, height int) {
	return r.Width, r.Height
}

// BandCount returns the number of bands.
func (r *Raster) BandCount() int {
	return len(r.Planes)
}

// ReadWindow copies the samples of band inside rect to dst.
func (r *Raster) ReadWindow(band int, rect image.Rectangle, dst []uint8) error {
	if err := r.checkWindow(band, rect, len(dst)); err != nil {
		return err
	}
	w := rect.Dx()
	plane := r.Planes[band]
	for y := 0; y < rect.Dy(); y++ {
		off := (rect.Min.Y+y)*r.Width + rect.Min.X
		copy(dst[y*w:(y+1)*w], plane[off:off+w])
	}
	return nil
}

// WriteWindow copies src to the samples of band inside rect.
func (r *Raster) WriteWindow(band int, rect image.Rectangle, src []uint8) error {
	if err := r.checkWindow(band, rect, len(src)); err != nil {
		return err
	}
	w := rect.Dx()
	plane := r.Planes[band]
	for y := 0; y < rect.Dy(); y++ {
		off := (rect.Min.Y+y)*r.Width + rect.Min.X
		copy(plane[off:off+w], src[y*w:(y+1)*w])
	}
	return nil
}

func (r *Raster) checkWindow(band int, rect image.Rectangle, n int) error {
	if band < 0 || band >= len(r.Planes) {
		return fmt.Errorf("band %d out of range [0,%d)", band, len(r.Planes))
	}
	if rect.Empty() || !rect.In(image.Rect(0, 0, r.Width, r.Height)) {
		return fmt.Errorf("window %v outside raster %dx%d", rect, r.Width, r.Height)
	}
	if n < rect.Dx()*rect.Dy() {
		return fmt.Errorf("buffer of %d samples too small for window %v", n, rect)
	}
	return nil
}

// Resized returns a copy of r scaled to width x height with bilinear
// interpolation. The georeference is not carried over.
func (r *Raster) Resized(width, height int) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New("invalid target dimensions")
	}
	return r.resample(width, height, resize.Bilinear), nil
}

// resample scales every band independently.
func (r *Raster) resample(width, height int, interp resize.InterpolationFunction) *Raster {
	out := &Raster{
		Width:  width,
		Height: height,
		Planes: make([][]uint8, len(r.Planes)),
	}
	for b, plane := range r.Planes {
		src := &image.Gray{Pix: plane, Stride: r.Width, Rect: image.Rect(0, 0, r.Width, r.Height)}
		out.Planes[b] = grayPlane(resize.Resize(uint(width), uint(height), src, interp))
	}
	return out
}

func grayPlane(img image.Image) []uint8 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	plane := make([]uint8, w*h)
	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < h; y++ {
			copy(plane[y*w:(y+1)*w], g.Pix[y*g.Stride:y*g.Stride+w])
		}
		return plane
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			plane[y*w+x] = color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray).Y
		}
	}
	return plane
}

// Image returns r as an image.Image: gray for one band, RGBA for three bands
// and NRGBA for four bands.
func (r *Raster) Image() (image.Image, error) {
	return r.window(image.Rect(0, 0, r.Width, r.Height), image.Rect(0, 0, r.Width, r.Height))
}

// window copies the samples of src into an image of size dst, samples outside the raster are zero.
func (r *Raster) window(src, dst image.Rectangle) (image.Image, error) {
	src = src.Intersect(image.Rect(0, 0, r.Width, r.Height))
	w, h := src.Dx(), src.Dy()
	switch len(r.Planes) {
	case 1:
		img := image.NewGray(dst)
		for y := 0; y < h; y++ {
			off := (src.Min.Y+y)*r.Width + src.Min.X
			copy(img.Pix[y*img.Stride:y*img.Stride+w], r.Planes[0][off:off+w])
		}
		return img, nil
	case 3, 4:
		var pix []uint8
		var stride int
		var img image.Image
		if len(r.Planes) == 3 {
			m := image.NewRGBA(dst)
			pix, stride, img = m.Pix, m.Stride, m
		} else {
			m := image.NewNRGBA(dst)
			pix, stride, img = m.Pix, m.Stride, m
		}
		for y := 0; y < h; y++ {
			row := pix[y*stride:]
			off := (src.Min.Y+y)*r.Width + src.Min.X
			for x := 0; x < w; x++ {
				row[x*4+0] = r.Planes[0][off+x]
				row[x*4+1] = r.Planes[1][off+x]
				row[x*4+2] = r.Planes[2][off+x]
				if len(r.Planes) == 4 {
					row[x*4+3] = r.Planes[3][off+x]
				} else {
					row[x*4+3] = 0xFF
				}
			}
		}
		return img, nil
	default:
		return nil, fmt.Errorf("%w: %d bands cannot be represented as an image", ErrUnsupported, len(r.Planes))
	}
}
