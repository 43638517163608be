// Package tonecurve applies Photoshop tone curves (ACV files) to large 8-bit rasters.
//
// Curves are turned into per-channel lookup tables once and streamed over the image in
// horizontal strips, optionally blended through a per-curve alpha mask. Raster I/O and the
// cloud-optimized GeoTIFF output live in internal/geotiff.
package tonecurve
