// Package geotiff reads 8-bit GeoTIFF rasters into memory and writes tiled,
// cloud-optimized GeoTIFF files with overviews.
//
// Directories are parsed and serialized with github.com/garyhouston/tiff66, tile
// and strip payloads are decoded here. GeoTIFF tags are read from the first
// directory and written back unchanged so the output keeps the input georeference.
package geotiff
