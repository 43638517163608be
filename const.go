package tonecurve

const (
	defaultBlockHeight = 1000
	defaultQuality     = 100
	defaultTileSize    = 512
)

const (
	// maskExt replaces the extension of mask names found in directives,
	// masks are exported next to the layered document in a flat raster form.
	maskExt = ".tif"

	// noMaskTokenLen is the longest mask token that still means "no mask".
	noMaskTokenLen = 2
)

// Curve indexes in an ACV curve set.
const (
	CurveComposite = 0
	CurveRed       = 1
	CurveGreen     = 2
	CurveBlue      = 3
)
