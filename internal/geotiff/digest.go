package geotiff

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Digest is a BLAKE3 hash of raster samples.
type Digest [32]byte

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// PixelDigest hashes the dimensions and samples of r, band after band.
// Georeferencing and file encoding do not contribute.
func PixelDigest(r *Raster) Digest {
	h := blake3.New()
	var hdr [12]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(r.Width))
	binary.LittleEndian.PutUint32(hdr[4:], uint32(r.Height))
	binary.LittleEndian.PutUint32(hdr[8:], uint32(len(r.Planes)))
	_, _ = h.Write(hdr[:])
	for _, plane := range r.Planes {
		_, _ = h.Write(plane)
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}
