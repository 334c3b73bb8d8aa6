// Package naming derives stable, filesystem-safe file names from content.
//
// Downloaded logos, composed images, and token documents are all written to a
// shared work directory under names derived from a 64-bit content digest, so
// equal content always maps to the same name within one process. Hashing never
// fails; collisions between distinct content are an accepted risk of the
// 64-bit digest width.
package naming

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Sum64 returns the 64-bit digest of b.
func Sum64(b []byte) uint64 {
	return xxhash.Sum64(b)
}

// New returns a streaming digest for hashing composite records field by field.
func New() *xxhash.Digest {
	return xxhash.New()
}

// Filename renders a digest as a decimal base name with ext appended.
// ext must include the leading dot, e.g. ".png".
func Filename(digest uint64, ext string) string {
	return strconv.FormatUint(digest, 10) + ext
}
