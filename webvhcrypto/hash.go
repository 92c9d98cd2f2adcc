package webvhcrypto

import "crypto/sha256"

// sha256Sum is the plain (unframed) digest used inside proof construction,
// distinct from internal/multihash.Sum which additionally frames the
// digest with its multicodec/length header. Proof hashing operates on raw
// digest bytes per spec.md §4.4; multihash framing only applies to
// versionId and SCID derivation (webvhid.DeriveHash).
func sha256Sum(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}
