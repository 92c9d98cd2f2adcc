package webvhid

import (
	"github.com/geunkim/didwebvh/internal/jcs"
	"github.com/geunkim/didwebvh/internal/multibase"
	"github.com/geunkim/didwebvh/internal/multihash"
)

// DeriveHash returns base58btc(multihash-sha256(jcs(obj))), per spec.md
// §4.2 "deriveHash". This is the hash embedded in every versionId and in
// the SCID itself.
func DeriveHash(obj any) (string, error) {
	canon, err := jcs.Marshal(obj)
	if err != nil {
		return "", err
	}
	return DeriveHashFromCanonicalBytes(canon), nil
}

// DeriveHashFromCanonicalBytes hashes already-canonicalized JSON bytes.
// Split out from DeriveHash because the resolver needs to hash a
// textually-substituted (placeholder'd) canonical entry, not a freshly
// re-marshaled one — see spec.md §9, "canonicalization is load-bearing".
func DeriveHashFromCanonicalBytes(canon []byte) string {
	mh := multihash.Sum(canon)
	return multibase.MustEncode58BTC(mh)
}

// DeriveNextKeyHash returns base58btc(multihash-sha256(utf8(k))), the
// pre-rotation commitment for a multibase-encoded public key k, per
// spec.md §4.2 "deriveNextKeyHash".
func DeriveNextKeyHash(multibaseKey string) string {
	mh := multihash.Sum([]byte(multibaseKey))
	return multibase.MustEncode58BTC(mh)
}

// DeriveSCID is the identity function at protocol version 1.0: the SCID
// *is* the first-entry hash value (spec.md §4.2 "createSCID"). Kept as a
// named function, rather than inlined at call sites, so a future protocol
// revision can change the derivation without touching every caller.
func DeriveSCID(firstEntryHash string) string {
	return firstEntryHash
}
