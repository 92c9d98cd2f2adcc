// Package multihash frames a digest with a varint-encoded algorithm code and
// a varint-encoded length prefix, per the multiformats multihash spec:
// https://github.com/multiformats/multihash
//
// did:webvh only ever *produces* SHA2-256 multihashes, but must be able to
// *decode* SHA2-256/384 and SHA3-256/384 digests found in foreign data, per
// spec.md §4.1.
package multihash

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"

	gomultihash "github.com/multiformats/go-multihash"
	"github.com/multiformats/go-varint"
	"golang.org/x/crypto/sha3"
)

// Code is a multicodec hash-function identifier.
type Code uint64

const (
	SHA2_256 Code = 0x12
	SHA2_384 Code = 0x20
	SHA3_256 Code = 0x16
	SHA3_384 Code = 0x15
)

var digestLength = map[Code]int{
	SHA2_256: 32,
	SHA2_384: 48,
	SHA3_256: 32,
	SHA3_384: 48,
}

// Sum computes the SHA2-256 digest of data and frames it as a multihash:
// varint(code) || varint(length) || digest.
//
// Encoding is always SHA2-256 at protocol version 1.0; see spec.md §4.1.
func Sum(data []byte) []byte {
	digest := sha256.Sum256(data)
	return frame(SHA2_256, digest[:])
}

func frame(code Code, digest []byte) []byte {
	buf := make([]byte, varint.MaxLenUvarint63*2+len(digest))
	n := varint.PutUvarint(buf, uint64(code))
	n += varint.PutUvarint(buf[n:], uint64(len(digest)))
	n += copy(buf[n:], digest)
	return buf[:n]
}

// Decoded is a parsed multihash.
type Decoded struct {
	Code   Code
	Length int
	Digest []byte
}

// Decode validates and unpacks a multihash byte string. The declared length
// must equal the actual digest length, and the algorithm must be one of the
// four supported codes.
func Decode(data []byte) (*Decoded, error) {
	dec, err := gomultihash.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("multihash: malformed: %w", err)
	}
	code := Code(dec.Code)
	wantLen, ok := digestLength[code]
	if !ok {
		return nil, fmt.Errorf("multihash: unsupported algorithm code 0x%x", dec.Code)
	}
	if dec.Length != wantLen || len(dec.Digest) != wantLen {
		return nil, fmt.Errorf("multihash: declared length %d does not match algorithm digest length %d", dec.Length, wantLen)
	}
	return &Decoded{Code: code, Length: dec.Length, Digest: dec.Digest}, nil
}

// VerifyDigest recomputes the hash of data under the multihash's declared
// algorithm and reports whether it matches the embedded digest.
func (d *Decoded) VerifyDigest(data []byte) bool {
	var got []byte
	switch d.Code {
	case SHA2_256:
		sum := sha256.Sum256(data)
		got = sum[:]
	case SHA2_384:
		sum := sha512.Sum384(data)
		got = sum[:]
	case SHA3_256:
		sum := sha3.Sum256(data)
		got = sum[:]
	case SHA3_384:
		sum := sha3.Sum384(data)
		got = sum[:]
	default:
		return false
	}
	if len(got) != len(d.Digest) {
		return false
	}
	for i := range got {
		if got[i] != d.Digest[i] {
			return false
		}
	}
	return true
}
