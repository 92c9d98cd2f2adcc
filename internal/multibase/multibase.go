// Package multibase implements the narrow slice of the multibase
// self-describing-encoding spec that did:webvh actually uses: base58btc
// (prefix 'z') and base64url-without-padding (prefix 'u').
//
// https://github.com/multiformats/multibase
package multibase

import (
	"encoding/base64"
	"fmt"

	"github.com/mr-tron/base58"
	gomultibase "github.com/multiformats/go-multibase"
)

// Base identifies a supported multibase encoding.
type Base byte

const (
	Base58BTC Base = 'z'
	Base64URL Base = 'u'
)

// Encode prefixes the base tag byte onto the encoded form of data.
func Encode(base Base, data []byte) (string, error) {
	switch base {
	case Base58BTC:
		return string(base) + base58.Encode(data), nil
	case Base64URL:
		return string(base) + base64.RawURLEncoding.EncodeToString(data), nil
	default:
		return "", fmt.Errorf("multibase: unsupported base %q", byte(base))
	}
}

// Decode strips and validates the base tag byte, returning the raw bytes.
func Decode(encoded string) (Base, []byte, error) {
	if len(encoded) < 1 {
		return 0, nil, fmt.Errorf("multibase: empty string")
	}
	base := Base(encoded[0])
	rest := encoded[1:]
	switch base {
	case Base58BTC:
		data, err := base58.Decode(rest)
		if err != nil {
			return 0, nil, fmt.Errorf("multibase: invalid base58btc: %w", err)
		}
		return base, data, nil
	case Base64URL:
		data, err := base64.RawURLEncoding.DecodeString(rest)
		if err != nil {
			return 0, nil, fmt.Errorf("multibase: invalid base64url: %w", err)
		}
		return base, data, nil
	default:
		// fall back to the full multiformats table, in case a caller hands us
		// an encoding we don't otherwise special-case (eg for interop tests).
		enc, data, err := gomultibase.Decode(encoded)
		if err != nil {
			return 0, nil, fmt.Errorf("multibase: unsupported or malformed encoding: %w", err)
		}
		return Base(enc), data, nil
	}
}

// MustEncode58BTC is a convenience wrapper for the overwhelmingly common
// case in this codebase: base58btc encoding, which never fails.
func MustEncode58BTC(data []byte) string {
	s, err := Encode(Base58BTC, data)
	if err != nil {
		panic(err)
	}
	return s
}
