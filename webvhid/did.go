// Package webvhid implements the identifier-level utilities for did:webvh:
// DID string parsing, host/path derivation, and the small set of hash
// derivations (SCID, next-key-hash) that are pure functions of encoded
// strings rather than of a log entry's JSON shape.
//
// Grounded on atproto/syntax.DID (regex-validated string type with
// Method/Identifier accessors) and did/web.go's checkValidDidWeb, extended
// to did:webvh's colon-segmented host-and-path syntax (spec.md §4.2, §6.1).
package webvhid

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// DID is a syntactically valid did:webvh identifier string.
//
// Always use ParseDID instead of wrapping a raw string, especially for
// network input.
type DID string

var didRegex = regexp.MustCompile(`^did:webvh:[a-zA-Z0-9._-]+(:[a-zA-Z0-9._%-]+)+$`)

// ParseDID validates the did:webvh:<scid>:<host-and-path> syntax (spec.md
// §6.1) and returns the typed identifier.
func ParseDID(raw string) (DID, error) {
	if raw == "" {
		return "", fmt.Errorf("webvhid: expected DID, got empty string")
	}
	if len(raw) > 2*1024 {
		return "", fmt.Errorf("webvhid: DID too long (2048 chars max)")
	}
	if !didRegex.MatchString(raw) {
		return "", fmt.Errorf("webvhid: DID syntax didn't validate: %s", raw)
	}
	return DID(raw), nil
}

// Segments splits the DID into its colon-delimited parts, after the
// "did:webvh:" prefix: [0] is the SCID, the rest are the host-and-path
// segments (spec.md §4.2, §6.1).
func (d DID) Segments() []string {
	rest := strings.TrimPrefix(string(d), "did:webvh:")
	return strings.Split(rest, ":")
}

// SCID returns the self-certifying identifier segment.
func (d DID) SCID() string {
	segs := d.Segments()
	if len(segs) == 0 {
		return ""
	}
	return segs[0]
}

// WithSCID returns a copy of the DID with its SCID segment replaced. The
// mutators in webvhlog build their placeholder and final DID strings
// directly and do not call it.
func (d DID) WithSCID(scid string) DID {
	segs := d.Segments()
	if len(segs) == 0 {
		return d
	}
	segs[0] = scid
	return DID("did:webvh:" + strings.Join(segs, ":"))
}

// HostSegment returns the last colon segment of the identifier's id, the
// value that portability policy (spec.md §4.5 "Portability gate") is
// checked against. For a DID with path segments this is the last path
// segment, not the host.
func (d DID) HostSegment() string {
	segs := d.Segments()
	if len(segs) < 2 {
		return ""
	}
	return segs[len(segs)-1]
}

// String returns the raw DID string.
func (d DID) String() string { return string(d) }

// PlaceholderSCID is the stable textual token substituted for the DID's
// SCID when pre-hashing an entry, per spec.md §3.1/§9.
const PlaceholderSCID = "{SCID}"

// PlaceholderVersionID is the stable textual token substituted for the
// versionId field when pre-hashing an entry, per spec.md §3.1/§9.
const PlaceholderVersionID = "{{VERSION_ID}}"

// GetBaseURL derives the HTTP(S) origin+path for a did:webvh identifier,
// per spec.md §4.2 "getBaseUrl". Each colon-segment after the SCID becomes
// a '/'-joined path component; a segment's ':' (used to encode a port) is
// percent-decoded back to its literal form; IDN host labels are converted
// to ASCII via punycode.
func GetBaseURL(did DID) (string, error) {
	segs := did.Segments()
	if len(segs) < 2 {
		return "", fmt.Errorf("webvhid: DID has no host-and-path segments: %s", did)
	}
	tail := segs[1:]

	decoded := make([]string, 0, len(tail))
	for _, seg := range tail {
		d, err := url.PathUnescape(seg)
		if err != nil {
			return "", fmt.Errorf("webvhid: invalid percent-encoding in segment %q: %w", seg, err)
		}
		decoded = append(decoded, d)
	}

	hostport := decoded[0]
	path := strings.Join(decoded[1:], "/")

	asciiHost, err := hostToASCII(hostport)
	if err != nil {
		return "", fmt.Errorf("webvhid: invalid host %q: %w", hostport, err)
	}

	scheme := "https"
	if isLocalhost(asciiHost) {
		scheme = "http"
	}

	base := scheme + "://" + asciiHost
	if path != "" {
		base += "/" + path
	}
	return base, nil
}

func isLocalhost(hostport string) bool {
	host := hostport
	if i := strings.LastIndex(hostport, ":"); i >= 0 {
		host = hostport[:i]
	}
	return host == "localhost"
}

// LogFileURL returns (did.jsonl URL, did-witness.json URL) for the DID,
// per spec.md §4.2 "getFileUrl" and §6.2/§6.3. A bare host with no further
// path uses the well-known location; otherwise the log lives alongside the
// path.
func LogFileURL(did DID) (logURL string, witnessURL string, err error) {
	base, err := GetBaseURL(did)
	if err != nil {
		return "", "", err
	}
	segs := did.Segments()
	bare := len(segs) == 2 // SCID + single host segment, no path segments
	if bare {
		logURL = base + "/.well-known/did.jsonl"
		witnessURL = base + "/.well-known/did-witness.json"
	} else {
		logURL = base + "/did.jsonl"
		witnessURL = base + "/did-witness.json"
	}
	return logURL, witnessURL, nil
}
