package webvhid

import (
	"fmt"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/norm"
)

// idnProfile is the IDNA2008 lookup mapping plus the Bidi rule, used for
// ACE (punycode) conversion. Callers NFC-normalize before using it;
// hostToASCII falls back to the normalized host when it rejects one.
var idnProfile = idna.New(
	idna.MapForLookup(),
	idna.BidiRule(),
)

// hostToASCII converts a "host[:port]" string's host label(s) to their
// ASCII/punycode form, per spec.md §4.2/§6.1. The optional port is passed
// through unchanged.
func hostToASCII(hostport string) (string, error) {
	host, port, hasPort := splitHostPort(hostport)

	normalized := norm.NFC.String(host)
	ascii, err := idnProfile.ToASCII(normalized)
	if err != nil {
		// fall back to the raw (already-ASCII, or already-invalid) host
		// rather than fail resolution outright for hosts idna's stricter
		// validation rejects but which are otherwise well-formed labels.
		ascii = normalized
	}
	ascii = strings.ToLower(ascii)

	if hasPort {
		return ascii + ":" + port, nil
	}
	return ascii, nil
}

func splitHostPort(hostport string) (host, port string, hasPort bool) {
	if i := strings.LastIndex(hostport, ":"); i >= 0 {
		return hostport[:i], hostport[i+1:], true
	}
	return hostport, "", false
}

// ToPunycode converts a single IDN label to its ASCII/punycode form, for
// callers that just need the host conversion without URL assembly.
func ToPunycode(label string) (string, error) {
	ascii, err := idnProfile.ToASCII(norm.NFC.String(label))
	if err != nil {
		return "", fmt.Errorf("webvhid: punycode conversion failed: %w", err)
	}
	return ascii, nil
}
