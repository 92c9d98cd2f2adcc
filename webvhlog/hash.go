package webvhlog

import (
	"fmt"
	"strings"

	"github.com/geunkim/didwebvh/internal/jcs"
	"github.com/geunkim/didwebvh/webvhid"
)

// placeholderHash canonicalizes e's body with its versionId replaced by
// the stable versionId placeholder token and, when scid is non-empty,
// every textual occurrence of scid replaced by the SCID placeholder
// token, then hashes the result. Per spec.md §9 "Canonicalization is
// load-bearing": substitutions happen on the *textual* canonical JSON so
// that computation and verification walk the identical byte sequence.
//
// Passing scid == "" computes the plain versionId-chain hash entries
// after the first use (spec.md §3.1, §4.5 step 3 "Hash-chain gate").
// Passing the entry's own declared scid computes the special entry-1
// preHash that doubles as the SCID-derivation check and the versionId
// chain hash for entry 1 (spec.md §4.5 step 2), since createSCID is the
// identity function (webvhid.DeriveSCID).
func placeholderHash(e Entry, scid string) (string, error) {
	body := e.body()
	body.VersionID = webvhid.PlaceholderVersionID

	canon, err := jcs.Marshal(body)
	if err != nil {
		return "", err
	}

	if scid != "" {
		canon = []byte(strings.ReplaceAll(string(canon), scid, webvhid.PlaceholderSCID))
	}

	return webvhid.DeriveHashFromCanonicalBytes(canon), nil
}

// versionIDFor builds the "<n>-<hash>" versionId string for position n
// given the hash computed by placeholderHash.
func versionIDFor(n int, hash string) string {
	return fmt.Sprintf("%d-%s", n, hash)
}
