package webvhlog

import (
	"context"
	"strconv"
	"strings"

	"github.com/geunkim/didwebvh/webvh"
	"github.com/geunkim/didwebvh/webvhcrypto"
	"github.com/geunkim/didwebvh/webvhdoc"
	"github.com/geunkim/didwebvh/webvhid"
	"github.com/geunkim/didwebvh/webvhwitness"
)

// Options bundles everything Resolve needs beyond the log itself.
type Options struct {
	Selector     Selector
	WitnessProof webvhwitness.ProofSet
	Verifier     webvhcrypto.Verifier
	Policy       webvh.Policy
}

// Result is what Resolve returns on success, per spec.md §4.5 "Contract".
type Result struct {
	DID      string
	Document webvhdoc.Document
	Meta     Metadata
}

// Resolve replays log against options and returns the document matching
// the requested selector, per spec.md §4.5. It is the single entry point
// for the per-entry state machine described there.
func Resolve(ctx context.Context, log []Entry, opts Options) (*Result, error) {
	if len(log) == 0 {
		return nil, webvh.NewNotFoundError("log is empty", nil)
	}
	if opts.Verifier == nil {
		return nil, webvh.NewConfigError("Verifier implementation is required", nil)
	}
	if opts.Selector.setCount() > 1 {
		return nil, webvh.NewConfigError("selector must specify exactly one of versionNumber, versionId, versionTime, or verificationMethod", nil)
	}

	var meta Metadata
	var host string
	var did string
	var doc webvhdoc.Document

	for i, entry := range log {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n := i + 1
		if err := checkVersionNumber(entry.VersionID, n); err != nil {
			return nil, err
		}

		if i == 0 {
			if err := processFirstEntry(entry, &meta, &host, opts.Policy, opts.Verifier); err != nil {
				return nil, err
			}
		} else {
			prev := log[i-1]
			if err := processLaterEntry(entry, prev, n, &meta, &host, opts.Policy, opts.Verifier); err != nil {
				return nil, err
			}
			_, prevHash, err := splitVersionID(prev.VersionID)
			if err != nil {
				return nil, err
			}
			meta.PreviousLogEntryHash = prevHash
		}

		did = entry.State.ID
		doc = entry.State
		base, err := baseURLFor(did)
		if err == nil {
			doc = webvhdoc.WithDefaultServices(doc, base)
		}

		meta.VersionID = entry.VersionID
		if i == 0 {
			meta.Created = entry.VersionTime
		}
		meta.Updated = entry.VersionTime

		if matched, err := matchesSelector(opts.Selector, entry, doc, n, log, i); err != nil {
			return nil, err
		} else if matched {
			if i == len(log)-1 {
				if err := checkWitnessGate(meta, entry.VersionID, opts.WitnessProof, opts.Verifier, opts.Policy); err != nil {
					return nil, err
				}
			}
			return &Result{DID: did, Document: doc, Meta: meta}, nil
		}

		if i == len(log)-1 {
			if err := checkWitnessGate(meta, entry.VersionID, opts.WitnessProof, opts.Verifier, opts.Policy); err != nil {
				return nil, err
			}
		}
	}

	return &Result{DID: did, Document: doc, Meta: meta}, nil
}

func baseURLFor(did string) (string, error) {
	parsed, err := webvhid.ParseDID(did)
	if err != nil {
		return "", err
	}
	return webvhid.GetBaseURL(parsed)
}

// checkVersionNumber enforces spec.md §4.5 step 1.
func checkVersionNumber(versionID string, want int) error {
	n, _, err := splitVersionID(versionID)
	if err != nil {
		return err
	}
	if n != want {
		return webvh.NewIntegrityError("versionId sequence number out of order", nil)
	}
	return nil
}

func splitVersionID(versionID string) (int, string, error) {
	parts := strings.SplitN(versionID, "-", 2)
	if len(parts) != 2 {
		return 0, "", webvh.NewFormatError("malformed versionId: "+versionID, nil)
	}
	n, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", webvh.NewFormatError("versionId has non-numeric sequence prefix: "+versionID, err)
	}
	return n, parts[1], nil
}

// processFirstEntry implements spec.md §4.5 step 2, "Entry-1 specifics".
func processFirstEntry(entry Entry, meta *Metadata, host *string, policy webvh.Policy, verifier webvhcrypto.Verifier) error {
	scid := entry.Parameters.SCID
	if scid == "" {
		return webvh.NewFormatError("entry 1 is missing parameters.scid", nil)
	}
	if entry.Parameters.Method == "" {
		return webvh.NewFormatError("entry 1 is missing parameters.method", nil)
	}
	if len(entry.Parameters.UpdateKeys) == 0 {
		return webvh.NewFormatError("entry 1 is missing parameters.updateKeys", nil)
	}

	did, err := webvhid.ParseDID(entry.State.ID)
	if err != nil {
		return err
	}
	*host = did.HostSegment()

	if !policy.IgnoreSCIDIsFromHash {
		preHash, err := placeholderHash(entry, scid)
		if err != nil {
			return err
		}
		if webvhid.DeriveSCID(preHash) != scid {
			return webvh.NewIntegrityError("scid does not match its derivation hash", nil)
		}
		_, wantHash, err := splitVersionID(entry.VersionID)
		if err != nil {
			return err
		}
		if wantHash != preHash {
			return webvh.NewIntegrityError("entry 1 versionId hash does not match derivation", nil)
		}
	}

	if !policy.IgnoreKeyIsAuthorized {
		if err := verifyProofs(entry, entry.Parameters.UpdateKeys, verifier); err != nil {
			return err
		}
	}

	meta.SCID = scid
	meta.Method = entry.Parameters.Method
	meta.Portable = boolOr(entry.Parameters.Portable, false)
	meta.UpdateKeys = entry.Parameters.UpdateKeys
	meta.NextKeyHashes = entry.Parameters.NextKeyHashes
	meta.Prerotation = len(entry.Parameters.NextKeyHashes) > 0
	if w, ok, err := entry.Parameters.WitnessValue(); err != nil {
		return webvh.NewFormatError("entry 1 parameters.witness is malformed", err)
	} else if ok {
		meta.Witness = w
	}
	if watchers, ok, err := entry.Parameters.WatchersValue(); err != nil {
		return webvh.NewFormatError("entry 1 parameters.watchers is malformed", err)
	} else if ok {
		meta.Watchers = watchers
	}

	return nil
}

// processLaterEntry implements spec.md §4.5 step 3, "Entry n>1".
func processLaterEntry(entry, prev Entry, n int, meta *Metadata, host *string, policy webvh.Policy, verifier webvhcrypto.Verifier) error {
	if meta.Deactivated {
		if !isNoopParameters(entry.Parameters) {
			return webvh.NewPolicyError("no parameter changes are permitted after deactivation", nil)
		}
	}

	newDid, err := webvhid.ParseDID(entry.State.ID)
	if err != nil {
		return err
	}
	newHost := newDid.HostSegment()
	if !policy.IgnoreDocumentStateIsValid {
		if !meta.Portable && newHost != *host {
			return webvh.NewPolicyError("document is not portable but host changed", nil)
		}
	}
	*host = newHost

	authorizedKeys := meta.UpdateKeys
	if meta.Prerotation {
		authorizedKeys = entry.Parameters.UpdateKeys
		if !policy.IgnoreNewKeysAreValid {
			for _, k := range authorizedKeys {
				if !matchesAnyNextKeyHash(k, meta.NextKeyHashes) {
					return webvh.NewAuthorizationError("update key does not satisfy pre-rotation commitment", nil)
				}
			}
		}
	}

	if !policy.IgnoreKeyIsAuthorized {
		if err := verifyProofs(entry, authorizedKeys, verifier); err != nil {
			return err
		}
	}

	if !policy.IgnoreHashChainIsValid {
		hash, err := placeholderHash(entry, "")
		if err != nil {
			return err
		}
		_, wantHash, err := splitVersionID(entry.VersionID)
		if err != nil {
			return err
		}
		if hash != wantHash {
			return webvh.NewIntegrityError("entry hash does not match versionId", nil)
		}
	}

	applyParameterTransitions(entry.Parameters, meta)

	return nil
}

func applyParameterTransitions(p Parameters, meta *Metadata) {
	if len(p.UpdateKeys) > 0 {
		meta.UpdateKeys = p.UpdateKeys
	}
	if p.Deactivated != nil && *p.Deactivated {
		meta.Deactivated = true
	}
	if p.NextKeyHashes != nil {
		meta.NextKeyHashes = p.NextKeyHashes
		meta.Prerotation = len(p.NextKeyHashes) > 0
	}
	if w, ok, _ := p.WitnessValue(); ok {
		meta.Witness = w
	}
	if watchers, ok, _ := p.WatchersValue(); ok {
		meta.Watchers = watchers
	}
}

func isNoopParameters(p Parameters) bool {
	if len(p.UpdateKeys) > 0 || p.NextKeyHashes != nil {
		return false
	}
	if p.Deactivated != nil && *p.Deactivated {
		// re-asserting deactivated=true is a no-op
	} else if p.Deactivated != nil {
		return false
	}
	if p.Witness != nil && p.Witness.Set {
		return false
	}
	if p.Watchers != nil && p.Watchers.Set {
		return false
	}
	return true
}

func matchesAnyNextKeyHash(key string, hashes []string) bool {
	want := webvhid.DeriveNextKeyHash(key)
	for _, h := range hashes {
		if h == want {
			return true
		}
	}
	return false
}

// verifyProofs checks that every proof in entry.Proof is over an
// authorized key and verifies, per spec.md §4.5 step 2/3's proof checks
// and §4.4.
func verifyProofs(entry Entry, authorizedKeys []string, verifier webvhcrypto.Verifier) error {
	if len(entry.Proof) == 0 {
		return webvh.NewAuthorizationError("entry has no proofs", nil)
	}
	body := entry.body()
	for _, proof := range entry.Proof {
		key, ok := matchUpdateKey(proof.VerificationMethod, authorizedKeys)
		if !ok {
			return webvh.NewAuthorizationError("proof verificationMethod is not an authorized update key: "+proof.VerificationMethod, nil)
		}
		pub, err := webvhcrypto.DecodePublicKeyMultibase(key)
		if err != nil {
			return webvh.NewAuthorizationError("decoding update key", err)
		}
		tmpl := webvhcrypto.ProofTemplate{
			Type:               proof.Type,
			Cryptosuite:        proof.Cryptosuite,
			VerificationMethod: proof.VerificationMethod,
			Created:            proof.Created,
			ProofPurpose:       proof.ProofPurpose,
		}
		ok, err = webvhcrypto.VerifyProofValue(verifier, body, tmpl, proof.ProofValue, pub)
		if err != nil {
			return webvh.NewCryptoError("verifying entry proof", err)
		}
		if !ok {
			return webvh.NewCryptoError("entry proof did not verify", nil)
		}
	}
	return nil
}

// matchUpdateKey finds the updateKeys entry whose did:key form is a
// prefix of vm (spec.md §4.5 step 2: "under did:key matching, ignoring
// fragment").
func matchUpdateKey(vm string, updateKeys []string) (string, bool) {
	for _, k := range updateKeys {
		if strings.HasPrefix(vm, "did:key:"+k) {
			return k, true
		}
	}
	return "", false
}

func matchesSelector(sel Selector, entry Entry, doc webvhdoc.Document, n int, log []Entry, i int) (bool, error) {
	if sel.setCount() == 0 {
		return i == len(log)-1, nil
	}
	if sel.VerificationMethod != "" {
		for _, vm := range doc.VerificationMethod {
			if vm.ID == sel.VerificationMethod || strings.HasSuffix(vm.ID, "#"+sel.VerificationMethod) {
				return true, nil
			}
		}
		return false, nil
	}
	if sel.VersionNumber != 0 {
		return sel.VersionNumber == n, nil
	}
	if sel.VersionID != "" {
		return sel.VersionID == entry.VersionID, nil
	}
	if !sel.VersionTime.IsZero() {
		if sel.VersionTime.Before(entry.VersionTime) {
			return false, nil
		}
		if i+1 < len(log) && !sel.VersionTime.Before(log[i+1].VersionTime) {
			return false, nil
		}
		return true, nil
	}
	return false, nil
}

func checkWitnessGate(meta Metadata, targetVersionID string, set webvhwitness.ProofSet, verifier webvhcrypto.Verifier, policy webvh.Policy) error {
	if policy.IgnoreWitnessIsAuthorized || meta.Witness == nil {
		return nil
	}
	approvals, err := webvhwitness.Count(meta.Witness, meta.Method, targetVersionID, set, verifier)
	if err != nil {
		return err
	}
	if approvals < meta.Witness.Threshold {
		return webvh.NewWitnessError("witness proof set did not reach threshold", nil)
	}
	return nil
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
