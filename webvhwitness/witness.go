// Package webvhwitness validates witness parameters and counts approvals
// in a witness-proof set, per spec.md §4.6. Counting dispatches on
// protocol version between the v1.0 "one distinct witness = one
// approval" rule and the v0.5 "sum declared weight" rule, grounded on
// the dual-rule split spec.md §9 calls out.
package webvhwitness

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/geunkim/didwebvh/webvh"
	"github.com/geunkim/didwebvh/webvhcrypto"
)

// Witness is one entry of a witness parameter's declared set.
type Witness struct {
	ID     string `json:"id"`
	Weight int    `json:"weight,omitempty"`
}

// Params is the `witness` transition parameter, per spec.md §3.1. A nil
// *Params (as opposed to an empty one) means witnessing is disabled for
// the entry.
type Params struct {
	Threshold int       `json:"threshold"`
	Witnesses []Witness `json:"witnesses"`
}

// Validate checks the structural invariants spec.md §4.6 requires of a
// witness parameter: non-empty witness list, every id prefixed
// "did:key:", unique ids, and 1 <= threshold <= len(witnesses).
func (p *Params) Validate() error {
	if p == nil {
		return nil
	}
	if len(p.Witnesses) == 0 {
		return webvh.NewWitnessError("witnesses must be non-empty", nil)
	}
	seen := make(map[string]bool, len(p.Witnesses))
	for _, w := range p.Witnesses {
		if !strings.HasPrefix(w.ID, "did:key:") {
			return webvh.NewWitnessError(fmt.Sprintf("witness id %q does not begin with did:key:", w.ID), nil)
		}
		if seen[w.ID] {
			return webvh.NewWitnessError(fmt.Sprintf("duplicate witness id %q", w.ID), nil)
		}
		seen[w.ID] = true
	}
	if p.Threshold < 1 || p.Threshold > len(p.Witnesses) {
		return webvh.NewWitnessError(fmt.Sprintf("threshold %d out of range [1, %d]", p.Threshold, len(p.Witnesses)), nil)
	}
	return nil
}

// ProofSet is the witness-proof-set document fetched from the sibling
// did-witness.json file, per spec.md §3.1 "Witness proof set".
type ProofSet []VersionProofs

// VersionProofs groups the witness proofs submitted for one versionId.
type VersionProofs struct {
	VersionID string               `json:"versionId"`
	Proof     []witnessProofRecord `json:"proof"`
}

type witnessProofRecord struct {
	Type               string `json:"type"`
	Cryptosuite        string `json:"cryptosuite"`
	VerificationMethod string `json:"verificationMethod"`
	Created            string `json:"created"`
	ProofPurpose       string `json:"proofPurpose"`
	ProofValue         string `json:"proofValue"`
}

// targetMessage is the document the witness signs over: {"versionId":
// "<target>"}, per spec.md §4.6.
type targetMessage struct {
	VersionID string `json:"versionId"`
}

// protocolRules abstracts the v1.0/v0.5 counting-method split, selected
// by Count based on the entry's declared parameters.method.
type protocolRules interface {
	CountWitness(w Witness, approvals map[string]bool) int
}

type rulesV1_0 struct{}

// CountWitness treats every distinct approving witness as exactly one
// approval, regardless of declared weight, per spec.md §4.6 parenthetical.
func (rulesV1_0) CountWitness(w Witness, approvals map[string]bool) int {
	if approvals[w.ID] {
		return 0
	}
	return 1
}

type rulesV0_5 struct{}

// CountWitness sums the witness's declared weight, the v0.5 behavior
// spec.md §9 requires be preserved behind the version switch.
func (rulesV0_5) CountWitness(w Witness, approvals map[string]bool) int {
	if approvals[w.ID] {
		return 0
	}
	if w.Weight > 0 {
		return w.Weight
	}
	return 1
}

func rulesFor(method string) protocolRules {
	if strings.Contains(method, "0.5") {
		return rulesV0_5{}
	}
	return rulesV1_0{}
}

// Count verifies the proof set against params for the given target
// versionId and protocol method tag, returning the accumulated approval
// count (per the version-appropriate counting rule) and any hard
// rejection spec.md §4.6 requires (malformed verificationMethod,
// unsupported cryptosuite).
//
// Count does not itself compare approvals against threshold; callers
// combine Count's result with params.Threshold.
func Count(params *Params, method string, targetVersionID string, set ProofSet, verifier webvhcrypto.Verifier) (int, error) {
	if params == nil {
		return 0, nil
	}
	if err := params.Validate(); err != nil {
		return 0, err
	}

	declared := make(map[string]bool, len(params.Witnesses))
	byID := make(map[string]Witness, len(params.Witnesses))
	for _, w := range params.Witnesses {
		declared[w.ID] = true
		byID[w.ID] = w
	}

	rules := rulesFor(method)
	approvals := map[string]bool{}
	total := 0

	msg, err := json.Marshal(targetMessage{VersionID: targetVersionID})
	if err != nil {
		return 0, webvh.NewFormatError("marshaling witness target message", err)
	}

	for _, vp := range set {
		if vp.VersionID != targetVersionID {
			continue
		}
		for _, proof := range vp.Proof {
			if proof.Cryptosuite != "eddsa-jcs-2022" {
				return 0, webvh.NewCryptoError(fmt.Sprintf("unsupported witness cryptosuite %q", proof.Cryptosuite), nil)
			}
			witnessID, ok := matchDeclaredWitness(proof.VerificationMethod, declared)
			if !ok {
				return 0, webvh.NewWitnessError(fmt.Sprintf("verificationMethod %q does not match a declared witness id", proof.VerificationMethod), nil)
			}
			if approvals[witnessID] {
				continue
			}

			pub, err := decodeDIDKeyPublicKey(witnessID)
			if err != nil {
				return 0, err
			}

			ok, err = verifyWitnessProof(verifier, proof, msg, pub)
			if err != nil {
				return 0, err
			}
			if !ok {
				continue
			}

			total += rules.CountWitness(byID[witnessID], approvals)
			approvals[witnessID] = true
		}
	}

	return total, nil
}

func matchDeclaredWitness(vm string, declared map[string]bool) (string, bool) {
	for id := range declared {
		if strings.HasPrefix(vm, id) {
			return id, true
		}
	}
	return "", false
}

// decodeDIDKeyPublicKey resolves a did:key:<multibase> witness id to its
// raw Ed25519 public key, per spec.md §4.6: decode the base58btc
// multibase, require a 34-byte blob with the 0xED 0x01 prefix, and return
// the trailing 32 bytes.
func decodeDIDKeyPublicKey(didKey string) ([]byte, error) {
	mb := strings.TrimPrefix(didKey, "did:key:")
	pub, err := webvhcrypto.DecodePublicKeyMultibase(mb)
	if err != nil {
		return nil, webvh.NewWitnessError(fmt.Sprintf("decoding did:key %q", didKey), err)
	}
	return pub, nil
}

func verifyWitnessProof(verifier webvhcrypto.Verifier, proof witnessProofRecord, msg, pub []byte) (bool, error) {
	tmpl := webvhcrypto.ProofTemplate{
		Type:               proof.Type,
		Cryptosuite:        proof.Cryptosuite,
		VerificationMethod: proof.VerificationMethod,
		Created:            proof.Created,
		ProofPurpose:       proof.ProofPurpose,
	}
	ok, err := webvhcrypto.VerifyProofValue(verifier, json.RawMessage(msg), tmpl, proof.ProofValue, pub)
	if err != nil {
		return false, webvh.NewCryptoError("verifying witness proof", err)
	}
	return ok, nil
}
