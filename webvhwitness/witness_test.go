package webvhwitness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/geunkim/didwebvh/webvhcrypto"
)

func TestValidate_RejectsEmptyWitnesses(t *testing.T) {
	assert := assert.New(t)
	p := &Params{Threshold: 1}
	assert.Error(p.Validate())
}

func TestValidate_RejectsNonDidKeyID(t *testing.T) {
	assert := assert.New(t)
	p := &Params{Threshold: 1, Witnesses: []Witness{{ID: "did:web:example.com"}}}
	assert.Error(p.Validate())
}

func TestValidate_RejectsDuplicateIDs(t *testing.T) {
	assert := assert.New(t)
	p := &Params{Threshold: 1, Witnesses: []Witness{{ID: "did:key:z1"}, {ID: "did:key:z1"}}}
	assert.Error(p.Validate())
}

func TestValidate_RejectsThresholdOutOfRange(t *testing.T) {
	assert := assert.New(t)
	p := &Params{Threshold: 3, Witnesses: []Witness{{ID: "did:key:z1"}}}
	assert.Error(p.Validate())
}

func TestValidate_AcceptsWellFormed(t *testing.T) {
	assert := assert.New(t)
	p := &Params{Threshold: 1, Witnesses: []Witness{{ID: "did:key:z1"}}}
	assert.NoError(p.Validate())
}

func signWitnessProof(t *testing.T, signer *webvhcrypto.Ed25519Signer, vmID, targetVersionID string) witnessProofRecord {
	t.Helper()
	tmpl := webvhcrypto.ProofTemplate{
		Type:               "DataIntegrityProof",
		Cryptosuite:        "eddsa-jcs-2022",
		VerificationMethod: vmID,
		Created:            time.Now().UTC().Format(time.RFC3339),
		ProofPurpose:       "authentication",
	}
	proofValue, err := webvhcrypto.Sign(signer, targetMessage{VersionID: targetVersionID}, tmpl)
	assert.NoError(t, err)
	return witnessProofRecord{
		Type:               tmpl.Type,
		Cryptosuite:        tmpl.Cryptosuite,
		VerificationMethod: tmpl.VerificationMethod,
		Created:            tmpl.Created,
		ProofPurpose:       tmpl.ProofPurpose,
		ProofValue:         proofValue,
	}
}

func TestCount_SingleWitnessReachesThreshold(t *testing.T) {
	assert := assert.New(t)

	pub, priv, err := webvhcrypto.GenerateEd25519Key()
	assert.NoError(err)
	witnessID := "did:key:" + webvhcrypto.EncodePublicKeyMultibase(pub)

	params := &Params{Threshold: 1, Witnesses: []Witness{{ID: witnessID}}}
	signer := webvhcrypto.NewEd25519Signer(priv, witnessID)

	proof := signWitnessProof(t, signer, witnessID, "1-abc")
	set := ProofSet{{VersionID: "1-abc", Proof: []witnessProofRecord{proof}}}

	n, err := Count(params, "did:webvh:1.0", "1-abc", set, webvhcrypto.Ed25519Verifier{})
	assert.NoError(err)
	assert.Equal(1, n)
}

func TestCount_DuplicateProofsCountOnce(t *testing.T) {
	assert := assert.New(t)

	pub, priv, err := webvhcrypto.GenerateEd25519Key()
	assert.NoError(err)
	witnessID := "did:key:" + webvhcrypto.EncodePublicKeyMultibase(pub)

	params := &Params{Threshold: 1, Witnesses: []Witness{{ID: witnessID}}}
	signer := webvhcrypto.NewEd25519Signer(priv, witnessID)
	proof := signWitnessProof(t, signer, witnessID, "1-abc")
	set := ProofSet{{VersionID: "1-abc", Proof: []witnessProofRecord{proof, proof}}}

	n, err := Count(params, "did:webvh:1.0", "1-abc", set, webvhcrypto.Ed25519Verifier{})
	assert.NoError(err)
	assert.Equal(1, n)
}

func TestCount_V0_5SumsWeight(t *testing.T) {
	assert := assert.New(t)

	pub, priv, err := webvhcrypto.GenerateEd25519Key()
	assert.NoError(err)
	witnessID := "did:key:" + webvhcrypto.EncodePublicKeyMultibase(pub)

	params := &Params{Threshold: 1, Witnesses: []Witness{{ID: witnessID, Weight: 3}}}
	signer := webvhcrypto.NewEd25519Signer(priv, witnessID)
	proof := signWitnessProof(t, signer, witnessID, "1-abc")
	set := ProofSet{{VersionID: "1-abc", Proof: []witnessProofRecord{proof}}}

	n, err := Count(params, "did:webvh:0.5", "1-abc", set, webvhcrypto.Ed25519Verifier{})
	assert.NoError(err)
	assert.Equal(3, n)
}

func TestCount_RejectsUnsupportedCryptosuite(t *testing.T) {
	assert := assert.New(t)

	pub, _, err := webvhcrypto.GenerateEd25519Key()
	assert.NoError(err)
	witnessID := "did:key:" + webvhcrypto.EncodePublicKeyMultibase(pub)

	params := &Params{Threshold: 1, Witnesses: []Witness{{ID: witnessID}}}
	set := ProofSet{{VersionID: "1-abc", Proof: []witnessProofRecord{{
		Cryptosuite:        "ecdsa-2019",
		VerificationMethod: witnessID,
	}}}}

	_, err = Count(params, "did:webvh:1.0", "1-abc", set, webvhcrypto.Ed25519Verifier{})
	assert.Error(err)
}

func TestCount_IgnoresProofsForOtherVersions(t *testing.T) {
	assert := assert.New(t)

	pub, priv, err := webvhcrypto.GenerateEd25519Key()
	assert.NoError(err)
	witnessID := "did:key:" + webvhcrypto.EncodePublicKeyMultibase(pub)

	params := &Params{Threshold: 1, Witnesses: []Witness{{ID: witnessID}}}
	signer := webvhcrypto.NewEd25519Signer(priv, witnessID)
	proof := signWitnessProof(t, signer, witnessID, "2-def")
	set := ProofSet{{VersionID: "2-def", Proof: []witnessProofRecord{proof}}}

	n, err := Count(params, "did:webvh:1.0", "1-abc", set, webvhcrypto.Ed25519Verifier{})
	assert.NoError(err)
	assert.Equal(0, n)
}
