package webvhlog

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/geunkim/didwebvh/webvh"
	"github.com/geunkim/didwebvh/webvhcrypto"
	"github.com/geunkim/didwebvh/webvhdoc"
	"github.com/geunkim/didwebvh/webvhwitness"
)

func newSigner(t *testing.T) (*webvhcrypto.Ed25519Signer, string) {
	t.Helper()
	pub, priv, err := webvhcrypto.GenerateEd25519Key()
	assert.NoError(t, err)
	mb := webvhcrypto.EncodePublicKeyMultibase(pub)
	signer := webvhcrypto.NewEd25519Signer(priv, "did:key:"+mb)
	return signer, mb
}

// S1 — create and resolve v1.
func TestCreateAndResolve_S1(t *testing.T) {
	assert := assert.New(t)

	signer, mb := newSigner(t)
	vms := []webvhdoc.VerificationMethod{{Type: "Multikey", PublicKeyMultibase: mb}}

	did, doc, meta, log, err := Create(context.Background(), CreateOptions{
		HostAndPath: "example.com",
		VMs:         vms,
		UpdateKeys:  []string{mb},
		Signer:      signer,
		Verifier:    webvhcrypto.Ed25519Verifier{},
		Now:         time.Date(2024, 1, 1, 8, 32, 55, 0, time.UTC),
	})
	assert.NoError(err)
	assert.Contains(did, "did:webvh:")
	assert.Len(log, 1)
	assert.Equal("1", meta.VersionID[:1])
	assert.False(meta.Deactivated)
	assert.Equal(did, doc.ID)

	result, err := Resolve(context.Background(), log, Options{Verifier: webvhcrypto.Ed25519Verifier{}})
	assert.NoError(err)
	assert.Equal(did, result.DID)
	assert.Equal(log[0].VersionID, result.Meta.VersionID)
}

// S6 — deactivation is terminal.
func TestDeactivate_S6(t *testing.T) {
	assert := assert.New(t)

	signer, mb := newSigner(t)
	vms := []webvhdoc.VerificationMethod{{Type: "Multikey", PublicKeyMultibase: mb}}

	_, _, _, log, err := Create(context.Background(), CreateOptions{
		HostAndPath: "example.com",
		VMs:         vms,
		UpdateKeys:  []string{mb},
		Signer:      signer,
		Verifier:    webvhcrypto.Ed25519Verifier{},
		Now:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.NoError(err)

	_, _, meta, log, err := Deactivate(context.Background(), log, DeactivateOptions{
		Signer:   signer,
		Verifier: webvhcrypto.Ed25519Verifier{},
		Now:      time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.NoError(err)
	assert.True(meta.Deactivated)

	_, _, _, _, err = Update(context.Background(), log, UpdateOptions{
		Signer:   signer,
		Verifier: webvhcrypto.Ed25519Verifier{},
		Now:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.Error(err)
	var polErr *webvh.PolicyError
	assert.ErrorAs(err, &polErr)
}

// S5 — witness quorum.
func TestWitnessQuorum_S5(t *testing.T) {
	assert := assert.New(t)

	signer, mb := newSigner(t)
	vms := []webvhdoc.VerificationMethod{{Type: "Multikey", PublicKeyMultibase: mb}}

	w1pub, w1priv, err := webvhcrypto.GenerateEd25519Key()
	assert.NoError(err)
	w2pub, w2priv, err := webvhcrypto.GenerateEd25519Key()
	assert.NoError(err)
	w3pub, _, err := webvhcrypto.GenerateEd25519Key()
	assert.NoError(err)

	w1ID := "did:key:" + webvhcrypto.EncodePublicKeyMultibase(w1pub)
	w2ID := "did:key:" + webvhcrypto.EncodePublicKeyMultibase(w2pub)
	w3ID := "did:key:" + webvhcrypto.EncodePublicKeyMultibase(w3pub)

	witnessParams := &webvhwitness.Params{
		Threshold: 2,
		Witnesses: []webvhwitness.Witness{{ID: w1ID}, {ID: w2ID}, {ID: w3ID}},
	}

	_, _, _, log, err := Create(context.Background(), CreateOptions{
		HostAndPath: "example.com",
		VMs:         vms,
		UpdateKeys:  []string{mb},
		Witness:     witnessParams,
		Signer:      signer,
		Verifier:    webvhcrypto.Ed25519Verifier{},
		Now:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.NoError(err)

	targetVersionID := log[0].VersionID

	w1Signer := webvhcrypto.NewEd25519Signer(w1priv, w1ID)
	w2Signer := webvhcrypto.NewEd25519Signer(w2priv, w2ID)

	proofSet1 := signWitnessSet(t, targetVersionID, w1Signer)
	_, err = Resolve(context.Background(), log, Options{
		Verifier:     webvhcrypto.Ed25519Verifier{},
		WitnessProof: proofSet1,
	})
	assert.Error(err)
	var witErr *webvh.WitnessError
	assert.ErrorAs(err, &witErr)

	proofSet2 := signWitnessSet(t, targetVersionID, w1Signer, w2Signer)
	_, err = Resolve(context.Background(), log, Options{
		Verifier:     webvhcrypto.Ed25519Verifier{},
		WitnessProof: proofSet2,
	})
	assert.NoError(err)
}

func signWitnessSet(t *testing.T, versionID string, signers ...*webvhcrypto.Ed25519Signer) webvhwitness.ProofSet {
	t.Helper()
	type proofRecord struct {
		Type               string `json:"type"`
		Cryptosuite        string `json:"cryptosuite"`
		VerificationMethod string `json:"verificationMethod"`
		Created            string `json:"created"`
		ProofPurpose       string `json:"proofPurpose"`
		ProofValue         string `json:"proofValue"`
	}
	type versionProofs struct {
		VersionID string        `json:"versionId"`
		Proof     []proofRecord `json:"proof"`
	}
	type target struct {
		VersionID string `json:"versionId"`
	}

	var proofs []proofRecord
	for _, s := range signers {
		tmpl := webvhcrypto.ProofTemplate{
			Type:               "DataIntegrityProof",
			Cryptosuite:        "eddsa-jcs-2022",
			VerificationMethod: s.VerificationMethodID(),
			Created:            time.Now().UTC().Format(time.RFC3339),
			ProofPurpose:       "authentication",
		}
		pv, err := webvhcrypto.Sign(s, target{VersionID: versionID}, tmpl)
		assert.NoError(t, err)
		proofs = append(proofs, proofRecord{
			Type:               tmpl.Type,
			Cryptosuite:        tmpl.Cryptosuite,
			VerificationMethod: tmpl.VerificationMethod,
			Created:            tmpl.Created,
			ProofPurpose:       tmpl.ProofPurpose,
			ProofValue:         pv,
		})
	}

	vp := versionProofs{VersionID: versionID, Proof: proofs}
	raw, err := json.Marshal([]versionProofs{vp})
	assert.NoError(t, err)

	var set webvhwitness.ProofSet
	assert.NoError(t, json.Unmarshal(raw, &set))
	return set
}
