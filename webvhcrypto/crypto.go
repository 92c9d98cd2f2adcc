// Package webvhcrypto defines the algorithm-agnostic Signer/Verifier
// capabilities the log validator delegates to (spec.md §4.4), plus the
// proof-construction helper that canonicalizes and hashes a document and
// proof template the same way for both signing and verification.
//
// The core never hard-codes a signature scheme. Ed25519 — the one suite
// required by eddsa-jcs-2022 — is provided as a concrete implementation
// of these interfaces, grounded on key/key.go's did:key derivation
// (varint multicodec prefix + multibase base58btc) and
// atproto/crypto/k256.go's PrivateKey/PublicKey split between secret
// material and its public counterpart.
package webvhcrypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/geunkim/didwebvh/internal/jcs"
	"github.com/geunkim/didwebvh/internal/multibase"
)

// ErrInvalidSignature is returned by a Verifier when a signature fails to
// validate against the given message and public key.
var ErrInvalidSignature = fmt.Errorf("webvhcrypto: invalid signature")

// Verifier is the stateless capability the engine delegates all signature
// checks to, per spec.md §4.4. It never sees key material beyond the
// bytes handed to it for a single call.
type Verifier interface {
	Verify(signature, message, publicKey []byte) (bool, error)
}

// Signer produces proof signatures and knows which verification method id
// it signs as. The core never sees the secret key; it only composes the
// message and hands it to Sign.
type Signer interface {
	// Sign returns the raw signature bytes over message.
	Sign(message []byte) ([]byte, error)
	// VerificationMethodID returns the DID URL the resulting proof should
	// cite as its verificationMethod.
	VerificationMethodID() string
}

// VerifierFunc adapts a plain function to the Verifier interface.
type VerifierFunc func(signature, message, publicKey []byte) (bool, error)

func (f VerifierFunc) Verify(signature, message, publicKey []byte) (bool, error) {
	return f(signature, message, publicKey)
}

// ProofTemplate is the unsigned shell of a Data Integrity proof (spec.md
// §6.5), before proofValue is computed.
type ProofTemplate struct {
	Type               string `json:"type"`
	Cryptosuite        string `json:"cryptosuite"`
	VerificationMethod string `json:"verificationMethod"`
	Created            string `json:"created"`
	ProofPurpose       string `json:"proofPurpose"`
}

// BuildMessage canonicalizes doc and tmpl (without any proofValue) and
// returns proofHash || dataHash, per spec.md §4.4: the exact byte sequence
// both Sign and Verify operate on.
func BuildMessage(doc any, tmpl ProofTemplate) ([]byte, error) {
	docHash, err := hashOf(doc)
	if err != nil {
		return nil, fmt.Errorf("webvhcrypto: hashing document: %w", err)
	}
	proofHash, err := hashOf(tmpl)
	if err != nil {
		return nil, fmt.Errorf("webvhcrypto: hashing proof template: %w", err)
	}
	return append(append([]byte{}, proofHash...), docHash...), nil
}

func hashOf(v any) ([]byte, error) {
	canon, err := jcs.Marshal(v)
	if err != nil {
		return nil, err
	}
	return sha256Sum(canon), nil
}

// Sign builds the canonical message for doc+tmpl, signs it with signer,
// and returns the multibase-encoded proofValue ready to embed in the
// finished proof.
func Sign(signer Signer, doc any, tmpl ProofTemplate) (string, error) {
	msg, err := BuildMessage(doc, tmpl)
	if err != nil {
		return "", err
	}
	sig, err := signer.Sign(msg)
	if err != nil {
		return "", fmt.Errorf("webvhcrypto: signing failed: %w", err)
	}
	return multibase.MustEncode58BTC(sig), nil
}

// VerifyProofValue decodes a multibase proofValue and checks it against
// the canonical message for doc+tmpl, using the given public key bytes.
func VerifyProofValue(verifier Verifier, doc any, tmpl ProofTemplate, proofValue string, publicKey []byte) (bool, error) {
	_, sig, err := multibase.Decode(proofValue)
	if err != nil {
		return false, fmt.Errorf("webvhcrypto: decoding proofValue: %w", err)
	}
	msg, err := BuildMessage(doc, tmpl)
	if err != nil {
		return false, err
	}
	return verifier.Verify(sig, msg, publicKey)
}

// --- Ed25519 concrete Signer/Verifier -------------------------------------

// Ed25519 multicodec prefixes, per spec.md §4.1 "Key encoding convention".
var (
	ed25519PubPrefix  = []byte{0xED, 0x01}
	ed25519PrivPrefix = []byte{0x80, 0x26}
)

// Ed25519Signer signs with an in-memory Ed25519 private key. Secret key
// material is naively held in memory for the duration of the process,
// exactly as atproto/crypto's PrivateKeyK256/PrivateKeyP256 document they
// do.
type Ed25519Signer struct {
	priv  ed25519.PrivateKey
	vmID  string
	suite string
}

// NewEd25519Signer wraps priv, to be cited in proofs as vmID (a DID URL,
// typically "<did>#<key-fragment>").
func NewEd25519Signer(priv ed25519.PrivateKey, vmID string) *Ed25519Signer {
	return &Ed25519Signer{priv: priv, vmID: vmID, suite: "eddsa-jcs-2022"}
}

func (s *Ed25519Signer) Sign(message []byte) ([]byte, error) {
	return ed25519.Sign(s.priv, message), nil
}

func (s *Ed25519Signer) VerificationMethodID() string { return s.vmID }

// PublicKeyMultibase returns the multibase base58btc encoding of the
// signer's public key, as would be stored in a verificationMethod entry.
func (s *Ed25519Signer) PublicKeyMultibase() string {
	return EncodePublicKeyMultibase(s.priv.Public().(ed25519.PublicKey))
}

// GenerateEd25519Key creates a fresh Ed25519 keypair.
func GenerateEd25519Key() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("webvhcrypto: ed25519 key generation failed: %w", err)
	}
	return pub, priv, nil
}

// EncodePublicKeyMultibase returns "z" + base58btc(0xED 0x01 || pub), the
// publicKeyMultibase convention of spec.md §4.1.
func EncodePublicKeyMultibase(pub ed25519.PublicKey) string {
	buf := append(append([]byte{}, ed25519PubPrefix...), pub...)
	return multibase.MustEncode58BTC(buf)
}

// EncodeSecretKeyMultibase returns "z" + base58btc(0x80 0x26 || priv), the
// secretKeyMultibase convention of spec.md §4.1.
func EncodeSecretKeyMultibase(priv ed25519.PrivateKey) string {
	buf := append(append([]byte{}, ed25519PrivPrefix...), priv...)
	return multibase.MustEncode58BTC(buf)
}

// DecodePublicKeyMultibase parses a publicKeyMultibase string into a raw
// Ed25519 public key, validating the 0xED 0x01 multicodec prefix.
func DecodePublicKeyMultibase(encoded string) (ed25519.PublicKey, error) {
	_, raw, err := multibase.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("webvhcrypto: decoding publicKeyMultibase: %w", err)
	}
	if len(raw) != len(ed25519PubPrefix)+ed25519.PublicKeySize || raw[0] != ed25519PubPrefix[0] || raw[1] != ed25519PubPrefix[1] {
		return nil, fmt.Errorf("webvhcrypto: publicKeyMultibase is not a 0xED01-prefixed Ed25519 key")
	}
	return ed25519.PublicKey(raw[len(ed25519PubPrefix):]), nil
}

// DecodeSecretKeyMultibase parses a secretKeyMultibase string into a raw
// Ed25519 private key, validating the 0x80 0x26 multicodec prefix.
func DecodeSecretKeyMultibase(encoded string) (ed25519.PrivateKey, error) {
	_, raw, err := multibase.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("webvhcrypto: decoding secretKeyMultibase: %w", err)
	}
	if len(raw) != len(ed25519PrivPrefix)+ed25519.PrivateKeySize || raw[0] != ed25519PrivPrefix[0] || raw[1] != ed25519PrivPrefix[1] {
		return nil, fmt.Errorf("webvhcrypto: secretKeyMultibase is not a 0x8026-prefixed Ed25519 key")
	}
	return ed25519.PrivateKey(raw[len(ed25519PrivPrefix):]), nil
}

// Ed25519Verifier checks eddsa-jcs-2022 signatures.
type Ed25519Verifier struct{}

func (Ed25519Verifier) Verify(signature, message, publicKey []byte) (bool, error) {
	if len(publicKey) != ed25519.PublicKeySize {
		return false, fmt.Errorf("webvhcrypto: public key has wrong length for ed25519: %d", len(publicKey))
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), message, signature), nil
}

// Registry maps a cryptosuite name to its Verifier, per spec.md §9 ("other
// cryptosuites can be added by registering a (suite-name, key-prefix,
// verifier) triple"). No global mutable singleton — callers build their
// own Registry and pass the Verifier they look up from it into
// webvhlog.Resolve.
type Registry struct {
	verifiers map[string]Verifier
}

// NewRegistry builds a Registry pre-populated with eddsa-jcs-2022, the
// only suite did:webvh 1.0 requires.
func NewRegistry() *Registry {
	r := &Registry{verifiers: map[string]Verifier{}}
	r.Register("eddsa-jcs-2022", Ed25519Verifier{})
	return r
}

// Register adds or replaces the Verifier for a cryptosuite name.
func (r *Registry) Register(cryptosuite string, v Verifier) {
	r.verifiers[cryptosuite] = v
}

// Lookup returns the Verifier registered for cryptosuite, if any.
func (r *Registry) Lookup(cryptosuite string) (Verifier, bool) {
	v, ok := r.verifiers[cryptosuite]
	return v, ok
}
