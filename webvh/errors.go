// Package webvh holds the error taxonomy and runtime policy shared by
// webvhlog, webvhwitness and webvhhost, so that none of those packages
// need to import one another just to report a typed failure.
package webvh

import "fmt"

// ErrorKind classifies a failure the way spec.md §7 groups them, letting a
// host map an error to a DID-resolution problem detail without type
// switching on every concrete error type.
type ErrorKind int

const (
	KindFormat ErrorKind = iota
	KindIntegrity
	KindAuthorization
	KindPolicy
	KindCrypto
	KindWitness
	KindConfig
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindFormat:
		return "format"
	case KindIntegrity:
		return "integrity"
	case KindAuthorization:
		return "authorization"
	case KindPolicy:
		return "policy"
	case KindCrypto:
		return "crypto"
	case KindWitness:
		return "witness"
	case KindConfig:
		return "config"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// baseError is embedded by every exported error type below; it is not
// itself exported so callers cannot construct an untyped error that
// claims a Kind.
type baseError struct {
	kind ErrorKind
	Msg  string
	Err  error
}

func (e *baseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.Msg)
}

func (e *baseError) Unwrap() error { return e.Err }

func (e *baseError) Kind() ErrorKind { return e.kind }

// FormatError reports a malformed DID string, log entry, or document —
// anything that fails structural parsing before any cryptographic or
// chain check runs.
type FormatError struct{ baseError }

func NewFormatError(msg string, err error) *FormatError {
	return &FormatError{baseError{kind: KindFormat, Msg: msg, Err: err}}
}

// IntegrityError reports a broken hash chain: versionId mismatch, entry
// hash mismatch, or SCID mismatch.
type IntegrityError struct{ baseError }

func NewIntegrityError(msg string, err error) *IntegrityError {
	return &IntegrityError{baseError{kind: KindIntegrity, Msg: msg, Err: err}}
}

// AuthorizationError reports a proof that does not satisfy the active
// key set, or a key rotation that skips its pre-rotation commitment.
type AuthorizationError struct{ baseError }

func NewAuthorizationError(msg string, err error) *AuthorizationError {
	return &AuthorizationError{baseError{kind: KindAuthorization, Msg: msg, Err: err}}
}

// PolicyError reports a portability or parameter-transition rule
// violation that a Policy bypass flag did not waive.
type PolicyError struct{ baseError }

func NewPolicyError(msg string, err error) *PolicyError {
	return &PolicyError{baseError{kind: KindPolicy, Msg: msg, Err: err}}
}

// CryptoError reports a signature verification failure or an
// unrecognized cryptosuite.
type CryptoError struct{ baseError }

func NewCryptoError(msg string, err error) *CryptoError {
	return &CryptoError{baseError{kind: KindCrypto, Msg: msg, Err: err}}
}

// WitnessError reports a malformed witness parameter or a witness-proof
// set that fails to reach its threshold.
type WitnessError struct{ baseError }

func NewWitnessError(msg string, err error) *WitnessError {
	return &WitnessError{baseError{kind: KindWitness, Msg: msg, Err: err}}
}

// ConfigError reports a caller-side misconfiguration: a missing Verifier
// implementation, an invalid Selector, or similar.
type ConfigError struct{ baseError }

func NewConfigError(msg string, err error) *ConfigError {
	return &ConfigError{baseError{kind: KindConfig, Msg: msg, Err: err}}
}

// NotFoundError reports that a requested DID, version, or log file does
// not exist.
type NotFoundError struct{ baseError }

func NewNotFoundError(msg string, err error) *NotFoundError {
	return &NotFoundError{baseError{kind: KindNotFound, Msg: msg, Err: err}}
}
