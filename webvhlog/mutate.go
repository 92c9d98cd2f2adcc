package webvhlog

import (
	"context"
	"time"

	"github.com/geunkim/didwebvh/webvh"
	"github.com/geunkim/didwebvh/webvhcrypto"
	"github.com/geunkim/didwebvh/webvhdoc"
	"github.com/geunkim/didwebvh/webvhid"
	"github.com/geunkim/didwebvh/webvhwitness"
)

// CreateOptions carries the inputs to Create, per spec.md §4.7.
type CreateOptions struct {
	// HostAndPath is the did:webvh host-and-path segment string, e.g.
	// "example.com" or "example.com:path:to:did".
	HostAndPath string
	VMs         []webvhdoc.VerificationMethod
	UpdateKeys  []string
	NextKeyHashes []string
	Portable    bool
	Witness     *webvhwitness.Params
	Watchers    []string
	Signer      webvhcrypto.Signer
	Verifier    webvhcrypto.Verifier
	Now         time.Time
}

// Create builds the first entry of a new did:webvh log, per spec.md
// §4.7 "create".
func Create(ctx context.Context, opts CreateOptions) (did string, doc webvhdoc.Document, meta Metadata, log []Entry, err error) {
	if len(opts.UpdateKeys) == 0 {
		return "", webvhdoc.Document{}, Metadata{}, nil, webvh.NewConfigError("updateKeys is required", nil)
	}
	if opts.Witness != nil {
		if verr := opts.Witness.Validate(); verr != nil {
			return "", webvhdoc.Document{}, Metadata{}, nil, verr
		}
	}

	placeholderDID := "did:webvh:" + webvhid.PlaceholderSCID + ":" + opts.HostAndPath
	draftDoc := webvhdoc.Assemble(placeholderDID, opts.VMs, webvhdoc.AssembleOptions{})

	params := Parameters{
		Method:        "did:webvh:1.0",
		SCID:          webvhid.PlaceholderSCID,
		UpdateKeys:    opts.UpdateKeys,
		NextKeyHashes: opts.NextKeyHashes,
	}
	if opts.Portable {
		t := true
		params.Portable = &t
	}
	if opts.Witness != nil {
		if serr := params.SetWitness(opts.Witness); serr != nil {
			return "", webvhdoc.Document{}, Metadata{}, nil, serr
		}
	}
	if opts.Watchers != nil {
		if serr := params.SetWatchers(opts.Watchers); serr != nil {
			return "", webvhdoc.Document{}, Metadata{}, nil, serr
		}
	}

	draft := Entry{
		VersionID:   webvhid.PlaceholderVersionID,
		VersionTime: opts.Now.UTC().Truncate(time.Second),
		Parameters:  params,
		State:       draftDoc,
	}

	scidHash, herr := placeholderHash(draft, webvhid.PlaceholderSCID)
	if herr != nil {
		return "", webvhdoc.Document{}, Metadata{}, nil, herr
	}
	scid := webvhid.DeriveSCID(scidHash)

	finalDID := "did:webvh:" + scid + ":" + opts.HostAndPath
	finalDoc := webvhdoc.Assemble(finalDID, opts.VMs, webvhdoc.AssembleOptions{})
	params.SCID = scid
	entry := Entry{
		VersionID:   webvhid.PlaceholderVersionID,
		VersionTime: draft.VersionTime,
		Parameters:  params,
		State:       finalDoc,
	}

	finalHash, herr := placeholderHash(entry, scid)
	if herr != nil {
		return "", webvhdoc.Document{}, Metadata{}, nil, herr
	}
	entry.VersionID = versionIDFor(1, finalHash)

	proofValue, serr := sign(opts.Signer, entry)
	if serr != nil {
		return "", webvhdoc.Document{}, Metadata{}, nil, serr
	}
	entry.Proof = []Proof{proofValue}

	log = []Entry{entry}
	result, rerr := Resolve(ctx, log, Options{Verifier: opts.Verifier, Policy: webvh.Policy{IgnoreWitnessIsAuthorized: true}})
	if rerr != nil {
		return "", webvhdoc.Document{}, Metadata{}, nil, rerr
	}

	return result.DID, result.Document, result.Meta, log, nil
}

// UpdateOptions carries the inputs to Update, per spec.md §4.7 "update".
type UpdateOptions struct {
	VMs           []webvhdoc.VerificationMethod
	AssembleOpts  webvhdoc.AssembleOptions
	UpdateKeys    []string
	NextKeyHashes []string
	WitnessSet    bool
	Witness       *webvhwitness.Params
	WatchersSet   bool
	Watchers      []string
	Signer        webvhcrypto.Signer
	Verifier      webvhcrypto.Verifier
	Now           time.Time
}

// Update appends a new entry with the requested parameter deltas, per
// spec.md §4.7 "update".
func Update(ctx context.Context, log []Entry, opts UpdateOptions) (did string, doc webvhdoc.Document, meta Metadata, newLog []Entry, err error) {
	prior, err := Resolve(ctx, log, Options{Verifier: opts.Verifier, Policy: webvh.Policy{IgnoreWitnessIsAuthorized: true}})
	if err != nil {
		return "", webvhdoc.Document{}, Metadata{}, nil, err
	}
	if prior.Meta.Deactivated {
		return "", webvhdoc.Document{}, Metadata{}, nil, webvh.NewPolicyError("cannot update a deactivated document", nil)
	}

	n := len(log) + 1
	newDoc := webvhdoc.Assemble(prior.DID, opts.VMs, opts.AssembleOpts)

	params := Parameters{}
	if opts.UpdateKeys != nil {
		params.UpdateKeys = opts.UpdateKeys
	}
	if opts.NextKeyHashes != nil {
		params.NextKeyHashes = opts.NextKeyHashes
	}
	if opts.WitnessSet {
		if opts.Witness != nil {
			if verr := opts.Witness.Validate(); verr != nil {
				return "", webvhdoc.Document{}, Metadata{}, nil, verr
			}
		}
		if serr := params.SetWitness(opts.Witness); serr != nil {
			return "", webvhdoc.Document{}, Metadata{}, nil, serr
		}
	}
	if opts.WatchersSet {
		if serr := params.SetWatchers(opts.Watchers); serr != nil {
			return "", webvhdoc.Document{}, Metadata{}, nil, serr
		}
	}

	entry := Entry{
		VersionTime: opts.Now.UTC().Truncate(time.Second),
		Parameters:  params,
		State:       newDoc,
	}

	hash, herr := placeholderHash(entry, "")
	if herr != nil {
		return "", webvhdoc.Document{}, Metadata{}, nil, herr
	}
	entry.VersionID = versionIDFor(n, hash)

	proof, serr := sign(opts.Signer, entry)
	if serr != nil {
		return "", webvhdoc.Document{}, Metadata{}, nil, serr
	}
	entry.Proof = []Proof{proof}

	newLog = append(append([]Entry{}, log...), entry)
	result, rerr := Resolve(ctx, newLog, Options{Verifier: opts.Verifier, Policy: webvh.Policy{IgnoreWitnessIsAuthorized: true}})
	if rerr != nil {
		return "", webvhdoc.Document{}, Metadata{}, nil, rerr
	}

	return result.DID, result.Document, result.Meta, newLog, nil
}

// DeactivateOptions carries the inputs to Deactivate, per spec.md §4.7
// "deactivate".
type DeactivateOptions struct {
	UpdateKeys []string
	Signer     webvhcrypto.Signer
	Verifier   webvhcrypto.Verifier
	Now        time.Time
}

// Deactivate appends a terminal entry with deactivated=true, per spec.md
// §4.7 "deactivate": like update, but no further parameter changes are
// allowed except the final updateKeys rotation that signs this entry.
func Deactivate(ctx context.Context, log []Entry, opts DeactivateOptions) (did string, doc webvhdoc.Document, meta Metadata, newLog []Entry, err error) {
	prior, err := Resolve(ctx, log, Options{Verifier: opts.Verifier, Policy: webvh.Policy{IgnoreWitnessIsAuthorized: true}})
	if err != nil {
		return "", webvhdoc.Document{}, Metadata{}, nil, err
	}
	if prior.Meta.Deactivated {
		return "", webvhdoc.Document{}, Metadata{}, nil, webvh.NewPolicyError("document is already deactivated", nil)
	}

	n := len(log) + 1
	deactivated := true
	params := Parameters{Deactivated: &deactivated}
	if opts.UpdateKeys != nil {
		params.UpdateKeys = opts.UpdateKeys
	}

	entry := Entry{
		VersionTime: opts.Now.UTC().Truncate(time.Second),
		Parameters:  params,
		State:       prior.Document,
	}

	hash, herr := placeholderHash(entry, "")
	if herr != nil {
		return "", webvhdoc.Document{}, Metadata{}, nil, herr
	}
	entry.VersionID = versionIDFor(n, hash)

	proof, serr := sign(opts.Signer, entry)
	if serr != nil {
		return "", webvhdoc.Document{}, Metadata{}, nil, serr
	}
	entry.Proof = []Proof{proof}

	newLog = append(append([]Entry{}, log...), entry)
	result, rerr := Resolve(ctx, newLog, Options{Verifier: opts.Verifier, Policy: webvh.Policy{IgnoreWitnessIsAuthorized: true}})
	if rerr != nil {
		return "", webvhdoc.Document{}, Metadata{}, nil, rerr
	}

	return result.DID, result.Document, result.Meta, newLog, nil
}

func sign(signer webvhcrypto.Signer, entry Entry) (Proof, error) {
	if signer == nil {
		return Proof{}, webvh.NewConfigError("Signer implementation is required", nil)
	}
	tmpl := webvhcrypto.ProofTemplate{
		Type:               "DataIntegrityProof",
		Cryptosuite:        "eddsa-jcs-2022",
		VerificationMethod: signer.VerificationMethodID(),
		Created:            entry.VersionTime.UTC().Format(time.RFC3339),
		ProofPurpose:       "authentication",
	}
	proofValue, err := webvhcrypto.Sign(signer, entry.body(), tmpl)
	if err != nil {
		return Proof{}, webvh.NewCryptoError("signing entry", err)
	}
	return Proof{
		Type:               tmpl.Type,
		Cryptosuite:        tmpl.Cryptosuite,
		VerificationMethod: tmpl.VerificationMethod,
		Created:            tmpl.Created,
		ProofPurpose:       tmpl.ProofPurpose,
		ProofValue:         proofValue,
	}, nil
}
