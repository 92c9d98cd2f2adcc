// Package webvhlog implements the did:webvh log validator/resolver core
// and the create/update/deactivate mutators, per spec.md §4.5 and §4.7.
package webvhlog

import (
	"encoding/json"
	"time"

	"github.com/geunkim/didwebvh/webvhdoc"
	"github.com/geunkim/didwebvh/webvhwitness"
)

// Proof is a Data Integrity proof, per spec.md §6.5.
type Proof struct {
	Type               string `json:"type"`
	Cryptosuite        string `json:"cryptosuite"`
	VerificationMethod string `json:"verificationMethod"`
	Created            string `json:"created"`
	ProofPurpose       string `json:"proofPurpose"`
	ProofValue         string `json:"proofValue,omitempty"`
}

// tristate represents a parameter that can be absent (no change), present
// with a value, or explicitly null (clear). Only Set distinguishes
// "absent" from the other two; Null distinguishes "clear" from "value".
type tristate struct {
	Set   bool
	Null  bool
	Value json.RawMessage
}

func (t *tristate) UnmarshalJSON(b []byte) error {
	t.Set = true
	if string(b) == "null" {
		t.Null = true
		return nil
	}
	t.Value = append(json.RawMessage{}, b...)
	return nil
}

func (t tristate) MarshalJSON() ([]byte, error) {
	if t.Null {
		return []byte("null"), nil
	}
	return t.Value, nil
}

// Parameters is the `parameters` transition object of a log entry, per
// spec.md §3.1 "Parameters". witness and watchers distinguish "absent"
// (no change) from "explicit null" (clear) via their *Set/tristate
// fields, since JSON's own null/omitted distinction is exactly what
// spec.md §4.7 relies on ("including witness=null to clear").
type Parameters struct {
	Method        string   `json:"method,omitempty"`
	SCID          string   `json:"scid,omitempty"`
	UpdateKeys    []string `json:"updateKeys,omitempty"`
	NextKeyHashes []string `json:"nextKeyHashes,omitempty"`
	Portable      *bool    `json:"portable,omitempty"`
	Deactivated   *bool    `json:"deactivated,omitempty"`

	Witness  *tristate `json:"witness,omitempty"`
	Watchers *tristate `json:"watchers,omitempty"`
}

// WitnessValue decodes the witness tristate into a *webvhwitness.Params.
// ok is false when the field was absent from this entry (no change);
// when present, a nil *Params with ok true means "explicit null" (clear).
func (p Parameters) WitnessValue() (params *webvhwitness.Params, ok bool, err error) {
	if p.Witness == nil || !p.Witness.Set {
		return nil, false, nil
	}
	if p.Witness.Null {
		return nil, true, nil
	}
	var w webvhwitness.Params
	if err := json.Unmarshal(p.Witness.Value, &w); err != nil {
		return nil, true, err
	}
	return &w, true, nil
}

// WatchersValue decodes the watchers tristate. Same absent/clear/value
// semantics as WitnessValue.
func (p Parameters) WatchersValue() (watchers []string, ok bool, err error) {
	if p.Watchers == nil || !p.Watchers.Set {
		return nil, false, nil
	}
	if p.Watchers.Null {
		return nil, true, nil
	}
	if err := json.Unmarshal(p.Watchers.Value, &watchers); err != nil {
		return nil, true, err
	}
	return watchers, true, nil
}

// SetWitness populates the Witness tristate from a concrete value (or
// clears it when params is nil), for mutators building a new entry.
func (p *Parameters) SetWitness(params *webvhwitness.Params) error {
	if params == nil {
		p.Witness = &tristate{Set: true, Null: true}
		return nil
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return err
	}
	p.Witness = &tristate{Set: true, Value: raw}
	return nil
}

// SetWatchers populates the Watchers tristate, clearing it when watchers
// is nil.
func (p *Parameters) SetWatchers(watchers []string) error {
	if watchers == nil {
		p.Watchers = &tristate{Set: true, Null: true}
		return nil
	}
	raw, err := json.Marshal(watchers)
	if err != nil {
		return err
	}
	p.Watchers = &tristate{Set: true, Value: raw}
	return nil
}

// Entry is one tuple (versionId, versionTime, parameters, state, proof),
// per spec.md §3.1 "Log entry".
type Entry struct {
	VersionID   string             `json:"versionId"`
	VersionTime time.Time          `json:"versionTime"`
	Parameters  Parameters         `json:"parameters"`
	State       webvhdoc.Document  `json:"state"`
	Proof       []Proof            `json:"proof"`
}

// entryBody is the hashed/signed projection of an Entry: everything but
// Proof. Used both for the integrity hash chain (via placeholder
// substitution) and as the "document" half of a proof's signing message.
type entryBody struct {
	VersionID   string            `json:"versionId"`
	VersionTime time.Time         `json:"versionTime"`
	Parameters  Parameters        `json:"parameters"`
	State       webvhdoc.Document `json:"state"`
}

func (e Entry) body() entryBody {
	return entryBody{
		VersionID:   e.VersionID,
		VersionTime: e.VersionTime,
		Parameters:  e.Parameters,
		State:       e.State,
	}
}

// Metadata is the resolution accumulator folded over the entry sequence,
// per spec.md §3.1 "Resolution metadata".
type Metadata struct {
	VersionID            string
	Method               string
	Created              time.Time
	Updated              time.Time
	SCID                 string
	UpdateKeys           []string
	NextKeyHashes        []string
	Prerotation          bool
	Portable             bool
	Deactivated          bool
	Witness              *webvhwitness.Params
	Watchers             []string
	PreviousLogEntryHash string
}

// Selector identifies which entry/version Resolve should return, per
// spec.md §4.5 "Inputs". Exactly one field may be non-zero.
type Selector struct {
	VersionNumber      int
	VersionID          string
	VersionTime        time.Time
	VerificationMethod string
}

func (s Selector) setCount() int {
	n := 0
	if s.VersionNumber != 0 {
		n++
	}
	if s.VersionID != "" {
		n++
	}
	if !s.VersionTime.IsZero() {
		n++
	}
	if s.VerificationMethod != "" {
		n++
	}
	return n
}
