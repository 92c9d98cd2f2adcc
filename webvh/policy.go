package webvh

// Policy carries the testing-only assertion bypass switches spec.md §6.4
// describes as environment flags. The engine never reads the process
// environment itself; only a host adapter (cmd/webvhctl) may translate
// real env vars into a Policy, and only for isolated local testing.
//
// The zero value is the fully strict policy: every assertion enabled.
type Policy struct {
	IgnoreKeyIsAuthorized      bool
	IgnoreNewKeysAreValid      bool
	IgnoreDocumentStateIsValid bool
	IgnoreHashChainIsValid     bool
	IgnoreSCIDIsFromHash       bool
	IgnoreWitnessIsAuthorized  bool
}

// Strict is the default, fully-enforcing Policy.
func Strict() Policy { return Policy{} }
