// Package webvhdoc assembles DID documents from verification methods,
// per spec.md §4.3. It mirrors the shape of a plain DID document
// (atproto/identity's did.Document before it was deleted from this
// workspace modeled the same @context/id/verificationMethod/service
// fields) but stays generic over the five verification relationships
// rather than any one DID method's fixed set.
package webvhdoc

// Relationship names the five verification relationships a VM may carry.
type Relationship string

const (
	Authentication       Relationship = "authentication"
	AssertionMethod      Relationship = "assertionMethod"
	KeyAgreement         Relationship = "keyAgreement"
	CapabilityInvocation Relationship = "capabilityInvocation"
	CapabilityDelegation Relationship = "capabilityDelegation"
)

// VerificationMethod is a public-key descriptor, per spec.md §3.1.
type VerificationMethod struct {
	ID                 string       `json:"id,omitempty"`
	Type               string       `json:"type"`
	Controller         string       `json:"controller,omitempty"`
	PublicKeyMultibase string       `json:"publicKeyMultibase"`
	SecretKeyMultibase string       `json:"-"`
	Purpose            Relationship `json:"-"`
}

// Service is a DID document service endpoint entry.
type Service struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	ServiceEndpoint string `json:"serviceEndpoint"`
}

// Document is a DID document, per spec.md §3.1 "DID document".
type Document struct {
	Context              []string              `json:"@context"`
	ID                    string                `json:"id"`
	Controller            []string              `json:"controller,omitempty"`
	AlsoKnownAs           []string              `json:"alsoKnownAs,omitempty"`
	VerificationMethod    []VerificationMethod  `json:"verificationMethod,omitempty"`
	Authentication        []string              `json:"authentication,omitempty"`
	AssertionMethod       []string              `json:"assertionMethod,omitempty"`
	KeyAgreement          []string              `json:"keyAgreement,omitempty"`
	CapabilityInvocation  []string              `json:"capabilityInvocation,omitempty"`
	CapabilityDelegation  []string              `json:"capabilityDelegation,omitempty"`
	Service               []Service             `json:"service,omitempty"`
}

// DefaultContext is the @context value assembled documents carry absent
// caller override.
var DefaultContext = []string{
	"https://www.w3.org/ns/did/v1",
	"https://w3id.org/security/multikey/v1",
}

// AssembleOptions carries the explicit overrides a caller may pass to
// Assemble, per spec.md §4.3 ("Explicit ... passed by the caller override
// the derived lists").
type AssembleOptions struct {
	Authentication  []string
	AssertionMethod []string
	KeyAgreement    []string
	AlsoKnownAs     []string
}

// Assemble builds a Document from a controller DID and a VM list, per
// spec.md §4.3. VMs without an id get one assigned from the last 8
// characters of their PublicKeyMultibase; VMs without a Purpose default
// to Authentication; explicit relationship lists in opts override the
// lists derived from VM purposes.
func Assemble(controllerDID string, vms []VerificationMethod, opts AssembleOptions) Document {
	doc := Document{
		Context:     append([]string{}, DefaultContext...),
		ID:          controllerDID,
		Controller:  []string{controllerDID},
		AlsoKnownAs: opts.AlsoKnownAs,
	}

	relLists := map[Relationship][]string{
		Authentication:       nil,
		AssertionMethod:      nil,
		KeyAgreement:         nil,
		CapabilityInvocation: nil,
		CapabilityDelegation: nil,
	}

	assembled := make([]VerificationMethod, len(vms))
	for i, vm := range vms {
		if vm.ID == "" {
			vm.ID = controllerDID + "#" + lastN(vm.PublicKeyMultibase, 8)
		}
		if vm.Controller == "" {
			vm.Controller = controllerDID
		}
		purpose := vm.Purpose
		if purpose == "" {
			purpose = Authentication
		}
		relLists[purpose] = append(relLists[purpose], vm.ID)
		assembled[i] = vm
	}

	doc.VerificationMethod = assembled
	doc.Authentication = relLists[Authentication]
	doc.AssertionMethod = relLists[AssertionMethod]
	doc.KeyAgreement = relLists[KeyAgreement]
	doc.CapabilityInvocation = relLists[CapabilityInvocation]
	doc.CapabilityDelegation = relLists[CapabilityDelegation]

	if opts.Authentication != nil {
		doc.Authentication = opts.Authentication
	}
	if opts.AssertionMethod != nil {
		doc.AssertionMethod = opts.AssertionMethod
	}
	if opts.KeyAgreement != nil {
		doc.KeyAgreement = opts.KeyAgreement
	}

	return doc
}

// WithDefaultServices adds the #files and #whois services iff Document
// has no service array yet, per spec.md §4.3 ("During resolution... add
// default services iff absent").
func WithDefaultServices(doc Document, baseURL string) Document {
	if len(doc.Service) > 0 {
		return doc
	}
	doc.Service = []Service{
		{ID: doc.ID + "#files", Type: "relativeRef", ServiceEndpoint: baseURL},
		{ID: doc.ID + "#whois", Type: "relativeRef", ServiceEndpoint: baseURL + "/whois.vp"},
	}
	return doc
}

func lastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
