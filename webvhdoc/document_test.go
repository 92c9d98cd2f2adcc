package webvhdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssemble_DefaultsToAuthentication(t *testing.T) {
	assert := assert.New(t)

	vms := []VerificationMethod{
		{Type: "Multikey", PublicKeyMultibase: "z6MkpAbCdEfGh12345678"},
	}
	doc := Assemble("did:webvh:abc:example.com", vms, AssembleOptions{})

	assert.Len(doc.VerificationMethod, 1)
	assert.Equal("did:webvh:abc:example.com#12345678", doc.VerificationMethod[0].ID)
	assert.Contains(doc.Authentication, doc.VerificationMethod[0].ID)
	assert.Empty(doc.AssertionMethod)
}

func TestAssemble_HonorsExplicitPurpose(t *testing.T) {
	assert := assert.New(t)

	vms := []VerificationMethod{
		{Type: "Multikey", PublicKeyMultibase: "z6MkAssertKey00000001", Purpose: AssertionMethod},
	}
	doc := Assemble("did:webvh:abc:example.com", vms, AssembleOptions{})

	assert.Contains(doc.AssertionMethod, doc.VerificationMethod[0].ID)
	assert.Empty(doc.Authentication)
}

func TestAssemble_ExplicitOverrideWins(t *testing.T) {
	assert := assert.New(t)

	vms := []VerificationMethod{
		{ID: "did:webvh:abc:example.com#key-1", Type: "Multikey", PublicKeyMultibase: "z6Mk11111111"},
	}
	doc := Assemble("did:webvh:abc:example.com", vms, AssembleOptions{
		Authentication: []string{"did:webvh:abc:example.com#key-override"},
	})

	assert.Equal([]string{"did:webvh:abc:example.com#key-override"}, doc.Authentication)
}

func TestWithDefaultServices_AddsWhenAbsent(t *testing.T) {
	assert := assert.New(t)

	doc := Document{ID: "did:webvh:abc:example.com"}
	doc = WithDefaultServices(doc, "https://example.com")

	assert.Len(doc.Service, 2)
	assert.Equal("did:webvh:abc:example.com#files", doc.Service[0].ID)
	assert.Equal("did:webvh:abc:example.com#whois", doc.Service[1].ID)
	assert.Equal("https://example.com/whois.vp", doc.Service[1].ServiceEndpoint)
}

func TestWithDefaultServices_PreservesExisting(t *testing.T) {
	assert := assert.New(t)

	doc := Document{
		ID:      "did:webvh:abc:example.com",
		Service: []Service{{ID: "did:webvh:abc:example.com#custom", Type: "CustomService", ServiceEndpoint: "https://example.com/custom"}},
	}
	doc = WithDefaultServices(doc, "https://example.com")

	assert.Len(doc.Service, 1)
	assert.Equal("did:webvh:abc:example.com#custom", doc.Service[0].ID)
}
