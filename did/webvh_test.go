package did

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/geunkim/didwebvh/webvhcrypto"
	"github.com/geunkim/didwebvh/webvhdoc"
	"github.com/geunkim/didwebvh/webvhlog"
)

// fixtureServer serves did.jsonl at whatever path the request asks for,
// with its body swapped in after the log is built (the log's host segment
// must cite the server's own port, so the log can only be built once the
// server is already listening).
type fixtureServer struct {
	mu  sync.Mutex
	log []byte
}

func (f *fixtureServer) setLog(b []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log = b
}

func (f *fixtureServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.URL.Path == "/.well-known/did-witness.json" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if f.log == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Write(f.log)
}

func TestWebVHResolver_GetDocument_ResolvesSignedLog(t *testing.T) {
	assert := assert.New(t)

	fixture := &fixtureServer{}
	srv := httptest.NewServer(fixture)
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	assert.NoError(err)
	hostAndPath := "localhost%3A" + u.Port()

	pub, priv, err := webvhcrypto.GenerateEd25519Key()
	assert.NoError(err)
	mb := webvhcrypto.EncodePublicKeyMultibase(pub)
	signer := webvhcrypto.NewEd25519Signer(priv, "did:key:"+mb)

	didStr, _, _, log, err := webvhlog.Create(t.Context(), webvhlog.CreateOptions{
		HostAndPath: hostAndPath,
		VMs:         []webvhdoc.VerificationMethod{{Type: "Multikey", PublicKeyMultibase: mb}},
		UpdateKeys:  []string{mb},
		Signer:      signer,
		Verifier:    webvhcrypto.Ed25519Verifier{},
		Now:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.NoError(err)

	var jsonl []byte
	for _, e := range log {
		line, err := json.Marshal(e)
		assert.NoError(err)
		jsonl = append(jsonl, line...)
		jsonl = append(jsonl, '\n')
	}
	fixture.setLog(jsonl)

	resolver := NewWebVHResolver()
	doc, err := resolver.GetDocument(t.Context(), didStr)
	assert.NoError(err)
	assert.Equal(didStr, doc.ID.String())
	assert.Len(doc.VerificationMethod, 1)
}

func TestWebVHResolver_GetDocument_RejectsMalformedDID(t *testing.T) {
	resolver := NewWebVHResolver()
	_, err := resolver.GetDocument(t.Context(), "did:webvh:abc")
	assert.Error(t, err)
}
