package webvhhost

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/geunkim/didwebvh/webvh"
	"github.com/geunkim/didwebvh/webvhid"
	"github.com/geunkim/didwebvh/webvhlog"
	"github.com/geunkim/didwebvh/webvhwitness"
)

// ErrNotFound is returned when a remote did.jsonl responds 404, mirroring
// did/web.go's plain-net/http fetch pattern and explicit status handling.
var ErrNotFound = webvh.NewNotFoundError("remote log not found", nil)

var defaultFetchTimeout = 5 * time.Second

// HTTPFetcher retrieves a remote did:webvh log and its witness proof set
// over plain HTTPS, grounded on did/web.go's WebResolver.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher returns a fetcher with a bounded default timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: defaultFetchTimeout}}
}

// FetchLog resolves did's log and witness URLs and retrieves did.jsonl.
func (f *HTTPFetcher) FetchLog(ctx context.Context, did webvhid.DID) ([]webvhlog.Entry, error) {
	logURL, _, err := webvhid.LogFileURL(did)
	if err != nil {
		return nil, err
	}
	body, err := f.get(ctx, logURL)
	if err != nil {
		return nil, err
	}

	var entries []webvhlog.Entry
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var e webvhlog.Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, webvh.NewFormatError("parsing fetched did.jsonl line", err)
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}
	return entries, nil
}

// FetchWitnessProofs retrieves did-witness.json. A 404 is not an error:
// it returns a nil ProofSet, since witnessing is optional.
func (f *HTTPFetcher) FetchWitnessProofs(ctx context.Context, did webvhid.DID) (webvhwitness.ProofSet, error) {
	_, witnessURL, err := webvhid.LogFileURL(did)
	if err != nil {
		return nil, err
	}
	body, err := f.get(ctx, witnessURL)
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var set webvhwitness.ProofSet
	if err := json.Unmarshal(body, &set); err != nil {
		return nil, webvh.NewFormatError("parsing fetched did-witness.json", err)
	}
	return set, nil
}

func (f *HTTPFetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("webvhhost: building request for %s: %w", url, err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webvhhost: fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("webvhhost: fetching %s: unexpected status %d", url, resp.StatusCode)
	}

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("webvhhost: reading response body from %s: %w", url, err)
	}
	return buf.Bytes(), nil
}
