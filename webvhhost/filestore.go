// Package webvhhost provides host adapters the core never depends on
// directly: filesystem persistence of did.jsonl/did-witness.json, and an
// HTTP fetcher for resolving remote did:webvh logs, per spec.md §6.2-6.4.
//
// Grounded on atproto/identity's file-based directory patterns for the
// store, and on did/web.go's ResolveDIDWeb-style plain net/http client
// with an explicit ErrNotFound sentinel for the fetcher.
package webvhhost

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/geunkim/didwebvh/webvh"
	"github.com/geunkim/didwebvh/webvhlog"
	"github.com/geunkim/didwebvh/webvhwitness"
)

// FileLogStore reads and writes did.jsonl/did-witness.json pairs rooted
// at a directory, per spec.md §6.2/§6.3.
type FileLogStore struct {
	Dir string
}

// NewFileLogStore returns a store rooted at dir, created if absent.
func NewFileLogStore(dir string) (*FileLogStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("webvhhost: creating store directory: %w", err)
	}
	return &FileLogStore{Dir: dir}, nil
}

func (s *FileLogStore) logPath() string     { return filepath.Join(s.Dir, "did.jsonl") }
func (s *FileLogStore) witnessPath() string { return filepath.Join(s.Dir, "did-witness.json") }

// ReadLog parses did.jsonl into a log entry slice, per spec.md §6.2: one
// JSON object per line. An empty or absent file is "not found".
func (s *FileLogStore) ReadLog() ([]webvhlog.Entry, error) {
	data, err := os.ReadFile(s.logPath())
	if os.IsNotExist(err) {
		return nil, webvh.NewNotFoundError("did.jsonl does not exist", err)
	}
	if err != nil {
		return nil, fmt.Errorf("webvhhost: reading did.jsonl: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, webvh.NewNotFoundError("did.jsonl is empty", nil)
	}

	var entries []webvhlog.Entry
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var e webvhlog.Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, webvh.NewFormatError("parsing did.jsonl line", err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("webvhhost: scanning did.jsonl: %w", err)
	}
	return entries, nil
}

// AppendEntry appends one entry as an encoding/json line to did.jsonl.
// The line is not JCS-canonical: keys follow struct field order.
func (s *FileLogStore) AppendEntry(e webvhlog.Entry) error {
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("webvhhost: marshaling entry: %w", err)
	}
	f, err := os.OpenFile(s.logPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("webvhhost: opening did.jsonl: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("webvhhost: writing did.jsonl: %w", err)
	}
	return nil
}

// WriteLog overwrites did.jsonl with the full entry sequence.
func (s *FileLogStore) WriteLog(entries []webvhlog.Entry) error {
	var buf bytes.Buffer
	for _, e := range entries {
		line, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("webvhhost: marshaling entry: %w", err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	if err := os.WriteFile(s.logPath(), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("webvhhost: writing did.jsonl: %w", err)
	}
	return nil
}

// ReadWitnessProofs parses did-witness.json, if present. Absence is not
// an error: witnessing is optional per document.
func (s *FileLogStore) ReadWitnessProofs() (webvhwitness.ProofSet, error) {
	data, err := os.ReadFile(s.witnessPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("webvhhost: reading did-witness.json: %w", err)
	}
	var set webvhwitness.ProofSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, webvh.NewFormatError("parsing did-witness.json", err)
	}
	return set, nil
}

// WriteWitnessProofs overwrites did-witness.json with set.
func (s *FileLogStore) WriteWitnessProofs(set webvhwitness.ProofSet) error {
	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("webvhhost: marshaling witness proof set: %w", err)
	}
	if err := os.WriteFile(s.witnessPath(), data, 0o644); err != nil {
		return fmt.Errorf("webvhhost: writing did-witness.json: %w", err)
	}
	return nil
}
