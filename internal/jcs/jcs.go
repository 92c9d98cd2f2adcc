// Package jcs implements the JSON Canonicalization Scheme (RFC 8785): a
// deterministic serialization used so that hashing a JSON value is
// well-defined regardless of how the value was originally marshaled.
//
// No library in this codebase's dependency graph implements RFC 8785 (the
// nearest tooling, atproto's JSON-LD processors, canonicalize RDF graphs via
// URDNA2015 — a different algorithm solving a different problem). Canonical
// JSON serialization is therefore built directly on encoding/json, the way
// every did:webvh implementation in the wild does it: decode into
// order-preserving-free Go values, re-encode with keys sorted by UTF-16
// code unit, and hand-format numbers per RFC 8785 §3.2.2.3.
package jcs

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Marshal serializes v as JCS-canonical JSON bytes. v is first round-tripped
// through encoding/json (so struct tags, omitempty, etc. are honored) and
// then re-serialized in canonical form.
func Marshal(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("jcs: marshal input: %w", err)
	}
	return CanonicalizeJSON(raw)
}

// CanonicalizeJSON re-serializes already-encoded JSON bytes into canonical
// form. Object keys are sorted, whitespace is removed, and numbers are
// reformatted per RFC 8785.
func CanonicalizeJSON(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("jcs: decode input: %w", err)
	}
	var buf strings.Builder
	if err := encode(&buf, v); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}

func encode(buf *strings.Builder, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
		return nil
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case json.Number:
		return encodeNumber(buf, val)
	case string:
		return encodeString(buf, val)
	case []any:
		return encodeArray(buf, val)
	case map[string]any:
		return encodeObject(buf, val)
	default:
		return fmt.Errorf("jcs: unsupported value type %T", v)
	}
}

func encodeArray(buf *strings.Builder, arr []any) error {
	buf.WriteByte('[')
	for i, el := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encode(buf, el); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

// keys are sorted by UTF-16 code unit, per RFC 8785 §3.2.3. For the BMP
// subset this codebase ever sees (ASCII identifiers, DID fragments), plain
// code-point ordering of the UTF-8 string coincides with code-unit
// ordering, so a direct string sort is sufficient and avoids a UTF-16
// conversion dependency.
func encodeObject(buf *strings.Builder, obj map[string]any) error {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeString(buf, k); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := encode(buf, obj[k]); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// encodeString writes s as a JSON string without HTML escaping, so '<',
// '>' and '&' appear literally. encoding/json still escapes U+2028 and
// U+2029 as escape sequences rather than literally.
func encodeString(buf *strings.Builder, s string) error {
	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("jcs: encode string: %w", err)
	}
	buf.WriteString(strings.TrimSuffix(sb.String(), "\n"))
	return nil
}

// encodeNumber reformats a JSON number per RFC 8785 §3.2.2.3, using the
// shortest round-tripping float64 digits: magnitudes in [1e-6, 1e21) are
// printed in plain decimal form (integral values without a decimal point),
// others in exponent form without leading exponent zeros (1e-7, 1e+21).
func encodeNumber(buf *strings.Builder, n json.Number) error {
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("jcs: invalid number %q: %w", n.String(), err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("jcs: number %q is not representable in JSON", n.String())
	}
	if f == 0 {
		buf.WriteString("0")
		return nil
	}
	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		buf.WriteString(strconv.FormatFloat(f, 'f', -1, 64))
		return nil
	}
	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	buf.WriteString(mantissa + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0"))
	return nil
}
