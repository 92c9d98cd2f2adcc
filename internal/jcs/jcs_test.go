package jcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeJSON_SortsKeys(t *testing.T) {
	assert := assert.New(t)

	out, err := CanonicalizeJSON([]byte(`{"b": 1, "a": 2, "c": {"z": 1, "y": 2}}`))
	assert.NoError(err)
	assert.Equal(`{"a":2,"b":1,"c":{"y":2,"z":1}}`, string(out))
}

func TestCanonicalizeJSON_Numbers(t *testing.T) {
	assert := assert.New(t)

	out, err := CanonicalizeJSON([]byte(`{"n": 1.0, "m": 42, "f": 1.5}`))
	assert.NoError(err)
	assert.Equal(`{"f":1.5,"m":42,"n":1}`, string(out))
}

func TestCanonicalizeJSON_Strings(t *testing.T) {
	assert := assert.New(t)

	out, err := CanonicalizeJSON([]byte(`{"s": "hello \"world\""}`))
	assert.NoError(err)
	assert.Equal(`{"s":"hello \"world\""}`, string(out))
}

func TestMarshal_RoundTripsStruct(t *testing.T) {
	assert := assert.New(t)

	type inner struct {
		Z int `json:"z"`
		A int `json:"a"`
	}
	type outer struct {
		B     int    `json:"b"`
		A     inner  `json:"a"`
		Empty string `json:"empty,omitempty"`
	}

	out, err := Marshal(outer{B: 1, A: inner{Z: 2, A: 3}})
	assert.NoError(err)
	assert.Equal(`{"a":{"a":3,"z":2},"b":1}`, string(out))
}

func TestCanonicalizeJSON_Deterministic(t *testing.T) {
	assert := assert.New(t)

	a, err := CanonicalizeJSON([]byte(`{"x":1,"y":2}`))
	assert.NoError(err)
	b, err := CanonicalizeJSON([]byte(`{"y":2,"x":1}`))
	assert.NoError(err)
	assert.Equal(string(a), string(b))
}
