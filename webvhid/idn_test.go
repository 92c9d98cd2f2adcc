package webvhid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostToASCII_PassesThroughPlainASCII(t *testing.T) {
	ascii, err := hostToASCII("example.com")
	assert.NoError(t, err)
	assert.Equal(t, "example.com", ascii)
}

func TestHostToASCII_PreservesPort(t *testing.T) {
	ascii, err := hostToASCII("example.com:8080")
	assert.NoError(t, err)
	assert.Equal(t, "example.com:8080", ascii)
}

func TestHostToASCII_LowercasesHost(t *testing.T) {
	ascii, err := hostToASCII("Example.COM")
	assert.NoError(t, err)
	assert.Equal(t, "example.com", ascii)
}

func TestToPunycode_ConvertsIDNLabel(t *testing.T) {
	ascii, err := ToPunycode("münchen.de")
	assert.NoError(t, err)
	assert.Contains(t, ascii, "xn--")
}
