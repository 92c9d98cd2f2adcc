package multibase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecode58BTC(t *testing.T) {
	assert := assert.New(t)

	data := []byte{0xED, 0x01, 0x02, 0x03, 0x04}
	enc, err := Encode(Base58BTC, data)
	assert.NoError(err)
	assert.Equal(byte('z'), enc[0])

	base, dec, err := Decode(enc)
	assert.NoError(err)
	assert.Equal(Base58BTC, base)
	assert.Equal(data, dec)
}

func TestEncodeDecode64URL(t *testing.T) {
	assert := assert.New(t)

	data := []byte("hello world, this is a test payload")
	enc, err := Encode(Base64URL, data)
	assert.NoError(err)
	assert.Equal(byte('u'), enc[0])

	base, dec, err := Decode(enc)
	assert.NoError(err)
	assert.Equal(Base64URL, base)
	assert.Equal(data, dec)
}

func TestDecode_PreservesLeadingZeroes(t *testing.T) {
	assert := assert.New(t)

	data := []byte{0x00, 0x00, 0x01, 0x02}
	enc, err := Encode(Base58BTC, data)
	assert.NoError(err)

	_, dec, err := Decode(enc)
	assert.NoError(err)
	assert.Equal(data, dec)
}

func TestDecode_EmptyString(t *testing.T) {
	assert := assert.New(t)

	_, _, err := Decode("")
	assert.Error(err)
}

func TestDecode_UnsupportedBase(t *testing.T) {
	assert := assert.New(t)

	_, _, err := Decode("%not-a-real-encoding")
	assert.Error(err)
}
