package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPKCS7(t *testing.T) {
	tests := []struct {
		in  int
		pad byte
	}{
		{0, 16},
		{1, 15},
		{15, 1},
		{16, 16},
		{26, 6},
	}
	for _, tt := range tests {
		data := bytes.Repeat([]byte{0xaa}, tt.in)
		padded := PKCS7Pad(data, 16)
		require.Zero(t, len(padded)%16)
		assert.Equal(t, tt.pad, padded[len(padded)-1])

		out, err := PKCS7Unpad(padded, 16)
		require.NoError(t, err)
		assert.Equal(t, data, out)
	}
}

func TestPKCS7PadDoesNotAlias(t *testing.T) {
	data := make([]byte, 3, 64)
	_ = PKCS7Pad(data, 16)
	assert.Equal(t, byte(0), data[:4][3])
}

func TestPKCS7Inconsistent(t *testing.T) {
	bad := [][]byte{
		nil,
		bytes.Repeat([]byte{0}, 16),
		append(bytes.Repeat([]byte{1}, 14), 3, 2),
		bytes.Repeat([]byte{17}, 16),
		make([]byte, 15),
	}
	for _, b := range bad {
		_, err := PKCS7Unpad(b, 16)
		assert.ErrorIs(t, err, ErrInvalidPadding)

		out, ok := PKCS7UnpadLenient(b, 16)
		assert.False(t, ok)
		assert.Equal(t, b, out)
	}
}

func TestPaddedSize(t *testing.T) {
	assert.Equal(t, 0, PaddedSize(0, 16))
	assert.Equal(t, 16, PaddedSize(1, 16))
	assert.Equal(t, 16, PaddedSize(16, 16))
	assert.Equal(t, 32, PaddedSize(26, 16))
}

func TestDigests(t *testing.T) {
	sum := SM3([]byte("abc"))
	assert.Equal(t, "66c7f0f462eeedd9d1f2d46bdc10e4e24167c4875cf2f7a2297da02b8f4ba8e0", hex.EncodeToString(sum[:]))

	assert.Equal(t, "369d64a787b54032f10fb8096a150a9c", string(MD5Hex([]byte{0xea, 0xe0, 0xc5, 0x4e, '1', '1', '2', '8'})))
}

func TestAESCBC(t *testing.T) {
	key := bytes.Repeat([]byte{1}, 16)
	iv := bytes.Repeat([]byte{2}, 16)
	msg := []byte("header-and-payload")

	ct, err := AESCBCEncrypt(key, iv, msg)
	require.NoError(t, err)
	assert.Len(t, ct, 32)

	pt, err := AESCBCDecrypt(key, iv, ct)
	require.NoError(t, err)
	out, err := PKCS7Unpad(pt, 16)
	require.NoError(t, err)
	assert.Equal(t, msg, out)

	_, err = AESCBCDecrypt(key, iv, ct[:17])
	assert.ErrorIs(t, err, ErrBlockSize)
	_, err = AESCBCEncrypt(key[:5], iv, msg)
	assert.Error(t, err)
}
