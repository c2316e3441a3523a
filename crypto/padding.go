package crypto

import (
	"bytes"

	"github.com/pkg/errors"
)

// ErrInvalidPadding is returned by PKCS7Unpad when the trailing bytes are not
// a consistent PKCS#7 pad.
var ErrInvalidPadding = errors.New("invalid pkcs7 padding")

// PaddedSize rounds size up to a whole number of blocks. An aligned size is
// returned unchanged.
func PaddedSize(size, blockSize int) int {
	if mod := size % blockSize; mod > 0 {
		return size + blockSize - mod
	}
	return size
}

// PKCS7Pad returns a copy of data padded to a multiple of blockSize. Aligned
// input gains a full block of padding.
func PKCS7Pad(data []byte, blockSize int) []byte {
	pad := blockSize - len(data)%blockSize
	out := make([]byte, len(data), len(data)+pad)
	copy(out, data)
	return append(out, bytes.Repeat([]byte{byte(pad)}, pad)...)
}

// PKCS7Unpad strips a PKCS#7 pad, failing with ErrInvalidPadding when the pad
// is inconsistent.
func PKCS7Unpad(data []byte, blockSize int) ([]byte, error) {
	n, ok := pkcs7Len(data, blockSize)
	if !ok {
		return nil, ErrInvalidPadding
	}
	return data[:len(data)-n], nil
}

// PKCS7UnpadLenient strips a PKCS#7 pad when it is consistent and otherwise
// returns data untouched. ok reports which case applied.
func PKCS7UnpadLenient(data []byte, blockSize int) (out []byte, ok bool) {
	n, ok := pkcs7Len(data, blockSize)
	if !ok {
		return data, false
	}
	return data[:len(data)-n], true
}

func pkcs7Len(data []byte, blockSize int) (int, bool) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return 0, false
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return 0, false
	}
	for _, c := range data[len(data)-n:] {
		if int(c) != n {
			return 0, false
		}
	}
	return n, true
}
