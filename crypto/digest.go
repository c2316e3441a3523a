package crypto

import (
	"crypto/md5"
	"encoding/hex"

	"github.com/emmansun/gmsm/sm3"
)

// MD5 returns the raw 16-byte digest.
func MD5(data []byte) [md5.Size]byte {
	return md5.Sum(data)
}

// MD5Hex returns the lower-case hex digest as bytes. Ladon uses these 32 ASCII
// characters directly as key material.
func MD5Hex(data []byte) []byte {
	sum := md5.Sum(data)
	out := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(out, sum[:])
	return out
}

// SM3 returns the 32-byte SM3 digest.
func SM3(data []byte) [sm3.Size]byte {
	return sm3.Sum(data)
}
