package crypto

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/pkg/errors"
)

// AESCBCEncrypt pads plaintext with PKCS#7 and encrypts it with AES-CBC.
func AESCBCEncrypt(key, iv, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "aes key")
	}
	if len(iv) != aes.BlockSize {
		return nil, errors.Errorf("aes iv must be %d bytes, got %d", aes.BlockSize, len(iv))
	}
	plaintext = PKCS7Pad(plaintext, aes.BlockSize)

	out := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, plaintext)
	return out, nil
}

// AESCBCDecrypt decrypts ciphertext with AES-CBC. Padding is left for the
// caller to remove.
func AESCBCDecrypt(key, iv, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "aes key")
	}
	if len(iv) != aes.BlockSize {
		return nil, errors.Errorf("aes iv must be %d bytes, got %d", aes.BlockSize, len(iv))
	}
	if len(ciphertext)%aes.BlockSize != 0 {
		return nil, errors.Wrapf(ErrBlockSize, "aes ciphertext of %d bytes", len(ciphertext))
	}

	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ciphertext)
	return out, nil
}
