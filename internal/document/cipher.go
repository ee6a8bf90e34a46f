package document

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
)

// Cipher encrypts document payloads with AES-CBC and PKCS#7 padding. A fresh
// random IV is generated per document and prepended to the ciphertext, so the
// stored blob is IV || ciphertext and its length exceeds the plaintext by the
// IV plus block alignment. The key is injected from configuration.
type Cipher struct {
	block cipher.Block
}

// NewCipher builds a Cipher from a 16, 24 or 32 byte AES key.
func NewCipher(key []byte) (*Cipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("document: cipher key: %w", err)
	}
	return &Cipher{block: block}, nil
}

// Encrypt seals the plaintext. Safe for concurrent use; every call draws a
// new IV.
func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	padded := pkcs7Pad(plaintext, aes.BlockSize)
	out := make([]byte, aes.BlockSize+len(padded))
	iv := out[:aes.BlockSize]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, err
	}
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(out[aes.BlockSize:], padded)
	return out, nil
}

// Decrypt opens a blob produced by Encrypt. Any structural problem (short
// input, misaligned length, bad padding) is reported as ErrCorruptData.
func (c *Cipher) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < 2*aes.BlockSize || len(ciphertext)%aes.BlockSize != 0 {
		return nil, ErrCorruptData
	}
	iv := ciphertext[:aes.BlockSize]
	body := ciphertext[aes.BlockSize:]
	padded := make([]byte, len(body))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(padded, body)
	return pkcs7Unpad(padded, aes.BlockSize)
}

// Checksum returns the base64 encoded SHA-256 digest of the plaintext. It is
// computed once at upload and re-verified on every download.
func Checksum(plaintext []byte) string {
	sum := sha256.Sum256(plaintext)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrCorruptData
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, ErrCorruptData
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, ErrCorruptData
		}
	}
	return data[:len(data)-n], nil
}
