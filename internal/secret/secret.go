// Package secret encrypts credentials that have to be stored in the database
// but must be readable again, such as the SMTP relay password.
//
// Values are encrypted with AES-256-CBC using a fixed key and IV taken from the
// deployment configuration and stored hex encoded. The format is compatible with
// rows written by earlier versions of the admin backend.
package secret

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"errors"
	"fmt"
)

const (
	keySize = 32
	ivSize  = aes.BlockSize
)

var (
	// ErrInvalidKey is returned if the key is neither 32 raw bytes nor 64 hex chars.
	ErrInvalidKey = errors.New("encryption key must be 32 bytes or 64 hex characters")

	// ErrInvalidIV is returned if the iv is neither 16 raw bytes nor 32 hex chars.
	ErrInvalidIV = errors.New("encryption iv must be 16 bytes or 32 hex characters")

	// ErrInvalidCiphertext is returned if a stored value can not be decrypted.
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
)

// Box encrypts and decrypts short strings.
type Box struct {
	block cipher.Block
	iv    []byte
}

// New creates a Box from the configured key material.
func New(key, iv string) (*Box, error) {
	k, ok := material(key, keySize)
	if !ok {
		return nil, ErrInvalidKey
	}

	v, ok := material(iv, ivSize)
	if !ok {
		return nil, ErrInvalidIV
	}

	block, err := aes.NewCipher(k)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	return &Box{block: block, iv: v}, nil
}

// material accepts raw or hex encoded key material of the given size.
func material(s string, size int) ([]byte, bool) {
	if len(s) == size {
		return []byte(s), true
	}

	if len(s) == size*2 {
		b, err := hex.DecodeString(s)
		if err == nil {
			return b, true
		}
	}

	return nil, false
}

// Encrypt returns the hex encoded ciphertext of plain.
func (b *Box) Encrypt(plain string) string {
	padded := pad([]byte(plain))
	out := make([]byte, len(padded))

	cipher.NewCBCEncrypter(b.block, b.iv).CryptBlocks(out, padded)

	return hex.EncodeToString(out)
}

// Decrypt reverses Encrypt.
func (b *Box) Decrypt(encoded string) (string, error) {
	raw, err := hex.DecodeString(encoded)
	if err != nil || len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return "", ErrInvalidCiphertext
	}

	out := make([]byte, len(raw))
	cipher.NewCBCDecrypter(b.block, b.iv).CryptBlocks(out, raw)

	plain, ok := unpad(out)
	if !ok {
		return "", ErrInvalidCiphertext
	}

	return string(plain), nil
}

// pad applies PKCS#7 padding.
func pad(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize

	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte) ([]byte, bool) {
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, false
	}

	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, false
		}
	}

	return b[:len(b)-n], true
}
