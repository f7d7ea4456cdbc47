// Package cryptox implements field-level encryption for PII values stored
// in the database. Each value is encrypted independently with AES-256-GCM
// under a process-wide key and stored as a single base64 string containing
// the random nonce followed by the sealed ciphertext.
//
// Encryption is deliberately non-deterministic: two encryptions of the same
// plaintext produce different ciphertext. Equality search over stored values
// is therefore impossible; callers filter decrypted data in memory.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"fmt"
	"unicode/utf8"

	"github.com/dmitrijs2005/contribvault/internal/common"
	"golang.org/x/crypto/argon2"
)

// DeriveFieldKey derives a 32-byte AES-256 key from a secret and salt using
// argon2id. Same inputs always produce the same key, so a process restart
// can decrypt previously written data.
func DeriveFieldKey(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, 32)
}

// FieldCipher encrypts and decrypts individual string fields.
// Safe for concurrent use: the underlying AEAD is stateless and every
// Encrypt call draws a fresh nonce.
type FieldCipher struct {
	aead cipher.AEAD
}

// NewFieldCipher builds a FieldCipher from a 32-byte key. An empty key
// yields ErrKeyUnavailable: the caller must never fall back to storing
// plaintext.
func NewFieldCipher(key []byte) (*FieldCipher, error) {
	if len(key) == 0 {
		return nil, common.ErrKeyUnavailable
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cipher init error: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm init error: %w", err)
	}

	return &FieldCipher{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce and returns
// base64(nonce || ciphertext || tag). It rejects strings that are not valid
// UTF-8; validated form input never triggers this.
func (c *FieldCipher) Encrypt(plaintext string) (string, error) {
	if c == nil || c.aead == nil {
		return "", common.ErrKeyUnavailable
	}
	if !utf8.ValidString(plaintext) {
		return "", fmt.Errorf("%w: plaintext is not valid UTF-8", common.ErrorValidation)
	}

	nonce := common.GenerateRandByteArray(c.aead.NonceSize())

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Malformed encoding, a truncated nonce and an
// authentication failure all yield an error wrapping ErrDecryptionFailed;
// altered plaintext is never returned.
func (c *FieldCipher) Decrypt(encoded string) (string, error) {
	if c == nil || c.aead == nil {
		return "", common.ErrKeyUnavailable
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: invalid encoding: %v", common.ErrDecryptionFailed, err)
	}

	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", fmt.Errorf("%w: ciphertext shorter than nonce", common.ErrDecryptionFailed)
	}

	nonce, ciphertext := raw[:nonceSize], raw[nonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrDecryptionFailed, err)
	}

	return string(plaintext), nil
}
