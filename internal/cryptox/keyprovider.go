package cryptox

import (
	"github.com/dmitrijs2005/contribvault/internal/common"
)

// KeyProvider holds the single process-wide field-encryption key.
// The key is derived once at startup; there is no rotation, so a provider
// constructed with the same secret and salt always serves the same key.
type KeyProvider struct {
	key []byte
}

// NewKeyProvider derives the field key from the configured secret and salt.
// An empty secret yields ErrKeyUnavailable so that misconfiguration is
// caught at startup rather than at the first write.
func NewKeyProvider(secret, salt string) (*KeyProvider, error) {
	if secret == "" {
		return nil, common.ErrKeyUnavailable
	}

	secretBytes := []byte(secret)
	saltBytes := []byte(salt)
	defer common.WipeByteArray(secretBytes)
	defer common.WipeByteArray(saltBytes)

	return &KeyProvider{key: DeriveFieldKey(secretBytes, saltBytes)}, nil
}

// CurrentKey returns the active symmetric key.
func (p *KeyProvider) CurrentKey() ([]byte, error) {
	if p == nil || len(p.key) == 0 {
		return nil, common.ErrKeyUnavailable
	}
	return p.key, nil
}

// FieldCipher builds the cipher backed by the current key.
func (p *KeyProvider) FieldCipher() (*FieldCipher, error) {
	key, err := p.CurrentKey()
	if err != nil {
		return nil, err
	}
	return NewFieldCipher(key)
}
