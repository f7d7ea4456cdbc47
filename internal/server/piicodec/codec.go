// Package piicodec converts records between display form (PII plaintext)
// and storage form (PII ciphertext). Fields are encrypted and decrypted
// independently so a failure can be attributed to the exact field; whether
// a failed row is dropped or partially shown is the caller's decision.
package piicodec

import (
	"fmt"

	"github.com/dmitrijs2005/contribvault/internal/cryptox"
	"github.com/dmitrijs2005/contribvault/internal/server/models"
)

// FieldError reports which PII field failed to encrypt or decrypt.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Codec applies the field cipher across the sensitive fields of
// contribution and login-log records.
type Codec struct {
	cipher *cryptox.FieldCipher
}

func New(cipher *cryptox.FieldCipher) *Codec {
	return &Codec{cipher: cipher}
}

// EncryptContribution returns a storage-form copy of in: non-PII fields
// unchanged, email/address/city/postal code replaced by fresh ciphertext.
// All four fields are re-encrypted as a unit even if only one changed.
func (c *Codec) EncryptContribution(in *models.Contribution) (*models.Contribution, error) {
	out := *in
	if err := c.applyContribution(&out, c.cipher.Encrypt); err != nil {
		return nil, err
	}
	return &out, nil
}

// DecryptContribution returns a display-form copy of a stored record.
func (c *Codec) DecryptContribution(in *models.Contribution) (*models.Contribution, error) {
	out := *in
	if err := c.applyContribution(&out, c.cipher.Decrypt); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Codec) applyContribution(rec *models.Contribution, fn func(string) (string, error)) error {
	fields := []struct {
		name  string
		value *string
	}{
		{"email", &rec.Email},
		{"address", &rec.Address},
		{"city", &rec.City},
		{"postal_code", &rec.PostalCode},
	}

	for _, f := range fields {
		converted, err := fn(*f.value)
		if err != nil {
			return &FieldError{Field: f.name, Err: err}
		}
		*f.value = converted
	}
	return nil
}

// EncryptLoginLog returns a storage-form copy of a login-log entry.
func (c *Codec) EncryptLoginLog(in *models.LoginLog) (*models.LoginLog, error) {
	out := *in
	ct, err := c.cipher.Encrypt(in.IPAddress)
	if err != nil {
		return nil, &FieldError{Field: "ip_address", Err: err}
	}
	out.IPAddress = ct
	return &out, nil
}

// DecryptLoginLog returns a display-form copy of a stored login-log entry.
func (c *Codec) DecryptLoginLog(in *models.LoginLog) (*models.LoginLog, error) {
	out := *in
	pt, err := c.cipher.Decrypt(in.IPAddress)
	if err != nil {
		return nil, &FieldError{Field: "ip_address", Err: err}
	}
	out.IPAddress = pt
	return &out, nil
}
