package cryptox

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/contribvault/internal/common"
)

func newTestCipher(t *testing.T) *FieldCipher {
	t.Helper()
	key := DeriveFieldKey([]byte("test-secret"), []byte("test-salt"))
	c, err := NewFieldCipher(key)
	if err != nil {
		t.Fatalf("NewFieldCipher error: %v", err)
	}
	return c
}

func TestDeriveFieldKey_Deterministic(t *testing.T) {
	k1 := DeriveFieldKey([]byte("secret"), []byte("salt"))
	k2 := DeriveFieldKey([]byte("secret"), []byte("salt"))
	if !bytes.Equal(k1, k2) {
		t.Errorf("expected same key for same inputs, got different")
	}
	if len(k1) != 32 {
		t.Errorf("expected 32-byte key, got %d", len(k1))
	}
}

func TestDeriveFieldKey_DifferentSalts(t *testing.T) {
	k1 := DeriveFieldKey([]byte("secret"), []byte("salt-1"))
	k2 := DeriveFieldKey([]byte("secret"), []byte("salt-2"))
	if bytes.Equal(k1, k2) {
		t.Errorf("expected different keys for different salts, got same")
	}
}

func TestFieldCipher_RoundTrip(t *testing.T) {
	c := newTestCipher(t)

	tests := []struct {
		name      string
		plaintext string
	}{
		{"email", "maria.keller@example.ch"},
		{"street", "Bahnhofstrasse 12"},
		{"empty", ""},
		{"unicode", "Zürich, Höheweg 3, Привет, 東京"},
		{"punctuation", `"quotes" & <angle> / back\slash`},
		{"long", strings.Repeat("ß", 1024)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct, err := c.Encrypt(tt.plaintext)
			if err != nil {
				t.Fatalf("Encrypt error: %v", err)
			}
			if ct == tt.plaintext && tt.plaintext != "" {
				t.Fatalf("ciphertext equals plaintext")
			}
			got, err := c.Decrypt(ct)
			if err != nil {
				t.Fatalf("Decrypt error: %v", err)
			}
			if got != tt.plaintext {
				t.Fatalf("round trip mismatch: want %q, got %q", tt.plaintext, got)
			}
		})
	}
}

func TestFieldCipher_NonDeterministic(t *testing.T) {
	c := newTestCipher(t)
	const s = "same plaintext"

	ct1, err := c.Encrypt(s)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	ct2, err := c.Encrypt(s)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	if ct1 == ct2 {
		t.Fatalf("two encryptions of one plaintext produced identical ciphertext")
	}

	for _, ct := range []string{ct1, ct2} {
		got, err := c.Decrypt(ct)
		if err != nil {
			t.Fatalf("Decrypt error: %v", err)
		}
		if got != s {
			t.Fatalf("want %q, got %q", s, got)
		}
	}
}

func TestFieldCipher_TamperDetection(t *testing.T) {
	c := newTestCipher(t)

	ct, err := c.Encrypt("sensitive value")
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(ct)
	if err != nil {
		t.Fatalf("ciphertext is not valid base64: %v", err)
	}

	// Flip every byte position in turn: nonce, ciphertext and tag alike
	// must all be covered by authentication.
	for i := range raw {
		tampered := make([]byte, len(raw))
		copy(tampered, raw)
		tampered[i] ^= 0x01

		_, err := c.Decrypt(base64.StdEncoding.EncodeToString(tampered))
		if !errors.Is(err, common.ErrDecryptionFailed) {
			t.Fatalf("byte %d: expected ErrDecryptionFailed, got %v", i, err)
		}
	}
}

func TestFieldCipher_DecryptMalformed(t *testing.T) {
	c := newTestCipher(t)

	tests := []struct {
		name    string
		encoded string
	}{
		{"not base64", "%%% not base64 %%%"},
		{"empty", ""},
		{"shorter than nonce", base64.StdEncoding.EncodeToString([]byte("tiny"))},
		{"random garbage", base64.StdEncoding.EncodeToString(common.GenerateRandByteArray(48))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decrypt(tt.encoded)
			if !errors.Is(err, common.ErrDecryptionFailed) {
				t.Fatalf("expected ErrDecryptionFailed, got %v", err)
			}
		})
	}
}

func TestFieldCipher_WrongKeyFails(t *testing.T) {
	c1 := newTestCipher(t)
	c2, err := NewFieldCipher(DeriveFieldKey([]byte("other-secret"), []byte("test-salt")))
	if err != nil {
		t.Fatalf("NewFieldCipher error: %v", err)
	}

	ct, err := c1.Encrypt("value")
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	if _, err := c2.Decrypt(ct); !errors.Is(err, common.ErrDecryptionFailed) {
		t.Fatalf("expected ErrDecryptionFailed with wrong key, got %v", err)
	}
}

func TestFieldCipher_InvalidUTF8Plaintext(t *testing.T) {
	c := newTestCipher(t)
	if _, err := c.Encrypt(string([]byte{0xff, 0xfe})); !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("expected validation error for invalid UTF-8, got %v", err)
	}
}

func TestNewFieldCipher_EmptyKey(t *testing.T) {
	if _, err := NewFieldCipher(nil); !errors.Is(err, common.ErrKeyUnavailable) {
		t.Fatalf("expected ErrKeyUnavailable, got %v", err)
	}
}
