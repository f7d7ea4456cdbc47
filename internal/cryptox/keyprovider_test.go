package cryptox

import (
	"bytes"
	"errors"
	"testing"

	"github.com/dmitrijs2005/contribvault/internal/common"
)

func TestNewKeyProvider_EmptySecret(t *testing.T) {
	if _, err := NewKeyProvider("", "salt"); !errors.Is(err, common.ErrKeyUnavailable) {
		t.Fatalf("expected ErrKeyUnavailable, got %v", err)
	}
}

func TestKeyProvider_StableAcrossInstances(t *testing.T) {
	p1, err := NewKeyProvider("secret", "salt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p2, err := NewKeyProvider("secret", "salt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	k1, err := p1.CurrentKey()
	if err != nil {
		t.Fatalf("CurrentKey error: %v", err)
	}
	k2, err := p2.CurrentKey()
	if err != nil {
		t.Fatalf("CurrentKey error: %v", err)
	}
	if !bytes.Equal(k1, k2) {
		t.Fatalf("expected identical keys after restart with same config")
	}
}

func TestKeyProvider_FieldCipherDecryptsAcrossRestart(t *testing.T) {
	p1, err := NewKeyProvider("secret", "salt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c1, err := p1.FieldCipher()
	if err != nil {
		t.Fatalf("FieldCipher error: %v", err)
	}

	ct, err := c1.Encrypt("persisted before restart")
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	// A fresh provider stands in for a restarted process.
	p2, err := NewKeyProvider("secret", "salt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c2, err := p2.FieldCipher()
	if err != nil {
		t.Fatalf("FieldCipher error: %v", err)
	}

	got, err := c2.Decrypt(ct)
	if err != nil {
		t.Fatalf("Decrypt error: %v", err)
	}
	if got != "persisted before restart" {
		t.Fatalf("unexpected plaintext %q", got)
	}
}

func TestKeyProvider_NilSafe(t *testing.T) {
	var p *KeyProvider
	if _, err := p.CurrentKey(); !errors.Is(err, common.ErrKeyUnavailable) {
		t.Fatalf("expected ErrKeyUnavailable on nil provider, got %v", err)
	}
}
