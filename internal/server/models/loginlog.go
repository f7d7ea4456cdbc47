package models

import "time"

// LoginLog records one authentication attempt reported by the identity
// provider. IPAddress is ciphertext at rest and plaintext after decryption.
type LoginLog struct {
	ID        string
	UserID    string
	IPAddress string
	Success   bool
	CreatedAt time.Time
}
