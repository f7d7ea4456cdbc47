package models

import "time"

// Contribution is a single collected contribution. Email, Address, City and
// PostalCode hold ciphertext when the record comes from or goes to storage
// and plaintext after decryption; the remaining fields are never encrypted.
type Contribution struct {
	ID         string
	UserID     string // account that submitted the record
	AgentID    string // field agent credited with collection, may be empty
	Amount     float64
	FirstName  string
	LastName   string
	Email      string
	Address    string
	City       string
	PostalCode string
	Paid       bool
	CreatedAt  time.Time
}

// ContributionWithUsers is a display-form contribution enriched with the
// directory emails of the submitting account and the credited agent.
type ContributionWithUsers struct {
	Contribution
	UserEmail  string
	AgentEmail string
}
