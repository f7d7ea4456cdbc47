package services

import (
	"regexp"
	"strings"

	"github.com/dmitrijs2005/contribvault/internal/common"
	"github.com/google/uuid"
)

// ContributionInput carries the caller-supplied, plaintext fields of a
// contribution. Validation happens before any encryption or persistence.
type ContributionInput struct {
	Amount     float64
	FirstName  string
	LastName   string
	Email      string
	Address    string
	City       string
	PostalCode string
	AgentID    string
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Validate checks the input and returns the first field-level error found.
func (in *ContributionInput) Validate() error {
	if in.Amount <= 0 {
		return &common.ValidationError{Field: "amount", Msg: "must be greater than 0"}
	}
	if strings.TrimSpace(in.FirstName) == "" {
		return &common.ValidationError{Field: "first_name", Msg: "is required"}
	}
	if strings.TrimSpace(in.LastName) == "" {
		return &common.ValidationError{Field: "last_name", Msg: "is required"}
	}
	if !emailPattern.MatchString(in.Email) {
		return &common.ValidationError{Field: "email", Msg: "invalid email address"}
	}
	if strings.TrimSpace(in.Address) == "" {
		return &common.ValidationError{Field: "address", Msg: "is required"}
	}
	if strings.TrimSpace(in.City) == "" {
		return &common.ValidationError{Field: "city", Msg: "is required"}
	}
	if len(in.PostalCode) < 4 {
		return &common.ValidationError{Field: "postal_code", Msg: "valid postal code required"}
	}
	if in.AgentID != "" {
		if err := uuid.Validate(in.AgentID); err != nil {
			return &common.ValidationError{Field: "agent_id", Msg: "invalid agent selection"}
		}
	}
	return nil
}
