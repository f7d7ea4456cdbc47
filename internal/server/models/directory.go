package models

// DirectoryEntry maps a user identifier to its display email. The directory
// is a read-only view owned by the identity provider.
type DirectoryEntry struct {
	ID    string
	Email string
}

// UnknownEmail is the sentinel display identity for identifiers the
// directory cannot resolve. Partial directory data must not block display
// of financial data.
const UnknownEmail = "Unknown"
