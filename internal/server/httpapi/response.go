package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dmitrijs2005/contribvault/internal/server/models"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// ContributionResponse is the JSON representation of a contribution in
// display form.
type ContributionResponse struct {
	ID         string  `json:"id"`
	UserID     string  `json:"user_id"`
	AgentID    string  `json:"agent_id,omitempty"`
	Amount     float64 `json:"amount"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Email      string  `json:"email"`
	Address    string  `json:"address"`
	City       string  `json:"city"`
	PostalCode string  `json:"postal_code"`
	Paid       bool    `json:"paid"`
	CreatedAt  string  `json:"created_at"`
	UserEmail  string  `json:"user_email"`
	AgentEmail string  `json:"agent_email"`
}

// ContributionRequest is the JSON body for create and update.
type ContributionRequest struct {
	AgentID    string  `json:"agent_id"`
	Amount     float64 `json:"amount"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Email      string  `json:"email"`
	Address    string  `json:"address"`
	City       string  `json:"city"`
	PostalCode string  `json:"postal_code"`
}

// SetPaidRequest is the JSON body for the paid status endpoint.
type SetPaidRequest struct {
	IDs  []string `json:"ids"`
	Paid bool     `json:"paid"`
}

// DeleteRequest is the JSON body for the bulk delete endpoint.
type DeleteRequest struct {
	IDs []string `json:"ids"`
}

// ExportResponse carries the presigned download link of a finished export.
type ExportResponse struct {
	URL string `json:"url"`
}

// DirectoryEntryResponse is the JSON representation of a directory user.
type DirectoryEntryResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// LoginLogRequest is the JSON body for recording an authentication attempt.
type LoginLogRequest struct {
	UserID    string `json:"user_id"`
	IPAddress string `json:"ip_address"`
	Success   bool   `json:"success"`
}

// LoginLogResponse is the JSON representation of one audit entry.
type LoginLogResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	IPAddress string `json:"ip_address"`
	Success   bool   `json:"success"`
	CreatedAt string `json:"created_at"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func toContributionResponse(c *models.ContributionWithUsers) ContributionResponse {
	return ContributionResponse{
		ID:         c.ID,
		UserID:     c.UserID,
		AgentID:    c.AgentID,
		Amount:     c.Amount,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Email:      c.Email,
		Address:    c.Address,
		City:       c.City,
		PostalCode: c.PostalCode,
		Paid:       c.Paid,
		CreatedAt:  c.CreatedAt.UTC().Format(time.RFC3339),
		UserEmail:  c.UserEmail,
		AgentEmail: c.AgentEmail,
	}
}

func toLoginLogResponse(l *models.LoginLog) LoginLogResponse {
	return LoginLogResponse{
		ID:        l.ID,
		UserID:    l.UserID,
		IPAddress: l.IPAddress,
		Success:   l.Success,
		CreatedAt: l.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toDirectoryEntryResponse(e *models.DirectoryEntry) DirectoryEntryResponse {
	return DirectoryEntryResponse{ID: e.ID, Email: e.Email}
}
