// Package httpapi is the HTTP driving adapter that serves the REST API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/contribvault/internal/common"
	"github.com/dmitrijs2005/contribvault/internal/logging"
	"github.com/dmitrijs2005/contribvault/internal/server/models"
	"github.com/dmitrijs2005/contribvault/internal/server/services"
)

// ContributionAPI is the slice of ContributionService the handlers need.
type ContributionAPI interface {
	Create(ctx context.Context, caller services.Caller, in *services.ContributionInput) (*models.ContributionWithUsers, error)
	Update(ctx context.Context, id string, in *services.ContributionInput) (*models.ContributionWithUsers, error)
	Get(ctx context.Context, id string) (*models.ContributionWithUsers, error)
	List(ctx context.Context, caller services.Caller, f *services.Filter) ([]*models.ContributionWithUsers, error)
	SetPaidStatus(ctx context.Context, ids []string, paid bool) error
	Delete(ctx context.Context, ids []string) error
}

// DirectoryAPI serves the user directory endpoints.
type DirectoryAPI interface {
	ListUsers(ctx context.Context) ([]*models.DirectoryEntry, error)
}

// LoginLogAPI serves the login audit endpoints.
type LoginLogAPI interface {
	Record(ctx context.Context, userID, ipAddress string, success bool) error
	List(ctx context.Context, userID string) ([]*models.LoginLog, error)
}

// ExportAPI turns a record set into a downloadable artifact.
type ExportAPI interface {
	Export(ctx context.Context, recs []*models.ContributionWithUsers, r services.Renderer) (string, error)
}

// Handler holds the services behind the REST API.
type Handler struct {
	contributions ContributionAPI
	directory     DirectoryAPI
	loginLogs     LoginLogAPI
	exports       ExportAPI
	logger        logging.Logger
}

func NewHandler(contributions ContributionAPI, directory DirectoryAPI, loginLogs LoginLogAPI,
	exports ExportAPI, logger logging.Logger) *Handler {
	return &Handler{
		contributions: contributions,
		directory:     directory,
		loginLogs:     loginLogs,
		exports:       exports,
		logger:        logger,
	}
}

// NewServeMux registers all routes and wraps them with auth, logging and
// recovery middleware. The health endpoint stays outside auth.
func NewServeMux(h *Handler, secretKey []byte, logger logging.Logger) http.Handler {
	api := http.NewServeMux()

	api.HandleFunc("POST /api/v1/contributions", h.CreateContribution)
	api.HandleFunc("GET /api/v1/contributions", h.ListContributions)
	api.HandleFunc("GET /api/v1/contributions/{id}", h.GetContribution)
	api.HandleFunc("PUT /api/v1/contributions/{id}", requireAdmin(h.UpdateContribution))
	api.HandleFunc("POST /api/v1/contributions/paid", requireAdmin(h.SetPaidStatus))
	api.HandleFunc("DELETE /api/v1/contributions", requireAdmin(h.DeleteContributions))
	api.HandleFunc("POST /api/v1/contributions/export", h.ExportContributions)
	api.HandleFunc("GET /api/v1/users", h.ListUsers)
	api.HandleFunc("GET /api/v1/logins", h.ListLoginLogs)
	api.HandleFunc("POST /api/v1/logins", requireAdmin(h.RecordLoginLog))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.Handle("/api/v1/", authMiddleware(secretKey, api))

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// writeServiceError maps service-level sentinel errors onto HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, common.ErrorValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	default:
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func toInput(req *ContributionRequest) *services.ContributionInput {
	return &services.ContributionInput{
		AgentID:    req.AgentID,
		Amount:     req.Amount,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
	}
}

// filterFromQuery builds the in-memory filter from query parameters.
func filterFromQuery(r *http.Request) (*services.Filter, error) {
	q := r.URL.Query()
	f := &services.Filter{
		Search:    q.Get("search"),
		UserID:    q.Get("user_id"),
		Status:    services.Status(q.Get("status")),
		DateRange: services.DateRange(q.Get("range")),
	}
	if s := q.Get("min_amount"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		f.MinAmount = &v
	}
	if s := q.Get("max_amount"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		f.MaxAmount = &v
	}
	return f, nil
}

// CreateContribution stores a new record credited to the caller.
func (h *Handler) CreateContribution(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFromContext(r.Context())

	var req ContributionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	rec, err := h.contributions.Create(r.Context(), caller, toInput(&req))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toContributionResponse(rec))
}

// GetContribution returns a single record in display form.
func (h *Handler) GetContribution(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFromContext(r.Context())

	rec, err := h.contributions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if !caller.Admin && rec.AgentID != caller.UserID && rec.UserID != caller.UserID {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	writeJSON(w, http.StatusOK, toContributionResponse(rec))
}

// UpdateContribution overwrites the editable fields of a record. Editing is
// an admin operation: agents submit and view records but never rewrite them.
func (h *Handler) UpdateContribution(w http.ResponseWriter, r *http.Request) {
	var req ContributionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	rec, err := h.contributions.Update(r.Context(), r.PathValue("id"), toInput(&req))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toContributionResponse(rec))
}

// ListContributions returns the caller's visible records, filtered in memory.
func (h *Handler) ListContributions(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFromContext(r.Context())

	f, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter parameters")
		return
	}

	recs, err := h.contributions.List(r.Context(), caller, f)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := make([]ContributionResponse, 0, len(recs))
	for _, rec := range recs {
		resp = append(resp, toContributionResponse(rec))
	}

	writeJSON(w, http.StatusOK, resp)
}

// SetPaidStatus flips the paid flag on a batch of records.
func (h *Handler) SetPaidStatus(w http.ResponseWriter, r *http.Request) {
	var req SetPaidRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids are required")
		return
	}

	if err := h.contributions.SetPaidStatus(r.Context(), req.IDs, req.Paid); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteContributions removes a batch of records.
func (h *Handler) DeleteContributions(w http.ResponseWriter, r *http.Request) {
	var req DeleteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids are required")
		return
	}

	if err := h.contributions.Delete(r.Context(), req.IDs); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportContributions renders the caller's filtered record set and returns
// a presigned download link.
func (h *Handler) ExportContributions(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFromContext(r.Context())

	f, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter parameters")
		return
	}

	var renderer services.Renderer
	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		renderer = services.CSVRenderer{}
	default:
		writeError(w, http.StatusBadRequest, "unsupported export format")
		return
	}

	recs, err := h.contributions.List(r.Context(), caller, f)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	url, err := h.exports.Export(r.Context(), recs, renderer)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ExportResponse{URL: url})
}

// ListUsers returns the directory for agent selection.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	entries, err := h.directory.ListUsers(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := make([]DirectoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toDirectoryEntryResponse(e))
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListLoginLogs returns the caller's audit trail. Admins may inspect any
// user via the user_id parameter.
func (h *Handler) ListLoginLogs(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFromContext(r.Context())

	userID := caller.UserID
	if v := r.URL.Query().Get("user_id"); v != "" && caller.Admin {
		userID = v
	}

	logs, err := h.loginLogs.List(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := make([]LoginLogResponse, 0, len(logs))
	for _, l := range logs {
		resp = append(resp, toLoginLogResponse(l))
	}

	writeJSON(w, http.StatusOK, resp)
}

// RecordLoginLog stores one authentication attempt reported by the identity
// provider.
func (h *Handler) RecordLoginLog(w http.ResponseWriter, r *http.Request) {
	var req LoginLogRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.loginLogs.Record(r.Context(), req.UserID, req.IPAddress, req.Success); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
