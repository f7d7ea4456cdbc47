// Package services contains server-side business logic. This file implements
// ContributionService, which owns the encrypt-before-write and
// decrypt-after-read round trips around the contribution store.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/contribvault/internal/logging"
	"github.com/dmitrijs2005/contribvault/internal/server/models"
	"github.com/dmitrijs2005/contribvault/internal/server/piicodec"
	"github.com/dmitrijs2005/contribvault/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Caller identifies the authenticated request principal as reported by the
// external identity provider.
type Caller struct {
	UserID string
	Admin  bool
}

// maxDecryptWorkers caps the per-request decrypt parallelism in List.
// Field decrypts are independent and stateless, so this is purely a
// throughput knob.
const maxDecryptWorkers = 8

// ContributionService orchestrates validation, field encryption and
// persistence for contribution records. All records returned from this
// service are in display form.
type ContributionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       *piicodec.Codec
	directory   *DirectoryService
	logger      logging.Logger
}

func NewContributionService(db *sql.DB, m repomanager.RepositoryManager, codec *piicodec.Codec,
	directory *DirectoryService, logger logging.Logger) *ContributionService {
	return &ContributionService{
		db:          db,
		repomanager: m,
		codec:       codec,
		directory:   directory,
		logger:      logger.With("module", "contribution_service"),
	}
}

// Create validates the input, persists it in storage form and returns the
// stored record decrypted back to display form. The returned record is
// re-fetched from storage, so the caller always sees exactly what a later
// read will see.
func (s *ContributionService) Create(ctx context.Context, caller Caller, in *ContributionInput) (*models.ContributionWithUsers, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	rec := &models.Contribution{
		ID:         uuid.New().String(),
		UserID:     caller.UserID,
		AgentID:    in.AgentID,
		Amount:     in.Amount,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Email:      in.Email,
		Address:    in.Address,
		City:       in.City,
		PostalCode: in.PostalCode,
		Paid:       false,
		CreatedAt:  time.Now().UTC(),
	}

	stored, err := s.codec.EncryptContribution(rec)
	if err != nil {
		return nil, fmt.Errorf("error encrypting contribution: %w", err)
	}

	repo := s.repomanager.Contributions(s.db)
	if err := repo.Create(ctx, stored); err != nil {
		return nil, fmt.Errorf("error creating contribution: %w", err)
	}

	return s.Get(ctx, rec.ID)
}

// Update overwrites the editable fields of an existing record. Any PII edit
// re-encrypts all PII fields as a unit, so stored ciphertext changes even
// for fields whose plaintext did not.
func (s *ContributionService) Update(ctx context.Context, id string, in *ContributionInput) (*models.ContributionWithUsers, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	rec := &models.Contribution{
		ID:         id,
		Amount:     in.Amount,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Email:      in.Email,
		Address:    in.Address,
		City:       in.City,
		PostalCode: in.PostalCode,
	}

	stored, err := s.codec.EncryptContribution(rec)
	if err != nil {
		return nil, fmt.Errorf("error encrypting contribution: %w", err)
	}

	repo := s.repomanager.Contributions(s.db)
	if err := repo.Update(ctx, stored); err != nil {
		return nil, fmt.Errorf("error updating contribution: %w", err)
	}

	return s.Get(ctx, id)
}

// Get fetches one record and converts it to display form with directory
// enrichment.
func (s *ContributionService) Get(ctx context.Context, id string) (*models.ContributionWithUsers, error) {
	repo := s.repomanager.Contributions(s.db)

	raw, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error fetching contribution: %w", err)
	}

	display, err := s.codec.DecryptContribution(raw)
	if err != nil {
		return nil, fmt.Errorf("error decrypting contribution %s: %w", raw.ID, err)
	}

	dir, err := s.directory.Resolve(ctx, []string{raw.UserID, raw.AgentID})
	if err != nil {
		return nil, err
	}

	return s.enrich(display, dir), nil
}

// List returns the caller's visible records, fully decrypted and enriched.
// Admin callers see every record; agents only see records credited to them.
// All filtering happens in memory after decryption: ciphertext is
// non-deterministic, so nothing can be pushed down to storage.
//
// Rows with an undecryptable field are dropped from the result and logged;
// exposing partial or garbage PII is never acceptable. Cancellation aborts
// the whole call: a partially decrypted batch is never returned.
func (s *ContributionService) List(ctx context.Context, caller Caller, f *Filter) ([]*models.ContributionWithUsers, error) {
	repo := s.repomanager.Contributions(s.db)

	var raw []*models.Contribution
	var err error
	if caller.Admin {
		raw, err = repo.SelectAll(ctx)
	} else {
		raw, err = repo.SelectByAgent(ctx, caller.UserID)
	}
	if err != nil {
		return nil, fmt.Errorf("error selecting contributions: %w", err)
	}

	ids := make([]string, 0, 2*len(raw))
	for _, r := range raw {
		ids = append(ids, r.UserID, r.AgentID)
	}
	dir, err := s.directory.Resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	decrypted := make([]*models.Contribution, len(raw))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxDecryptWorkers)
	for i, row := range raw {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d, err := s.codec.DecryptContribution(row)
			if err != nil {
				field := "unknown"
				var fe *piicodec.FieldError
				if errors.As(err, &fe) {
					field = fe.Field
				}
				s.logger.Warn(gctx, "dropping contribution with undecryptable field",
					"id", row.ID, "field", field)
				return nil
			}
			decrypted[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make([]*models.ContributionWithUsers, 0, len(decrypted))
	for _, d := range decrypted {
		if d == nil {
			continue
		}
		result = append(result, s.enrich(d, dir))
	}

	s.logger.Debug(ctx, "contribution batch decrypted",
		"rows", len(result), "dropped", len(raw)-len(result))

	if f != nil {
		result = f.Apply(result, time.Now())
	}
	return result, nil
}

// SetPaidStatus flips the paid flag on exactly the given id set. The flag is
// plaintext metadata, so the codec is bypassed entirely; the operation is
// idempotent.
func (s *ContributionService) SetPaidStatus(ctx context.Context, ids []string, paid bool) error {
	repo := s.repomanager.Contributions(s.db)
	if err := repo.UpdatePaid(ctx, ids, paid); err != nil {
		return fmt.Errorf("error updating paid status: %w", err)
	}
	return nil
}

// Delete removes the given id set.
func (s *ContributionService) Delete(ctx context.Context, ids []string) error {
	repo := s.repomanager.Contributions(s.db)
	if err := repo.Delete(ctx, ids); err != nil {
		return fmt.Errorf("error deleting contributions: %w", err)
	}
	return nil
}

func (s *ContributionService) enrich(d *models.Contribution, dir map[string]*models.DirectoryEntry) *models.ContributionWithUsers {
	out := &models.ContributionWithUsers{
		Contribution: *d,
		UserEmail:    models.UnknownEmail,
		AgentEmail:   models.UnknownEmail,
	}
	if e, ok := dir[d.UserID]; ok {
		out.UserEmail = e.Email
	}
	if e, ok := dir[d.AgentID]; ok {
		out.AgentEmail = e.Email
	}
	return out
}
