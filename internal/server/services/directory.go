package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/contribvault/internal/logging"
	"github.com/dmitrijs2005/contribvault/internal/server/models"
	"github.com/dmitrijs2005/contribvault/internal/server/repositories/repomanager"
)

// DirectoryService resolves user identifiers to display identities via the
// read-only directory view.
type DirectoryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewDirectoryService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *DirectoryService {
	return &DirectoryService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "directory_service"),
	}
}

// Resolve batch-resolves all given identifiers with a single lookup.
// Every requested id is present in the result: identifiers missing from the
// directory map to the Unknown sentinel, so partial directory data never
// blocks display of financial data. Gaps are logged.
func (s *DirectoryService) Resolve(ctx context.Context, ids []string) (map[string]*models.DirectoryEntry, error) {
	result := make(map[string]*models.DirectoryEntry, len(ids))

	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, seen := result[id]; seen {
			continue
		}
		result[id] = &models.DirectoryEntry{ID: id, Email: models.UnknownEmail}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return result, nil
	}

	repo := s.repomanager.Directory(s.db)
	entries, err := repo.SelectByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("error resolving directory entries: %w", err)
	}

	for _, e := range entries {
		result[e.ID] = e
	}

	for _, id := range unique {
		if result[id].Email == models.UnknownEmail {
			s.logger.Warn(ctx, "directory lookup gap", "user_id", id)
		}
	}

	return result, nil
}

// ListUsers returns the full directory ordered by email, for the
// agent-selection dropdown.
func (s *DirectoryService) ListUsers(ctx context.Context) ([]*models.DirectoryEntry, error) {
	repo := s.repomanager.Directory(s.db)
	entries, err := repo.SelectAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing directory entries: %w", err)
	}
	return entries, nil
}
