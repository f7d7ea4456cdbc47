// Package directory provides read-only access to the user directory view.
package directory

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/contribvault/internal/dbx"
	"github.com/dmitrijs2005/contribvault/internal/server/models"
)

// PostgresRepository implements directory lookups over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// SelectByIDs resolves a batch of identifiers in a single query. Identifiers
// absent from the directory are simply missing from the result; the caller
// decides how to fill the gap.
func (r *PostgresRepository) SelectByIDs(ctx context.Context, ids []string) ([]*models.DirectoryEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT id, email FROM user_directory WHERE id = any($1);`
	return r.selectMany(ctx, query, ids)
}

// SelectAll returns the full directory ordered by email, for agent-selection
// listings.
func (r *PostgresRepository) SelectAll(ctx context.Context) ([]*models.DirectoryEntry, error) {
	query := `SELECT id, email FROM user_directory ORDER BY email;`
	return r.selectMany(ctx, query)
}

func (r *PostgresRepository) selectMany(ctx context.Context, query string, args ...any) ([]*models.DirectoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select directory entries: %w", err)
	}
	defer rows.Close()

	var result []*models.DirectoryEntry
	for rows.Next() {
		var item models.DirectoryEntry
		if err := rows.Scan(&item.ID, &item.Email); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
