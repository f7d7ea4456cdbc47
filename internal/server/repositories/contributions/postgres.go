// Package contributions provides the PostgreSQL-backed repository for
// contribution rows.
package contributions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/contribvault/internal/common"
	"github.com/dmitrijs2005/contribvault/internal/dbx"
	"github.com/dmitrijs2005/contribvault/internal/server/models"
)

// PostgresRepository implements contribution storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `id, user_id, agent_id, amount, first_name, last_name, email, address, city, postal_code, paid, created_at`

// Create inserts a new storage-form contribution row.
func (r *PostgresRepository) Create(ctx context.Context, c *models.Contribution) error {
	query := `
		INSERT INTO contributions (id, user_id, agent_id, amount, first_name, last_name, email, address, city, postal_code, paid, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.UserID, nullIfEmpty(c.AgentID), c.Amount, c.FirstName, c.LastName,
		c.Email, c.Address, c.City, c.PostalCode, c.Paid, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update overwrites the editable fields of an existing row. All four PII
// columns are rewritten as a unit; paid and created_at are untouched here.
// Returns ErrorNotFound when no row matches the id.
func (r *PostgresRepository) Update(ctx context.Context, c *models.Contribution) error {
	query := `
		UPDATE contributions
		SET amount = $2, first_name = $3, last_name = $4, email = $5, address = $6, city = $7, postal_code = $8
		WHERE id = $1;
	`
	res, err := r.db.ExecContext(ctx, query,
		c.ID, c.Amount, c.FirstName, c.LastName, c.Email, c.Address, c.City, c.PostalCode)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// GetByID returns a single storage-form row or ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Contribution, error) {
	query := `SELECT ` + selectColumns + ` FROM contributions WHERE id = $1;`

	row := r.db.QueryRowContext(ctx, query, id)
	item, err := scanContribution(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select contribution: %w", err)
	}
	return item, nil
}

// SelectAll returns every storage-form row, newest first.
func (r *PostgresRepository) SelectAll(ctx context.Context) ([]*models.Contribution, error) {
	query := `SELECT ` + selectColumns + ` FROM contributions ORDER BY created_at DESC;`
	return r.selectMany(ctx, query)
}

// SelectByAgent returns the storage-form rows credited to one agent,
// newest first.
func (r *PostgresRepository) SelectByAgent(ctx context.Context, agentID string) ([]*models.Contribution, error) {
	query := `SELECT ` + selectColumns + ` FROM contributions WHERE agent_id = $1 ORDER BY created_at DESC;`
	return r.selectMany(ctx, query, agentID)
}

// UpdatePaid sets the paid flag on exactly the given id set. The paid column
// is never encrypted, so this bypasses the codec entirely. Applying an
// already-consistent status is a no-op at the row level.
func (r *PostgresRepository) UpdatePaid(ctx context.Context, ids []string, paid bool) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE contributions SET paid = $1 WHERE id = any($2);`
	if _, err := r.db.ExecContext(ctx, query, paid, ids); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Delete removes the given id set.
func (r *PostgresRepository) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `DELETE FROM contributions WHERE id = any($1);`
	if _, err := r.db.ExecContext(ctx, query, ids); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) selectMany(ctx context.Context, query string, args ...any) ([]*models.Contribution, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select contributions: %w", err)
	}
	defer rows.Close()

	var result []*models.Contribution
	for rows.Next() {
		item, err := scanContribution(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanContribution(scan func(dest ...any) error) (*models.Contribution, error) {
	var item models.Contribution
	var agentID sql.NullString
	if err := scan(
		&item.ID, &item.UserID, &agentID, &item.Amount, &item.FirstName, &item.LastName,
		&item.Email, &item.Address, &item.City, &item.PostalCode, &item.Paid, &item.CreatedAt,
	); err != nil {
		return nil, err
	}
	item.AgentID = agentID.String
	return &item, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
