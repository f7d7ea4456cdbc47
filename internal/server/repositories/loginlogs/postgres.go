// Package loginlogs provides the PostgreSQL-backed repository for
// login-audit rows.
package loginlogs

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/contribvault/internal/dbx"
	"github.com/dmitrijs2005/contribvault/internal/server/models"
)

// PostgresRepository implements login-log storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts one storage-form login-log row.
func (r *PostgresRepository) Create(ctx context.Context, l *models.LoginLog) error {
	query := `
		INSERT INTO login_logs (id, user_id, ip_address, success, created_at)
		VALUES ($1, $2, $3, $4, $5);
	`
	if _, err := r.db.ExecContext(ctx, query, l.ID, l.UserID, l.IPAddress, l.Success, l.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// SelectByUser returns the storage-form rows for one user, newest first.
func (r *PostgresRepository) SelectByUser(ctx context.Context, userID string) ([]*models.LoginLog, error) {
	query := `
		SELECT id, user_id, ip_address, success, created_at FROM login_logs
		WHERE user_id = $1 ORDER BY created_at DESC;
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select login logs: %w", err)
	}
	defer rows.Close()

	var result []*models.LoginLog
	for rows.Next() {
		var item models.LoginLog
		if err := rows.Scan(&item.ID, &item.UserID, &item.IPAddress, &item.Success, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
