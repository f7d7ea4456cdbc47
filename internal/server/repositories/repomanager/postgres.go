// Package repomanager wires concrete PostgreSQL repositories together and
// owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/contribvault/internal/dbx"
	"github.com/dmitrijs2005/contribvault/internal/server/migrations"
	"github.com/dmitrijs2005/contribvault/internal/server/repositories/contributions"
	"github.com/dmitrijs2005/contribvault/internal/server/repositories/directory"
	"github.com/dmitrijs2005/contribvault/internal/server/repositories/loginlogs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct {
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Contributions(db dbx.DBTX) contributions.Repository {
	return contributions.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) LoginLogs(db dbx.DBTX) loginlogs.Repository {
	return loginlogs.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Directory(db dbx.DBTX) directory.Repository {
	return directory.NewPostgresRepository(db)
}

// RunMigrations applies the embedded goose migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return err
	}

	return nil
}

// Open connects to PostgreSQL via the pgx stdlib driver.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	return db, nil
}
