package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/contribvault/internal/dbx"
	"github.com/dmitrijs2005/contribvault/internal/server/repositories/contributions"
	"github.com/dmitrijs2005/contribvault/internal/server/repositories/directory"
	"github.com/dmitrijs2005/contribvault/internal/server/repositories/loginlogs"
)

// RepositoryManager hands out repositories bound to a *sql.DB or an open
// transaction, so services can run multi-statement operations atomically
// via dbx.WithTx.
type RepositoryManager interface {
	Contributions(db dbx.DBTX) contributions.Repository
	LoginLogs(db dbx.DBTX) loginlogs.Repository
	Directory(db dbx.DBTX) directory.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
