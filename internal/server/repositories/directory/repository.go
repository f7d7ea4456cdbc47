package directory

import (
	"context"

	"github.com/dmitrijs2005/contribvault/internal/server/models"
)

// Repository reads the identity provider's user directory. This view is
// read-only to the whole service; nothing here mutates it.
type Repository interface {
	SelectByIDs(ctx context.Context, ids []string) ([]*models.DirectoryEntry, error)
	SelectAll(ctx context.Context) ([]*models.DirectoryEntry, error)
}
