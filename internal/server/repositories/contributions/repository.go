package contributions

import (
	"context"

	"github.com/dmitrijs2005/contribvault/internal/server/models"
)

// Repository persists contribution rows. Every Contribution passed in or
// returned is in storage form: the persistence layer only ever observes
// ciphertext in the PII columns.
type Repository interface {
	Create(ctx context.Context, c *models.Contribution) error
	Update(ctx context.Context, c *models.Contribution) error
	GetByID(ctx context.Context, id string) (*models.Contribution, error)
	SelectAll(ctx context.Context) ([]*models.Contribution, error)
	SelectByAgent(ctx context.Context, agentID string) ([]*models.Contribution, error)
	UpdatePaid(ctx context.Context, ids []string, paid bool) error
	Delete(ctx context.Context, ids []string) error
}
