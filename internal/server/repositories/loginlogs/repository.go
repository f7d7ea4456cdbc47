package loginlogs

import (
	"context"

	"github.com/dmitrijs2005/contribvault/internal/server/models"
)

// Repository persists login-audit rows. IPAddress is always ciphertext at
// this layer.
type Repository interface {
	Create(ctx context.Context, l *models.LoginLog) error
	SelectByUser(ctx context.Context, userID string) ([]*models.LoginLog, error)
}
