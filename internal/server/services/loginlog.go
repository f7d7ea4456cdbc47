package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/contribvault/internal/common"
	"github.com/dmitrijs2005/contribvault/internal/logging"
	"github.com/dmitrijs2005/contribvault/internal/server/models"
	"github.com/dmitrijs2005/contribvault/internal/server/piicodec"
	"github.com/dmitrijs2005/contribvault/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// LoginLogService records authentication attempts reported by the identity
// provider and serves them back decrypted for profile pages. The IP address
// follows the same encryption invariant as contribution PII.
type LoginLogService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       *piicodec.Codec
	logger      logging.Logger
}

func NewLoginLogService(db *sql.DB, m repomanager.RepositoryManager, codec *piicodec.Codec,
	logger logging.Logger) *LoginLogService {
	return &LoginLogService{
		db:          db,
		repomanager: m,
		codec:       codec,
		logger:      logger.With("module", "loginlog_service"),
	}
}

// Record encrypts the IP address and persists one audit entry.
func (s *LoginLogService) Record(ctx context.Context, userID, ipAddress string, success bool) error {
	if userID == "" {
		return &common.ValidationError{Field: "user_id", Msg: "is required"}
	}

	entry := &models.LoginLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		IPAddress: ipAddress,
		Success:   success,
		CreatedAt: time.Now().UTC(),
	}

	stored, err := s.codec.EncryptLoginLog(entry)
	if err != nil {
		return fmt.Errorf("error encrypting login log: %w", err)
	}

	repo := s.repomanager.LoginLogs(s.db)
	if err := repo.Create(ctx, stored); err != nil {
		return fmt.Errorf("error creating login log: %w", err)
	}
	return nil
}

// List returns the user's audit entries in display form, newest first.
// Entries whose IP fails to decrypt are dropped and logged, same policy as
// contribution rows.
func (s *LoginLogService) List(ctx context.Context, userID string) ([]*models.LoginLog, error) {
	repo := s.repomanager.LoginLogs(s.db)

	raw, err := repo.SelectByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error selecting login logs: %w", err)
	}

	result := make([]*models.LoginLog, 0, len(raw))
	for _, row := range raw {
		display, err := s.codec.DecryptLoginLog(row)
		if err != nil {
			s.logger.Warn(ctx, "dropping login log with undecryptable ip", "id", row.ID)
			continue
		}
		result = append(result, display)
	}
	return result, nil
}
