package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/mathverbal/internal/database"
)

// MaintenanceService houses destructive actions surfaced through the CLI and TUI.
type MaintenanceService struct {
	DB *sql.DB
}

// ResetStats clears recorded practice mistakes.
func (s *MaintenanceService) ResetStats(ctx context.Context) error {
	return s.clear(ctx, "mistakes")
}

// Reset wipes all user data. It keeps the schema intact so the app can continue running.
func (s *MaintenanceService) Reset(ctx context.Context) error {
	if err := s.clear(ctx, "mistakes", "feedback", "translations"); err != nil {
		return err
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	return nil
}

func (s *MaintenanceService) clear(ctx context.Context, tables ...string) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: %w", ErrStoreNotConfigured)
	}
	return database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		for _, t := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
				return fmt.Errorf("reset table %s: %w", t, err)
			}
		}
		return nil
	})
}
