package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/baydesk/internal/database"
)

// MaintenanceService houses destructive actions on the local catalog.
type MaintenanceService struct {
	DB *sql.DB
}

// Reset wipes all local catalog data and re-seeds the starter models.
// The schema is kept so the app can continue running.
func (s *MaintenanceService) Reset(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	if err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		for _, t := range []string{"skus", "models"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
				return fmt.Errorf("reset table %s: %w", t, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	return database.SeedDefaults(ctx, s.DB)
}
