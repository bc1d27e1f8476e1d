package mysql

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"underwriting-backend/internal/domain/application"
	"underwriting-backend/internal/domain/audit"
	"underwriting-backend/internal/domain/document"
	"underwriting-backend/internal/domain/message"
	"underwriting-backend/internal/domain/payment"
	"underwriting-backend/internal/domain/user"
)

// Models lists every table owned by the service.
func Models() []any {
	return []any{
		&user.User{},
		&application.Application{},
		&document.Document{},
		&message.Message{},
		&audit.Event{},
		&payment.Payment{},
		&payment.Method{},
	}
}

func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(Models()...)
}

const legacyStateColumn = "state"

type legacyRow struct {
	ID         uint64
	Status     string
	State      string
	InputReady bool
}

// MigrateLegacyWorkflow folds the old status/state pair into the canonical
// status and drops the state column. It is a no-op once the column is gone.
func MigrateLegacyWorkflow(ctx context.Context, db *gorm.DB) (int, error) {
	m := db.WithContext(ctx).Migrator()
	if !m.HasColumn(&application.Application{}, legacyStateColumn) {
		return 0, nil
	}

	changed := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []legacyRow
		err := tx.Table(application.Application{}.TableName()).
			Select("id, status, COALESCE(state, '') AS state, input_ready").
			Find(&rows).Error
		if err != nil {
			return fmt.Errorf("read legacy rows: %w", err)
		}
		for _, row := range rows {
			next := application.NormalizeLegacy(row.Status, row.State, row.InputReady)
			if string(next) == row.Status {
				continue
			}
			err := tx.Table(application.Application{}.TableName()).
				Where("id = ?", row.ID).
				UpdateColumn("status", next).Error
			if err != nil {
				return fmt.Errorf("update application %d: %w", row.ID, err)
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if err := m.DropColumn(&application.Application{}, legacyStateColumn); err != nil {
		return changed, fmt.Errorf("drop legacy state column: %w", err)
	}
	if m.HasColumn(&application.Application{}, legacyStateColumn) {
		return changed, fmt.Errorf("drop legacy state column: column %q still present", legacyStateColumn)
	}
	slog.InfoContext(ctx, "legacy workflow migrated", "updated", changed)
	return changed, nil
}
