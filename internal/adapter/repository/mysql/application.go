package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"underwriting-backend/internal/domain/application"
)

type ApplicationRepository struct{ db *gorm.DB }

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, a *application.Application) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ApplicationRepository) Save(ctx context.Context, a *application.Application) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *ApplicationRepository) GetByApplicationID(ctx context.Context, applicationID string) (*application.Application, error) {
	return r.first(r.db.WithContext(ctx).Where("application_id = ?", applicationID))
}

// GetByApplicationIDForUpdate must run inside a transaction to hold the lock.
func (r *ApplicationRepository) GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*application.Application, error) {
	return r.first(r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("application_id = ?", applicationID))
}

func (r *ApplicationRepository) GetDraftByCustomerID(ctx context.Context, customerID string) (*application.Application, error) {
	return r.first(r.db.WithContext(ctx).
		Where("customer_id = ? AND status = ?", customerID, application.StatusDraft).
		Order("created_at ASC, id ASC"))
}

func (r *ApplicationRepository) first(q *gorm.DB) (*application.Application, error) {
	var out application.Application
	if err := q.First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, application.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *ApplicationRepository) List(ctx context.Context, f application.Filter) ([]application.Application, error) {
	q := r.db.WithContext(ctx).Model(&application.Application{})
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.InputReady != nil {
		q = q.Where("input_ready = ?", *f.InputReady)
	}
	if f.CustomerID != "" {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.NewestFirst {
		q = q.Order("created_at DESC, id DESC")
	} else {
		q = q.Order("created_at ASC, id ASC")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []application.Application
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ApplicationRepository) CountByStatus(ctx context.Context) (map[application.Status]int64, error) {
	var rows []struct {
		Status application.Status
		N      int64
	}
	err := r.db.WithContext(ctx).Model(&application.Application{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[application.Status]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}

func (r *ApplicationRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&application.Application{}).Count(&n).Error
	return n, err
}
