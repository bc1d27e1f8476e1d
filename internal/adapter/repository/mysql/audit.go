package mysql

import (
	"context"

	"gorm.io/gorm"

	"underwriting-backend/internal/domain/audit"
)

// AuditRepository never updates or deletes rows.
type AuditRepository struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) *AuditRepository { return &AuditRepository{db: db} }

func (r *AuditRepository) Create(ctx context.Context, e *audit.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *AuditRepository) ListByApplicationID(ctx context.Context, applicationID string) ([]audit.Event, error) {
	var out []audit.Event
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AuditRepository) List(ctx context.Context, f audit.Filter) ([]audit.Event, error) {
	q := r.db.WithContext(ctx).Model(&audit.Event{})
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.ActorRole != "" {
		q = q.Where("actor_role = ?", f.ActorRole)
	}
	if f.ApplicationID != "" {
		q = q.Where("application_id = ?", f.ApplicationID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []audit.Event
	if err := q.Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AuditRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&audit.Event{}).Count(&n).Error
	return n, err
}

func (r *AuditRepository) ApplicationIDsWithEvents(ctx context.Context, applicationIDs []string) (map[string]bool, error) {
	out := map[string]bool{}
	if len(applicationIDs) == 0 {
		return out, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).Model(&audit.Event{}).
		Distinct("application_id").
		Where("application_id IN ?", applicationIDs).
		Pluck("application_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
