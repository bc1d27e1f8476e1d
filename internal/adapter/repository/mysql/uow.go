package mysql

import (
	"context"

	"gorm.io/gorm"

	"underwriting-backend/internal/domain/application"
	"underwriting-backend/internal/domain/uow"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

// Repos returns repositories bound to db outside of any transaction.
func Repos(db *gorm.DB) uow.Repos {
	return uow.Repos{
		Applications: &ApplicationRepository{db: db},
		Documents:    &DocumentRepository{db: db},
		Messages:     &MessageRepository{db: db},
		Audit:        &AuditRepository{db: db},
		Payments:     &PaymentRepository{db: db},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Repos(tx))
	})
}

func (u *GormUoW) WithinApplicationTx(ctx context.Context, applicationID string, fn func(r uow.Repos, a *application.Application) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := Repos(tx)
		// lock the application row up-front so concurrent transitions serialize
		a, err := r.Applications.GetByApplicationIDForUpdate(ctx, applicationID)
		if err != nil {
			return err
		}
		return fn(r, a)
	})
}
