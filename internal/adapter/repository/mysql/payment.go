package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"underwriting-backend/internal/domain/payment"
)

type PaymentRepository struct{ db *gorm.DB }

func NewPaymentRepository(db *gorm.DB) *PaymentRepository { return &PaymentRepository{db: db} }

// Create relies on the unique application_id index for at most one payment per application.
func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) GetByPaymentID(ctx context.Context, paymentID string) (*payment.Payment, error) {
	return r.first(r.db.WithContext(ctx).Where("payment_id = ?", paymentID))
}

func (r *PaymentRepository) GetByApplicationID(ctx context.Context, applicationID string) (*payment.Payment, error) {
	return r.first(r.db.WithContext(ctx).Where("application_id = ?", applicationID))
}

func (r *PaymentRepository) first(q *gorm.DB) (*payment.Payment, error) {
	var out payment.Payment
	if err := q.Take(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

// UpsertMethod replaces the caller's saved card in place.
func (r *PaymentRepository) UpsertMethod(ctx context.Context, m *payment.Method) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"brand", "last4", "exp_month", "exp_year", "name", "updated_at"}),
	}).Create(m).Error
}

func (r *PaymentRepository) GetMethodByUserID(ctx context.Context, userID string) (*payment.Method, error) {
	var out payment.Method
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, payment.ErrMethodNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
