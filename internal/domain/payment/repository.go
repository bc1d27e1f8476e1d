package payment

import "context"

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByPaymentID(ctx context.Context, paymentID string) (*Payment, error)
	GetByApplicationID(ctx context.Context, applicationID string) (*Payment, error)
	UpsertMethod(ctx context.Context, m *Method) error
	GetMethodByUserID(ctx context.Context, userID string) (*Method, error)
}
