package uow

import (
	"context"

	"underwriting-backend/internal/domain/application"
	"underwriting-backend/internal/domain/audit"
	"underwriting-backend/internal/domain/document"
	"underwriting-backend/internal/domain/message"
	"underwriting-backend/internal/domain/payment"
)

// Repos bound to one transaction.
type Repos struct {
	Applications application.Repository
	Documents    document.Repository
	Messages     message.Repository
	Audit        audit.Repository
	Payments     payment.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the application row first, then pass it in
	WithinApplicationTx(ctx context.Context, applicationID string, fn func(r Repos, a *application.Application) error) error
}
