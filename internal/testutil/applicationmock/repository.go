package applicationmock

import (
	"context"
	"errors"

	domain "underwriting-backend/internal/domain/application"
)

var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("applicationmock: method not implemented")

// Repo is a function-backed mock that satisfies domain.Repository.
// Writes default to a nil error; reads default to errUnimplemented.
type Repo struct {
	CreateFn                      func(ctx context.Context, a *domain.Application) error
	SaveFn                        func(ctx context.Context, a *domain.Application) error
	GetByApplicationIDFn          func(ctx context.Context, applicationID string) (*domain.Application, error)
	GetByApplicationIDForUpdateFn func(ctx context.Context, applicationID string) (*domain.Application, error)
	GetDraftByCustomerIDFn        func(ctx context.Context, customerID string) (*domain.Application, error)
	ListFn                        func(ctx context.Context, f domain.Filter) ([]domain.Application, error)
	CountByStatusFn               func(ctx context.Context) (map[domain.Status]int64, error)
	CountFn                       func(ctx context.Context) (int64, error)
}

func (m *Repo) Create(ctx context.Context, a *domain.Application) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, a *domain.Application) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, a)
	}
	return nil
}

func (m *Repo) GetByApplicationID(ctx context.Context, applicationID string) (*domain.Application, error) {
	if m.GetByApplicationIDFn != nil {
		return m.GetByApplicationIDFn(ctx, applicationID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*domain.Application, error) {
	if m.GetByApplicationIDForUpdateFn != nil {
		return m.GetByApplicationIDForUpdateFn(ctx, applicationID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetDraftByCustomerID(ctx context.Context, customerID string) (*domain.Application, error) {
	if m.GetDraftByCustomerIDFn != nil {
		return m.GetDraftByCustomerIDFn(ctx, customerID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) List(ctx context.Context, f domain.Filter) ([]domain.Application, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, errUnimplemented
}

func (m *Repo) CountByStatus(ctx context.Context) (map[domain.Status]int64, error) {
	if m.CountByStatusFn != nil {
		return m.CountByStatusFn(ctx)
	}
	return nil, errUnimplemented
}

func (m *Repo) Count(ctx context.Context) (int64, error) {
	if m.CountFn != nil {
		return m.CountFn(ctx)
	}
	return 0, errUnimplemented
}
