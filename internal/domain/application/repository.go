package application

import "context"

// Filter is a simple equality filter; zero values are ignored.
type Filter struct {
	Statuses    []Status
	InputReady  *bool
	CustomerID  string
	Limit       int
	NewestFirst bool
}

type Repository interface {
	Create(ctx context.Context, a *Application) error
	Save(ctx context.Context, a *Application) error
	GetByApplicationID(ctx context.Context, applicationID string) (*Application, error)
	GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*Application, error)
	GetDraftByCustomerID(ctx context.Context, customerID string) (*Application, error)
	List(ctx context.Context, f Filter) ([]Application, error)
	CountByStatus(ctx context.Context) (map[Status]int64, error)
	Count(ctx context.Context) (int64, error)
}
