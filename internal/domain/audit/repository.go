package audit

import (
	"context"

	"underwriting-backend/internal/domain/user"
)

type Filter struct {
	Action        Action
	ActorRole     user.Role
	ApplicationID string
	Limit         int
}

// Repository is insert-only. List returns newest first.
type Repository interface {
	Create(ctx context.Context, e *Event) error
	ListByApplicationID(ctx context.Context, applicationID string) ([]Event, error)
	List(ctx context.Context, f Filter) ([]Event, error)
	Count(ctx context.Context) (int64, error)
	// ApplicationIDsWithEvents returns the subset of ids that have at least one event.
	ApplicationIDsWithEvents(ctx context.Context, applicationIDs []string) (map[string]bool, error)
}
