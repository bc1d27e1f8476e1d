package message

import (
	"context"

	"underwriting-backend/internal/domain/user"
)

// Repository is append-only; reads are ordered by created_at ascending.
type Repository interface {
	Create(ctx context.Context, m *Message) error
	ListByApplicationID(ctx context.Context, applicationID string) ([]Message, error)
	ListForRecipient(ctx context.Context, applicationIDs []string, to user.Role) ([]Message, error)
}
