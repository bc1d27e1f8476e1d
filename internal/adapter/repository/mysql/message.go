package mysql

import (
	"context"

	"gorm.io/gorm"

	"underwriting-backend/internal/domain/message"
	"underwriting-backend/internal/domain/user"
)

type MessageRepository struct{ db *gorm.DB }

func NewMessageRepository(db *gorm.DB) *MessageRepository { return &MessageRepository{db: db} }

func (r *MessageRepository) Create(ctx context.Context, m *message.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MessageRepository) ListByApplicationID(ctx context.Context, applicationID string) ([]message.Message, error) {
	return r.find(r.db.WithContext(ctx).Where("application_id = ?", applicationID))
}

func (r *MessageRepository) ListForRecipient(ctx context.Context, applicationIDs []string, to user.Role) ([]message.Message, error) {
	if len(applicationIDs) == 0 {
		return nil, nil
	}
	return r.find(r.db.WithContext(ctx).Where("application_id IN ? AND to_role = ?", applicationIDs, to))
}

func (r *MessageRepository) find(q *gorm.DB) ([]message.Message, error) {
	var out []message.Message
	if err := q.Order("created_at ASC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
