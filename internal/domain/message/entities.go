package message

import (
	"time"

	"underwriting-backend/internal/domain/user"
)

type Message struct {
	ID            uint64    `gorm:"primaryKey;column:id" json:"-"`
	MessageID     string    `gorm:"size:32;uniqueIndex:ux_messages_message_id" json:"id"`
	ApplicationID string    `gorm:"size:32;index:idx_messages_application" json:"application_id"`
	FromRole      user.Role `gorm:"size:16" json:"from_role"`
	ToRole        user.Role `gorm:"size:16;index:idx_messages_to_role" json:"to_role"`
	Body          string    `gorm:"type:text" json:"message"`
	CreatedAt     time.Time `gorm:"index:idx_messages_created" json:"created_at"`
}

func (Message) TableName() string { return "messages" }
