package audit

import (
	"time"

	"gorm.io/datatypes"

	"underwriting-backend/internal/domain/user"
)

type Action string

const (
	ActionCreated          Action = "created"
	ActionUpdated          Action = "updated"
	ActionSubmitted        Action = "submitted"
	ActionRequestInfo      Action = "request_info"
	ActionMarkReady        Action = "mark_ready"
	ActionDocumentVerified Action = "document_verified"
	ActionAnalystApproved  Action = "analyst_approved"
	ActionAnalystRejected  Action = "analyst_rejected"
	ActionApproved         Action = "approved"
	ActionDeclined         Action = "declined"
	ActionPended           Action = "pended"
	ActionUploadedDocument Action = "uploaded_document"
	ActionPaid             Action = "paid"
)

// Event is an immutable audit ledger entry.
type Event struct {
	ID            uint64            `gorm:"primaryKey;column:id" json:"-"`
	EventID       string            `gorm:"size:32;uniqueIndex:ux_audit_events_event_id" json:"id"`
	ApplicationID string            `gorm:"size:32;index:idx_audit_events_application" json:"application_id"`
	ActorRole     user.Role         `gorm:"size:16;index:idx_audit_events_actor_role" json:"actor_role"`
	ActorID       string            `gorm:"size:64" json:"actor_id"`
	Action        Action            `gorm:"size:32;index:idx_audit_events_action" json:"action"`
	Payload       datatypes.JSONMap `gorm:"type:json" json:"payload"`
	CreatedAt     time.Time         `gorm:"index:idx_audit_events_created" json:"created_at"`
}

func (Event) TableName() string { return "audit_events" }

// MissingFields lists the required ledger fields that are empty.
func (e Event) MissingFields() []string {
	var out []string
	if e.Action == "" {
		out = append(out, "action")
	}
	if e.ActorRole == "" {
		out = append(out, "actor_role")
	}
	if e.CreatedAt.IsZero() {
		out = append(out, "created_at")
	}
	return out
}
