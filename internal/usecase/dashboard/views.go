package dashboard

import (
	"time"

	"underwriting-backend/internal/domain/application"
	"underwriting-backend/internal/domain/audit"
	"underwriting-backend/internal/domain/message"
	"underwriting-backend/internal/domain/user"
)

type CustomerView struct {
	Draft        *application.Application  `json:"draft_application"`
	Applications []application.Application `json:"submitted_applications"`
	Messages     []message.Message         `json:"messages"`
}

type AnalystView struct {
	Queue             []application.Application `json:"submitted_applications"`
	PendingReview     int                       `json:"pending_review"`
	DataQualityIssues int                       `json:"data_quality_issues"`
	ReadyForApproval  []application.Application `json:"ready_for_approval"`
}

type UnderwriterView struct {
	CaseQueue   []application.Application `json:"case_queue"`
	UnderReview int                       `json:"under_review"`
	SLABreaches int                       `json:"sla_breaches"`
}

type AuditorStats struct {
	TotalUsers         int64 `json:"total_users"`
	TotalApplications  int64 `json:"total_applications"`
	TotalAuditEvents   int64 `json:"total_audit_events"`
	MissingTrailSample int   `json:"applications_missing_audit_trail_sample"`
}

type Compliance struct {
	DataIntegrityOK  bool `json:"data_integrity_ok"`
	RequiredFieldsOK bool `json:"required_fields_ok"`
	TotalIssues      int  `json:"total_issues"`
}

type AuditorView struct {
	Stats        AuditorStats  `json:"stats"`
	RecentEvents []audit.Event `json:"recent_events"`
	Compliance   Compliance    `json:"compliance"`
}

const (
	IssueMissingAuditTrail = "missing_audit_trail"
	IssueMissingField      = "missing_field"
)

type Issue struct {
	Type          string `json:"type"`
	Field         string `json:"field,omitempty"`
	EventID       string `json:"id,omitempty"`
	ApplicationID string `json:"application_id,omitempty"`
}

type IntegrityReport struct {
	Issues []Issue `json:"issues"`
	Count  int     `json:"count"`
}

type SystemStats struct {
	TotalApplications int64 `json:"total_applications"`
	TotalUsers        int64 `json:"total_users"`
	TotalAuditEvents  int64 `json:"total_audit_events"`
}

type SystemHealth struct {
	Status            string    `json:"status"`
	DatabaseConnected bool      `json:"database_connected"`
	DatabaseError     string    `json:"database_error,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

type AdminView struct {
	Users            []user.User                  `json:"users"`
	SystemStats      SystemStats                  `json:"system_stats"`
	ApplicationStats map[application.Status]int64 `json:"application_stats"`
	UserStats        map[user.Role]int64          `json:"user_stats"`
	SystemHealth     SystemHealth                 `json:"system_health"`
}
