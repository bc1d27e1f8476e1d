package application

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

var ErrNotFound = errors.New("application not found")

type Status string

const (
	StatusDraft           Status = "draft"
	StatusSubmitted       Status = "submitted"
	StatusUnderReview     Status = "under_review"
	StatusAnalystApproved Status = "analyst_approved"
	StatusPendingMoreInfo Status = "pending_more_info"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
	StatusDeclined        Status = "declined"
)

var Statuses = []Status{
	StatusDraft, StatusSubmitted, StatusUnderReview, StatusAnalystApproved,
	StatusPendingMoreInfo, StatusApproved, StatusRejected, StatusDeclined,
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal statuses end underwriting; payment and policy fields may still change.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusDeclined
}

const (
	PaymentStatusPaid  = "paid"
	PolicyStatusActive = "active"
)

type Application struct {
	ID            uint64            `gorm:"primaryKey;column:id" json:"-"`
	ApplicationID string            `gorm:"size:32;uniqueIndex:ux_applications_application_id" json:"id"`
	CustomerID    string            `gorm:"size:64;index:idx_applications_customer" json:"customer_id"`
	Status        Status            `gorm:"size:32;index:idx_applications_status;default:'draft'" json:"status"`
	Data          datatypes.JSONMap `gorm:"type:json" json:"data"`
	InputReady    bool              `gorm:"default:false" json:"input_ready"`
	RiskScore     *float64          `json:"risk_score,omitempty"`

	PremiumMin         decimal.NullDecimal `gorm:"type:decimal(18,2)" json:"-"`
	PremiumMax         decimal.NullDecimal `gorm:"type:decimal(18,2)" json:"-"`
	PremiumRecommended decimal.NullDecimal `gorm:"type:decimal(18,2)" json:"-"`
	FinalPremium       decimal.NullDecimal `gorm:"type:decimal(18,2)" json:"final_premium"`

	VerificationData datatypes.JSONMap `gorm:"type:json" json:"verification_data,omitempty"`
	RejectionReason  string            `gorm:"type:text" json:"rejection_reason,omitempty"`
	DecisionReason   string            `gorm:"type:text" json:"decision_reason,omitempty"`
	AnalystID        string            `gorm:"size:64" json:"analyst_id,omitempty"`
	UnderwriterID    string            `gorm:"size:64" json:"underwriter_id,omitempty"`
	DecidedAt        *time.Time        `json:"decided_at,omitempty"`

	PaymentStatus    string     `gorm:"size:16" json:"payment_status,omitempty"`
	PaymentReceiptID string     `gorm:"size:32" json:"payment_receipt_id,omitempty"`
	PolicyNumber     string     `gorm:"size:32" json:"policy_number,omitempty"`
	PolicyStatus     string     `gorm:"size:16" json:"policy_status,omitempty"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_applications_created" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Application) TableName() string { return "applications" }

// PremiumRange is the {min,max[,recommended]} band exposed to callers.
type PremiumRange struct {
	Min         decimal.Decimal  `json:"min"`
	Max         decimal.Decimal  `json:"max"`
	Recommended *decimal.Decimal `json:"recommended,omitempty"`
}

func (a *Application) PremiumRange() *PremiumRange {
	if !a.PremiumMin.Valid || !a.PremiumMax.Valid {
		return nil
	}
	pr := &PremiumRange{Min: a.PremiumMin.Decimal, Max: a.PremiumMax.Decimal}
	if a.PremiumRecommended.Valid {
		r := a.PremiumRecommended.Decimal
		pr.Recommended = &r
	}
	return pr
}

func (a *Application) SetPremiumRange(pr PremiumRange) {
	a.PremiumMin = decimal.NewNullDecimal(pr.Min)
	a.PremiumMax = decimal.NewNullDecimal(pr.Max)
	if pr.Recommended != nil {
		a.PremiumRecommended = decimal.NewNullDecimal(*pr.Recommended)
	} else {
		a.PremiumRecommended = decimal.NullDecimal{}
	}
}

func (a *Application) IsPaid() bool { return a.PaymentStatus == PaymentStatusPaid }

// Touch bumps UpdatedAt, never earlier than CreatedAt.
func (a *Application) Touch(now time.Time) {
	if now.Before(a.CreatedAt) {
		now = a.CreatedAt
	}
	a.UpdatedAt = now
}
