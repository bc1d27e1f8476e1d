package application

import (
	"github.com/shopspring/decimal"

	domain "underwriting-backend/internal/domain/application"
	"underwriting-backend/internal/domain/audit"
	"underwriting-backend/internal/domain/document"
	"underwriting-backend/internal/domain/message"
	"underwriting-backend/internal/domain/payment"
	"underwriting-backend/internal/domain/risk"
	"underwriting-backend/internal/usecase/verification"
)

// RequiredFields must be present and non-blank before submission.
var RequiredFields = []string{"age", "insuranceType", "coverageNeeds", "assetValuation", "income", "debt"}

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionDecline Decision = "decline"
	DecisionPend    Decision = "pend"
)

type DecisionInput struct {
	ApplicationID string
	Decision      Decision
	Reason        string
	// PremiumAmount is optional; nil or zero derives the premium from the risk estimate on approve.
	PremiumAmount *decimal.Decimal
}

type UploadInput struct {
	ApplicationID string
	Type          document.Type
	Filename      string
	ContentType   string
	Content       []byte
}

type MethodInput struct {
	Brand    string
	Last4    string
	ExpMonth int
	ExpYear  int
	Name     string
}

type VerificationResult struct {
	Application *domain.Application     `json:"application"`
	Extraction  verification.Extraction `json:"extraction"`
	Report      verification.Report     `json:"verification_results"`
	Summary     string                  `json:"summary"`
}

type RiskView struct {
	ApplicationID string          `json:"application_id"`
	Assessment    risk.Assessment `json:"assessment"`
	Premium       risk.Premium    `json:"premium_range"`
}

type PaymentResult struct {
	Payment      *payment.Payment `json:"payment"`
	PolicyNumber string           `json:"policy_number"`
	AlreadyPaid  bool             `json:"already_paid"`
}

type Details struct {
	Application *domain.Application `json:"application"`
	Documents   []document.Document `json:"documents"`
	Messages    []message.Message   `json:"messages"`
	AuditEvents []audit.Event       `json:"audit_events"`
}
