package payment

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound       = errors.New("payment not found")
	ErrMethodNotFound = errors.New("payment method not found")
)

const (
	StatusSucceeded = "succeeded"
	CurrencyUSD     = "USD"
)

type Payment struct {
	ID            uint64          `gorm:"primaryKey;column:id" json:"-"`
	PaymentID     string          `gorm:"size:32;uniqueIndex:ux_payments_payment_id" json:"receipt_id"`
	ApplicationID string          `gorm:"size:32;uniqueIndex:ux_payments_application" json:"application_id"`
	UserID        string          `gorm:"size:64;index:idx_payments_user" json:"user_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2)" json:"amount"`
	Currency      string          `gorm:"size:3" json:"currency"`
	Status        string          `gorm:"size:16" json:"status"`
	MethodLast4   string          `gorm:"size:4" json:"method_last4"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (Payment) TableName() string { return "payments" }

// Method is the single saved card summary per customer.
type Method struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	UserID    string    `gorm:"size:64;uniqueIndex:ux_payment_methods_user" json:"-"`
	Brand     string    `gorm:"size:16" json:"brand"`
	Last4     string    `gorm:"size:4" json:"last4"`
	ExpMonth  int       `json:"exp_month"`
	ExpYear   int       `json:"exp_year"`
	Name      string    `gorm:"size:128" json:"name"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Method) TableName() string { return "payment_methods" }
