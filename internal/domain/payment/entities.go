package payment

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound    = errors.New("payment not found")
	ErrAlreadyPaid = errors.New("payment already settled")
	ErrOutOfOrder  = errors.New("payments settle strictly in sequence")
)

// Payment is one installment of a funded loan's schedule. The whole schedule
// is created atomically at funding time and never resized.
type Payment struct {
	ID        uint64          `gorm:"primaryKey;column:id" json:"-"`
	PaymentID string          `gorm:"size:32;uniqueIndex:ux_payments_payment_id" json:"payment_id"`
	LoanID    uint64          `gorm:"column:loan_id;index:idx_payments_loan" json:"-"`
	Sequence  int             `gorm:"column:sequence" json:"sequence"`
	DueDate   time.Time       `gorm:"column:due_date;type:date" json:"due_date"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2)" json:"amount"`
	Paid      bool            `gorm:"column:paid;default:false" json:"paid"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Payment) TableName() string { return "payments" }
