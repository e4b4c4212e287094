package loan

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("loan not found")
	ErrValidation   = errors.New("invalid loan input")
	ErrInvalidState = errors.New("operation not allowed in current loan state")
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusOpen      Status = "open"
	StatusOffered   Status = "offered"
	StatusAccepted  Status = "accepted"
	StatusFunded    Status = "funded"
	StatusCompleted Status = "completed"
	StatusDefaulted Status = "defaulted"
)

type Loan struct {
	ID              uint64          `gorm:"primaryKey;column:id" json:"-"`
	LoanID          string          `gorm:"size:32;uniqueIndex:ux_loans_loan_id_active" json:"loan_id"`
	BorrowerID      string          `gorm:"size:32;index:idx_loans_borrower" json:"borrower_id"`
	LenderID        *string         `gorm:"size:32;index:idx_loans_lender" json:"lender_id,omitempty"`
	Principal       decimal.Decimal `gorm:"type:decimal(18,2)" json:"principal"`
	TermMonths      int             `gorm:"column:term_months" json:"term_months"`
	InterestRate    decimal.Decimal `gorm:"type:decimal(6,2)" json:"interest_rate"`
	PlatformFee     decimal.Decimal `gorm:"type:decimal(8,2)" json:"platform_fee"`
	Status          Status          `gorm:"type:enum('draft','open','offered','accepted','funded','completed','defaulted');default:'draft'" json:"status"`
	StatusUpdatedAt time.Time       `gorm:"autoCreateTime" json:"status_updated_at"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	FundedAt        *time.Time      `json:"funded_at,omitempty"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Loan) TableName() string { return "loans" }

// TotalReservable is what a lender must hold to submit an offer: principal
// plus the platform fee captured at acceptance.
func (l *Loan) TotalReservable() decimal.Decimal {
	return l.Principal.Add(l.PlatformFee)
}
