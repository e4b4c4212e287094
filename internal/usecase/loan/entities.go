package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateLoanInput struct {
	BorrowerID string          `json:"borrower_id"`
	Principal  decimal.Decimal `json:"principal"`
	TermMonths int             `json:"term_months"`
	Rate       decimal.Decimal `json:"rate"`
}

type LoanDTO struct {
	LoanID       string          `json:"loan_id"`
	BorrowerID   string          `json:"borrower_id"`
	LenderID     string          `json:"lender_id,omitempty"`
	Principal    decimal.Decimal `json:"principal"`
	TermMonths   int             `json:"term_months"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	PlatformFee  decimal.Decimal `json:"platform_fee"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	FundedAt     *time.Time      `json:"funded_at,omitempty"`
}

type PaymentDTO struct {
	PaymentID string          `json:"payment_id"`
	LoanID    string          `json:"loan_id"`
	Sequence  int             `json:"sequence"`
	DueDate   time.Time       `json:"due_date"`
	Amount    decimal.Decimal `json:"amount"`
	Paid      bool            `json:"paid"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
}
