package offer

import (
	"time"

	"github.com/shopspring/decimal"
)

type SubmitOfferInput struct {
	LoanID   string          `json:"loan_id"`
	LenderID string          `json:"lender_id"`
	Rate     decimal.Decimal `json:"rate"`
}

type OfferDTO struct {
	OfferID        string          `json:"offer_id"`
	LoanID         string          `json:"loan_id"`
	LenderID       string          `json:"lender_id"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	ReservedAmount decimal.Decimal `json:"reserved_amount"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}
