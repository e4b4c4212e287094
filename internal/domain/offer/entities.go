package offer

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound     = errors.New("offer not found")
	ErrDuplicate    = errors.New("lender already has an active offer on this loan")
	ErrInvalidState = errors.New("offer not in a state that allows this operation")
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

// Offer is a lender's bid on a loan. ReservedAmount (principal + platform
// fee) is held on the lender's account for the offer's whole pending life.
type Offer struct {
	ID             uint64          `gorm:"primaryKey;column:id" json:"-"`
	OfferID        string          `gorm:"size:32;uniqueIndex:ux_offers_offer_id" json:"offer_id"`
	LoanID         uint64          `gorm:"column:loan_id;index:idx_offers_loan" json:"-"`
	LenderID       string          `gorm:"size:32;index:idx_offers_lender" json:"lender_id"`
	InterestRate   decimal.Decimal `gorm:"type:decimal(6,2)" json:"interest_rate"`
	ReservedAmount decimal.Decimal `gorm:"type:decimal(18,2)" json:"reserved_amount"`
	Status         Status          `gorm:"type:enum('pending','accepted','rejected','expired');default:'pending'" json:"status"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Offer) TableName() string { return "offers" }

// Terminal reports whether the offer can no longer change.
func (o *Offer) Terminal() bool {
	return o.Status != StatusPending
}
