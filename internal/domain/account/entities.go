package account

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound           = errors.New("account not found")
	ErrValidation         = errors.New("invalid amount")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvariantViolation = errors.New("ledger invariant violation")
)

// Account holds a participant's funds. Borrower/lender is contextual: any
// account can borrow on one loan and lend on another.
//
// Invariant: 0 <= reserved_balance <= total_balance at all times.
type Account struct {
	ID              uint64          `gorm:"primaryKey;column:id" json:"-"`
	AccountID       string          `gorm:"size:32;uniqueIndex:ux_accounts_account_id" json:"account_id"`
	OwnerName       string          `gorm:"size:128" json:"owner_name"`
	TotalBalance    decimal.Decimal `gorm:"type:decimal(18,2)" json:"total_balance"`
	ReservedBalance decimal.Decimal `gorm:"type:decimal(18,2)" json:"reserved_balance"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string { return "accounts" }

// Available is total minus reserved; never negative while the invariant holds.
func (a *Account) Available() decimal.Decimal {
	return a.TotalBalance.Sub(a.ReservedBalance)
}

// Reserve places a hold on amount. Fails with ErrInsufficientFunds when the
// hold would exceed the available balance.
func (a *Account) Reserve(amount decimal.Decimal) error {
	if amount.GreaterThan(a.Available()) {
		return ErrInsufficientFunds
	}
	a.ReservedBalance = a.ReservedBalance.Add(amount)
	return nil
}

// Release drops a hold. A release that would drive reserved_balance negative
// signals a reservation/release mismatch upstream and is never clamped.
func (a *Account) Release(amount decimal.Decimal) error {
	if amount.GreaterThan(a.ReservedBalance) {
		return ErrInvariantViolation
	}
	a.ReservedBalance = a.ReservedBalance.Sub(amount)
	return nil
}

// Debit removes amount from the account. When fromReserved, the amount was
// pre-reserved and both balances shrink together; otherwise the amount must
// fit in the available balance.
func (a *Account) Debit(amount decimal.Decimal, fromReserved bool) error {
	if fromReserved {
		if amount.GreaterThan(a.ReservedBalance) {
			return ErrInvariantViolation
		}
		a.ReservedBalance = a.ReservedBalance.Sub(amount)
	} else if amount.GreaterThan(a.Available()) {
		return ErrInsufficientFunds
	}
	a.TotalBalance = a.TotalBalance.Sub(amount)
	return nil
}

// Credit adds amount to the total balance.
func (a *Account) Credit(amount decimal.Decimal) {
	a.TotalBalance = a.TotalBalance.Add(amount)
}
