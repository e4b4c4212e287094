package uow

import (
	"context"

	"lenme-backend/internal/domain/account"
	"lenme-backend/internal/domain/loan"
	"lenme-backend/internal/domain/offer"
	"lenme-backend/internal/domain/payment"
	"lenme-backend/internal/domain/transaction"
)

// Repos bundles all repositories bound to one transaction.
type Repos struct {
	Accounts     account.Repository
	Loans        loan.Repository
	Offers       offer.Repository
	Payments     payment.Repository
	Transactions transaction.Repository
}

// UnitOfWork runs multi-repository work atomically: everything inside fn
// commits together or not at all.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// WithinLoanTx locks the loan row up-front and passes it in; the common
	// shape of every lifecycle transition.
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
