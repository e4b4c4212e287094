package offer

import "context"

type Repository interface {
	Create(ctx context.Context, o *Offer) error
	GetByOfferID(ctx context.Context, offerID string) (*Offer, error)
	Save(ctx context.Context, o *Offer) error
	// ListByLoanID returns all offers on a loan except REJECTED ones,
	// oldest first.
	ListByLoanID(ctx context.Context, loanID uint64) ([]Offer, error)
	// ListPendingByLoanID returns PENDING offers on a loan, oldest first.
	ListPendingByLoanID(ctx context.Context, loanID uint64) ([]Offer, error)
	// GetActiveByLoanAndLender finds the lender's non-terminal offer on the
	// loan, if any.
	GetActiveByLoanAndLender(ctx context.Context, loanID uint64, lenderID string) (*Offer, error)
}
